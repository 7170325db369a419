// Package config provides configuration loading and validation for the
// interview service.
//
// It uses Viper to load configuration from a config.yml file and environment
// variables, with godotenv support for .env files. Environment variables
// override file values using underscore-separated paths (e.g.
// OPENAI_API_KEY binds to openai.api_key).
//
// # Usage
//
//	var cfg config.Config
//	err := config.LoadConfig("interviewd", &cfg)
package config
