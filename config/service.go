package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/interviewd/api"
	"github.com/skillsenselab/interviewd/archive"
	"github.com/skillsenselab/interviewd/llm/openai"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/observability"
	"github.com/skillsenselab/interviewd/recording"
	"github.com/skillsenselab/interviewd/server"
	"github.com/skillsenselab/interviewd/transcription/assemblyai"
)

// ServiceConfig contains the essential configuration fields every service needs.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "interviewd"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// ProvidersConfig selects which registered backend serves each external
// concern. Backends register under their provider name; the settings for
// the selected backend come from its own config section.
type ProvidersConfig struct {
	Completion    string `yaml:"completion" mapstructure:"completion"`
	Transcription string `yaml:"transcription" mapstructure:"transcription"`
}

// ApplyDefaults fills in zero-value fields.
func (c *ProvidersConfig) ApplyDefaults() {
	if c.Completion == "" {
		c.Completion = openai.ProviderName
	}
	if c.Transcription == "" {
		c.Transcription = assemblyai.ProviderName
	}
}

// ObservabilityConfig configures OTLP export of traces and metrics.
type ObservabilityConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// TracerConfig builds the tracer configuration for this service.
func (c *ObservabilityConfig) TracerConfig(name, version, environment string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// MeterConfig builds the meter configuration for this service.
func (c *ObservabilityConfig) MeterConfig(name, version, environment string) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    name,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.Interval,
	}
}

// Config is the full interview service configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Providers     ProvidersConfig     `yaml:"providers" mapstructure:"providers"`
	OpenAI        openai.Config       `yaml:"openai" mapstructure:"openai"`
	AssemblyAI    assemblyai.Config   `yaml:"assemblyai" mapstructure:"assemblyai"`
	Recording     recording.Config    `yaml:"recording" mapstructure:"recording"`
	Interview     api.Config          `yaml:"interview" mapstructure:"interview"`
	Archive       archive.Config      `yaml:"archive" mapstructure:"archive"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Providers.ApplyDefaults()
	c.OpenAI.ApplyDefaults()
	c.AssemblyAI.ApplyDefaults()
	c.Recording.ApplyDefaults()
	c.Interview.ApplyDefaults()
	c.Archive.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. Provider API keys are validated at provider
// construction, not here, so a service can boot without outbound credentials
// in development.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Recording.Validate(); err != nil {
		return fmt.Errorf("config.recording: %w", err)
	}
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("config.archive: %w", err)
	}
	return nil
}

// Load reads the full service configuration, applies defaults, and validates.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
