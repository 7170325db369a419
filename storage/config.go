package storage

import (
	"errors"
	"fmt"
)

// Backend names for supported storage implementations.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Default configuration values.
const (
	DefaultBackend  = BackendLocal
	DefaultBasePath = "/var/lib/interviewd/artifacts"
	DefaultRegion   = "us-east-1"
)

// Config holds artifact storage configuration.
type Config struct {
	// Backend selects the storage implementation: "local" or "s3".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// BasePath is the root directory for the local backend.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`

	// Region is the AWS region for S3.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey is the AWS access key ID. Empty means the default AWS
	// credential chain is used.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks that the configuration is valid for the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for the local backend")
		}
	case BackendS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("storage: bucket is required for the s3 backend"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("storage: region is required for the s3 backend"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported backend %q", c.Backend)
	}
	return nil
}
