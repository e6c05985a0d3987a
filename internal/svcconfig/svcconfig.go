// Package svcconfig holds the service-level configuration surface:
// AWS region, work-queue URL, GeoIP database paths,
// batch sizing, and log level. It is loaded from environment
// variables, the natural Lambda configuration channel, with an
// optional local TOML overlay for the local-run harness, mirroring the
// split between ingest/config (service) and per-listener processor
// config.
package svcconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the service-level configuration bundle.
type Config struct {
	Region         string
	QueueURL       string
	GeoCityDBPath  string
	GeoASNDBPath   string
	MaxBatchSize   int
	LogLevel       string
}

const defaultMaxBatchSize = 10

// FromEnv builds a Config from environment variables, using the same
// explicit field-by-field approach this codebase's other config types
// use instead of reflection-based env binding.
func FromEnv() (*Config, error) {
	c := &Config{
		Region:        os.Getenv("ESLOADER_REGION"),
		QueueURL:      os.Getenv("ESLOADER_QUEUE_URL"),
		GeoCityDBPath: os.Getenv("ESLOADER_GEOIP_CITY_DB"),
		GeoASNDBPath:  os.Getenv("ESLOADER_GEOIP_ASN_DB"),
		LogLevel:      os.Getenv("ESLOADER_LOG_LEVEL"),
		MaxBatchSize:  defaultMaxBatchSize,
	}
	if v := os.Getenv("ESLOADER_MAX_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ESLOADER_MAX_BATCH_SIZE: %w", err)
		}
		c.MaxBatchSize = n
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// overlay is the shape of the local-run TOML overlay file; any field
// left unset falls back to the value already in Config.
type overlay struct {
	Region        string `toml:"region"`
	QueueURL      string `toml:"queue_url"`
	GeoCityDBPath string `toml:"geoip_city_db"`
	GeoASNDBPath  string `toml:"geoip_asn_db"`
	LogLevel      string `toml:"log_level"`
	MaxBatchSize  int    `toml:"max_batch_size"`
}

// ApplyOverlay reads a TOML file at path, for the local-run harness.
// String fields are filled in only where Config has them empty; a
// positive max_batch_size replaces MaxBatchSize even when it is
// already set (FromEnv always sets a default).
func (c *Config) ApplyOverlay(path string) error {
	var o overlay
	if _, err := toml.DecodeFile(path, &o); err != nil {
		return fmt.Errorf("decode overlay %s: %w", path, err)
	}
	if c.Region == "" {
		c.Region = o.Region
	}
	if c.QueueURL == "" {
		c.QueueURL = o.QueueURL
	}
	if c.GeoCityDBPath == "" {
		c.GeoCityDBPath = o.GeoCityDBPath
	}
	if c.GeoASNDBPath == "" {
		c.GeoASNDBPath = o.GeoASNDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = o.LogLevel
	}
	if o.MaxBatchSize > 0 {
		c.MaxBatchSize = o.MaxBatchSize
	}
	return c.Verify()
}

// Verify checks the Config is usable, in the same explicit Verify()
// style as BucketConfig.validate and AuthConfig.validate.
func (c *Config) Verify() error {
	if c.Region == "" {
		return fmt.Errorf("missing region")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive")
	}
	return nil
}
