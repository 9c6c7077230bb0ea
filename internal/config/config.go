// Package config defines the configuration of the feed service.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/abgdnv/meiasjamais/pkg/config"
	"github.com/abgdnv/meiasjamais/pkg/config/configloader"
)

// ServiceName prefixes environment variables (FEED_) and names telemetry resources.
const ServiceName = "feed"

// legacyURLEnv is honoured as the lowest-priority source of database.url.
const legacyURLEnv = "MONGO_STR"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`

	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// Defaults returns the values used when no other source sets a key.
func Defaults() map[string]any {
	defaults := map[string]any{
		"server.port":               8000,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       10 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readHeader": 5 * time.Second,
		"database.name":             "meiasjamais",
		"database.timeout":          10 * time.Second,
		"database.querytimeout":     5 * time.Second,
		"log.level":                 "info",
		"log.format":                "json",
		"log.commands":              false,
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"grpc.port":                 "50051",
		"grpc.reflection":           false,
		"grpc.healthinterval":       15 * time.Second,
		"telemetry.metrics.enabled": true,
		"telemetry.metrics.path":    "/metrics",
		"shutdown.timeout":          10 * time.Second,

		"circuitbreaker.enabled":             true,
		"circuitbreaker.consecutivefailures": 5,
		"circuitbreaker.errorratepercent":    50,
		"circuitbreaker.maxrequests":         1,
		"circuitbreaker.opentimeout":         30 * time.Second,
	}
	if url := os.Getenv(legacyURLEnv); url != "" {
		defaults["database.url"] = url
	}
	return defaults
}

// Load reads the service configuration on top of Defaults.
func Load(opts ...configloader.Option) (*Config, error) {
	opts = append([]configloader.Option{configloader.WithDefaults(Defaults())}, opts...)
	return configloader.Load[*Config](ServiceName, opts...)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	return nil
}
