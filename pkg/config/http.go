package config

import (
	"fmt"
	"strings"
	"time"
)

type HTTPConfig struct {
	Port           int          `koanf:"port"`
	MaxHeaderBytes int          `koanf:"maxHeaderBytes"`
	Timeout        HTTPTimeouts `koanf:"timeout"`
}

// HTTPTimeouts are the per-connection limits of the HTTP server.
type HTTPTimeouts struct {
	Read       time.Duration `koanf:"read"`
	Write      time.Duration `koanf:"write"`
	Idle       time.Duration `koanf:"idle"`
	ReadHeader time.Duration `koanf:"readHeader"`
}

type namedDuration struct {
	name string
	d    time.Duration
}

func (t *HTTPTimeouts) named() []namedDuration {
	return []namedDuration{
		{"read", t.Read},
		{"write", t.Write},
		{"idle", t.Idle},
		{"readHeader", t.ReadHeader},
	}
}

func (c *HTTPConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- HTTP Server ---\n")
	b.WriteString(fmt.Sprintf("  port: %d\n", c.Port))
	b.WriteString(fmt.Sprintf("  maxHeaderBytes: %d\n", c.MaxHeaderBytes))
	for _, t := range c.Timeout.named() {
		b.WriteString(fmt.Sprintf("  timeout.%s: %v\n", t.name, t.d))
	}
	return b.String()
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("invalid HTTP server maxHeaderBytes: %d", c.MaxHeaderBytes)
	}
	for _, t := range c.Timeout.named() {
		if t.d <= 0 {
			return fmt.Errorf("HTTP server timeout.%s must be greater than 0, got %v", t.name, t.d)
		}
	}
	return nil
}
