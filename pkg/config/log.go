package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// LogConfig selects the process logger. Commands additionally logs every MongoDB command at debug level;
// failed commands are always logged.
type LogConfig struct {
	Level    string `koanf:"level"`
	Format   string `koanf:"format"`
	Commands bool   `koanf:"commands"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n  format: %s\n  commands: %t\n", c.Level, c.Format, c.Commands)
}

func (c *LogConfig) Validate() error {
	if c.Level != "" && !slices.Contains(logLevels, c.Level) {
		return fmt.Errorf("unknown log level %q, expected one of %v", c.Level, logLevels)
	}
	if c.Format != "" && !slices.Contains(logFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("unknown log format %q, expected one of %v", c.Format, logFormats)
	}
	if c.Commands && c.Level != "debug" {
		return fmt.Errorf("log.commands needs log.level debug, got %q", c.Level)
	}
	return nil
}
