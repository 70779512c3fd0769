// internal/config/validation.go
package config

import (
	"fmt"
	"regexp"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values that would fail at runtime.
// It is called by the loaders after defaults are applied, so zero values for
// defaulted fields never reach it.
func (c *Config) Validate() error {
	if c.OutputRoot == "" {
		return fmt.Errorf("output_root cannot be empty")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.RetryDelayMS < 0 {
		return fmt.Errorf("retry_delay_ms cannot be negative")
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	for i, pattern := range c.IgnorePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("ignore_patterns[%d] is not a valid regular expression: %w", i, err)
		}
	}

	return c.Outputs.validate()
}

func (o *OutputsConfig) validate() error {
	if o.SQLite != nil && o.SQLite.Path == "" {
		return fmt.Errorf("outputs.sqlite.path cannot be empty")
	}
	if o.Postgres != nil && o.Postgres.DSN == "" {
		return fmt.Errorf("outputs.postgres.dsn cannot be empty")
	}
	if o.MySQL != nil && o.MySQL.DSN == "" {
		return fmt.Errorf("outputs.mysql.dsn cannot be empty")
	}
	if o.MongoDB != nil {
		if o.MongoDB.URI == "" {
			return fmt.Errorf("outputs.mongodb.uri cannot be empty")
		}
		if o.MongoDB.Database == "" {
			return fmt.Errorf("outputs.mongodb.database cannot be empty")
		}
	}
	if o.Excel != nil && o.Excel.Path == "" {
		return fmt.Errorf("outputs.excel.path cannot be empty")
	}
	return nil
}
