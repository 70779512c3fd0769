// internal/config/config_test.go
package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadFromBytes(t *testing.T) {
	yaml := `
output_root: media_out
max_retries: 5
concurrency: 8
rate_limit: 2.5
ignore_patterns:
  - "(?i)sprite"
outputs:
  sqlite:
    path: media.db
`
	config, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.OutputRoot != "media_out" {
		t.Errorf("expected output_root media_out, got %s", config.OutputRoot)
	}
	if config.MaxRetries != 5 {
		t.Errorf("expected max_retries 5, got %d", config.MaxRetries)
	}
	if config.RateLimit != 2.5 {
		t.Errorf("expected rate_limit 2.5, got %f", config.RateLimit)
	}
	if config.Outputs.SQLite == nil || config.Outputs.SQLite.Path != "media.db" {
		t.Errorf("sqlite output not parsed: %+v", config.Outputs.SQLite)
	}

	// defaults fill what the file omits
	if config.TimeoutSeconds != 30 {
		t.Errorf("expected default timeout_seconds 30, got %d", config.TimeoutSeconds)
	}
	if config.LogLevel != "info" {
		t.Errorf("expected default log_level info, got %s", config.LogLevel)
	}
}

func TestLoadFromBytesExpandsEnvironment(t *testing.T) {
	t.Setenv("MEDIA_OUT", "from_env")

	config, err := LoadFromBytes([]byte("output_root: ${MEDIA_OUT}\n"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.OutputRoot != "from_env" {
		t.Errorf("expected env expansion, got %s", config.OutputRoot)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad ignore pattern", func(c *Config) { c.IgnorePatterns = []string{"(unclosed"} }},
		{"sqlite without path", func(c *Config) { c.Outputs.SQLite = &SQLiteConfig{} }},
		{"mongodb without database", func(c *Config) {
			c.Outputs.MongoDB = &MongoDBConfig{URI: "mongodb://localhost"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadFromBytesRejectsMalformedYAML(t *testing.T) {
	if _, err := LoadFromBytes([]byte("output_root: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
}

func TestWriteTemplateLoadsBack(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	config, err := LoadFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("generated template must load: %v", err)
	}
	if config.OutputRoot != "output" {
		t.Errorf("unexpected template output_root: %s", config.OutputRoot)
	}
	if !strings.Contains(buf.String(), "max_retries") {
		t.Error("template should document max_retries")
	}
}
