// internal/config/types.go
package config

import "time"

// Config is the top-level run configuration, loaded from YAML
type Config struct {
	// OutputRoot is the directory that receives per-page subdirectories
	OutputRoot string `yaml:"output_root"`

	// Download behavior
	UserAgent      string  `yaml:"user_agent,omitempty"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	MaxRetries     int     `yaml:"max_retries,omitempty"`
	RetryDelayMS   int     `yaml:"retry_delay_ms,omitempty"`
	ChunkSize      int     `yaml:"chunk_size,omitempty"`
	Concurrency    int     `yaml:"concurrency,omitempty"`
	RateLimit      float64 `yaml:"rate_limit,omitempty"` // requests per second, 0 disables
	RateBurst      int     `yaml:"rate_burst,omitempty"`

	// Extraction behavior
	IgnorePatterns     []string `yaml:"ignore_patterns,omitempty"`
	UnwrapImageProxies bool     `yaml:"unwrap_image_proxies,omitempty"`

	// Page fetching
	RenderPages          bool `yaml:"render_pages,omitempty"` // fetch through a headless browser
	RenderTimeoutSeconds int  `yaml:"render_timeout_seconds,omitempty"`

	// Logging
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`

	Outputs OutputsConfig `yaml:"outputs,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// OutputsConfig selects where page reports and run summaries are written.
// JSON reports are always produced; the database sinks and the Excel summary
// are additive.
type OutputsConfig struct {
	SQLite   *SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres *DatabaseConfig `yaml:"postgres,omitempty"`
	MySQL    *DatabaseConfig `yaml:"mysql,omitempty"`
	MongoDB  *MongoDBConfig  `yaml:"mongodb,omitempty"`
	Excel    *ExcelConfig    `yaml:"excel,omitempty"`
}

// SQLiteConfig configures the local report database, which also serves as
// the cross-run download index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig configures a SQL report sink
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table,omitempty"`
}

// MongoDBConfig configures the MongoDB report sink
type MongoDBConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection,omitempty"`
}

// ExcelConfig configures the per-run summary workbook
type ExcelConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig configures the optional metrics/health HTTP endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Address string `yaml:"address,omitempty"`
}

// Timeout returns the per-attempt download timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay before the first retry
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// RenderTimeout returns the headless-browser page load timeout
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}
