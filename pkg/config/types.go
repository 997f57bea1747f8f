// Package config defines the scraper configuration and its viper wiring.
package config

// Config represents the scraper configuration. The YAML layout uses sections
// for logical grouping; every key can also be set through the environment
// (SCRAPER_STORAGE_BACKEND, SCRAPER_PROXY_LISTEN, etc.) or CLI flags.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Logs    LogsConfig    `mapstructure:"logs"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// StorageConfig holds dedup store settings.
type StorageConfig struct {
	// Backend selects the store driver: "memory", "sqlite", or "postgres".
	Backend string `mapstructure:"backend"`

	// SQLitePath is the database file path when Backend is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`

	// PostgresURL is the connection string when Backend is "postgres".
	PostgresURL string `mapstructure:"postgres_url"`

	// TimeoutMS bounds each store operation in milliseconds.
	TimeoutMS int `mapstructure:"timeout_ms"`
}

// ProxyConfig holds proxy server settings.
type ProxyConfig struct {
	Listen   string `mapstructure:"listen"`
	Upstream string `mapstructure:"upstream"`

	// Workers is the number of background extraction workers.
	Workers uint `mapstructure:"workers"`

	// QueueSize is the capacity of the capture job queue.
	QueueSize uint `mapstructure:"queue_size"`
}

// LogsConfig holds file and console logging settings.
type LogsConfig struct {
	// Dir is the directory holding the per-session capture files.
	Dir string `mapstructure:"dir"`

	// FileLogging toggles the per-session capture files.
	FileLogging bool `mapstructure:"file_logging"`

	// ConsoleLogging toggles terminal log output entirely.
	ConsoleLogging bool `mapstructure:"console_logging"`

	// Debug enables debug-level console logging.
	Debug bool `mapstructure:"debug"`
}

// KafkaConfig holds event stream settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}
