package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the scraper.yaml file
// (if found), and binds environment variables with the SCRAPER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SCRAPER_PROXY_LISTEN, SCRAPER_STORAGE_BACKEND, etc.)
//  3. scraper.yaml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery.
	v.SetConfigName("scraper")
	v.SetConfigType("yaml")

	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scraper")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SCRAPER_PROXY_LISTEN, SCRAPER_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load unmarshals the viper state into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	// Storage
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", d.Storage.PostgresURL)
	v.SetDefault("storage.timeout_ms", d.Storage.TimeoutMS)

	// Proxy
	v.SetDefault("proxy.listen", d.Proxy.Listen)
	v.SetDefault("proxy.upstream", d.Proxy.Upstream)
	v.SetDefault("proxy.workers", d.Proxy.Workers)
	v.SetDefault("proxy.queue_size", d.Proxy.QueueSize)

	// Logs
	v.SetDefault("logs.dir", d.Logs.Dir)
	v.SetDefault("logs.file_logging", d.Logs.FileLogging)
	v.SetDefault("logs.console_logging", d.Logs.ConsoleLogging)
	v.SetDefault("logs.debug", d.Logs.Debug)

	// Kafka
	v.SetDefault("kafka.enabled", d.Kafka.Enabled)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
}
