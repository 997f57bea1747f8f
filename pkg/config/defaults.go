package config

const (
	defaultStorageBackend = "sqlite"
	defaultSQLitePath     = "scraper.db"
	defaultStoreTimeoutMS = 5000

	defaultProxyListen   = ":8080"
	defaultProxyUpstream = "https://api2.cursor.sh"
	defaultWorkers       = 3
	defaultQueueSize     = 256

	defaultLogDir = "logs"

	defaultKafkaTopic = "scraper.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    defaultStorageBackend,
			SQLitePath: defaultSQLitePath,
			TimeoutMS:  defaultStoreTimeoutMS,
		},
		Proxy: ProxyConfig{
			Listen:    defaultProxyListen,
			Upstream:  defaultProxyUpstream,
			Workers:   defaultWorkers,
			QueueSize: defaultQueueSize,
		},
		Logs: LogsConfig{
			Dir:            defaultLogDir,
			FileLogging:    true,
			ConsoleLogging: true,
		},
		Kafka: KafkaConfig{
			Topic: defaultKafkaTopic,
		},
	}
}
