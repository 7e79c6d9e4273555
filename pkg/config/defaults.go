package config

const (
	// defaultMaxLineSize caps a single SSE line at 1MiB.
	defaultMaxLineSize = 1024 * 1024

	defaultUserAgent      = "ssecodec"
	defaultConnectTimeout = "10s"

	defaultOutputFormat = "auto"

	defaultPublishProvider = "nop"
	defaultPublishBrokers  = "localhost:9092"
	defaultPublishTopic    = "ssecodec.events"
	defaultPublishSQLite   = "ssecodec.db"

	defaultRelayWorkers   = 1
	defaultRelayQueueSize = 256
	defaultPublishTimeout = "10s"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Decoder: DecoderConfig{
			MaxLineSize: defaultMaxLineSize,
		},
		Source: SourceConfig{
			UserAgent:      defaultUserAgent,
			ConnectTimeout: defaultConnectTimeout,
		},
		Output: OutputConfig{
			Format: defaultOutputFormat,
		},
		Publish: PublishConfig{
			Provider:   defaultPublishProvider,
			Brokers:    defaultPublishBrokers,
			Topic:      defaultPublishTopic,
			SQLitePath: defaultPublishSQLite,
		},
		Relay: RelayConfig{
			Workers:        defaultRelayWorkers,
			QueueSize:      defaultRelayQueueSize,
			PublishTimeout: defaultPublishTimeout,
		},
	}
}
