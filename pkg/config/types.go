package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent ssecodec configuration stored as
// config.toml in the .ssecodec/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Decoder DecoderConfig `toml:"decoder"`
	Source  SourceConfig  `toml:"source"`
	Output  OutputConfig  `toml:"output"`
	Publish PublishConfig `toml:"publish"`
	Relay   RelayConfig   `toml:"relay"`
}

// DecoderConfig holds settings applied to every SSE decoder.
type DecoderConfig struct {
	// MaxLineSize bounds a single line in bytes. Zero disables the bound.
	MaxLineSize uint `toml:"max_line_size,omitempty"`

	// FlushOnEOF dispatches an unterminated final event at end of stream
	// instead of discarding it.
	FlushOnEOF bool `toml:"flush_on_eof,omitempty"`
}

// SourceConfig holds settings for opening HTTP event stream sources.
type SourceConfig struct {
	UserAgent      string `toml:"user_agent,omitempty"`
	ConnectTimeout string `toml:"connect_timeout,omitempty"`
}

// OutputConfig holds settings for printing decoded events.
type OutputConfig struct {
	// Format is one of "auto", "json" or "pretty".
	Format string `toml:"format,omitempty"`
}

// PublishConfig holds settings for the relay's event publisher.
type PublishConfig struct {
	// Provider is one of "nop", "kafka" or "sqlite".
	Provider   string `toml:"provider,omitempty"`
	Brokers    string `toml:"brokers,omitempty"`
	Topic      string `toml:"topic,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// RelayConfig holds worker pool settings for the relay command.
type RelayConfig struct {
	Workers   uint `toml:"workers,omitempty"`
	QueueSize uint `toml:"queue_size,omitempty"`

	// PublishTimeout bounds a single publish, e.g. "10s". "0s" disables it.
	PublishTimeout string `toml:"publish_timeout,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var (
	validOutputFormats    = []string{"auto", "json", "pretty"}
	validPublishProviders = []string{"nop", "kafka", "sqlite"}
)

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"decoder.max_line_size": {
		get: func(c *Config) string { return formatUint(c.Decoder.MaxLineSize) },
		set: func(c *Config, v string) error {
			n, err := parseUint("decoder.max_line_size", v)
			if err != nil {
				return err
			}
			c.Decoder.MaxLineSize = n
			return nil
		},
	},
	"decoder.flush_on_eof": {
		get: func(c *Config) string { return strconv.FormatBool(c.Decoder.FlushOnEOF) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for decoder.flush_on_eof: %w", err)
			}
			c.Decoder.FlushOnEOF = b
			return nil
		},
	},
	"source.user_agent": {
		get: func(c *Config) string { return c.Source.UserAgent },
		set: func(c *Config, v string) error { c.Source.UserAgent = v; return nil },
	},
	"source.connect_timeout": {
		get: func(c *Config) string { return c.Source.ConnectTimeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for source.connect_timeout: %w", err)
			}
			c.Source.ConnectTimeout = v
			return nil
		},
	},
	"output.format": {
		get: func(c *Config) string { return c.Output.Format },
		set: func(c *Config, v string) error {
			if err := oneOf("output.format", v, validOutputFormats); err != nil {
				return err
			}
			c.Output.Format = v
			return nil
		},
	},
	"publish.provider": {
		get: func(c *Config) string { return c.Publish.Provider },
		set: func(c *Config, v string) error {
			if err := oneOf("publish.provider", v, validPublishProviders); err != nil {
				return err
			}
			c.Publish.Provider = v
			return nil
		},
	},
	"publish.brokers": {
		get: func(c *Config) string { return c.Publish.Brokers },
		set: func(c *Config, v string) error { c.Publish.Brokers = v; return nil },
	},
	"publish.topic": {
		get: func(c *Config) string { return c.Publish.Topic },
		set: func(c *Config, v string) error { c.Publish.Topic = v; return nil },
	},
	"publish.sqlite_path": {
		get: func(c *Config) string { return c.Publish.SQLitePath },
		set: func(c *Config, v string) error { c.Publish.SQLitePath = v; return nil },
	},
	"relay.workers": {
		get: func(c *Config) string { return formatUint(c.Relay.Workers) },
		set: func(c *Config, v string) error {
			n, err := parseUint("relay.workers", v)
			if err != nil {
				return err
			}
			c.Relay.Workers = n
			return nil
		},
	},
	"relay.queue_size": {
		get: func(c *Config) string { return formatUint(c.Relay.QueueSize) },
		set: func(c *Config, v string) error {
			n, err := parseUint("relay.queue_size", v)
			if err != nil {
				return err
			}
			c.Relay.QueueSize = n
			return nil
		},
	},
	"relay.publish_timeout": {
		get: func(c *Config) string { return c.Relay.PublishTimeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for relay.publish_timeout: %w", err)
			}
			c.Relay.PublishTimeout = v
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint(n), nil
}

func oneOf(key, v string, valid []string) error {
	for _, candidate := range valid {
		if v == candidate {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (available: %v)", key, v, valid)
}
