package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --max-line-size
// on both "ssecodec decode" and "ssecodec relay").
type Flag struct {
	// Name is the long flag name (e.g. "max-line-size").
	Name string

	// Shorthand is the one-letter short flag (e.g. "o"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "decoder.max_line_size").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagMaxLineSize     = "max-line-size"
	FlagFlushOnEOF      = "flush-on-eof"
	FlagUserAgent       = "user-agent"
	FlagConnectTimeout  = "connect-timeout"
	FlagOutputFormat    = "output"
	FlagPublishProvider = "publisher"
	FlagPublishBrokers  = "brokers"
	FlagPublishTopic    = "topic"
	FlagPublishSQLite   = "sqlite"
	FlagRelayWorkers    = "workers"
	FlagRelayQueueSize  = "queue-size"
	FlagPublishTimeout  = "publish-timeout"
)

// Flags is the registry shared by every ssecodec command.
var Flags = FlagSet{
	FlagMaxLineSize: {
		Name:        "max-line-size",
		ViperKey:    "decoder.max_line_size",
		Description: "Maximum bytes in a single SSE line",
	},
	FlagFlushOnEOF: {
		Name:        "flush-on-eof",
		ViperKey:    "decoder.flush_on_eof",
		Description: "Dispatch an unterminated final event when the stream ends",
	},
	FlagUserAgent: {
		Name:        "user-agent",
		ViperKey:    "source.user_agent",
		Description: "User-Agent header for HTTP sources",
	},
	FlagConnectTimeout: {
		Name:        "connect-timeout",
		ViperKey:    "source.connect_timeout",
		Description: "Timeout for receiving HTTP response headers (e.g. 10s)",
	},
	FlagOutputFormat: {
		Name:        "output",
		Shorthand:   "o",
		ViperKey:    "output.format",
		Description: "Output format (auto, json, pretty)",
	},
	FlagPublishProvider: {
		Name:        "publisher",
		Shorthand:   "p",
		ViperKey:    "publish.provider",
		Description: "Event publisher (nop, kafka, sqlite)",
	},
	FlagPublishBrokers: {
		Name:        "brokers",
		ViperKey:    "publish.brokers",
		Description: "Comma separated Kafka broker addresses",
	},
	FlagPublishTopic: {
		Name:        "topic",
		Shorthand:   "t",
		ViperKey:    "publish.topic",
		Description: "Kafka topic for decoded events",
	},
	FlagPublishSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "publish.sqlite_path",
		Description: "Path to the SQLite database recording decoded events",
	},
	FlagRelayWorkers: {
		Name:        "workers",
		ViperKey:    "relay.workers",
		Description: "Number of publishing workers",
	},
	FlagRelayQueueSize: {
		Name:        "queue-size",
		ViperKey:    "relay.queue_size",
		Description: "Capacity of the publish queue",
	},
	FlagPublishTimeout: {
		Name:        "publish-timeout",
		ViperKey:    "relay.publish_timeout",
		Description: "Timeout for publishing a single event (e.g. 10s, 0s for none)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultsViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaultsViper().GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	return defaultsViper().GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	return defaultsViper().GetBool(viperKey)
}
