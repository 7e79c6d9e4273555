// Package configcmder provides the config command for managing persistent
// ssecodec configuration stored in the .ssecodec/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent ssecodec configuration.

Configuration is stored as config.toml in the .ssecodec/ directory and provides
default values for command flags. CLI flags and SSECODEC_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  decoder.max_line_size, decoder.flush_on_eof,
  source.user_agent, source.connect_timeout,
  output.format,
  publish.provider, publish.brokers, publish.topic, publish.sqlite_path,
  relay.workers, relay.queue_size

Use subcommands to get, set, or list configuration values:
  ssecodec config set <key> <value>    Set a configuration value
  ssecodec config get <key>            Get a configuration value
  ssecodec config list                 List all configuration values

Examples:
  ssecodec config set publish.provider kafka
  ssecodec config set decoder.flush_on_eof true
  ssecodec config get publish.topic
  ssecodec config list`

const configShortDesc string = "Manage persistent ssecodec configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
