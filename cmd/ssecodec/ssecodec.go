// Package ssecodeccmder
package ssecodeccmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/ssecodec/cmd/ssecodec/config"
	decodecmder "github.com/papercomputeco/ssecodec/cmd/ssecodec/decode"
	relaycmder "github.com/papercomputeco/ssecodec/cmd/ssecodec/relay"
	versioncmder "github.com/papercomputeco/ssecodec/cmd/version"
)

const ssecodecLongDesc string = `ssecodec decodes Server-Sent Events streams.

Read a stream from stdin, a file, or an HTTP(S) URL:
  ssecodec decode <target>    Print each decoded event
  ssecodec relay <target>     Publish each decoded event to Kafka or SQLite

Persistent defaults live in .ssecodec/config.toml:
  ssecodec config list`

const ssecodecShortDesc string = "ssecodec - Server-Sent Events decoder"

func NewSSECodecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ssecodec",
		Short:        ssecodecShortDesc,
		Long:         ssecodecLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .ssecodec/ config directory")

	// Add subcommands
	cmd.AddCommand(decodecmder.NewDecodeCmd())
	cmd.AddCommand(relaycmder.NewRelayCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
