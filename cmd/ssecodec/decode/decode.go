// Package decodecmder provides the decode command.
package decodecmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ssecodec/cmd/ssecodec/streamflags"
	"github.com/papercomputeco/ssecodec/pkg/cliui"
	"github.com/papercomputeco/ssecodec/pkg/config"
	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/logger"
	"github.com/papercomputeco/ssecodec/pkg/source"
	"github.com/papercomputeco/ssecodec/pkg/utils"
)

type decodeCommander struct {
	stream streamflags.Flags
	format string
	debug  bool

	logger *slog.Logger
}

const decodeLongDesc string = `Decode a Server-Sent Events stream.

The target is "-" for standard input, an http:// or https:// URL, or a file
path. Each decoded event is written to stdout: as a colored block when stdout
is a terminal, or as one JSON object per line otherwise. Use --output to force
a format.

An event still being assembled when the stream ends is dropped unless
--flush-on-eof is set.

Examples:
  curl -sN https://example.com/events | ssecodec decode -
  ssecodec decode https://example.com/events --last-event-id 41
  ssecodec decode capture.sse -o json --tee raw.sse`

const decodeShortDesc string = "Decode an SSE stream into events"

var registryKeys = append([]string{config.FlagOutputFormat}, streamflags.RegistryKeys...)

func NewDecodeCmd() *cobra.Command {
	cmder := &decodeCommander{}

	cmd := &cobra.Command{
		Use:   "decode <target>",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
			cmder.stream.Resolve(v)
			cmder.format = v.GetString("output.format")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), args[0], cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagOutputFormat, &cmder.format)
	cmder.stream.Register(cmd)

	return cmd
}

func (c *decodeCommander) run(ctx context.Context, target string, in io.Reader, out, errOut io.Writer) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(cliui.IsTerminal(errOut)),
		logger.WithWriter(errOut),
	)

	pretty, err := streamflags.Pretty(c.format, out)
	if err != nil {
		return err
	}

	srcOpts, err := c.stream.SourceOptions(c.logger)
	if err != nil {
		return err
	}

	rc, err := source.Open(ctx, target, append(srcOpts, source.WithStdin(in))...)
	if err != nil {
		return err
	}
	defer rc.Close()

	r, closeTee, err := c.stream.NewReader(rc, c.logger)
	if err != nil {
		return err
	}
	defer closeTee()

	enc := json.NewEncoder(out)
	var seq uint64
	for {
		ev, err := r.Next()
		if err != nil {
			return fmt.Errorf("decoding %s after %d events: %w", target, seq, err)
		}
		if ev == nil {
			break
		}
		seq++

		c.logger.Debug("decoded event",
			"sequence", seq,
			"type", ev.Type,
			"data_preview", utils.Truncate(ev.Data, 60),
		)

		if pretty {
			err = cliui.PrintEvent(out, seq, *ev)
		} else {
			err = enc.Encode(eventstream.NewDecodedEvent(target, seq, *ev))
		}
		if err != nil {
			return fmt.Errorf("writing event %d: %w", seq, err)
		}
	}

	lastID, _ := r.LastEventID()
	c.logger.Debug("stream finished",
		"target", target,
		"events", seq,
		"last_event_id", lastID,
	)

	return nil
}
