// Package relaycmder provides the relay command.
package relaycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ssecodec/cmd/ssecodec/streamflags"
	"github.com/papercomputeco/ssecodec/pkg/cliui"
	"github.com/papercomputeco/ssecodec/pkg/config"
	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/eventstream/provider"
	"github.com/papercomputeco/ssecodec/pkg/logger"
	"github.com/papercomputeco/ssecodec/pkg/relay"
	"github.com/papercomputeco/ssecodec/pkg/source"
)

type relayCommander struct {
	stream streamflags.Flags

	publisher      string
	brokers        string
	topic          string
	sqlitePath     string
	workers        uint
	queueSize      uint
	publishTimeout string
	logFile        string
	debug          bool

	logger *slog.Logger
}

const relayLongDesc string = `Relay a Server-Sent Events stream to an event backend.

Every decoded event is wrapped in an envelope carrying a unique event ID, the
source, and its sequence number within the stream, then published through a
background worker pool.

Supported publishers: nop, kafka, sqlite

Kafka messages are keyed by the stream's last event ID, or by the source when
the stream sets none. The SQLite publisher appends one row per event to the
"events" table.

Examples:
  ssecodec relay https://example.com/events -p kafka --brokers localhost:9092 -t events
  ssecodec relay capture.sse -p sqlite -s ./events.db
  curl -sN https://example.com/events | ssecodec relay - -p sqlite`

const relayShortDesc string = "Publish decoded SSE events to Kafka or SQLite"

var registryKeys = append([]string{
	config.FlagPublishProvider,
	config.FlagPublishBrokers,
	config.FlagPublishTopic,
	config.FlagPublishSQLite,
	config.FlagRelayWorkers,
	config.FlagRelayQueueSize,
	config.FlagPublishTimeout,
}, streamflags.RegistryKeys...)

func NewRelayCmd() *cobra.Command {
	cmder := &relayCommander{}

	cmd := &cobra.Command{
		Use:   "relay <target>",
		Short: relayShortDesc,
		Long:  relayLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
			cmder.stream.Resolve(v)
			cmder.publisher = v.GetString("publish.provider")
			cmder.brokers = v.GetString("publish.brokers")
			cmder.topic = v.GetString("publish.topic")
			cmder.sqlitePath = v.GetString("publish.sqlite_path")
			cmder.workers = v.GetUint("relay.workers")
			cmder.queueSize = v.GetUint("relay.queue_size")
			cmder.publishTimeout = v.GetString("relay.publish_timeout")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPublishProvider, &cmder.publisher)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublishBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublishTopic, &cmder.topic)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublishSQLite, &cmder.sqlitePath)
	config.AddUintFlag(cmd, config.Flags, config.FlagRelayWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagRelayQueueSize, &cmder.queueSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublishTimeout, &cmder.publishTimeout)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmder.stream.Register(cmd)

	return cmd
}

func (c *relayCommander) run(ctx context.Context, target string, in io.Reader, errOut io.Writer) error {
	interactive := cliui.IsTerminal(errOut)

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(interactive),
		logger.WithWriter(errOut),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}

	publishTimeout, err := time.ParseDuration(c.publishTimeout)
	if err != nil {
		return fmt.Errorf("invalid publish timeout %q: %w", c.publishTimeout, err)
	}

	pub, err := provider.NewPublisher(provider.Options{
		Provider:     c.publisher,
		Brokers:      c.brokers,
		Topic:        c.topic,
		WriteTimeout: publishTimeout,
		SQLitePath:   c.sqlitePath,
	})
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	pool, err := relay.NewPool(&relay.Config{
		Publisher:      pub,
		NumWorkers:     c.workers,
		QueueSize:      c.queueSize,
		PublishTimeout: publishTimeout,
		Logger:         c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating relay pool: %w", err)
	}

	c.logger.Info("starting relay",
		"target", target,
		"publisher", c.publisher,
		"workers", c.workers,
	)

	seq, lastID, streamErr := c.relayStream(ctx, target, in, errOut, interactive, pool)

	// Drain before reporting so the counts are final.
	pool.Close()
	stats := pool.Stats()

	c.logger.Info("relay finished",
		"target", target,
		"events", seq,
		"published", stats.Published,
		"failed", stats.Failed,
		"dropped", stats.Dropped,
		"last_event_id", lastID,
	)

	switch {
	case streamErr != nil && errors.Is(streamErr, context.Canceled):
		c.logger.Info("relay interrupted", "last_event_id", lastID)
	case streamErr != nil:
		return streamErr
	}

	if lost := stats.Failed + stats.Dropped; lost > 0 {
		return fmt.Errorf("%d of %d events were not published", lost, seq)
	}

	return nil
}

// relayStream decodes target and enqueues every event. It returns the number
// of events decoded and the stream's last event ID.
func (c *relayCommander) relayStream(
	ctx context.Context,
	target string,
	in io.Reader,
	errOut io.Writer,
	interactive bool,
	pool *relay.Pool,
) (uint64, string, error) {
	srcOpts, err := c.stream.SourceOptions(c.logger)
	if err != nil {
		return 0, "", err
	}
	srcOpts = append(srcOpts, source.WithStdin(in))

	var rc io.ReadCloser
	open := func() error {
		rc, err = source.Open(ctx, target, srcOpts...)
		return err
	}
	if interactive && source.IsURL(target) {
		err = cliui.Step(errOut, "Connecting to "+target, open)
	} else {
		err = open()
	}
	if err != nil {
		return 0, "", err
	}
	defer rc.Close()

	r, closeTee, err := c.stream.NewReader(rc, c.logger)
	if err != nil {
		return 0, "", err
	}
	defer closeTee()

	var seq uint64
	for {
		ev, err := r.Next()
		lastID, _ := r.LastEventID()
		if err != nil {
			return seq, lastID, fmt.Errorf("decoding %s after %d events: %w", target, seq, err)
		}
		if ev == nil {
			return seq, lastID, nil
		}
		seq++

		if err := pool.Submit(ctx, eventstream.NewDecodedEvent(target, seq, *ev)); err != nil {
			return seq, lastID, err
		}
	}
}
