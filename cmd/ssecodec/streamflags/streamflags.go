// Package streamflags holds the source and decoder flags shared by the
// decode and relay commands.
package streamflags

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/ssecodec/pkg/cliui"
	"github.com/papercomputeco/ssecodec/pkg/config"
	"github.com/papercomputeco/ssecodec/pkg/source"
	"github.com/papercomputeco/ssecodec/pkg/sse"
)

// Output formats.
const (
	FormatAuto   = "auto"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// RegistryKeys are the config-backed flags registered by Flags.
var RegistryKeys = []string{
	config.FlagMaxLineSize,
	config.FlagFlushOnEOF,
	config.FlagUserAgent,
	config.FlagConnectTimeout,
}

// Flags are the resolved stream flags of one command invocation.
type Flags struct {
	MaxLineSize    uint
	FlushOnEOF     bool
	UserAgent      string
	ConnectTimeout string

	LastEventID string
	Headers     []string
	Tee         string
}

// Register adds the stream flags to cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxLineSize, &f.MaxLineSize)
	config.AddBoolFlag(cmd, config.Flags, config.FlagFlushOnEOF, &f.FlushOnEOF)
	config.AddStringFlag(cmd, config.Flags, config.FlagUserAgent, &f.UserAgent)
	config.AddStringFlag(cmd, config.Flags, config.FlagConnectTimeout, &f.ConnectTimeout)

	cmd.Flags().StringVar(&f.LastEventID, "last-event-id", "", "Last-Event-ID to resume an HTTP stream from")
	cmd.Flags().StringArrayVarP(&f.Headers, "header", "H", nil, `Extra HTTP request header as "Key: Value" (repeatable)`)
	cmd.Flags().StringVar(&f.Tee, "tee", "", "Copy the raw stream bytes to this file")
}

// Resolve reads the config-backed values from v after flags are bound.
func (f *Flags) Resolve(v *viper.Viper) {
	f.MaxLineSize = v.GetUint("decoder.max_line_size")
	f.FlushOnEOF = v.GetBool("decoder.flush_on_eof")
	f.UserAgent = v.GetString("source.user_agent")
	f.ConnectTimeout = v.GetString("source.connect_timeout")
}

// DecoderOptions returns the sse options for the flags.
func (f *Flags) DecoderOptions(l *slog.Logger) []sse.Option {
	return []sse.Option{
		sse.WithMaxLineSize(int(min(f.MaxLineSize, uint(maxInt)))),
		sse.WithFlushOnEOF(f.FlushOnEOF),
		sse.WithLogger(l),
	}
}

const maxInt = int(^uint(0) >> 1)

// SourceOptions returns the source options for the flags.
func (f *Flags) SourceOptions(l *slog.Logger) ([]source.Option, error) {
	opts := []source.Option{
		source.WithLogger(l),
		source.WithUserAgent(f.UserAgent),
		source.WithLastEventID(f.LastEventID),
	}

	if f.ConnectTimeout != "" {
		d, err := time.ParseDuration(f.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid connect timeout %q: %w", f.ConnectTimeout, err)
		}
		opts = append(opts, source.WithConnectTimeout(d))
	}

	for _, h := range f.Headers {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", h)
		}
		opts = append(opts, source.WithHeader(key, strings.TrimSpace(value)))
	}

	return opts, nil
}

// NewReader wraps src in an sse.Reader, copying raw bytes to the --tee file
// when one is set. The returned close func closes the tee file.
func (f *Flags) NewReader(src io.Reader, l *slog.Logger) (*sse.Reader, func() error, error) {
	opts := f.DecoderOptions(l)
	if f.Tee == "" {
		return sse.NewReader(src, opts...), func() error { return nil }, nil
	}

	tf, err := os.Create(f.Tee)
	if err != nil {
		return nil, nil, fmt.Errorf("creating tee file: %w", err)
	}
	return sse.NewTeeReader(src, tf, opts...).Reader, tf.Close, nil
}

// Pretty resolves an output format for w. "auto" is pretty only on a terminal.
func Pretty(format string, w io.Writer) (bool, error) {
	switch format {
	case FormatPretty:
		return true, nil
	case FormatJSON:
		return false, nil
	case FormatAuto, "":
		return cliui.IsTerminal(w), nil
	default:
		return false, fmt.Errorf("unknown output format %q", format)
	}
}
