package sse

import "log/slog"

// Option configures a Decoder created with NewDecoder.
type Option func(*Decoder)

// WithMaxLineSize bounds the number of bytes a single unterminated line may
// occupy. Crossing the bound fails the Decoder with ErrLineTooLong.
// Zero, the default, means unbounded.
func WithMaxLineSize(n int) Option {
	return func(d *Decoder) {
		if n < 0 {
			n = 0
		}
		d.maxLineSize = n
	}
}

// WithFlushOnEOF makes Finish dispatch the event under construction as if a
// blank line followed the last bytes of the stream. By default an event
// that was never terminated by a blank line is discarded.
func WithFlushOnEOF(flush bool) Option {
	return func(d *Decoder) {
		d.flushOnEOF = flush
	}
}

// WithLogger sets the logger used to report tolerated anomalies such as
// ignored retry values or unknown fields at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}
