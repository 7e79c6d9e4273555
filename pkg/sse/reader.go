package sse

import (
	"errors"
	"io"
)

const readBufferSize = 32 * 1024

// Reader pulls bytes from a source io.Reader on demand and feeds them through
// a Decoder, handing events back one at a time.
type Reader struct {
	src   io.Reader
	dec   *Decoder
	buf   []byte
	queue []Event
	err   error
	done  bool
}

// NewReader returns a Reader that decodes SSE events from src. The options
// configure the underlying Decoder.
func NewReader(src io.Reader, opts ...Option) *Reader {
	return &Reader{
		src: src,
		dec: NewDecoder(opts...),
		buf: make([]byte, readBufferSize),
	}
}

// Next returns the next decoded event. It blocks on the source until an event
// is complete. Next returns nil, nil when the source is exhausted.
//
// Events decoded before a decoding or read error are returned first; the
// error is reported once they are drained.
func (r *Reader) Next() (*Event, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		if r.done {
			return nil, nil
		}
		r.fill()
	}

	ev := r.queue[0]
	r.queue = r.queue[1:]
	return &ev, nil
}

// LastEventID returns the stream's last event ID so far, which a transport
// can send back as the Last-Event-ID header when reconnecting.
func (r *Reader) LastEventID() (string, bool) {
	return r.dec.LastEventID()
}

// ReconnectionTime returns the stream's last valid retry value in
// milliseconds.
func (r *Reader) ReconnectionTime() (uint64, bool) {
	return r.dec.ReconnectionTime()
}

// fill performs one read from the source and queues what it decodes.
func (r *Reader) fill() {
	n, readErr := r.src.Read(r.buf)
	if n > 0 {
		events, err := r.dec.Decode(r.buf[:n])
		r.queue = append(r.queue, events...)
		if err != nil {
			r.err = err
			return
		}
	}

	switch {
	case readErr == nil:
	case errors.Is(readErr, io.EOF):
		events, err := r.dec.Finish()
		r.queue = append(r.queue, events...)
		r.err = err
		r.done = true
	default:
		r.err = readErr
	}
}

// TeeReader reads SSE events from a source io.Reader while simultaneously
// writing all raw bytes verbatim to a destination io.Writer.
// This effectively enables "tee" shaped reading where TeeReader.Next
// returns the Event for consumption while writing to a separate destination.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │ TeeReader.Next() │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// The destination receives the exact bytes of the stream, including line
// endings and comments, while the caller inspects decoded events.
type TeeReader struct {
	*Reader
}

// NewTeeReader returns a TeeReader that decodes SSE events from src and
// writes every byte read from src through to dest. A failed write to dest
// surfaces as an error from Next.
func NewTeeReader(src io.Reader, dest io.Writer, opts ...Option) *TeeReader {
	return &TeeReader{
		Reader: NewReader(io.TeeReader(src, dest), opts...),
	}
}
