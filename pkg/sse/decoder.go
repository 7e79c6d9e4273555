package sse

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/ssecodec/pkg/logger"
)

// bom is the UTF-8 byte order mark. It is stripped once, only at the very
// start of a stream.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Decoder incrementally decodes an SSE byte stream into Events.
//
// ┌──────────────┐   ┌───────────────┐   ┌───────────────┐
// │ Decode(p)    │──▶│ line splitter │──▶│  accumulator  │──▶ []Event
// └──────────────┘   └───────────────┘   └───────────────┘
//
// Bytes that do not yet form a complete line stay in the Decoder until more
// input or Finish resolves them. Decoding a stream in any number of chunks
// produces the same events as decoding it in one call.
//
// A Decoder holds the state of exactly one stream and is not safe for
// concurrent use.
type Decoder struct {
	// pending is the unconsumed tail of the input. It never holds a
	// complete line between calls.
	pending    []byte
	bomChecked bool

	// data and eventType belong to the event under construction and are
	// reset on every blank line.
	data      []byte
	eventType string

	// lastEventID and reconnectionTime are stream scoped and survive
	// dispatch.
	lastEventID      string
	hasLastEventID   bool
	reconnectionTime uint64
	hasReconnection  bool
	retryUpdated     bool

	lineNo   int
	err      error
	finished bool

	maxLineSize int
	flushOnEOF  bool
	logger      *slog.Logger
}

// NewDecoder returns a Decoder for a new stream.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode appends p to the bytes already held by the Decoder and returns the
// events completed by it, in arrival order. A nil slice and nil error means
// more input is needed.
//
// Once Decode returns an error the stream cannot be decoded further and
// every later call returns the same error. Events completed before the
// failing line are returned alongside the error.
func (d *Decoder) Decode(p []byte) ([]Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.finished {
		return nil, ErrFinished
	}

	d.pending = append(d.pending, p...)
	if !d.checkBOM(false) {
		return nil, nil
	}

	return d.drain(false)
}

// Finish signals that the stream has ended. A line ending held back for
// disambiguation is resolved, and any bytes that do not form a complete
// line are discarded without dispatch. With WithFlushOnEOF the event under
// construction is dispatched instead.
//
// A trailing fragment that is not valid UTF-8, such as a truncated
// multi-byte character, reports ErrInvalidUTF8. This includes a stream that
// ends after only the first one or two bytes of a byte order mark.
func (d *Decoder) Finish() ([]Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.finished {
		return nil, ErrFinished
	}
	d.finished = true
	d.checkBOM(true)

	events, err := d.drain(true)
	if err != nil {
		return events, err
	}

	rest := d.pending
	d.pending = nil

	if len(rest) > 0 && !utf8.Valid(rest) {
		return events, d.fail(fmt.Errorf("line %d: %w", d.lineNo+1, ErrInvalidUTF8))
	}

	if d.flushOnEOF {
		if len(rest) > 0 {
			if ev, ok := d.processLine(string(rest)); ok {
				events = append(events, ev)
			}
		}
		if ev, ok := d.processLine(""); ok {
			events = append(events, ev)
		}
	} else if len(rest) > 0 || len(d.data) > 0 {
		d.logger.Debug("discarding unterminated event at end of stream",
			"pending_bytes", len(rest),
			"data_bytes", len(d.data),
		)
	}

	d.data = nil
	d.eventType = ""

	return events, nil
}

// LastEventID returns the stream's current last event ID and whether the
// stream has set one.
func (d *Decoder) LastEventID() (string, bool) {
	return d.lastEventID, d.hasLastEventID
}

// ReconnectionTime returns the last valid retry value in milliseconds and
// whether the stream has sent one.
func (d *Decoder) ReconnectionTime() (uint64, bool) {
	return d.reconnectionTime, d.hasReconnection
}

// Buffered returns the number of input bytes held back awaiting the rest of
// their line.
func (d *Decoder) Buffered() int {
	return len(d.pending)
}

// checkBOM strips a leading byte order mark the first time enough bytes are
// available to tell. It reports false while the answer is still unknown.
func (d *Decoder) checkBOM(eof bool) bool {
	if d.bomChecked {
		return true
	}

	if !eof && len(d.pending) < len(bom) && bytes.HasPrefix(bom, d.pending) {
		// Empty input or a BOM prefix: wait for more bytes.
		return false
	}

	d.pending = bytes.TrimPrefix(d.pending, bom)
	d.bomChecked = true
	return true
}

// drain processes every complete line in pending, then compacts pending down
// to the unterminated remainder.
func (d *Decoder) drain(eof bool) ([]Event, error) {
	var events []Event
	start := 0

	for {
		line, advance, ok := scanLine(d.pending[start:], eof)
		if !ok {
			break
		}
		start += advance
		d.lineNo++

		if d.maxLineSize > 0 && len(line) > d.maxLineSize {
			d.pending = d.pending[start:]
			return events, d.fail(fmt.Errorf("line %d: %d bytes exceeds %d: %w",
				d.lineNo, len(line), d.maxLineSize, ErrLineTooLong))
		}

		if !utf8.Valid(line) {
			d.pending = d.pending[start:]
			return events, d.fail(fmt.Errorf("line %d: %w", d.lineNo, ErrInvalidUTF8))
		}

		if ev, ok := d.processLine(string(line)); ok {
			events = append(events, ev)
		}
	}

	if start > 0 {
		n := copy(d.pending, d.pending[start:])
		d.pending = d.pending[:n]
	}

	// A held back "\r" is not part of the line.
	n := len(d.pending)
	if n > 0 && d.pending[n-1] == '\r' {
		n--
	}
	if d.maxLineSize > 0 && n > d.maxLineSize {
		return events, d.fail(fmt.Errorf("line %d: %d bytes pending exceeds %d: %w",
			d.lineNo+1, n, d.maxLineSize, ErrLineTooLong))
	}

	return events, nil
}

// scanLine finds the first complete line in buf and returns it without its
// terminator along with the number of bytes it occupies. A "\r" as the last
// byte of buf is only a line ending once eof is set, since the next read
// may begin with the "\n" of a "\r\n" pair.
func scanLine(buf []byte, eof bool) (line []byte, advance int, ok bool) {
	i := bytes.IndexAny(buf, "\r\n")
	if i < 0 {
		return nil, 0, false
	}

	if buf[i] == '\n' {
		return buf[:i], i + 1, true
	}

	switch {
	case i+1 < len(buf) && buf[i+1] == '\n':
		return buf[:i], i + 2, true
	case i+1 < len(buf) || eof:
		return buf[:i], i + 1, true
	default:
		return nil, 0, false
	}
}

// processLine applies the field rules to a single line and reports whether it
// dispatched an event.
func (d *Decoder) processLine(line string) (Event, bool) {
	if line == "" {
		return d.dispatch()
	}

	// Lines starting with ':' are comments.
	if line[0] == ':' {
		return Event{}, false
	}

	field, value, found := strings.Cut(line, ":")
	if found {
		// Strip exactly one leading space after the colon.
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "event":
		d.eventType = value
	case "data":
		d.data = append(d.data, value...)
		d.data = append(d.data, '\n')
	case "id":
		if strings.ContainsRune(value, 0) {
			d.logger.Debug("ignoring id containing NUL", "line", d.lineNo)
			break
		}
		d.lastEventID = value
		d.hasLastEventID = true
	case "retry":
		ms, ok := parseRetry(value)
		if !ok {
			d.logger.Debug("ignoring invalid retry", "line", d.lineNo, "value", value)
			break
		}
		d.reconnectionTime = ms
		d.hasReconnection = true
		d.retryUpdated = true
	default:
		d.logger.Debug("ignoring unknown field", "line", d.lineNo, "field", field)
	}

	return Event{}, false
}

// dispatch finalizes the event under construction. A blank line with no
// buffered data only resets the event type.
func (d *Decoder) dispatch() (Event, bool) {
	if len(d.data) == 0 {
		d.eventType = ""
		return Event{}, false
	}

	ev := Event{
		Type: d.eventType,
		Data: string(bytes.TrimSuffix(d.data, []byte{'\n'})),
	}
	if ev.Type == "" {
		ev.Type = DefaultEventType
	}
	if d.hasLastEventID {
		id := d.lastEventID
		ev.ID = &id
	}
	if d.retryUpdated {
		retry := d.reconnectionTime
		ev.Retry = &retry
		d.retryUpdated = false
	}

	d.data = d.data[:0]
	d.eventType = ""

	return ev, true
}

func (d *Decoder) fail(err error) error {
	d.err = err
	d.logger.Debug("sse decoder failed", "error", err)
	return err
}

// parseRetry accepts only a non-empty run of ASCII digits that fits a uint64.
func parseRetry(value string) (uint64, bool) {
	if value == "" {
		return 0, false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, false
		}
	}

	ms, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
