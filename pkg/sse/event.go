// Package sse provides an incremental decoder for the Server-Sent Events
// (text/event-stream) wire format.
//
// The Decoder is push based: callers hand it bytes as they arrive from a
// transport and receive the events completed by those bytes. Read boundaries
// never need to line up with line or event boundaries. Reader and TeeReader
// adapt the Decoder to an io.Reader source.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "time"

// DefaultEventType is the type of every event whose stream did not set an
// "event:" field for it.
const DefaultEventType = "message"

// Event represents a single dispatched SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field, or DefaultEventType.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID in effect when the event was dispatched.
	// It persists across events until the stream sets a new one and is nil
	// when the stream never set one.
	ID *string

	// Retry is the reconnection time in milliseconds. It is only set when
	// the stream sent a valid "retry:" field since the previous dispatch.
	Retry *uint64
}

// RetryDuration returns Retry as a time.Duration.
func (e *Event) RetryDuration() (time.Duration, bool) {
	if e.Retry == nil {
		return 0, false
	}
	return time.Duration(*e.Retry) * time.Millisecond, true
}

// LastEventID returns the event's ID and whether one was set.
func (e *Event) LastEventID() (string, bool) {
	if e.ID == nil {
		return "", false
	}
	return *e.ID, true
}
