// Package eventstream defines the envelope ssecodec emits for every decoded
// SSE event and the publishers that carry it to downstream systems.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/ssecodec/pkg/sse"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDecoded is emitted for each event decoded from a stream.
	EventTypeDecoded = "ssecodec.event.decoded"
)

// DecodedEvent is a transport-neutral envelope around one decoded SSE event.
type DecodedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Source        string    `json:"source"`
	Sequence      uint64    `json:"sequence"`
	Event         SSEFields `json:"event"`
}

// SSEFields mirrors sse.Event for serialization.
type SSEFields struct {
	Type  string  `json:"type"`
	Data  string  `json:"data"`
	ID    *string `json:"id,omitempty"`
	Retry *uint64 `json:"retry,omitempty"`
}

// NewDecodedEvent wraps ev in an envelope stamped with a fresh event ID and
// the current time. seq is the event's position within source, starting at 1.
func NewDecodedEvent(source string, seq uint64, ev sse.Event) *DecodedEvent {
	return &DecodedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeDecoded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Sequence:      seq,
		Event: SSEFields{
			Type:  ev.Type,
			Data:  ev.Data,
			ID:    ev.ID,
			Retry: ev.Retry,
		},
	}
}

// Key returns the partitioning key for the envelope: the SSE last event ID
// when present, otherwise the source.
func (e *DecodedEvent) Key() string {
	if e.Event.ID != nil && *e.Event.ID != "" {
		return *e.Event.ID
	}
	return e.Source
}
