package eventstream

import "context"

// Publisher publishes decoded events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *DecodedEvent) error
	Close() error
}
