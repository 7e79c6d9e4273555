package eventstream

import "errors"

var (
	// ErrNilEvent indicates a nil decoded event was provided to a publisher.
	ErrNilEvent = errors.New("nil decoded event")

	// ErrUnknownProvider is returned by NewPublisher for an unsupported
	// provider name.
	ErrUnknownProvider = errors.New("unknown publish provider")
)
