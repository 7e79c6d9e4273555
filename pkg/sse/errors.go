package sse

import "errors"

var (
	// ErrInvalidUTF8 indicates a complete line was not valid UTF-8. It is
	// fatal: the Decoder returns it from every later call.
	ErrInvalidUTF8 = errors.New("sse: line is not valid utf-8")

	// ErrMalformedField is reserved for field violations the tolerant field
	// rules cannot absorb. The Decoder does not currently return it.
	ErrMalformedField = errors.New("sse: malformed field")

	// ErrLineTooLong indicates a pending line grew past the limit set with
	// WithMaxLineSize. It is fatal.
	ErrLineTooLong = errors.New("sse: line too long")

	// ErrFinished indicates input was offered after Finish.
	ErrFinished = errors.New("sse: decoder finished")
)
