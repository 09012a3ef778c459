package llm

import "errors"

var (
	// ErrContextOverflow indicates the assembled prompt exceeds the
	// model's context window. Callers should suggest narrowing the
	// selection instead of retrying.
	ErrContextOverflow = errors.New("prompt exceeds model context window")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrTransport covers every other completion failure: auth, rate
	// limiting, network, malformed stream.
	ErrTransport = errors.New("llm transport failure")
)
