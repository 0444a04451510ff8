package mqp

import "errors"

var (
	// ErrClosed is returned by Registry operations after Close has completed.
	ErrClosed = errors.New("mqp: registry closed")

	// ErrNilConsumer is returned by Subscribe when consumer is nil.
	ErrNilConsumer = errors.New("mqp: consumer must not be nil")

	// ErrInvalidKey is returned by Subscribe when key validation is enabled
	// (WithKeyValidator) and the supplied validator rejects the key.
	ErrInvalidKey = errors.New("mqp: invalid key")
)
