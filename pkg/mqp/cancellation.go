package mqp

import "sync/atomic"

// CancellationToken is a cheap, copyable handle that reports whether the
// CancellationSource that produced it has been cancelled. It lets a queued
// or in-flight delivery task check, without touching processor locks,
// whether the subscription it was built for was torn down in the meantime.
type CancellationToken struct {
	flag *atomic.Bool
}

// IsCancellationRequested reports whether Cancel has been called on the
// source this token was obtained from.
func (t CancellationToken) IsCancellationRequested() bool {
	if t.flag == nil {
		return false
	}
	return t.flag.Load()
}

// CancellationSource owns a cancellation flag. Unlike the C++ original this
// port is based on, cancellation here is explicit rather than tied to the
// source's destruction: Go's GC collects the processor/cursor/task cycle on
// its own, so the only thing that still needs a signal is "stop delivering
// for this subscription", which RemoveSubscription requests directly.
type CancellationSource struct {
	flag atomic.Bool
}

// NewCancellationSource returns a fresh, not-yet-cancelled source.
func NewCancellationSource() *CancellationSource {
	return &CancellationSource{}
}

// Token returns a token bound to this source. Tokens are freely copyable.
func (s *CancellationSource) Token() CancellationToken {
	return CancellationToken{flag: &s.flag}
}

// Cancel requests cancellation. Idempotent.
func (s *CancellationSource) Cancel() {
	s.flag.Store(true)
}

// IsCancellationRequested reports whether Cancel has been called.
func (s *CancellationSource) IsCancellationRequested() bool {
	return s.flag.Load()
}
