package mqp

import "testing"

func TestCancellationSourceStartsLive(t *testing.T) {
	s := NewCancellationSource()
	if s.IsCancellationRequested() {
		t.Fatal("fresh source reports cancelled")
	}
	if s.Token().IsCancellationRequested() {
		t.Fatal("fresh token reports cancelled")
	}
}

func TestCancellationPropagatesToExistingTokens(t *testing.T) {
	s := NewCancellationSource()
	tok := s.Token()

	s.Cancel()

	if !tok.IsCancellationRequested() {
		t.Fatal("token taken before Cancel should observe cancellation afterward")
	}
	if !s.Token().IsCancellationRequested() {
		t.Fatal("token taken after Cancel should report cancelled")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	s := NewCancellationSource()
	s.Cancel()
	s.Cancel()
	if !s.IsCancellationRequested() {
		t.Fatal("expected cancelled after repeated Cancel")
	}
}

func TestZeroValueTokenIsNotCancelled(t *testing.T) {
	var tok CancellationToken
	if tok.IsCancellationRequested() {
		t.Fatal("zero-value token should not report cancelled")
	}
}
