package rpcerr

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/asemenov/mqp/pkg/mqp"
)

func TestFromErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{mqp.ErrClosed, codes.Unavailable},
		{mqp.ErrNilConsumer, codes.InvalidArgument},
		{mqp.ErrInvalidKey, codes.InvalidArgument},
	}
	for _, c := range cases {
		got := status.Code(FromError(c.err))
		if got != c.code {
			t.Errorf("FromError(%v) = %v, want %v", c.err, got, c.code)
		}
	}
}

func TestFromContextErrorMapsDeadline(t *testing.T) {
	if got := status.Code(FromContextError(context.DeadlineExceeded)); got != codes.DeadlineExceeded {
		t.Errorf("got %v, want DeadlineExceeded", got)
	}
	if got := status.Code(FromContextError(context.Canceled)); got != codes.Canceled {
		t.Errorf("got %v, want Canceled", got)
	}
}

func TestFromErrorNilIsNil(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("expected nil")
	}
}
