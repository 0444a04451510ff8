// Package rpcerr maps the sentinel errors returned by pkg/mqp onto gRPC
// status codes, the way the teacher's cmd/server maps subpub's sentinel
// errors, so a transport built on top of the engine (an RPC service, an
// HTTP handler translating codes itself) doesn't have to know mqp's
// error values.
package rpcerr

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/asemenov/mqp/pkg/mqp"
)

// FromError converts an error returned by a pkg/mqp operation into a gRPC
// status error. Errors not recognized as one of mqp's sentinels become
// codes.Internal.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mqp.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, mqp.ErrNilConsumer):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, mqp.ErrInvalidKey):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Errorf(codes.Internal, "mqp: %v", err)
	}
}

// FromContextError converts a context cancellation/deadline error (as
// returned by Registry.Close) into the matching gRPC status.
func FromContextError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Errorf(codes.Internal, "mqp: %v", err)
	}
}
