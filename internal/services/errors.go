package services

import (
	"errors"
	"fmt"

	"github.com/irfndi/statspulse-go/internal/credential"
	"github.com/irfndi/statspulse-go/internal/upstream"
)

var (
	// ErrCredentialUnavailable means no usable access credential is held.
	ErrCredentialUnavailable = credential.ErrUnavailable
	// ErrUnauthorized means the upstream rejected the credential.
	ErrUnauthorized = errors.New("upstream rejected the access credential")
	// ErrUpstreamFailure covers every other failed upstream call.
	ErrUpstreamFailure = errors.New("failed to fetch data from upstream")
)

// classifyUpstreamError maps a client error onto the service error classes. When
// keepUnauthorized is false a 401 is reported as an ordinary upstream failure.
func classifyUpstreamError(err error, keepUnauthorized bool) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credential.ErrUnavailable):
		return err
	case keepUnauthorized && upstream.IsUnauthorized(err):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
}
