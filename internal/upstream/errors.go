package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout is returned when the request exceeds its deadline.
	ErrTimeout = errors.New("upstream request timed out")
	// ErrInvalidPayload is returned when a response does not match the expected schema.
	ErrInvalidPayload = errors.New("upstream returned an invalid payload")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
