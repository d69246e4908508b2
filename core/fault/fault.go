// Package fault classifies failures raised while talking to the dataset
// service.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks a transport failure or a non-2xx response.
	ErrNetwork = errors.New("network failure")
	// ErrMalformed marks a response body that could not be decoded.
	ErrMalformed = errors.New("malformed payload")
	// ErrNotFound marks an unknown vehicle id.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Is makes every StatusError match ErrNetwork; a 404 also matches ErrNotFound.
func (e *StatusError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	return target == ErrNotFound && e.Code == 404
}

// Network wraps err as a transport failure.
func Network(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}

// Malformed wraps err as a decoding failure.
func Malformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
}

// Kind returns a short label for metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "other"
	}
}
