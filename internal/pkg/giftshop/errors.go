package giftshop

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a failure that may succeed when retried: transport errors,
	// timeouts and non-2xx responses other than 404.
	ErrTransient = errors.New("giftshop: transient failure")
	// ErrNotFound marks a product that no longer exists upstream.
	ErrNotFound = errors.New("giftshop: not found")
	// ErrMalformed marks a payload missing a field a Gift cannot do without.
	ErrMalformed = errors.New("giftshop: malformed payload")
)

// StatusError carries the HTTP status of a failed catalog request.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Body != "" {
		return fmt.Sprintf("giftshop: %s status=%d body=%s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("giftshop: %s status=%d", e.URL, e.StatusCode)
}

// Unwrap classifies the status so callers can match with errors.Is.
func (e *StatusError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return ErrTransient
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
