package crawler

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus marks a response whose status code was outside 2xx.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// ErrNotRetryable marks a fetch failure that another attempt cannot fix,
// such as a URL disallowed by robots.txt.
var ErrNotRetryable = errors.New("not retryable")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatus.Error(), e.StatusCode)
}

// Is lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// FetchError is returned once every attempt for a URL has failed. Callers
// treat it as "skip this URL"; it is never fatal to a crawl.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
