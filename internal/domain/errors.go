package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches any *FetchError.
	ErrFetch = errors.New("feed fetch failed")

	// ErrParse marks a feed item that could not be normalized.
	ErrParse = errors.New("malformed feed item")

	// ErrPublish marks a broker publish that was rejected or timed out.
	ErrPublish = errors.New("publish failed")

	// ErrConnect marks a broker connection that could not be established.
	ErrConnect = errors.New("broker connect failed")
)

// FetchError reports a feed request that failed in transport or returned a
// non-success status. StatusCode is 0 when no response was received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed fetch failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("feed fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }
