package cartsync

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the bearer credential is missing, expired or revoked.
var ErrUnauthorized = errors.New("cartsync: unauthorized")

// ValidationError is a rejection the user can act on: bad quantity, unknown
// listing, out of stock.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
	Details    []string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cartsync: %s rejected (status %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("cartsync: %s rejected: %s", e.Op, e.Message)
}

// NetworkError is a transient transport failure. Callers may retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cartsync: %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a persisted cart payload that could not be decoded.
// It never leaves the package: FileStore.Load turns it into an empty cart.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cartsync: cannot parse cart file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
