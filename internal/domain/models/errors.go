package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol marks a symbol absent from the shard routing table or the
// last-known quote. Surfaced as not-found, never retried.
var ErrUnknownSymbol = errors.New("unknown symbol")

// UpstreamError is a non-2xx response from the quote producer. Retried the
// same way as transport failures.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d", e.Status)
}

// PayloadError is a malformed upstream response. Never retried; it signals a
// contract break, not a transient fault, and propagates to the caller.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed upstream payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// Retryable reports whether a fetch failure is worth another attempt:
// transport failures and upstream rejections are, malformed payloads are not.
func Retryable(err error) bool {
	var pe *PayloadError
	return err != nil && !errors.As(err, &pe)
}
