package rpc

import (
	"errors"
	"fmt"
)

// ErrFeeOverflow is returned when a fee estimate does not fit in a uint64.
var ErrFeeOverflow = errors.New("fee estimate overflows uint64")

// BadRequestError is returned when the node answers with a non-2xx status.
type BadRequestError struct {
	Status int    // HTTP status code
	Body   string // Response body as returned by the node

	// Set when the body is a broadcast rejection object.
	Reason string
	TxID   string
}

func (e *BadRequestError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("node returned %d: %s (%s)", e.Status, e.Reason, e.Body)
	}
	return fmt.Sprintf("node returned %d: %s", e.Status, e.Body)
}

// ReadOnlyError is returned when a read-only call reports okay=false.
type ReadOnlyError struct {
	Cause string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("read-only call failed: %s", e.Cause)
}
