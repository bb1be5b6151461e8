package clarity

import (
	"errors"
	"fmt"
)

// CodecError is returned when a Clarity value cannot be encoded, decoded,
// parsed or cast.
type CodecError struct {
	Code    string // Error code (e.g., ErrInvalidTypeID, ErrUnexpectedEOF)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("clarity error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("clarity error [%s]: %s", e.Code, e.Message)
}

func (e *CodecError) Unwrap() error {
	return e.Cause
}

// Error codes used by the clarity package.
const (
	ErrInvalidTypeID  = "INVALID_TYPE_ID"  // Leading tag does not match the expected variant
	ErrUnexpectedEOF  = "UNEXPECTED_EOF"   // Input ends inside a value
	ErrInvalidUTF8    = "INVALID_UTF8"     // String or name bytes are not valid UTF-8
	ErrNonASCII       = "NON_ASCII"        // ASCII string holds a byte >= 0x80
	ErrLengthOverflow = "LENGTH_OVERFLOW"  // Name, key or container exceeds its length prefix
	ErrIntOutOfRange  = "INT_OUT_OF_RANGE" // Integer does not fit 128 bits
	ErrBadDowncast    = "BAD_DOWNCAST"     // Value is not of the requested variant
	ErrDepthExceeded  = "DEPTH_EXCEEDED"   // Nesting is deeper than MaxDepth
	ErrTrailingBytes  = "TRAILING_BYTES"   // Input continues after a complete value
	ErrParse          = "PARSE"            // Textual value is malformed
	ErrMissingKey     = "MISSING_KEY"      // Tuple lacks a key a struct field asks for
	ErrResponseErr    = "RESPONSE_ERR"     // (err v) where an (ok v) was required
)

// InvalidTypeID reports a leading tag mismatch.
func InvalidTypeID(expected, got TypeID) error {
	return &CodecError{
		Code:    ErrInvalidTypeID,
		Message: fmt.Sprintf("expected type id %s, got %s", expected, got),
	}
}

func errEOF(what string) error {
	return &CodecError{Code: ErrUnexpectedEOF, Message: fmt.Sprintf("truncated %s", what)}
}

// IsCode reports whether err is a CodecError with the given code.
func IsCode(err error, code string) bool {
	var ce *CodecError
	return errors.As(err, &ce) && ce.Code == code
}
