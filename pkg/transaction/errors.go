package transaction

import (
	"errors"
	"fmt"
)

// CodecError is returned when a transaction field cannot be encoded or
// decoded.
type CodecError struct {
	Code    string // Error code (e.g., ErrUnexpectedEOF, ErrLengthOverflow)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transaction codec error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("transaction codec error [%s]: %s", e.Code, e.Message)
}

func (e *CodecError) Unwrap() error {
	return e.Cause
}

// VerifyError is returned when a spending condition does not verify against
// the signature hash chain.
type VerifyError struct {
	Code     string
	Expected string
	Got      string
	Cause    error
}

func (e *VerifyError) Error() string {
	msg := fmt.Sprintf("verification failed [%s]: expected %s, got %s", e.Code, e.Expected, e.Got)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *VerifyError) Unwrap() error {
	return e.Cause
}

// ModificationError is returned when an authorization cannot take the
// requested change.
type ModificationError struct {
	Code    string
	Message string
}

func (e *ModificationError) Error() string {
	return fmt.Sprintf("authorization error [%s]: %s", e.Code, e.Message)
}

// Error codes used by the transaction package.
const (
	// Codec
	ErrUnexpectedEOF  = "UNEXPECTED_EOF"  // Input ends inside a field
	ErrLengthOverflow = "LENGTH_OVERFLOW" // String, memo or count exceeds its prefix
	ErrInvalidUTF8    = "INVALID_UTF8"    // Name bytes are not valid UTF-8
	ErrInvalidEnum    = "INVALID_ENUM"    // Tag or mode byte is out of range
	ErrInvalidValue   = "INVALID_VALUE"   // Field holds a value of the wrong kind
	ErrTrailingBytes  = "TRAILING_BYTES"  // Input continues after the transaction

	// Verification
	ErrBadSigner         = "BAD_SIGNER"          // Recovered keys hash to a different signer
	ErrBadSignatureCount = "BAD_SIGNATURE_COUNT" // Multi-sig signature count differs from required
	ErrBadSignature      = "BAD_SIGNATURE"       // Signature cannot be recovered

	// Modification
	ErrNotSponsored = "NOT_SPONSORED" // Sponsor operation on a standard authorization
)

// BadSigner reports a signer hash mismatch.
func BadSigner(expected, got string) error {
	return &VerifyError{Code: ErrBadSigner, Expected: expected, Got: got}
}

// BadSignatureCount reports a multi-sig condition carrying the wrong number
// of signatures.
func BadSignatureCount(expected, got int) error {
	return &VerifyError{
		Code:     ErrBadSignatureCount,
		Expected: fmt.Sprint(expected),
		Got:      fmt.Sprint(got),
	}
}

func errEOF(what string) error {
	return &CodecError{Code: ErrUnexpectedEOF, Message: fmt.Sprintf("truncated %s", what)}
}

func errEnum(what string, v byte) error {
	return &CodecError{Code: ErrInvalidEnum, Message: fmt.Sprintf("invalid %s 0x%02x", what, v)}
}

// IsCode reports whether err carries the given code from any of the
// package's error types.
func IsCode(err error, code string) bool {
	var ce *CodecError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	var ve *VerifyError
	if errors.As(err, &ve) && ve.Code == code {
		return true
	}
	var me *ModificationError
	return errors.As(err, &me) && me.Code == code
}
