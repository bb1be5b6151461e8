package roles

import (
	"errors"
	"fmt"
)

// SigningError is returned when a role is asked to do something the signing
// state machine does not allow in its current state.
type SigningError struct {
	Code    string // Error code (e.g., ErrOriginOversign)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("signing error [%s]: %s", e.Code, e.Message)
}

func (e *SigningError) Unwrap() error {
	return e.Cause
}

// Error codes for signing state violations.
const (
	ErrOriginOversign              = "ORIGIN_OVERSIGN"                // Origin already carries its required signatures
	ErrSponsorOversign             = "SPONSOR_OVERSIGN"               // Sponsor already carries its required signatures
	ErrOriginPostSponsorSign       = "ORIGIN_POST_SPONSOR_SIGN"       // Origin signature after the sponsor chain started
	ErrOriginPostSponsorAppend     = "ORIGIN_POST_SPONSOR_APPEND"     // Origin key appended after the sponsor chain started
	ErrSponsorPreOriginSign        = "SPONSOR_PRE_ORIGIN_SIGN"        // Sponsor signature before the origin is complete
	ErrAppendPublicKeyBadCondition = "APPEND_PUBLIC_KEY_BAD_CONDITION" // Public key appended to a single-sig condition
	ErrNotSponsored                = "NOT_SPONSORED"                  // Sponsor operation on a standard authorization
	ErrUnknownSigningKey           = "UNKNOWN_SIGNING_KEY"            // Private key matches none of the multi-sig keys
	ErrIncomplete                  = "INCOMPLETE"                     // Transaction is missing signatures
)

func signingError(code, format string, args ...any) error {
	return &SigningError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is a SigningError with the given code.
func IsCode(err error, code string) bool {
	var se *SigningError
	return errors.As(err, &se) && se.Code == code
}
