package clarity

import (
	"fmt"
	"math/big"
)

// As narrows v to the concrete variant T.
func As[T Value](v Value) (T, error) {
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, &CodecError{
			Code:    ErrBadDowncast,
			Message: fmt.Sprintf("cannot cast %T to %T", v, zero),
		}
	}
	return out, nil
}

// BigInt returns the numeric content of an Int or UInt.
func BigInt(v Value) (*big.Int, error) {
	switch x := v.(type) {
	case Int:
		return x.Big(), nil
	case UInt:
		return x.Big(), nil
	}
	return nil, &CodecError{Code: ErrBadDowncast, Message: fmt.Sprintf("%T is not an integer", v)}
}

// Unwrap returns the inner value of a response or optional. For None it
// returns nil and false.
func Unwrap(v Value) (Value, bool) {
	switch x := v.(type) {
	case ResponseOk:
		return x.Value, true
	case ResponseErr:
		return x.Value, true
	case Some:
		return x.Value, true
	}
	return nil, false
}
