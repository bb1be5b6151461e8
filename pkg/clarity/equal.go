package clarity

import "bytes"

// Equal reports whether two values are the same Clarity value. Tuples
// compare by field set regardless of entry order; nil and empty buffers
// are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.TypeID() != b.TypeID() {
		return false
	}

	switch x := a.(type) {
	case Buffer:
		return bytes.Equal(x, b.(Buffer))
	case ResponseOk:
		return Equal(x.Value, b.(ResponseOk).Value)
	case ResponseErr:
		return Equal(x.Value, b.(ResponseErr).Value)
	case Some:
		return Equal(x.Value, b.(Some).Value)
	case List:
		y := b.(List)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Tuple:
		y := b.(Tuple)
		if len(x) != len(y) {
			return false
		}
		for _, e := range x {
			other, ok := y.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	}

	return a == b
}
