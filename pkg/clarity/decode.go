package clarity

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// Decode reads one value from the front of b and returns it together with
// the number of bytes consumed. Trailing bytes are left for the caller.
func Decode(b []byte) (Value, int, error) {
	d := &decoder{buf: b}
	v, err := d.value(0)
	if err != nil {
		return nil, 0, err
	}
	return v, d.pos, nil
}

// DecodeExact decodes b and fails if anything follows the value.
func DecodeExact(b []byte) (Value, error) {
	v, n, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, &CodecError{
			Code:    ErrTrailingBytes,
			Message: fmt.Sprintf("%d bytes after value", len(b)-n),
		}
	}
	return v, nil
}

// DecodeHex decodes a hex string, with or without 0x, holding exactly one
// value.
func DecodeHex(s string) (Value, error) {
	b, err := crypto.HexToBytes(s)
	if err != nil {
		return nil, &CodecError{Code: ErrParse, Message: "invalid hex", Cause: err}
	}
	return DecodeExact(b)
}

// DecodeAs decodes one value and requires it to be of type T. The leading
// tag is checked before the payload is read.
func DecodeAs[T Value](b []byte) (T, int, error) {
	var zero T
	if len(b) == 0 {
		return zero, 0, errEOF("type id")
	}
	if want, ok := expectedTypeID[T](); ok && !tagMatches(want, TypeID(b[0])) {
		return zero, 0, InvalidTypeID(want, TypeID(b[0]))
	}
	v, n, err := Decode(b)
	if err != nil {
		return zero, 0, err
	}
	out, err := As[T](v)
	if err != nil {
		return zero, 0, err
	}
	return out, n, nil
}

func tagMatches(want, got TypeID) bool {
	if want == TypeBoolTrue || want == TypeBoolFalse {
		return got == TypeBoolTrue || got == TypeBoolFalse
	}
	return want == got
}

func expectedTypeID[T Value]() (TypeID, bool) {
	var zero T
	switch any(zero).(type) {
	case Int:
		return TypeInt, true
	case UInt:
		return TypeUInt, true
	case Buffer:
		return TypeBuffer, true
	case Bool:
		return TypeBoolFalse, true
	case StandardPrincipal:
		return TypeStandardPrincipal, true
	case ContractPrincipal:
		return TypeContractPrincipal, true
	case ResponseOk:
		return TypeResponseOk, true
	case ResponseErr:
		return TypeResponseErr, true
	case None:
		return TypeOptionalNone, true
	case Some:
		return TypeOptionalSome, true
	case List:
		return TypeList, true
	case Tuple:
		return TypeTuple, true
	case StringASCII:
		return TypeStringASCII, true
	case StringUTF8:
		return TypeStringUTF8, true
	}
	return 0, false
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || len(d.buf)-d.pos < n {
		return nil, errEOF(what)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readByte(what string) (byte, error) {
	b, err := d.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u32(what string) (int, error) {
	b, err := d.take(4, what)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

func (d *decoder) name(what string) (string, error) {
	n, err := d.readByte(what + " length")
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", &CodecError{Code: ErrParse, Message: "empty " + what}
	}
	if int(n) > MaxNameLength {
		return "", &CodecError{
			Code:    ErrLengthOverflow,
			Message: fmt.Sprintf("%s is %d bytes, max %d", what, n, MaxNameLength),
		}
	}
	b, err := d.take(int(n), what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &CodecError{Code: ErrInvalidUTF8, Message: what}
	}
	return string(b), nil
}

func (d *decoder) hash160() (crypto.Hash160, error) {
	var h crypto.Hash160
	b, err := d.take(crypto.Hash160Size, "principal hash")
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (d *decoder) child(depth int) (Value, error) {
	if depth+1 > MaxDepth {
		return nil, &CodecError{Code: ErrDepthExceeded, Message: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}
	return d.value(depth + 1)
}

func (d *decoder) value(depth int) (Value, error) {
	tag, err := d.readByte("type id")
	if err != nil {
		return nil, err
	}

	switch TypeID(tag) {
	case TypeInt, TypeUInt:
		b, err := d.take(16, "integer")
		if err != nil {
			return nil, err
		}
		hi, lo := binary.BigEndian.Uint64(b[:8]), binary.BigEndian.Uint64(b[8:])
		if TypeID(tag) == TypeInt {
			return Int{hi: hi, lo: lo}, nil
		}
		return UInt{hi: hi, lo: lo}, nil

	case TypeBuffer:
		n, err := d.u32("buffer length")
		if err != nil {
			return nil, err
		}
		b, err := d.take(n, "buffer")
		if err != nil {
			return nil, err
		}
		return Buffer(append([]byte{}, b...)), nil

	case TypeBoolTrue:
		return True, nil

	case TypeBoolFalse:
		return False, nil

	case TypeStandardPrincipal, TypeContractPrincipal:
		version, err := d.readByte("principal version")
		if err != nil {
			return nil, err
		}
		hash, err := d.hash160()
		if err != nil {
			return nil, err
		}
		if TypeID(tag) == TypeStandardPrincipal {
			return StandardPrincipal{Version: version, Hash: hash}, nil
		}
		name, err := d.name("contract name")
		if err != nil {
			return nil, err
		}
		return ContractPrincipal{Version: version, Hash: hash, Name: name}, nil

	case TypeResponseOk:
		v, err := d.child(depth)
		if err != nil {
			return nil, err
		}
		return ResponseOk{Value: v}, nil

	case TypeResponseErr:
		v, err := d.child(depth)
		if err != nil {
			return nil, err
		}
		return ResponseErr{Value: v}, nil

	case TypeOptionalNone:
		return None{}, nil

	case TypeOptionalSome:
		v, err := d.child(depth)
		if err != nil {
			return nil, err
		}
		return Some{Value: v}, nil

	case TypeList:
		n, err := d.u32("list length")
		if err != nil {
			return nil, err
		}
		// Each element is at least one byte; the count is untrusted.
		if n > len(d.buf)-d.pos {
			return nil, errEOF("list")
		}
		l := make(List, 0, n)
		for i := 0; i < n; i++ {
			v, err := d.child(depth)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil

	case TypeTuple:
		n, err := d.u32("tuple length")
		if err != nil {
			return nil, err
		}
		if n > len(d.buf)-d.pos {
			return nil, errEOF("tuple")
		}
		t := make(Tuple, 0, n)
		for i := 0; i < n; i++ {
			key, err := d.name("tuple key")
			if err != nil {
				return nil, err
			}
			v, err := d.child(depth)
			if err != nil {
				return nil, err
			}
			t = append(t, TupleEntry{Key: key, Value: v})
		}
		return t, nil

	case TypeStringASCII:
		n, err := d.u32("string length")
		if err != nil {
			return nil, err
		}
		b, err := d.take(n, "string-ascii")
		if err != nil {
			return nil, err
		}
		return StringASCII(b), nil

	case TypeStringUTF8:
		n, err := d.u32("string length")
		if err != nil {
			return nil, err
		}
		b, err := d.take(n, "string-utf8")
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, &CodecError{Code: ErrInvalidUTF8, Message: "string-utf8 content"}
		}
		return StringUTF8(b), nil
	}

	return nil, &CodecError{Code: ErrInvalidTypeID, Message: fmt.Sprintf("unknown type id %s", TypeID(tag))}
}
