package clarity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// MaxDepth is the deepest nesting of lists, tuples, responses and optionals
// accepted by the codec.
const MaxDepth = 64

// Encode returns the canonical binary encoding of v.
func Encode(v Value) ([]byte, error) {
	if v == nil {
		return nil, &CodecError{Code: ErrParse, Message: "nil value"}
	}
	return v.appendTo(nil, 0)
}

// EncodeTo writes the canonical encoding of v to w.
func EncodeTo(w io.Writer, v Value) error {
	b, err := Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeHex returns the canonical encoding of v as lowercase hex.
func EncodeHex(v Value) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MustEncode is Encode that panics on error.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

func appendU32(dst []byte, n int) ([]byte, error) {
	if uint64(n) > math.MaxUint32 {
		return nil, &CodecError{Code: ErrLengthOverflow, Message: fmt.Sprintf("length %d exceeds u32", n)}
	}
	return binary.BigEndian.AppendUint32(dst, uint32(n)), nil
}

func appendName(dst []byte, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	dst = append(dst, byte(len(name)))
	return append(dst, name...), nil
}

func appendChild(dst []byte, v Value, depth int) ([]byte, error) {
	if depth+1 > MaxDepth {
		return nil, &CodecError{Code: ErrDepthExceeded, Message: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}
	if v == nil {
		return nil, &CodecError{Code: ErrParse, Message: "nil value inside container"}
	}
	return v.appendTo(dst, depth+1)
}

func (i Int) appendTo(dst []byte, _ int) ([]byte, error) {
	b := i.Bytes()
	dst = append(dst, byte(TypeInt))
	return append(dst, b[:]...), nil
}

func (u UInt) appendTo(dst []byte, _ int) ([]byte, error) {
	b := u.Bytes()
	dst = append(dst, byte(TypeUInt))
	return append(dst, b[:]...), nil
}

func (b Buffer) appendTo(dst []byte, _ int) ([]byte, error) {
	dst = append(dst, byte(TypeBuffer))
	dst, err := appendU32(dst, len(b))
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func (b Bool) appendTo(dst []byte, _ int) ([]byte, error) {
	return append(dst, byte(b.TypeID())), nil
}

func (p StandardPrincipal) appendTo(dst []byte, _ int) ([]byte, error) {
	dst = append(dst, byte(TypeStandardPrincipal), p.Version)
	return append(dst, p.Hash[:]...), nil
}

func (p ContractPrincipal) appendTo(dst []byte, _ int) ([]byte, error) {
	dst = append(dst, byte(TypeContractPrincipal), p.Version)
	dst = append(dst, p.Hash[:]...)
	return appendName(dst, p.Name)
}

func (r ResponseOk) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendChild(append(dst, byte(TypeResponseOk)), r.Value, depth)
}

func (r ResponseErr) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendChild(append(dst, byte(TypeResponseErr)), r.Value, depth)
}

func (None) appendTo(dst []byte, _ int) ([]byte, error) {
	return append(dst, byte(TypeOptionalNone)), nil
}

func (s Some) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendChild(append(dst, byte(TypeOptionalSome)), s.Value, depth)
}

func (l List) appendTo(dst []byte, depth int) ([]byte, error) {
	dst = append(dst, byte(TypeList))
	dst, err := appendU32(dst, len(l))
	if err != nil {
		return nil, err
	}
	for _, v := range l {
		if dst, err = appendChild(dst, v, depth); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (t Tuple) appendTo(dst []byte, depth int) ([]byte, error) {
	dst = append(dst, byte(TypeTuple))
	dst, err := appendU32(dst, len(t))
	if err != nil {
		return nil, err
	}
	for _, e := range t {
		if dst, err = appendName(dst, e.Key); err != nil {
			return nil, err
		}
		if dst, err = appendChild(dst, e.Value, depth); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (s StringASCII) appendTo(dst []byte, _ int) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return nil, &CodecError{
				Code:    ErrNonASCII,
				Message: fmt.Sprintf("byte 0x%02x at offset %d", s[i], i),
			}
		}
	}
	dst = append(dst, byte(TypeStringASCII))
	dst, err := appendU32(dst, len(s))
	if err != nil {
		return nil, err
	}
	return append(dst, s...), nil
}

func (s StringUTF8) appendTo(dst []byte, _ int) ([]byte, error) {
	if !utf8.ValidString(string(s)) {
		return nil, &CodecError{Code: ErrInvalidUTF8, Message: "string-utf8 content"}
	}
	dst = append(dst, byte(TypeStringUTF8))
	dst, err := appendU32(dst, len(s))
	if err != nil {
		return nil, err
	}
	return append(dst, s...), nil
}
