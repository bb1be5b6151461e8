// Package clarity implements Clarity values, the typed value language used
// for smart-contract arguments and results on Stacks.
//
// Every value is one of a closed set of variants. Each variant has a
// canonical self-describing binary encoding (a one-byte type id followed by
// a payload, integers big-endian) and a textual rendering matching Clarity
// literal syntax:
//
//	Int                 0x00 i128                          -4
//	UInt                0x01 u128                          u4
//	Buffer              0x02 u32 len, bytes                0xdeadbeef
//	Bool                0x03 true / 0x04 false             true
//	StandardPrincipal   0x05 version, hash160              SP2J...
//	ContractPrincipal   0x06 version, hash160, u8 name     SP2J....name
//	ResponseOk/Err      0x07 / 0x08 value                  (ok v) / (err v)
//	None / Some         0x09 / 0x0a value                  none / (some v)
//	List                0x0b u32 count, values             (list a b)
//	Tuple               0x0c u32 count, (u8 key, value)*   (tuple (k v))
//	StringASCII/UTF8    0x0d / 0x0e u32 len, bytes         "s" / u"s"
package clarity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// TypeID is the leading tag byte of an encoded value.
type TypeID uint8

const (
	TypeInt               TypeID = 0x00
	TypeUInt              TypeID = 0x01
	TypeBuffer            TypeID = 0x02
	TypeBoolTrue          TypeID = 0x03
	TypeBoolFalse         TypeID = 0x04
	TypeStandardPrincipal TypeID = 0x05
	TypeContractPrincipal TypeID = 0x06
	TypeResponseOk        TypeID = 0x07
	TypeResponseErr       TypeID = 0x08
	TypeOptionalNone      TypeID = 0x09
	TypeOptionalSome      TypeID = 0x0a
	TypeList              TypeID = 0x0b
	TypeTuple             TypeID = 0x0c
	TypeStringASCII       TypeID = 0x0d
	TypeStringUTF8        TypeID = 0x0e
)

var typeNames = map[TypeID]string{
	TypeInt:               "int",
	TypeUInt:              "uint",
	TypeBuffer:            "buffer",
	TypeBoolTrue:          "true",
	TypeBoolFalse:         "false",
	TypeStandardPrincipal: "standard-principal",
	TypeContractPrincipal: "contract-principal",
	TypeResponseOk:        "ok",
	TypeResponseErr:       "err",
	TypeOptionalNone:      "none",
	TypeOptionalSome:      "some",
	TypeList:              "list",
	TypeTuple:             "tuple",
	TypeStringASCII:       "string-ascii",
	TypeStringUTF8:        "string-utf8",
}

func (t TypeID) String() string {
	if name, ok := typeNames[t]; ok {
		return fmt.Sprintf("0x%02x (%s)", uint8(t), name)
	}
	return fmt.Sprintf("0x%02x", uint8(t))
}

// Value is a Clarity value. The set of implementations is closed.
type Value interface {
	TypeID() TypeID
	String() string

	// appendTo appends the canonical encoding to dst.
	appendTo(dst []byte, depth int) ([]byte, error)
}

// Buffer is a byte buffer value.
type Buffer []byte

// Bool is a boolean value; true and false carry distinct type ids.
type Bool bool

const (
	True  = Bool(true)
	False = Bool(false)
)

// ResponseOk is the (ok v) side of a response.
type ResponseOk struct {
	Value Value
}

// ResponseErr is the (err v) side of a response.
type ResponseErr struct {
	Value Value
}

// None is the empty optional.
type None struct{}

// Some is a present optional.
type Some struct {
	Value Value
}

// List is an ordered list of values.
type List []Value

// TupleEntry is a named tuple field.
type TupleEntry struct {
	Key   string
	Value Value
}

// Tuple is a set of named fields. Entry order is kept for encoding; Equal
// ignores it.
type Tuple []TupleEntry

// StringASCII is an ASCII string value. Non-ASCII content is rejected when
// encoding.
type StringASCII string

// StringUTF8 is a UTF-8 string value.
type StringUTF8 string

func (Int) TypeID() TypeID         { return TypeInt }
func (UInt) TypeID() TypeID        { return TypeUInt }
func (Buffer) TypeID() TypeID      { return TypeBuffer }
func (ResponseOk) TypeID() TypeID  { return TypeResponseOk }
func (ResponseErr) TypeID() TypeID { return TypeResponseErr }
func (None) TypeID() TypeID        { return TypeOptionalNone }
func (Some) TypeID() TypeID        { return TypeOptionalSome }
func (List) TypeID() TypeID        { return TypeList }
func (Tuple) TypeID() TypeID       { return TypeTuple }
func (StringASCII) TypeID() TypeID { return TypeStringASCII }
func (StringUTF8) TypeID() TypeID  { return TypeStringUTF8 }

func (b Bool) TypeID() TypeID {
	if b {
		return TypeBoolTrue
	}
	return TypeBoolFalse
}

func (i Int) String() string  { return i.Big().String() }
func (u UInt) String() string { return "u" + u.Big().String() }
func (b Buffer) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (r ResponseOk) String() string  { return fmt.Sprintf("(ok %s)", r.Value) }
func (r ResponseErr) String() string { return fmt.Sprintf("(err %s)", r.Value) }
func (None) String() string          { return "none" }
func (s Some) String() string        { return fmt.Sprintf("(some %s)", s.Value) }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteString("(list ")
	for i, v := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("(tuple ")
	for i, e := range t {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "(%s %s)", e.Key, e.Value)
	}
	sb.WriteByte(')')
	return sb.String()
}

func (s StringASCII) String() string { return quote(string(s)) }
func (s StringUTF8) String() string  { return "u" + quote(string(s)) }

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// NewTuple builds a tuple; a repeated key keeps the last value.
func NewTuple(entries ...TupleEntry) Tuple {
	t := make(Tuple, 0, len(entries))
	for _, e := range entries {
		t = t.Set(e.Key, e.Value)
	}
	return t
}

// Get returns the value stored under key.
func (t Tuple) Get(key string) (Value, bool) {
	for _, e := range t {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key or appends a new entry.
func (t Tuple) Set(key string, v Value) Tuple {
	for i, e := range t {
		if e.Key == key {
			out := append(Tuple(nil), t...)
			out[i].Value = v
			return out
		}
	}
	return append(t, TupleEntry{Key: key, Value: v})
}

// Ok wraps v in a successful response.
func Ok(v Value) ResponseOk { return ResponseOk{Value: v} }

// Err wraps v in an error response.
func Err(v Value) ResponseErr { return ResponseErr{Value: v} }

// Optional returns (some v) or none when v is nil.
func Optional(v Value) Value {
	if v == nil {
		return None{}
	}
	return Some{Value: v}
}

// principalString renders an address even when the version is not one of
// the four standard ones.
func principalString(version uint8, hash crypto.Hash160) string {
	if encoded, err := crypto.C32CheckEncode(version, hash[:]); err == nil {
		return "S" + encoded
	}
	return fmt.Sprintf("S?%x", hash[:])
}
