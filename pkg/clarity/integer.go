package clarity

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two127 = new(big.Int).Lsh(big.NewInt(1), 127)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)

	maxInt128  = new(big.Int).Sub(two127, big.NewInt(1))
	minInt128  = new(big.Int).Neg(two127)
	maxUInt128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// Int is a signed 128-bit Clarity integer held in two's complement.
type Int struct {
	hi uint64
	lo uint64
}

// UInt is an unsigned 128-bit Clarity integer.
type UInt struct {
	hi uint64
	lo uint64
}

// NewInt returns an Int holding v.
func NewInt(v int64) Int {
	hi := uint64(0)
	if v < 0 {
		hi = math.MaxUint64
	}
	return Int{hi: hi, lo: uint64(v)}
}

// NewIntFromBig converts a big integer, failing outside [-2^127, 2^127-1].
func NewIntFromBig(v *big.Int) (Int, error) {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Int{}, &CodecError{Code: ErrIntOutOfRange, Message: fmt.Sprintf("%s does not fit i128", v)}
	}

	x := new(big.Int).Set(v)
	if x.Sign() < 0 {
		x.Add(x, two128)
	}
	hi, lo := splitBig(x)
	return Int{hi: hi, lo: lo}, nil
}

// NewIntFromString parses a base-10 signed integer.
func NewIntFromString(s string) (Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, &CodecError{Code: ErrParse, Message: fmt.Sprintf("invalid integer %q", s)}
	}
	return NewIntFromBig(v)
}

// MaxInt returns 2^127-1.
func MaxInt() Int { return Int{hi: math.MaxInt64, lo: math.MaxUint64} }

// MinInt returns -2^127.
func MinInt() Int { return Int{hi: 1 << 63, lo: 0} }

// Big returns the value as a big integer.
func (i Int) Big() *big.Int {
	x := joinBig(i.hi, i.lo)
	if i.hi>>63 == 1 {
		x.Sub(x, two128)
	}
	return x
}

// Int64 returns the value when it fits an int64.
func (i Int) Int64() (int64, bool) {
	v := int64(i.lo)
	if (v < 0 && i.hi == math.MaxUint64) || (v >= 0 && i.hi == 0) {
		return v, true
	}
	return 0, false
}

func (i Int) Bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[:8], i.hi)
	binary.BigEndian.PutUint64(out[8:], i.lo)
	return out
}

// NewUInt returns a UInt holding v.
func NewUInt(v uint64) UInt {
	return UInt{lo: v}
}

// NewUIntFromBig converts a big integer, failing outside [0, 2^128-1].
func NewUIntFromBig(v *big.Int) (UInt, error) {
	if v.Sign() < 0 || v.Cmp(maxUInt128) > 0 {
		return UInt{}, &CodecError{Code: ErrIntOutOfRange, Message: fmt.Sprintf("%s does not fit u128", v)}
	}
	hi, lo := splitBig(v)
	return UInt{hi: hi, lo: lo}, nil
}

// NewUIntFromString parses a base-10 unsigned integer.
func NewUIntFromString(s string) (UInt, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return UInt{}, &CodecError{Code: ErrParse, Message: fmt.Sprintf("invalid unsigned integer %q", s)}
	}
	return NewUIntFromBig(v)
}

// MaxUInt returns 2^128-1.
func MaxUInt() UInt { return UInt{hi: math.MaxUint64, lo: math.MaxUint64} }

func (u UInt) Big() *big.Int {
	return joinBig(u.hi, u.lo)
}

// Uint64 returns the value when it fits a uint64.
func (u UInt) Uint64() (uint64, bool) {
	return u.lo, u.hi == 0
}

func (u UInt) Bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[:8], u.hi)
	binary.BigEndian.PutUint64(out[8:], u.lo)
	return out
}

func splitBig(x *big.Int) (uint64, uint64) {
	hi := new(big.Int).Rsh(x, 64)
	lo := new(big.Int).Mod(x, two64)
	return hi.Uint64(), lo.Uint64()
}

func joinBig(hi, lo uint64) *big.Int {
	x := new(big.Int).SetUint64(hi)
	x.Lsh(x, 64)
	return x.Or(x, new(big.Int).SetUint64(lo))
}
