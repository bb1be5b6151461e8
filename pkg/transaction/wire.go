package transaction

import (
	"encoding/binary"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// reader walks a transaction byte slice. Every read is bounds-checked and
// reports ErrUnexpectedEOF instead of panicking.
type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader {
	return &reader{buf: b}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errEOF(what)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readByte(what string) (byte, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(what string) (uint16, error) {
	b, err := r.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32(what string) (uint32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64(what string) (uint64, error) {
	b, err := r.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) hash160(what string) (crypto.Hash160, error) {
	var h crypto.Hash160
	b, err := r.take(crypto.Hash160Size, what)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (r *reader) signature(what string) (crypto.MessageSignature, error) {
	var s crypto.MessageSignature
	b, err := r.take(crypto.MessageSignatureSize, what)
	if err != nil {
		return s, err
	}
	copy(s[:], b)
	return s, nil
}

// address reads a principal without its Clarity tag: version then hash.
func (r *reader) address(what string) (clarity.StandardPrincipal, error) {
	version, err := r.readByte(what + " version")
	if err != nil {
		return clarity.StandardPrincipal{}, err
	}
	hash, err := r.hash160(what + " hash")
	if err != nil {
		return clarity.StandardPrincipal{}, err
	}
	return clarity.StandardPrincipal{Version: version, Hash: hash}, nil
}

func (r *reader) clarityValue(what string) (clarity.Value, error) {
	v, n, err := clarity.Decode(r.buf[r.pos:])
	if err != nil {
		return nil, &CodecError{Code: ErrInvalidValue, Message: what, Cause: err}
	}
	r.pos += n
	return v, nil
}

func appendAddress(dst []byte, p clarity.StandardPrincipal) []byte {
	dst = append(dst, p.Version)
	return append(dst, p.Hash[:]...)
}

func appendU16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}

func appendU32(dst []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, v)
}

func appendU64(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}
