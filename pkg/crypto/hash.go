package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is consensus
)

const (
	Hash160Size          = 20
	Sha256Size           = 32
	MessageSignatureSize = 65
)

// Hash160 is RIPEMD160(SHA256(x)), the 20-byte hash behind every address.
type Hash160 [Hash160Size]byte

// Sha256Hash is a 32-byte digest (SHA-256, double SHA-256 or SHA-512/256).
type Sha256Hash [Sha256Size]byte

// MessageSignature is a recoverable signature: recovery id || r || s.
type MessageSignature [MessageSignatureSize]byte

// Sha256Sum returns SHA256(data).
func Sha256Sum(data []byte) Sha256Hash {
	return sha256.Sum256(data)
}

// DoubleSha256Sum returns SHA256(SHA256(data)).
func DoubleSha256Sum(data []byte) Sha256Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Sha512_256Sum returns SHA-512/256(data), the digest used for transaction
// ids and signature hashes.
func Sha512_256Sum(data []byte) Sha256Hash {
	return sha512.Sum512_256(data)
}

// Hash160Sum returns RIPEMD160(SHA256(data)).
func Hash160Sum(data []byte) Hash160 {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])

	var out Hash160
	copy(out[:], h.Sum(nil))
	return out
}

// Checksum returns the first four bytes of the digest.
func (h Sha256Hash) Checksum() [4]byte {
	var out [4]byte
	copy(out[:], h[:4])
	return out
}

func (h Sha256Hash) Bytes() []byte  { return h[:] }
func (h Sha256Hash) Hex() string    { return hex.EncodeToString(h[:]) }
func (h Sha256Hash) String() string { return h.Hex() }
func (h Sha256Hash) IsZero() bool   { return h == Sha256Hash{} }

func (h Hash160) Bytes() []byte  { return h[:] }
func (h Hash160) Hex() string    { return hex.EncodeToString(h[:]) }
func (h Hash160) String() string { return h.Hex() }
func (h Hash160) IsZero() bool   { return h == Hash160{} }

func (s MessageSignature) Bytes() []byte  { return s[:] }
func (s MessageSignature) Hex() string    { return hex.EncodeToString(s[:]) }
func (s MessageSignature) String() string { return s.Hex() }

// IsZero reports whether the signature is the all-zero placeholder of an
// unsigned condition.
func (s MessageSignature) IsZero() bool { return s == MessageSignature{} }

// Sha256HashFromSlice copies exactly 32 bytes into a Sha256Hash.
func Sha256HashFromSlice(b []byte) (Sha256Hash, error) {
	var out Sha256Hash
	if err := copyFixed(out[:], b, "hash"); err != nil {
		return out, err
	}
	return out, nil
}

// Hash160FromSlice copies exactly 20 bytes into a Hash160.
func Hash160FromSlice(b []byte) (Hash160, error) {
	var out Hash160
	if err := copyFixed(out[:], b, "hash160"); err != nil {
		return out, err
	}
	return out, nil
}

// Hash160FromHex parses a 40-character hex string.
func Hash160FromHex(s string) (Hash160, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return Hash160{}, err
	}
	return Hash160FromSlice(b)
}

// MessageSignatureFromSlice copies exactly 65 bytes into a MessageSignature.
func MessageSignatureFromSlice(b []byte) (MessageSignature, error) {
	var out MessageSignature
	if err := copyFixed(out[:], b, "signature"); err != nil {
		return out, err
	}
	return out, nil
}

// MessageSignatureFromHex parses a 130-character hex string.
func MessageSignatureFromHex(s string) (MessageSignature, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return MessageSignature{}, err
	}
	return MessageSignatureFromSlice(b)
}

func copyFixed(dst, src []byte, what string) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%s must be %d bytes, got %d", what, len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

// HexToBytes decodes a hex string, with or without a 0x prefix.
func HexToBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

// BytesToHex encodes bytes as lowercase hex without a prefix.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}
