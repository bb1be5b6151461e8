// Package crypto implements the cryptographic primitives used by Stacks
// transactions.
//
// Stacks accounts are secp256k1 key pairs. Transactions are authorized with
// recoverable ECDSA signatures over a rolling signature hash, so this
// package exposes signing in the 65-byte recoverable form used on the wire
// rather than DER.
//
// Key formats:
//   - Private keys: raw 32 bytes, or 33 bytes with a trailing 0x01 marking
//     a key whose public key is used in compressed form
//   - Public keys: compressed 33-byte (0x02/0x03 prefix) or uncompressed
//     65-byte (0x04 prefix) form
//   - Signatures: recovery id || r || s (65 bytes, RFC 6979 deterministic
//     nonces, low-S normalized)
package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// compactSigMagicOffset is the header offset used by the compact signature
// format of the secp256k1 library. Compressed keys add another 4.
const compactSigMagicOffset = 27

// PrivateKey wraps secp256k1 private key
type PrivateKey struct {
	key        *secp256k1.PrivateKey
	compressed bool
}

// PublicKey wraps secp256k1 public key
type PublicKey struct {
	key        *secp256k1.PublicKey
	compressed bool
}

// GeneratePrivateKey returns a new random private key whose public key is
// used in compressed form.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return &PrivateKey{key: key, compressed: true}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes.
//
// A 33-byte input must end in 0x01, the Stacks marker for a compressed
// public key. 32-byte inputs are treated as compressed as well.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	switch len(keyBytes) {
	case 32:
	case 33:
		if keyBytes[32] != 0x01 {
			return nil, fmt.Errorf("invalid private key compression marker: 0x%02x", keyBytes[32])
		}
		keyBytes = keyBytes[:32]
	default:
		return nil, fmt.Errorf("private key must be 32 or 33 bytes, got %d", len(keyBytes))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(keyBytes); overflow || scalar.IsZero() {
		return nil, errors.New("private key out of range")
	}

	key := secp256k1.NewPrivateKey(&scalar)
	return &PrivateKey{key: key, compressed: true}, nil
}

// PrivateKeyFromHex parses a hex-encoded private key (64 or 66 characters).
func PrivateKeyFromHex(s string) (*PrivateKey, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return PrivateKeyFromBytes(b)
}

// SignRecoverable signs a 32-byte hash and returns the signature in the
// recovery id || r || s layout.
func (pk *PrivateKey) SignRecoverable(hash [32]byte) (MessageSignature, error) {
	compact := ecdsa.SignCompact(pk.key, hash[:], pk.compressed)

	recID := compact[0] - compactSigMagicOffset
	if pk.compressed {
		recID -= 4
	}
	if recID > 3 {
		return MessageSignature{}, fmt.Errorf("unexpected recovery id %d", recID)
	}

	var sig MessageSignature
	sig[0] = recID
	copy(sig[1:], compact[1:])
	return sig, nil
}

// PublicKey derives the public key
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey(), compressed: pk.compressed}
}

// Bytes returns the raw 32-byte private key
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Hex returns the private key as hex, with the 01 suffix when the public
// key is compressed.
func (pk *PrivateKey) Hex() string {
	s := BytesToHex(pk.Bytes())
	if pk.compressed {
		s += "01"
	}
	return s
}

// Compressed reports whether the key's public key is used in compressed form.
func (pk *PrivateKey) Compressed() bool {
	return pk.compressed
}

// SerializeCompressed returns the 33-byte compressed public key
func (pub *PublicKey) SerializeCompressed() [33]byte {
	var result [33]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// SerializeUncompressed returns the 65-byte uncompressed public key
func (pub *PublicKey) SerializeUncompressed() [65]byte {
	var result [65]byte
	copy(result[:], pub.key.SerializeUncompressed())
	return result
}

// Bytes returns the public key bytes in the key's own encoding
func (pub *PublicKey) Bytes() []byte {
	if pub.compressed {
		return pub.key.SerializeCompressed()
	}
	return pub.key.SerializeUncompressed()
}

// Hex returns Bytes as hex.
func (pub *PublicKey) Hex() string {
	return BytesToHex(pub.Bytes())
}

// Compressed reports whether Bytes returns the compressed form.
func (pub *PublicKey) Compressed() bool {
	return pub.compressed
}

// WithCompression returns a copy of the key that serializes in the
// requested form.
func (pub *PublicKey) WithCompression(compressed bool) *PublicKey {
	return &PublicKey{key: pub.key, compressed: compressed}
}

// Equal reports whether both keys are the same curve point.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.key.IsEqual(other.key)
}

// ParsePublicKey parses a compressed (33-byte) or uncompressed (65-byte)
// public key
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	if len(pubKeyBytes) != 33 && len(pubKeyBytes) != 65 {
		return nil, fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(pubKeyBytes))
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &PublicKey{key: pubKey, compressed: len(pubKeyBytes) == 33}, nil
}

// PublicKeyFromHex parses a hex-encoded public key.
func PublicKeyFromHex(s string) (*PublicKey, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	return ParsePublicKey(b)
}

// RecoverPublicKey recovers the signing key from a recoverable signature.
// The returned key serializes in compressed form.
func RecoverPublicKey(hash [32]byte, sig MessageSignature) (*PublicKey, error) {
	if sig[0] > 3 {
		return nil, fmt.Errorf("invalid recovery id %d", sig[0])
	}

	var compact [MessageSignatureSize]byte
	compact[0] = sig[0] + compactSigMagicOffset + 4
	copy(compact[1:], sig[1:])

	pubKey, _, err := ecdsa.RecoverCompact(compact[:], hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", err)
	}

	return &PublicKey{key: pubKey, compressed: true}, nil
}

// VerifySignature verifies a recoverable signature against a public key
func VerifySignature(pubkey *PublicKey, hash [32]byte, sig MessageSignature) bool {
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[1:33]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig[33:65]); overflow {
		return false
	}

	return ecdsa.NewSignature(&r, &s).Verify(hash[:], pubkey.key)
}
