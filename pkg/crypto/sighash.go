package crypto

import (
	"encoding/binary"
)

// Signature hash chain.
//
// Each signer extends a rolling hash instead of signing a fixed digest:
//
//	presign  = SHA512/256(sighash || auth_type || fee (u64be) || nonce (u64be))
//	postsign = SHA512/256(presign || key_encoding || signature)
//
// The signer signs presign and the next signer starts from postsign, so
// changing any earlier fee, nonce or signature invalidates every later one.

// Public key encoding markers used in spending conditions.
const (
	PubKeyEncodingCompressed   uint8 = 0x00
	PubKeyEncodingUncompressed uint8 = 0x01
)

// MakePresignHash computes the hash a signer signs.
func MakePresignHash(sigHash Sha256Hash, authType uint8, fee, nonce uint64) Sha256Hash {
	var buf [Sha256Size + 1 + 8 + 8]byte
	copy(buf[:Sha256Size], sigHash[:])
	buf[Sha256Size] = authType
	binary.BigEndian.PutUint64(buf[Sha256Size+1:], fee)
	binary.BigEndian.PutUint64(buf[Sha256Size+9:], nonce)
	return Sha512_256Sum(buf[:])
}

// MakePostsignHash folds a signature into the chain.
func MakePostsignHash(presign Sha256Hash, keyEncoding uint8, sig MessageSignature) Sha256Hash {
	var buf [Sha256Size + 1 + MessageSignatureSize]byte
	copy(buf[:Sha256Size], presign[:])
	buf[Sha256Size] = keyEncoding
	copy(buf[Sha256Size+1:], sig[:])
	return Sha512_256Sum(buf[:])
}

// NextSignature signs one step of the chain and returns the signature and
// the postsign hash the next signer starts from.
func NextSignature(
	sigHash Sha256Hash,
	authType uint8,
	fee, nonce uint64,
	privateKey *PrivateKey,
) (MessageSignature, Sha256Hash, error) {
	presign := MakePresignHash(sigHash, authType, fee, nonce)

	sig, err := privateKey.SignRecoverable(presign)
	if err != nil {
		return MessageSignature{}, Sha256Hash{}, err
	}

	encoding := PubKeyEncodingUncompressed
	if privateKey.Compressed() {
		encoding = PubKeyEncodingCompressed
	}

	return sig, MakePostsignHash(presign, encoding, sig), nil
}

// NextVerification recovers the signer of one step of the chain and returns
// the recovered key and the postsign hash.
func NextVerification(
	sigHash Sha256Hash,
	authType uint8,
	fee, nonce uint64,
	keyEncoding uint8,
	sig MessageSignature,
) (*PublicKey, Sha256Hash, error) {
	presign := MakePresignHash(sigHash, authType, fee, nonce)

	pubKey, err := RecoverPublicKey(presign, sig)
	if err != nil {
		return nil, Sha256Hash{}, err
	}
	pubKey = pubKey.WithCompression(keyEncoding == PubKeyEncodingCompressed)

	return pubKey, MakePostsignHash(presign, keyEncoding, sig), nil
}
