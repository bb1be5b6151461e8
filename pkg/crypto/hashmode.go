package crypto

import (
	"crypto/sha256"
	"fmt"
)

// HashMode selects how a spending condition's signer hash is derived from
// its public keys.
type HashMode uint8

const (
	HashModeP2PKH  HashMode = 0x00 // single-sig, hash160(pubkey)
	HashModeP2SH   HashMode = 0x01 // multi-sig, hash160(redeem script)
	HashModeP2WPKH HashMode = 0x02 // single-sig, witness-wrapped pubkey hash
	HashModeP2WSH  HashMode = 0x03 // multi-sig, witness-wrapped script hash
)

// Bitcoin script opcodes used by the multi-sig redeem script.
const (
	opPushBase       = 80 // OP_1 is 81
	opCheckMultiSig  = 174
	pubKeyPushLength = 33
)

func (m HashMode) IsSingleSig() bool {
	return m == HashModeP2PKH || m == HashModeP2WPKH
}

func (m HashMode) IsMultiSig() bool {
	return m == HashModeP2SH || m == HashModeP2WSH
}

func (m HashMode) Valid() bool {
	return m <= HashModeP2WSH
}

func (m HashMode) String() string {
	switch m {
	case HashModeP2PKH:
		return "P2PKH"
	case HashModeP2SH:
		return "P2SH"
	case HashModeP2WPKH:
		return "P2WPKH"
	case HashModeP2WSH:
		return "P2WSH"
	default:
		return fmt.Sprintf("HashMode(%d)", uint8(m))
	}
}

// HashP2PKH hashes a serialized public key.
func HashP2PKH(pubKey []byte) Hash160 {
	return Hash160Sum(pubKey)
}

// HashP2WPKH hashes the P2WPKH witness program of a public key.
func HashP2WPKH(pubKey []byte) Hash160 {
	keyHash := Hash160Sum(pubKey)

	program := make([]byte, 0, 2+Hash160Size)
	program = append(program, 0x00, Hash160Size)
	program = append(program, keyHash[:]...)
	return Hash160Sum(program)
}

// HashP2SH hashes the m-of-n redeem script over the given public keys.
func HashP2SH(required uint8, pubKeys [][]byte) Hash160 {
	return Hash160Sum(multiSigRedeemScript(required, pubKeys))
}

// HashP2WSH hashes the P2WSH witness program of the m-of-n redeem script.
func HashP2WSH(required uint8, pubKeys [][]byte) Hash160 {
	scriptHash := sha256.Sum256(multiSigRedeemScript(required, pubKeys))

	program := make([]byte, 0, 2+Sha256Size)
	program = append(program, 0x00, Sha256Size)
	program = append(program, scriptHash[:]...)
	return Hash160Sum(program)
}

// SignerHash derives the signer hash for a hash mode. Single-sig modes use
// the first key and ignore required.
func SignerHash(mode HashMode, required uint8, pubKeys [][]byte) (Hash160, error) {
	switch mode {
	case HashModeP2PKH, HashModeP2WPKH:
		if len(pubKeys) != 1 {
			return Hash160{}, fmt.Errorf("%s needs exactly one public key, got %d", mode, len(pubKeys))
		}
		if mode == HashModeP2PKH {
			return HashP2PKH(pubKeys[0]), nil
		}
		return HashP2WPKH(pubKeys[0]), nil
	case HashModeP2SH:
		return HashP2SH(required, pubKeys), nil
	case HashModeP2WSH:
		return HashP2WSH(required, pubKeys), nil
	default:
		return Hash160{}, fmt.Errorf("unknown hash mode %d", uint8(mode))
	}
}

// multiSigRedeemScript builds OP_m <pk>... OP_n OP_CHECKMULTISIG.
func multiSigRedeemScript(required uint8, pubKeys [][]byte) []byte {
	script := make([]byte, 0, 3+len(pubKeys)*(pubKeyPushLength+1))
	script = append(script, opPushBase+required)
	for _, pk := range pubKeys {
		script = append(script, byte(len(pk)))
		script = append(script, pk...)
	}
	script = append(script, opPushBase+byte(len(pubKeys)), opCheckMultiSig)
	return script
}
