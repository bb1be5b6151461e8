package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerHashModes(t *testing.T) {
	input := []byte("bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu")
	assert.Equal(t, "00f65a2969863fd2558441b5c27ec49e6db80024", HashP2PKH(input).Hex())
	assert.Equal(t, "9ecb2946469c02135e5c9d85a58d18e33fb8b7fa", HashP2WPKH(input).Hex())

	pk, err := HexToBytes(testPublicKeyHex)
	require.NoError(t, err)
	keys := [][]byte{pk, pk}

	assert.Equal(t, "b10bb6d6ff7a8b4de86614fadcc58c35808f1176", HashP2SH(2, keys).Hex())
	assert.Equal(t, "99febcfc05cb5f5836d257f34c3acb4c3a221813", HashP2WSH(2, keys).Hex())
}

func TestSignerHash(t *testing.T) {
	pk, err := HexToBytes(testPublicKeyHex)
	require.NoError(t, err)

	h, err := SignerHash(HashModeP2PKH, 0, [][]byte{pk})
	require.NoError(t, err)
	assert.Equal(t, "15c31b8c1c11c515e244b75806bac48d1399c775", h.Hex())

	_, err = SignerHash(HashModeP2WPKH, 0, [][]byte{pk, pk})
	assert.Error(t, err)

	_, err = SignerHash(HashMode(9), 0, nil)
	assert.Error(t, err)

	assert.True(t, HashModeP2WPKH.IsSingleSig())
	assert.True(t, HashModeP2WSH.IsMultiSig())
	assert.False(t, HashMode(4).Valid())
	assert.Equal(t, "P2SH", HashModeP2SH.String())
}

func TestSignatureHashChain(t *testing.T) {
	key, err := PrivateKeyFromHex(testPrivateKeyHex)
	require.NoError(t, err)

	start := Sha512_256Sum([]byte("initial"))
	sig, next, err := NextSignature(start, 0x04, 10, 1, key)
	require.NoError(t, err)

	pub, verified, err := NextVerification(start, 0x04, 10, 1, PubKeyEncodingCompressed, sig)
	require.NoError(t, err)
	assert.Equal(t, next, verified)
	assert.True(t, pub.Equal(key.PublicKey()))

	// A different fee produces a different presign hash, so recovery yields
	// some other key.
	other, _, err := NextVerification(start, 0x04, 11, 1, PubKeyEncodingCompressed, sig)
	if err == nil {
		assert.False(t, other.Equal(key.PublicKey()))
	}
}
