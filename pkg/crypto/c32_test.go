package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestC32AddressVectors(t *testing.T) {
	tests := []struct {
		version uint8
		hash    string
		address string
	}{
		{22, "a5d9d331000f5b79578ce56bd157f29a9056f0d6", "SP2JXKMSH007NPYAQHKJPQMAQYAD90NQGTVJVQ02B"},
		{26, "164247d6f2b425ac5771423ae6c80c754f7172b0", "STB44HYPYAT2BB2QE513NSP81HTMYWBJP02HPGK6"},
		{22, "df0ba3e79792be7be5e50a370289accfc8c9e032", "SP3FGQ8Z7JY9BWYZ5WM53E0M9NK7WHJF0691NZ159"},
		{22, "a46ff88886c2ef9762d970b4d2c63678835bd39d", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"},
		{20, "04128cacf0764f69b1e291f62d1dcdd8f65be5ab", "SM21535CY1V4YTDHWA8ZCB8XSQCFCPZ5NCC5TBAR"},
		{22, "0000000000000000000000000000000000000000", "SP000000000000000000002Q6VF78"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			hash, err := Hash160FromHex(tt.hash)
			require.NoError(t, err)

			address, err := C32Address(tt.version, hash)
			require.NoError(t, err)
			assert.Equal(t, tt.address, address)

			version, decoded, err := C32AddressDecode(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, hash, decoded)
		})
	}
}

func TestC32AddressRoundTripAllVersions(t *testing.T) {
	hash, err := Hash160FromHex("8a4d3f2e55c87f964bae8b2963b3a824a2e9c9ab")
	require.NoError(t, err)

	for _, version := range []uint8{22, 26, 20, 21} {
		address, err := C32Address(version, hash)
		require.NoError(t, err)

		gotVersion, gotHash, err := C32AddressDecode(address)
		require.NoError(t, err)
		assert.Equal(t, version, gotVersion)
		assert.Equal(t, hash, gotHash)

		// Flip the last character to break the checksum.
		last := address[len(address)-1]
		replacement := byte('0')
		if last == '0' {
			replacement = '1'
		}
		mutated := address[:len(address)-1] + string(replacement)
		_, _, err = C32AddressDecode(mutated)
		assert.Error(t, err, "mutated address %s must fail", mutated)
	}
}

func TestC32AddressDecodeErrors(t *testing.T) {
	_, _, err := C32AddressDecode("SP12")
	assert.Error(t, err)

	_, _, err = C32AddressDecode("XP2JXKMSH007NPYAQHKJPQMAQYAD90NQGTVJVQ02B")
	assert.Error(t, err)

	_, _, err = C32AddressDecode("SP2JXKMSH007NPYAQHKJPQMAQYAD90NQGTVJVQ02U")
	assert.Error(t, err, "U is not in the alphabet")

	_, err = C32Address(7, Hash160{})
	assert.Error(t, err)
}

func TestC32DecodeNormalizes(t *testing.T) {
	address := "SP2JXKMSH007NPYAQHKJPQMAQYAD90NQGTVJVQ02B"
	lower := strings.ToLower(address)

	v1, h1, err := C32AddressDecode(address)
	require.NoError(t, err)
	v2, h2, err := C32AddressDecode(lower)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, h1, h2)

	a, err := C32Decode("O1")
	require.NoError(t, err)
	b, err := C32Decode("0I")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestC32EncodeLeadingZeros(t *testing.T) {
	assert.Equal(t, "001", C32Encode([]byte{0, 0, 1}))
	assert.Equal(t, "", C32Encode(nil))

	decoded, err := C32Decode("001")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1}, decoded)

	for _, data := range [][]byte{{0xff}, {0, 0xde, 0xad}, {1, 2, 3, 4, 5, 6, 7}} {
		decoded, err := C32Decode(C32Encode(data))
		require.NoError(t, err)
		assert.Equal(t, data, decoded)
	}
}

func TestC32CheckRoundTrip(t *testing.T) {
	encoded, err := C32CheckEncode(22, []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)

	version, data, err := C32CheckDecode(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint8(22), version)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)

	_, err = C32CheckEncode(32, nil)
	assert.Error(t, err)
}
