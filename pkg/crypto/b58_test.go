package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestC32B58Conversion(t *testing.T) {
	tests := []struct {
		c32 string
		b58 string
	}{
		{"SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", "1FzTxL9Mxnm2fdmnQEArfhzJHevwbvcH6d"},
		{"SM21535CY1V4YTDHWA8ZCB8XSQCFCPZ5NCC5TBAR", "324Yr9swu1JAVsksMqUmbQbDRw2APW6pLe"},
	}

	for _, tt := range tests {
		b58, err := C32ToB58(tt.c32)
		require.NoError(t, err)
		assert.Equal(t, tt.b58, b58)

		c32, err := B58ToC32(tt.b58)
		require.NoError(t, err)
		assert.Equal(t, tt.c32, c32)
	}
}

func TestB58CheckDecodeErrors(t *testing.T) {
	_, _, err := B58CheckDecode("1FzTxL9Mxnm2fdmnQEArfhzJHevwbvcH6e")
	assert.Error(t, err)

	// Version 0x42 has no Stacks counterpart.
	_, err = B58ToC32(B58CheckEncode(0x42, make([]byte, 20)))
	assert.Error(t, err)
}
