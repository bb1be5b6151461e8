package crypto

import (
	"bytes"
	"fmt"
	"strings"
)

// C32 is the Crockford-style base-32 encoding used for Stacks addresses.
//
// Encoding runs over the input from the least significant byte, drops the
// leading zero digits of the big-number form and then re-adds one '0' per
// leading zero byte of the input, so leading zero bytes survive a round trip.
//
// c32check prefixes the version character and appends the first four bytes
// of a double SHA-256 over version || data:
//
//	c32check = alphabet[version] || c32(data || dsha256(version || data)[:4])
//	address  = "S" || c32check

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address versions.
const (
	AddressVersionMainnetP2PKH uint8 = 22
	AddressVersionMainnetP2SH  uint8 = 20
	AddressVersionTestnetP2PKH uint8 = 26
	AddressVersionTestnetP2SH  uint8 = 21
)

// C32Error is returned for malformed c32 input.
type C32Error struct {
	Message string
}

func (e *C32Error) Error() string {
	return fmt.Sprintf("c32 error: %s", e.Message)
}

// c32Lookup maps a normalized ASCII character to its 5-bit value, or -1.
var c32Lookup = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(c32Alphabet); i++ {
		table[c32Alphabet[i]] = int8(i)
	}
	return table
}()

// C32Encode encodes bytes in the c32 alphabet.
func C32Encode(data []byte) string {
	result := make([]byte, 0, len(data)*8/5+2)
	carry := byte(0)
	carryBits := uint(0)

	for i := len(data) - 1; i >= 0; i-- {
		current := data[i]
		lowBitsToTake := 5 - carryBits
		lowBits := current & ((1 << lowBitsToTake) - 1)
		result = append(result, c32Alphabet[(lowBits<<carryBits)+carry])

		carryBits = 8 + carryBits - 5
		carry = current >> (8 - carryBits)

		if carryBits >= 5 {
			result = append(result, c32Alphabet[carry&0x1f])
			carryBits -= 5
			carry >>= 5
		}
	}
	if carryBits > 0 {
		result = append(result, c32Alphabet[carry])
	}

	// result holds digits least significant first
	for len(result) > 0 && result[len(result)-1] == c32Alphabet[0] {
		result = result[:len(result)-1]
	}
	for _, b := range data {
		if b != 0 {
			break
		}
		result = append(result, c32Alphabet[0])
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result)
}

// C32Decode decodes a c32 string. Decoding is case-insensitive and accepts
// O for 0 and I or L for 1.
func C32Decode(s string) ([]byte, error) {
	normalized := normalizeC32(s)

	result := make([]byte, 0, len(normalized)*5/8+1)
	carry := uint16(0)
	carryBits := uint(0)

	for i := len(normalized) - 1; i >= 0; i-- {
		c := normalized[i]
		value := c32Lookup[c]
		if value < 0 {
			return nil, &C32Error{Message: fmt.Sprintf("invalid character %q", c)}
		}

		carry += uint16(value) << carryBits
		carryBits += 5
		if carryBits >= 8 {
			result = append(result, byte(carry&0xff))
			carryBits -= 8
			carry >>= 8
		}
	}
	if carryBits > 0 {
		result = append(result, byte(carry))
	}

	for len(result) > 0 && result[len(result)-1] == 0 {
		result = result[:len(result)-1]
	}
	for i := 0; i < len(normalized); i++ {
		if normalized[i] != '0' {
			break
		}
		result = append(result, 0)
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func normalizeC32(s string) string {
	s = strings.ToUpper(s)
	return strings.NewReplacer("O", "0", "L", "1", "I", "1").Replace(s)
}

// C32CheckEncode encodes data with a version character and checksum.
func C32CheckEncode(version uint8, data []byte) (string, error) {
	if version >= 32 {
		return "", &C32Error{Message: fmt.Sprintf("invalid version %d", version)}
	}

	checksum := c32Checksum(version, data)
	payload := make([]byte, 0, len(data)+4)
	payload = append(payload, data...)
	payload = append(payload, checksum[:]...)

	return string(c32Alphabet[version]) + C32Encode(payload), nil
}

// C32CheckDecode reverses C32CheckEncode and verifies the checksum.
func C32CheckDecode(s string) (uint8, []byte, error) {
	if len(s) < 2 {
		return 0, nil, &C32Error{Message: "input too short"}
	}

	normalized := normalizeC32(s)
	version := c32Lookup[normalized[0]]
	if version < 0 {
		return 0, nil, &C32Error{Message: fmt.Sprintf("invalid version character %q", normalized[0])}
	}

	decoded, err := C32Decode(normalized[1:])
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 4 {
		return 0, nil, &C32Error{Message: "missing checksum"}
	}

	data := decoded[:len(decoded)-4]
	got := decoded[len(decoded)-4:]
	want := c32Checksum(uint8(version), data)
	if !bytes.Equal(got, want[:]) {
		return 0, nil, &C32Error{Message: fmt.Sprintf("bad checksum: expected %x, got %x", want, got)}
	}

	return uint8(version), data, nil
}

func c32Checksum(version uint8, data []byte) [4]byte {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, version)
	buf = append(buf, data...)
	return DoubleSha256Sum(buf).Checksum()
}

// C32Address renders a Stacks address for a version and hash160.
func C32Address(version uint8, hash Hash160) (string, error) {
	if !IsValidAddressVersion(version) {
		return "", &C32Error{Message: fmt.Sprintf("invalid address version %d", version)}
	}

	encoded, err := C32CheckEncode(version, hash[:])
	if err != nil {
		return "", err
	}
	return "S" + encoded, nil
}

// C32AddressDecode parses a Stacks address into its version and hash160.
func C32AddressDecode(address string) (uint8, Hash160, error) {
	if len(address) <= 5 {
		return 0, Hash160{}, &C32Error{Message: fmt.Sprintf("address too short: %q", address)}
	}
	if address[0] != 'S' && address[0] != 's' {
		return 0, Hash160{}, &C32Error{Message: fmt.Sprintf("address must start with S: %q", address)}
	}

	version, data, err := C32CheckDecode(address[1:])
	if err != nil {
		return 0, Hash160{}, err
	}
	if !IsValidAddressVersion(version) {
		return 0, Hash160{}, &C32Error{Message: fmt.Sprintf("invalid address version %d", version)}
	}

	hash, err := Hash160FromSlice(data)
	if err != nil {
		return 0, Hash160{}, &C32Error{Message: err.Error()}
	}
	return version, hash, nil
}

// IsValidAddressVersion reports whether v is one of the four Stacks
// address versions.
func IsValidAddressVersion(v uint8) bool {
	switch v {
	case AddressVersionMainnetP2PKH, AddressVersionMainnetP2SH,
		AddressVersionTestnetP2PKH, AddressVersionTestnetP2SH:
		return true
	}
	return false
}
