package crypto

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Bitcoin address versions paired with the Stacks versions.
const (
	BitcoinVersionMainnetP2PKH uint8 = 0
	BitcoinVersionMainnetP2SH  uint8 = 5
	BitcoinVersionTestnetP2PKH uint8 = 111
	BitcoinVersionTestnetP2SH  uint8 = 196
)

var (
	stacksToBitcoin = map[uint8]uint8{
		AddressVersionMainnetP2PKH: BitcoinVersionMainnetP2PKH,
		AddressVersionMainnetP2SH:  BitcoinVersionMainnetP2SH,
		AddressVersionTestnetP2PKH: BitcoinVersionTestnetP2PKH,
		AddressVersionTestnetP2SH:  BitcoinVersionTestnetP2SH,
	}
	bitcoinToStacks = map[uint8]uint8{
		BitcoinVersionMainnetP2PKH: AddressVersionMainnetP2PKH,
		BitcoinVersionMainnetP2SH:  AddressVersionMainnetP2SH,
		BitcoinVersionTestnetP2PKH: AddressVersionTestnetP2PKH,
		BitcoinVersionTestnetP2SH:  AddressVersionTestnetP2SH,
	}
)

// B58CheckEncode encodes a version and payload as base58check.
func B58CheckEncode(version uint8, data []byte) string {
	return base58.CheckEncode(data, version)
}

// B58CheckDecode decodes base58check into its version and payload.
func B58CheckDecode(s string) (uint8, []byte, error) {
	data, version, err := base58.CheckDecode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid base58check string: %w", err)
	}
	return version, data, nil
}

// C32ToB58 converts a Stacks address into the Bitcoin address with the same
// hash160.
func C32ToB58(address string) (string, error) {
	version, hash, err := C32AddressDecode(address)
	if err != nil {
		return "", err
	}

	btcVersion, ok := stacksToBitcoin[version]
	if !ok {
		return "", fmt.Errorf("no bitcoin version for stacks version %d", version)
	}
	return B58CheckEncode(btcVersion, hash[:]), nil
}

// B58ToC32 converts a Bitcoin P2PKH or P2SH address into the Stacks address
// with the same hash160.
func B58ToC32(address string) (string, error) {
	btcVersion, data, err := B58CheckDecode(address)
	if err != nil {
		return "", err
	}

	version, ok := bitcoinToStacks[btcVersion]
	if !ok {
		return "", fmt.Errorf("unknown bitcoin address version %d", btcVersion)
	}

	hash, err := Hash160FromSlice(data)
	if err != nil {
		return "", err
	}
	return C32Address(version, hash)
}
