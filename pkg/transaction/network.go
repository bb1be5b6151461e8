package transaction

import (
	"fmt"
	"strings"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// TransactionVersion is the first byte of a transaction.
type TransactionVersion uint8

const (
	TransactionVersionMainnet TransactionVersion = 0x00
	TransactionVersionTestnet TransactionVersion = 0x80
)

// Chain ids.
const (
	ChainIDMainnet uint32 = 0x00000001
	ChainIDTestnet uint32 = 0x80000000
)

// Default node URLs.
const (
	MainnetURL = "https://api.mainnet.hiro.so"
	TestnetURL = "https://api.testnet.hiro.so"
	MocknetURL = "http://localhost:3999"
)

// Network fixes the transaction version, chain id and node URL a
// transaction is built for.
type Network struct {
	Name    string
	Version TransactionVersion
	ChainID uint32
	BaseURL string
}

func Mainnet() Network {
	return Network{Name: "mainnet", Version: TransactionVersionMainnet, ChainID: ChainIDMainnet, BaseURL: MainnetURL}
}

func Testnet() Network {
	return Network{Name: "testnet", Version: TransactionVersionTestnet, ChainID: ChainIDTestnet, BaseURL: TestnetURL}
}

// Mocknet is a local development node with testnet parameters.
func Mocknet() Network {
	return Network{Name: "mocknet", Version: TransactionVersionTestnet, ChainID: ChainIDTestnet, BaseURL: MocknetURL}
}

// NetworkByName returns the preset called name.
func NetworkByName(name string) (Network, error) {
	switch strings.ToLower(name) {
	case "mainnet":
		return Mainnet(), nil
	case "testnet":
		return Testnet(), nil
	case "mocknet", "devnet":
		return Mocknet(), nil
	}
	return Network{}, fmt.Errorf("unknown network %q", name)
}

// WithBaseURL returns a copy of n that talks to url.
func (n Network) WithBaseURL(url string) Network {
	n.BaseURL = strings.TrimRight(url, "/")
	return n
}

// IsMainnet reports whether n builds mainnet transactions.
func (n Network) IsMainnet() bool {
	return n.Version == TransactionVersionMainnet
}

// AddressVersion returns the c32 address version for signers of the given
// hash mode on this network.
func (n Network) AddressVersion(mode crypto.HashMode) uint8 {
	multi := mode.IsMultiSig()
	switch {
	case n.IsMainnet() && multi:
		return crypto.AddressVersionMainnetP2SH
	case n.IsMainnet():
		return crypto.AddressVersionMainnetP2PKH
	case multi:
		return crypto.AddressVersionTestnetP2SH
	}
	return crypto.AddressVersionTestnetP2PKH
}
