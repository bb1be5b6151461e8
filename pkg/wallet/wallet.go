// Package wallet derives Stacks accounts from a BIP39 mnemonic.
//
// Accounts live at m/44'/5757'/0'/0/<index>. Derived accounts are kept in a
// cache owned by the Wallet, so repeated lookups of the same index return
// the same keys without walking the BIP32 tree again.
package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/patrickmn/go-cache"
	"github.com/tyler-smith/go-bip39"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// Derivation paths used by Stacks wallets.
const (
	AccountPath = "m/44'/5757'/0'/0"
	ConfigPath  = "m/44/5757'/0'/1"
	DataPath    = "m/888'/0'"
)

// ErrInvalidMnemonic is returned for a phrase that fails BIP39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Wallet is the root of a set of Stacks accounts.
type Wallet struct {
	master   *hdkeychain.ExtendedKey
	root     *hdkeychain.ExtendedKey // AccountPath
	accounts *cache.Cache
}

// NewMnemonic returns a fresh mnemonic with the given entropy size in bits
// (128 for 12 words, 256 for 24 words).
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic validates phrase and derives the wallet root. The passphrase
// is the optional BIP39 password; most Stacks wallets leave it empty.
func FromMnemonic(phrase, passphrase string) (*Wallet, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return FromSeed(seed)
}

// FromSeed derives the wallet root from a BIP39 seed.
func FromSeed(seed []byte) (*Wallet, error) {
	// The network params only affect xprv serialization, never derivation.
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	root, err := derivePath(master, AccountPath)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		master:   master,
		root:     root,
		accounts: cache.New(cache.NoExpiration, 0),
	}, nil
}

// Account returns the account at index, deriving it on first use.
func (w *Wallet) Account(index uint32) (*Account, error) {
	key := strconv.FormatUint(uint64(index), 10)
	if cached, ok := w.accounts.Get(key); ok {
		return cached.(*Account), nil
	}

	child, err := w.root.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account %d: %w", index, err)
	}
	sk, err := privateKey(child)
	if err != nil {
		return nil, err
	}

	account := &Account{Index: index, PrivateKey: sk, PublicKey: sk.PublicKey()}
	// Concurrent derivations of one index yield the same keys; the first
	// stored account wins.
	if err := w.accounts.Add(key, account, cache.NoExpiration); err != nil {
		if cached, ok := w.accounts.Get(key); ok {
			return cached.(*Account), nil
		}
	}
	return account, nil
}

// Accounts returns the accounts at indexes 0 to n-1.
func (w *Wallet) Accounts(n uint32) ([]*Account, error) {
	out := make([]*Account, 0, n)
	for i := uint32(0); i < n; i++ {
		a, err := w.Account(i)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// DerivedCount returns how many accounts are cached.
func (w *Wallet) DerivedCount() int {
	return w.accounts.ItemCount()
}

// ConfigPrivateKey returns the key at ConfigPath, used to encrypt wallet
// configuration.
func (w *Wallet) ConfigPrivateKey() (*crypto.PrivateKey, error) {
	return w.keyAt(ConfigPath)
}

// DataPrivateKey returns the key at DataPath, used for app data storage.
func (w *Wallet) DataPrivateKey() (*crypto.PrivateKey, error) {
	return w.keyAt(DataPath)
}

func (w *Wallet) keyAt(path string) (*crypto.PrivateKey, error) {
	k, err := derivePath(w.master, path)
	if err != nil {
		return nil, err
	}
	return privateKey(k)
}

// Account is one derived Stacks account.
type Account struct {
	Index      uint32
	PrivateKey *crypto.PrivateKey
	PublicKey  *crypto.PublicKey
}

// Address returns the c32 address of the account's P2PKH hash under version.
func (a *Account) Address(version uint8) (string, error) {
	return crypto.C32Address(version, crypto.HashP2PKH(a.PublicKey.Bytes()))
}

// NetworkAddress returns the single-sig address of the account on network.
func (a *Account) NetworkAddress(network transaction.Network) (string, error) {
	return a.Address(network.AddressVersion(crypto.HashModeP2PKH))
}

func privateKey(k *hdkeychain.ExtendedKey) (*crypto.PrivateKey, error) {
	ec, err := k.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	return crypto.PrivateKeyFromBytes(ec.Serialize())
}

// derivePath walks a "m/a/b'/..." path from k.
func derivePath(k *hdkeychain.ExtendedKey, path string) (*hdkeychain.ExtendedKey, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("invalid derivation path %q", path)
	}

	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'")
		n, err := strconv.ParseUint(strings.TrimSuffix(p, "'"), 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
		}

		index := uint32(n)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}
		if k, err = k.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
	}
	return k, nil
}
