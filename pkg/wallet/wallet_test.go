package wallet

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

const (
	soundMnemonic = "sound idle panel often situate develop unit text design antenna vendor screen opinion balcony share trigger accuse scatter visa uniform brass update opinion media"
	sellMnemonic  = "sell invite acquire kitten bamboo drastic jelly vivid peace spawn twice guilt pave pen trash pretty park cube fragile unaware remain midnight betray rebuild"
)

// c32 address versions
const (
	mainnetP2PKH = 22
	mainnetP2SH  = 20
	testnetP2PKH = 26
	testnetP2SH  = 21
)

func mustWallet(t *testing.T, phrase string) *Wallet {
	t.Helper()
	w, err := FromMnemonic(phrase, "")
	require.NoError(t, err)
	return w
}

func TestAccountAddresses(t *testing.T) {
	tests := []struct {
		index uint32
		want  map[uint8]string
	}{
		{0, map[uint8]string{
			mainnetP2PKH: "SP384CVPNDTYA0E92TKJZQTYXQHNZSWGCAG7SAPVB",
			mainnetP2SH:  "SM384CVPNDTYA0E92TKJZQTYXQHNZSWGCAGRD22C9",
			testnetP2PKH: "ST384CVPNDTYA0E92TKJZQTYXQHNZSWGCAH0ER64E",
			testnetP2SH:  "SN384CVPNDTYA0E92TKJZQTYXQHNZSWGCAKNRHMGW",
		}},
		{1, map[uint8]string{
			mainnetP2PKH: "SP23K7K2V45JFZVBMQBE8R0PP8SQG7HZF9473KBD",
			mainnetP2SH:  "SM23K7K2V45JFZVBMQBE8R0PP8SQG7HZFB7DZ2RK",
			testnetP2PKH: "ST23K7K2V45JFZVBMQBE8R0PP8SQG7HZFA6Z68VE",
			testnetP2SH:  "SN23K7K2V45JFZVBMQBE8R0PP8SQG7HZFAFNYMDJ",
		}},
	}

	w := mustWallet(t, soundMnemonic)
	for _, tt := range tests {
		account, err := w.Account(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.index, account.Index)

		for version, want := range tt.want {
			got, err := account.Address(version)
			require.NoError(t, err)
			assert.Equal(t, want, got, "account %d version %d", tt.index, version)
		}
	}
}

func TestAccounts(t *testing.T) {
	want := []string{
		"SP1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2XG1V316",
		"SP2G0KVR849MZHJ6YB4DCN8K5TRDVXF92A682K5GV",
		"SP21HQTGHGJ3DDWM8BC1E00TYZPD3DF31NSD24KZQ",
		"SP1PM9M2B1YS6GM5FH8GKEGD2M9DVN03V1A5QK7ME",
	}

	w := mustWallet(t, sellMnemonic)
	accounts, err := w.Accounts(uint32(len(want)))
	require.NoError(t, err)
	require.Len(t, accounts, len(want))

	for i, account := range accounts {
		got, err := account.NetworkAddress(transaction.Mainnet())
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}

	testnet, err := accounts[0].NetworkAddress(transaction.Testnet())
	require.NoError(t, err)
	assert.Equal(t, "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5", testnet)
}

func TestAccountPrivateKey(t *testing.T) {
	account, err := mustWallet(t, soundMnemonic).Account(0)
	require.NoError(t, err)
	assert.Equal(t, "8721c6a5237f5e8d361161a7855aa56885a3e19e2ea6ee268fb14eabc5e2ed90", account.PrivateKey.Hex()[:64])
	assert.True(t, account.PublicKey.Compressed())
	assert.True(t, account.PrivateKey.PublicKey().Equal(account.PublicKey))
}

func TestAccountCache(t *testing.T) {
	w := mustWallet(t, sellMnemonic)
	assert.Zero(t, w.DerivedCount())

	first, err := w.Account(7)
	require.NoError(t, err)
	second, err := w.Account(7)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, w.DerivedCount())

	// A second wallet from the same phrase has its own cache.
	other := mustWallet(t, sellMnemonic)
	assert.Zero(t, other.DerivedCount())
	third, err := other.Account(7)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, first.PublicKey.Equal(third.PublicKey))
}

func TestAccountConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := mustWallet(t, sellMnemonic)
	results := make([]*Account, 8)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := w.Account(2)
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	wg.Wait()

	for _, a := range results[1:] {
		assert.Same(t, results[0], a)
	}
	assert.Equal(t, 1, w.DerivedCount())
}

func TestConfigAndDataKeys(t *testing.T) {
	w := mustWallet(t, soundMnemonic)

	config, err := w.ConfigPrivateKey()
	require.NoError(t, err)
	assert.Equal(t, "67e113e8ccf43fc8a724710620cf369f23c34c396c649615c31e1fd9aaf23d72", config.Hex()[:64])

	data, err := w.DataPrivateKey()
	require.NoError(t, err)
	assert.Equal(t, "131a1e5f10e0e97509640893ee8807158547010edb6fb4e396378c67ed886ac5", data.Hex()[:64])
}

func TestFromMnemonicErrors(t *testing.T) {
	_, err := FromMnemonic("not a valid mnemonic phrase", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	words := strings.Fields(sellMnemonic)
	_, err = FromMnemonic(strings.Join(words[:len(words)-1], " "), "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestFromMnemonicWhitespace(t *testing.T) {
	w := mustWallet(t, "  "+strings.ReplaceAll(sellMnemonic, " ", "\n ")+"\n")
	account, err := w.Account(0)
	require.NoError(t, err)
	addr, err := account.Address(mainnetP2PKH)
	require.NoError(t, err)
	assert.Equal(t, "SP1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2XG1V316", addr)
}

func TestPassphraseChangesAccounts(t *testing.T) {
	plain := mustWallet(t, sellMnemonic)
	salted, err := FromMnemonic(sellMnemonic, "TREZOR")
	require.NoError(t, err)

	a, err := plain.Account(0)
	require.NoError(t, err)
	b, err := salted.Account(0)
	require.NoError(t, err)
	assert.False(t, a.PublicKey.Equal(b.PublicKey))
}

func TestNewMnemonic(t *testing.T) {
	phrase, err := NewMnemonic(256)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(phrase), 24)

	_, err = FromMnemonic(phrase, "")
	require.NoError(t, err)

	_, err = NewMnemonic(100)
	assert.Error(t, err)
}

func TestDerivePathErrors(t *testing.T) {
	w := mustWallet(t, sellMnemonic)
	for _, path := range []string{"44'/0", "m/x", "m/4294967296'"} {
		_, err := derivePath(w.master, path)
		assert.Error(t, err, path)
	}
}
