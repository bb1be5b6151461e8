package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	originKeyHex  = "edf9aee84d9b7abc145504dde6726c64f369d37ee34ded868fabd876c26570bc"
	soundMnemonic = "sound idle panel often situate develop unit text design antenna vendor screen opinion balcony share trigger accuse scatter visa uniform brass update opinion media"
)

type vector struct {
	Name string `json:"name"`
	Tx   string `json:"tx"`
	TxID string `json:"txid"`
}

func getTestDataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "vectors")
}

func loadVector(t *testing.T, name string) vector {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(getTestDataPath(), "transactions.json"))
	require.NoError(t, err)

	var list []vector
	require.NoError(t, json.Unmarshal(data, &list))
	for _, v := range list {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("vector %s not found", name)
	return vector{}
}

// run executes the app with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"stacks-cli"}, args...))
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"--verbose", "version"}, {"-v", "version"}} {
		out, err := run(t, args...)
		require.NoError(t, err, "%v", args)
		assert.NotEmpty(t, out)
	}
}

func TestAddress(t *testing.T) {
	out, err := run(t, "--mnemonic", soundMnemonic, "address", "--count", "2")
	require.NoError(t, err)

	var accounts []accountInfo
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, "SP384CVPNDTYA0E92TKJZQTYXQHNZSWGCAG7SAPVB", accounts[0].Address)
	assert.Equal(t, uint32(1), accounts[1].Index)
	assert.Empty(t, accounts[0].PrivateKey)
}

func TestAddressTestnet(t *testing.T) {
	out, err := run(t, "--network", "testnet", "--mnemonic", soundMnemonic, "address")
	require.NoError(t, err)

	var accounts []accountInfo
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, byte('S'), accounts[0].Address[0])
	assert.Equal(t, byte('T'), accounts[0].Address[1])
}

func TestAddressNeedsMnemonic(t *testing.T) {
	_, err := run(t, "address")
	assert.ErrorIs(t, err, ErrNoMnemonic)
}

func TestGenerate(t *testing.T) {
	out, err := run(t, "generate", "--bits", "128")
	require.NoError(t, err)

	var g generated
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, bytes.Fields([]byte(g.Mnemonic)), 12)
	assert.NotEmpty(t, g.Account.Address)
}

func TestTransferOffline(t *testing.T) {
	v := loadVector(t, "signed_token_transfer_mainnet")
	out, err := run(t, "--key", originKeyHex,
		"transfer",
		"--recipient", "SP3FGQ8Z7JY9BWYZ5WM53E0M9NK7WHJF0691NZ159",
		"--amount", "12345",
		"--memo", "test memo",
		"--fee", "0",
		"--nonce", "0",
	)
	require.NoError(t, err)

	var result txResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, v.Tx, result.Transaction)
	assert.Equal(t, v.TxID, result.TxID)
	assert.False(t, result.Broadcast)
}

func TestTransferNeedsSender(t *testing.T) {
	_, err := run(t, "transfer", "--recipient", "SP3FGQ8Z7JY9BWYZ5WM53E0M9NK7WHJF0691NZ159", "--amount", "1", "--fee", "1", "--nonce", "1")
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestCallInvalidContract(t *testing.T) {
	_, err := run(t, "--key", originKeyHex, "call", "--contract", "nodot", "--function", "f")
	assert.ErrorIs(t, err, ErrInvalidContract)
}

func TestDecode(t *testing.T) {
	v := loadVector(t, "signed_token_transfer_testnet")
	out, err := run(t, "decode", v.Tx)
	require.NoError(t, err)

	var d decodedTx
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, v.TxID, d.TxID)
	assert.Equal(t, uint8(0x80), d.Version)
	assert.Equal(t, "0x80000000", d.ChainID)
	assert.True(t, d.Verified)
	assert.True(t, d.Origin.Signed)
	assert.Nil(t, d.Sponsor)
	assert.Equal(t, "token_transfer", d.Payload["type"])
	assert.Equal(t, "test memo", d.Payload["memo"])
}

func TestDecodeMissingArg(t *testing.T) {
	_, err := run(t, "decode")
	assert.ErrorIs(t, err, ErrMissingArgs)
}

func TestBroadcast(t *testing.T) {
	v := loadVector(t, "signed_token_transfer_mainnet")

	var posted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/transactions" {
			http.NotFound(w, r)
			return
		}
		posted.Add(1)
		w.Write([]byte(`"` + v.TxID + `"`))
	}))
	defer srv.Close()

	out, err := run(t, "--node", srv.URL, "broadcast", v.Tx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), posted.Load())

	var result txResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Broadcast)
	assert.Equal(t, v.TxID, result.TxID)
}

func TestAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"balance":"0x0000000000000000000000000098967f","locked":"0x00000000000000000000000000000000","unlock_height":0,"nonce":7}`))
	}))
	defer srv.Close()

	out, err := run(t, "--node", srv.URL, "--mnemonic", soundMnemonic, "account")
	require.NoError(t, err)

	var b accountBalance
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, "SP384CVPNDTYA0E92TKJZQTYXQHNZSWGCAG7SAPVB", b.Address)
	assert.Equal(t, "9999999", b.Balance)
	assert.Equal(t, "0", b.Locked)
	assert.Equal(t, uint64(7), b.Nonce)
}
