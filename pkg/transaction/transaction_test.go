package transaction

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

const (
	testOriginKeyHex  = "edf9aee84d9b7abc145504dde6726c64f369d37ee34ded868fabd876c26570bc"
	testSponsorKeyHex = "9888d734e6e80a943a6544159e31d6c7e342f695ec867d549c569fa0028892d4"
	testRecipient     = "SP3FGQ8Z7JY9BWYZ5WM53E0M9NK7WHJF0691NZ159"
)

// vector is one entry of testdata/vectors/transactions.json. Sponsored
// entries carry the transaction before and after the sponsor signs.
type vector struct {
	Name            string `json:"name"`
	Tx              string `json:"tx"`
	TxID            string `json:"txid"`
	PreSponsorTx    string `json:"pre_sponsor_tx"`
	PreSponsorTxID  string `json:"pre_sponsor_txid"`
	PostSponsorTx   string `json:"post_sponsor_tx"`
	PostSponsorTxID string `json:"post_sponsor_txid"`
}

func getTestDataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "vectors")
}

func loadVectors(t *testing.T) []vector {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(getTestDataPath(), "transactions.json"))
	require.NoError(t, err)
	var vectors []vector
	require.NoError(t, json.Unmarshal(data, &vectors))
	require.NotEmpty(t, vectors)
	return vectors
}

func checkVector(t *testing.T, txHex, txid string, verify bool) *Transaction {
	t.Helper()
	tx, err := DecodeHex(txHex)
	require.NoError(t, err)

	encoded, err := tx.Hex()
	require.NoError(t, err)
	assert.Equal(t, txHex, encoded)

	id, err := tx.TxID()
	require.NoError(t, err)
	assert.Equal(t, txid, id.Hex())

	n, err := tx.ByteLength()
	require.NoError(t, err)
	assert.Equal(t, len(txHex)/2, n)

	if verify {
		assert.NoError(t, tx.Verify())
	}
	return tx
}

func TestTransactionVectors(t *testing.T) {
	for _, v := range loadVectors(t) {
		t.Run(v.Name, func(t *testing.T) {
			if v.PreSponsorTx != "" {
				pre := checkVector(t, v.PreSponsorTx, v.PreSponsorTxID, false)
				_, err := pre.VerifyOrigin()
				assert.NoError(t, err)
				assert.Error(t, pre.Verify(), "placeholder sponsor has no signature")

				post := checkVector(t, v.PostSponsorTx, v.PostSponsorTxID, true)
				assert.Equal(t, AuthTypeSponsored, post.Auth.Type())
				assert.Equal(t, uint64(123), post.Auth.Fee())
				assert.Equal(t, uint64(55), post.Auth.Sponsor.Nonce())
				return
			}

			tx := checkVector(t, v.Tx, v.TxID, !strings.HasPrefix(v.Name, "unsigned"))
			if strings.HasSuffix(v.Name, "_testnet") {
				assert.Equal(t, TransactionVersionTestnet, tx.Version)
				assert.Equal(t, ChainIDTestnet, tx.ChainID)
			} else {
				assert.Equal(t, TransactionVersionMainnet, tx.Version)
				assert.Equal(t, ChainIDMainnet, tx.ChainID)
			}
		})
	}
}

func testOriginCondition(t *testing.T) *SingleSpendingCondition {
	t.Helper()
	key, err := crypto.PrivateKeyFromHex(testOriginKeyHex)
	require.NoError(t, err)
	c, err := NewSingleSpendingCondition(0, 0, key.PublicKey(), crypto.HashModeP2PKH)
	require.NoError(t, err)
	return c
}

func testTokenTransfer(t *testing.T) *TokenTransferPayload {
	t.Helper()
	p, err := NewTokenTransferPayload(testRecipient, 12345, "test memo")
	require.NoError(t, err)
	return p
}

// signOrigin signs a standard single-sig transaction the way a wallet does.
func signOrigin(t *testing.T, tx *Transaction, keyHex string) {
	t.Helper()
	key, err := crypto.PrivateKeyFromHex(keyHex)
	require.NoError(t, err)

	initial, err := tx.InitialSighash()
	require.NoError(t, err)

	origin := tx.Auth.Origin.(*SingleSpendingCondition)
	sig, _, err := crypto.NextSignature(initial, uint8(AuthTypeStandard), origin.Fee(), origin.Nonce(), key)
	require.NoError(t, err)
	origin.SetSignature(crypto.PubKeyEncodingCompressed, sig)
}

func TestNewTransactionDefaults(t *testing.T) {
	tx := New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
	assert.Equal(t, AnchorModeAny, tx.AnchorMode)
	assert.Equal(t, PostConditionModeDeny, tx.PostConditionMode)
	assert.Empty(t, tx.PostConditions)

	// Matches the unsigned_token_transfer_mainnet vector.
	id, err := tx.TxID()
	require.NoError(t, err)
	assert.Equal(t, "95eb01360860afa4c818768cd11b6eff45a8009a9016d255705488c60a828b97", id.Hex())
}

func TestSignAndVerify(t *testing.T) {
	tx := New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
	signOrigin(t, tx, testOriginKeyHex)

	id, err := tx.TxID()
	require.NoError(t, err)
	assert.Equal(t, "84cccb05f4bd0e1b08905ef1f1350ad635a6474448310548bdccfa04e0121bab", id.Hex())
	require.NoError(t, tx.Verify())

	t.Run("fee tamper", func(t *testing.T) {
		tampered := tx.Clone()
		tampered.SetFee(1)
		err := tampered.Verify()
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrBadSigner))
	})

	t.Run("payload tamper", func(t *testing.T) {
		tampered := tx.Clone()
		p := *tampered.Payload.(*TokenTransferPayload)
		p.Amount++
		tampered.Payload = &p
		assert.True(t, IsCode(tampered.Verify(), ErrBadSigner))
	})

	t.Run("wrong key", func(t *testing.T) {
		other := New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
		signOrigin(t, other, testSponsorKeyHex)
		assert.True(t, IsCode(other.Verify(), ErrBadSigner))
	})

	t.Run("clone is independent", func(t *testing.T) {
		clone := tx.Clone()
		clone.SetNonce(9)
		assert.Equal(t, uint64(0), tx.Auth.Origin.Nonce())
		assert.NoError(t, tx.Verify())
	})
}

func TestInitialSighashIgnoresAuthorization(t *testing.T) {
	tx := New(Testnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
	before, err := tx.InitialSighash()
	require.NoError(t, err)

	tx.SetFee(180)
	tx.SetNonce(3)
	signOrigin(t, tx, testOriginKeyHex)

	after, err := tx.InitialSighash()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(180), tx.Auth.Origin.Fee(), "InitialSighash must not mutate the transaction")
	assert.NoError(t, tx.Verify())
}

func TestSponsoredAuthorization(t *testing.T) {
	auth := NewSponsoredAuthorization(testOriginCondition(t), nil)
	tx := New(Mainnet(), auth, testTokenTransfer(t))
	assert.True(t, tx.Auth.IsSponsored())
	assert.Equal(t, AuthTypeSponsored, tx.Auth.Type())

	tx.SetFee(123)
	tx.SetNonce(55)
	assert.Equal(t, uint64(123), tx.Auth.Sponsor.Fee())
	assert.Equal(t, uint64(55), tx.Auth.Sponsor.Nonce())
	assert.Equal(t, uint64(0), tx.Auth.Origin.Fee(), "sponsor pays the fee")

	initial := tx.Auth.IntoInitial()
	assert.Equal(t, uint64(0), initial.Sponsor.Fee())
	assert.True(t, initial.Sponsor.SignerHash().IsZero())

	key, err := crypto.PrivateKeyFromHex(testSponsorKeyHex)
	require.NoError(t, err)
	sponsor, err := NewSingleSpendingCondition(1, 2, key.PublicKey(), crypto.HashModeP2PKH)
	require.NoError(t, err)
	require.NoError(t, tx.SetSponsor(sponsor))
	assert.Same(t, sponsor, tx.Auth.Sponsor)
}

func TestSetSponsorOnStandard(t *testing.T) {
	tx := New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
	err := tx.SetSponsor(NewEmptySingleSpendingCondition())
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrNotSponsored))

	var me *ModificationError
	assert.ErrorAs(t, err, &me)
}

func TestEncodeRejectsIncompleteTransaction(t *testing.T) {
	tx := New(Mainnet(), Authorization{}, testTokenTransfer(t))
	_, err := tx.Encode()
	assert.True(t, IsCode(err, ErrInvalidValue))

	tx = New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), nil)
	_, err = tx.Encode()
	assert.True(t, IsCode(err, ErrInvalidValue))

	tx = New(Mainnet(), NewStandardAuthorization(testOriginCondition(t)), testTokenTransfer(t))
	tx.AnchorMode = 0
	_, err = tx.Encode()
	assert.True(t, IsCode(err, ErrInvalidEnum))
}

func TestDecodeErrors(t *testing.T) {
	valid := loadVectors(t)[0].Tx

	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty", "", ErrUnexpectedEOF},
		{"truncated chain id", "000000", ErrUnexpectedEOF},
		{"bad version", "01" + valid[2:], ErrInvalidEnum},
		{"bad auth type", valid[:10] + "07" + valid[12:], ErrInvalidEnum},
		{"bad hash mode", valid[:12] + "04" + valid[14:], ErrInvalidEnum},
		{"truncated payload", valid[:len(valid)-2], ErrUnexpectedEOF},
		{"trailing bytes", valid + "00", ErrTrailingBytes},
		{"not hex", "zz", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHex(tt.input)
			require.Error(t, err)
			assert.True(t, IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestNetworks(t *testing.T) {
	n, err := NetworkByName("Testnet")
	require.NoError(t, err)
	assert.Equal(t, Testnet(), n)

	n, err = NetworkByName("devnet")
	require.NoError(t, err)
	assert.Equal(t, MocknetURL, n.BaseURL)

	_, err = NetworkByName("regtest")
	assert.Error(t, err)

	assert.Equal(t, "http://node:20443", Mainnet().WithBaseURL("http://node:20443/").BaseURL)

	assert.Equal(t, crypto.AddressVersionMainnetP2PKH, Mainnet().AddressVersion(crypto.HashModeP2WPKH))
	assert.Equal(t, crypto.AddressVersionMainnetP2SH, Mainnet().AddressVersion(crypto.HashModeP2SH))
	assert.Equal(t, crypto.AddressVersionTestnetP2PKH, Testnet().AddressVersion(crypto.HashModeP2PKH))
	assert.Equal(t, crypto.AddressVersionTestnetP2SH, Mocknet().AddressVersion(crypto.HashModeP2WSH))
}
