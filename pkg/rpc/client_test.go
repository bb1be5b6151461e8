package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

const (
	testAddress  = "SP2JXKMSH007NPYAQHKJPQMAQYAD90NQGTVJVQ02B"
	testOriginSK = "edf9aee84d9b7abc145504dde6726c64f369d37ee34ded868fabd876c26570bc01"
)

// newTestClient starts a node stub. The returned func must run before
// goleak checks, so callers defer it after goleak.VerifyNone.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	return c, func() {
		c.Close()
		srv.Close()
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:3999/"})
	assert.Equal(t, "http://localhost:3999", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.http)

	c = NewNetworkClient(transaction.Testnet(), nil)
	assert.Equal(t, transaction.TestnetURL, c.BaseURL())
}

func TestInfo(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/info", r.URL.Path)
		_, _ = io.WriteString(w, `{"peer_version":402653189,"burn_block_height":840000,"network_id":1,"parent_network_id":3652501241,"stacks_tip_height":150000,"server_version":"stacks-node 2.5"}`)
	})
	defer done()

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), info.NetworkID)
	assert.Equal(t, uint64(150000), info.StacksTipHeight)
	assert.Equal(t, "stacks-node 2.5", info.ServerVersion)
}

func TestAccountInfoAndNonce(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/"+testAddress, r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("proof"))
		_, _ = io.WriteString(w, `{"balance":"0x0000000000000000000000000098967f","locked":"0x00","unlock_height":0,"nonce":12}`)
	})
	defer done()

	info, err := c.AccountInfo(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), info.Nonce)

	balance, err := info.BalanceAmount()
	require.NoError(t, err)
	assert.Equal(t, int64(9999999), balance.Int64())

	locked, err := info.LockedAmount()
	require.NoError(t, err)
	assert.Zero(t, locked.Sign())

	nonce, err := c.Nonce(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), nonce)
}

func TestParseHexAmount(t *testing.T) {
	v, err := parseHexAmount("")
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	_, err = parseHexAmount("0xzz")
	assert.Error(t, err)
}

func TestFeeRate(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/fees/transfer", r.URL.Path)
		_, _ = io.WriteString(w, "3\n")
	})
	defer done()

	rate, err := c.FeeRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rate)

	fee, err := c.EstimateFee(context.Background(), 180)
	require.NoError(t, err)
	assert.Equal(t, uint64(540), fee)
}

func TestEstimateFeeOverflow(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "18446744073709551615")
	})
	defer done()

	_, err := c.EstimateFee(context.Background(), 2)
	assert.ErrorIs(t, err, ErrFeeOverflow)

	fee, err := c.EstimateFee(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), fee)

	_, err = c.EstimateFee(context.Background(), -1)
	assert.Error(t, err)
}

func TestFeeRateInvalidBody(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not a number")
	})
	defer done()

	_, err := c.FeeRate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fee rate")
}

func testTransaction(t *testing.T) *transaction.Transaction {
	t.Helper()
	sk, err := crypto.PrivateKeyFromHex(testOriginSK)
	require.NoError(t, err)
	origin, err := transaction.NewSingleSpendingCondition(0, 0, sk.PublicKey(), crypto.HashModeP2PKH)
	require.NoError(t, err)
	payload, err := transaction.NewTokenTransferPayload(testAddress, 12345, "")
	require.NoError(t, err)
	return transaction.New(transaction.Mainnet(), transaction.NewStandardAuthorization(origin), payload)
}

func TestEstimateTransactionFee(t *testing.T) {
	defer goleak.VerifyNone(t)

	tx := testTransaction(t)
	payload, err := transaction.EncodePayload(tx.Payload)
	require.NoError(t, err)
	n, err := tx.ByteLength()
	require.NoError(t, err)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/fees/transaction", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req feeEstimateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, crypto.BytesToHex(payload), req.TransactionPayload)
		assert.Equal(t, n, req.EstimatedLen)

		_, _ = io.WriteString(w, `{"estimated_cost_scalar":14,"estimations":[{"fee_rate":1.5,"fee":180},{"fee_rate":2,"fee":240},{"fee_rate":3,"fee":360}]}`)
	})
	defer done()

	estimates, err := c.EstimateTransactionFee(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, estimates, 3)
	assert.Equal(t, uint64(180), estimates[0].Fee)
	assert.InDelta(t, 1.5, estimates[0].FeeRate, 1e-9)
}

func TestEstimateTransactionFeeEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"estimations":[]}`)
	})
	defer done()

	_, err := c.EstimateTransactionFee(context.Background(), testTransaction(t))
	assert.Error(t, err)
}

func TestBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	raw := []byte{0x00, 0x01, 0x02}
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, raw, body)
		_, _ = io.WriteString(w, `"0e6e2b4d0f1e3c1bd7f8a3a6c0a7e1c3f0f6f6bd7a5a0a3e8d2b3d1e1a9e5c7f"`)
	})
	defer done()

	txid, err := c.Broadcast(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "0e6e2b4d0f1e3c1bd7f8a3a6c0a7e1c3f0f6f6bd7a5a0a3e8d2b3d1e1a9e5c7f", txid)
}

func TestBroadcastTransaction(t *testing.T) {
	defer goleak.VerifyNone(t)

	tx := testTransaction(t)
	want, err := tx.Encode()
	require.NoError(t, err)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, want, body)
		_, _ = io.WriteString(w, `"abcd"`)
	})
	defer done()

	txid, err := c.BroadcastTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "abcd", txid)
}

func TestBroadcastRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"transaction rejected","reason":"BadNonce","txid":"abcd"}`)
	})
	defer done()

	_, err := c.Broadcast(context.Background(), []byte{0x00})
	require.Error(t, err)

	var bad *BadRequestError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, http.StatusBadRequest, bad.Status)
	assert.Equal(t, "BadNonce", bad.Reason)
	assert.Equal(t, "abcd", bad.TxID)
	assert.Contains(t, bad.Error(), "BadNonce")
}

func TestBadRequestPlainBody(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such account", http.StatusNotFound)
	})
	defer done()

	_, err := c.AccountInfo(context.Background(), testAddress)
	var bad *BadRequestError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, http.StatusNotFound, bad.Status)
	assert.Equal(t, "no such account", bad.Body)
	assert.Empty(t, bad.Reason)
	assert.Equal(t, "node returned 404: no such account", bad.Error())
}

func TestCallReadOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	result := clarity.ResponseOk{Value: clarity.NewUInt(100)}
	resultHex, err := clarity.EncodeHex(result)
	require.NoError(t, err)

	arg := clarity.MustPrincipal(testAddress)
	argHex, err := clarity.EncodeHex(arg)
	require.NoError(t, err)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/contracts/call-read/"+testAddress+"/token/get-balance", r.URL.Path)

		var req readOnlyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testAddress, req.Sender)
		assert.Equal(t, []string{"0x" + argHex}, req.Arguments)

		_ = json.NewEncoder(w).Encode(readOnlyResponse{Okay: true, Result: "0x" + resultHex})
	})
	defer done()

	v, err := c.CallReadOnly(context.Background(), testAddress, "token", "get-balance", []clarity.Value{arg}, "")
	require.NoError(t, err)
	assert.True(t, clarity.Equal(result, v))
}

func TestCallReadOnlyFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"okay":false,"cause":"Unchecked(NoSuchContract(\"SP000.token\"))"}`)
	})
	defer done()

	_, err := c.CallReadOnly(context.Background(), testAddress, "token", "get-balance", nil, testAddress)
	var roErr *ReadOnlyError
	require.ErrorAs(t, err, &roErr)
	assert.Contains(t, roErr.Cause, "NoSuchContract")
}

func TestCallReadOnlyBadResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"okay":true,"result":"0xff"}`)
	})
	defer done()

	_, err := c.CallReadOnly(context.Background(), testAddress, "token", "get-balance", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode result")
}

func TestRequestCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "1")
	})
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FeeRate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
