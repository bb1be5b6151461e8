// Package rpc is a thin client for the Stacks node HTTP API.
//
// Every call is a single request: there is no retry, pooling policy or
// backpressure beyond what net/http does on its own.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// DefaultTimeout bounds a request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL    string        // Node URL, e.g. transaction.MainnetURL
	Timeout    time.Duration // Per-request timeout; DefaultTimeout when zero
	Logger     *slog.Logger  // slog.Default() when nil
	HTTPClient *http.Client  // A fresh client when nil
}

// Client talks to one Stacks node.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
	http    *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		http:    cfg.HTTPClient,
	}
}

// NewNetworkClient creates a Client for the node of a network preset.
func NewNetworkClient(network transaction.Network, logger *slog.Logger) *Client {
	return NewClient(Config{BaseURL: network.BaseURL, Logger: logger})
}

// BaseURL returns the node URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug(
		"node request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(data),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn(
			"node rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, newBadRequest(resp.StatusCode, data)
	}
	return data, nil
}

func newBadRequest(status int, body []byte) *BadRequestError {
	e := &BadRequestError{Status: status, Body: strings.TrimSpace(string(body))}
	var rej broadcastRejection
	if json.Unmarshal(body, &rej) == nil {
		e.Reason = rej.Reason
		e.TxID = rej.TxID
	}
	return e
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodPost, path, "application/json", body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// ===== Node =====

// Info returns the node's view of the chain.
func (c *Client) Info(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.getJSON(ctx, "/v2/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ===== Accounts =====

// AccountInfo returns the balance and nonce of address.
func (c *Client) AccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.getJSON(ctx, "/v2/accounts/"+url.PathEscape(address)+"?proof=0", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Nonce returns the next nonce of address.
func (c *Client) Nonce(ctx context.Context, address string) (uint64, error) {
	info, err := c.AccountInfo(ctx, address)
	if err != nil {
		return 0, err
	}
	return info.Nonce, nil
}

// ===== Fees =====

// FeeRate returns the node's fee rate in micro-STX per byte.
func (c *Client) FeeRate(ctx context.Context) (uint64, error) {
	data, err := c.do(ctx, http.MethodGet, "/v2/fees/transfer", "", nil)
	if err != nil {
		return 0, err
	}
	rate, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fee rate %q: %w", data, err)
	}
	return rate, nil
}

// EstimateFee returns byteLength times the node's fee rate.
func (c *Client) EstimateFee(ctx context.Context, byteLength int) (uint64, error) {
	if byteLength < 0 {
		return 0, fmt.Errorf("invalid byte length %d", byteLength)
	}
	rate, err := c.FeeRate(ctx)
	if err != nil {
		return 0, err
	}
	hi, fee := bits.Mul64(uint64(byteLength), rate)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d bytes at rate %d", ErrFeeOverflow, byteLength, rate)
	}
	return fee, nil
}

// EstimateTransactionFee asks the node's cost estimator for tx and returns
// its estimations, cheapest first as the node orders them.
func (c *Client) EstimateTransactionFee(ctx context.Context, tx *transaction.Transaction) ([]FeeEstimate, error) {
	payload, err := transaction.EncodePayload(tx.Payload)
	if err != nil {
		return nil, err
	}
	n, err := tx.ByteLength()
	if err != nil {
		return nil, err
	}

	req := feeEstimateRequest{TransactionPayload: crypto.BytesToHex(payload), EstimatedLen: n}
	var resp feeEstimateResponse
	if err := c.postJSON(ctx, "/v2/fees/transaction", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Estimations) == 0 {
		return nil, errors.New("node returned no fee estimations")
	}
	return resp.Estimations, nil
}

// ===== Transactions =====

// Broadcast submits raw transaction bytes and returns the txid reported by
// the node.
func (c *Client) Broadcast(ctx context.Context, raw []byte) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/v2/transactions", "application/octet-stream", raw)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}

// BroadcastTransaction encodes and submits tx.
func (c *Client) BroadcastTransaction(ctx context.Context, tx *transaction.Transaction) (string, error) {
	raw, err := tx.Encode()
	if err != nil {
		return "", err
	}
	return c.Broadcast(ctx, raw)
}

// ===== Contracts =====

// CallReadOnly evaluates a read-only contract function. An empty sender
// defaults to the contract address.
func (c *Client) CallReadOnly(
	ctx context.Context,
	contractAddress string,
	contractName string,
	functionName string,
	args []clarity.Value,
	sender string,
) (clarity.Value, error) {
	if sender == "" {
		sender = contractAddress
	}

	req := readOnlyRequest{Sender: sender, Arguments: make([]string, len(args))}
	for i, arg := range args {
		h, err := clarity.EncodeHex(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		req.Arguments[i] = "0x" + h
	}

	path := fmt.Sprintf("/v2/contracts/call-read/%s/%s/%s",
		url.PathEscape(contractAddress), url.PathEscape(contractName), url.PathEscape(functionName))

	var resp readOnlyResponse
	if err := c.postJSON(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Okay {
		return nil, &ReadOnlyError{Cause: resp.Cause}
	}

	v, err := clarity.DecodeHex(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return v, nil
}
