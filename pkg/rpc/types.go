package rpc

import (
	"fmt"
	"math/big"
	"strings"
)

// NodeInfo is the response of GET /v2/info.
type NodeInfo struct {
	PeerVersion            uint64 `json:"peer_version"`
	PoxConsensus           string `json:"pox_consensus"`
	BurnBlockHeight        uint64 `json:"burn_block_height"`
	StablePoxConsensus     string `json:"stable_pox_consensus"`
	StableBurnBlockHeight  uint64 `json:"stable_burn_block_height"`
	ServerVersion          string `json:"server_version"`
	NetworkID              uint32 `json:"network_id"`
	ParentNetworkID        uint32 `json:"parent_network_id"`
	StacksTipHeight        uint64 `json:"stacks_tip_height"`
	StacksTip              string `json:"stacks_tip"`
	StacksTipConsensusHash string `json:"stacks_tip_consensus_hash"`
	GenesisChainstateHash  string `json:"genesis_chainstate_hash"`
}

// AccountInfo is the response of GET /v2/accounts/{address}.
type AccountInfo struct {
	Balance      string `json:"balance"` // 0x-prefixed hex micro-STX
	Locked       string `json:"locked"`
	UnlockHeight uint64 `json:"unlock_height"`
	Nonce        uint64 `json:"nonce"`
	BalanceProof string `json:"balance_proof"`
	NonceProof   string `json:"nonce_proof"`
}

// BalanceAmount parses Balance.
func (a AccountInfo) BalanceAmount() (*big.Int, error) {
	return parseHexAmount(a.Balance)
}

// LockedAmount parses Locked.
func (a AccountInfo) LockedAmount() (*big.Int, error) {
	return parseHexAmount(a.Locked)
}

func parseHexAmount(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(s, "0x")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex amount %q", s)
	}
	return v, nil
}

// FeeEstimate is one entry of a POST /v2/fees/transaction response.
type FeeEstimate struct {
	Fee     uint64  `json:"fee"`
	FeeRate float64 `json:"fee_rate"`
}

type feeEstimateRequest struct {
	TransactionPayload string `json:"transaction_payload"`
	EstimatedLen       int    `json:"estimated_len"`
}

type feeEstimateResponse struct {
	EstimatedCost       map[string]uint64 `json:"estimated_cost"`
	EstimatedCostScalar uint64            `json:"estimated_cost_scalar"`
	Estimations         []FeeEstimate     `json:"estimations"`
	CostScalarChangeBy  uint64            `json:"cost_scalar_change_by_byte"`
}

type broadcastRejection struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	TxID   string `json:"txid"`
}

type readOnlyRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

type readOnlyResponse struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result"`
	Cause  string `json:"cause"`
}
