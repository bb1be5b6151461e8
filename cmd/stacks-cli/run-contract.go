package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/suffix-labs/stacks-go/pkg/api"
	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

type readOnlyResult struct {
	Value string `json:"value"`
	Hex   string `json:"hex"`
}

func runReadOnly(c *cli.Context) error {
	m := getMetadata(c)

	contract, err := requireString(c, "contract")
	if err != nil {
		return err
	}
	address, name, err := splitContract(contract)
	if err != nil {
		return err
	}
	function, err := requireString(c, "function")
	if err != nil {
		return err
	}
	args, err := parseArgs(c.StringSlice("arg"))
	if err != nil {
		return err
	}

	v, err := api.CallReadOnly(context.Background(), m.client, address, name, function, args, c.String("sender"))
	if err != nil {
		return err
	}
	h, err := clarity.EncodeHex(v)
	if err != nil {
		return err
	}
	return printJSON(m.w, readOnlyResult{Value: v.String(), Hex: "0x" + h})
}

type decodedCondition struct {
	HashMode string `json:"hash_mode"`
	Signer   string `json:"signer"`
	Fee      uint64 `json:"fee"`
	Nonce    uint64 `json:"nonce"`
	Signed   bool   `json:"signed"`
}

type decodedTx struct {
	TxID              string            `json:"txid"`
	Version           uint8             `json:"version"`
	ChainID           string            `json:"chain_id"`
	Origin            decodedCondition  `json:"origin"`
	Sponsor           *decodedCondition `json:"sponsor,omitempty"`
	AnchorMode        uint8             `json:"anchor_mode"`
	PostConditionMode uint8             `json:"post_condition_mode"`
	PostConditions    int               `json:"post_conditions"`
	Payload           map[string]any    `json:"payload"`
	Verified          bool              `json:"verified"`
}

func describeCondition(sc transaction.SpendingCondition) decodedCondition {
	return decodedCondition{
		HashMode: sc.Mode().String(),
		Signer:   sc.SignerHash().Hex(),
		Fee:      sc.Fee(),
		Nonce:    sc.Nonce(),
		Signed:   sc.IsFullySigned(),
	}
}

func describePayload(p transaction.Payload) map[string]any {
	switch p := p.(type) {
	case *transaction.TokenTransferPayload:
		return map[string]any{
			"type":      "token_transfer",
			"recipient": p.Recipient.String(),
			"amount":    p.Amount,
			"memo":      string(p.Memo),
		}
	case *transaction.ContractCallPayload:
		return map[string]any{
			"type":      "contract_call",
			"contract":  p.Contract().String(),
			"function":  string(p.FunctionName),
			"arguments": p.Args.String(),
		}
	}
	return map[string]any{"type": fmt.Sprintf("0x%02x", uint8(p.Type()))}
}

func runDecode(c *cli.Context) error {
	m := getMetadata(c)

	h := c.Args().Get(0)
	if h == "" {
		return ErrMissingArgs
	}
	tx, err := transaction.DecodeHex(h)
	if err != nil {
		return err
	}
	id, err := tx.TxID()
	if err != nil {
		return err
	}

	out := decodedTx{
		TxID:              id.Hex(),
		Version:           uint8(tx.Version),
		ChainID:           fmt.Sprintf("0x%08x", tx.ChainID),
		Origin:            describeCondition(tx.Auth.Origin),
		AnchorMode:        uint8(tx.AnchorMode),
		PostConditionMode: uint8(tx.PostConditionMode),
		PostConditions:    len(tx.PostConditions),
		Payload:           describePayload(tx.Payload),
		Verified:          tx.Verify() == nil,
	}
	if tx.Auth.IsSponsored() {
		sponsor := describeCondition(tx.Auth.Sponsor)
		out.Sponsor = &sponsor
	}
	return printJSON(m.w, out)
}
