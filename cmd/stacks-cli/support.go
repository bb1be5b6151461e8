package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
	"github.com/suffix-labs/stacks-go/pkg/wallet"
)

// common errors
var (
	ErrNoSender        = errors.New("sender required: set --key or --mnemonic")
	ErrNoMnemonic      = errors.New("mnemonic required: set --mnemonic")
	ErrMissingArgs     = errors.New("missing argument")
	ErrInvalidContract = errors.New("contract must be ADDRESS.NAME")
)

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

func printJSON(handle io.Writer, message any) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(handle, "%s\n", b)
	return nil
}

func openWallet(c *cli.Context) (*wallet.Wallet, error) {
	phrase := c.GlobalString("mnemonic")
	if phrase == "" {
		return nil, ErrNoMnemonic
	}
	return wallet.FromMnemonic(phrase, "")
}

// senderKey resolves the signing key from --key or --mnemonic/--account.
func senderKey(c *cli.Context) (*crypto.PrivateKey, error) {
	if h := c.GlobalString("key"); h != "" {
		return crypto.PrivateKeyFromHex(h)
	}
	if c.GlobalString("mnemonic") == "" {
		return nil, ErrNoSender
	}

	w, err := openWallet(c)
	if err != nil {
		return nil, err
	}
	account, err := w.Account(uint32(c.GlobalUint("account")))
	if err != nil {
		return nil, err
	}
	return account.PrivateKey, nil
}

func senderAddress(key *crypto.PrivateKey, network transaction.Network) (string, error) {
	return crypto.C32Address(network.AddressVersion(crypto.HashModeP2PKH), crypto.HashP2PKH(key.PublicKey().Bytes()))
}

func splitContract(s string) (string, string, error) {
	address, name, ok := strings.Cut(s, ".")
	if !ok || address == "" || name == "" {
		return "", "", ErrInvalidContract
	}
	return address, name, nil
}

func parseArgs(args []string) ([]clarity.Value, error) {
	values := make([]clarity.Value, 0, len(args))
	for i, s := range args {
		v, err := clarity.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func requireString(c *cli.Context, name string) (string, error) {
	s := strings.TrimSpace(c.String(name))
	if s == "" {
		return "", fmt.Errorf("%w: --%s", ErrMissingArgs, name)
	}
	return s, nil
}

type txResult struct {
	TxID        string `json:"txid"`
	Transaction string `json:"transaction"`
	Length      int    `json:"length"`
	Fee         uint64 `json:"fee"`
	Nonce       uint64 `json:"nonce"`
	Broadcast   bool   `json:"broadcast"`
}

func describeTx(tx *transaction.Transaction, payer transaction.SpendingCondition) (*txResult, error) {
	h, err := tx.Hex()
	if err != nil {
		return nil, err
	}
	id, err := tx.TxID()
	if err != nil {
		return nil, err
	}
	return &txResult{
		TxID:        id.Hex(),
		Transaction: h,
		Length:      len(h) / 2,
		Fee:         payer.Fee(),
		Nonce:       payer.Nonce(),
	}, nil
}
