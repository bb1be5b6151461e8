package main

import (
	"context"
	"errors"

	"github.com/urfave/cli"

	"github.com/suffix-labs/stacks-go/pkg/api"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

var errBroadcastSponsored = errors.New("a sponsored transaction needs its sponsor before broadcast")

func runTransfer(c *cli.Context) error {
	m := getMetadata(c)

	recipient, err := requireString(c, "recipient")
	if err != nil {
		return err
	}
	key, err := senderKey(c)
	if err != nil {
		return err
	}

	tx, err := api.MakeSTXTokenTransfer(context.Background(), api.TransferOptions{
		Network:   m.network,
		Client:    m.client,
		Sender:    api.Sender{PrivateKey: key},
		Recipient: recipient,
		Amount:    c.Uint64("amount"),
		Memo:      c.String("memo"),
		Fee:       c.Uint64("fee"),
		Nonce:     c.Uint64("nonce"),
		AutoFee:   !c.IsSet("fee"),
		AutoNonce: !c.IsSet("nonce"),
		Sponsored: c.Bool("sponsored"),
	})
	if err != nil {
		return err
	}
	return finish(c, m, tx, tx.Auth.Origin)
}

func runCall(c *cli.Context) error {
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
	key, err := senderKey(c)
	if err != nil {
		return err
	}

	tx, err := api.MakeContractCall(context.Background(), api.ContractCallOptions{
		Network:         m.network,
		Client:          m.client,
		Sender:          api.Sender{PrivateKey: key},
		ContractAddress: address,
		ContractName:    name,
		FunctionName:    function,
		FunctionArgs:    args,
		Fee:             c.Uint64("fee"),
		Nonce:           c.Uint64("nonce"),
		AutoFee:         !c.IsSet("fee"),
		AutoNonce:       !c.IsSet("nonce"),
		Sponsored:       c.Bool("sponsored"),
	})
	if err != nil {
		return err
	}
	return finish(c, m, tx, tx.Auth.Origin)
}

func runSponsor(c *cli.Context) error {
	m := getMetadata(c)

	h, err := requireString(c, "transaction")
	if err != nil {
		return err
	}
	tx, err := transaction.DecodeHex(h)
	if err != nil {
		return err
	}
	key, err := senderKey(c)
	if err != nil {
		return err
	}

	sponsored, err := api.SponsorTransaction(context.Background(), api.SponsorOptions{
		Client:      m.client,
		Transaction: tx,
		PrivateKey:  key,
		HashMode:    crypto.HashModeP2PKH,
		Fee:         c.Uint64("fee"),
		Nonce:       c.Uint64("nonce"),
		AutoFee:     !c.IsSet("fee"),
		AutoNonce:   !c.IsSet("nonce"),
	})
	if err != nil {
		return err
	}
	return finish(c, m, sponsored, sponsored.Auth.Sponsor)
}

func runBroadcast(c *cli.Context) error {
	m := getMetadata(c)

	h := c.Args().Get(0)
	if h == "" {
		return ErrMissingArgs
	}
	tx, err := transaction.DecodeHex(h)
	if err != nil {
		return err
	}

	payer := tx.Auth.Origin
	if tx.Auth.IsSponsored() {
		payer = tx.Auth.Sponsor
	}
	result, err := describeTx(tx, payer)
	if err != nil {
		return err
	}

	if _, err := api.BroadcastTransaction(context.Background(), m.client, tx); err != nil {
		return err
	}
	result.Broadcast = true
	return printJSON(m.w, result)
}

// finish prints tx and, with --broadcast, submits it first.
func finish(c *cli.Context, m *metadata, tx *transaction.Transaction, payer transaction.SpendingCondition) error {
	result, err := describeTx(tx, payer)
	if err != nil {
		return err
	}

	if c.Bool("broadcast") {
		if tx.Auth.IsSponsored() && !tx.Auth.Sponsor.IsFullySigned() {
			return errBroadcastSponsored
		}
		txid, err := api.BroadcastTransaction(context.Background(), m.client, tx)
		if err != nil {
			return err
		}
		m.logger.Info("transaction accepted", "txid", txid)
		result.Broadcast = true
	}
	return printJSON(m.w, result)
}
