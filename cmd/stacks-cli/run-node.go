package main

import (
	"context"

	"github.com/urfave/cli"
)

type accountBalance struct {
	Address      string `json:"address"`
	Balance      string `json:"balance"`
	Locked       string `json:"locked"`
	UnlockHeight uint64 `json:"unlock_height"`
	Nonce        uint64 `json:"nonce"`
}

func runInfo(c *cli.Context) error {
	m := getMetadata(c)

	info, err := m.client.Info(context.Background())
	if err != nil {
		return err
	}
	return printJSON(m.w, info)
}

func runAccount(c *cli.Context) error {
	m := getMetadata(c)

	address := c.Args().Get(0)
	if address == "" {
		key, err := senderKey(c)
		if err != nil {
			return err
		}
		if address, err = senderAddress(key, m.network); err != nil {
			return err
		}
	}

	info, err := m.client.AccountInfo(context.Background(), address)
	if err != nil {
		return err
	}
	balance, err := info.BalanceAmount()
	if err != nil {
		return err
	}
	locked, err := info.LockedAmount()
	if err != nil {
		return err
	}

	return printJSON(m.w, accountBalance{
		Address:      address,
		Balance:      balance.String(),
		Locked:       locked.String(),
		UnlockHeight: info.UnlockHeight,
		Nonce:        info.Nonce,
	})
}
