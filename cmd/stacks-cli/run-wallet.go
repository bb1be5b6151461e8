package main

import (
	"github.com/urfave/cli"

	"github.com/suffix-labs/stacks-go/pkg/wallet"
)

type accountInfo struct {
	Index      uint32 `json:"index"`
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
}

type generated struct {
	Mnemonic string      `json:"mnemonic"`
	Account  accountInfo `json:"account"`
}

func describeAccount(m *metadata, a *wallet.Account, withPrivate bool) (accountInfo, error) {
	address, err := a.NetworkAddress(m.network)
	if err != nil {
		return accountInfo{}, err
	}
	info := accountInfo{
		Index:     a.Index,
		Address:   address,
		PublicKey: a.PublicKey.Hex(),
	}
	if withPrivate {
		info.PrivateKey = a.PrivateKey.Hex()
	}
	return info, nil
}

func runGenerate(c *cli.Context) error {
	m := getMetadata(c)

	phrase, err := wallet.NewMnemonic(c.Int("bits"))
	if err != nil {
		return err
	}
	w, err := wallet.FromMnemonic(phrase, "")
	if err != nil {
		return err
	}
	account, err := w.Account(0)
	if err != nil {
		return err
	}
	info, err := describeAccount(m, account, false)
	if err != nil {
		return err
	}

	return printJSON(m.w, generated{Mnemonic: phrase, Account: info})
}

func runAddress(c *cli.Context) error {
	m := getMetadata(c)

	w, err := openWallet(c)
	if err != nil {
		return err
	}

	start := uint32(c.GlobalUint("account"))
	out := make([]accountInfo, 0, c.Uint("count"))
	for i := uint32(0); i < uint32(c.Uint("count")); i++ {
		account, err := w.Account(start + i)
		if err != nil {
			return err
		}
		info, err := describeAccount(m, account, m.verbose)
		if err != nil {
			return err
		}
		out = append(out, info)
	}

	m.logger.Debug("derived accounts", "count", len(out), "cached", w.DerivedCount())
	return printJSON(m.w, out)
}
