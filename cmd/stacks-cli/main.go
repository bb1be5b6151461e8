// stacks-cli - build, sign and broadcast Stacks transactions
//
// Example usage:
//
//	# Derive the first accounts of a mnemonic
//	stacks-cli --mnemonic "..." address --count 3
//
//	# Send STX, looking up nonce and fee from the node
//	stacks-cli --network testnet --key <hex> transfer --recipient ST... --amount 1000 --broadcast
//
//	# Call a read-only function
//	stacks-cli read-only --contract SP....token --function get-balance --arg "'SP..."
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/suffix-labs/stacks-go/pkg/rpc"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

type metadata struct {
	network transaction.Network
	client  *rpc.Client
	logger  *slog.Logger
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "stacks-cli"
	app.Usage = "build, sign and broadcast Stacks transactions"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " log node requests to stderr",
		},
		cli.StringFlag{
			Name:   "network, n",
			Value:  "mainnet",
			Usage:  " `NETWORK` preset [mainnet|testnet|mocknet]",
			EnvVar: "STACKS_NETWORK",
		},
		cli.StringFlag{
			Name:   "node",
			Value:  "",
			Usage:  " node `URL` overriding the network default",
			EnvVar: "STACKS_NODE_URL",
		},
		cli.StringFlag{
			Name:   "mnemonic, m",
			Value:  "",
			Usage:  " wallet `PHRASE` to derive the sender from",
			EnvVar: "STACKS_MNEMONIC",
		},
		cli.UintFlag{
			Name:  "account, a",
			Value: 0,
			Usage: " account `INDEX` of the mnemonic",
		},
		cli.StringFlag{
			Name:   "key, k",
			Value:  "",
			Usage:  " sender private key `HEX`, takes precedence over the mnemonic",
			EnvVar: "STACKS_PRIVATE_KEY",
		},
	}

	feeFlags := []cli.Flag{
		cli.Uint64Flag{
			Name:  "fee, f",
			Usage: " fee in micro-STX `AMOUNT` (default: estimated by the node)",
		},
		cli.Uint64Flag{
			Name:  "nonce",
			Usage: " account `NONCE` (default: fetched from the node)",
		},
		cli.BoolFlag{
			Name:  "broadcast, b",
			Usage: " submit the transaction instead of printing it only",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a new mnemonic and print its first account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "bits",
					Value: 256,
					Usage: " entropy size `BITS` [128|160|192|224|256]",
				},
			},
			Action: runGenerate,
		},
		{
			Name:      "address",
			Usage:     "print the accounts derived from the mnemonic",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "count, c",
					Value: 1,
					Usage: " number of accounts `COUNT`",
				},
			},
			Action: runAddress,
		},
		{
			Name:      "info",
			Usage:     "show the node's view of the chain",
			ArgsUsage: " ",
			Action:    runInfo,
		},
		{
			Name:      "account",
			Usage:     "show balance and nonce of an address",
			ArgsUsage: "[ADDRESS]\n   (default: the sender's address)",
			Action:    runAccount,
		},
		{
			Name:      "transfer",
			Usage:     "send STX",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "recipient, r",
					Usage: "*recipient `ADDRESS` or ADDRESS.CONTRACT",
				},
				cli.Uint64Flag{
					Name:  "amount",
					Usage: "*amount in micro-STX `AMOUNT`",
				},
				cli.StringFlag{
					Name:  "memo",
					Usage: " memo `TEXT`, up to 34 bytes",
				},
				cli.BoolFlag{
					Name:  "sponsored, s",
					Usage: " leave the fee to a sponsor",
				},
			}, feeFlags...),
			Action: runTransfer,
		},
		{
			Name:      "call",
			Usage:     "call a public contract function",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "contract, c",
					Usage: "*contract `ADDRESS.NAME`",
				},
				cli.StringFlag{
					Name:  "function, F",
					Usage: "*function `NAME`",
				},
				cli.StringSliceFlag{
					Name:  "arg",
					Usage: " Clarity `VALUE` argument, repeatable, e.g. u10 or \"'SP...\"",
				},
				cli.BoolFlag{
					Name:  "sponsored, s",
					Usage: " leave the fee to a sponsor",
				},
			}, feeFlags...),
			Action: runCall,
		},
		{
			Name:      "sponsor",
			Usage:     "sign a sponsored transaction as its sponsor",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "transaction, t",
					Usage: "*origin signed transaction `HEX`",
				},
			}, feeFlags...),
			Action: runSponsor,
		},
		{
			Name:      "read-only",
			Usage:     "evaluate a read-only contract function",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "contract, c",
					Usage: "*contract `ADDRESS.NAME`",
				},
				cli.StringFlag{
					Name:  "function, F",
					Usage: "*function `NAME`",
				},
				cli.StringSliceFlag{
					Name:  "arg",
					Usage: " Clarity `VALUE` argument, repeatable",
				},
				cli.StringFlag{
					Name:  "sender",
					Usage: " sender `ADDRESS` (default: the contract address)",
				},
			},
			Action: runReadOnly,
		},
		{
			Name:      "decode",
			Usage:     "decode a transaction",
			ArgsUsage: "HEX",
			Action:    runDecode,
		},
		{
			Name:      "broadcast",
			Usage:     "submit a signed transaction",
			ArgsUsage: "HEX",
			Action:    runBroadcast,
		},
		{
			Name:      "version",
			Usage:     "display stacks-cli version",
			ArgsUsage: " ",
			Action:    runVersion,
		},
	}

	app.Before = func(c *cli.Context) error {
		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(e, &slog.HandlerOptions{Level: level}))

		network, err := transaction.NetworkByName(c.GlobalString("network"))
		if err != nil {
			return err
		}
		if url := c.GlobalString("node"); url != "" {
			network = network.WithBaseURL(url)
		}
		logger.Debug("using network", "name", network.Name, "node", network.BaseURL)

		c.App.Metadata["config"] = &metadata{
			network: network,
			client:  rpc.NewClient(rpc.Config{BaseURL: network.BaseURL, Logger: logger}),
			logger:  logger,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		if m, ok := c.App.Metadata["config"].(*metadata); ok {
			m.client.Close()
		}
		return nil
	}

	return app
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
