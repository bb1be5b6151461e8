// Package api provides the high-level public API for building, signing and
// broadcasting Stacks transactions.
//
// This is the main entry point for applications using the stacks-go
// library. It wires the roles package to a node client:
//
//  1. MakeSTXTokenTransfer / MakeUnsignedSTXTokenTransfer - STX transfers
//  2. MakeContractCall / MakeUnsignedContractCall - Public function calls
//  3. SponsorTransaction - Sign as the fee-paying sponsor
//  4. EstimateFee - Node fee rate times encoded length
//  5. BroadcastTransaction - Finalize and submit
//  6. CallReadOnly - Evaluate a read-only function
//  7. GetNonce - Next nonce of an account
//
// Fee and nonce are taken from the options as given. Setting AutoFee or
// AutoNonce resolves them through the node instead, which requires a Client.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/roles"
	"github.com/suffix-labs/stacks-go/pkg/rpc"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// ErrNoClient is returned when a node lookup is requested without a Client.
var ErrNoClient = errors.New("node client required")

// Sender identifies the origin account of a transaction.
//
// A single-sig sender sets PrivateKey (signed builders) or PublicKey
// (unsigned builders). A multi-sig sender sets PublicKeys and Required, and
// for signed builders the SignerKeys of the co-signers signing now.
type Sender struct {
	PrivateKey *crypto.PrivateKey
	PublicKey  *crypto.PublicKey

	PublicKeys []*crypto.PublicKey  // Multi-sig keys in signer order
	SignerKeys []*crypto.PrivateKey // Multi-sig co-signers
	Required   uint16               // Multi-sig threshold
}

// TransferOptions describes an STX token transfer.
type TransferOptions struct {
	Network transaction.Network // Defaults to mainnet
	Client  *rpc.Client         // Needed for AutoFee / AutoNonce
	Sender  Sender

	Recipient string // "ADDRESS" or "ADDRESS.CONTRACT"
	Amount    uint64 // micro-STX
	Memo      string // Up to 34 bytes

	Fee       uint64
	Nonce     uint64
	AutoFee   bool // Fee = encoded length * node fee rate
	AutoNonce bool // Nonce = next nonce of the sender

	AnchorMode        transaction.AnchorMode        // Defaults to AnchorModeAny
	PostConditionMode transaction.PostConditionMode // Defaults to deny
	PostConditions    transaction.PostConditions
	Sponsored         bool // Leave the sponsor slot for SponsorTransaction
}

// ContractCallOptions describes a call of a public contract function.
type ContractCallOptions struct {
	Network transaction.Network // Defaults to mainnet
	Client  *rpc.Client         // Needed for AutoFee / AutoNonce
	Sender  Sender

	ContractAddress string
	ContractName    string
	FunctionName    string
	FunctionArgs    []clarity.Value

	Fee       uint64
	Nonce     uint64
	AutoFee   bool
	AutoNonce bool

	AnchorMode        transaction.AnchorMode
	PostConditionMode transaction.PostConditionMode
	PostConditions    transaction.PostConditions
	Sponsored         bool
}

// SponsorOptions describes the sponsor of a transaction.
type SponsorOptions struct {
	Client      *rpc.Client // Needed for AutoFee / AutoNonce
	Transaction *transaction.Transaction
	PrivateKey  *crypto.PrivateKey
	HashMode    crypto.HashMode // P2PKH or P2WPKH; the zero value is P2PKH

	Fee       uint64
	Nonce     uint64
	AutoFee   bool
	AutoNonce bool
}

// txOptions is the part of TransferOptions and ContractCallOptions the
// builders share.
type txOptions struct {
	Network           transaction.Network
	Client            *rpc.Client
	Sender            Sender
	Fee               uint64
	Nonce             uint64
	AutoFee           bool
	AutoNonce         bool
	AnchorMode        transaction.AnchorMode
	PostConditionMode transaction.PostConditionMode
	PostConditions    transaction.PostConditions
	Sponsored         bool
}

func defaultOptions() txOptions {
	return txOptions{
		Network:           transaction.Mainnet(),
		AnchorMode:        transaction.AnchorModeAny,
		PostConditionMode: transaction.PostConditionModeDeny,
	}
}

// mergeOptions copies the non-zero fields of opts over the defaults.
func mergeOptions(opts any) (txOptions, error) {
	merged := defaultOptions()
	if err := copier.CopyWithOption(&merged, opts, copier.Option{IgnoreEmpty: true}); err != nil {
		return txOptions{}, fmt.Errorf("failed to merge options: %w", err)
	}
	return merged, nil
}

// ============================================================================
// API Function 1: MakeUnsignedSTXTokenTransfer / MakeSTXTokenTransfer
// ============================================================================

// MakeUnsignedSTXTokenTransfer creates an STX transfer with no signatures.
//
// The origin is taken from Sender.PublicKey (or Sender.PrivateKey) for
// single-sig, or Sender.PublicKeys and Sender.Required for multi-sig.
//
// Parameters:
//   - ctx: Bounds node lookups when AutoFee or AutoNonce is set
//   - opts: Transfer description
//
// Returns:
//   - The unsigned transaction
//   - Error if the options are invalid or a node lookup fails
func MakeUnsignedSTXTokenTransfer(ctx context.Context, opts TransferOptions) (*transaction.Transaction, error) {
	o, err := mergeOptions(&opts)
	if err != nil {
		return nil, err
	}

	payload, err := transaction.NewTokenTransferPayload(opts.Recipient, opts.Amount, opts.Memo)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer: %w", err)
	}
	return makeUnsigned(ctx, o, payload)
}

// MakeSTXTokenTransfer creates an STX transfer signed by the sender.
//
// Single-sig senders sign with Sender.PrivateKey. Multi-sig senders sign
// with Sender.SignerKeys; the remaining keys are appended as public keys.
// A sponsored transfer still needs SponsorTransaction before broadcast.
func MakeSTXTokenTransfer(ctx context.Context, opts TransferOptions) (*transaction.Transaction, error) {
	tx, err := MakeUnsignedSTXTokenTransfer(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := signOrigin(tx, opts.Sender); err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return tx, nil
}

// ============================================================================
// API Function 2: MakeUnsignedContractCall / MakeContractCall
// ============================================================================

// MakeUnsignedContractCall creates a contract call with no signatures.
func MakeUnsignedContractCall(ctx context.Context, opts ContractCallOptions) (*transaction.Transaction, error) {
	o, err := mergeOptions(&opts)
	if err != nil {
		return nil, err
	}

	payload, err := transaction.NewContractCallPayload(opts.ContractAddress, opts.ContractName, opts.FunctionName, opts.FunctionArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid contract call: %w", err)
	}
	return makeUnsigned(ctx, o, payload)
}

// MakeContractCall creates a contract call signed by the sender.
func MakeContractCall(ctx context.Context, opts ContractCallOptions) (*transaction.Transaction, error) {
	tx, err := MakeUnsignedContractCall(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := signOrigin(tx, opts.Sender); err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return tx, nil
}

// ============================================================================
// API Function 3: SponsorTransaction
// ============================================================================

// SponsorTransaction signs a sponsored transaction as its sponsor.
//
// The transaction must already carry the origin signatures. With AutoNonce
// the sponsor's nonce is looked up from its address; with AutoFee the fee
// is priced on the sponsored encoding.
//
// Returns a signed copy; opts.Transaction is left untouched.
func SponsorTransaction(ctx context.Context, opts SponsorOptions) (*transaction.Transaction, error) {
	if opts.Transaction == nil || opts.PrivateKey == nil {
		return nil, errors.New("transaction and sponsor key are required")
	}
	tx := opts.Transaction.Clone()
	network := networkOf(tx)

	fee, nonce := opts.Fee, opts.Nonce
	if opts.AutoNonce {
		if opts.Client == nil {
			return nil, ErrNoClient
		}
		addr, err := crypto.C32Address(network.AddressVersion(opts.HashMode), keyHash(opts.PrivateKey.PublicKey(), opts.HashMode))
		if err != nil {
			return nil, err
		}
		if nonce, err = opts.Client.Nonce(ctx, addr); err != nil {
			return nil, fmt.Errorf("failed to fetch sponsor nonce: %w", err)
		}
	}

	if opts.AutoFee {
		if opts.Client == nil {
			return nil, ErrNoClient
		}
		// The placeholder sponsor encodes to the same length as the signed one.
		n, err := tx.ByteLength()
		if err != nil {
			return nil, err
		}
		if fee, err = opts.Client.EstimateFee(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to estimate fee: %w", err)
		}
	}

	err := roles.Sponsor(roles.SponsorOptions{
		Transaction: tx,
		PrivateKey:  opts.PrivateKey,
		Fee:         fee,
		Nonce:       nonce,
		HashMode:    opts.HashMode,
	})
	if err != nil {
		return nil, fmt.Errorf("sponsoring failed: %w", err)
	}
	return tx, nil
}

// ============================================================================
// API Function 4: EstimateFee
// ============================================================================

// EstimateFee prices tx at the node's fee rate: encoded length times
// micro-STX per byte.
func EstimateFee(ctx context.Context, client *rpc.Client, tx *transaction.Transaction) (uint64, error) {
	if client == nil {
		return 0, ErrNoClient
	}
	n, err := tx.ByteLength()
	if err != nil {
		return 0, err
	}
	return client.EstimateFee(ctx, n)
}

// ============================================================================
// API Function 5: BroadcastTransaction
// ============================================================================

// BroadcastTransaction finalizes tx and submits it to the node.
//
// Returns:
//   - The transaction id reported by the node
//   - Error if tx is incomplete, fails verification, or is rejected
func BroadcastTransaction(ctx context.Context, client *rpc.Client, tx *transaction.Transaction) (string, error) {
	if client == nil {
		return "", ErrNoClient
	}
	raw, _, err := roles.NewTxExtractor(tx).Extract()
	if err != nil {
		return "", err
	}
	txid, err := client.Broadcast(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("broadcast failed: %w", err)
	}
	return txid, nil
}

// ============================================================================
// API Function 6: CallReadOnly
// ============================================================================

// CallReadOnly evaluates a read-only function. An empty sender defaults to
// the contract address.
func CallReadOnly(
	ctx context.Context,
	client *rpc.Client,
	contractAddress string,
	contractName string,
	functionName string,
	args []clarity.Value,
	sender string,
) (clarity.Value, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	return client.CallReadOnly(ctx, contractAddress, contractName, functionName, args, sender)
}

// CallReadOnlyInto evaluates a read-only function and stores the result in
// out with clarity.Unmarshal. A response result is unwrapped first: (ok v)
// stores v and (err v) is returned as an error.
//
// Parameters:
//   - out: pointer to the target, typically a struct with `clarity:"key"`
//     tags for a tuple result
//
// Returns:
//   - The raw result, also on an (err v) response
func CallReadOnlyInto(
	ctx context.Context,
	client *rpc.Client,
	contractAddress string,
	contractName string,
	functionName string,
	args []clarity.Value,
	sender string,
	out any,
) (clarity.Value, error) {
	v, err := CallReadOnly(ctx, client, contractAddress, contractName, functionName, args, sender)
	if err != nil {
		return nil, err
	}

	result := v
	switch r := v.(type) {
	case clarity.ResponseOk:
		result = r.Value
	case clarity.ResponseErr:
		return v, &clarity.CodecError{Code: clarity.ErrResponseErr, Message: fmt.Sprintf("%s returned %s", functionName, r)}
	}
	if err := clarity.Unmarshal(result, out); err != nil {
		return v, fmt.Errorf("failed to read %s result: %w", functionName, err)
	}
	return v, nil
}

// ============================================================================
// API Function 7: GetNonce
// ============================================================================

// GetNonce returns the next nonce of address.
func GetNonce(ctx context.Context, client *rpc.Client, address string) (uint64, error) {
	if client == nil {
		return 0, ErrNoClient
	}
	return client.Nonce(ctx, address)
}

// ============================================================================
// Helper functions
// ============================================================================

func makeUnsigned(ctx context.Context, o txOptions, payload transaction.Payload) (*transaction.Transaction, error) {
	origin, err := originCondition(o.Sender, o.Fee, o.Nonce)
	if err != nil {
		return nil, err
	}

	creator := roles.NewCreator(o.Network).
		WithAnchorMode(o.AnchorMode).
		WithPostConditionMode(o.PostConditionMode).
		WithPostConditions(o.PostConditions...)
	if o.Sponsored {
		creator.WithSponsorship()
	}
	tx := creator.Create(origin, payload)

	if o.AutoNonce {
		if o.Client == nil {
			return nil, ErrNoClient
		}
		addr, err := crypto.C32Address(o.Network.AddressVersion(origin.Mode()), origin.SignerHash())
		if err != nil {
			return nil, err
		}
		nonce, err := o.Client.Nonce(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch nonce: %w", err)
		}
		origin.SetNonce(nonce)
	}

	// A sponsored origin pays nothing; the sponsor's fee is set later.
	if o.AutoFee && !o.Sponsored {
		if o.Client == nil {
			return nil, ErrNoClient
		}
		n, err := tx.ByteLength()
		if err != nil {
			return nil, err
		}
		fee, err := o.Client.EstimateFee(ctx, n+multiSigFieldsLength(o.Sender))
		if err != nil {
			return nil, fmt.Errorf("failed to estimate fee: %w", err)
		}
		origin.SetFee(fee)
	}
	return tx, nil
}

func isMultiSig(s Sender) bool {
	return len(s.PublicKeys) > 0
}

func originCondition(s Sender, fee, nonce uint64) (transaction.SpendingCondition, error) {
	if isMultiSig(s) {
		return roles.MultiSigOrigin(s.PublicKeys, s.Required, fee, nonce)
	}

	pub := s.PublicKey
	if pub == nil && s.PrivateKey != nil {
		pub = s.PrivateKey.PublicKey()
	}
	if pub == nil {
		return nil, errors.New("sender has no key")
	}
	return roles.SingleSigOrigin(pub, fee, nonce)
}

// multiSigFieldsLength is the encoded size of the auth fields a multi-sig
// origin gains when signed: a signature per required signer and a
// compressed public key for the rest.
func multiSigFieldsLength(s Sender) int {
	if !isMultiSig(s) {
		return 0
	}
	required := int(s.Required)
	return required*(1+65) + (len(s.PublicKeys)-required)*(1+33)
}

func signOrigin(tx *transaction.Transaction, s Sender) error {
	c, err := roles.NewConstructor(tx)
	if err != nil {
		return err
	}
	if isMultiSig(s) {
		return c.SignMulti(s.PublicKeys, s.SignerKeys)
	}
	if s.PrivateKey == nil {
		return errors.New("sender has no private key")
	}
	return c.SignSingle(s.PrivateKey)
}

func keyHash(pub *crypto.PublicKey, mode crypto.HashMode) crypto.Hash160 {
	if mode == crypto.HashModeP2WPKH {
		return crypto.HashP2WPKH(pub.Bytes())
	}
	return crypto.HashP2PKH(pub.Bytes())
}

// networkOf recovers the network preset matching a decoded transaction.
func networkOf(tx *transaction.Transaction) transaction.Network {
	if tx.Version == transaction.TransactionVersionMainnet {
		return transaction.Mainnet()
	}
	return transaction.Testnet()
}
