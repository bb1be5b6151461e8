// Package roles implements the Stacks transaction signing workflow as a
// sequence of roles.
//
// Roles separate transaction construction into distinct responsibilities:
//   - Creator: Builds the unsigned transaction (payload, origin, sponsorship)
//   - Constructor: Fills in the origin signatures
//   - Signer: Walks the signature hash chain for origin and sponsor
//   - Sponsor: Attaches and signs the fee-paying sponsor condition
//   - Finalizer: Checks every condition is complete and the chain verifies
//   - Transaction Extractor: Produces the wire bytes and transaction id
//
// Each role can be executed by different parties or at different times.
// The origin and the sponsor are typically different parties: the origin
// hands its signed transaction to the sponsor, who signs on top of it.
package roles

import (
	"github.com/suffix-labs/stacks-go/pkg/clarity"
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// Creator builds unsigned transactions.
//
// The Creator role sets up the transaction-wide fields every signer commits
// to (network, anchor mode, post-conditions). It doesn't sign anything;
// signatures are added by the Constructor or Signer roles.
type Creator struct {
	network           transaction.Network
	anchorMode        transaction.AnchorMode
	postConditionMode transaction.PostConditionMode
	postConditions    transaction.PostConditions
	sponsored         bool
}

// NewCreator creates a Creator for network with AnchorModeAny, deny mode
// and no post-conditions.
func NewCreator(network transaction.Network) *Creator {
	return &Creator{
		network:           network,
		anchorMode:        transaction.AnchorModeAny,
		postConditionMode: transaction.PostConditionModeDeny,
		postConditions:    transaction.PostConditions{},
	}
}

// WithAnchorMode sets the anchor mode.
func (c *Creator) WithAnchorMode(mode transaction.AnchorMode) *Creator {
	c.anchorMode = mode
	return c
}

// WithPostConditionMode sets the post-condition mode.
func (c *Creator) WithPostConditionMode(mode transaction.PostConditionMode) *Creator {
	c.postConditionMode = mode
	return c
}

// WithPostConditions appends post-conditions.
func (c *Creator) WithPostConditions(pcs ...transaction.PostCondition) *Creator {
	c.postConditions = append(c.postConditions, pcs...)
	return c
}

// WithSponsorship makes created transactions sponsored. The sponsor slot
// holds the empty placeholder until the Sponsor role fills it in.
func (c *Creator) WithSponsorship() *Creator {
	c.sponsored = true
	return c
}

// Create wraps payload and the origin condition into a transaction.
func (c *Creator) Create(origin transaction.SpendingCondition, payload transaction.Payload) *transaction.Transaction {
	auth := transaction.NewStandardAuthorization(origin)
	if c.sponsored {
		auth = transaction.NewSponsoredAuthorization(origin, nil)
	}

	tx := transaction.New(c.network, auth, payload)
	tx.AnchorMode = c.anchorMode
	tx.PostConditionMode = c.postConditionMode
	tx.PostConditions = append(transaction.PostConditions{}, c.postConditions...)
	return tx
}

// TokenTransfer creates an unsigned STX transfer.
//
// Parameters:
//   - origin: Spending condition of the sender (see SingleSigOrigin, MultiSigOrigin)
//   - recipient: "ADDRESS" or "ADDRESS.CONTRACT"
//   - amount: Amount in micro-STX
//   - memo: Up to 34 bytes of UTF-8
func (c *Creator) TokenTransfer(origin transaction.SpendingCondition, recipient string, amount uint64, memo string) (*transaction.Transaction, error) {
	payload, err := transaction.NewTokenTransferPayload(recipient, amount, memo)
	if err != nil {
		return nil, err
	}
	return c.Create(origin, payload), nil
}

// ContractCall creates an unsigned call of a public contract function.
func (c *Creator) ContractCall(
	origin transaction.SpendingCondition,
	contractAddress string,
	contractName string,
	functionName string,
	args []clarity.Value,
) (*transaction.Transaction, error) {
	payload, err := transaction.NewContractCallPayload(contractAddress, contractName, functionName, args)
	if err != nil {
		return nil, err
	}
	return c.Create(origin, payload), nil
}

// SingleSigOrigin returns a P2PKH origin condition for pub.
func SingleSigOrigin(pub *crypto.PublicKey, fee, nonce uint64) (*transaction.SingleSpendingCondition, error) {
	return transaction.NewSingleSpendingCondition(fee, nonce, pub, crypto.HashModeP2PKH)
}

// MultiSigOrigin returns a P2SH origin condition over the ordered keys.
func MultiSigOrigin(pubs []*crypto.PublicKey, required uint16, fee, nonce uint64) (*transaction.MultiSpendingCondition, error) {
	return transaction.NewMultiSpendingCondition(fee, nonce, pubs, required, crypto.HashModeP2SH)
}
