package roles

import (
	"fmt"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// Constructor fills in the origin signatures of a created transaction.
//
// The Constructor role:
//   - Signs a single-sig origin with its private key
//   - Walks the keys of a multi-sig origin in order, signing with the
//     private keys it holds and appending the public keys of the rest
//
// For sponsored transactions the Constructor only handles the origin; the
// result is handed to the Sponsor role.
type Constructor struct {
	tx     *transaction.Transaction
	signer *Signer
}

// NewConstructor creates a Constructor for a freshly created transaction.
func NewConstructor(tx *transaction.Transaction) (*Constructor, error) {
	signer, err := NewSigner(tx)
	if err != nil {
		return nil, err
	}
	return &Constructor{tx: tx, signer: signer}, nil
}

// SignSingle signs a single-sig origin.
func (c *Constructor) SignSingle(key *crypto.PrivateKey) error {
	if _, ok := c.tx.Auth.Origin.(*transaction.SingleSpendingCondition); !ok {
		return fmt.Errorf("origin is %s, not single-sig", c.tx.Auth.Origin.Mode())
	}
	return c.signer.SignOrigin(key)
}

// SignMulti completes a multi-sig origin.
//
// Parameters:
//   - pubs: All public keys of the origin, in the order hashed into its signer
//   - keys: Private keys of the co-signers signing now
//
// Auth fields follow the order of pubs: a key with a matching private key
// gets a signature field, every other key a public key field. This keeps the
// recovered key order equal to the signer's key order whichever subset signs.
//
// Returns an error if a private key matches none of pubs.
func (c *Constructor) SignMulti(pubs []*crypto.PublicKey, keys []*crypto.PrivateKey) error {
	if _, ok := c.tx.Auth.Origin.(*transaction.MultiSpendingCondition); !ok {
		return signingError(ErrAppendPublicKeyBadCondition, "origin is %s, not multi-sig", c.tx.Auth.Origin.Mode())
	}

	used := make([]bool, len(keys))
	for _, pub := range pubs {
		idx := -1
		for i, key := range keys {
			if !used[i] && key.PublicKey().Equal(pub) {
				idx = i
				break
			}
		}

		if idx < 0 {
			if err := c.signer.AppendOrigin(pub); err != nil {
				return err
			}
			continue
		}

		used[idx] = true
		if err := c.signer.SignOrigin(keys[idx]); err != nil {
			return err
		}
	}

	for i, ok := range used {
		if !ok {
			return signingError(ErrUnknownSigningKey, "private key %d matches none of the %d public keys", i, len(pubs))
		}
	}
	return nil
}

// Signer exposes the underlying Signer for callers that drive the chain
// step by step.
func (c *Constructor) Signer() *Signer {
	return c.signer
}

// Finish returns the transaction with its origin signatures.
func (c *Constructor) Finish() *transaction.Transaction {
	return c.tx
}
