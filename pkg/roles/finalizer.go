package roles

import (
	"fmt"

	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// Finalizer checks that a transaction is ready for broadcast.
//
// The Finalizer role:
//   - Confirms the origin (and sponsor, if any) carry their required signatures
//   - Verifies the whole signature hash chain
//
// After this role succeeds the transaction must not be mutated; any change
// to a signed field invalidates every later signature.
type Finalizer struct {
	tx *transaction.Transaction
}

// NewFinalizer creates a new Finalizer.
func NewFinalizer(tx *transaction.Transaction) *Finalizer {
	return &Finalizer{tx: tx}
}

// Finalize returns an error if the transaction is incomplete or does not
// verify.
func (f *Finalizer) Finalize() error {
	if !f.tx.Auth.Origin.IsFullySigned() {
		return signingError(ErrIncomplete, "origin is missing signatures")
	}
	if f.tx.Auth.Sponsor != nil && !f.tx.Auth.Sponsor.IsFullySigned() {
		return signingError(ErrIncomplete, "sponsor is missing signatures")
	}

	if err := f.tx.Verify(); err != nil {
		return fmt.Errorf("transaction does not verify: %w", err)
	}
	return nil
}
