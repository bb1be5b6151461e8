package roles

import (
	"fmt"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// TxExtractor produces the broadcastable form of a finalized transaction.
//
// This is the final role in the workflow. After extraction you have the raw
// bytes for POST /v2/transactions and the id the node will report back.
type TxExtractor struct {
	tx *transaction.Transaction
}

// NewTxExtractor creates a new Transaction Extractor.
func NewTxExtractor(tx *transaction.Transaction) *TxExtractor {
	return &TxExtractor{tx: tx}
}

// Extract runs the Finalizer and returns the wire bytes and transaction id.
func (e *TxExtractor) Extract() ([]byte, crypto.Sha256Hash, error) {
	if err := NewFinalizer(e.tx).Finalize(); err != nil {
		return nil, crypto.Sha256Hash{}, fmt.Errorf("transaction validation failed: %w", err)
	}

	raw, err := e.tx.Encode()
	if err != nil {
		return nil, crypto.Sha256Hash{}, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return raw, crypto.Sha512_256Sum(raw), nil
}
