package roles

import (
	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// SponsorOptions describes the sponsor of a transaction.
type SponsorOptions struct {
	Transaction *transaction.Transaction // Sponsored transaction signed by its origin
	PrivateKey  *crypto.PrivateKey       // Sponsor key
	Fee         uint64                   // Fee paid by the sponsor
	Nonce       uint64                   // Sponsor account nonce
	HashMode    crypto.HashMode          // Single-sig mode; the zero value is P2PKH
}

// Sponsor attaches a single-sig sponsor condition to a transaction the
// origin has already signed and signs it in place.
//
// The fee and nonce are set on the sponsor; the origin's own fee and nonce
// are untouched so its signatures stay valid. On error tx is left as it
// was.
func Sponsor(opts SponsorOptions) error {
	tx := opts.Transaction
	if !tx.Auth.IsSponsored() {
		return signingError(ErrNotSponsored, "transaction has standard authorization")
	}
	previous := tx.Auth.Sponsor

	sponsor, err := transaction.NewSingleSpendingCondition(opts.Fee, opts.Nonce, opts.PrivateKey.PublicKey(), opts.HashMode)
	if err != nil {
		return err
	}

	signer, err := NewSponsorSigner(tx, sponsor)
	if err != nil {
		return err
	}
	if err := signer.SignSponsor(opts.PrivateKey); err != nil {
		tx.Auth.Sponsor = previous
		return err
	}
	return nil
}
