package roles

import (
	"fmt"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
	"github.com/suffix-labs/stacks-go/pkg/transaction"
)

// Signer walks the signature hash chain of one transaction.
//
// The Signer role:
//   - Starts from the initial sighash (authorization reset)
//   - Signs the origin, then the sponsor, each step folding fee, nonce and
//     signature into the rolling hash
//   - Appends public keys of multi-sig co-signers that do not sign
//
// A Signer holds the only mutable reference to its transaction for its
// lifetime. Signing is sequential by construction: every presign hash
// depends on the previous postsign hash.
type Signer struct {
	tx            *transaction.Transaction
	sigHash       crypto.Sha256Hash
	originDone    bool // origin chain is closed; only the sponsor may sign
	checkOversign bool
	checkOverlap  bool
}

// NewSigner creates a Signer positioned at the initial sighash of tx.
func NewSigner(tx *transaction.Transaction) (*Signer, error) {
	sigHash, err := tx.InitialSighash()
	if err != nil {
		return nil, fmt.Errorf("failed to compute initial sighash: %w", err)
	}
	return &Signer{
		tx:            tx,
		sigHash:       sigHash,
		checkOversign: true,
		checkOverlap:  true,
	}, nil
}

// NewSponsorSigner creates a Signer for the second party of a sponsored
// transaction already signed by its origin.
//
// It re-derives the sighash by verifying the origin chain from scratch and
// then installs sponsor as the sponsor condition; tx is untouched when the
// origin does not verify. The origin is closed
// afterwards, so only SignSponsor and AppendSponsor are allowed.
//
// Returns an error if:
//   - The transaction is not sponsored
//   - The origin signatures do not verify
func NewSponsorSigner(tx *transaction.Transaction, sponsor transaction.SpendingCondition) (*Signer, error) {
	if !tx.Auth.IsSponsored() {
		return nil, signingError(ErrNotSponsored, "transaction has standard authorization")
	}
	sigHash, err := tx.VerifyOrigin()
	if err != nil {
		return nil, fmt.Errorf("origin does not verify: %w", err)
	}
	if err := tx.SetSponsor(sponsor); err != nil {
		return nil, err
	}

	return &Signer{
		tx:            tx,
		sigHash:       sigHash,
		originDone:    true,
		checkOversign: true,
		checkOverlap:  true,
	}, nil
}

// SetCheckOversign toggles the guard against signing a condition that
// already has its required signatures. It is on by default.
func (s *Signer) SetCheckOversign(enabled bool) {
	s.checkOversign = enabled
}

// SetCheckOverlap toggles the ordering guard between the origin and the
// sponsor chains. It is on by default.
func (s *Signer) SetCheckOverlap(enabled bool) {
	s.checkOverlap = enabled
}

// SigHash returns the current position of the hash chain.
func (s *Signer) SigHash() crypto.Sha256Hash {
	return s.sigHash
}

// SignOrigin signs the next step of the origin condition.
//
// Single-sig conditions take the signature in place; multi-sig conditions
// get a new signature field.
func (s *Signer) SignOrigin(key *crypto.PrivateKey) error {
	if s.checkOverlap && s.originDone {
		return signingError(ErrOriginPostSponsorSign, "origin cannot sign after the sponsor")
	}

	origin := s.tx.Auth.Origin
	if s.checkOversign && origin.IsFullySigned() {
		return signingError(ErrOriginOversign, "origin already has its required signatures")
	}

	return s.signNext(origin, transaction.AuthTypeStandard, key)
}

// SignSponsor signs the next step of the sponsor condition. The origin is
// closed afterwards.
func (s *Signer) SignSponsor(key *crypto.PrivateKey) error {
	sponsor := s.tx.Auth.Sponsor
	if sponsor == nil {
		return signingError(ErrNotSponsored, "transaction has standard authorization")
	}
	if s.checkOverlap && !s.originDone && !s.tx.Auth.Origin.IsFullySigned() {
		return signingError(ErrSponsorPreOriginSign, "sponsor cannot sign before the origin is complete")
	}
	if s.checkOversign && sponsor.IsFullySigned() {
		return signingError(ErrSponsorOversign, "sponsor already has its required signatures")
	}

	if err := s.signNext(sponsor, transaction.AuthTypeSponsored, key); err != nil {
		return err
	}
	s.originDone = true
	return nil
}

// AppendOrigin adds the public key of an origin co-signer that does not
// sign. The origin must be multi-sig.
func (s *Signer) AppendOrigin(pub *crypto.PublicKey) error {
	if s.checkOverlap && s.originDone {
		return signingError(ErrOriginPostSponsorAppend, "origin cannot change after the sponsor")
	}
	return appendPublicKey(s.tx.Auth.Origin, pub)
}

// AppendSponsor adds the public key of a sponsor co-signer that does not
// sign. The sponsor must be multi-sig.
func (s *Signer) AppendSponsor(pub *crypto.PublicKey) error {
	if s.tx.Auth.Sponsor == nil {
		return signingError(ErrNotSponsored, "transaction has standard authorization")
	}
	return appendPublicKey(s.tx.Auth.Sponsor, pub)
}

// Transaction returns the transaction being signed.
func (s *Signer) Transaction() *transaction.Transaction {
	return s.tx
}

// signNext signs presign(sigHash, authType, fee, nonce), installs the
// signature into cond and advances the chain to the postsign hash.
func (s *Signer) signNext(cond transaction.SpendingCondition, authType transaction.AuthType, key *crypto.PrivateKey) error {
	sig, next, err := crypto.NextSignature(s.sigHash, uint8(authType), cond.Fee(), cond.Nonce(), key)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	encoding := crypto.PubKeyEncodingUncompressed
	if key.Compressed() {
		encoding = crypto.PubKeyEncodingCompressed
	}

	switch c := cond.(type) {
	case *transaction.SingleSpendingCondition:
		c.SetSignature(encoding, sig)
	case *transaction.MultiSpendingCondition:
		c.AppendSignature(encoding, sig)
	default:
		return fmt.Errorf("unsupported spending condition %T", cond)
	}

	s.sigHash = next
	return nil
}

func appendPublicKey(cond transaction.SpendingCondition, pub *crypto.PublicKey) error {
	multi, ok := cond.(*transaction.MultiSpendingCondition)
	if !ok {
		return signingError(ErrAppendPublicKeyBadCondition, "cannot append a public key to a %s condition", cond.Mode())
	}
	multi.AppendPublicKey(pub)
	return nil
}
