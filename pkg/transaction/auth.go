package transaction

import (
	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// AuthType is the authorization tag byte. It is also the auth flag folded
// into each presign hash.
type AuthType uint8

const (
	AuthTypeStandard  AuthType = 0x04
	AuthTypeSponsored AuthType = 0x05
)

// Authorization holds the origin condition and, for sponsored
// transactions, the sponsor condition that pays the fee.
type Authorization struct {
	Origin  SpendingCondition
	Sponsor SpendingCondition // nil for standard authorization
}

// NewStandardAuthorization returns an authorization paid by origin.
func NewStandardAuthorization(origin SpendingCondition) Authorization {
	return Authorization{Origin: origin}
}

// NewSponsoredAuthorization returns an authorization whose fee is paid by
// sponsor. A nil sponsor installs the empty placeholder condition.
func NewSponsoredAuthorization(origin, sponsor SpendingCondition) Authorization {
	if sponsor == nil {
		sponsor = NewEmptySingleSpendingCondition()
	}
	return Authorization{Origin: origin, Sponsor: sponsor}
}

// Type returns AuthTypeSponsored when a sponsor condition is present.
func (a *Authorization) Type() AuthType {
	if a.Sponsor != nil {
		return AuthTypeSponsored
	}
	return AuthTypeStandard
}

func (a *Authorization) IsSponsored() bool {
	return a.Sponsor != nil
}

// payer is the condition that carries the transaction fee and nonce.
func (a *Authorization) payer() SpendingCondition {
	if a.Sponsor != nil {
		return a.Sponsor
	}
	return a.Origin
}

// SetFee sets the fee on the paying condition: the sponsor when sponsored,
// otherwise the origin.
func (a *Authorization) SetFee(fee uint64) {
	a.payer().SetFee(fee)
}

// SetNonce sets the nonce on the paying condition.
func (a *Authorization) SetNonce(nonce uint64) {
	a.payer().SetNonce(nonce)
}

// Fee returns the fee of the paying condition.
func (a *Authorization) Fee() uint64 {
	return a.payer().Fee()
}

// SetSponsor replaces the sponsor condition.
func (a *Authorization) SetSponsor(sponsor SpendingCondition) error {
	if a.Sponsor == nil {
		return &ModificationError{Code: ErrNotSponsored, Message: "cannot set the sponsor of a standard authorization"}
	}
	a.Sponsor = sponsor
	return nil
}

// Clone returns a deep copy.
func (a *Authorization) Clone() Authorization {
	out := Authorization{Origin: a.Origin.Clone()}
	if a.Sponsor != nil {
		out.Sponsor = a.Sponsor.Clone()
	}
	return out
}

// IntoInitial returns the form signed over by the first signer: the origin
// cleared and, when sponsored, the sponsor replaced by the empty
// placeholder.
func (a *Authorization) IntoInitial() Authorization {
	out := Authorization{Origin: a.Origin.Clone()}
	out.Origin.Clear()
	if a.Sponsor != nil {
		out.Sponsor = NewEmptySingleSpendingCondition()
	}
	return out
}

// VerifyOrigin checks the origin signatures starting from initial and
// returns the hash the sponsor starts from.
func (a *Authorization) VerifyOrigin(initial crypto.Sha256Hash) (crypto.Sha256Hash, error) {
	return a.Origin.Verify(initial, AuthTypeStandard)
}

// Verify checks the origin and then, when sponsored, the sponsor on top of
// the origin's chain.
func (a *Authorization) Verify(initial crypto.Sha256Hash) error {
	next, err := a.VerifyOrigin(initial)
	if err != nil {
		return err
	}
	if a.Sponsor != nil {
		if _, err := a.Sponsor.Verify(next, AuthTypeSponsored); err != nil {
			return err
		}
	}
	return nil
}

func (a *Authorization) appendTo(dst []byte) ([]byte, error) {
	dst = append(dst, byte(a.Type()))
	dst, err := a.Origin.appendTo(dst)
	if err != nil {
		return nil, err
	}
	if a.Sponsor != nil {
		return a.Sponsor.appendTo(dst)
	}
	return dst, nil
}

// Encode returns the wire form of the authorization.
func (a *Authorization) Encode() ([]byte, error) {
	return a.appendTo(nil)
}

// DecodeAuthorization reads an authorization and returns it with the bytes
// consumed.
func DecodeAuthorization(b []byte) (Authorization, int, error) {
	r := newReader(b)
	a, err := r.authorization()
	if err != nil {
		return Authorization{}, 0, err
	}
	return a, r.pos, nil
}

func (r *reader) authorization() (Authorization, error) {
	t, err := r.readByte("auth type")
	if err != nil {
		return Authorization{}, err
	}
	if AuthType(t) != AuthTypeStandard && AuthType(t) != AuthTypeSponsored {
		return Authorization{}, errEnum("auth type", t)
	}

	origin, err := r.spendingCondition()
	if err != nil {
		return Authorization{}, err
	}
	if AuthType(t) == AuthTypeStandard {
		return Authorization{Origin: origin}, nil
	}

	sponsor, err := r.spendingCondition()
	if err != nil {
		return Authorization{}, err
	}
	return Authorization{Origin: origin, Sponsor: sponsor}, nil
}
