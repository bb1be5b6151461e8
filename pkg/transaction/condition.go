package transaction

import (
	"fmt"
	"math"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// AuthFieldType is the leading byte of a multi-sig auth field.
type AuthFieldType uint8

const (
	AuthFieldPublicKeyCompressed   AuthFieldType = 0x00
	AuthFieldPublicKeyUncompressed AuthFieldType = 0x01
	AuthFieldSignatureCompressed   AuthFieldType = 0x02
	AuthFieldSignatureUncompressed AuthFieldType = 0x03
)

// AuthField is one entry of a multi-sig condition: either the public key of
// a co-signer who has not signed or a signature.
type AuthField struct {
	Type      AuthFieldType
	PublicKey *crypto.PublicKey       // set for public key fields
	Signature crypto.MessageSignature // set for signature fields
}

// PublicKeyField wraps a public key awaiting its signature.
func PublicKeyField(pub *crypto.PublicKey) AuthField {
	t := AuthFieldPublicKeyUncompressed
	if pub.Compressed() {
		t = AuthFieldPublicKeyCompressed
	}
	return AuthField{Type: t, PublicKey: pub}
}

// SignatureField wraps a signature made with a key of the given encoding.
func SignatureField(keyEncoding uint8, sig crypto.MessageSignature) AuthField {
	t := AuthFieldSignatureUncompressed
	if keyEncoding == crypto.PubKeyEncodingCompressed {
		t = AuthFieldSignatureCompressed
	}
	return AuthField{Type: t, Signature: sig}
}

// IsSignature reports whether the field holds a signature.
func (f AuthField) IsSignature() bool {
	return f.Type == AuthFieldSignatureCompressed || f.Type == AuthFieldSignatureUncompressed
}

// KeyEncoding returns the public key encoding marker of the field.
func (f AuthField) KeyEncoding() uint8 {
	if f.Type == AuthFieldPublicKeyCompressed || f.Type == AuthFieldSignatureCompressed {
		return crypto.PubKeyEncodingCompressed
	}
	return crypto.PubKeyEncodingUncompressed
}

// SpendingCondition authorizes the origin or the sponsor of a transaction.
// Implementations are *SingleSpendingCondition and *MultiSpendingCondition.
type SpendingCondition interface {
	Mode() crypto.HashMode
	SignerHash() crypto.Hash160
	Fee() uint64
	Nonce() uint64
	SetFee(fee uint64)
	SetNonce(nonce uint64)

	// IsFullySigned reports whether no further signature is needed.
	IsFullySigned() bool

	// Clear zeroes the fee and nonce and removes every signature.
	Clear()

	Clone() SpendingCondition

	// Verify walks the condition's signatures along the hash chain starting
	// at sigHash and returns the hash the next condition starts from.
	Verify(sigHash crypto.Sha256Hash, authType AuthType) (crypto.Sha256Hash, error)

	appendTo(dst []byte) ([]byte, error)
}

// SingleSpendingCondition is authorized by one signature.
type SingleSpendingCondition struct {
	HashMode    crypto.HashMode
	Signer      crypto.Hash160
	KeyEncoding uint8
	Signature   crypto.MessageSignature

	nonce uint64
	fee   uint64
}

// NewSingleSpendingCondition derives the signer from pub. mode must be
// P2PKH or P2WPKH; P2WPKH requires a compressed key.
func NewSingleSpendingCondition(fee, nonce uint64, pub *crypto.PublicKey, mode crypto.HashMode) (*SingleSpendingCondition, error) {
	encoding := crypto.PubKeyEncodingUncompressed
	if pub.Compressed() {
		encoding = crypto.PubKeyEncodingCompressed
	}

	var signer crypto.Hash160
	switch mode {
	case crypto.HashModeP2PKH:
		signer = crypto.HashP2PKH(pub.Bytes())
	case crypto.HashModeP2WPKH:
		if !pub.Compressed() {
			return nil, &CodecError{Code: ErrInvalidValue, Message: "P2WPKH requires a compressed public key"}
		}
		signer = crypto.HashP2WPKH(pub.Bytes())
	default:
		return nil, &CodecError{Code: ErrInvalidValue, Message: fmt.Sprintf("hash mode %s is not single-sig", mode)}
	}

	return &SingleSpendingCondition{
		HashMode:    mode,
		Signer:      signer,
		KeyEncoding: encoding,
		nonce:       nonce,
		fee:         fee,
	}, nil
}

// NewEmptySingleSpendingCondition returns the all-zero P2PKH condition that
// stands in for a sponsor who has not signed yet.
func NewEmptySingleSpendingCondition() *SingleSpendingCondition {
	return &SingleSpendingCondition{
		HashMode:    crypto.HashModeP2PKH,
		KeyEncoding: crypto.PubKeyEncodingCompressed,
	}
}

func (c *SingleSpendingCondition) Mode() crypto.HashMode      { return c.HashMode }
func (c *SingleSpendingCondition) SignerHash() crypto.Hash160 { return c.Signer }
func (c *SingleSpendingCondition) Fee() uint64                { return c.fee }
func (c *SingleSpendingCondition) Nonce() uint64              { return c.nonce }
func (c *SingleSpendingCondition) SetFee(fee uint64)          { c.fee = fee }
func (c *SingleSpendingCondition) SetNonce(nonce uint64)      { c.nonce = nonce }
func (c *SingleSpendingCondition) IsFullySigned() bool        { return !c.Signature.IsZero() }

// SetSignature installs the signature, replacing any previous one.
func (c *SingleSpendingCondition) SetSignature(keyEncoding uint8, sig crypto.MessageSignature) {
	c.KeyEncoding = keyEncoding
	c.Signature = sig
}

func (c *SingleSpendingCondition) Clear() {
	c.fee = 0
	c.nonce = 0
	c.Signature = crypto.MessageSignature{}
}

func (c *SingleSpendingCondition) Clone() SpendingCondition {
	out := *c
	return &out
}

func (c *SingleSpendingCondition) Verify(sigHash crypto.Sha256Hash, authType AuthType) (crypto.Sha256Hash, error) {
	pub, next, err := crypto.NextVerification(sigHash, uint8(authType), c.fee, c.nonce, c.KeyEncoding, c.Signature)
	if err != nil {
		return crypto.Sha256Hash{}, &VerifyError{
			Code:     ErrBadSignature,
			Expected: c.Signer.Hex(),
			Got:      "unrecoverable signature",
			Cause:    err,
		}
	}

	var got crypto.Hash160
	switch c.HashMode {
	case crypto.HashModeP2PKH:
		got = crypto.HashP2PKH(pub.Bytes())
	case crypto.HashModeP2WPKH:
		got = crypto.HashP2WPKH(pub.Bytes())
	default:
		return crypto.Sha256Hash{}, errEnum("single-sig hash mode", byte(c.HashMode))
	}

	if got != c.Signer {
		return crypto.Sha256Hash{}, BadSigner(c.Signer.Hex(), got.Hex())
	}
	return next, nil
}

func (c *SingleSpendingCondition) appendTo(dst []byte) ([]byte, error) {
	if !c.HashMode.IsSingleSig() {
		return nil, errEnum("single-sig hash mode", byte(c.HashMode))
	}
	dst = append(dst, byte(c.HashMode))
	dst = append(dst, c.Signer[:]...)
	dst = appendU64(dst, c.nonce)
	dst = appendU64(dst, c.fee)
	dst = append(dst, c.KeyEncoding)
	return append(dst, c.Signature[:]...), nil
}

// MultiSpendingCondition is authorized by Required of the keys hashed into
// Signer.
type MultiSpendingCondition struct {
	HashMode crypto.HashMode
	Signer   crypto.Hash160
	Fields   []AuthField
	Required uint16

	nonce uint64
	fee   uint64
}

// NewMultiSpendingCondition derives the signer from the ordered public
// keys. mode must be P2SH or P2WSH. The condition starts with no fields;
// signers and appended keys fill them in key order.
func NewMultiSpendingCondition(fee, nonce uint64, pubs []*crypto.PublicKey, required uint16, mode crypto.HashMode) (*MultiSpendingCondition, error) {
	if !mode.IsMultiSig() {
		return nil, &CodecError{Code: ErrInvalidValue, Message: fmt.Sprintf("hash mode %s is not multi-sig", mode)}
	}
	if required == 0 || int(required) > len(pubs) {
		return nil, &CodecError{
			Code:    ErrInvalidValue,
			Message: fmt.Sprintf("%d required signatures with %d keys", required, len(pubs)),
		}
	}
	if required > math.MaxUint8 || len(pubs) > math.MaxUint8 {
		return nil, &CodecError{Code: ErrLengthOverflow, Message: "multi-sig supports at most 255 keys"}
	}

	keys := make([][]byte, len(pubs))
	for i, pub := range pubs {
		if mode == crypto.HashModeP2WSH && !pub.Compressed() {
			return nil, &CodecError{Code: ErrInvalidValue, Message: "P2WSH requires compressed public keys"}
		}
		keys[i] = pub.Bytes()
	}

	signer, err := crypto.SignerHash(mode, uint8(required), keys)
	if err != nil {
		return nil, err
	}

	return &MultiSpendingCondition{
		HashMode: mode,
		Signer:   signer,
		Fields:   []AuthField{},
		Required: required,
		nonce:    nonce,
		fee:      fee,
	}, nil
}

func (c *MultiSpendingCondition) Mode() crypto.HashMode      { return c.HashMode }
func (c *MultiSpendingCondition) SignerHash() crypto.Hash160 { return c.Signer }
func (c *MultiSpendingCondition) Fee() uint64                { return c.fee }
func (c *MultiSpendingCondition) Nonce() uint64              { return c.nonce }
func (c *MultiSpendingCondition) SetFee(fee uint64)          { c.fee = fee }
func (c *MultiSpendingCondition) SetNonce(nonce uint64)      { c.nonce = nonce }

// SignatureCount returns the number of signature fields.
func (c *MultiSpendingCondition) SignatureCount() int {
	n := 0
	for _, f := range c.Fields {
		if f.IsSignature() {
			n++
		}
	}
	return n
}

func (c *MultiSpendingCondition) IsFullySigned() bool {
	return c.SignatureCount() >= int(c.Required)
}

// AppendSignature adds a signature field.
func (c *MultiSpendingCondition) AppendSignature(keyEncoding uint8, sig crypto.MessageSignature) {
	c.Fields = append(c.Fields, SignatureField(keyEncoding, sig))
}

// AppendPublicKey adds the key of a co-signer that does not sign.
func (c *MultiSpendingCondition) AppendPublicKey(pub *crypto.PublicKey) {
	c.Fields = append(c.Fields, PublicKeyField(pub))
}

func (c *MultiSpendingCondition) Clear() {
	c.fee = 0
	c.nonce = 0
	c.Fields = []AuthField{}
}

func (c *MultiSpendingCondition) Clone() SpendingCondition {
	out := *c
	out.Fields = append([]AuthField{}, c.Fields...)
	return &out
}

func (c *MultiSpendingCondition) Verify(sigHash crypto.Sha256Hash, authType AuthType) (crypto.Sha256Hash, error) {
	keys := make([][]byte, 0, len(c.Fields))
	next := sigHash
	count := 0

	for i, f := range c.Fields {
		if !f.IsSignature() {
			if f.PublicKey == nil {
				return crypto.Sha256Hash{}, &CodecError{Code: ErrInvalidValue, Message: fmt.Sprintf("auth field %d has no public key", i)}
			}
			keys = append(keys, f.PublicKey.WithCompression(f.KeyEncoding() == crypto.PubKeyEncodingCompressed).Bytes())
			continue
		}

		pub, postsign, err := crypto.NextVerification(next, uint8(authType), c.fee, c.nonce, f.KeyEncoding(), f.Signature)
		if err != nil {
			return crypto.Sha256Hash{}, &VerifyError{
				Code:     ErrBadSignature,
				Expected: c.Signer.Hex(),
				Got:      fmt.Sprintf("unrecoverable signature in field %d", i),
				Cause:    err,
			}
		}
		keys = append(keys, pub.Bytes())
		next = postsign
		count++
	}

	if count != int(c.Required) {
		return crypto.Sha256Hash{}, BadSignatureCount(int(c.Required), count)
	}
	if c.Required > math.MaxUint8 {
		return crypto.Sha256Hash{}, &CodecError{Code: ErrLengthOverflow, Message: "required signatures exceed 255"}
	}

	got, err := crypto.SignerHash(c.HashMode, uint8(c.Required), keys)
	if err != nil {
		return crypto.Sha256Hash{}, err
	}
	if got != c.Signer {
		return crypto.Sha256Hash{}, BadSigner(c.Signer.Hex(), got.Hex())
	}
	return next, nil
}

func (c *MultiSpendingCondition) appendTo(dst []byte) ([]byte, error) {
	if !c.HashMode.IsMultiSig() {
		return nil, errEnum("multi-sig hash mode", byte(c.HashMode))
	}
	if uint64(len(c.Fields)) > math.MaxUint32 {
		return nil, &CodecError{Code: ErrLengthOverflow, Message: "too many auth fields"}
	}

	dst = append(dst, byte(c.HashMode))
	dst = append(dst, c.Signer[:]...)
	dst = appendU64(dst, c.nonce)
	dst = appendU64(dst, c.fee)
	dst = appendU32(dst, uint32(len(c.Fields)))
	for i, f := range c.Fields {
		dst = append(dst, byte(f.Type))
		if f.IsSignature() {
			dst = append(dst, f.Signature[:]...)
			continue
		}
		if f.PublicKey == nil {
			return nil, &CodecError{Code: ErrInvalidValue, Message: fmt.Sprintf("auth field %d has no public key", i)}
		}
		key := f.PublicKey.SerializeCompressed()
		dst = append(dst, key[:]...)
	}
	return appendU16(dst, c.Required), nil
}

// EncodeSpendingCondition returns the wire form of c.
func EncodeSpendingCondition(c SpendingCondition) ([]byte, error) {
	return c.appendTo(nil)
}

// DecodeSpendingCondition reads one condition and returns it with the bytes
// consumed.
func DecodeSpendingCondition(b []byte) (SpendingCondition, int, error) {
	r := newReader(b)
	c, err := r.spendingCondition()
	if err != nil {
		return nil, 0, err
	}
	return c, r.pos, nil
}

func (r *reader) spendingCondition() (SpendingCondition, error) {
	b, err := r.readByte("hash mode")
	if err != nil {
		return nil, err
	}
	mode := crypto.HashMode(b)
	if !mode.Valid() {
		return nil, errEnum("hash mode", b)
	}

	signer, err := r.hash160("signer")
	if err != nil {
		return nil, err
	}
	nonce, err := r.u64("nonce")
	if err != nil {
		return nil, err
	}
	fee, err := r.u64("fee")
	if err != nil {
		return nil, err
	}

	if mode.IsSingleSig() {
		encoding, err := r.readByte("key encoding")
		if err != nil {
			return nil, err
		}
		if encoding != crypto.PubKeyEncodingCompressed && encoding != crypto.PubKeyEncodingUncompressed {
			return nil, errEnum("key encoding", encoding)
		}
		sig, err := r.signature("signature")
		if err != nil {
			return nil, err
		}
		return &SingleSpendingCondition{
			HashMode:    mode,
			Signer:      signer,
			KeyEncoding: encoding,
			Signature:   sig,
			nonce:       nonce,
			fee:         fee,
		}, nil
	}

	n, err := r.u32("auth field count")
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.remaining()) {
		return nil, errEOF("auth fields")
	}
	fields := make([]AuthField, 0, n)
	for i := uint32(0); i < n; i++ {
		t, err := r.readByte("auth field type")
		if err != nil {
			return nil, err
		}
		switch AuthFieldType(t) {
		case AuthFieldPublicKeyCompressed, AuthFieldPublicKeyUncompressed:
			raw, err := r.take(33, "auth field public key")
			if err != nil {
				return nil, err
			}
			pub, err := crypto.ParsePublicKey(raw)
			if err != nil {
				return nil, &CodecError{Code: ErrInvalidValue, Message: "auth field public key", Cause: err}
			}
			fields = append(fields, AuthField{
				Type:      AuthFieldType(t),
				PublicKey: pub.WithCompression(AuthFieldType(t) == AuthFieldPublicKeyCompressed),
			})
		case AuthFieldSignatureCompressed, AuthFieldSignatureUncompressed:
			sig, err := r.signature("auth field signature")
			if err != nil {
				return nil, err
			}
			fields = append(fields, AuthField{Type: AuthFieldType(t), Signature: sig})
		default:
			return nil, errEnum("auth field type", t)
		}
	}

	required, err := r.u16("required signatures")
	if err != nil {
		return nil, err
	}

	return &MultiSpendingCondition{
		HashMode: mode,
		Signer:   signer,
		Fields:   fields,
		Required: required,
		nonce:    nonce,
		fee:      fee,
	}, nil
}
