// Package transaction implements the Stacks transaction wire format:
// payloads, post-conditions, spending conditions, authorization and the
// transaction envelope.
//
// Wire layout:
//
//	version (1) | chain id (4) | authorization | anchor mode (1) |
//	post-condition mode (1) | post-conditions | payload
//
// All integers are big-endian. The transaction id is the SHA-512/256 of the
// encoded bytes and is recomputed on every call since signing, fee and nonce
// changes all alter it.
package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// AnchorMode says whether the transaction may be mined in a microblock.
type AnchorMode uint8

const (
	AnchorModeOnChain  AnchorMode = 0x01
	AnchorModeOffChain AnchorMode = 0x02
	AnchorModeAny      AnchorMode = 0x03
)

func (m AnchorMode) valid() bool {
	return m >= AnchorModeOnChain && m <= AnchorModeAny
}

// Transaction is a Stacks transaction. A signer mutates it in place until
// it is handed off for broadcast.
type Transaction struct {
	Version           TransactionVersion
	ChainID           uint32
	Auth              Authorization
	AnchorMode        AnchorMode
	PostConditionMode PostConditionMode
	PostConditions    PostConditions
	Payload           Payload
}

// New returns a transaction for network with AnchorModeAny, deny mode and
// no post-conditions.
func New(network Network, auth Authorization, payload Payload) *Transaction {
	return &Transaction{
		Version:           network.Version,
		ChainID:           network.ChainID,
		Auth:              auth,
		AnchorMode:        AnchorModeAny,
		PostConditionMode: PostConditionModeDeny,
		PostConditions:    PostConditions{},
		Payload:           payload,
	}
}

// Encode returns the wire bytes.
func (tx *Transaction) Encode() ([]byte, error) {
	if tx.Auth.Origin == nil {
		return nil, &CodecError{Code: ErrInvalidValue, Message: "transaction has no origin condition"}
	}
	if tx.Payload == nil {
		return nil, &CodecError{Code: ErrInvalidValue, Message: "transaction has no payload"}
	}
	if !tx.AnchorMode.valid() {
		return nil, errEnum("anchor mode", byte(tx.AnchorMode))
	}
	if tx.PostConditionMode != PostConditionModeAllow && tx.PostConditionMode != PostConditionModeDeny {
		return nil, errEnum("post-condition mode", byte(tx.PostConditionMode))
	}

	dst := make([]byte, 0, 256)
	dst = append(dst, byte(tx.Version))
	dst = appendU32(dst, tx.ChainID)

	dst, err := tx.Auth.appendTo(dst)
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}

	dst = append(dst, byte(tx.AnchorMode), byte(tx.PostConditionMode))

	if dst, err = tx.PostConditions.appendTo(dst); err != nil {
		return nil, err
	}
	if dst, err = tx.Payload.appendTo(dst); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return dst, nil
}

// Hex returns the wire bytes as lowercase hex.
func (tx *Transaction) Hex() (string, error) {
	b, err := tx.Encode()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ByteLength returns the encoded size, used for fee estimation.
func (tx *Transaction) ByteLength() (int, error) {
	b, err := tx.Encode()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// TxID returns the transaction id of the current contents.
func (tx *Transaction) TxID() (crypto.Sha256Hash, error) {
	b, err := tx.Encode()
	if err != nil {
		return crypto.Sha256Hash{}, err
	}
	return crypto.Sha512_256Sum(b), nil
}

// Clone returns a deep copy of the authorization and post-condition list.
// Payload and post-condition values are shared; they are not mutated by
// signing.
func (tx *Transaction) Clone() *Transaction {
	out := *tx
	out.Auth = tx.Auth.Clone()
	out.PostConditions = append(PostConditions{}, tx.PostConditions...)
	return &out
}

// InitialSighash returns the hash the first signer starts from: the id of
// the transaction with its authorization reset.
func (tx *Transaction) InitialSighash() (crypto.Sha256Hash, error) {
	initial := *tx
	initial.Auth = tx.Auth.IntoInitial()
	return initial.TxID()
}

// VerifyOrigin verifies the origin chain and returns the hash the sponsor
// signs on top of.
func (tx *Transaction) VerifyOrigin() (crypto.Sha256Hash, error) {
	initial, err := tx.InitialSighash()
	if err != nil {
		return crypto.Sha256Hash{}, err
	}
	return tx.Auth.VerifyOrigin(initial)
}

// Verify verifies every signature of the transaction.
func (tx *Transaction) Verify() error {
	initial, err := tx.InitialSighash()
	if err != nil {
		return err
	}
	return tx.Auth.Verify(initial)
}

// SetFee sets the fee on the paying condition.
func (tx *Transaction) SetFee(fee uint64) {
	tx.Auth.SetFee(fee)
}

// SetNonce sets the nonce on the paying condition.
func (tx *Transaction) SetNonce(nonce uint64) {
	tx.Auth.SetNonce(nonce)
}

// SetSponsor installs the sponsor condition of a sponsored transaction.
func (tx *Transaction) SetSponsor(sponsor SpendingCondition) error {
	return tx.Auth.SetSponsor(sponsor)
}

// Decode parses a whole transaction; trailing bytes are an error.
func Decode(b []byte) (*Transaction, error) {
	r := newReader(b)

	version, err := r.readByte("version")
	if err != nil {
		return nil, err
	}
	if v := TransactionVersion(version); v != TransactionVersionMainnet && v != TransactionVersionTestnet {
		return nil, errEnum("transaction version", version)
	}

	chainID, err := r.u32("chain id")
	if err != nil {
		return nil, err
	}

	auth, err := r.authorization()
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}

	anchor, err := r.readByte("anchor mode")
	if err != nil {
		return nil, err
	}
	if !AnchorMode(anchor).valid() {
		return nil, errEnum("anchor mode", anchor)
	}

	pcMode, err := r.readByte("post-condition mode")
	if err != nil {
		return nil, err
	}
	if m := PostConditionMode(pcMode); m != PostConditionModeAllow && m != PostConditionModeDeny {
		return nil, errEnum("post-condition mode", pcMode)
	}

	pcs, err := r.postConditions()
	if err != nil {
		return nil, err
	}

	payload, err := r.payload()
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	if r.remaining() != 0 {
		return nil, &CodecError{Code: ErrTrailingBytes, Message: fmt.Sprintf("%d bytes after payload", r.remaining())}
	}

	return &Transaction{
		Version:           TransactionVersion(version),
		ChainID:           chainID,
		Auth:              auth,
		AnchorMode:        AnchorMode(anchor),
		PostConditionMode: PostConditionMode(pcMode),
		PostConditions:    pcs,
		Payload:           payload,
	}, nil
}

// DecodeHex parses a hex transaction, with or without 0x.
func DecodeHex(s string) (*Transaction, error) {
	b, err := crypto.HexToBytes(s)
	if err != nil {
		return nil, &CodecError{Code: ErrInvalidValue, Message: "invalid hex", Cause: err}
	}
	return Decode(b)
}
