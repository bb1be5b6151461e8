package transaction

import (
	"fmt"
	"math"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
)

// PostConditionType is the leading byte of a post-condition.
type PostConditionType uint8

const (
	PostConditionSTX         PostConditionType = 0x00
	PostConditionFungible    PostConditionType = 0x01
	PostConditionNonFungible PostConditionType = 0x02
)

// Principal kind bytes inside a post-condition.
const (
	principalKindStandard uint8 = 0x02
	principalKindContract uint8 = 0x03
)

// FungibleConditionCode compares an amount moved by the transaction.
type FungibleConditionCode uint8

const (
	FungibleEqual        FungibleConditionCode = 0x01
	FungibleGreater      FungibleConditionCode = 0x02
	FungibleGreaterEqual FungibleConditionCode = 0x03
	FungibleLess         FungibleConditionCode = 0x04
	FungibleLessEqual    FungibleConditionCode = 0x05
)

func (c FungibleConditionCode) valid() bool {
	return c >= FungibleEqual && c <= FungibleLessEqual
}

// NonFungibleConditionCode asserts ownership of an asset after execution.
type NonFungibleConditionCode uint8

const (
	NonFungibleDoesNotOwn NonFungibleConditionCode = 0x10
	NonFungibleOwns       NonFungibleConditionCode = 0x11
)

func (c NonFungibleConditionCode) valid() bool {
	return c == NonFungibleDoesNotOwn || c == NonFungibleOwns
}

// PostConditionMode decides whether transfers not covered by a
// post-condition are allowed.
type PostConditionMode uint8

const (
	PostConditionModeAllow PostConditionMode = 0x01
	PostConditionModeDeny  PostConditionMode = 0x02
)

// PostCondition is an asset-movement assertion. The set of implementations
// is closed.
type PostCondition interface {
	Type() PostConditionType
	appendTo(dst []byte) ([]byte, error)
}

// STXPostCondition constrains the STX sent by a principal.
type STXPostCondition struct {
	Principal clarity.Value // StandardPrincipal or ContractPrincipal
	Code      FungibleConditionCode
	Amount    uint64
}

// FungiblePostCondition constrains the fungible tokens sent by a principal.
type FungiblePostCondition struct {
	Principal clarity.Value
	Asset     AssetInfo
	Code      FungibleConditionCode
	Amount    uint64
}

// NonFungiblePostCondition asserts whether a principal still owns an NFT.
type NonFungiblePostCondition struct {
	Principal clarity.Value
	Asset     AssetInfo
	AssetID   clarity.Value
	Code      NonFungibleConditionCode
}

func (*STXPostCondition) Type() PostConditionType         { return PostConditionSTX }
func (*FungiblePostCondition) Type() PostConditionType    { return PostConditionFungible }
func (*NonFungiblePostCondition) Type() PostConditionType { return PostConditionNonFungible }

func appendPostConditionPrincipal(dst []byte, p clarity.Value) ([]byte, error) {
	switch x := p.(type) {
	case clarity.StandardPrincipal:
		dst = append(dst, principalKindStandard)
		return appendAddress(dst, x), nil
	case clarity.ContractPrincipal:
		dst = append(dst, principalKindContract)
		dst = appendAddress(dst, x.Address())
		return LengthPrefixedString(x.Name).appendTo(dst)
	}
	return nil, &CodecError{
		Code:    ErrInvalidValue,
		Message: fmt.Sprintf("post-condition principal must be a principal, got %T", p),
	}
}

func (c *STXPostCondition) appendTo(dst []byte) ([]byte, error) {
	if !c.Code.valid() {
		return nil, errEnum("fungible condition code", byte(c.Code))
	}
	dst = append(dst, byte(PostConditionSTX))
	dst, err := appendPostConditionPrincipal(dst, c.Principal)
	if err != nil {
		return nil, err
	}
	dst = append(dst, byte(c.Code))
	return appendU64(dst, c.Amount), nil
}

func (c *FungiblePostCondition) appendTo(dst []byte) ([]byte, error) {
	if !c.Code.valid() {
		return nil, errEnum("fungible condition code", byte(c.Code))
	}
	dst = append(dst, byte(PostConditionFungible))
	dst, err := appendPostConditionPrincipal(dst, c.Principal)
	if err != nil {
		return nil, err
	}
	if dst, err = c.Asset.appendTo(dst); err != nil {
		return nil, err
	}
	dst = append(dst, byte(c.Code))
	return appendU64(dst, c.Amount), nil
}

func (c *NonFungiblePostCondition) appendTo(dst []byte) ([]byte, error) {
	if !c.Code.valid() {
		return nil, errEnum("non-fungible condition code", byte(c.Code))
	}
	dst = append(dst, byte(PostConditionNonFungible))
	dst, err := appendPostConditionPrincipal(dst, c.Principal)
	if err != nil {
		return nil, err
	}
	if dst, err = c.Asset.appendTo(dst); err != nil {
		return nil, err
	}
	id, err := clarity.Encode(c.AssetID)
	if err != nil {
		return nil, fmt.Errorf("asset id: %w", err)
	}
	dst = append(dst, id...)
	return append(dst, byte(c.Code)), nil
}

// EncodePostCondition returns the wire form of c.
func EncodePostCondition(c PostCondition) ([]byte, error) {
	return c.appendTo(nil)
}

// PostConditions is the post-condition block: a u32 count and the
// conditions. The zero value is the empty block.
type PostConditions []PostCondition

func (pcs PostConditions) appendTo(dst []byte) ([]byte, error) {
	if uint64(len(pcs)) > math.MaxUint32 {
		return nil, &CodecError{Code: ErrLengthOverflow, Message: "too many post-conditions"}
	}
	dst = appendU32(dst, uint32(len(pcs)))
	var err error
	for i, c := range pcs {
		if dst, err = c.appendTo(dst); err != nil {
			return nil, fmt.Errorf("post-condition %d: %w", i, err)
		}
	}
	return dst, nil
}

// Encode returns the wire form of the block.
func (pcs PostConditions) Encode() ([]byte, error) {
	return pcs.appendTo(nil)
}

// DecodePostConditions reads a post-condition block and returns it with
// the bytes consumed.
func DecodePostConditions(b []byte) (PostConditions, int, error) {
	r := newReader(b)
	pcs, err := r.postConditions()
	if err != nil {
		return nil, 0, err
	}
	return pcs, r.pos, nil
}

func (r *reader) postConditions() (PostConditions, error) {
	n, err := r.u32("post-condition count")
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.remaining()) {
		return nil, errEOF("post-conditions")
	}
	pcs := make(PostConditions, 0, n)
	for i := uint32(0); i < n; i++ {
		c, err := r.postCondition()
		if err != nil {
			return nil, fmt.Errorf("post-condition %d: %w", i, err)
		}
		pcs = append(pcs, c)
	}
	return pcs, nil
}

func (r *reader) postConditionPrincipal() (clarity.Value, error) {
	kind, err := r.readByte("principal kind")
	if err != nil {
		return nil, err
	}
	address, err := r.address("principal")
	if err != nil {
		return nil, err
	}
	switch kind {
	case principalKindStandard:
		return address, nil
	case principalKindContract:
		name, err := r.lengthPrefixed("contract name")
		if err != nil {
			return nil, err
		}
		return clarity.ContractPrincipal{Version: address.Version, Hash: address.Hash, Name: string(name)}, nil
	}
	return nil, errEnum("principal kind", kind)
}

func (r *reader) fungibleCode() (FungibleConditionCode, error) {
	b, err := r.readByte("condition code")
	if err != nil {
		return 0, err
	}
	if code := FungibleConditionCode(b); code.valid() {
		return code, nil
	}
	return 0, errEnum("fungible condition code", b)
}

func (r *reader) postCondition() (PostCondition, error) {
	tag, err := r.readByte("post-condition type")
	if err != nil {
		return nil, err
	}

	switch PostConditionType(tag) {
	case PostConditionSTX:
		principal, err := r.postConditionPrincipal()
		if err != nil {
			return nil, err
		}
		code, err := r.fungibleCode()
		if err != nil {
			return nil, err
		}
		amount, err := r.u64("amount")
		if err != nil {
			return nil, err
		}
		return &STXPostCondition{Principal: principal, Code: code, Amount: amount}, nil

	case PostConditionFungible:
		principal, err := r.postConditionPrincipal()
		if err != nil {
			return nil, err
		}
		asset, err := r.assetInfo()
		if err != nil {
			return nil, err
		}
		code, err := r.fungibleCode()
		if err != nil {
			return nil, err
		}
		amount, err := r.u64("amount")
		if err != nil {
			return nil, err
		}
		return &FungiblePostCondition{Principal: principal, Asset: asset, Code: code, Amount: amount}, nil

	case PostConditionNonFungible:
		principal, err := r.postConditionPrincipal()
		if err != nil {
			return nil, err
		}
		asset, err := r.assetInfo()
		if err != nil {
			return nil, err
		}
		id, err := r.clarityValue("asset id")
		if err != nil {
			return nil, err
		}
		b, err := r.readByte("condition code")
		if err != nil {
			return nil, err
		}
		code := NonFungibleConditionCode(b)
		if !code.valid() {
			return nil, errEnum("non-fungible condition code", b)
		}
		return &NonFungiblePostCondition{Principal: principal, Asset: asset, AssetID: id, Code: code}, nil
	}

	return nil, errEnum("post-condition type", tag)
}
