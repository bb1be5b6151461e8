package transaction

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
)

const (
	// MaxStringLength bounds a LengthPrefixedString.
	MaxStringLength = 128

	// MemoLength is the fixed width of a token transfer memo.
	MemoLength = 34
)

// LengthPrefixedString is a non-empty name encoded as a u8 length and the
// bytes.
type LengthPrefixedString string

func (s LengthPrefixedString) appendTo(dst []byte) ([]byte, error) {
	if len(s) == 0 {
		return nil, &CodecError{Code: ErrInvalidValue, Message: "empty name"}
	}
	if len(s) > MaxStringLength {
		return nil, &CodecError{
			Code:    ErrLengthOverflow,
			Message: fmt.Sprintf("%q is %d bytes, max %d", string(s), len(s), MaxStringLength),
		}
	}
	dst = append(dst, byte(len(s)))
	return append(dst, s...), nil
}

// Encode returns the wire form of s.
func (s LengthPrefixedString) Encode() ([]byte, error) {
	return s.appendTo(nil)
}

func (r *reader) lengthPrefixed(what string) (LengthPrefixedString, error) {
	n, err := r.readByte(what + " length")
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", &CodecError{Code: ErrInvalidValue, Message: "empty " + what}
	}
	if int(n) > MaxStringLength {
		return "", &CodecError{Code: ErrLengthOverflow, Message: fmt.Sprintf("%s is %d bytes", what, n)}
	}
	b, err := r.take(int(n), what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &CodecError{Code: ErrInvalidUTF8, Message: what}
	}
	return LengthPrefixedString(b), nil
}

// MemoString is the 34-byte memo of a token transfer: the UTF-8 text left
// aligned and zero padded.
type MemoString string

// NewMemoString checks that memo fits the memo field.
func NewMemoString(memo string) (MemoString, error) {
	if len(memo) > MemoLength {
		return "", &CodecError{
			Code:    ErrLengthOverflow,
			Message: fmt.Sprintf("memo is %d bytes, max %d", len(memo), MemoLength),
		}
	}
	return MemoString(memo), nil
}

func (m MemoString) appendTo(dst []byte) ([]byte, error) {
	if len(m) > MemoLength {
		return nil, &CodecError{
			Code:    ErrLengthOverflow,
			Message: fmt.Sprintf("memo is %d bytes, max %d", len(m), MemoLength),
		}
	}
	var field [MemoLength]byte
	copy(field[:], m)
	return append(dst, field[:]...), nil
}

func (r *reader) memo() (MemoString, error) {
	b, err := r.take(MemoLength, "memo")
	if err != nil {
		return "", err
	}
	return MemoString(bytes.TrimRight(b, "\x00")), nil
}

// AssetInfo names a token: the defining contract and the asset.
type AssetInfo struct {
	Address      clarity.StandardPrincipal
	ContractName LengthPrefixedString
	AssetName    LengthPrefixedString
}

// NewAssetInfo builds an AssetInfo from a c32 contract address.
func NewAssetInfo(contractAddress, contractName, assetName string) (AssetInfo, error) {
	address, err := clarity.NewStandardPrincipal(contractAddress)
	if err != nil {
		return AssetInfo{}, err
	}
	if err := clarity.ValidateName(contractName); err != nil {
		return AssetInfo{}, err
	}
	if err := clarity.ValidateName(assetName); err != nil {
		return AssetInfo{}, err
	}
	return AssetInfo{
		Address:      address,
		ContractName: LengthPrefixedString(contractName),
		AssetName:    LengthPrefixedString(assetName),
	}, nil
}

func (a AssetInfo) String() string {
	return fmt.Sprintf("%s.%s::%s", a.Address, a.ContractName, a.AssetName)
}

func (a AssetInfo) appendTo(dst []byte) ([]byte, error) {
	dst = appendAddress(dst, a.Address)
	dst, err := a.ContractName.appendTo(dst)
	if err != nil {
		return nil, err
	}
	return a.AssetName.appendTo(dst)
}

// Encode returns the wire form of a.
func (a AssetInfo) Encode() ([]byte, error) {
	return a.appendTo(nil)
}

func (r *reader) assetInfo() (AssetInfo, error) {
	address, err := r.address("asset contract")
	if err != nil {
		return AssetInfo{}, err
	}
	contractName, err := r.lengthPrefixed("asset contract name")
	if err != nil {
		return AssetInfo{}, err
	}
	assetName, err := r.lengthPrefixed("asset name")
	if err != nil {
		return AssetInfo{}, err
	}
	return AssetInfo{Address: address, ContractName: contractName, AssetName: assetName}, nil
}

// FunctionArguments is the argument block of a contract call: a u32 count
// followed by the encoded values.
type FunctionArguments []clarity.Value

func (args FunctionArguments) String() string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "(fn-args")
	for _, v := range args {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, " ") + ")"
}

func (args FunctionArguments) appendTo(dst []byte) ([]byte, error) {
	if uint64(len(args)) > math.MaxUint32 {
		return nil, &CodecError{Code: ErrLengthOverflow, Message: "too many function arguments"}
	}
	dst = appendU32(dst, uint32(len(args)))
	for i, v := range args {
		b, err := clarity.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("function argument %d: %w", i, err)
		}
		dst = append(dst, b...)
	}
	return dst, nil
}

// Encode returns the wire form of args.
func (args FunctionArguments) Encode() ([]byte, error) {
	return args.appendTo(nil)
}

func (r *reader) functionArguments() (FunctionArguments, error) {
	n, err := r.u32("function argument count")
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.remaining()) {
		return nil, errEOF("function arguments")
	}
	args := make(FunctionArguments, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := r.clarityValue(fmt.Sprintf("function argument %d", i))
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}
