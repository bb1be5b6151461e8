package clarity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// MaxNameLength bounds contract names, asset names and tuple keys.
const MaxNameLength = 128

// StandardPrincipal is an address: a version byte and a hash160.
type StandardPrincipal struct {
	Version uint8
	Hash    crypto.Hash160
}

// ContractPrincipal is an address plus a contract name.
type ContractPrincipal struct {
	Version uint8
	Hash    crypto.Hash160
	Name    string
}

func (StandardPrincipal) TypeID() TypeID { return TypeStandardPrincipal }
func (ContractPrincipal) TypeID() TypeID { return TypeContractPrincipal }

func (p StandardPrincipal) String() string {
	return principalString(p.Version, p.Hash)
}

func (p ContractPrincipal) String() string {
	return principalString(p.Version, p.Hash) + "." + p.Name
}

// Address returns the c32 address of the principal.
func (p ContractPrincipal) Address() StandardPrincipal {
	return StandardPrincipal{Version: p.Version, Hash: p.Hash}
}

// NewStandardPrincipal parses a c32 address.
func NewStandardPrincipal(address string) (StandardPrincipal, error) {
	version, hash, err := crypto.C32AddressDecode(address)
	if err != nil {
		return StandardPrincipal{}, &CodecError{
			Code:    ErrParse,
			Message: fmt.Sprintf("invalid principal address %q", address),
			Cause:   err,
		}
	}
	return StandardPrincipal{Version: version, Hash: hash}, nil
}

// NewContractPrincipal parses a c32 address and attaches a contract name.
func NewContractPrincipal(address, name string) (ContractPrincipal, error) {
	p, err := NewStandardPrincipal(address)
	if err != nil {
		return ContractPrincipal{}, err
	}
	if err := ValidateName(name); err != nil {
		return ContractPrincipal{}, err
	}
	return ContractPrincipal{Version: p.Version, Hash: p.Hash, Name: name}, nil
}

// ParsePrincipal parses "ADDRESS" or "ADDRESS.NAME". A leading quote mark,
// as written in Clarity source, is accepted.
func ParsePrincipal(s string) (Value, error) {
	s = strings.TrimPrefix(s, "'")
	if address, name, ok := strings.Cut(s, "."); ok {
		return NewContractPrincipal(address, name)
	}
	return NewStandardPrincipal(s)
}

// MustPrincipal is ParsePrincipal that panics; for literals in tests and
// examples.
func MustPrincipal(s string) Value {
	v, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateName checks a length-prefixed name: non-empty, valid UTF-8 and
// at most MaxNameLength bytes.
func ValidateName(name string) error {
	if len(name) == 0 {
		return &CodecError{Code: ErrParse, Message: "empty name"}
	}
	if len(name) > MaxNameLength {
		return &CodecError{
			Code:    ErrLengthOverflow,
			Message: fmt.Sprintf("name is %d bytes, max %d", len(name), MaxNameLength),
		}
	}
	if !utf8.ValidString(name) {
		return &CodecError{Code: ErrInvalidUTF8, Message: fmt.Sprintf("name %q", name)}
	}
	return nil
}
