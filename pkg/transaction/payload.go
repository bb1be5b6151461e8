package transaction

import (
	"fmt"
	"strings"

	"github.com/suffix-labs/stacks-go/pkg/clarity"
)

// PayloadType is the leading byte of a payload.
type PayloadType uint8

const (
	PayloadTokenTransfer PayloadType = 0x00
	PayloadContractCall  PayloadType = 0x02
)

// Payload is what a transaction does. The set of implementations is closed.
type Payload interface {
	Type() PayloadType
	appendTo(dst []byte) ([]byte, error)
}

// TokenTransferPayload moves STX to a standard or contract principal.
type TokenTransferPayload struct {
	Recipient clarity.Value // StandardPrincipal or ContractPrincipal
	Amount    uint64
	Memo      MemoString
}

// NewTokenTransferPayload parses recipient as "ADDRESS" or "ADDRESS.NAME".
func NewTokenTransferPayload(recipient string, amount uint64, memo string) (*TokenTransferPayload, error) {
	var to clarity.Value
	var err error
	if address, name, ok := strings.Cut(recipient, "."); ok {
		to, err = clarity.NewContractPrincipal(address, name)
	} else {
		to, err = clarity.NewStandardPrincipal(recipient)
	}
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	m, err := NewMemoString(memo)
	if err != nil {
		return nil, err
	}

	return &TokenTransferPayload{Recipient: to, Amount: amount, Memo: m}, nil
}

func (*TokenTransferPayload) Type() PayloadType { return PayloadTokenTransfer }

func (p *TokenTransferPayload) appendTo(dst []byte) ([]byte, error) {
	switch p.Recipient.(type) {
	case clarity.StandardPrincipal, clarity.ContractPrincipal:
	default:
		return nil, &CodecError{
			Code:    ErrInvalidValue,
			Message: fmt.Sprintf("recipient must be a principal, got %T", p.Recipient),
		}
	}

	dst = append(dst, byte(PayloadTokenTransfer))
	recipient, err := clarity.Encode(p.Recipient)
	if err != nil {
		return nil, err
	}
	dst = append(dst, recipient...)
	dst = appendU64(dst, p.Amount)
	return p.Memo.appendTo(dst)
}

// ContractCallPayload calls a public function of a deployed contract.
type ContractCallPayload struct {
	Address      clarity.StandardPrincipal
	ContractName LengthPrefixedString
	FunctionName LengthPrefixedString
	Args         FunctionArguments
}

// NewContractCallPayload builds a contract call from a c32 contract address.
func NewContractCallPayload(contractAddress, contractName, functionName string, args []clarity.Value) (*ContractCallPayload, error) {
	address, err := clarity.NewStandardPrincipal(contractAddress)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	if err := clarity.ValidateName(contractName); err != nil {
		return nil, fmt.Errorf("contract name: %w", err)
	}
	if err := clarity.ValidateName(functionName); err != nil {
		return nil, fmt.Errorf("function name: %w", err)
	}
	if args == nil {
		args = []clarity.Value{}
	}
	return &ContractCallPayload{
		Address:      address,
		ContractName: LengthPrefixedString(contractName),
		FunctionName: LengthPrefixedString(functionName),
		Args:         args,
	}, nil
}

func (*ContractCallPayload) Type() PayloadType { return PayloadContractCall }

// Contract returns the called contract as a principal.
func (p *ContractCallPayload) Contract() clarity.ContractPrincipal {
	return clarity.ContractPrincipal{Version: p.Address.Version, Hash: p.Address.Hash, Name: string(p.ContractName)}
}

func (p *ContractCallPayload) appendTo(dst []byte) ([]byte, error) {
	dst = append(dst, byte(PayloadContractCall))
	dst = appendAddress(dst, p.Address)
	dst, err := p.ContractName.appendTo(dst)
	if err != nil {
		return nil, err
	}
	if dst, err = p.FunctionName.appendTo(dst); err != nil {
		return nil, err
	}
	return p.Args.appendTo(dst)
}

// EncodePayload returns the wire form of p.
func EncodePayload(p Payload) ([]byte, error) {
	return p.appendTo(nil)
}

// DecodePayload reads one payload and returns it with the bytes consumed.
func DecodePayload(b []byte) (Payload, int, error) {
	r := newReader(b)
	p, err := r.payload()
	if err != nil {
		return nil, 0, err
	}
	return p, r.pos, nil
}

func (r *reader) payload() (Payload, error) {
	tag, err := r.readByte("payload type")
	if err != nil {
		return nil, err
	}

	switch PayloadType(tag) {
	case PayloadTokenTransfer:
		recipient, err := r.clarityValue("recipient")
		if err != nil {
			return nil, err
		}
		switch recipient.(type) {
		case clarity.StandardPrincipal, clarity.ContractPrincipal:
		default:
			return nil, &CodecError{Code: ErrInvalidValue, Message: fmt.Sprintf("recipient is %s", recipient.TypeID())}
		}
		amount, err := r.u64("amount")
		if err != nil {
			return nil, err
		}
		memo, err := r.memo()
		if err != nil {
			return nil, err
		}
		return &TokenTransferPayload{Recipient: recipient, Amount: amount, Memo: memo}, nil

	case PayloadContractCall:
		address, err := r.address("contract")
		if err != nil {
			return nil, err
		}
		contractName, err := r.lengthPrefixed("contract name")
		if err != nil {
			return nil, err
		}
		functionName, err := r.lengthPrefixed("function name")
		if err != nil {
			return nil, err
		}
		args, err := r.functionArguments()
		if err != nil {
			return nil, err
		}
		return &ContractCallPayload{
			Address:      address,
			ContractName: contractName,
			FunctionName: functionName,
			Args:         args,
		}, nil
	}

	return nil, errEnum("payload type", tag)
}
