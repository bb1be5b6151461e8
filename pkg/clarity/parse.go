package clarity

import (
	"fmt"
	"strings"

	"github.com/suffix-labs/stacks-go/pkg/crypto"
)

// Parse reads a value written in Clarity literal syntax, the same syntax
// String produces:
//
//	-4  u4  0xbeef  true  none  "hi"  u"hé"  SP2J...  'SP2J....name
//	(ok v)  (err v)  (some v)  (list a b)  (tuple (k v) (k2 v2))
func Parse(s string) (Value, error) {
	p := &parser{src: s}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q after value", p.src[p.pos:])
	}
	return v, nil
}

// MustParse is Parse that panics; for literals in tests and examples.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &CodecError{
		Code:    ErrParse,
		Message: fmt.Sprintf("offset %d: %s", p.pos, fmt.Sprintf(format, args...)),
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// atom reads up to the next space or parenthesis.
func (p *parser) atom() string {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n()", p.src[p.pos]) < 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) value(depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, &CodecError{Code: ErrDepthExceeded, Message: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}
	p.skipSpace()

	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '(':
		return p.form(depth)
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return StringASCII(s), nil
	case c == 'u' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '"':
		p.pos++
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return StringUTF8(s), nil
	}

	tok := p.atom()
	switch {
	case tok == "":
		return nil, p.errorf("unexpected %q", p.peek())
	case tok == "true":
		return True, nil
	case tok == "false":
		return False, nil
	case tok == "none":
		return None{}, nil
	case strings.HasPrefix(tok, "0x"):
		b, err := crypto.HexToBytes(tok)
		if err != nil {
			return nil, p.errorf("invalid buffer %q", tok)
		}
		return Buffer(b), nil
	case tok[0] == 'u':
		return NewUIntFromString(tok[1:])
	case tok[0] == '-' || (tok[0] >= '0' && tok[0] <= '9'):
		return NewIntFromString(tok)
	case tok[0] == 'S' || tok[0] == '\'':
		return ParsePrincipal(tok)
	}
	return nil, p.errorf("unknown literal %q", tok)
}

func (p *parser) quoted() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			sb.WriteByte(p.src[p.pos])
			p.pos++
		default:
			sb.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) form(depth int) (Value, error) {
	p.pos++ // (
	p.skipSpace()
	head := p.atom()

	switch head {
	case "ok", "err", "some":
		inner, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		switch head {
		case "ok":
			return ResponseOk{Value: inner}, nil
		case "err":
			return ResponseErr{Value: inner}, nil
		}
		return Some{Value: inner}, nil

	case "list":
		l := List{}
		for {
			p.skipSpace()
			if p.peek() == ')' {
				p.pos++
				return l, nil
			}
			v, err := p.value(depth + 1)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}

	case "tuple":
		t := Tuple{}
		for {
			p.skipSpace()
			if p.peek() == ')' {
				p.pos++
				return t, nil
			}
			if err := p.expect('('); err != nil {
				return nil, err
			}
			p.skipSpace()
			key := p.atom()
			if err := ValidateName(key); err != nil {
				return nil, err
			}
			v, err := p.value(depth + 1)
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			t = append(t, TupleEntry{Key: key, Value: v})
		}
	}

	return nil, p.errorf("unknown form %q", head)
}
