package sierra

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ParseTemplateArg parses "5", "-3", "felt" or "Tuple<felt, Array<felt>>".
// Identifiers are NFC-normalized.
func ParseTemplateArg(s string) (TemplateArg, error) {
	p := &typeParser{src: norm.NFC.String(s)}
	arg, err := p.arg()
	if err != nil {
		return TemplateArg{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TemplateArg{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return arg, nil
}

// ParseType parses a type expression.
func ParseType(s string) (Type, error) {
	arg, err := ParseTemplateArg(s)
	if err != nil {
		return Type{}, err
	}
	if arg.Kind != ArgType {
		return Type{}, fmt.Errorf("parse type %q: got a value", s)
	}
	return arg.Type, nil
}

// ParseTemplateArgs parses each element with ParseTemplateArg.
func ParseTemplateArgs(ss []string) ([]TemplateArg, error) {
	out := make([]TemplateArg, 0, len(ss))
	for _, s := range ss {
		a, err := ParseTemplateArg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) arg() (TemplateArg, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return TemplateArg{}, p.errorf("unexpected end of input")
	}
	c := p.src[p.pos]
	if c == '-' || (c >= '0' && c <= '9') {
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		v, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
		if err != nil {
			return TemplateArg{}, p.errorf("bad integer: %v", err)
		}
		return ValueArg(v), nil
	}
	t, err := p.typ()
	if err != nil {
		return TemplateArg{}, err
	}
	return TypeArg(t), nil
}

func (p *typeParser) typ() (Type, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r >= 0x80 {
			rr, size := utf8.DecodeRuneInString(p.src[p.pos:])
			if !unicode.IsLetter(rr) && !unicode.IsDigit(rr) {
				break
			}
			p.pos += size
			continue
		}
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ':') {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return Type{}, p.errorf("expected identifier")
	}
	name := p.src[start:p.pos]
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return Type{Name: name}, nil
	}
	p.pos++
	var args []TemplateArg
	for {
		a, err := p.arg()
		if err != nil {
			return Type{}, err
		}
		args = append(args, a)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Type{}, p.errorf("unclosed '<'")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return Type{Name: name, Args: args}, nil
		default:
			return Type{}, p.errorf("expected ',' or '>'")
		}
	}
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatTypes renders a list of types as "[a, b]".
func FormatTypes(ts []Type) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, t.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
