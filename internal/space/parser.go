package space

import (
	"fmt"
	"strings"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Parse builds a Space from a variable expression. The grammar:
//
//	choice  := product ('+' product)*
//	product := atom ('*' atom)*
//	atom    := NAME '{' value (',' value)* '}' | NAME | '(' choice ')'
//
// '*' combines independent variables (all combinations), '+' declares
// alternative branches, and '*' binds tighter than '+'. A bare NAME takes
// its values from the value table; an inline '{...}' list wins over the
// table. Values inside braces are trimmed and may not be empty.
func Parse(expr string, values map[string][]string) (*Space, error) {
	p := &exprParser{input: expr, values: values}
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, p.errorf("empty variable expression")
	}
	root, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos])
	}
	return New(root)
}

type exprParser struct {
	input  string
	pos    int
	values map[string][]string
}

func (p *exprParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return tunesmitherrors.NewConfigurationError("space.variables", fmt.Sprintf("%s at offset %d", msg, p.pos), nil)
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func (p *exprParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) parseChoice() (*Node, error) {
	first, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	branches := []*Node{first}
	for p.accept('+') {
		next, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		branches = append(branches, next)
	}
	return NewChoice(branches...)
}

func (p *exprParser) parseProduct() (*Node, error) {
	first, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	factors := []*Node{first}
	for p.accept('*') {
		next, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		factors = append(factors, next)
	}
	return NewProduct(factors...)
}

func (p *exprParser) parseAtom() (*Node, error) {
	if p.accept('(') {
		inner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errorf("missing closing parenthesis")
		}
		return inner, nil
	}

	name, ok := p.scanName()
	if !ok {
		return nil, p.errorf("expected variable name")
	}

	if p.accept('{') {
		vals, err := p.parseValueList(name)
		if err != nil {
			return nil, err
		}
		return NewLeaf(name, vals)
	}

	vals, ok := p.values[name]
	if !ok {
		return nil, tunesmitherrors.NewConfigurationError("space.values", fmt.Sprintf("no values declared for variable %q", name), nil)
	}
	return NewLeaf(name, vals)
}

func (p *exprParser) scanName() (string, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && isNameByte(p.input[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.input[start:p.pos], true
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// parseValueList consumes values up to the closing brace. Values are raw
// text, so they may carry flags like "-O2"; only ',' and '}' terminate one.
func (p *exprParser) parseValueList(name string) ([]string, error) {
	var vals []string
	for {
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != ',' && p.input[p.pos] != '}' {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return nil, p.errorf("missing closing brace for variable %q", name)
		}
		val := strings.TrimSpace(p.input[start:p.pos])
		if val == "" {
			return nil, p.errorf("empty value for variable %q", name)
		}
		vals = append(vals, val)
		if p.input[p.pos] == '}' {
			p.pos++
			return vals, nil
		}
		p.pos++ // consume ','
	}
}
