package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

var (
	// ErrEmptyFormula is returned when nothing evaluable remains in a formula.
	ErrEmptyFormula = errors.New("metrics: formula is empty")
	// ErrInvalidFormula wraps every parse failure.
	ErrInvalidFormula = errors.New("metrics: invalid formula")
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	value float64
	op    byte
}

// Evaluate computes an arithmetic formula over the variables sum, count, min,
// max and average. The grammar is numbers, variables, + - * /, unary signs and
// parentheses. Variable names are lower case; characters outside the grammar
// and unknown identifiers, including SUM or Count, are dropped.
// On error the result is 0. Division by zero is not an error and yields an
// infinite or NaN result.
func Evaluate(formula string, vars Vars) (float64, error) {
	tokens, err := tokenize(formula, vars)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, ErrEmptyFormula
	}
	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.tokens) {
		return 0, fmt.Errorf("%w: unexpected token at %d", ErrInvalidFormula, p.pos)
	}
	return v, nil
}

// Validate reports whether formula parses. Variables evaluate as 1.
func Validate(formula string) error {
	_, err := Evaluate(formula, Vars{Sum: 1, Count: 1, Min: 1, Max: 1, Average: 1})
	return err
}

func tokenize(formula string, vars Vars) ([]token, error) {
	runes := []rune(formula)
	var tokens []token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r >= '0' && r <= '9' || r == '.':
			start := i
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.') {
				i++
			}
			literal := string(runes[start:i])
			v, err := strconv.ParseFloat(literal, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrInvalidFormula, literal)
			}
			tokens = append(tokens, token{kind: tokNumber, value: v})
			continue
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '_') {
				i++
			}
			if v, ok := vars.lookup(string(runes[start:i])); ok {
				tokens = append(tokens, token{kind: tokNumber, value: v})
			}
			continue
		case r == '+' || r == '-' || r == '*' || r == '/':
			tokens = append(tokens, token{kind: tokOp, op: byte(r)})
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
		}
		i++
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if t.op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.op != '*' && t.op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if t.op == '*' {
			left *= right
		} else {
			left /= right
		}
	}
}

func (p *parser) unary() (float64, error) {
	t, ok := p.peek()
	if ok && t.kind == tokOp && (t.op == '+' || t.op == '-') {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if t.op == '-' {
			return -v, nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	t, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end", ErrInvalidFormula)
	}
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.value, nil
	case tokLParen:
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if next, ok := p.peek(); !ok || next.kind != tokRParen {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidFormula)
		}
		p.pos++
		return v, nil
	}
	return 0, fmt.Errorf("%w: unexpected token at %d", ErrInvalidFormula, p.pos)
}
