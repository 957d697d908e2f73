// Package condition implements the small predicate language used by rule
// specs. Expressions combine comparisons over dotted field paths with
// AND/OR/NOT, e.g.:
//
//	connect_type.type == "telnet" AND NOT case.is_stability
//	rf_solution.model contains "RC4DAT"
//	rvr.repeat >= 3
//
// Expressions are parsed once when the rule registry is built; evaluation
// is pure and never performs I/O.
package condition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Expr is the common interface for parsed predicate nodes.
type Expr interface {
	exprNode()
}

// LogicExpr is AND / OR over two sub-expressions.
type LogicExpr struct {
	Op    string // "AND" | "OR"
	Left  Expr
	Right Expr
}

func (*LogicExpr) exprNode() {}

// NotExpr negates its operand.
type NotExpr struct {
	Expr Expr
}

func (*NotExpr) exprNode() {}

// CompareExpr is <operand> <op> <operand>.
type CompareExpr struct {
	Left  Operand
	Op    Op
	Right Operand
}

func (*CompareExpr) exprNode() {}

// FieldExpr is a bare field reference used as a boolean (truthiness of the
// field value, false when absent). It lets rules say just "case.is_rvo".
type FieldExpr struct {
	Key string
}

func (*FieldExpr) exprNode() {}

// Operand is a literal constant or a field reference.
type Operand interface {
	operandNode()
}

// Literal holds a constant parsed from the expression text.
type Literal struct {
	Value any
}

func (*Literal) operandNode() {}

// Field refers to a dotted field key resolved at evaluation time.
type Field struct {
	Key string
}

func (*Field) operandNode() {}

// Op is a comparison operator.
type Op string

const (
	OpEq       Op = "=="
	OpNeq      Op = "!="
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpLt       Op = "<"
	OpLte      Op = "<="
	OpContains Op = "contains"
	OpMatches  Op = "matches"
)

// ---------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------

type tokKind int

const (
	tokWord tokKind = iota
	tokOp
	tokString
	tokNumber
	tokBool
	tokAbsent
	tokLParen
	tokRParen
	tokEOF
)

type tok struct {
	kind tokKind
	val  string
}

func scan(src string) ([]tok, error) {
	var out []tok
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case unicode.IsSpace(rune(ch)):
			i++
		case ch == '(':
			out = append(out, tok{tokLParen, "("})
			i++
		case ch == ')':
			out = append(out, tok{tokRParen, ")"})
			i++
		case ch == '=' || ch == '!' || ch == '<' || ch == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				out = append(out, tok{tokOp, src[i : i+2]})
				i += 2
			} else {
				out = append(out, tok{tokOp, string(ch)})
				i++
			}
		case ch == '"' || ch == '\'':
			lit, next, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			out = append(out, tok{tokString, lit})
			i = next
		case unicode.IsDigit(rune(ch)) || (ch == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			j := i + 1
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			out = append(out, tok{tokNumber, src[i:j]})
			i = j
		case unicode.IsLetter(rune(ch)) || ch == '_':
			j := i
			for j < len(src) && isWordChar(src[j]) {
				j++
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "true", "false":
				out = append(out, tok{tokBool, strings.ToLower(word)})
			case "absent":
				out = append(out, tok{tokAbsent, "absent"})
			default:
				out = append(out, tok{tokWord, word})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", ch, i)
		}
	}
	out = append(out, tok{tokEOF, ""})
	return out, nil
}

func scanString(src string, start int) (lit string, next int, err error) {
	quote := src[start]
	j := start + 1
	for j < len(src) && src[j] != quote {
		if src[j] == '\\' {
			j++
		}
		j++
	}
	if j >= len(src) {
		return "", 0, fmt.Errorf("unterminated string at offset %d", start)
	}
	inner := src[start+1 : j]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	inner = strings.ReplaceAll(inner, `\\`, `\`)
	return inner, j + 1, nil
}

// Word characters include '.' and '-' so dotted keys with hardware model
// names ("rf_solution.RC4DAT-8G-95.idVendor") scan as one token.
func isWordChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_' || c == '.' || c == '-'
}

// ---------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) peek() tok { return p.toks[p.pos] }

func (p *parser) next() tok {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) keywordIs(word string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.val, word)
}

// Parse compiles a predicate expression into its AST.
func Parse(src string) (Expr, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("trailing token %q after expression", p.peek().val)
	}
	return node, nil
}

// or = and ( "OR" and )*
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keywordIs("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

// and = unary ( "AND" unary )*
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keywordIs("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &LogicExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

// unary = "NOT" unary | "(" or ")" | comparison
func (p *parser) parseUnary() (Expr, error) {
	if p.keywordIs("NOT") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("expected ) but got %q", p.peek().val)
		}
		p.next()
		return inner, nil
	}
	return p.parseComparison()
}

// comparison = operand [ op operand ]
// A lone field reference is a truthiness test.
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t := p.peek()
	var op Op
	switch {
	case t.kind == tokOp:
		op = Op(t.val)
		p.next()
	case t.kind == tokWord && strings.EqualFold(t.val, "contains"):
		op = OpContains
		p.next()
	case t.kind == tokWord && strings.EqualFold(t.val, "matches"):
		op = OpMatches
		p.next()
	default:
		if f, ok := left.(*Field); ok {
			return &FieldExpr{Key: f.Key}, nil
		}
		return nil, fmt.Errorf("expected comparison operator, got %q", t.val)
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &CompareExpr{Left: left, Op: op, Right: right}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return &Literal{Value: t.val}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(t.val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", t.val, err)
		}
		return &Literal{Value: n}, nil
	case tokBool:
		return &Literal{Value: t.val == "true"}, nil
	case tokAbsent:
		return &Literal{Value: Absent}, nil
	case tokWord:
		return &Field{Key: t.val}, nil
	}
	return nil, fmt.Errorf("expected operand, got %q", t.val)
}
