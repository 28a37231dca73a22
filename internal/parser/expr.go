package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/kmateuszssak/p4c/internal/lexer"
	"github.com/kmateuszssak/p4c/legacy"
)

// binaryOp describes a binary operator: its spelling in the legacy tree
// and its binding power. Higher binds tighter.
type binaryOp struct {
	op   string
	prec int
}

var binaryOps = map[lexer.TokenKind]binaryOp{
	lexer.TokOrOr:    {"||", 1},
	lexer.TokKwOr:    {"||", 1},
	lexer.TokAndAnd:  {"&&", 2},
	lexer.TokKwAnd:   {"&&", 2},
	lexer.TokPipe:    {"|", 3},
	lexer.TokCaret:   {"^", 4},
	lexer.TokAmp:     {"&", 5},
	lexer.TokEqEq:    {"==", 6},
	lexer.TokNe:      {"!=", 6},
	lexer.TokLt:      {"<", 7},
	lexer.TokGt:      {">", 7},
	lexer.TokLe:      {"<=", 7},
	lexer.TokGe:      {">=", 7},
	lexer.TokShl:     {"<<", 8},
	lexer.TokShr:     {">>", 8},
	lexer.TokPlus:    {"+", 9},
	lexer.TokMinus:   {"-", 9},
	lexer.TokStar:    {"*", 10},
	lexer.TokSlash:   {"/", 10},
	lexer.TokPercent: {"%", 10},
}

var unaryOps = map[lexer.TokenKind]string{
	lexer.TokBang:  "!",
	lexer.TokKwNot: "!",
	lexer.TokTilde: "~",
	lexer.TokMinus: "-",
}

// parseExpression parses operators binding tighter than minPrec.
// All binary operators are left associative.
func (p *Parser) parseExpression(minPrec int) (legacy.Expression, *lexer.Diagnostic) {
	left, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	for {
		bop, ok := binaryOps[p.peek().Kind]
		if !ok || bop.prec <= minPrec {
			return left, nil
		}
		p.advance()
		right, diag := p.parseExpression(bop.prec)
		if diag != nil {
			return nil, diag
		}
		left = &legacy.Binary{Op: bop.op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (legacy.Expression, *lexer.Diagnostic) {
	op, ok := unaryOps[p.peek().Kind]
	if !ok {
		return p.parsePostfix()
	}
	p.advance()
	operand, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	return &legacy.Unary{Op: op, Expr: operand}, nil
}

func (p *Parser) parsePostfix() (legacy.Expression, *lexer.Diagnostic) {
	e, diag := p.parsePrimary()
	if diag != nil {
		return nil, diag
	}
	for {
		switch {
		case p.check(lexer.TokDot):
			p.advance()
			name, diag := p.expect(lexer.TokIdent)
			if diag != nil {
				return nil, diag
			}
			e = &legacy.Member{Expr: e, Name: p.text(name)}
		case p.check(lexer.TokLBracket):
			if _, ok := e.(*legacy.ConcreteHeaderRef); !ok {
				d := p.makeError(fmt.Sprintf("%s is not a header stack", e))
				return nil, &d
			}
			p.advance()
			index, diag := p.parseStackIndex()
			if diag != nil {
				return nil, diag
			}
			if _, diag := p.expect(lexer.TokRBracket); diag != nil {
				return nil, diag
			}
			e = &legacy.HeaderStackItemRef{Base: e, Index: index}
		default:
			return e, nil
		}
	}
}

// parseStackIndex parses a constant index or one of the next and last
// cursors.
func (p *Parser) parseStackIndex() (legacy.Expression, *lexer.Diagnostic) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokNumber:
		return p.parseNumber()
	case lexer.TokIdent:
		if name := p.text(tok); name == "next" || name == "last" {
			p.advance()
			return &legacy.PathExpression{Name: name}, nil
		}
	}
	d := p.makeError(fmt.Sprintf("stack index must be a number, next or last; found %s", p.describe(tok)))
	return nil, &d
}

func (p *Parser) parsePrimary() (legacy.Expression, *lexer.Diagnostic) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokNumber:
		return p.parseNumber()
	case lexer.TokString:
		p.advance()
		text := p.text(tok)
		return &legacy.StringLiteral{Value: text[1 : len(text)-1]}, nil
	case lexer.TokKwTrue, lexer.TokKwFalse:
		p.advance()
		return &legacy.BoolLiteral{Value: tok.Kind == lexer.TokKwTrue}, nil
	case lexer.TokKwValid:
		p.advance()
		args, diag := p.parseArgs()
		if diag != nil {
			return nil, diag
		}
		if len(args) != 1 {
			d := lexer.Diagnostic{Span: tok.Span, Message: "valid takes one argument"}
			return nil, &d
		}
		return &legacy.Valid{Expr: args[0]}, nil
	case lexer.TokKwCurrent:
		return p.parseCurrent()
	case lexer.TokLParen:
		p.advance()
		e, diag := p.parseExpression(0)
		if diag != nil {
			return nil, diag
		}
		if _, diag := p.expect(lexer.TokRParen); diag != nil {
			return nil, diag
		}
		return e, nil
	case lexer.TokIdent:
		p.advance()
		name := p.text(tok)
		if p.isInstance(name) {
			return &legacy.ConcreteHeaderRef{Name: name}, nil
		}
		return &legacy.PathExpression{Name: name}, nil
	}
	d := p.makeError(fmt.Sprintf("expected expression, found %s", p.describe(tok)))
	return nil, &d
}

// parseCurrent parses current(offset, width). Both operands must be
// plain numbers.
func (p *Parser) parseCurrent() (legacy.Expression, *lexer.Diagnostic) {
	start := p.advance()
	args, diag := p.parseArgs()
	if diag != nil {
		return nil, diag
	}
	var ints [2]int
	for i, a := range args {
		k, ok := a.(*legacy.Constant)
		if !ok || i >= len(ints) || !k.Value.IsInt64() {
			break
		}
		ints[i] = k.Int()
	}
	if len(args) != 2 || ints[1] <= 0 {
		d := lexer.Diagnostic{Span: start.Span, Message: "current takes a constant offset and a positive width"}
		return nil, &d
	}
	return &legacy.Current{Offset: ints[0], Width: ints[1]}, nil
}

// parseNumber parses an integer literal with optional width prefix:
// 42, 0x800, 0b1010, 16w0x800.
func (p *Parser) parseNumber() (legacy.Expression, *lexer.Diagnostic) {
	tok := p.advance()
	k, err := parseConstant(p.text(tok))
	if err != nil {
		d := lexer.Diagnostic{Span: tok.Span, Message: err.Error()}
		return nil, &d
	}
	return k, nil
}

func parseConstant(text string) (*legacy.Constant, error) {
	k := &legacy.Constant{Base: 10}
	if i := strings.IndexAny(text, "ws"); i > 0 && !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		w, err := strconv.Atoi(text[:i])
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("invalid width in %q", text)
		}
		k.Width = w
		text = text[i+1:]
	}
	digits := text
	base := 10
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base, digits = 16, text[2:]
			k.Base = 16
		case 'b', 'B':
			base, digits = 2, text[2:]
		}
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	k.Value = v
	return k, nil
}
