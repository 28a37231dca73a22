// Package parser parses P4-14 expression text into legacy expressions.
//
// Program descriptions carry expressions, primitive calls and select case
// labels as short strings ("ipv4.ttl", "modify_field(m.nhop, port)",
// "0x800 mask 0xff00"). The parser turns each into legacy tree nodes.
// Names are classified with an instance predicate supplied by the caller:
// header, header stack and metadata instances become ConcreteHeaderRef,
// everything else a PathExpression.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kmateuszssak/p4c/internal/lexer"
	"github.com/kmateuszssak/p4c/internal/types"
	"github.com/kmateuszssak/p4c/legacy"
)

// ErrSyntax is wrapped by every error the parser returns.
var ErrSyntax = errors.New("syntax error")

// Error is a syntax error in a piece of expression text.
type Error struct {
	Text        string
	Diagnostics []lexer.Diagnostic
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("parse %q: %s", e.Text, strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() error { return ErrSyntax }

// Call is a parsed primitive or extern method invocation.
type Call struct {
	Receiver string
	Name     string
	Args     []legacy.Expression
}

// Parser converts expression text into legacy expressions.
type Parser struct {
	source      []byte
	lex         *lexer.Lexer
	buf         [2]lexer.Token // lookahead buffer: buf[0]=current, buf[1]=peek(1)
	diagnostics []lexer.Diagnostic
	isInstance  func(string) bool
	types.Logger
}

// New returns a Parser for source. isInstance reports whether a name is a
// header, header stack or metadata instance; nil treats no name as one.
// Pass nil for logger to disable logging.
func New(source []byte, logger *slog.Logger, isInstance func(string) bool) *Parser {
	if isInstance == nil {
		isInstance = func(string) bool { return false }
	}
	lex := lexer.New(source, logger)
	p := &Parser{
		source:     source,
		lex:        lex,
		isInstance: isInstance,
		Logger:     types.Logger{L: logger},
	}
	p.buf[0] = lex.NextToken()
	p.buf[1] = lex.NextToken()
	return p
}

// ParseExpr parses text as a single expression.
func ParseExpr(text string, isInstance func(string) bool) (legacy.Expression, error) {
	p := New([]byte(text), nil, isInstance)
	e, diag := p.parseExpression(0)
	return e, p.finish(diag)
}

// ParseCaseValue parses a select case label: an expression optionally
// followed by "mask" and a second expression.
func ParseCaseValue(text string, isInstance func(string) bool) (legacy.CaseValue, error) {
	p := New([]byte(text), nil, isInstance)
	cv, diag := p.parseCaseValue()
	return cv, p.finish(diag)
}

// ParseCall parses a primitive invocation: name, name(args) or
// receiver.name(args).
func ParseCall(text string, isInstance func(string) bool) (*Call, error) {
	p := New([]byte(text), nil, isInstance)
	c, diag := p.parseCall()
	return c, p.finish(diag)
}

// finish checks that all input was consumed and folds lexer and parser
// diagnostics into an error.
func (p *Parser) finish(diag *lexer.Diagnostic) error {
	if diag == nil && !p.check(lexer.TokEOF) {
		d := p.makeError(fmt.Sprintf("unexpected %s", p.describe(p.peek())))
		diag = &d
	}
	if diag != nil {
		p.diagnostics = append(p.diagnostics, *diag)
	}
	all := append(p.lex.Diagnostics(), p.diagnostics...)
	if len(all) == 0 {
		return nil
	}
	p.Log(slog.LevelDebug, "parse failed",
		slog.String("text", string(p.source)),
		slog.Int("diagnostics", len(all)))
	return &Error{Text: string(p.source), Diagnostics: all}
}

func (p *Parser) peek() lexer.Token {
	return p.buf[0]
}

func (p *Parser) advance() lexer.Token {
	tok := p.buf[0]
	p.buf[0] = p.buf[1]
	p.buf[1] = p.lex.NextToken()
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.buf[0].Kind == kind
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, *lexer.Diagnostic) {
	if p.check(kind) {
		return p.advance(), nil
	}
	diag := p.makeError(fmt.Sprintf("expected %s, found %s", kind, p.describe(p.peek())))
	return lexer.Token{}, &diag
}

func (p *Parser) makeError(message string) lexer.Diagnostic {
	return lexer.Diagnostic{Span: p.peek().Span, Message: message}
}

func (p *Parser) text(tok lexer.Token) string {
	return tok.Text(p.source)
}

func (p *Parser) describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokEOF:
		return "end of input"
	case lexer.TokIdent, lexer.TokNumber, lexer.TokString:
		return fmt.Sprintf("%q", p.text(tok))
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

func (p *Parser) parseCaseValue() (legacy.CaseValue, *lexer.Diagnostic) {
	value, diag := p.parseExpression(0)
	if diag != nil {
		return legacy.CaseValue{}, diag
	}
	cv := legacy.CaseValue{Value: value}
	if p.check(lexer.TokKwMask) {
		p.advance()
		cv.Mask, diag = p.parseExpression(0)
	}
	return cv, diag
}

func (p *Parser) parseCall() (*Call, *lexer.Diagnostic) {
	first, diag := p.expect(lexer.TokIdent)
	if diag != nil {
		return nil, diag
	}
	c := &Call{Name: p.text(first)}
	if p.check(lexer.TokDot) {
		p.advance()
		method, diag := p.expect(lexer.TokIdent)
		if diag != nil {
			return nil, diag
		}
		c.Receiver = c.Name
		c.Name = p.text(method)
	}
	if !p.check(lexer.TokLParen) {
		return c, nil
	}
	c.Args, diag = p.parseArgs()
	return c, diag
}

// parseArgs parses a parenthesized, comma separated expression list.
func (p *Parser) parseArgs() ([]legacy.Expression, *lexer.Diagnostic) {
	if _, diag := p.expect(lexer.TokLParen); diag != nil {
		return nil, diag
	}
	var args []legacy.Expression
	if p.check(lexer.TokRParen) {
		p.advance()
		return args, nil
	}
	for {
		arg, diag := p.parseExpression(0)
		if diag != nil {
			return nil, diag
		}
		args = append(args, arg)
		if !p.check(lexer.TokComma) {
			break
		}
		p.advance()
	}
	if _, diag := p.expect(lexer.TokRParen); diag != nil {
		return nil, diag
	}
	return args, nil
}
