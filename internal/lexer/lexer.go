package lexer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/kmateuszssak/p4c/internal/types"
)

// Lexer tokenizes P4-14 expression text.
type Lexer struct {
	source      []byte
	pos         int
	diagnostics []Diagnostic
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		Logger: types.Logger{L: logger},
	}
	if l.TraceEnabled() {
		l.Trace("lexer initialized", slog.Int("bytes", len(source)))
	}
	return l
}

// Diagnostics returns a copy of all collected diagnostics.
func (l *Lexer) Diagnostics() []Diagnostic {
	return slices.Clone(l.diagnostics)
}

func (l *Lexer) traceToken(tok Token) {
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", tok.Kind.String()),
			slog.Int("start", tok.Span.Start),
			slog.Int("end", tok.Span.End))
	}
}

// Tokenize consumes all source text and returns the token stream
// along with any diagnostics generated during lexing.
func (l *Lexer) Tokenize() ([]Token, []Diagnostic) {
	tokens := make([]Token, 0, max(len(l.source)/3, 8))
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return tokens, l.diagnostics
}

// NextToken advances the lexer and returns the next token.
// Returns TokEOF when all input is consumed.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.pos

	b, ok := l.peek()
	if !ok {
		return l.token(TokEOF, start)
	}

	switch b {
	case '[':
		return l.single(TokLBracket)
	case ']':
		return l.single(TokRBracket)
	case '(':
		return l.single(TokLParen)
	case ')':
		return l.single(TokRParen)
	case ',':
		return l.single(TokComma)
	case '.':
		return l.single(TokDot)
	case ':':
		return l.single(TokColon)
	case '+':
		return l.single(TokPlus)
	case '-':
		return l.single(TokMinus)
	case '*':
		return l.single(TokStar)
	case '/':
		return l.single(TokSlash)
	case '%':
		return l.single(TokPercent)
	case '^':
		return l.single(TokCaret)
	case '~':
		return l.single(TokTilde)
	case '&':
		return l.pair('&', TokAndAnd, TokAmp)
	case '|':
		return l.pair('|', TokOrOr, TokPipe)
	case '=':
		if l.peekAtEquals(1, '=') {
			l.pos += 2
			return l.token(TokEqEq, start)
		}
	case '!':
		return l.pair('=', TokNe, TokBang)
	case '<':
		if l.peekAtEquals(1, '<') {
			l.pos += 2
			return l.token(TokShl, start)
		}
		return l.pair('=', TokLe, TokLt)
	case '>':
		if l.peekAtEquals(1, '>') {
			l.pos += 2
			return l.token(TokShr, start)
		}
		return l.pair('=', TokGe, TokGt)
	case '"':
		return l.scanQuotedString()
	}

	if isDigit(b) {
		return l.scanNumber()
	}
	if isIdentStart(b) {
		return l.scanIdentifierOrKeyword()
	}

	l.advance()
	l.error(l.spanFrom(start), fmt.Sprintf("unexpected character: %q", b))
	return l.token(TokError, start)
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	return l.source[l.pos], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) peekAtEquals(offset int, expected byte) bool {
	b, ok := l.peekAt(offset)
	return ok && b == expected
}

func (l *Lexer) advance() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	b := l.source[l.pos]
	l.pos++
	return b, true
}

func (l *Lexer) skipWhitespace() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			l.advance()
		} else {
			return
		}
	}
}

func (l *Lexer) error(span Span, message string) {
	l.diagnostics = append(l.diagnostics, Diagnostic{Span: span, Message: message})
}

func (l *Lexer) spanFrom(start int) Span {
	return Span{Start: start, End: l.pos}
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	tok := Token{Kind: kind, Span: l.spanFrom(start)}
	l.traceToken(tok)
	return tok
}

func (l *Lexer) single(kind TokenKind) Token {
	start := l.pos
	l.advance()
	return l.token(kind, start)
}

// pair scans a one or two character operator: double when the second
// character is next, otherwise single.
func (l *Lexer) pair(next byte, double, single TokenKind) Token {
	start := l.pos
	if l.peekAtEquals(1, next) {
		l.pos += 2
		return l.token(double, start)
	}
	l.advance()
	return l.token(single, start)
}

func (l *Lexer) scanIdentifierOrKeyword() Token {
	start := l.pos
	l.advance()
	for {
		b, ok := l.peek()
		if !ok || !(isIdentStart(b) || isDigit(b)) {
			break
		}
		l.advance()
	}
	if kind, ok := LookupKeyword(string(l.source[start:l.pos])); ok {
		return l.token(kind, start)
	}
	return l.token(TokIdent, start)
}

// scanNumber scans a literal such as 42, 0x800, 0b101 or 16w0x800.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	l.scanDigits()
	if b, ok := l.peek(); ok && (b == 'w' || b == 's') {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			l.advance()
			l.scanDigits()
		}
	}
	if b, ok := l.peek(); ok && (isIdentStart(b) || isDigit(b)) {
		for {
			b, ok := l.peek()
			if !ok || !(isIdentStart(b) || isDigit(b)) {
				break
			}
			l.advance()
		}
		l.error(l.spanFrom(start), "malformed number")
		return l.token(TokError, start)
	}
	return l.token(TokNumber, start)
}

func (l *Lexer) scanDigits() {
	valid := isDigit
	if b, _ := l.peek(); b == '0' {
		if next, ok := l.peekAt(1); ok {
			switch next {
			case 'x', 'X':
				valid = isHexDigit
				l.pos += 2
			case 'b', 'B':
				valid = isBinDigit
				l.pos += 2
			}
		}
	}
	for {
		b, ok := l.peek()
		if !ok || !valid(b) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanQuotedString() Token {
	start := l.pos
	l.advance() // consume opening quote

	for {
		b, ok := l.peek()
		if !ok {
			l.error(l.spanFrom(start), "unterminated string literal")
			return l.token(TokError, start)
		}
		l.advance()
		if b == '"' {
			return l.token(TokString, start)
		}
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isBinDigit(b byte) bool {
	return b == '0' || b == '1'
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}
