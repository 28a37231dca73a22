// Package lexer provides tokenization for P4-14 expression text as it
// appears in program descriptions.
package lexer

import "fmt"

// Span is a half-open byte range [Start, End) of the source text.
type Span struct {
	Start int
	End   int
}

// Diagnostic is a lexical or syntax error at a span of the source text.
type Diagnostic struct {
	Span    Span
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("offset %d: %s", d.Span.Start, d.Message)
}

// Token is a token with kind and source span.
type Token struct {
	Kind TokenKind
	Span Span
}

// Text returns the token's text within source.
func (t Token) Text(source []byte) string {
	return string(source[t.Span.Start:t.Span.End])
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// === Special ===

	// TokError is a lexical error.
	TokError TokenKind = iota
	// TokEOF is end of input.
	TokEOF

	// === Identifiers and literals ===

	// TokIdent is an identifier.
	TokIdent
	// TokNumber is an integer literal, optionally width-prefixed (16w0x800).
	TokNumber
	// TokString is a quoted string literal.
	TokString

	// === Punctuation ===

	TokLBracket
	TokRBracket
	TokLParen
	TokRParen
	TokComma
	TokDot
	TokColon

	// === Operators ===

	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokLt
	TokGt
	TokLe
	TokGe
	TokEqEq
	TokNe
	TokShl
	TokShr
	TokAndAnd
	TokOrOr

	// === Keywords ===

	// TokKwValid is 'valid'.
	TokKwValid
	// TokKwCurrent is 'current'.
	TokKwCurrent
	// TokKwTrue is 'true'.
	TokKwTrue
	// TokKwFalse is 'false'.
	TokKwFalse
	// TokKwAnd is 'and'.
	TokKwAnd
	// TokKwOr is 'or'.
	TokKwOr
	// TokKwNot is 'not'.
	TokKwNot
	// TokKwMask is 'mask', used in select case labels.
	TokKwMask
)

var tokenNames = [...]string{
	TokError:     "ERROR",
	TokEOF:       "EOF",
	TokIdent:     "IDENT",
	TokNumber:    "NUMBER",
	TokString:    "STRING",
	TokLBracket:  "[",
	TokRBracket:  "]",
	TokLParen:    "(",
	TokRParen:    ")",
	TokComma:     ",",
	TokDot:       ".",
	TokColon:     ":",
	TokPlus:      "+",
	TokMinus:     "-",
	TokStar:      "*",
	TokSlash:     "/",
	TokPercent:   "%",
	TokAmp:       "&",
	TokPipe:      "|",
	TokCaret:     "^",
	TokTilde:     "~",
	TokBang:      "!",
	TokLt:        "<",
	TokGt:        ">",
	TokLe:        "<=",
	TokGe:        ">=",
	TokEqEq:      "==",
	TokNe:        "!=",
	TokShl:       "<<",
	TokShr:       ">>",
	TokAndAnd:    "&&",
	TokOrOr:      "||",
	TokKwValid:   "valid",
	TokKwCurrent: "current",
	TokKwTrue:    "true",
	TokKwFalse:   "false",
	TokKwAnd:     "and",
	TokKwOr:      "or",
	TokKwNot:     "not",
	TokKwMask:    "mask",
}

// String returns the token kind's spelling.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "UNKNOWN"
}

// IsKeyword returns true if this token is a keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= TokKwValid && k <= TokKwMask
}
