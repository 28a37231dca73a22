package lexer

import (
	"testing"

	"github.com/kmateuszssak/p4c/internal/testutil"
)

func tokenKinds(source string) []TokenKind {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	kinds := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func tokenTexts(source string) []string {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	var texts []string
	for _, t := range tokens {
		if t.Kind != TokEOF {
			texts = append(texts, t.Text([]byte(source)))
		}
	}
	return texts
}

func TestEmptyInput(t *testing.T) {
	testutil.SliceEqual(t, []TokenKind{TokEOF}, tokenKinds(""), "empty input")
	testutil.SliceEqual(t, []TokenKind{TokEOF}, tokenKinds("  \n\t"), "whitespace only")
}

func TestPunctuation(t *testing.T) {
	kinds := tokenKinds("[ ] ( ) , . :")
	expected := []TokenKind{
		TokLBracket, TokRBracket, TokLParen, TokRParen,
		TokComma, TokDot, TokColon, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestOperators(t *testing.T) {
	kinds := tokenKinds("+ - * / % & | ^ ~ ! < > <= >= == != << >> && ||")
	expected := []TokenKind{
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent,
		TokAmp, TokPipe, TokCaret, TokTilde, TokBang,
		TokLt, TokGt, TokLe, TokGe, TokEqEq, TokNe,
		TokShl, TokShr, TokAndAnd, TokOrOr, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestOperatorsWithoutSpaces(t *testing.T) {
	texts := tokenTexts("a<<2&&b!=c")
	testutil.SliceEqual(t, []string{"a", "<<", "2", "&&", "b", "!=", "c"}, texts, "token texts")
}

func TestNumbers(t *testing.T) {
	texts := tokenTexts("0 42 0x800 0XfF 0b101 16w0x800 8w255 4s3")
	expected := []string{"0", "42", "0x800", "0XfF", "0b101", "16w0x800", "8w255", "4s3"}
	testutil.SliceEqual(t, expected, texts, "token texts")
	for _, k := range tokenKinds("0x800 16w0x800") {
		if k != TokNumber && k != TokEOF {
			t.Errorf("kind = %v, want NUMBER", k)
		}
	}
}

func TestMalformedNumber(t *testing.T) {
	lexer := New([]byte("12abc"), nil)
	tokens, diags := lexer.Tokenize()
	testutil.Equal(t, TokError, tokens[0].Kind, "kind")
	testutil.Len(t, diags, 1, "diagnostics")
	testutil.Contains(t, diags[0].Message, "malformed number")
}

func TestIdentifiers(t *testing.T) {
	texts := tokenTexts("ipv4 standard_metadata _tmp vlan_tag2")
	testutil.SliceEqual(t, []string{"ipv4", "standard_metadata", "_tmp", "vlan_tag2"}, texts, "token texts")
}

func TestKeywords(t *testing.T) {
	kinds := tokenKinds("valid current true false and or not mask latest")
	expected := []TokenKind{
		TokKwValid, TokKwCurrent, TokKwTrue, TokKwFalse,
		TokKwAnd, TokKwOr, TokKwNot, TokKwMask, TokIdent, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestKeywordTableSorted(t *testing.T) {
	for i := 1; i < len(keywords); i++ {
		if keywords[i-1].text >= keywords[i].text {
			t.Errorf("keywords not sorted at %q", keywords[i].text)
		}
	}
}

func TestQuotedString(t *testing.T) {
	texts := tokenTexts(`"crc16" x`)
	testutil.SliceEqual(t, []string{`"crc16"`, "x"}, texts, "token texts")

	lexer := New([]byte(`"open`), nil)
	tokens, diags := lexer.Tokenize()
	testutil.Equal(t, TokError, tokens[0].Kind, "kind")
	testutil.Len(t, diags, 1, "diagnostics")
}

func TestUnexpectedCharacter(t *testing.T) {
	lexer := New([]byte("a @ b"), nil)
	tokens, diags := lexer.Tokenize()
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	testutil.SliceEqual(t, []TokenKind{TokIdent, TokError, TokIdent, TokEOF}, kinds, "token kinds")
	testutil.Len(t, diags, 1, "diagnostics")
	testutil.Equal(t, 2, diags[0].Span.Start, "span start")
}

func TestSpans(t *testing.T) {
	lexer := New([]byte("ipv4.ttl"), nil)
	tokens, _ := lexer.Tokenize()
	testutil.Equal(t, Span{Start: 0, End: 4}, tokens[0].Span, "ident span")
	testutil.Equal(t, Span{Start: 4, End: 5}, tokens[1].Span, "dot span")
	testutil.Equal(t, Span{Start: 5, End: 8}, tokens[2].Span, "field span")
}

func TestTokenKindString(t *testing.T) {
	testutil.Equal(t, "<<", TokShl.String())
	testutil.Equal(t, "valid", TokKwValid.String())
	testutil.Equal(t, "UNKNOWN", TokenKind(999).String())
	testutil.True(t, TokKwMask.IsKeyword(), "mask is a keyword")
	testutil.False(t, TokIdent.IsKeyword(), "ident is not a keyword")
}
