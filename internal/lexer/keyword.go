package lexer

import "sort"

// keywords is the sorted keyword table for binary search.
// IMPORTANT: This slice MUST remain sorted alphabetically by text.
var keywords = []struct {
	text string
	kind TokenKind
}{
	{"and", TokKwAnd},
	{"current", TokKwCurrent},
	{"false", TokKwFalse},
	{"mask", TokKwMask},
	{"not", TokKwNot},
	{"or", TokKwOr},
	{"true", TokKwTrue},
	{"valid", TokKwValid},
}

// LookupKeyword returns the keyword token kind for text, if any.
func LookupKeyword(text string) (TokenKind, bool) {
	idx := sort.Search(len(keywords), func(i int) bool {
		return keywords[i].text >= text
	})
	if idx < len(keywords) && keywords[idx].text == text {
		return keywords[idx].kind, true
	}
	return TokError, false
}
