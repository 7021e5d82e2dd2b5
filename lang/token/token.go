package token

// A Token represents a lexical token.
type Token int8

//nolint:revive
const (
	ILLEGAL Token = iota
	EOF

	LPAREN // (
	RPAREN // )
	SYMBOL // a run of symbol characters, e.g. foo, +, <=
	STRING // "..."

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens. Use Sprintf("%#v",
// tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok == LPAREN || tok == RPAREN {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL: "illegal token",
	EOF:     "end of file",
	LPAREN:  "(",
	RPAREN:  ")",
	SYMBOL:  "symbol",
	STRING:  "string literal",
}

// IsSymbolChar reports whether r belongs to LOL's symbol character class:
// ASCII alphanumeric or one of + - = <.
func IsSymbolChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '-', r == '=', r == '<':
		return true
	default:
		return false
	}
}

// IsWhitespace reports whether r is one of the four whitespace bytes the
// tokenizer skips in its NORMAL state: space, tab, CR or LF.
func IsWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// SymbolText re-derives the text of a SYMBOL token at the given offset by
// re-scanning the symbol character class forward: symbol AST nodes store
// only their starting offset, never a copy of their text.
func SymbolText(src []byte, offset uint32) string {
	end := offset
	for end < uint32(len(src)) && IsSymbolChar(rune(src[end])) {
		end++
	}
	return string(src[offset:end])
}
