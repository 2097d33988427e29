package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input, never emitted by Tokenize

	PREPROCESSOR // whole '#...' line, captured verbatim
	KEYWORD      // type specifier or control keyword
	IDENTIFIER   // variable / function name
	NUMBER       // integer or floating literal, decimal or hex
	STRING       // string literal "..."
	OPERATOR     // arithmetic, comparison or assignment operator
	SEPARATOR    // ; ,
	PAREN        // ( ) { }
	COMMENT      // whole '//...' line comment
	UNDEFINED    // character run matching no known pattern
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:          "EOF",
	PREPROCESSOR: "PREPROCESSOR",
	KEYWORD:      "KEYWORD",
	IDENTIFIER:   "IDENTIFIER",
	NUMBER:       "NUMBER",
	STRING:       "STRING",
	OPERATOR:     "OPERATOR",
	SEPARATOR:    "SEPARATOR",
	PAREN:        "PAREN",
	COMMENT:      "COMMENT",
	UNDEFINED:    "UNDEFINED",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by Tokenize.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
