package compiler

import (
	"regexp"
	"unicode"
)

// keywords is the set of reserved words, covering both type specifiers
// and control-flow words.
var keywords = map[string]bool{
	"int":    true,
	"float":  true,
	"double": true,
	"string": true,
	"char":   true,
	"void":   true,
	"if":     true,
	"else":   true,
	"for":    true,
	"while":  true,
	"return": true,
}

// typeSpecifiers is the subset of keywords that can start a declaration
// or a function definition.
var typeSpecifiers = map[string]bool{
	"int":    true,
	"float":  true,
	"double": true,
	"string": true,
	"char":   true,
	"void":   true,
}

// Classification patterns for identifier/number runs. Overlaps are
// resolved by testing in a fixed order: keyword, identifier, number.
var (
	identPat  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberPat = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?)$`)
)

// twoCharOps are matched before any one-character operator.
var twoCharOps = []string{"==", "!=", "<=", ">=", "++", "--"}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(blankBlockComments(src)), pos: 0, line: 1}
}

// blankBlockComments replaces every /* ... */ region, delimiters
// included, with spaces of equal length. Newlines inside the comment are
// kept so the positions and line numbers of everything after it survive.
func blankBlockComments(src string) string {
	out := []rune(src)
	for i := 0; i < len(out); i++ {
		if out[i] != '/' || i+1 >= len(out) || out[i+1] != '*' {
			continue
		}
		j := i
		for j < len(out) {
			if out[j] == '*' && j+1 < len(out) && out[j+1] == '/' {
				j += 2
				break
			}
			j++
		}
		// An unterminated comment blanks to end of input.
		for k := i; k < j && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
		i = j - 1
	}
	return string(out)
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// scanToEndOfLine collects everything from the current position up to,
// but not including, the next newline.
func (l *Lexer) scanToEndOfLine() string {
	start := l.pos
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	return string(l.src[start:l.pos])
}

// scanString collects a string literal including both quotes. The scan is
// greedy and honours backslash escapes; an unterminated literal runs to
// end of input rather than failing.
func (l *Lexer) scanString() Token {
	line := l.line
	start := l.pos
	l.advance() // opening "
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\\' {
			l.advance()
			l.advance()
			continue
		}
		l.advance()
		if r == '"' {
			break
		}
	}
	return Token{Type: STRING, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// matchTwoCharOp reports the two-character operator at the current
// position, or "" when there is none.
func (l *Lexer) matchTwoCharOp() string {
	got := string([]rune{l.peek(), l.peek2()})
	for _, op := range twoCharOps {
		if got == op {
			return op
		}
	}
	return ""
}

func isRunChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

func isOneCharOp(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '<', '>', '=', '!':
		return true
	}
	return false
}

// scanRun collects a maximal identifier/number run and classifies it
// against the keyword set, the identifier pattern and the numeric
// pattern, in that order. A run matching none of them is UNDEFINED.
func (l *Lexer) scanRun() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isRunChar(l.peek()) {
		l.advance()
	}
	run := string(l.src[start:l.pos])
	switch {
	case keywords[run]:
		return Token{Type: KEYWORD, Lexeme: run, Line: line}
	case identPat.MatchString(run):
		return Token{Type: IDENTIFIER, Lexeme: run, Line: line}
	case numberPat.MatchString(run):
		return Token{Type: NUMBER, Lexeme: run, Line: line}
	default:
		return Token{Type: UNDEFINED, Lexeme: run, Line: line}
	}
}

// scanUnknown absorbs a maximal run of characters no other rule claims.
func (l *Lexer) scanUnknown() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if unicode.IsSpace(r) || isRunChar(r) || isOneCharOp(r) ||
			r == ';' || r == ',' || r == '(' || r == ')' || r == '{' || r == '}' ||
			r == '"' || r == '#' {
			break
		}
		l.advance()
	}
	return Token{Type: UNDEFINED, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// nextToken returns the next token, or ok=false at end of input.
func (l *Lexer) nextToken() (Token, bool) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{}, false
	}

	ch := l.peek()
	line := l.line

	if ch == '/' && l.peek2() == '/' {
		return Token{Type: COMMENT, Lexeme: l.scanToEndOfLine(), Line: line}, true
	}
	if ch == '"' {
		return l.scanString(), true
	}
	if op := l.matchTwoCharOp(); op != "" {
		l.advance()
		l.advance()
		return Token{Type: OPERATOR, Lexeme: op, Line: line}, true
	}
	if isOneCharOp(ch) {
		l.advance()
		return Token{Type: OPERATOR, Lexeme: string(ch), Line: line}, true
	}
	switch ch {
	case ';', ',':
		l.advance()
		return Token{Type: SEPARATOR, Lexeme: string(ch), Line: line}, true
	case '(', ')', '{', '}':
		l.advance()
		return Token{Type: PAREN, Lexeme: string(ch), Line: line}, true
	case '#':
		return Token{Type: PREPROCESSOR, Lexeme: l.scanToEndOfLine(), Line: line}, true
	}
	if isRunChar(ch) {
		return l.scanRun(), true
	}
	return l.scanUnknown(), true
}

// Tokenize scans src into its full token sequence. It is total: it never
// fails, and text matching no known pattern comes back as UNDEFINED
// tokens rather than being dropped.
func Tokenize(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, ok := l.nextToken()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
