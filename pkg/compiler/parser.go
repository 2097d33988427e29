package compiler

import "fmt"

// ParseError is the single structured failure a Parse call can return.
// Parsing never yields a partial tree: the first violated expectation
// short-circuits every enclosing production.
type ParseError struct {
	Line     int
	Message  string
	Expected string // the construct or token the parser was looking for
}

func (e *ParseError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("line %d: %s (expected %s)", e.Line, e.Message, e.Expected)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser consumes the flat token slice produced by Tokenize and builds an
// AST by recursive descent. One Parser value owns the cursor for exactly
// one Parse call.
//
// Grammar:
//
//	program    = (functionDecl | declStmt | PREPROCESSOR)* EOF
//	functionDecl = type IDENTIFIER "(" params ")" block
//	params     = (type IDENTIFIER ("," type IDENTIFIER)*)?
//	statement  = returnStmt | ifStmt | forStmt | whileStmt | block | declStmt | exprStmt
//	declStmt   = type declarator ("," declarator)* ";"
//	declarator = IDENTIFIER ("=" expression)?
//	expression = assignment
//	assignment = equality ("=" assignment)?          (right-associative)
//	equality   = relational (("==" | "!=") relational)*
//	relational = additive (("<" | ">" | "<=" | ">=") additive)*
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = prefix (("*" | "/" | "%") prefix)*
//	prefix     = ("++" | "--") prefix | postfix
//	postfix    = primary ("++" | "--")*
//	primary    = NUMBER | STRING | IDENTIFIER ("(" args ")")? | "(" expression ")"
type Parser struct {
	tokens []Token
	pos    int
}

// Parse builds the AST for tokens. Comment tokens are dropped up front;
// preprocessor lines become PreprocessorDirective nodes.
func Parse(tokens []Token) (*Program, error) {
	kept := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == COMMENT {
			continue
		}
		kept = append(kept, tok)
	}
	p := &Parser{tokens: kept}

	prog := &Program{}
	for p.peek().Type != EOF {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF, Line: p.lastLine()}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF, Line: p.lastLine()}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) lastLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].Line
}

// errf builds a ParseError at tok naming the expected construct.
func (p *Parser) errf(tok Token, expected string, format string, args ...any) *ParseError {
	return &ParseError{Line: tok.Line, Message: fmt.Sprintf(format, args...), Expected: expected}
}

// expectPunct consumes the current token if it is the given separator or
// paren, otherwise returns an error naming it.
func (p *Parser) expectPunct(lexeme string) (Token, *ParseError) {
	tok := p.advance()
	if (tok.Type != SEPARATOR && tok.Type != PAREN) || tok.Lexeme != lexeme {
		return tok, p.errf(tok, fmt.Sprintf("%q", lexeme), "unexpected %s %q", tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// atOp reports whether the current token is the given operator.
func (p *Parser) atOp(lexeme string) bool {
	tok := p.peek()
	return tok.Type == OPERATOR && tok.Lexeme == lexeme
}

// atPunct reports whether the current token is the given separator/paren.
func (p *Parser) atPunct(lexeme string) bool {
	tok := p.peek()
	return (tok.Type == SEPARATOR || tok.Type == PAREN) && tok.Lexeme == lexeme
}

// atKeyword reports whether the current token is the given keyword.
func (p *Parser) atKeyword(word string) bool {
	tok := p.peek()
	return tok.Type == KEYWORD && tok.Lexeme == word
}

// atTypeSpecifier reports whether the current token can start a
// declaration or function definition.
func (p *Parser) atTypeSpecifier() bool {
	tok := p.peek()
	return tok.Type == KEYWORD && typeSpecifiers[tok.Lexeme]
}

// parseTopLevel handles one program-level construct.
func (p *Parser) parseTopLevel() (Stmt, error) {
	tok := p.peek()
	switch {
	case tok.Type == PREPROCESSOR:
		p.advance()
		return &PreprocessorDirective{Text: tok.Lexeme, Line: tok.Line}, nil
	case p.atTypeSpecifier():
		// type IDENT "(" starts a function definition; anything else is a
		// global declaration statement.
		if p.peekNext().Type == IDENTIFIER && p.pos+2 < len(p.tokens) &&
			p.tokens[p.pos+2].Type == PAREN && p.tokens[p.pos+2].Lexeme == "(" {
			return p.parseFunction()
		}
		return p.parseDeclStmt()
	default:
		return nil, p.errf(tok, "function definition", "unexpected %s %q at top level", tok.Type, tok.Lexeme)
	}
}

// parseFunction handles  type IDENT "(" params ")" block
func (p *Parser) parseFunction() (Stmt, error) {
	retType := p.advance() // type specifier, checked by caller

	nameTok := p.advance()
	if nameTok.Type != IDENTIFIER {
		return nil, p.errf(nameTok, "function name", "unexpected %s %q", nameTok.Type, nameTok.Lexeme)
	}

	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var params []Param
	for !p.atPunct(")") {
		if len(params) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		if !p.atTypeSpecifier() {
			tok := p.peek()
			return nil, p.errf(tok, "parameter type", "unexpected %s %q", tok.Type, tok.Lexeme)
		}
		ptype := p.advance()
		pname := p.advance()
		if pname.Type != IDENTIFIER {
			return nil, p.errf(pname, "parameter name", "unexpected %s %q", pname.Type, pname.Lexeme)
		}
		params = append(params, Param{Type: ptype.Lexeme, Name: pname.Lexeme})
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	if !p.atPunct("{") {
		tok := p.peek()
		return nil, p.errf(tok, "function body", "unexpected %s %q", tok.Type, tok.Lexeme)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FuncDecl{
		ReturnType: retType.Lexeme,
		Name:       nameTok.Lexeme,
		Params:     params,
		Body:       body,
		Line:       retType.Line,
	}, nil
}

// parseBlock handles  "{" statement* "}"
// The loop is guaranteed to make forward progress: if a statement
// production somehow consumes no tokens, the cursor is force-advanced so
// malformed input can never hang the parser.
func (p *Parser) parseBlock() (*BlockStmt, error) {
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	block := &BlockStmt{}
	for !p.atPunct("}") {
		if p.peek().Type == EOF {
			return nil, p.errf(p.peek(), `"}"`, "unexpected end of input in block")
		}
		before := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		if p.pos == before {
			p.advance()
		}
	}
	p.advance() // consume "}"
	return block, nil
}

// parseStatement dispatches on the current token.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch {
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atPunct("{"):
		return p.parseBlock()
	case p.atTypeSpecifier():
		return p.parseDeclStmt()
	case tok.Type == PREPROCESSOR:
		p.advance()
		return &PreprocessorDirective{Text: tok.Lexeme, Line: tok.Line}, nil
	default:
		return p.parseExprStmt()
	}
}

// parseDeclStmt handles  type declarator ("," declarator)* ";"
func (p *Parser) parseDeclStmt() (Stmt, error) {
	typeTok := p.advance() // type specifier, checked by caller
	decl := &DeclStmt{Type: typeTok.Lexeme, Line: typeTok.Line}

	for {
		nameTok := p.advance()
		if nameTok.Type != IDENTIFIER {
			return nil, p.errf(nameTok, "variable name", "unexpected %s %q", nameTok.Type, nameTok.Lexeme)
		}
		d := &Declarator{Name: nameTok.Lexeme, Line: nameTok.Line}
		if p.atOp("=") {
			p.advance()
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			d.Init = init
		}
		decl.Decls = append(decl.Decls, d)
		if !p.atPunct(",") {
			break
		}
		p.advance()
	}

	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseReturn handles  "return" expression? ";"
func (p *Parser) parseReturn() (Stmt, error) {
	retTok := p.advance() // "return"
	stmt := &ReturnStmt{Line: retTok.Line}
	if !p.atPunct(";") {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Expr = expr
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseIf handles  "if" "(" expression ")" statement ("else" statement)?
func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // "if"
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then}
	if p.atKeyword("else") {
		p.advance()
		els, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

// parseFor handles  "for" "(" init? ";" cond? ";" post? ")" statement
// Each clause is independently optional. A declaration or expression init
// clause consumes its own terminating ";".
func (p *Parser) parseFor() (Stmt, error) {
	p.advance() // "for"
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	stmt := &ForStmt{}

	switch {
	case p.atPunct(";"):
		p.advance()
	case p.atTypeSpecifier():
		init, err := p.parseDeclStmt()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		stmt.Init = &ExprStmt{Expr: expr}
	}

	if !p.atPunct(";") {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	if !p.atPunct(")") {
		post, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Post = post
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// parseWhile handles  "while" "(" expression ")" statement
func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // "while"
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body}, nil
}

// parseExprStmt handles  expression ";"
func (p *Parser) parseExprStmt() (Stmt, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles right-associative "=". Whether the target is
// assignable is a semantic question, not a grammatical one.
func (p *Parser) parseAssignment() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if p.atOp("=") {
		p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{Target: left, Value: value}, nil
	}
	return left, nil
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.atOp("==") || p.atOp("!=") {
		op := p.advance().Lexeme
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseRelational handles < > <= >=
func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.atOp("<") || p.atOp(">") || p.atOp("<=") || p.atOp(">=") {
		op := p.advance().Lexeme
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") {
		op := p.advance().Lexeme
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles * / %
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for p.atOp("*") || p.atOp("/") || p.atOp("%") {
		op := p.advance().Lexeme
		right, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parsePrefix handles ++x and --x
func (p *Parser) parsePrefix() (Expr, error) {
	if p.atOp("++") || p.atOp("--") {
		op := p.advance().Lexeme
		operand, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return &PrefixExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles x++ and x--
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.atOp("++") || p.atOp("--") {
		op := p.advance().Lexeme
		expr = &PostfixExpr{Op: op, Operand: expr}
	}
	return expr, nil
}

// parsePrimary handles literals, identifiers, calls and parenthesized
// sub-expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &Literal{Value: tok.Lexeme, Line: tok.Line}, nil
	case STRING:
		p.advance()
		return &StringLit{Value: unquote(tok.Lexeme), Line: tok.Line}, nil
	case IDENTIFIER:
		p.advance()
		if p.atPunct("(") {
			return p.parseCallArgs(tok)
		}
		return &Ident{Name: tok.Lexeme, Line: tok.Line}, nil
	case PAREN:
		if tok.Lexeme == "(" {
			p.advance()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
	}
	return nil, p.errf(tok, "expression", "unexpected %s %q", tok.Type, tok.Lexeme)
}

// parseCallArgs handles the "(" args ")" tail of a call; the callee
// identifier has already been consumed.
func (p *Parser) parseCallArgs(nameTok Token) (Expr, error) {
	p.advance() // "("
	call := &CallExpr{Name: nameTok.Lexeme, Line: nameTok.Line}
	for !p.atPunct(")") {
		if len(call.Args) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	p.advance() // ")"
	return call, nil
}

// unquote strips the surrounding double quotes from a string lexeme.
// Escape sequences inside are kept as written.
func unquote(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' && lexeme[len(lexeme)-1] == '"' {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
