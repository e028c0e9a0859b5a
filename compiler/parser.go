package compiler

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for Hlang
// ---------------------------------------------------------------------------

// Parser builds an AST from a token sequence. It stops at the first error.
type Parser struct {
	tokens []Token
	pos    int

	// line of the last consumed token
	prevLine int
}

// NewParser creates a parser over tokens. A missing EOF terminator is added.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: TokenEOF, Line: line})
	}
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses src into a program.
func Parse(src string, opts ...TokenizerOption) ([]Stmt, error) {
	tokens, err := Tokenize(src, opts...)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// curToken returns the current token.
func (p *Parser) curToken() Token {
	return p.tokens[p.pos]
}

// peekToken returns the token after the current one.
func (p *Parser) peekToken() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken().Type == t
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken().Type == t
}

// nextToken consumes and returns the current token. EOF is never consumed.
func (p *Parser) nextToken() Token {
	tok := p.curToken()
	if tok.Type != TokenEOF {
		p.pos++
		p.prevLine = tok.Line
	}
	return tok
}

// onNewLine reports whether the current token starts a line after the last
// consumed token. There is no statement separator, so a token that can open
// a statement ends the expression when it begins a new line.
func (p *Parser) onNewLine() bool {
	return p.curToken().Line > p.prevLine
}

// match consumes the current token if it has type t.
func (p *Parser) match(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes a token of type t or fails with "expected <what>".
func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.curTokenIs(t) {
		return p.nextToken(), nil
	}
	return Token{}, p.errorf("expected %s, got %s", what, describe(p.curToken()))
}

// expectName consumes a name. The word operators are accepted too, so
// "function add(a, b)" declares a function called add.
func (p *Parser) expectName(what string) (Token, error) {
	tok := p.curToken()
	if tok.Type != TokenIdentifier && !isOperatorWord(tok.Type) {
		return Token{}, p.errorf("expected %s, got %s", what, describe(tok))
	}
	p.nextToken()
	tok.Type = TokenIdentifier
	return tok, nil
}

// expectClosing consumes the delimiter closing open. A missing delimiter is
// reported on the line of the opening one.
func (p *Parser) expectClosing(t TokenType, what string, open Token) (Token, error) {
	if p.curTokenIs(t) {
		return p.nextToken(), nil
	}
	return Token{}, syntaxErrorf(open.Line, "expected %s, got %s", what, describe(p.curToken()))
}

// isOperatorWord reports whether t is an arithmetic word operator.
func isOperatorWord(t TokenType) bool {
	switch t {
	case TokenAdd, TokenSubtract, TokenMultiply, TokenDivide, TokenModulus:
		return true
	}
	return false
}

// errorf builds a syntax error at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return syntaxErrorf(p.curToken().Line, format, args...)
}

// describe renders a token for error messages.
func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenIndent:
		return "indentation"
	case TokenDedent:
		return "end of block"
	}
	return "'" + tok.Lexeme + "'"
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Parse parses the whole token sequence as a program.
func (p *Parser) Parse() ([]Stmt, error) {
	var stmts []Stmt
	for !p.curTokenIs(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseExpression parses a single expression that must span all tokens.
func (p *Parser) ParseExpression() (Expr, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, p.errorf("unexpected %s after expression", describe(p.curToken()))
	}
	return expr, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.curToken().Type {
	case TokenPrint:
		return p.parsePrint()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenFor:
		return p.parseForEach()
	case TokenFunction, TokenStatic, TokenPrivate:
		return p.parseFunction()
	case TokenClass:
		return p.parseClass()
	case TokenReturn:
		return p.parseReturn()
	case TokenBreak:
		return &Break{Keyword: p.nextToken()}, nil
	case TokenImport:
		return p.parseImport()
	case TokenExport:
		return p.parseExport()
	case TokenIndent:
		return nil, p.errorf("unexpected indentation")
	case TokenDedent:
		return nil, p.errorf("unexpected end of block")
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// parseBody parses an indented block or a single statement on the same
// line. A leading "then" is optional in both forms.
func (p *Parser) parseBody() (*Block, error) {
	start := p.curToken().Line
	p.match(TokenThen)

	if !p.curTokenIs(TokenIndent) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &Block{Start: start, Statements: []Stmt{stmt}}, nil
	}

	p.nextToken() // consume INDENT
	p.match(TokenThen)

	var stmts []Stmt
	for !p.curTokenIs(TokenDedent) && !p.curTokenIs(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(TokenDedent, "end of block"); err != nil {
		return nil, err
	}
	return &Block{Start: start, Statements: stmts}, nil
}

func (p *Parser) parsePrint() (Stmt, error) {
	keyword := p.nextToken()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Print{Keyword: keyword, Expr: expr}, nil
}

func (p *Parser) parseIf() (*If, error) {
	keyword := p.nextToken()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	stmt := &If{Keyword: keyword, Condition: cond, Then: then}
	if !p.match(TokenElse) {
		return stmt, nil
	}
	if p.curTokenIs(TokenIf) {
		elseIf, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseIf
		return stmt, nil
	}
	elseBody, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	stmt.Else = elseBody
	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	keyword := p.nextToken()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &While{Keyword: keyword, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForEach() (Stmt, error) {
	keyword := p.nextToken()
	if _, err := p.expect(TokenEach, "'each' after 'for'"); err != nil {
		return nil, err
	}
	item, err := p.expect(TokenIdentifier, "loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIn, "'in' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ForEach{Keyword: keyword, Item: item, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseFunction() (*Function, error) {
	fn := &Function{}
modifiers:
	for {
		switch {
		case p.match(TokenStatic):
			fn.IsStatic = true
		case p.match(TokenPrivate):
			fn.IsPrivate = true
		default:
			break modifiers
		}
	}

	if _, err := p.expect(TokenFunction, "'function'"); err != nil {
		return nil, err
	}
	name, err := p.expectName("function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	fn.Name = name
	fn.Params = params
	fn.Body = body.Statements
	return fn, nil
}

// parseParams parses "(a, b, c)".
func (p *Parser) parseParams() ([]Token, error) {
	open, err := p.expect(TokenLeftParen, "'(' before parameters")
	if err != nil {
		return nil, err
	}
	var params []Token
	if !p.curTokenIs(TokenRightParen) {
		for {
			param, err := p.expect(TokenIdentifier, "parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expectClosing(TokenRightParen, "')' after parameters", open); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseClass() (Stmt, error) {
	p.nextToken() // consume 'class'
	name, err := p.expect(TokenIdentifier, "class name")
	if err != nil {
		return nil, err
	}

	class := &Class{Name: name}
	if p.match(TokenExtends) {
		parent, err := p.expect(TokenIdentifier, "parent class name after 'extends'")
		if err != nil {
			return nil, err
		}
		class.Parent = &Variable{Name: parent}
	}

	if !p.match(TokenIndent) {
		return class, nil
	}
	for !p.curTokenIs(TokenDedent) && !p.curTokenIs(TokenEOF) {
		switch p.curToken().Type {
		case TokenFunction, TokenStatic, TokenPrivate:
		default:
			return nil, p.errorf("expected method declaration in class body, got %s", describe(p.curToken()))
		}
		method, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, method)
	}
	if _, err := p.expect(TokenDedent, "end of class body"); err != nil {
		return nil, err
	}
	return class, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	keyword := p.nextToken()
	stmt := &Return{Keyword: keyword}
	if p.onNewLine() {
		return stmt, nil
	}
	if startsExpression(p.curToken().Type) || isOperatorWord(p.curToken().Type) && p.peekTokenIs(TokenLeftParen) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	return stmt, nil
}

func (p *Parser) parseImport() (Stmt, error) {
	keyword := p.nextToken()
	name, err := p.expectName("imported name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFrom, "'from' after imported name"); err != nil {
		return nil, err
	}
	if !p.curTokenIs(TokenString) && !p.curTokenIs(TokenIdentifier) {
		return nil, p.errorf("expected module name, got %s", describe(p.curToken()))
	}
	return &Import{Keyword: keyword, Name: name, Source: p.nextToken()}, nil
}

func (p *Parser) parseExport() (Stmt, error) {
	keyword := p.nextToken()
	name, err := p.expectName("exported name")
	if err != nil {
		return nil, err
	}
	return &Export{Keyword: keyword, Name: name}, nil
}

// startsExpression reports whether a token can begin an expression.
func startsExpression(t TokenType) bool {
	switch t {
	case TokenNumber, TokenString, TokenIdentifier, TokenTrue, TokenFalse,
		TokenNothing, TokenThis, TokenParent, TokenLeftParen, TokenLeftBracket,
		TokenMinus, TokenNot, TokenLambda, TokenIncrement, TokenDecrement,
		TokenTypeKeyword, TokenComplement, TokenDefine:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Expressions (lowest to highest precedence)
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Expr, error) {
	if p.curTokenIs(TokenDefine) {
		p.nextToken()
		name, err := p.expect(TokenIdentifier, "variable name after 'define'")
		if err != nil {
			return nil, err
		}
		assign := &Assign{Name: name, Declare: true}
		if p.match(TokenTo) {
			value, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			assign.Value = value
		}
		return assign, nil
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(TokenTo) {
		return expr, nil
	}

	to := p.nextToken()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *Variable:
		return &Assign{Name: target.Name, Value: value}, nil
	case *Get:
		return &Set{Object: target.Object, Name: target.Name, Value: value}, nil
	case *Index:
		return &SetIndex{Object: target.Object, Bracket: target.Bracket, Index: target.Index, Value: value}, nil
	}
	return nil, syntaxErrorf(to.Line, "invalid assignment target")
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(TokenOr) {
		op := p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(TokenAnd) {
		op := p.nextToken()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

// parseEquality handles "is", "is not", "is equal to", "is not equal to",
// "not equal to" and "equal to".
func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.curToken()
		var op BinaryOp
		switch {
		case p.curTokenIs(TokenIs):
			p.nextToken()
			op = OpEqual
			if p.curTokenIs(TokenNot) {
				not := p.nextToken()
				if p.curTokenIs(TokenGreater) || p.curTokenIs(TokenLess) {
					cmp, err := p.parseComparison(left)
					if err != nil {
						return nil, err
					}
					left = &Unary{Operator: not, Right: cmp}
					continue
				}
				op = OpNotEqual
			}
			if p.match(TokenEqual) {
				p.match(TokenTo)
			}
		case p.curTokenIs(TokenNot) && p.peekTokenIs(TokenEqual):
			p.nextToken()
			p.nextToken()
			p.match(TokenTo)
			op = OpNotEqual
		case p.curTokenIs(TokenEqual):
			p.nextToken()
			p.match(TokenTo)
			op = OpEqual
		default:
			return left, nil
		}

		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Operator: opTok, Op: op, Right: right}
	}
}

// parseRelational handles "[is] greater than [or equal to]" and the "less"
// forms. "is" is only taken here when followed by greater/less.
func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if p.curTokenIs(TokenIs) && (p.peekTokenIs(TokenGreater) || p.peekTokenIs(TokenLess)) {
			p.nextToken()
		}
		if !p.curTokenIs(TokenGreater) && !p.curTokenIs(TokenLess) {
			return left, nil
		}
		left, err = p.parseComparison(left)
		if err != nil {
			return nil, err
		}
	}
}

// parseComparison parses "greater than [or equal to] right" (or the "less"
// form) with the current token on greater/less.
func (p *Parser) parseComparison(left Expr) (Expr, error) {
	opTok := p.nextToken()
	op := OpGreater
	if opTok.Type == TokenLess {
		op = OpLess
	}
	if _, err := p.expect(TokenThan, "'than' after '"+opTok.Lexeme+"'"); err != nil {
		return nil, err
	}

	// "or equal to" only when "or" is directly followed by "equal";
	// otherwise the "or" belongs to a logical expression.
	if p.curTokenIs(TokenOr) && p.peekTokenIs(TokenEqual) {
		p.nextToken()
		p.nextToken()
		p.match(TokenTo)
		if op == OpGreater {
			op = OpGreaterEqual
		} else {
			op = OpLessEqual
		}
	}

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &Binary{Left: left, Operator: opTok, Op: op, Right: right}, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.curToken().Type {
		case TokenAdd:
			op = OpAdd
		case TokenSubtract, TokenMinus:
			op = OpSubtract
		default:
			return left, nil
		}
		if p.endsExpression() {
			return left, nil
		}
		opTok := p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Operator: opTok, Op: op, Right: right}
	}
}

// endsExpression reports whether the infix operator at the current token
// starts the next statement instead: a '-' opening a line, or a word operator
// opening a line as the name of a call.
func (p *Parser) endsExpression() bool {
	if !p.onNewLine() {
		return false
	}
	return p.curTokenIs(TokenMinus) || p.peekTokenIs(TokenLeftParen)
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.curToken().Type {
		case TokenMultiply:
			op = OpMultiply
		case TokenDivide:
			op = OpDivide
		case TokenModulus:
			op = OpModulus
		default:
			return left, nil
		}
		if p.endsExpression() {
			return left, nil
		}
		opTok := p.nextToken()
		if op != OpModulus {
			p.match(TokenBy)
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Operator: opTok, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	switch p.curToken().Type {
	case TokenNot, TokenMinus:
		op := p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Operator: op, Right: right}, nil

	case TokenIncrement, TokenDecrement:
		op := p.nextToken()
		target, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *Variable, *Get, *Index:
		default:
			return nil, syntaxErrorf(op.Line, "expected variable, property or element after '%s'", op.Lexeme)
		}
		unary := &Unary{Operator: op, Right: target}
		if p.match(TokenBy) {
			amount, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			unary.Amount = amount
		}
		return unary, nil

	case TokenTypeKeyword, TokenComplement:
		op := p.nextToken()
		if _, err := p.expect(TokenOf, "'of' after '"+op.Lexeme+"'"); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Operator: op, Right: right}, nil
	}
	return p.parseCall()
}

// parseCall handles calls, property access and indexing, left to right.
func (p *Parser) parseCall() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.curToken()
		if (tok.Type == TokenLeftParen || tok.Type == TokenLeftBracket) && p.onNewLine() {
			return expr, nil
		}
		switch tok.Type {
		case TokenLeftParen:
			open := p.nextToken()
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			paren, err := p.expectClosing(TokenRightParen, "')' after arguments", open)
			if err != nil {
				return nil, err
			}
			expr = &Call{Callee: expr, Paren: paren, Arguments: args}

		case TokenDot:
			p.nextToken()
			name, err := p.expectName("property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &Get{Object: expr, Name: name}

		case TokenLeftBracket:
			bracket := p.nextToken()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectClosing(TokenRightBracket, "']' after index", bracket); err != nil {
				return nil, err
			}
			expr = &Index{Object: expr, Bracket: bracket, Index: index}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]Expr, error) {
	var args []Expr
	if p.curTokenIs(TokenRightParen) {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			return args, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.curToken()
	switch tok.Type {
	case TokenNumber, TokenString:
		p.nextToken()
		return &Literal{Token: tok, Value: tok.Literal}, nil
	case TokenTrue:
		p.nextToken()
		return &Literal{Token: tok, Value: true}, nil
	case TokenFalse:
		p.nextToken()
		return &Literal{Token: tok, Value: false}, nil
	case TokenNothing:
		p.nextToken()
		return &Literal{Token: tok, Value: nil}, nil
	case TokenIdentifier:
		p.nextToken()
		return &Variable{Name: tok}, nil
	case TokenThis:
		p.nextToken()
		return &This{Keyword: tok}, nil
	case TokenParent:
		p.nextToken()
		return &Parent{Keyword: tok}, nil
	case TokenLeftParen:
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectClosing(TokenRightParen, "')' after expression", tok); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenLeftBracket:
		return p.parseList()
	case TokenLambda:
		return p.parseLambda()
	case TokenAdd, TokenSubtract, TokenMultiply, TokenDivide, TokenModulus:
		// An operator word opening an operand can only be a callee.
		if p.peekTokenIs(TokenLeftParen) {
			p.nextToken()
			tok.Type = TokenIdentifier
			return &Variable{Name: tok}, nil
		}
	}
	return nil, p.errorf("expected expression, got %s", describe(tok))
}

func (p *Parser) parseList() (Expr, error) {
	bracket := p.nextToken()
	list := &List{Bracket: bracket}
	if !p.curTokenIs(TokenRightBracket) {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, elem)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expectClosing(TokenRightBracket, "']' after list elements", bracket); err != nil {
		return nil, err
	}
	return list, nil
}

// parseLambda parses "lambda(params)" followed by an indented block or a
// single expression whose value is returned.
func (p *Parser) parseLambda() (Expr, error) {
	keyword := p.nextToken()
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	lambda := &Lambda{Keyword: keyword, Params: params}

	if p.curTokenIs(TokenIndent) {
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		lambda.Body = body.Statements
		return lambda, nil
	}

	p.match(TokenThen)
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	lambda.Body = []Stmt{&Return{Keyword: keyword, Value: value}}
	return lambda, nil
}
