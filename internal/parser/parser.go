// internal/parser/parser.go
package parser

import (
	"fmt"
	"strings"

	"nova/internal/errors"
	"nova/internal/lexer"
)

type Parser struct {
	tokens      []lexer.Token
	current     int
	file        string
	sourceLines []string // Source lines for error reporting
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

func NewParserWithSource(tokens []lexer.Token, source string, file string) *Parser {
	return &Parser{
		tokens:      tokens,
		current:     0,
		file:        file,
		sourceLines: strings.Split(source, "\n"),
	}
}

// Parse consumes the token stream and returns the program statements.
// Syntax errors raised deeper in the descent surface here.
func (p *Parser) Parse() (stmts []Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*errors.NovaError); ok {
				stmts, err = nil, perr
				return
			}
			panic(r)
		}
	}()
	for !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	return stmts, nil
}

func (p *Parser) statement() Stmt {
	defer p.match(lexer.TokenSemicolon)

	if p.match(lexer.TokenLet) {
		nameTok := p.consume(lexer.TokenIdent, "Expect variable name")
		p.consume(lexer.TokenEqual, "Expect '=' after variable name")
		return &LetStmt{Name: nameTok.Lexeme, Value: p.expression()}
	}

	if p.check(lexer.TokenAsync) && p.checkNext(lexer.TokenFn) {
		p.advance()
		p.advance()
		return p.function(true)
	}

	if p.match(lexer.TokenFn) {
		return p.function(false)
	}

	if p.match(lexer.TokenClass) {
		return p.classStatement()
	}

	if p.match(lexer.TokenReturn) {
		stmt := &ReturnStmt{Line: p.previous().Line}
		if !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenSemicolon) && !p.isAtEnd() {
			stmt.Value = p.expression()
		}
		return stmt
	}

	if p.match(lexer.TokenImport) {
		return p.importStatement()
	}

	if p.match(lexer.TokenBreak) {
		return &BreakStmt{Line: p.previous().Line}
	}

	if p.match(lexer.TokenContinue) {
		return &ContinueStmt{Line: p.previous().Line}
	}

	return &ExpressionStmt{Expr: p.expression()}
}

func (p *Parser) function(isAsync bool) Stmt {
	nameTok := p.consume(lexer.TokenIdent, "Expect function name")
	p.consume(lexer.TokenLParen, "Expect '(' after function name")
	params := p.parameters()
	return &FunctionStmt{
		Name:    nameTok.Lexeme,
		Params:  params,
		Body:    p.expression(),
		IsAsync: isAsync,
	}
}

func (p *Parser) parameters() []string {
	var params []string
	for !p.check(lexer.TokenRParen) {
		tok := p.consume(lexer.TokenIdent, "Expect parameter name")
		params = append(params, tok.Lexeme)
		if !p.check(lexer.TokenRParen) {
			p.consume(lexer.TokenComma, "Expect ',' between parameters")
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")
	return params
}

func (p *Parser) classStatement() Stmt {
	nameTok := p.consume(lexer.TokenIdent, "Expect class name")
	stmt := &ClassStmt{Name: nameTok.Lexeme, Line: nameTok.Line}

	if p.match(lexer.TokenExtends) {
		super := p.consume(lexer.TokenIdent, "Expect superclass name")
		stmt.Superclass = super.Lexeme
	}

	p.consume(lexer.TokenLBrace, "Expect '{' before class body")
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		isStatic := p.match(lexer.TokenStatic)

		var nameTok lexer.Token
		if p.match(lexer.TokenConstructor) {
			nameTok = p.previous()
		} else {
			p.consume(lexer.TokenFn, "Expect method declaration in class body")
			if p.match(lexer.TokenConstructor) || p.match(lexer.TokenIdent) {
				nameTok = p.previous()
			} else {
				p.consume(lexer.TokenIdent, "Expect method name")
			}
		}
		name := nameTok.Lexeme
		if nameTok.Type == lexer.TokenConstructor {
			name = "constructor"
		}

		p.consume(lexer.TokenLParen, "Expect '(' after method name")
		method := MethodDecl{Name: name, Params: p.parameters(), Body: p.expression()}

		switch {
		case isStatic:
			stmt.Statics = append(stmt.Statics, method)
		case name == "constructor":
			if stmt.Constructor != nil {
				panic(p.errorAt(nameTok, "Class already has a constructor"))
			}
			stmt.Constructor = &method
		default:
			stmt.Methods = append(stmt.Methods, method)
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after class body")
	return stmt
}

func (p *Parser) importStatement() Stmt {
	pathTok := p.consume(lexer.TokenString, "Expect module path string after 'import'")
	stmt := &ImportStmt{Path: pathTok.Lexeme, Line: pathTok.Line}
	if p.match(lexer.TokenAs) {
		alias := p.consume(lexer.TokenIdent, "Expect alias name after 'as'")
		stmt.Alias = alias.Lexeme
	}
	return stmt
}

// --- expressions ---

func (p *Parser) expression() Expr {
	if p.match(lexer.TokenThrow) {
		line := p.previous().Line
		return &Throw{Value: p.expression(), Line: line}
	}
	return p.assignment()
}

func (p *Parser) assignment() Expr {
	expr := p.nullish()

	if p.match(lexer.TokenEqual) {
		value := p.assignment()
		p.checkAssignTarget(expr)
		return &Assign{Target: expr, Value: value}
	}

	// Compound assignments desugar to an assignment of a binary node.
	compound := map[lexer.TokenType]lexer.TokenType{
		lexer.TokenPlusEqual:  lexer.TokenPlus,
		lexer.TokenMinusEqual: lexer.TokenMinus,
		lexer.TokenStarEqual:  lexer.TokenStar,
		lexer.TokenSlashEqual: lexer.TokenSlash,
	}
	if op, ok := compound[p.peek().Type]; ok {
		opTok := p.advance()
		value := p.assignment()
		p.checkAssignTarget(expr)
		return &Assign{
			Target: expr,
			Value:  &Binary{Left: expr, Op: op, Right: value, Line: opTok.Line},
		}
	}

	return expr
}

func (p *Parser) checkAssignTarget(target Expr) {
	switch target.(type) {
	case *Identifier, *Property, *Index:
	default:
		panic(p.errorAt(p.previous(), "Invalid assignment target"))
	}
}

func (p *Parser) nullish() Expr {
	expr := p.logicalOr()
	for p.match(lexer.TokenNullish) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenNullish, Right: p.logicalOr(), Line: op.Line}
	}
	return expr
}

func (p *Parser) logicalOr() Expr {
	expr := p.logicalAnd()
	for p.match(lexer.TokenOr) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenOr, Right: p.logicalAnd(), Line: op.Line}
	}
	return expr
}

func (p *Parser) logicalAnd() Expr {
	expr := p.bitOr()
	for p.match(lexer.TokenAnd) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenAnd, Right: p.bitOr(), Line: op.Line}
	}
	return expr
}

func (p *Parser) bitOr() Expr {
	expr := p.bitXor()
	for p.match(lexer.TokenPipe) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenPipe, Right: p.bitXor(), Line: op.Line}
	}
	return expr
}

func (p *Parser) bitXor() Expr {
	expr := p.bitAnd()
	for p.match(lexer.TokenCaret) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenCaret, Right: p.bitAnd(), Line: op.Line}
	}
	return expr
}

func (p *Parser) bitAnd() Expr {
	expr := p.equality()
	for p.match(lexer.TokenAmpersand) {
		op := p.previous()
		expr = &Binary{Left: expr, Op: lexer.TokenAmpersand, Right: p.equality(), Line: op.Line}
	}
	return expr
}

func (p *Parser) equality() Expr {
	expr := p.comparison()
	for p.check(lexer.TokenDoubleEqual) || p.check(lexer.TokenNotEqual) {
		op := p.advance()
		expr = &Binary{Left: expr, Op: op.Type, Right: p.comparison(), Line: op.Line}
	}
	return expr
}

func (p *Parser) comparison() Expr {
	expr := p.shift()
	for p.check(lexer.TokenLT) || p.check(lexer.TokenGT) || p.check(lexer.TokenLE) || p.check(lexer.TokenGE) {
		op := p.advance()
		expr = &Binary{Left: expr, Op: op.Type, Right: p.shift(), Line: op.Line}
	}
	return expr
}

func (p *Parser) shift() Expr {
	expr := p.term()
	for p.check(lexer.TokenShiftLeft) || p.check(lexer.TokenShiftRight) {
		op := p.advance()
		expr = &Binary{Left: expr, Op: op.Type, Right: p.term(), Line: op.Line}
	}
	return expr
}

func (p *Parser) term() Expr {
	expr := p.factor()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		op := p.advance()
		expr = &Binary{Left: expr, Op: op.Type, Right: p.factor(), Line: op.Line}
	}
	return expr
}

func (p *Parser) factor() Expr {
	expr := p.power()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		op := p.advance()
		expr = &Binary{Left: expr, Op: op.Type, Right: p.power(), Line: op.Line}
	}
	return expr
}

// power is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2)
func (p *Parser) power() Expr {
	expr := p.unary()
	if p.match(lexer.TokenPower) {
		op := p.previous()
		return &Binary{Left: expr, Op: lexer.TokenPower, Right: p.power(), Line: op.Line}
	}
	return expr
}

func (p *Parser) unary() Expr {
	switch {
	case p.match(lexer.TokenBang), p.match(lexer.TokenNot):
		return &Unary{Op: lexer.TokenBang, Operand: p.unary()}
	case p.match(lexer.TokenMinus):
		return &Unary{Op: lexer.TokenMinus, Operand: p.unary()}
	case p.match(lexer.TokenTilde):
		return &Unary{Op: lexer.TokenTilde, Operand: p.unary()}
	case p.match(lexer.TokenAwait):
		return &Await{Operand: p.unary()}
	}
	return p.call()
}

func (p *Parser) call() Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(lexer.TokenLParen):
			expr = p.finishCall(expr)
		case p.match(lexer.TokenDot):
			name := p.consume(lexer.TokenIdent, "Expect property name after '.'")
			expr = &Property{Object: expr, Name: name.Lexeme, Line: name.Line}
		case p.match(lexer.TokenLBracket):
			keyTok := p.previous()
			key := p.expression()
			p.consume(lexer.TokenRBracket, "Expect ']' after index")
			expr = &Index{Object: expr, Key: key, Line: keyTok.Line}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee Expr) Expr {
	open := p.previous()
	var args []Expr
	for !p.check(lexer.TokenRParen) {
		args = append(args, p.expression())
		if !p.check(lexer.TokenRParen) {
			p.consume(lexer.TokenComma, "Expect ',' between arguments")
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after arguments")
	return &Call{Callee: callee, Args: args, Line: open.Line, Column: open.Column}
}

func (p *Parser) primary() Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		return &Literal{Value: tok.Number}
	case lexer.TokenString:
		p.advance()
		return &Literal{Value: tok.Lexeme}
	case lexer.TokenTrue:
		p.advance()
		return &Literal{Value: true}
	case lexer.TokenFalse:
		p.advance()
		return &Literal{Value: false}
	case lexer.TokenNull:
		p.advance()
		return &Literal{Value: nil}
	case lexer.TokenStringStart:
		p.advance()
		return p.stringInterp()
	case lexer.TokenIdent:
		if p.checkNext(lexer.TokenDoubleArrow) {
			name := p.advance()
			p.advance() // =>
			return &Lambda{Params: []string{name.Lexeme}, Body: p.expression()}
		}
		p.advance()
		return &Identifier{Name: tok.Lexeme, Line: tok.Line, Column: tok.Column}
	case lexer.TokenThis:
		p.advance()
		return &This{Line: tok.Line}
	case lexer.TokenSuper:
		p.advance()
		return &Super{Line: tok.Line}
	case lexer.TokenNew:
		p.advance()
		return p.newExpr()
	case lexer.TokenIf:
		p.advance()
		return p.ifExpr()
	case lexer.TokenWhile:
		p.advance()
		return p.whileExpr()
	case lexer.TokenFor:
		p.advance()
		return p.forExpr()
	case lexer.TokenTry:
		p.advance()
		return p.tryExpr()
	case lexer.TokenLParen:
		p.advance()
		if p.isLambdaParams() {
			return p.parenLambda()
		}
		expr := p.expression()
		p.consume(lexer.TokenRParen, "Expect ')' after expression")
		return expr
	case lexer.TokenLBracket:
		p.advance()
		return p.arrayLiteral()
	case lexer.TokenLBrace:
		p.advance()
		if p.isObjectLiteral() {
			return p.objectLiteral()
		}
		return p.blockExpr()
	}
	panic(p.errorAt(tok, fmt.Sprintf("Unexpected token '%s'", tok.Lexeme)))
}

func (p *Parser) stringInterp() Expr {
	interp := &StringInterp{}
	for {
		tok := p.advance()
		switch tok.Type {
		case lexer.TokenStringMiddle:
			interp.Parts = append(interp.Parts, InterpPart{Text: tok.Lexeme})
		case lexer.TokenInterpStart:
			expr := p.expression()
			p.consume(lexer.TokenInterpEnd, "Expect end of interpolation")
			interp.Parts = append(interp.Parts, InterpPart{Expr: expr})
		case lexer.TokenStringEnd:
			if tok.Lexeme != "" {
				interp.Parts = append(interp.Parts, InterpPart{Text: tok.Lexeme})
			}
			return interp
		default:
			panic(p.errorAt(tok, "Malformed interpolated string"))
		}
	}
}

// newExpr parses `new Class(args)` where the class position is an
// identifier or dotted path.
func (p *Parser) newExpr() Expr {
	var class Expr
	nameTok := p.consume(lexer.TokenIdent, "Expect class name after 'new'")
	class = &Identifier{Name: nameTok.Lexeme, Line: nameTok.Line, Column: nameTok.Column}
	for p.match(lexer.TokenDot) {
		prop := p.consume(lexer.TokenIdent, "Expect property name after '.'")
		class = &Property{Object: class, Name: prop.Lexeme, Line: prop.Line}
	}

	var args []Expr
	if p.match(lexer.TokenLParen) {
		for !p.check(lexer.TokenRParen) {
			args = append(args, p.expression())
			if !p.check(lexer.TokenRParen) {
				p.consume(lexer.TokenComma, "Expect ',' between arguments")
			}
		}
		p.consume(lexer.TokenRParen, "Expect ')' after arguments")
	}
	return &New{Class: class, Args: args}
}

func (p *Parser) ifExpr() Expr {
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before if body")
	then := p.blockExpr()

	var elseBranch Expr
	if p.match(lexer.TokenElse) {
		if p.match(lexer.TokenIf) {
			elseBranch = p.ifExpr()
		} else {
			p.consume(lexer.TokenLBrace, "Expect '{' before else body")
			elseBranch = p.blockExpr()
		}
	}
	return &If{Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileExpr() Expr {
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before while body")
	return &While{Cond: cond, Body: p.blockExpr()}
}

func (p *Parser) forExpr() Expr {
	nameTok := p.consume(lexer.TokenIdent, "Expect loop variable name")
	p.consume(lexer.TokenIn, "Expect 'in' after loop variable")
	iter := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before for body")
	return &For{Var: nameTok.Lexeme, Iter: iter, Body: p.blockExpr()}
}

func (p *Parser) tryExpr() Expr {
	p.consume(lexer.TokenLBrace, "Expect '{' after 'try'")
	try := &Try{Body: p.blockExpr()}

	if p.match(lexer.TokenCatch) {
		p.consume(lexer.TokenLParen, "Expect '(' after 'catch'")
		varTok := p.consume(lexer.TokenIdent, "Expect catch variable name")
		p.consume(lexer.TokenRParen, "Expect ')' after catch variable")
		p.consume(lexer.TokenLBrace, "Expect '{' before catch body")
		try.CatchVar = varTok.Lexeme
		try.Catch = p.blockExpr()
	}
	if p.match(lexer.TokenFinally) {
		p.consume(lexer.TokenLBrace, "Expect '{' before finally body")
		try.Finally = p.blockExpr()
	}
	if try.Catch == nil && try.Finally == nil {
		panic(p.errorAt(p.peek(), "Expect 'catch' or 'finally' after try block"))
	}
	return try
}

// blockExpr parses statements up to the closing brace. The opening
// brace has already been consumed.
func (p *Parser) blockExpr() Expr {
	block := &Block{}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		block.Stmts = append(block.Stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after block")
	return block
}

func (p *Parser) arrayLiteral() Expr {
	arr := &ArrayLit{}
	for !p.check(lexer.TokenRBracket) {
		arr.Elements = append(arr.Elements, p.expression())
		if !p.check(lexer.TokenRBracket) {
			p.consume(lexer.TokenComma, "Expect ',' between array elements")
		}
	}
	p.consume(lexer.TokenRBracket, "Expect ']' after array elements")
	return arr
}

func (p *Parser) objectLiteral() Expr {
	obj := &ObjectLit{}
	for !p.check(lexer.TokenRBrace) {
		var key string
		switch {
		case p.check(lexer.TokenString):
			key = p.advance().Lexeme
		case p.check(lexer.TokenIdent):
			key = p.advance().Lexeme
		default:
			panic(p.errorAt(p.peek(), "Expect object key"))
		}
		p.consume(lexer.TokenColon, "Expect ':' after object key")
		obj.Pairs = append(obj.Pairs, ObjectPair{Key: key, Value: p.expression()})
		if !p.check(lexer.TokenRBrace) {
			p.consume(lexer.TokenComma, "Expect ',' between object entries")
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after object literal")
	return obj
}

// isObjectLiteral peeks past an already-consumed '{' to separate
// object literals from blocks: an immediate '}' or a key ':' pair
// means an object.
func (p *Parser) isObjectLiteral() bool {
	if p.check(lexer.TokenRBrace) {
		return true
	}
	if p.check(lexer.TokenString) || p.check(lexer.TokenIdent) {
		return p.checkNext(lexer.TokenColon)
	}
	return false
}

// isLambdaParams looks ahead from an already-consumed '(' for an
// identifier list closed by ') =>'.
func (p *Parser) isLambdaParams() bool {
	i := p.current
	if p.tokens[i].Type != lexer.TokenRParen {
		for {
			if p.tokens[i].Type != lexer.TokenIdent {
				return false
			}
			i++
			if p.tokens[i].Type == lexer.TokenComma {
				i++
				continue
			}
			break
		}
	}
	if p.tokens[i].Type != lexer.TokenRParen {
		return false
	}
	return i+1 < len(p.tokens) && p.tokens[i+1].Type == lexer.TokenDoubleArrow
}

func (p *Parser) parenLambda() Expr {
	var params []string
	for !p.check(lexer.TokenRParen) {
		params = append(params, p.advance().Lexeme)
		if !p.check(lexer.TokenRParen) {
			p.consume(lexer.TokenComma, "Expect ',' between parameters")
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")
	p.consume(lexer.TokenDoubleArrow, "Expect '=>' after lambda parameters")
	return &Lambda{Params: params, Body: p.expression()}
}

// --- helpers ---

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.errorAt(p.peek(), fmt.Sprintf("%s (got '%s')", msg, p.peek().Lexeme)))
}

func (p *Parser) errorAt(tok lexer.Token, msg string) *errors.NovaError {
	err := errors.NewSyntaxError(msg, p.file, tok.Line, tok.Column)
	if p.sourceLines != nil && tok.Line > 0 && tok.Line <= len(p.sourceLines) {
		err = err.WithSource(p.sourceLines[tok.Line-1])
	}
	return err
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}
