// Package parser builds the program tree (package ast) from the lexer's
// token stream via recursive descent with a precedence-climbing expression
// core, grounded on the teacher parser's match/consume/peek helper shape
// and its standalone operator-precedence table.
package parser

import (
	"strconv"

	"egg/internal/ast"
	"egg/internal/eggerr"
	"egg/internal/lexer"
	"egg/internal/source"
	"egg/internal/types"
	"egg/internal/value"
)

type opInfo struct {
	prec    int
	logical bool
	op      string
}

var binaryOps = map[lexer.TokenType]opInfo{
	lexer.TokenQQ:      {1, true, "??"},
	lexer.TokenOrOr:    {2, true, "||"},
	lexer.TokenAndAnd:  {3, true, "&&"},
	lexer.TokenEq:      {4, false, "=="},
	lexer.TokenNotEq:   {4, false, "!="},
	lexer.TokenLT:      {5, false, "<"},
	lexer.TokenLE:      {5, false, "<="},
	lexer.TokenGT:      {5, false, ">"},
	lexer.TokenGE:      {5, false, ">="},
	lexer.TokenPipe:    {6, false, "|"},
	lexer.TokenCaret:   {7, false, "^"},
	lexer.TokenAmp:     {8, false, "&"},
	lexer.TokenShl:     {9, false, "<<"},
	lexer.TokenShr:     {9, false, ">>"},
	lexer.TokenUShr:    {9, false, ">>>"},
	lexer.TokenPlus:    {10, false, "+"},
	lexer.TokenMinus:   {10, false, "-"},
	lexer.TokenStar:    {11, false, "*"},
	lexer.TokenSlash:   {11, false, "/"},
	lexer.TokenPercent:  {11, false, "%"},
}

var assignOps = map[lexer.TokenType]string{
	lexer.TokenAssign:    "=",
	lexer.TokenPlusEq:    "+=",
	lexer.TokenMinusEq:   "-=",
	lexer.TokenStarEq:    "*=",
	lexer.TokenSlashEq:   "/=",
	lexer.TokenPercentEq: "%=",
	lexer.TokenAmpEq:     "&=",
	lexer.TokenPipeEq:    "|=",
	lexer.TokenCaretEq:   "^=",
	lexer.TokenShlEq:     "<<=",
	lexer.TokenShrEq:     ">>=",
	lexer.TokenUShrEq:    ">>>=",
}

type Parser struct {
	resource string
	tokens   []lexer.Token
	pos      int
	Errors   []*eggerr.EggError
}

func NewParser(resource string, tokens []lexer.Token) *Parser {
	return &Parser{resource: resource, tokens: tokens}
}

func (p *Parser) Parse() *ast.Block {
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmts = append(stmts, p.statement())
	}
	return &ast.Block{Stmts: stmts}
}

// --- token plumbing ---

func (p *Parser) peek() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) atEnd() bool        { return p.peek().Type == lexer.TokenEOF }
func (p *Parser) loc() source.Location { return p.peek().Loc }

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *Parser) checkAt(offset int, t lexer.TokenType) bool {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return false
	}
	return p.tokens[i].Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t lexer.TokenType, what string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf("expected %s", what)
	return p.peek()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.Errors = append(p.Errors, eggerr.New(eggerr.SyntaxError, p.loc(), format, args...))
}

// --- types ---

func (p *Parser) parseType() *types.Type {
	name := p.consume(lexer.TokenIdent, "type name").Lexeme
	var t *types.Type
	switch name {
	case "int":
		t = types.IntT
	case "float":
		t = types.FloatT
	case "bool":
		t = types.BoolT
	case "string":
		t = types.StringT
	case "void":
		t = types.VoidT
	case "object", "array":
		t = types.ObjectT
	case "type":
		t = types.TypeT
	case "any":
		t = types.Any
	default:
		t = types.AnyQ
	}
	if p.match(lexer.TokenLBracket) {
		p.consume(lexer.TokenRBracket, "]")
		t = types.ObjectT
	}
	if p.match(lexer.TokenQuestion) {
		t = t.Nullable()
	}
	return t
}

// exceptionType maps a catch clause's bare type name to a runtime type, the
// same way parseType does for declarations: `catch (string e)` matches a
// thrown string directly, `catch (object e)` (or any unrecognised name)
// matches the vanilla-dictionary exceptions the runtime itself raises.
func exceptionType(name string) *types.Type {
	switch name {
	case "int":
		return types.IntT
	case "float":
		return types.FloatT
	case "bool":
		return types.BoolT
	case "string":
		return types.StringT
	default:
		return types.ObjectT
	}
}

// --- statements ---

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.check(lexer.TokenLBrace):
		return p.block()
	case p.check(lexer.TokenVar):
		return p.varDeclStmt()
	case p.check(lexer.TokenIf):
		return p.ifStmt()
	case p.check(lexer.TokenWhile):
		return p.whileStmt()
	case p.check(lexer.TokenDo):
		return p.doStmt()
	case p.check(lexer.TokenFor):
		return p.forStmt()
	case p.check(lexer.TokenSwitch):
		return p.switchStmt()
	case p.check(lexer.TokenTry):
		return p.tryStmt()
	case p.check(lexer.TokenThrow):
		return p.throwStmt()
	case p.check(lexer.TokenReturn):
		return p.returnStmt()
	case p.check(lexer.TokenYield):
		return p.yieldStmt()
	case p.check(lexer.TokenBreak):
		loc := p.loc()
		p.advance()
		p.consume(lexer.TokenSemi, "';'")
		return &ast.Break{Base: ast.NewBase(loc)}
	case p.check(lexer.TokenContinue):
		loc := p.loc()
		p.advance()
		p.consume(lexer.TokenSemi, "';'")
		return &ast.Continue{Base: ast.NewBase(loc)}
	case p.check(lexer.TokenFunction) || p.check(lexer.TokenGenerator):
		return p.functionDef()
	default:
		s := p.simpleStmt()
		p.consume(lexer.TokenSemi, "';'")
		return s
	}
}

func (p *Parser) block() *ast.Block {
	loc := p.loc()
	p.consume(lexer.TokenLBrace, "'{'")
	var stmts []ast.Stmt
	for !p.check(lexer.TokenRBrace) && !p.atEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.Block{Stmts: stmts, Base: ast.NewBase(loc)}
}

func (p *Parser) varDeclStmt() ast.Stmt {
	d := p.varDeclNoSemi()
	p.consume(lexer.TokenSemi, "';'")
	return d
}

func (p *Parser) varDeclNoSemi() *ast.Declare {
	loc := p.loc()
	p.consume(lexer.TokenVar, "'var'")
	name := p.consume(lexer.TokenIdent, "variable name").Lexeme
	var typ *types.Type
	if p.match(lexer.TokenColon) {
		typ = p.parseType()
	}
	var init ast.Expr
	if p.match(lexer.TokenAssign) {
		init = p.expression()
	}
	return &ast.Declare{Name: name, Type: typ, Init: init, Base: ast.NewBase(loc)}
}

func (p *Parser) condition() ast.Expr {
	if p.check(lexer.TokenVar) {
		loc := p.loc()
		p.advance()
		name := p.consume(lexer.TokenIdent, "variable name").Lexeme
		var typ *types.Type
		if p.match(lexer.TokenColon) {
			typ = p.parseType()
		}
		p.consume(lexer.TokenAssign, "'='")
		expr := p.expression()
		return &ast.Guard{Name: name, Type: typ, Expr: expr, Base: ast.NewBase(loc)}
	}
	return p.expression()
}

func (p *Parser) ifStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	p.consume(lexer.TokenLParen, "'('")
	cond := p.condition()
	p.consume(lexer.TokenRParen, "')'")
	then := p.statement()
	var els ast.Stmt
	if p.match(lexer.TokenElse) {
		els = p.statement()
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Base: ast.NewBase(loc)}
}

func (p *Parser) whileStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	p.consume(lexer.TokenLParen, "'('")
	cond := p.condition()
	p.consume(lexer.TokenRParen, "')'")
	body := p.statement()
	return &ast.While{Cond: cond, Body: body, Base: ast.NewBase(loc)}
}

func (p *Parser) doStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	body := p.statement()
	p.consume(lexer.TokenWhile, "'while'")
	p.consume(lexer.TokenLParen, "'('")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	p.consume(lexer.TokenSemi, "';'")
	return &ast.Do{Body: body, Cond: cond, Base: ast.NewBase(loc)}
}

func (p *Parser) forStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	p.consume(lexer.TokenLParen, "'('")

	if p.check(lexer.TokenVar) {
		save := p.pos
		p.advance()
		name := p.consume(lexer.TokenIdent, "variable name").Lexeme
		var typ *types.Type
		if p.match(lexer.TokenColon) {
			typ = p.parseType()
		}
		if p.match(lexer.TokenIn) {
			coll := p.expression()
			p.consume(lexer.TokenRParen, "')'")
			body := p.statement()
			return &ast.Foreach{VarName: name, VarType: typ, Coll: coll, Body: body, Base: ast.NewBase(loc)}
		}
		p.pos = save
	}

	var pre ast.Stmt
	if !p.check(lexer.TokenSemi) {
		if p.check(lexer.TokenVar) {
			pre = p.varDeclNoSemi()
		} else {
			pre = p.simpleStmt()
		}
	}
	p.consume(lexer.TokenSemi, "';'")
	var cond ast.Expr
	if !p.check(lexer.TokenSemi) {
		cond = p.expression()
	}
	p.consume(lexer.TokenSemi, "';'")
	var post ast.Stmt
	if !p.check(lexer.TokenRParen) {
		post = p.simpleStmt()
	}
	p.consume(lexer.TokenRParen, "')'")
	body := p.statement()
	return &ast.For{Pre: pre, Cond: cond, Post: post, Body: body, Base: ast.NewBase(loc)}
}

func (p *Parser) switchStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	p.consume(lexer.TokenLParen, "'('")
	subject := p.expression()
	p.consume(lexer.TokenRParen, "')'")
	p.consume(lexer.TokenLBrace, "'{'")
	var cases []ast.Case
	for p.check(lexer.TokenCase) || p.check(lexer.TokenDefault) {
		var values []ast.Expr
		if p.match(lexer.TokenCase) {
			values = append(values, p.expression())
			for p.match(lexer.TokenComma) {
				values = append(values, p.expression())
			}
		} else {
			p.advance() // default
		}
		p.consume(lexer.TokenColon, "':'")
		var stmts []ast.Stmt
		for !p.check(lexer.TokenCase) && !p.check(lexer.TokenDefault) && !p.check(lexer.TokenRBrace) {
			stmts = append(stmts, p.statement())
		}
		cases = append(cases, ast.Case{Values: values, Block: &ast.Block{Stmts: stmts}})
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.Switch{Subject: subject, Cases: cases, Base: ast.NewBase(loc)}
}

func (p *Parser) tryStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	body := p.block()
	var catches []ast.Catch
	for p.check(lexer.TokenCatch) {
		p.advance()
		p.consume(lexer.TokenLParen, "'('")
		var name string
		var typ *types.Type
		if !p.check(lexer.TokenRParen) {
			first := p.consume(lexer.TokenIdent, "identifier").Lexeme
			if p.check(lexer.TokenIdent) {
				typ = exceptionType(first)
				name = p.advance().Lexeme
			} else {
				name = first
			}
		}
		p.consume(lexer.TokenRParen, "')'")
		cbody := p.block()
		catches = append(catches, ast.Catch{Name: name, Type: typ, Body: cbody})
	}
	var finally ast.Stmt
	if p.match(lexer.TokenFinally) {
		finally = p.block()
	}
	return &ast.Try{Body: body, Catches: catches, Finally: finally, Base: ast.NewBase(loc)}
}

func (p *Parser) throwStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	if p.match(lexer.TokenSemi) {
		return &ast.Throw{Expr: nil, Base: ast.NewBase(loc)}
	}
	e := p.expression()
	p.consume(lexer.TokenSemi, "';'")
	return &ast.Throw{Expr: e, Base: ast.NewBase(loc)}
}

func (p *Parser) returnStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	if p.match(lexer.TokenSemi) {
		return &ast.Return{Expr: nil, Base: ast.NewBase(loc)}
	}
	e := p.expression()
	p.consume(lexer.TokenSemi, "';'")
	return &ast.Return{Expr: e, Base: ast.NewBase(loc)}
}

func (p *Parser) yieldStmt() ast.Stmt {
	loc := p.loc()
	p.advance()
	e := p.expression()
	p.consume(lexer.TokenSemi, "';'")
	return &ast.Yield{Expr: e, Base: ast.NewBase(loc)}
}

func (p *Parser) functionDef() ast.Stmt {
	loc := p.loc()
	isGen := p.check(lexer.TokenGenerator)
	p.advance() // function | generator
	name := p.consume(lexer.TokenIdent, "function name").Lexeme
	p.consume(lexer.TokenLParen, "'('")
	var params []ast.Param
	for !p.check(lexer.TokenRParen) {
		variadic := p.checkAt(0, lexer.TokenDot) && p.checkAt(1, lexer.TokenDot) && p.checkAt(2, lexer.TokenDot)
		if variadic {
			p.advance()
			p.advance()
			p.advance()
		}
		pname := p.consume(lexer.TokenIdent, "parameter name").Lexeme
		var ptype *types.Type
		if p.match(lexer.TokenColon) {
			ptype = p.parseType()
		}
		params = append(params, ast.Param{Name: pname, Type: ptype, Variadic: variadic})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "')'")
	var ret *types.Type
	if p.match(lexer.TokenColon) {
		ret = p.parseType()
	}
	body := p.block()
	return &ast.FunctionDef{Name: name, Params: params, ReturnType: ret, Body: body, IsGenerator: isGen, Base: ast.NewBase(loc)}
}

// simpleStmt parses an assignment, a mutate (++/--), or a bare expression
// statement, without consuming a trailing ';' — used both at top level
// (which consumes the ';' itself) and inside a for-loop's init/post
// clauses (which don't have one).
func (p *Parser) simpleStmt() ast.Stmt {
	loc := p.loc()
	expr := p.expression()
	if p.check(lexer.TokenInc) || p.check(lexer.TokenDec) {
		op := "++"
		if p.peek().Type == lexer.TokenDec {
			op = "--"
		}
		p.advance()
		return &ast.Mutate{Operator: op, Target: expr, Base: ast.NewBase(loc)}
	}
	if op, ok := assignOps[p.peek().Type]; ok {
		p.advance()
		val := p.expression()
		return &ast.Assign{Operator: op, Target: expr, Value: val, Base: ast.NewBase(loc)}
	}
	return &ast.ExprStmt{Expr: expr, Base: ast.NewBase(loc)}
}

// --- expressions ---

func (p *Parser) expression() ast.Expr { return p.ternary() }

func (p *Parser) ternary() ast.Expr {
	cond := p.binary(1)
	if p.match(lexer.TokenQuestion) {
		loc := p.loc()
		then := p.expression()
		p.consume(lexer.TokenColon, "':'")
		els := p.expression()
		return &ast.Ternary{Cond: cond, Then: then, Else: els, Base: ast.NewBase(loc)}
	}
	return cond
}

func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	for {
		info, ok := binaryOps[p.peek().Type]
		if !ok || info.prec < minPrec {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.binary(info.prec + 1)
		if info.logical {
			left = &ast.Logical{Operator: info.op, Left: left, Right: right, Base: ast.NewBase(loc)}
		} else {
			left = &ast.Binary{Operator: info.op, Left: left, Right: right, Base: ast.NewBase(loc)}
		}
	}
}

func (p *Parser) unary() ast.Expr {
	loc := p.loc()
	switch p.peek().Type {
	case lexer.TokenMinus:
		p.advance()
		return &ast.Unary{Operator: "-", Operand: p.unary(), Base: ast.NewBase(loc)}
	case lexer.TokenBang:
		p.advance()
		return &ast.Unary{Operator: "!", Operand: p.unary(), Base: ast.NewBase(loc)}
	case lexer.TokenTilde:
		p.advance()
		return &ast.Unary{Operator: "~", Operand: p.unary(), Base: ast.NewBase(loc)}
	case lexer.TokenAmp:
		p.advance()
		return &ast.Unary{Operator: "&", Operand: p.unary(), Base: ast.NewBase(loc)}
	case lexer.TokenStar:
		p.advance()
		return &ast.Unary{Operator: "*", Operand: p.unary(), Base: ast.NewBase(loc)}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		loc := p.loc()
		switch {
		case p.match(lexer.TokenDot):
			name := p.consume(lexer.TokenIdent, "property name").Lexeme
			expr = &ast.Dot{Object: expr, Name: name, Base: ast.NewBase(loc)}
		case p.match(lexer.TokenLBracket):
			idx := p.expression()
			p.consume(lexer.TokenRBracket, "']'")
			expr = &ast.Brackets{Object: expr, Index: idx, Base: ast.NewBase(loc)}
		case p.match(lexer.TokenLParen):
			args := p.args()
			markAssertPredicate(expr, args)
			expr = &ast.Call{Callee: expr, Args: args, Base: ast.NewBase(loc)}
		default:
			return expr
		}
	}
}

// markAssertPredicate flags `assert(a >= b)`'s argument so the executor can
// annotate a failing assertion's exception with `left`/`operator`/`right`
// instead of just "assertion failed".
func markAssertPredicate(callee ast.Expr, args []ast.Arg) {
	id, ok := callee.(*ast.Identifier)
	if !ok || id.Name != "assert" || len(args) != 1 {
		return
	}
	if bin, ok := args[0].Value.(*ast.Binary); ok {
		bin.Predicate = true
	}
}

func (p *Parser) args() []ast.Arg {
	var args []ast.Arg
	for !p.check(lexer.TokenRParen) {
		args = append(args, ast.Arg{Value: p.expression()})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "')'")
	return args
}

func (p *Parser) primary() ast.Expr {
	loc := p.loc()
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenInt:
		n, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.Literal{Value: value.Int(n), Base: ast.NewBase(loc)}
	case lexer.TokenFloat:
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.Literal{Value: value.Float(f), Base: ast.NewBase(loc)}
	case lexer.TokenString:
		return &ast.Literal{Value: value.StrOf(tok.Literal.(string)), Base: ast.NewBase(loc)}
	case lexer.TokenTrue:
		return &ast.Literal{Value: value.True, Base: ast.NewBase(loc)}
	case lexer.TokenFalse:
		return &ast.Literal{Value: value.False, Base: ast.NewBase(loc)}
	case lexer.TokenNull:
		return &ast.Literal{Value: value.Null, Base: ast.NewBase(loc)}
	case lexer.TokenVoid:
		return &ast.Literal{Value: value.Void, Base: ast.NewBase(loc)}
	case lexer.TokenIdent:
		return &ast.Identifier{Name: tok.Lexeme, Base: ast.NewBase(loc)}
	case lexer.TokenLParen:
		e := p.expression()
		p.consume(lexer.TokenRParen, "')'")
		return e
	case lexer.TokenLBracket:
		return p.arrayLit(loc)
	case lexer.TokenLBrace:
		return p.objectLit(loc)
	default:
		p.errorf("unexpected token %s", tok.Type)
		return &ast.Literal{Value: value.Void, Base: ast.NewBase(loc)}
	}
}

func (p *Parser) arrayLit(loc source.Location) ast.Expr {
	var elems []ast.Expr
	for !p.check(lexer.TokenRBracket) {
		elems = append(elems, p.expression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBracket, "']'")
	return &ast.ArrayLit{Elements: elems, Base: ast.NewBase(loc)}
}

func (p *Parser) objectLit(loc source.Location) ast.Expr {
	var fields []ast.ObjectField
	for !p.check(lexer.TokenRBrace) {
		var name string
		if p.check(lexer.TokenString) {
			name = p.advance().Literal.(string)
		} else {
			name = p.consume(lexer.TokenIdent, "property name").Lexeme
		}
		p.consume(lexer.TokenColon, "':'")
		val := p.expression()
		fields = append(fields, ast.ObjectField{Name: name, Value: val})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "'}'")
	return &ast.ObjectLit{Fields: fields, Base: ast.NewBase(loc)}
}
