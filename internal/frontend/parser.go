package frontend

import (
	"fmt"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
)

// Parser is a recursive-descent/Pratt parser over a Lexer's token stream,
// holding a cur/peek token pair advanced by nextToken. It does not
// pre-lex into a full token slice; NextToken is pulled lazily since
// nothing in the grammar needs arbitrary lookahead past one token.
//
// A syntax error is reported by panicking with a *diagnostic.Diagnostic;
// Parse recovers it at the top, matching the panic/recover discipline
// internal/diagnostic.go documents for deeply nested recursive-descent
// code.
type Parser struct {
	lex *Lexer

	curToken  Token
	peekToken Token
}

// Parse scans and parses src into an ast.Program.
func Parse(src string) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if d, ok := r.(*diagnostic.Diagnostic); ok {
				err = d
				return
			}
			panic(r)
		}
	}()
	p := &Parser{lex: NewLexer(src)}
	p.nextToken()
	p.nextToken()
	return p.parseProgram(), nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.NextToken()
}

func (p *Parser) fail(format string, args ...interface{}) {
	site := fmt.Sprintf("line %d, column %d", p.curToken.Line, p.curToken.Column)
	panic(diagnostic.Syntax(site, format, args...))
}

func (p *Parser) curIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t TokenType) bool { return p.peekToken.Type == t }

// expect advances past curToken if it is t, failing with a syntax error
// otherwise.
func (p *Parser) expect(t TokenType) Token {
	if !p.curIs(t) {
		p.fail("expected %s, got %s %q", t, p.curToken.Type, p.curToken.Lexeme)
	}
	tok := p.curToken
	p.nextToken()
	return tok
}

// skipNewlines consumes zero or more NEWLINE tokens; blank lines and
// trailing newlines after ':' are insignificant.
func (p *Parser) skipNewlines() {
	for p.curIs(NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.curIs(EOF) {
		prog.Statements = append(prog.Statements, p.parseTopStmt())
		p.skipNewlines()
	}
	return prog
}

// parseTopStmt parses a top-level declaration or statement. FuncDecl may
// appear at top level or nested inside a FuncDecl body (a nested
// function, the target of internal/lift); ClassDecl appears only at top
// level and may not nest inside another ClassDecl or FuncDecl (Venom has
// no nested classes).
func (p *Parser) parseTopStmt() ast.Stmt {
	switch p.curToken.Type {
	case DEF:
		return p.parseFuncDecl()
	case CLASS:
		return p.parseClassDecl()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{}
	p.skipNewlines()
	for !p.curIs(END) && !p.curIs(EOF) {
		switch p.curToken.Type {
		case DEF:
			block.Stmts = append(block.Stmts, p.parseFuncDecl())
		default:
			block.Stmts = append(block.Stmts, p.parseStmt())
		}
		p.skipNewlines()
	}
	p.expect(END)
	return block
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curToken.Type {
	case WHILE:
		return p.parseWhileStmt()
	case RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	p.nextToken() // consume 'while'
	cond := p.parseExpr(LOWEST)
	p.expect(COLON)
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	p.nextToken() // consume 'return'
	if p.curIs(NEWLINE) || p.curIs(EOF) || p.curIs(END) {
		return &ast.ReturnStmt{}
	}
	return &ast.ReturnStmt{Value: p.parseExpr(LOWEST)}
}

// parseSimpleStmt parses an expression statement or, when the expression
// is followed by '=', an assignment. Venom has no separate `var`
// declaration: assigning to an unresolved name declares it, per
// internal/check/name_pass.go's assignment handling.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	target := p.parseExpr(LOWEST)
	if p.curIs(ASSIGN) {
		p.nextToken()
		value := p.parseExpr(LOWEST)
		return &ast.AssignStmt{Target: target, Value: value}
	}
	return &ast.ExprStmt{X: target}
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	p.expect(DEF)
	name := p.expect(IDENT).Lexeme
	typeParams := p.parseOptionalTypeParams()

	p.expect(LPAREN)
	var params []*ast.Param
	for !p.curIs(RPAREN) {
		pname := p.expect(IDENT).Lexeme
		p.expect(COLON)
		ptype := p.parseTypeRef()
		params = append(params, &ast.Param{Name: pname, Type: ptype})
		if p.curIs(COMMA) {
			p.nextToken()
		}
	}
	p.expect(RPAREN)

	var ret *ast.TypeRef
	if p.curIs(ARROW) {
		p.nextToken()
		ret = p.parseTypeRef()
	}

	// `= Expr` is sugar for a single-statement body that returns Expr;
	// internal/ast's FuncDecl has no separate "expression body" shape, so
	// the parser desugars it here into an ordinary Block.
	if p.curIs(ASSIGN) {
		p.nextToken()
		// The shorthand body is one statement: a bare expression is
		// implicitly returned (`=v` means `return v`), while an
		// assignment is left as a plain statement (`=v=x` means `v=x`,
		// relying on the function's implicit Void return).
		stmt := p.parseSimpleStmt()
		if es, ok := stmt.(*ast.ExprStmt); ok {
			stmt = &ast.ReturnStmt{Value: es.X}
		}
		body := &ast.Block{Stmts: []ast.Stmt{stmt}}
		return &ast.FuncDecl{Name: name, TypeParams: typeParams, Params: params, ReturnType: ret, Body: body}
	}

	p.expect(COLON)
	body := p.parseBlock()
	return &ast.FuncDecl{Name: name, TypeParams: typeParams, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseClassDecl() *ast.ClassDecl {
	p.expect(CLASS)
	name := p.expect(IDENT).Lexeme
	typeParams := p.parseOptionalTypeParams()

	var parent *ast.TypeRef
	if p.curIs(EXTENDS) {
		p.nextToken()
		parent = p.parseTypeRef()
	}
	p.expect(COLON)
	p.skipNewlines()

	cd := &ast.ClassDecl{Name: name, TypeParams: typeParams, Parent: parent}
	for !p.curIs(END) && !p.curIs(EOF) {
		switch p.curToken.Type {
		case ATTR:
			cd.Attrs = append(cd.Attrs, p.parseAttrDecl())
		case DEF:
			cd.Methods = append(cd.Methods, p.parseFuncDecl())
		default:
			p.fail("expected 'attr' or 'def' in class body, got %s", p.curToken.Type)
		}
		p.skipNewlines()
	}
	p.expect(END)
	return cd
}

func (p *Parser) parseAttrDecl() *ast.AttrDecl {
	p.expect(ATTR)
	name := p.expect(IDENT).Lexeme
	p.expect(COLON)
	t := p.parseTypeRef()
	return &ast.AttrDecl{Name: name, Type: t}
}

// parseOptionalTypeParams parses a `{T, U}` generic placeholder list, or
// returns nil if curToken isn't '{'.
func (p *Parser) parseOptionalTypeParams() []string {
	if !p.curIs(LBRACE) {
		return nil
	}
	p.nextToken()
	var names []string
	for !p.curIs(RBRACE) {
		names = append(names, p.expect(IDENT).Lexeme)
		if p.curIs(COMMA) {
			p.nextToken()
		}
	}
	p.expect(RBRACE)
	return names
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	name := p.expect(IDENT).Lexeme
	t := &ast.TypeRef{Name: name}
	if p.curIs(LBRACE) {
		p.nextToken()
		for !p.curIs(RBRACE) {
			t.Args = append(t.Args, p.parseTypeRef())
			if p.curIs(COMMA) {
				p.nextToken()
			}
		}
		p.expect(RBRACE)
	}
	return t
}
