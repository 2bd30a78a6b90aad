package frontend

import (
	"strconv"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
)

// Precedence levels, lowest to highest, in the classic Pratt-parser style
// (LOWEST/PREFIX bracketing a table of infix levels).
const (
	LOWEST = iota
	ORPREC
	ANDPREC
	EQUALITY
	COMPARISON
	SUM
	PRODUCT
	PREFIX
)

func precedenceOf(t TokenType) int {
	switch t {
	case OR:
		return ORPREC
	case AND:
		return ANDPREC
	case EQ, NEQ:
		return EQUALITY
	case LT, LE, GT, GE:
		return COMPARISON
	case PLUS, MINUS:
		return SUM
	case STAR, SLASH, PERCENT:
		return PRODUCT
	default:
		return LOWEST
	}
}

// parseExpr implements precedence climbing: it repeatedly folds an infix
// operator into left as long as its precedence exceeds the floor passed
// in, recursing at the operator's own precedence for the right operand
// (giving left-associativity, since the recursive call stops as soon as
// it meets an operator of equal precedence).
func (p *Parser) parseExpr(prec int) ast.Expr {
	left := p.parseUnary()
	for prec < precedenceOf(p.curToken.Type) {
		op := p.curToken
		opPrec := precedenceOf(op.Type)
		p.nextToken()
		right := p.parseExpr(opPrec)
		left = &ast.BinaryExpr{Op: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.curToken.Type {
	case MINUS:
		p.nextToken()
		return &ast.UnaryExpr{Op: "-", Operand: p.parseExpr(PREFIX)}
	case NOT:
		p.nextToken()
		return &ast.UnaryExpr{Op: "not", Operand: p.parseExpr(PREFIX)}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.curToken.Type {
	case INT:
		v, err := strconv.ParseInt(p.curToken.Lexeme, 10, 64)
		if err != nil {
			p.fail("invalid integer literal %q", p.curToken.Lexeme)
		}
		p.nextToken()
		return &ast.IntLiteral{Value: v}
	case FLOAT:
		v, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
		if err != nil {
			p.fail("invalid float literal %q", p.curToken.Lexeme)
		}
		p.nextToken()
		return &ast.FloatLiteral{Value: v}
	case STRING:
		v := p.curToken.Lexeme
		p.nextToken()
		return &ast.StringLiteral{Value: v}
	case TRUE:
		p.nextToken()
		return &ast.BoolLiteral{Value: true}
	case FALSE:
		p.nextToken()
		return &ast.BoolLiteral{Value: false}
	case NIL:
		p.nextToken()
		return &ast.NilLiteral{}
	case LPAREN:
		p.nextToken()
		e := p.parseExpr(LOWEST)
		p.expect(RPAREN)
		return p.parseSuffixes(e)
	case IDENT:
		return p.parseIdentOrCallOrNew()
	default:
		p.fail("unexpected token %s %q in expression", p.curToken.Type, p.curToken.Lexeme)
		return nil
	}
}

// parseIdentOrCallOrNew disambiguates the four forms that start with a
// bare name: a variable reference, a free-function call (with optional
// explicit type arguments `f{Int}(x)`), a generic class construction
// `Class{Args}.new(...)`, and an attribute/method chain `x.attr` /
// `x.method(...)`.
func (p *Parser) parseIdentOrCallOrNew() ast.Expr {
	name := p.curToken.Lexeme
	p.nextToken()

	var typeArgs []*ast.TypeRef
	if p.curIs(LBRACE) {
		typeArgs = p.parseTypeArgList()
	}

	if p.curIs(LPAREN) {
		args := p.parseArgList()
		return p.parseSuffixes(&ast.CallExpr{Callee: &ast.Ident{Name: name}, TypeArgs: typeArgs, Args: args})
	}

	if p.curIs(DOT) {
		p.nextToken()
		// `new` lexes as the NEW keyword, not an IDENT.
		if p.curIs(NEW) {
			p.nextToken()
			args := p.parseArgList()
			return p.parseSuffixes(&ast.NewExpr{Class: &ast.TypeRef{Name: name, Args: typeArgs}, Args: args})
		}
		attrName := p.expect(IDENT).Lexeme
		var expr ast.Expr = &ast.Ident{Name: name}
		if p.curIs(LPAREN) {
			args := p.parseArgList()
			expr = &ast.CallExpr{Callee: &ast.AttrAccess{Receiver: expr, Name: attrName}, Args: args}
		} else {
			expr = &ast.AttrAccess{Receiver: expr, Name: attrName}
		}
		return p.parseSuffixes(expr)
	}

	if len(typeArgs) > 0 {
		p.fail("type arguments %q require a call or a construction", name)
	}
	return &ast.Ident{Name: name}
}

// parseSuffixes folds trailing `.name` / `.name(args)` chains onto expr,
// e.g. `a.b.c(x)`.
func (p *Parser) parseSuffixes(expr ast.Expr) ast.Expr {
	for p.curIs(DOT) {
		p.nextToken()
		attrName := p.expect(IDENT).Lexeme
		if p.curIs(LPAREN) {
			args := p.parseArgList()
			expr = &ast.CallExpr{Callee: &ast.AttrAccess{Receiver: expr, Name: attrName}, Args: args}
		} else {
			expr = &ast.AttrAccess{Receiver: expr, Name: attrName}
		}
	}
	return expr
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(LPAREN)
	var args []ast.Expr
	for !p.curIs(RPAREN) {
		args = append(args, p.parseExpr(LOWEST))
		if p.curIs(COMMA) {
			p.nextToken()
		}
	}
	p.expect(RPAREN)
	return args
}

func (p *Parser) parseTypeArgList() []*ast.TypeRef {
	p.expect(LBRACE)
	var args []*ast.TypeRef
	for !p.curIs(RBRACE) {
		args = append(args, p.parseTypeRef())
		if p.curIs(COMMA) {
			p.nextToken()
		}
	}
	p.expect(RBRACE)
	return args
}
