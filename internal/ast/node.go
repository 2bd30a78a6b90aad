// Package ast defines Venom's polymorphic abstract syntax tree: a sum of
// statement and expression node kinds, each exposing a fixed child arity
// by index, a per-child "does this child get a fresh lexical scope"
// predicate, and three structural clone modes (Semantic, Template, Lift).
//
// ast intentionally knows nothing about internal/symbols: a symbol table
// tree whose Function symbols own body ASTs would otherwise close an
// import cycle. Resolved bindings are instead stored through the small
// Symbol interface declared here, which symbols.VariableSymbol,
// symbols.FuncSymbol, and symbols.ClassSymbol satisfy structurally.
package ast

import (
	"github.com/stephentu/venom-lang-sub001/internal/bind"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// Node is the base interface every AST node implements: a fixed number of
// children, reachable by index, with a scoping predicate per child.
type Node interface {
	// ChildCount returns the number of direct children.
	ChildCount() int
	// Child returns the i'th child, or nil if that child is optional and
	// absent (e.g. a while-loop has no else branch to report here; a
	// missing return value).
	Child(i int) Node
	// NeedsNewScope reports whether traversing child i enters a fresh
	// lexical scope (e.g. a function body, a class body).
	NeedsNewScope(i int) bool
}

// Stmt is a Node that appears in statement position.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a Node that appears in expression position and, after type
// checking, carries a bound static type.
type Expr interface {
	Node
	exprNode()
	StaticType() *typesystem.InstantiatedType
	SetStaticType(t *typesystem.InstantiatedType)
}

// Symbol is the minimal view of a resolved symbol that ast needs in order
// to stamp a reference node without importing internal/symbols.
type Symbol interface {
	SymbolName() string
}

// CloneMode selects which of the three structural clone operations Clone
// performs.
type CloneMode int

const (
	// CloneSemantic makes a defensive deep copy with no substitution,
	// sharing no mutable node with the original.
	CloneSemantic CloneMode = iota
	// CloneTemplate substitutes generic type-parameter placeholders with
	// concrete InstantiatedTypes to materialize a specialization.
	CloneTemplate
	// CloneLift rewrites non-local variable references per a Rewriter
	// (driven by internal/lift's closure-lifting transform).
	CloneLift
)

// Rewriter is consulted during CloneTemplate and CloneLift to decide
// whether a resolved reference should retarget to a different symbol (a
// captured parameter during lifting, or a fresh specialized local during
// template instantiation).
type Rewriter interface {
	// Rewrite returns the replacement for a resolved symbol encountered
	// while cloning, or ok=false to keep the original.
	Rewrite(orig Symbol) (repl Symbol, ok bool)
	// EnterScope/LeaveScope bracket descent into a node whose traversal
	// enters a new lexical scope (NeedsNewScope), letting the Rewriter
	// track which function is "currently being processed" the way
	// LiftContext.curLiftSym does.
	EnterScope(n Node)
	LeaveScope(n Node)
}

// CloneContext carries everything a clone operation needs beyond the mode
// itself: the type registry (to re-hash-cons substituted types) and,
// for CloneTemplate/CloneLift, the substitution and rewriter to apply.
type CloneContext struct {
	Mode      CloneMode
	Registry  *typesystem.Registry
	TypeSubst typesystem.Substitution
	Rewriter  Rewriter
}

// translateType re-hash-conses t under ctx's substitution. Outside
// CloneTemplate mode, or when there is nothing to substitute, it returns
// t unchanged.
func (ctx *CloneContext) translateType(t *typesystem.InstantiatedType) *typesystem.InstantiatedType {
	if t == nil || ctx.Mode != CloneTemplate || len(ctx.TypeSubst) == 0 {
		return t
	}
	nt, err := ctx.Registry.Translate(t, ctx.TypeSubst)
	if err != nil {
		return t
	}
	return nt
}

// rewriteSymbol asks ctx's Rewriter (if any) for a replacement symbol.
func (ctx *CloneContext) rewriteSymbol(sym Symbol) Symbol {
	if sym == nil || ctx.Rewriter == nil {
		return sym
	}
	if repl, ok := ctx.Rewriter.Rewrite(sym); ok {
		return repl
	}
	return sym
}

// exprBase factors the StaticType bookkeeping shared by every expression
// node.
type exprBase struct {
	static *typesystem.InstantiatedType
}

func (b *exprBase) StaticType() *typesystem.InstantiatedType { return b.static }
func (b *exprBase) SetStaticType(t *typesystem.InstantiatedType) { b.static = t }
func (*exprBase) exprNode()                                   {}

type stmtBase struct{}

func (*stmtBase) stmtNode() {}

// BoundCall is stored on CallExpr/NewExpr nodes once the type
// checker resolves the callee; it is the AST-visible alias of
// bind.BoundFunction so ast need not import internal/symbols.
type BoundCall = bind.BoundFunction
