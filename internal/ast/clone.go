package ast

import "github.com/stephentu/venom-lang-sub001/internal/typesystem"

// CloneStmt produces a fresh statement subtree under ctx's mode. The
// three modes (spec §4.3) share this single recursive traversal; what
// differs between them lives entirely in CloneContext.translateType and
// CloneContext.rewriteSymbol / the Rewriter they delegate to.
func CloneStmt(s Stmt, ctx *CloneContext) Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *Block:
		return cloneBlock(n, ctx)
	case *ExprStmt:
		return &ExprStmt{X: CloneExpr(n.X, ctx)}
	case *AssignStmt:
		return &AssignStmt{Target: CloneExpr(n.Target, ctx), Value: CloneExpr(n.Value, ctx)}
	case *WhileStmt:
		return cloneWhile(n, ctx)
	case *ReturnStmt:
		var v Expr
		if n.Value != nil {
			v = CloneExpr(n.Value, ctx)
		}
		return &ReturnStmt{Value: v}
	case *FuncDecl:
		return cloneFuncDecl(n, ctx)
	case *ClassDecl:
		return cloneClassDecl(n, ctx)
	default:
		panic("ast: CloneStmt: unhandled statement kind")
	}
}

func cloneBlock(n *Block, ctx *CloneContext) *Block {
	out := make([]Stmt, len(n.Stmts))
	for i, s := range n.Stmts {
		out[i] = CloneStmt(s, ctx)
	}
	return &Block{Stmts: out}
}

func cloneWhile(n *WhileStmt, ctx *CloneContext) *WhileStmt {
	return &WhileStmt{Cond: CloneExpr(n.Cond, ctx), Body: cloneBlock(n.Body, ctx)}
}

func cloneFuncDecl(n *FuncDecl, ctx *CloneContext) *FuncDecl {
	if ctx.Rewriter != nil {
		ctx.Rewriter.EnterScope(n)
		defer ctx.Rewriter.LeaveScope(n)
	}
	params := make([]*Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = &Param{Name: p.Name, Type: p.Type.Clone(ctx)}
	}
	return &FuncDecl{
		Name:       n.Name,
		TypeParams: append([]string(nil), n.TypeParams...),
		Params:     params,
		ReturnType: n.ReturnType.Clone(ctx),
		Body:       cloneBlock(n.Body, ctx),
		Symbol:     ctx.rewriteSymbol(n.Symbol),
	}
}

func cloneClassDecl(n *ClassDecl, ctx *CloneContext) *ClassDecl {
	attrs := make([]*AttrDecl, len(n.Attrs))
	for i, a := range n.Attrs {
		attrs[i] = &AttrDecl{Name: a.Name, Type: a.Type.Clone(ctx), Symbol: ctx.rewriteSymbol(a.Symbol)}
	}
	methods := make([]*FuncDecl, len(n.Methods))
	for i, m := range n.Methods {
		methods[i] = cloneFuncDecl(m, ctx)
	}
	return &ClassDecl{
		Name:       n.Name,
		TypeParams: append([]string(nil), n.TypeParams...),
		Parent:     n.Parent.Clone(ctx),
		Attrs:      attrs,
		Methods:    methods,
		Symbol:     ctx.rewriteSymbol(n.Symbol),
	}
}

// CloneExpr produces a fresh expression subtree under ctx's mode,
// re-translating each node's bound static type and, for Ident and
// AttrAccess, consulting ctx's Rewriter for the resolved symbol.
func CloneExpr(e Expr, ctx *CloneContext) Expr {
	if e == nil {
		return nil
	}
	var out Expr
	switch n := e.(type) {
	case *IntLiteral:
		out = &IntLiteral{Value: n.Value}
	case *FloatLiteral:
		out = &FloatLiteral{Value: n.Value}
	case *BoolLiteral:
		out = &BoolLiteral{Value: n.Value}
	case *StringLiteral:
		out = &StringLiteral{Value: n.Value}
	case *NilLiteral:
		out = &NilLiteral{}
	case *Ident:
		out = &Ident{Name: n.Name, ResolvedSymbol: ctx.rewriteSymbol(n.ResolvedSymbol)}
	case *BinaryExpr:
		out = &BinaryExpr{Op: n.Op, Left: CloneExpr(n.Left, ctx), Right: CloneExpr(n.Right, ctx)}
	case *UnaryExpr:
		out = &UnaryExpr{Op: n.Op, Operand: CloneExpr(n.Operand, ctx)}
	case *AttrAccess:
		out = &AttrAccess{Receiver: CloneExpr(n.Receiver, ctx), Name: n.Name, ResolvedSymbol: ctx.rewriteSymbol(n.ResolvedSymbol)}
	case *CallExpr:
		out = cloneCall(n, ctx)
	case *NewExpr:
		out = cloneNew(n, ctx)
	default:
		panic("ast: CloneExpr: unhandled expression kind")
	}
	out.SetStaticType(ctx.translateType(e.StaticType()))
	return out
}

func cloneCall(n *CallExpr, ctx *CloneContext) *CallExpr {
	args := make([]Expr, len(n.Args))
	for i, a := range n.Args {
		args[i] = CloneExpr(a, ctx)
	}
	typeArgs := make([]*TypeRef, len(n.TypeArgs))
	for i, t := range n.TypeArgs {
		typeArgs[i] = t.Clone(ctx)
	}
	return &CallExpr{
		Callee:   CloneExpr(n.Callee, ctx),
		TypeArgs: typeArgs,
		Args:     args,
		Bound:    cloneBound(n.Bound, ctx),
	}
}

func cloneNew(n *NewExpr, ctx *CloneContext) *NewExpr {
	args := make([]Expr, len(n.Args))
	for i, a := range n.Args {
		args[i] = CloneExpr(a, ctx)
	}
	return &NewExpr{
		Class: n.Class.Clone(ctx),
		Args:  args,
		Bound: cloneBound(n.Bound, ctx),
	}
}

func cloneBound(b *BoundCall, ctx *CloneContext) *BoundCall {
	if b == nil {
		return nil
	}
	newArgs := make([]*typesystem.InstantiatedType, len(b.Args))
	for i, a := range b.Args {
		newArgs[i] = ctx.translateType(a)
	}
	return &BoundCall{Func: b.Func, Args: newArgs}
}
