// Package lift implements Venom's closure-lifting transform (spec §4.5):
// nested functions that reference a variable from an enclosing function
// are rewritten into top-level functions whose captured variables become
// explicit leading parameters.
package lift

import (
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
)

// Collect walks main's body and every class's methods, lifts each
// function and every function nested inside it (recursively), and
// returns the flat list of functions the code generator must emit: every
// function that survives lifting, in first-discovered order, with no
// duplicates. main represents the module's top-level statements as a
// synthetic, enclosing-function-less FuncSymbol (spec §4.5's "liftInto"
// scope): a variable declared directly at module scope is main's own
// local, so references to it from any def are non-local exactly as if
// main were an ordinary function.
func Collect(main *symbols.FuncSymbol, classes []*symbols.ClassSymbol) []*symbols.FuncSymbol {
	var order []*symbols.FuncSymbol
	seen := make(map[*symbols.FuncSymbol]bool)
	add := func(f *symbols.FuncSymbol) {
		if f == nil || seen[f] {
			return
		}
		seen[f] = true
		order = append(order, f)
	}

	var walk func(fn *symbols.FuncSymbol)
	walk = func(fn *symbols.FuncSymbol) {
		add(Function(main, fn))
		for _, nd := range nestedDecls(fn.Body) {
			if nsym, ok := nd.Symbol.(*symbols.FuncSymbol); ok {
				walk(nsym)
			}
		}
	}

	walk(main)
	for _, cls := range classes {
		for _, m := range cls.Methods {
			walk(m)
		}
	}
	return order
}

// Function returns fn's lifted form, computing and caching it on
// fn.Lifted the first time it is requested. Idempotence (spec §8
// invariant 4) falls out of the cache: a second call is a plain map
// lookup that returns the same value, never recomputing the capture set
// or re-cloning the body. A non-generic function with an empty capture
// set lifts to itself (spec §4.5 step 1.b, identity mapping).
//
// Generic function and method bodies are lifted once per specialization
// rather than once at declaration time: symbols.Materialize produces a
// fresh, non-generic FuncSymbol per concrete type-argument tuple (its
// TypeParams is left empty), and internal/codegen calls Function on each
// specialization the first time it needs to emit it, satisfying spec
// §4.5's "generic functions are skipped; they are lifted lazily on each
// materialization" without internal/symbols needing to import this
// package back.
func Function(main, fn *symbols.FuncSymbol) *symbols.FuncSymbol {
	if fn.Lifted != nil {
		return fn.Lifted
	}
	// Mark identity before recursing so a pathological self-reference
	// during capture-set computation cannot loop; Venom has no first-class
	// function values, so a function's body can reference itself only via
	// a plain named call, which this pass never traverses as a capture.
	fn.Lifted = fn

	if fn.Native {
		// A native function has no Venom-source body to analyze; it can
		// never capture anything.
		return fn
	}

	captures := newCaptureSet()
	for _, nd := range nestedDecls(fn.Body) {
		nsym, ok := nd.Symbol.(*symbols.FuncSymbol)
		if !ok {
			continue
		}
		lifted := Function(main, nsym)
		for _, c := range lifted.Captures {
			if homeFunc(c, main) != fn {
				captures.add(c)
			}
		}
	}
	collectDirect(main, fn, fn.Body, captures)

	if captures.empty() {
		fn.Captures = nil
		return fn
	}

	capList := captures.list()
	fn.Captures = capList

	rw := &liftRewriter{capture: make(map[*symbols.VariableSymbol]*symbols.VariableSymbol, len(capList))}
	newParams := make([]*symbols.VariableSymbol, 0, len(capList)+len(fn.Params))
	for _, c := range capList {
		np := &symbols.VariableSymbol{Name: c.Name, DeclaredType: c.DeclaredType, Storage: symbols.StorageParam, Slot: -1}
		rw.capture[c] = np
		newParams = append(newParams, np)
	}
	newParams = append(newParams, fn.Params...)

	ctx := &ast.CloneContext{Mode: ast.CloneLift, Rewriter: rw}
	newBody, _ := ast.CloneStmt(fn.Body, ctx).(*ast.Block)

	lifted := &symbols.FuncSymbol{
		Name:           fn.Name,
		Params:         newParams,
		ReturnType:     fn.ReturnType,
		TypeParams:     fn.TypeParams,
		EnclosingClass: fn.EnclosingClass,
		Body:           newBody,
		Scope:          fn.Scope,
		Captures:       capList,
	}
	fn.Lifted = lifted
	return lifted
}

// nestedDecls returns the *ast.FuncDecl statements directly inside body,
// at any block nesting depth reached without crossing into another
// FuncDecl's own body (a def nested inside a while loop's body is still
// "directly inside" its enclosing function; a def nested inside another
// def is not searched here — walk discovers it one level at a time via
// Collect's recursion instead).
func nestedDecls(body *ast.Block) []*ast.FuncDecl {
	var out []*ast.FuncDecl
	var walk func(b *ast.Block)
	walk = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			switch n := s.(type) {
			case *ast.FuncDecl:
				out = append(out, n)
			case *ast.WhileStmt:
				walk(n.Body)
			}
		}
	}
	walk(body)
	return out
}

// homeFunc reports which function's body declares v, by walking up v's
// declaring scope chain to the nearest *ast.FuncDecl-owned scope. A
// variable declared directly at module scope (whose scope chain reaches
// the root *ast.Program without passing a FuncDecl) belongs to main.
func homeFunc(v *symbols.VariableSymbol, main *symbols.FuncSymbol) *symbols.FuncSymbol {
	if v == nil || v.Scope == nil {
		return main
	}
	for s := v.Scope; s != nil; s = s.Parent() {
		if owner, ok := s.Owner().(*ast.FuncDecl); ok {
			if fsym, ok := owner.Symbol.(*symbols.FuncSymbol); ok {
				return fsym
			}
		}
	}
	return main
}

// collectDirect finds fn's own non-local references (spec §4.5), i.e.
// those not already folded in by a nested function's propagated capture
// set. A bare reference to a class attribute (resolved lexically through
// the enclosing method's class scope, with no explicit "self.") is not
// itself a captured symbol — attributes have no standalone storage slot
// outside an instance — but it does require "self" to be captured, per
// spec §4.5 step 3 ("self treated as a captured value where syntactically
// inherited from an outer function").
func collectDirect(main, fn *symbols.FuncSymbol, body *ast.Block, captures *captureSet) {
	for _, s := range body.Stmts {
		collectStmt(main, fn, s, captures)
	}
}

func collectStmt(main, fn *symbols.FuncSymbol, s ast.Stmt, captures *captureSet) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		collectExpr(main, fn, n.X, captures)
	case *ast.AssignStmt:
		collectExpr(main, fn, n.Target, captures)
		collectExpr(main, fn, n.Value, captures)
	case *ast.WhileStmt:
		collectExpr(main, fn, n.Cond, captures)
		collectDirect(main, fn, n.Body, captures)
	case *ast.ReturnStmt:
		if n.Value != nil {
			collectExpr(main, fn, n.Value, captures)
		}
	case *ast.FuncDecl:
		// Handled by the caller via the nested function's own propagated
		// capture set; descending here would misattribute its locals to fn.
	}
}

func collectExpr(main, fn *symbols.FuncSymbol, e ast.Expr, captures *captureSet) {
	switch n := e.(type) {
	case *ast.Ident:
		v, ok := n.ResolvedSymbol.(*symbols.VariableSymbol)
		if !ok {
			return
		}
		if v.Storage == symbols.StorageAttribute {
			if self := fn.Scope.LookupVariable("self", true); self != nil && homeFunc(self, main) != fn {
				captures.add(self)
			}
			return
		}
		// A symbol with no declaring scope was synthesized by
		// symbols.Materialize for a specialization's own parameters and
		// locals, so it is local to fn.
		if v.Scope != nil && homeFunc(v, main) != fn {
			captures.add(v)
		}
	case *ast.BinaryExpr:
		collectExpr(main, fn, n.Left, captures)
		collectExpr(main, fn, n.Right, captures)
	case *ast.UnaryExpr:
		collectExpr(main, fn, n.Operand, captures)
	case *ast.AttrAccess:
		collectExpr(main, fn, n.Receiver, captures)
	case *ast.CallExpr:
		collectExpr(main, fn, n.Callee, captures)
		for _, a := range n.Args {
			collectExpr(main, fn, a, captures)
		}
	case *ast.NewExpr:
		for _, a := range n.Args {
			collectExpr(main, fn, a, captures)
		}
	}
}

// captureSet is an insertion-ordered, pointer-deduplicated set of
// captured variables. Order matters: it fixes the prefix of parameters
// the lifted function gains and the argument order every call site must
// match (spec §4.5 step 2).
type captureSet struct {
	order []*symbols.VariableSymbol
	seen  map[*symbols.VariableSymbol]bool
}

func newCaptureSet() *captureSet {
	return &captureSet{seen: make(map[*symbols.VariableSymbol]bool)}
}

func (c *captureSet) add(v *symbols.VariableSymbol) {
	if v == nil || c.seen[v] {
		return
	}
	c.seen[v] = true
	c.order = append(c.order, v)
}

func (c *captureSet) empty() bool                       { return len(c.order) == 0 }
func (c *captureSet) list() []*symbols.VariableSymbol { return c.order }

// liftRewriter implements ast.Rewriter for CloneLift: it retargets a
// reference to a captured original symbol to the freshly created
// parameter symbol that now carries it, and leaves every other reference
// (fn's own params/locals, which keep their original identity in the
// lifted copy too) unchanged.
type liftRewriter struct {
	capture map[*symbols.VariableSymbol]*symbols.VariableSymbol
}

func (r *liftRewriter) Rewrite(orig ast.Symbol) (ast.Symbol, bool) {
	v, ok := orig.(*symbols.VariableSymbol)
	if !ok {
		return orig, false
	}
	if nv, ok := r.capture[v]; ok {
		return nv, true
	}
	return orig, false
}

func (r *liftRewriter) EnterScope(ast.Node) {}
func (r *liftRewriter) LeaveScope(ast.Node) {}
