package check

import (
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/bind"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// TypePass binds a static type to every expression in prog and resolves
// every call site's callee (spec §4.4). It must run after NamePass, which
// has already attached a ResolvedSymbol to every Ident and AssignStmt
// target; TypePass's job is purely about types, not names.
func TypePass(mod *symbols.ModuleSymbol, prog *ast.Program, reg *typesystem.Registry) error {
	c := &checker{reg: reg, mod: mod}
	for _, s := range prog.Statements {
		if err := c.stmt(s, nil); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	reg *typesystem.Registry
	mod *symbols.ModuleSymbol
}

// stmt type-checks s. fn is the FuncSymbol whose body s appears in, or nil
// at module top level; it supplies the enclosing scope for resolving call
// targets and the expected type for a return statement.
func (c *checker) stmt(s ast.Stmt, fn *symbols.FuncSymbol) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := c.expr(n.X, fn)
		return err
	case *ast.AssignStmt:
		return c.assign(n, fn)
	case *ast.WhileStmt:
		ct, err := c.expr(n.Cond, fn)
		if err != nil {
			return err
		}
		if !isBuiltin(ct, typesystem.BoolName) {
			return diagnostic.TypeErr("while", "condition must be Bool, got %s", ct)
		}
		for _, bs := range n.Body.Stmts {
			if err := c.stmt(bs, fn); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStmt:
		return c.ret(n, fn)
	case *ast.FuncDecl:
		return c.funcBody(n)
	case *ast.ClassDecl:
		return c.classBody(n)
	default:
		return diagnostic.Semantic("", "unhandled statement in type pass")
	}
}

func (c *checker) funcBody(n *ast.FuncDecl) error {
	fsym, _ := n.Symbol.(*symbols.FuncSymbol)
	for _, s := range n.Body.Stmts {
		if err := c.stmt(s, fsym); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) classBody(n *ast.ClassDecl) error {
	for _, m := range n.Methods {
		if err := c.funcBody(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) ret(n *ast.ReturnStmt, fn *symbols.FuncSymbol) error {
	want := c.reg.MustInstantiate(c.reg.Void())
	if fn != nil && fn.ReturnType != nil {
		want = fn.ReturnType
	}
	if n.Value == nil {
		if !isBuiltin(want, typesystem.VoidName) {
			return diagnostic.TypeErr("return", "missing value, function returns %s", want)
		}
		return nil
	}
	vt, err := c.expr(n.Value, fn)
	if err != nil {
		return err
	}
	if isBuiltin(want, typesystem.VoidName) {
		return diagnostic.TypeErr("return", "Void function cannot return a value")
	}
	if !c.reg.IsSubtypeOf(vt, want) {
		return diagnostic.TypeErr("return", "cannot return %s as %s", vt, want)
	}
	return nil
}

func (c *checker) assign(n *ast.AssignStmt, fn *symbols.FuncSymbol) error {
	vt, err := c.expr(n.Value, fn)
	if err != nil {
		return err
	}
	switch target := n.Target.(type) {
	case *ast.Ident:
		vs, ok := target.ResolvedSymbol.(*symbols.VariableSymbol)
		if !ok {
			return diagnostic.Semantic(target.Name, "not assignable")
		}
		if vs.DeclaredType == nil {
			// First assignment to a name the name pass declared fresh
			// (spec's declare-on-first-use rule): its type is inferred
			// from the value.
			vs.DeclaredType = vt
		} else if !c.reg.IsSubtypeOf(vt, vs.DeclaredType) {
			return diagnostic.TypeErr(target.Name, "cannot assign %s to %s", vt, vs.DeclaredType)
		}
		target.SetStaticType(vs.DeclaredType)
		return nil
	case *ast.AttrAccess:
		at, err := c.expr(target, fn)
		if err != nil {
			return err
		}
		if !c.reg.IsSubtypeOf(vt, at) {
			return diagnostic.TypeErr(target.Name, "cannot assign %s to %s", vt, at)
		}
		return nil
	default:
		return diagnostic.Semantic("", "invalid assignment target")
	}
}

func (c *checker) expr(e ast.Expr, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		t := c.reg.MustInstantiate(c.reg.Lookup(typesystem.IntName))
		n.SetStaticType(t)
		return t, nil
	case *ast.FloatLiteral:
		t := c.reg.MustInstantiate(c.reg.Lookup(typesystem.FloatName))
		n.SetStaticType(t)
		return t, nil
	case *ast.BoolLiteral:
		t := c.reg.MustInstantiate(c.reg.Lookup(typesystem.BoolName))
		n.SetStaticType(t)
		return t, nil
	case *ast.StringLiteral:
		t := c.reg.MustInstantiate(c.reg.Lookup(typesystem.StringName))
		n.SetStaticType(t)
		return t, nil
	case *ast.NilLiteral:
		// nil has no type of its own; it types as Object here regardless
		// of the expected type, so it is accepted only where Object itself
		// is expected (IsSubtypeOf never makes Object a subtype of a class).
		t := c.reg.MustInstantiate(c.reg.Object())
		n.SetStaticType(t)
		return t, nil
	case *ast.Ident:
		t := declaredType(n.ResolvedSymbol)
		if t == nil {
			return nil, diagnostic.Semantic(n.Name, "variable has no inferred type yet")
		}
		n.SetStaticType(t)
		return t, nil
	case *ast.BinaryExpr:
		lt, err := c.expr(n.Left, fn)
		if err != nil {
			return nil, err
		}
		rt, err := c.expr(n.Right, fn)
		if err != nil {
			return nil, err
		}
		t, err := binaryOpType(c.reg, n.Op, lt, rt)
		if err != nil {
			return nil, err
		}
		n.SetStaticType(t)
		return t, nil
	case *ast.UnaryExpr:
		ot, err := c.expr(n.Operand, fn)
		if err != nil {
			return nil, err
		}
		t, err := unaryOpType(c.reg, n.Op, ot)
		if err != nil {
			return nil, err
		}
		n.SetStaticType(t)
		return t, nil
	case *ast.AttrAccess:
		return c.attrAccess(n, fn)
	case *ast.CallExpr:
		return c.call(n, fn)
	case *ast.NewExpr:
		return c.newExpr(n, fn)
	default:
		return nil, diagnostic.Semantic("", "unhandled expression in type pass")
	}
}

func declaredType(sym ast.Symbol) *typesystem.InstantiatedType {
	vs, ok := sym.(*symbols.VariableSymbol)
	if !ok {
		return nil
	}
	return vs.DeclaredType
}

// classFor finds the ClassSymbol backing an InstantiatedType of class kind.
// Classes are always declared at module scope, so one non-recursive-in-
// spirit (but still correct) lookup through the root table suffices.
func (c *checker) classFor(it *typesystem.InstantiatedType) *symbols.ClassSymbol {
	if it == nil {
		return nil
	}
	return c.mod.Scope.LookupClass(it.Type.Name, true)
}

// classSubst maps declCls's own type-parameter placeholders onto the
// positional arguments of a concrete instantiation of some subclass of
// declCls, so an attribute or method type declared in terms of declCls's
// placeholders can be translated into the caller's concrete binding.
func classSubst(declCls *symbols.ClassSymbol, instType *typesystem.InstantiatedType) typesystem.Substitution {
	subst := make(typesystem.Substitution, len(declCls.TypeParams))
	for i, p := range declCls.TypeParams {
		if i < len(instType.Args) {
			subst[p] = instType.Args[i]
		}
	}
	return subst
}

func (c *checker) attrAccess(n *ast.AttrAccess, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	rt, err := c.expr(n.Receiver, fn)
	if err != nil {
		return nil, err
	}
	cls := c.classFor(rt)
	if cls == nil {
		return nil, diagnostic.TypeErr(n.Name, "%s has no attributes", rt)
	}
	declCls, attr := cls.ResolveAttr(n.Name)
	if attr == nil {
		return nil, diagnostic.Semantic(n.Name, "%s has no attribute %q", rt, n.Name)
	}
	at, err := c.reg.Translate(attr.DeclaredType, classSubst(declCls, rt))
	if err != nil {
		return nil, err
	}
	n.ResolvedSymbol = attr
	n.SetStaticType(at)
	return at, nil
}

func (c *checker) call(n *ast.CallExpr, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	switch callee := n.Callee.(type) {
	case *ast.Ident:
		return c.freeCall(n, callee, fn)
	case *ast.AttrAccess:
		return c.methodCall(n, callee, fn)
	default:
		return nil, diagnostic.Semantic("", "call target must be a function name or method access")
	}
}

func (c *checker) freeCall(n *ast.CallExpr, callee *ast.Ident, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	scope := c.mod.Scope
	if fn != nil && fn.Scope != nil {
		scope = fn.Scope
	}
	fsym := scope.LookupFunction(callee.Name, true)
	if fsym == nil {
		return nil, diagnostic.Semantic(callee.Name, "undefined function")
	}
	return c.resolveCall(n, fsym, nil, fn, nil)
}

func (c *checker) methodCall(n *ast.CallExpr, callee *ast.AttrAccess, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	rt, err := c.expr(callee.Receiver, fn)
	if err != nil {
		return nil, err
	}
	cls := c.classFor(rt)
	if cls == nil {
		return nil, diagnostic.TypeErr(callee.Name, "%s has no methods", rt)
	}
	declCls, msym := cls.ResolveMethod(callee.Name)
	if msym == nil {
		return nil, diagnostic.Semantic(callee.Name, "%s has no method %q", rt, callee.Name)
	}
	return c.resolveCall(n, msym, classSubst(declCls, rt), fn, callee.Receiver)
}

// resolveCall type-checks fsym's argument list against n.Args, resolves
// the generic binding (explicit n.TypeArgs for a free function, the
// receiver's own instantiation args for a method per spec §9), and
// records n.Bound and n's static type.
//
// A method's FuncSymbol.TypeParams is its class's placeholder list
// followed by any type parameters the method declares itself
// (declareFunc). A method call binds only the receiver's instantiation
// arguments, so a call to a method with type parameters of its own fails
// the count check below.
func (c *checker) resolveCall(n *ast.CallExpr, fsym *symbols.FuncSymbol, outerSubst typesystem.Substitution, fn *symbols.FuncSymbol, receiver ast.Expr) (*typesystem.InstantiatedType, error) {
	var typeArgs []*typesystem.InstantiatedType
	switch {
	case len(n.TypeArgs) > 0:
		env := c.callEnv(fn)
		typeArgs = make([]*typesystem.InstantiatedType, len(n.TypeArgs))
		for i, tr := range n.TypeArgs {
			it, err := env.resolve(tr)
			if err != nil {
				return nil, err
			}
			typeArgs[i] = it
		}
	case receiver != nil:
		rt := receiver.StaticType()
		typeArgs = append(typeArgs, rt.Args...)
	}

	if len(typeArgs) != len(fsym.TypeParams) {
		return nil, diagnostic.Semantic(fsym.Name, "expected %d type argument(s), got %d", len(fsym.TypeParams), len(typeArgs))
	}

	subst := make(typesystem.Substitution, len(outerSubst)+len(typeArgs))
	for k, v := range outerSubst {
		subst[k] = v
	}
	for i, tp := range fsym.TypeParams {
		subst[tp] = typeArgs[i]
	}

	params := fsym.Params
	if receiver != nil && len(params) > 0 {
		// Drop the implicit self parameter: the receiver expression
		// already supplied and type-checked that argument.
		params = params[1:]
	}
	if len(n.Args) != len(params) {
		return nil, diagnostic.Semantic(fsym.Name, "expected %d argument(s), got %d", len(params), len(n.Args))
	}
	for i, p := range params {
		at, err := c.expr(n.Args[i], fn)
		if err != nil {
			return nil, err
		}
		want, err := c.reg.Translate(p.DeclaredType, subst)
		if err != nil {
			return nil, err
		}
		if !c.reg.IsSubtypeOf(at, want) {
			return nil, diagnostic.TypeErr(fsym.Name, "argument %d: cannot use %s as %s", i+1, at, want)
		}
	}

	resultType, err := c.reg.Translate(fsym.ReturnType, subst)
	if err != nil {
		return nil, err
	}
	n.Bound = &bind.BoundFunction{Func: fsym, Args: typeArgs}
	n.SetStaticType(resultType)
	return resultType, nil
}

// callEnv returns a typeEnv that can resolve an explicit type argument
// written at a call site, including a reference to the calling function's
// own generic placeholders (so a generic function can forward its type
// parameter to another generic call, e.g. `f{T}(x)` inside `def g{T}(...)`).
func (c *checker) callEnv(fn *symbols.FuncSymbol) *typeEnv {
	params := map[string]*typesystem.Type{}
	if fn != nil {
		for _, tp := range fn.TypeParams {
			params[tp.Name] = tp
		}
	}
	return &typeEnv{reg: c.reg, params: params}
}

func (c *checker) newExpr(n *ast.NewExpr, fn *symbols.FuncSymbol) (*typesystem.InstantiatedType, error) {
	env := c.callEnv(fn)
	it, err := env.resolve(n.Class)
	if err != nil {
		return nil, err
	}
	cls := c.classFor(it)
	if cls == nil {
		return nil, diagnostic.Semantic(n.Class.Name, "not a class")
	}

	subst := classSubst(cls, it)
	// `ClassName{Args}.new(...)` is constructor sugar, not a call to a
	// user-declared method named "new": it allocates an instance and, if
	// the class declares an "init" method, invokes it (spec §4.7's heap
	// object header: "init/release/ctor function descriptors").
	ctor := cls.MethodByName("init")
	if ctor == nil {
		if len(n.Args) != 0 {
			return nil, diagnostic.Semantic(cls.Name, "class has no constructor to take arguments")
		}
		n.SetStaticType(it)
		return it, nil
	}

	params := ctor.Params
	if len(params) > 0 {
		params = params[1:] // drop implicit self
	}
	if len(n.Args) != len(params) {
		return nil, diagnostic.Semantic(cls.Name, "constructor expects %d argument(s), got %d", len(params), len(n.Args))
	}
	for i, p := range params {
		at, err := c.expr(n.Args[i], fn)
		if err != nil {
			return nil, err
		}
		want, err := c.reg.Translate(p.DeclaredType, subst)
		if err != nil {
			return nil, err
		}
		if !c.reg.IsSubtypeOf(at, want) {
			return nil, diagnostic.TypeErr(cls.Name, "constructor argument %d: cannot use %s as %s", i+1, at, want)
		}
	}

	typeArgs := append([]*typesystem.InstantiatedType{}, it.Args...)
	n.Bound = &bind.BoundFunction{Func: ctor, Args: typeArgs}
	n.SetStaticType(it)
	return it, nil
}
