package check

import (
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// NamePass builds the symbol table for prog: every scope-introducing node
// allocates a child scope, declaration nodes define their symbol, and
// variable/type references resolve and attach. It stops at the first
// SemanticViolation (undefined name, duplicate declaration, cyclic
// inheritance).
func NamePass(prog *ast.Program, reg *typesystem.Registry) (*symbols.ModuleSymbol, error) {
	root := symbols.NewRootTable(prog)
	mod := &symbols.ModuleSymbol{Name: "main", Scope: root}
	env := &typeEnv{reg: reg, params: map[string]*typesystem.Type{}}

	registerBuiltins(reg, root)

	np := &namer{reg: reg, env: env}

	// First pass: register every class's name and type-parameter
	// placeholders so a class declared later in the file can still be
	// named as another class's parent or attribute type.
	for _, s := range prog.Statements {
		if cd, ok := s.(*ast.ClassDecl); ok {
			if err := np.predeclareClass(root, cd); err != nil {
				return nil, err
			}
		}
	}
	// Second pass: resolve parents, attributes, method signatures and
	// bodies, and top-level function declarations, in program order.
	for _, s := range prog.Statements {
		if err := np.stmt(root, mod, s); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

type namer struct {
	reg *typesystem.Registry
	env *typeEnv
}

func (np *namer) predeclareClass(scope *symbols.Table, cd *ast.ClassDecl) error {
	typeParams, paramMap := placeholderMap(np.reg, cd.TypeParams)
	t, err := np.reg.CreateType(cd.Name, len(cd.TypeParams), nil)
	if err != nil {
		return diagnostic.Semantic(cd.Name, "%s", err)
	}
	cls := &symbols.ClassSymbol{Name: cd.Name, Type: t, TypeParams: typeParams}
	if err := scope.DefineClass(cd.Name, cls); err != nil {
		return diagnostic.Semantic(cd.Name, "%s", err)
	}
	cd.Symbol = cls
	_ = paramMap
	return nil
}

func (np *namer) stmt(scope *symbols.Table, mod *symbols.ModuleSymbol, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return np.expr(scope, n.X)
	case *ast.AssignStmt:
		return np.assign(scope, n)
	case *ast.WhileStmt:
		if err := np.expr(scope, n.Cond); err != nil {
			return err
		}
		child := scope.NewChildScope(n)
		return np.block(child, mod, n.Body)
	case *ast.ReturnStmt:
		if n.Value != nil {
			return np.expr(scope, n.Value)
		}
		return nil
	case *ast.FuncDecl:
		_, err := np.declareFunc(scope, nil, n)
		return err
	case *ast.ClassDecl:
		return np.finishClass(scope, n)
	default:
		return diagnostic.Semantic("", "unhandled statement in name pass")
	}
}

func (np *namer) block(scope *symbols.Table, mod *symbols.ModuleSymbol, b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := np.stmt(scope, mod, s); err != nil {
			return err
		}
	}
	return nil
}

// declareFunc defines fn's FuncSymbol in scope, builds its parameter
// scope, and recurses into its body. np.env at call time already carries
// whatever placeholders are in lexical scope (the enclosing class's, for
// a method; the enclosing function's, for a nested function); declareFunc
// only adds fn's own. A method's FuncSymbol.TypeParams additionally lists
// the owning class's placeholders ahead of its own, so Materialize (spec
// §9) specializes a method exactly the way it specializes a standalone
// generic function, bound by the receiver's instantiation args.
func (np *namer) declareFunc(scope *symbols.Table, owner *symbols.ClassSymbol, fn *ast.FuncDecl) (*symbols.FuncSymbol, error) {
	ownTypeParams, ownMap := placeholderMap(np.reg, fn.TypeParams)
	funcEnv := np.env.childEnv(ownMap)

	var allTypeParams []*typesystem.Type
	if owner != nil {
		allTypeParams = append(allTypeParams, owner.TypeParams...)
	}
	allTypeParams = append(allTypeParams, ownTypeParams...)

	fsym := &symbols.FuncSymbol{Name: fn.Name, EnclosingClass: owner, TypeParams: allTypeParams, Body: fn.Body}
	fn.Symbol = fsym

	if owner == nil {
		if err := scope.DefineFunction(fn.Name, fsym); err != nil {
			return nil, diagnostic.Semantic(fn.Name, "%s", err)
		}
	}

	fnScope := scope.NewChildScope(fn)
	fsym.Scope = fnScope

	if owner != nil {
		sArgs, err := selfArgs(np.reg, owner)
		if err != nil {
			return nil, diagnostic.Semantic(owner.Name, "%s", err)
		}
		selfType, err := np.reg.Instantiate(owner.Type, sArgs)
		if err != nil {
			return nil, diagnostic.Semantic(owner.Name, "%s", err)
		}
		self := &symbols.VariableSymbol{Name: "self", DeclaredType: selfType, Scope: fnScope, Storage: symbols.StorageParam, Slot: -1}
		if err := fnScope.DefineVariable("self", self); err != nil {
			return nil, diagnostic.Semantic("self", "%s", err)
		}
		fsym.Params = append(fsym.Params, self)
	}

	for _, p := range fn.Params {
		pt, err := funcEnv.resolve(p.Type)
		if err != nil {
			return nil, err
		}
		psym := &symbols.VariableSymbol{Name: p.Name, DeclaredType: pt, Scope: fnScope, Storage: symbols.StorageParam, Slot: -1}
		if err := fnScope.DefineVariable(p.Name, psym); err != nil {
			return nil, diagnostic.Semantic(p.Name, "%s", err)
		}
		fsym.Params = append(fsym.Params, psym)
	}

	if fn.ReturnType != nil {
		rt, err := funcEnv.resolve(fn.ReturnType)
		if err != nil {
			return nil, err
		}
		fsym.ReturnType = rt
	} else {
		fsym.ReturnType = np.reg.MustInstantiate(np.reg.Void())
	}

	for _, s := range fn.Body.Stmts {
		if err := np.stmtInFunc(fnScope, s, funcEnv); err != nil {
			return nil, err
		}
	}
	return fsym, nil
}

// stmtInFunc is like stmt but threads the function's typeEnv so nested
// function declarations resolve type annotations against the same
// generic placeholders as their enclosing function.
func (np *namer) stmtInFunc(scope *symbols.Table, s ast.Stmt, env *typeEnv) error {
	saved := np.env
	np.env = env
	defer func() { np.env = saved }()

	switch n := s.(type) {
	case *ast.ExprStmt:
		return np.expr(scope, n.X)
	case *ast.AssignStmt:
		return np.assign(scope, n)
	case *ast.WhileStmt:
		if err := np.expr(scope, n.Cond); err != nil {
			return err
		}
		child := scope.NewChildScope(n)
		for _, bs := range n.Body.Stmts {
			if err := np.stmtInFunc(child, bs, env); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStmt:
		if n.Value != nil {
			return np.expr(scope, n.Value)
		}
		return nil
	case *ast.FuncDecl:
		_, err := np.declareFunc(scope, nil, n)
		return err
	default:
		return diagnostic.Semantic("", "unhandled statement in function body")
	}
}

func (np *namer) assign(scope *symbols.Table, n *ast.AssignStmt) error {
	switch target := n.Target.(type) {
	case *ast.Ident:
		if sym, declScope := scope.LookupVariableScope(target.Name, true); sym != nil {
			_ = declScope
			target.ResolvedSymbol = sym
		} else {
			sym := &symbols.VariableSymbol{Name: target.Name, Scope: scope, Storage: symbols.StorageLocal, Slot: -1}
			if err := scope.DefineVariable(target.Name, sym); err != nil {
				return diagnostic.Semantic(target.Name, "%s", err)
			}
			target.ResolvedSymbol = sym
		}
	case *ast.AttrAccess:
		if err := np.expr(scope, target); err != nil {
			return err
		}
	default:
		return diagnostic.Semantic("", "invalid assignment target")
	}
	return np.expr(scope, n.Value)
}

// expr resolves variable references and recurses into subexpressions.
// Attribute names and call callees that need class information are left
// to the type pass, which has static types available to look them up;
// here we only resolve plain Idents against the lexical scope chain.
func (np *namer) expr(scope *symbols.Table, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.StringLiteral, *ast.NilLiteral:
		return nil
	case *ast.Ident:
		sym := scope.LookupVariable(n.Name, true)
		if sym == nil {
			return diagnostic.Semantic(n.Name, "undefined name")
		}
		n.ResolvedSymbol = sym
		return nil
	case *ast.BinaryExpr:
		if err := np.expr(scope, n.Left); err != nil {
			return err
		}
		return np.expr(scope, n.Right)
	case *ast.UnaryExpr:
		return np.expr(scope, n.Operand)
	case *ast.AttrAccess:
		return np.expr(scope, n.Receiver)
	case *ast.CallExpr:
		if err := np.expr(scope, n.Callee); err != nil {
			if _, ok := n.Callee.(*ast.Ident); ok {
				// A bare call to a function name: function names live in
				// their own namespace, not the variable namespace, so a
				// failed variable lookup here is expected.
			} else {
				return err
			}
		}
		for _, a := range n.Args {
			if err := np.expr(scope, a); err != nil {
				return err
			}
		}
		return nil
	case *ast.NewExpr:
		for _, a := range n.Args {
			if err := np.expr(scope, a); err != nil {
				return err
			}
		}
		return nil
	default:
		return diagnostic.Semantic("", "unhandled expression in name pass")
	}
}

// selfArgs builds the "self" receiver's instantiation arguments for a
// method: the class's own type-parameter placeholders instantiated as
// themselves, so a generic method's body sees self's type exactly as
// symbols.Materialize will later substitute it.
func selfArgs(reg *typesystem.Registry, cls *symbols.ClassSymbol) ([]*typesystem.InstantiatedType, error) {
	if len(cls.TypeParams) == 0 {
		return nil, nil
	}
	args := make([]*typesystem.InstantiatedType, len(cls.TypeParams))
	for i, p := range cls.TypeParams {
		it, err := reg.Instantiate(p, nil)
		if err != nil {
			return nil, err
		}
		args[i] = it
	}
	return args, nil
}

// finishClass resolves cd's parent and attribute types, creates the
// shared class-body scope, and processes each method through the same
// declareFunc path a free function uses, with owner set so declareFunc
// prepends the implicit self parameter.
func (np *namer) finishClass(scope *symbols.Table, cd *ast.ClassDecl) error {
	cls, _ := cd.Symbol.(*symbols.ClassSymbol)
	classParams := make(map[string]*typesystem.Type, len(cd.TypeParams))
	for i, name := range cd.TypeParams {
		classParams[name] = cls.TypeParams[i]
	}

	if cd.Parent != nil {
		parentCls := scope.LookupClass(cd.Parent.Name, true)
		if parentCls == nil {
			return diagnostic.Semantic(cd.Parent.Name, "undefined parent class")
		}
		for p := parentCls; p != nil; p = p.Parent {
			if p == cls {
				return diagnostic.Semantic(cd.Name, "cyclic class inheritance")
			}
		}
		cls.Parent = parentCls
		cls.Type.Parent = parentCls.Type
	}

	classScope := scope.NewChildScope(cd)
	cls.Scope = classScope

	savedEnv := np.env
	classEnv := np.env.childEnv(classParams)
	np.env = classEnv
	defer func() { np.env = savedEnv }()

	for _, a := range cd.Attrs {
		at, err := classEnv.resolve(a.Type)
		if err != nil {
			return err
		}
		asym := &symbols.VariableSymbol{Name: a.Name, DeclaredType: at, Scope: classScope, Storage: symbols.StorageAttribute, Slot: -1}
		if err := classScope.DefineVariable(a.Name, asym); err != nil {
			return diagnostic.Semantic(a.Name, "%s", err)
		}
		a.Symbol = asym
		cls.Attrs = append(cls.Attrs, asym)
	}

	for _, m := range cd.Methods {
		fsym, err := np.declareFunc(classScope, cls, m)
		if err != nil {
			return err
		}
		cls.Methods = append(cls.Methods, fsym)
	}
	return nil
}
