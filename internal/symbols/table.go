package symbols

import "github.com/pkg/errors"

// ErrDuplicateName is returned by Define when name is already bound in
// the same scope, for the same kind.
var ErrDuplicateName = errors.New("symbols: duplicate declaration")

// Table is one node in the tree of lexical scopes: four sub-maps
// (variables, functions, classes, modules) keyed by name, plus a
// back-reference to the parent scope. Lookup walks the parent chain.
type Table struct {
	parent    *Table
	variables map[string]*VariableSymbol
	functions map[string]*FuncSymbol
	classes   map[string]*ClassSymbol
	modules   map[string]*ModuleSymbol
	owner     interface{} // the ast.Node this scope was opened for, for diagnostics
}

// NewRootTable creates a scope with no parent (a module's top-level
// scope).
func NewRootTable(owner interface{}) *Table {
	return newTable(nil, owner)
}

func newTable(parent *Table, owner interface{}) *Table {
	return &Table{
		parent:    parent,
		variables: make(map[string]*VariableSymbol),
		functions: make(map[string]*FuncSymbol),
		classes:   make(map[string]*ClassSymbol),
		modules:   make(map[string]*ModuleSymbol),
		owner:     owner,
	}
}

// NewChildScope allocates a fresh child of t, owned by ownerNode (the AST
// node that introduced the scope, e.g. a *ast.FuncDecl).
func (t *Table) NewChildScope(ownerNode interface{}) *Table {
	return newTable(t, ownerNode)
}

// Parent returns the enclosing scope, or nil at the root.
func (t *Table) Parent() *Table { return t.parent }

// Owner returns the AST node this scope was opened for (a *ast.FuncDecl,
// *ast.ClassDecl, *ast.WhileStmt, or *ast.Program at the root). Closure
// lifting walks this to find which function's body a declaration belongs
// to, without internal/symbols needing to know ast's concrete node types.
func (t *Table) Owner() interface{} { return t.owner }

// DefineVariable declares sym in this scope. Fails if the name is already
// bound here (shadowing an outer scope's declaration is allowed).
func (t *Table) DefineVariable(name string, sym *VariableSymbol) error {
	if _, ok := t.variables[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "variable %q", name)
	}
	t.variables[name] = sym
	return nil
}

func (t *Table) DefineFunction(name string, sym *FuncSymbol) error {
	if _, ok := t.functions[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "function %q", name)
	}
	t.functions[name] = sym
	return nil
}

func (t *Table) DefineClass(name string, sym *ClassSymbol) error {
	if _, ok := t.classes[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "class %q", name)
	}
	t.classes[name] = sym
	return nil
}

func (t *Table) DefineModule(name string, sym *ModuleSymbol) error {
	if _, ok := t.modules[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "module %q", name)
	}
	t.modules[name] = sym
	return nil
}

// LookupVariable searches this scope, then (if recursive) each parent in
// turn.
func (t *Table) LookupVariable(name string, recursive bool) *VariableSymbol {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.variables[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// LookupVariableScope is LookupVariable but also reports the scope that
// declares it. Its caller is the name pass's assignment handling; the
// closure-lifting pass reads VariableSymbol.Scope instead.
func (t *Table) LookupVariableScope(name string, recursive bool) (*VariableSymbol, *Table) {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.variables[name]; ok {
			return sym, s
		}
		if !recursive {
			return nil, nil
		}
	}
	return nil, nil
}

func (t *Table) LookupFunction(name string, recursive bool) *FuncSymbol {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.functions[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

func (t *Table) LookupClass(name string, recursive bool) *ClassSymbol {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.classes[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

func (t *Table) LookupModule(name string, recursive bool) *ModuleSymbol {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.modules[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// Variables returns the variables declared directly in this scope, for
// callers (codegen slot assignment, lifting) that need a stable
// enumeration rather than point lookups.
func (t *Table) Variables() map[string]*VariableSymbol { return t.variables }
