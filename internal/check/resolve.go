// Package check implements Venom's two-pass semantic and type checker
// (spec §4.4): a name pass that builds the symbol table and resolves
// references, followed by a type pass that binds a static type to every
// expression node.
package check

import (
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// typeEnv resolves a TypeRef's name against both the registry's named
// types and a set of in-scope generic placeholders (a function or class's
// own type parameters).
type typeEnv struct {
	reg    *typesystem.Registry
	params map[string]*typesystem.Type
}

func (e *typeEnv) resolve(ref *ast.TypeRef) (*typesystem.InstantiatedType, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Resolved != nil {
		return ref.Resolved, nil
	}
	if p, ok := e.params[ref.Name]; ok {
		it, err := e.reg.Instantiate(p, nil)
		if err != nil {
			return nil, err
		}
		ref.Resolved = it
		return it, nil
	}
	t := e.reg.Lookup(ref.Name)
	if t == nil {
		return nil, diagnostic.Semantic(ref.Name, "undefined type")
	}
	args := make([]*typesystem.InstantiatedType, len(ref.Args))
	for i, a := range ref.Args {
		ait, err := e.resolve(a)
		if err != nil {
			return nil, err
		}
		args[i] = ait
	}
	it, err := e.reg.Instantiate(t, args)
	if err != nil {
		return nil, diagnostic.Semantic(ref.Name, "%s", err)
	}
	ref.Resolved = it
	return it, nil
}

// childEnv returns a typeEnv that additionally knows the given
// placeholders, without mutating e (used when entering a generic
// function or class whose own type parameters shadow nothing from the
// caller's env in this language — each declaration's placeholders are
// fresh Types per internal/typesystem.NewTypeParam).
func (e *typeEnv) childEnv(extra map[string]*typesystem.Type) *typeEnv {
	if len(extra) == 0 {
		return e
	}
	merged := make(map[string]*typesystem.Type, len(e.params)+len(extra))
	for k, v := range e.params {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &typeEnv{reg: e.reg, params: merged}
}

func placeholderMap(reg *typesystem.Registry, names []string) ([]*typesystem.Type, map[string]*typesystem.Type) {
	list := make([]*typesystem.Type, len(names))
	m := make(map[string]*typesystem.Type, len(names))
	for i, n := range names {
		p := reg.NewTypeParam(n)
		list[i] = p
		m[n] = p
	}
	return list, m
}

// asVarSymbol adapts a concrete symbols.* pointer to ast.Symbol, returning
// nil cleanly through a nil *T (Go's "typed nil in an interface" trap) so
// callers can store possibly-absent symbols without an extra nil check.
func asVarSymbol(v *symbols.VariableSymbol) ast.Symbol {
	if v == nil {
		return nil
	}
	return v
}
