// Package symbols implements Venom's symbol table: a tree of lexical
// scopes, and the four symbol kinds (variable, function, class, module)
// that can be declared in them.
package symbols

import (
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// StorageClass says where a Variable symbol's cell lives at runtime.
type StorageClass int

const (
	StorageLocal StorageClass = iota
	StorageParam
	StorageAttribute
	StorageGlobal
)

// VariableSymbol is a declared variable, parameter, class attribute, or
// module global.
type VariableSymbol struct {
	Name         string
	DeclaredType *typesystem.InstantiatedType
	Scope        *Table // the scope that declares this symbol; nil for symbols synthesized outside name-pass (e.g. generic specialization params)
	Storage      StorageClass
	Slot         int // always -1: internal/codegen keeps local slot numbers in its own per-function map
}

// SymbolName satisfies ast.Symbol.
func (v *VariableSymbol) SymbolName() string { return v.Name }

// FuncSymbol is a declared function or method.
type FuncSymbol struct {
	Name           string
	Params         []*VariableSymbol
	ReturnType     *typesystem.InstantiatedType
	TypeParams     []*typesystem.Type // generic placeholders, empty for non-generic functions
	EnclosingClass *ClassSymbol       // nil for free functions
	Body           *ast.Block
	Scope          *Table // this function's own parameter/local scope, for resolving calls in its body

	// Specializations caches, per concrete type-argument tuple (keyed by
	// the arguments' String() forms joined with ","), the generated body for a generic
	// function's specialization. Populated on demand (spec §9: "Generic
	// specialization").
	Specializations map[string]*FuncSymbol

	// Lifted is filled by the closure-lifting pass: the rewritten,
	// capture-free top-level symbol this function lifts to. It is the
	// identity mapping (itself) when the function has no captures.
	Lifted *FuncSymbol

	// Captures is the ordered capture set computed for this function by
	// the lifting pass; nil until lifting runs.
	Captures []*VariableSymbol

	// Native marks a builtin with no Venom-source Body (print, and the
	// List/Map methods of SPEC_FULL.md §12.1): internal/codegen emits a
	// call into internal/vm's native dispatch table for these instead of
	// compiling a bytecode body, and internal/lift leaves them untouched
	// (Lifted is set to the symbol itself, since a native function can
	// have no captures).
	Native bool
}

// SymbolName satisfies ast.Symbol.
func (f *FuncSymbol) SymbolName() string { return f.Name }

// FuncName satisfies bind.FuncRef.
func (f *FuncSymbol) FuncName() string { return f.Name }

// TypeParamCount satisfies bind.FuncRef.
func (f *FuncSymbol) TypeParamCount() int { return len(f.TypeParams) }

// IsGeneric reports whether this function has unbound type parameters.
func (f *FuncSymbol) IsGeneric() bool { return len(f.TypeParams) > 0 }

// ClassSymbol is a declared class.
type ClassSymbol struct {
	Name       string
	Parent     *ClassSymbol
	TypeParams []*typesystem.Type
	Type       *typesystem.Type // the registered typesystem.Type for this class
	Attrs      []*VariableSymbol
	Methods    []*FuncSymbol
	Scope      *Table // the shared class-body scope holding Attrs
}

// SymbolName satisfies ast.Symbol.
func (c *ClassSymbol) SymbolName() string { return c.Name }

// MethodByName finds a directly declared method (not inherited) by name.
func (c *ClassSymbol) MethodByName(name string) *FuncSymbol {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AttrByName finds a directly declared attribute by name.
func (c *ClassSymbol) AttrByName(name string) *VariableSymbol {
	for _, a := range c.Attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ResolveMethod walks the parent chain to find a method, returning the
// class that declares it along with the symbol (needed for vtable slot
// assignment, which must respect the declaring class's layout).
func (c *ClassSymbol) ResolveMethod(name string) (*ClassSymbol, *FuncSymbol) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m := cls.MethodByName(name); m != nil {
			return cls, m
		}
	}
	return nil, nil
}

// ResolveAttr walks the parent chain to find an attribute.
func (c *ClassSymbol) ResolveAttr(name string) (*ClassSymbol, *VariableSymbol) {
	for cls := c; cls != nil; cls = cls.Parent {
		if a := cls.AttrByName(name); a != nil {
			return cls, a
		}
	}
	return nil, nil
}

// IsSubclassOf reports whether c is other or descends from it.
func (c *ClassSymbol) IsSubclassOf(other *ClassSymbol) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls == other {
			return true
		}
	}
	return false
}

// ModuleSymbol is the top-level symbol for one compilation unit.
type ModuleSymbol struct {
	Name  string
	Scope *Table
}

// SymbolName satisfies ast.Symbol.
func (m *ModuleSymbol) SymbolName() string { return m.Name }
