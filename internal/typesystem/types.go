// Package typesystem implements Venom's type registry: named types, their
// instantiations, and hash-consing of instantiated types within a single
// compilation.
package typesystem

import (
	"fmt"
	"strings"
)

// Type is a named declaration with a fixed arity. Builtins (Int, Float,
// Bool, String, Object, Void, List, Map) and user classes are both
// represented this way; the distinction is Kind.
type Type struct {
	Name    string
	Arity   int
	Kind    TypeKind
	Parent  *Type // declared parent class, nil for builtins and Object itself
	id      int   // identity within the owning Registry
	zeroary *InstantiatedType
}

// TypeKind distinguishes how a Type participates in subtyping and lookup.
type TypeKind int

const (
	KindBuiltin TypeKind = iota
	KindClass
	// KindParam marks a generic type-parameter placeholder. Two placeholders
	// are never equal even if they share a Name: each is created fresh per
	// generic declaration so substitution cannot confuse them.
	KindParam
)

// InstantiatedType is a Type applied to a ground (or parametric, if it
// still contains a KindParam argument) tuple of type arguments. Instances
// are hash-consed by a Registry: structurally equal instantiations share
// identity within that Registry.
type InstantiatedType struct {
	Type *Type
	Args []*InstantiatedType
	key  string
}

// String renders the Venom source syntax for the type, e.g. "Box{Int}".
func (it *InstantiatedType) String() string {
	if it == nil {
		return "<nil type>"
	}
	if len(it.Args) == 0 {
		return it.Type.Name
	}
	parts := make([]string, len(it.Args))
	for i, a := range it.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s{%s}", it.Type.Name, strings.Join(parts, ","))
}

// Equals holds iff the two instantiations are the same hash-consed value.
// Within one Registry this is always equivalent to pointer identity; it is
// spelled out explicitly so callers never reach for reflect.DeepEqual.
func (it *InstantiatedType) Equals(other *InstantiatedType) bool {
	return it == other
}

// IsGround reports whether the instantiation (and everything it closes
// over) contains no unbound generic-parameter placeholder.
func (it *InstantiatedType) IsGround() bool {
	if it.Type.Kind == KindParam {
		return false
	}
	for _, a := range it.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

const (
	ObjectName = "Object"
	VoidName   = "Void"
	IntName    = "Int"
	FloatName  = "Float"
	BoolName   = "Bool"
	StringName = "String"
	ListName   = "List"
	MapName    = "Map"
)
