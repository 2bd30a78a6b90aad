package typesystem

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrArityMismatch is returned by Instantiate when the argument count does
// not match the type's declared arity.
var ErrArityMismatch = errors.New("typesystem: arity mismatch")

// ErrDuplicateType is returned by CreateType when the name is already bound.
var ErrDuplicateType = errors.New("typesystem: type already declared")

// Registry owns every named Type and every InstantiatedType created for one
// compilation. It is the single mutator of that state (§5): nothing outside
// the semantic pass that owns a Registry should call its mutating methods.
type Registry struct {
	types     map[string]*Type
	instances map[string]*InstantiatedType
	nextID    int
	nextParam int

	objectType *Type
	voidType   *Type
}

// NewRegistry builds a Registry pre-seeded with Venom's builtin types:
// Int, Float, Bool, String, Object, Void, List<T>, Map<K,V>.
func NewRegistry() *Registry {
	r := &Registry{
		types:     make(map[string]*Type),
		instances: make(map[string]*InstantiatedType),
	}
	r.objectType = r.mustCreate(ObjectName, 0, KindBuiltin)
	r.voidType = r.mustCreate(VoidName, 0, KindBuiltin)
	r.mustCreate(IntName, 0, KindBuiltin)
	r.mustCreate(FloatName, 0, KindBuiltin)
	r.mustCreate(BoolName, 0, KindBuiltin)
	r.mustCreate(StringName, 0, KindBuiltin)
	r.mustCreate(ListName, 1, KindBuiltin)
	r.mustCreate(MapName, 2, KindBuiltin)
	return r
}

func (r *Registry) mustCreate(name string, arity int, kind TypeKind) *Type {
	t, err := r.createTyped(name, arity, kind, nil)
	if err != nil {
		panic(err)
	}
	return t
}

// CreateType registers a new user class. It fails with ErrDuplicateType if
// name is already bound.
func (r *Registry) CreateType(name string, arity int, parent *Type) (*Type, error) {
	return r.createTyped(name, arity, KindClass, parent)
}

func (r *Registry) createTyped(name string, arity int, kind TypeKind, parent *Type) (*Type, error) {
	if _, ok := r.types[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateType, "%q", name)
	}
	r.nextID++
	t := &Type{Name: name, Arity: arity, Kind: kind, Parent: parent, id: r.nextID}
	r.types[name] = t
	return t, nil
}

// Lookup finds a previously created named Type, or nil.
func (r *Registry) Lookup(name string) *Type {
	return r.types[name]
}

// Object and Void return the registry's singleton top and void types.
func (r *Registry) Object() *Type { return r.objectType }
func (r *Registry) Void() *Type   { return r.voidType }

// NewTypeParam creates a fresh generic type-parameter placeholder. Two
// placeholders with the same display name are never the same identity,
// so each generic declaration's "T" is distinct from every other
// declaration's "T".
func (r *Registry) NewTypeParam(displayName string) *Type {
	r.nextParam++
	r.nextID++
	return &Type{Name: displayName, Arity: 0, Kind: KindParam, id: r.nextID}
}

// Instantiate applies t to args, enforcing len(args) == t.Arity, and
// returns the hash-consed instance: structurally equal instantiations
// (including repeat calls with a zero-arity type) share identity.
func (r *Registry) Instantiate(t *Type, args []*InstantiatedType) (*InstantiatedType, error) {
	if len(args) != t.Arity {
		return nil, errors.Wrapf(ErrArityMismatch, "%s wants %d argument(s), got %d", t.Name, t.Arity, len(args))
	}
	if t.Arity == 0 {
		if t.zeroary == nil {
			t.zeroary = &InstantiatedType{Type: t, key: t.Name}
			r.instances[t.zeroary.key] = t.zeroary
		}
		return t.zeroary, nil
	}
	key := instKey(t, args)
	if existing, ok := r.instances[key]; ok {
		return existing, nil
	}
	it := &InstantiatedType{Type: t, Args: args, key: key}
	r.instances[key] = it
	return it, nil
}

// MustInstantiate panics on arity mismatch; used for builtins whose arity
// is known statically by the caller.
func (r *Registry) MustInstantiate(t *Type, args ...*InstantiatedType) *InstantiatedType {
	it, err := r.Instantiate(t, args)
	if err != nil {
		panic(err)
	}
	return it
}

func instKey(t *Type, args []*InstantiatedType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d#%s", t.id, t.Name)
	for _, a := range args {
		b.WriteByte('|')
		b.WriteString(argKey(a))
	}
	return b.String()
}

// argKey identifies an InstantiatedType by its own type's identity plus
// its arguments' keys, recursively; it does not rely on the pointer being
// already hash-consed so Translate can compute a prospective key before
// deciding whether a fresh instance is needed.
func argKey(it *InstantiatedType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", it.Type.id)
	for _, a := range it.Args {
		b.WriteByte(',')
		b.WriteString(argKey(a))
	}
	return b.String()
}

// Substitution maps a generic placeholder Type to a concrete (or still
// parametric) InstantiatedType.
type Substitution map[*Type]*InstantiatedType

// Translate replaces every placeholder in it per subst, returning a fresh
// (but still hash-consed) instantiation. Placeholders absent from subst
// are left as-is, which is how a nested generic's own type parameters
// survive a translation aimed at its enclosing scope.
func (r *Registry) Translate(it *InstantiatedType, subst Substitution) (*InstantiatedType, error) {
	if repl, ok := subst[it.Type]; ok {
		return repl, nil
	}
	if len(it.Args) == 0 {
		return it, nil
	}
	newArgs := make([]*InstantiatedType, len(it.Args))
	for i, a := range it.Args {
		na, err := r.Translate(a, subst)
		if err != nil {
			return nil, err
		}
		newArgs[i] = na
	}
	return r.Instantiate(it.Type, newArgs)
}

// IsSubtypeOf implements nominal subtyping over this registry's type
// graph: Object is the top of the reference hierarchy, a class's parent
// chain is followed transitively, and generic arguments are invariant
// (an exact hash-cons match is required at every level of the chain).
func (r *Registry) IsSubtypeOf(a, b *InstantiatedType) bool {
	if a.Equals(b) {
		return true
	}
	if b.Type == r.objectType {
		return true
	}
	if a.Type.Kind != KindClass || a.Type.Parent == nil {
		return false
	}
	parent := a.Type.Parent
	var parentArgs []*InstantiatedType
	if parent.Arity == len(a.Args) {
		// Venom restricts a generic class to passing its own type
		// parameters straight through to its parent, so the subclass's
		// instantiation arguments double as the parent's.
		parentArgs = a.Args
	}
	parentInst, err := r.Instantiate(parent, parentArgs)
	if err != nil {
		return false
	}
	return r.IsSubtypeOf(parentInst, b)
}
