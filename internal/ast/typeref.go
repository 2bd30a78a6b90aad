package ast

import "github.com/stephentu/venom-lang-sub001/internal/typesystem"

// TypeRef is the syntactic spelling of a type annotation as the parser
// saw it (a name plus generic arguments, e.g. "Box{Int}" or "T"). The
// semantic pass resolves each TypeRef to a typesystem.InstantiatedType
// and caches it in Resolved.
type TypeRef struct {
	Name     string
	Args     []*TypeRef
	Resolved *typesystem.InstantiatedType
}

func (t *TypeRef) ChildCount() int { return 0 }
func (t *TypeRef) Child(int) Node  { return nil }
func (t *TypeRef) NeedsNewScope(int) bool { return false }

// Clone produces a fresh TypeRef tree. TypeRefs never need the Lift
// rewriter (they carry no symbol reference), but CloneTemplate re-hash-
// conses an already-resolved type through ctx so a specialized function's
// parameter annotations stay consistent with its body.
func (t *TypeRef) Clone(ctx *CloneContext) *TypeRef {
	if t == nil {
		return nil
	}
	args := make([]*TypeRef, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Clone(ctx)
	}
	return &TypeRef{Name: t.Name, Args: args, Resolved: ctx.translateType(t.Resolved)}
}
