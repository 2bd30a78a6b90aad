package vm

import "github.com/stephentu/venom-lang-sub001/internal/codegen"

// Object is a refcounted heap value (spec §4.7's heap object header: a
// refcount and a class-object pointer, followed by attribute slots).
// String, List, and Map are native objects with no Venom-declared Attrs;
// they use the Str/List/Map payload fields instead. A String carries a
// nil Class; a List or Map is allocated by ALLOC_OBJ and carries its
// List$T/Map$K$V codegen.ClassDesc.
type Object struct {
	Refcount int
	Class    *codegen.ClassDesc // nil for String payloads
	Attrs    []Cell

	Str  string
	List []Cell
	Map  map[mapKey]mapEntry
}

type mapKey struct {
	tag  CellTag
	data uint64
	str  string
}

type mapEntry struct {
	key   Cell
	value Cell
}

func keyOf(c Cell) mapKey {
	k := mapKey{tag: c.Tag, data: c.Data}
	if c.Tag == TagRef && c.Obj != nil {
		k.str = c.Obj.Str
	}
	return k
}

func newString(s string) *Object { return &Object{Refcount: 1, Str: s} }

// incref increments o's refcount; called whenever a Ref cell is
// duplicated (OP_LOAD_LOCAL, OP_LOAD_ATTR, OP_DUP_REF of a Ref cell).
func incref(o *Object) {
	if o != nil {
		o.Refcount++
	}
}

// decref decrements o's refcount, releasing its owned references
// (recursively decrementing any Ref-typed attributes/elements) once it
// reaches zero, mirroring spec §4.7's class "release" descriptor.
func decref(o *Object) {
	if o == nil {
		return
	}
	o.Refcount--
	if o.Refcount > 0 {
		return
	}
	for _, a := range o.Attrs {
		if a.Tag == TagRef {
			decref(a.Obj)
		}
	}
	for _, e := range o.List {
		if e.Tag == TagRef {
			decref(e.Obj)
		}
	}
	for _, e := range o.Map {
		if e.value.Tag == TagRef {
			decref(e.value.Obj)
		}
		if e.key.Tag == TagRef {
			decref(e.key.Obj)
		}
	}
}
