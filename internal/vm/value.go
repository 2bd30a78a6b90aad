// Package vm implements Venom's stack-based bytecode interpreter (spec
// §4.7): a tagged-cell operand stack, a frame stack of call activations,
// and refcounted heap objects with a per-class vtable.
package vm

import "math"

// CellTag identifies what kind of value a Cell holds. Int, Float, Bool,
// and Nil are held inline (no heap allocation, no refcounting); Ref
// holds a pointer into the refcounted heap.
type CellTag uint8

const (
	TagNil CellTag = iota
	TagInt
	TagFloat
	TagBool
	TagRef
)

// Cell is the VM's tagged-union stack slot: a type tag plus a 64-bit
// payload for the inline kinds, and a heap pointer for everything else.
type Cell struct {
	Tag  CellTag
	Data uint64
	Obj  *Object
}

func NilCell() Cell               { return Cell{Tag: TagNil} }
func IntCell(v int64) Cell        { return Cell{Tag: TagInt, Data: uint64(v)} }
func FloatCell(v float64) Cell    { return Cell{Tag: TagFloat, Data: math.Float64bits(v)} }
func BoolCell(v bool) Cell {
	var d uint64
	if v {
		d = 1
	}
	return Cell{Tag: TagBool, Data: d}
}
func RefCell(o *Object) Cell { return Cell{Tag: TagRef, Obj: o} }

func (c Cell) AsInt() int64     { return int64(c.Data) }
func (c Cell) AsFloat() float64 { return math.Float64frombits(c.Data) }
func (c Cell) AsBool() bool     { return c.Data == 1 }
func (c Cell) IsRef() bool      { return c.Tag == TagRef }

func (c Cell) truthy() bool {
	switch c.Tag {
	case TagBool:
		return c.AsBool()
	case TagNil:
		return false
	default:
		return true
	}
}
