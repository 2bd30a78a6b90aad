package codegen

import "encoding/binary"

// Chunk is one module's instruction stream plus its constant pools:
// Code/Strings/FuncNames/ClassNames/Lines and the writeByte/writeOp/
// writeUint16/add* helpers, sized for Venom's tagged-cell instruction set.
type Chunk struct {
	Code      []byte
	Strings   []string // constant pool for PUSH_STRING
	FuncNames []string // constant pool for CALL's function-name operand
	ClassNames []string // constant pool for ALLOC_OBJ's class-name operand
	Lines     []int
}

func newChunk() *Chunk {
	return &Chunk{
		Code: make([]byte, 0, 256),
	}
}

func (c *Chunk) writeByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

func (c *Chunk) writeOp(op Opcode, line int) int {
	pos := len(c.Code)
	c.writeByte(byte(op), line)
	return pos
}

func (c *Chunk) writeUint16(v uint16, line int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	c.writeByte(buf[0], line)
	c.writeByte(buf[1], line)
}

func (c *Chunk) writeInt64(v int64, line int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	for _, b := range buf {
		c.writeByte(b, line)
	}
}

func (c *Chunk) writeFloat64Bits(bits uint64, line int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bits)
	for _, b := range buf {
		c.writeByte(b, line)
	}
}

// patchUint16 overwrites the 2-byte operand at pos, used by the emitter's
// second label-resolution pass (spec §4.6).
func (c *Chunk) patchUint16(pos int, v uint16) {
	binary.BigEndian.PutUint16(c.Code[pos:pos+2], v)
}

func (c *Chunk) addString(s string) int {
	for i, existing := range c.Strings {
		if existing == s {
			return i
		}
	}
	c.Strings = append(c.Strings, s)
	return len(c.Strings) - 1
}

func (c *Chunk) addFuncName(name string) int {
	for i, existing := range c.FuncNames {
		if existing == name {
			return i
		}
	}
	c.FuncNames = append(c.FuncNames, name)
	return len(c.FuncNames) - 1
}

func (c *Chunk) addClassName(name string) int {
	for i, existing := range c.ClassNames {
		if existing == name {
			return i
		}
	}
	c.ClassNames = append(c.ClassNames, name)
	return len(c.ClassNames) - 1
}

// FuncDesc is the Linker's entry for one emitted function (spec §4.6):
// its entry offset, parameter layout, and whether it is a native builtin
// with no bytecode body.
type FuncDesc struct {
	Name         string
	Entry        int    // byte offset into Chunk.Code; meaningless if Native
	NumParams    int
	RefParamMask uint64 // bit i set if parameter i is a Ref-tagged cell
	NumLocals    int    // total local slots (params + body locals) to allocate in a frame
	Native       bool
}

// FuncDescMap is the Linker's function table, keyed by the emitted
// (mangled) name stored in Chunk.FuncNames.
type FuncDescMap map[string]*FuncDesc

// ClassDesc is the Linker's per-(class, type-argument tuple) object
// descriptor: attribute layout and a vtable of emitted function names.
// Slot 0 is always "stringify" (SPEC_FULL.md §12.3's class-layout
// invariant), regardless of whether the class declares one.
type ClassDesc struct {
	Name        string
	NumAttrs    int
	AttrRefMask uint64   // not filled in by classDescFor; always 0
	Vtable      []string // emitted function names, indexed by vtable slot
	MethodNames []string // method name at each Vtable slot, parallel to Vtable
	CtorName    string   // emitted name of the "init" method to invoke from `new`; "" if none
}

// SlotOf returns the vtable slot index for a method name, or -1 if cls
// does not expose one (the caller site failed to type-check otherwise).
func (cd *ClassDesc) SlotOf(name string) int {
	for i, n := range cd.MethodNames {
		if n == name {
			return i
		}
	}
	return -1
}

// ClassObjMap is the Linker's class table, keyed by mangled class name
// (e.g. "Box" for a non-generic class, "Box$Int" for Box{Int}).
type ClassObjMap map[string]*ClassDesc

// Program is everything internal/vm needs to execute one compiled
// module: the instruction stream and constant pools, the two descriptor
// tables, and the entry function's emitted name.
type Program struct {
	Chunk     *Chunk
	Funcs     FuncDescMap
	Classes   ClassObjMap
	EntryFunc string
}
