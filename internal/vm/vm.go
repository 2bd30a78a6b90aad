package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/stephentu/venom-lang-sub001/internal/codegen"
	"github.com/stephentu/venom-lang-sub001/internal/config"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
)

// InitialStackSize and MaxFrameCount are New's defaults when no
// *config.Config is supplied: a generous starting capacity so the common
// case never reallocates, and a call-depth ceiling. A .venomrc.yaml can
// override both (internal/config.Config.VM).
const (
	InitialStackSize = config.DefaultInitialStackSize
	MaxFrameCount    = config.DefaultMaxFrameCount
)

// Frame is one ongoing call activation: its function descriptor, an
// instruction pointer into the shared Chunk.Code, and its own local
// variable slots (disjoint from the operand stack).
type Frame struct {
	desc   *codegen.FuncDesc
	ip     int
	locals []Cell
}

// NativeFunc implements a builtin FuncDesc (Native == true). args holds
// exactly desc.NumParams cells, popped off the operand stack in
// parameter order (self first, for a method). The implementation owns
// deciding what happens to each arg's reference: transfer it into
// storage it keeps (no refcount change), or decref it once it is done
// reading it — exactly the bookkeeping a compiled function's frame
// teardown would otherwise perform on its locals.
type NativeFunc func(vm *VM, args []Cell) (Cell, error)

// VM executes one linked Program (spec §4.7).
type VM struct {
	prog      *codegen.Program
	chunk     *codegen.Chunk
	stack     []Cell
	frames    []*Frame
	natives   map[string]NativeFunc
	maxFrames int
	Stdout    io.Writer
}

// New builds a VM ready to run prog, with the native dispatch table for
// print and the List/Map builtins (SPEC_FULL.md §12.1) pre-registered.
// cfg may be nil, in which case the package defaults apply.
func New(prog *codegen.Program, stdout io.Writer, cfg *config.Config) *VM {
	if cfg == nil {
		cfg = config.Default()
	}
	vm := &VM{
		prog:      prog,
		chunk:     prog.Chunk,
		stack:     make([]Cell, 0, cfg.VM.InitialStackSize),
		natives:   map[string]NativeFunc{},
		maxFrames: cfg.VM.MaxFrameCount,
		Stdout:    stdout,
	}
	registerNatives(vm)
	return vm
}

func (vm *VM) push(c Cell) { vm.stack = append(vm.stack, c) }

func (vm *VM) pop() Cell {
	n := len(vm.stack) - 1
	c := vm.stack[n]
	vm.stack = vm.stack[:n]
	return c
}

func (vm *VM) peek() Cell { return vm.stack[len(vm.stack)-1] }

func (vm *VM) curFrame() *Frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) readByte() byte {
	f := vm.curFrame()
	b := vm.chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16() uint16 {
	f := vm.curFrame()
	v := binary.BigEndian.Uint16(vm.chunk.Code[f.ip : f.ip+2])
	f.ip += 2
	return v
}

func (vm *VM) readInt64() int64 {
	f := vm.curFrame()
	v := int64(binary.BigEndian.Uint64(vm.chunk.Code[f.ip : f.ip+8]))
	f.ip += 8
	return v
}

func (vm *VM) readFloat64() float64 {
	f := vm.curFrame()
	bits := binary.BigEndian.Uint64(vm.chunk.Code[f.ip : f.ip+8])
	f.ip += 8
	return math.Float64frombits(bits)
}

func fatal(format string, args ...interface{}) error {
	return &diagnostic.Fatal{Message: fmt.Sprintf(format, args...)}
}

// Run executes prog's entry function to completion (spec §6's compile-
// then-execute pipeline stage).
func (vm *VM) Run() error {
	entry := vm.prog.Funcs[vm.prog.EntryFunc]
	if entry == nil {
		return fatal("no entry function %q in program", vm.prog.EntryFunc)
	}
	vm.frames = append(vm.frames, &Frame{desc: entry, ip: entry.Entry, locals: make([]Cell, entry.NumLocals)})
	if err := vm.execFrame(1); err != nil {
		return err
	}
	if len(vm.stack) > 0 {
		vm.pop() // discard $main's synthesized Void return
	}
	return nil
}

// execFrame runs instructions until the frame stack depth drops below
// floor. Ordinary CALL/RET never leave this loop — they push/pop frames
// and the same iteration picks up the new top frame next step. The only
// caller that passes floor > 1 is a NativeFunc re-entering the
// interpreter (spec §4.7's "current_context() for re-entrancy"), e.g.
// print(value) invoking value's stringify vtable slot.
func (vm *VM) execFrame(floor int) error {
	for len(vm.frames) >= floor {
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

// invoke re-enters the interpreter to run funcName to completion with
// args already evaluated, returning its single result cell. Used by
// native functions that must call back into Venom code (print's
// stringify dispatch).
func (vm *VM) invoke(funcName string, args []Cell) (Cell, error) {
	desc, ok := vm.prog.Funcs[funcName]
	if !ok {
		return Cell{}, fatal("call to undefined function %q", funcName)
	}
	if desc.Native {
		fn, ok := vm.natives[funcName]
		if !ok {
			return Cell{}, fatal("no native implementation registered for %q", funcName)
		}
		return fn(vm, args)
	}
	if len(vm.frames) >= vm.maxFrames {
		return Cell{}, fatal("call stack exhausted calling %q", funcName)
	}
	locals := make([]Cell, desc.NumLocals)
	copy(locals, args)
	vm.frames = append(vm.frames, &Frame{desc: desc, ip: desc.Entry, locals: locals})
	if err := vm.execFrame(len(vm.frames)); err != nil {
		return Cell{}, err
	}
	return vm.pop(), nil
}

func (vm *VM) call(funcName string, argc int) error {
	desc, ok := vm.prog.Funcs[funcName]
	if !ok {
		return fatal("call to undefined function %q", funcName)
	}
	args := make([]Cell, argc)
	copy(args, vm.stack[len(vm.stack)-argc:])
	vm.stack = vm.stack[:len(vm.stack)-argc]

	if desc.Native {
		fn, ok := vm.natives[funcName]
		if !ok {
			return fatal("no native implementation registered for %q", funcName)
		}
		result, err := fn(vm, args)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}

	if len(vm.frames) >= vm.maxFrames {
		return fatal("call stack exhausted calling %q", funcName)
	}
	locals := make([]Cell, desc.NumLocals)
	copy(locals, args)
	vm.frames = append(vm.frames, &Frame{desc: desc, ip: desc.Entry, locals: locals})
	return nil
}

func (vm *VM) ret() error {
	retVal := vm.pop()
	f := vm.curFrame()
	for _, c := range f.locals {
		if c.Tag == TagRef {
			decref(c.Obj)
		}
	}
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.push(retVal)
	return nil
}
