package vm

import "github.com/stephentu/venom-lang-sub001/internal/codegen"

// step decodes and executes exactly one instruction from the current
// frame via a switch-per-opcode dispatch.
func (vm *VM) step() error {
	f := vm.curFrame()
	if f.ip < 0 || f.ip >= len(vm.chunk.Code) {
		return fatal("instruction pointer %d out of bounds (len=%d)", f.ip, len(vm.chunk.Code))
	}
	op := codegen.Opcode(vm.readByte())

	switch op {
	case codegen.OpPushInt:
		vm.push(IntCell(vm.readInt64()))
	case codegen.OpPushFloat:
		vm.push(FloatCell(vm.readFloat64()))
	case codegen.OpPushBool:
		vm.push(BoolCell(vm.readByte() != 0))
	case codegen.OpPushNil:
		vm.push(NilCell())
	case codegen.OpPushString:
		idx := vm.readUint16()
		if int(idx) >= len(vm.chunk.Strings) {
			return fatal("invalid string constant index %d", idx)
		}
		vm.push(RefCell(newString(vm.chunk.Strings[idx])))

	case codegen.OpPop:
		vm.pop()
	case codegen.OpPopRef:
		c := vm.pop()
		if c.Tag == TagRef {
			decref(c.Obj)
		}
	case codegen.OpDupRef:
		c := vm.peek()
		if c.Tag == TagRef {
			incref(c.Obj)
		}
		vm.push(c)

	case codegen.OpLoadLocal:
		slot := vm.readUint16()
		v := f.locals[slot]
		if v.Tag == TagRef {
			incref(v.Obj)
		}
		vm.push(v)
	case codegen.OpStoreLocal:
		slot := vm.readUint16()
		v := vm.pop()
		if old := f.locals[slot]; old.Tag == TagRef {
			decref(old.Obj)
		}
		f.locals[slot] = v

	case codegen.OpLoadAttr:
		idx := vm.readUint16()
		recv := vm.pop()
		if recv.Tag != TagRef || recv.Obj == nil {
			return fatal("attribute access on a non-object receiver")
		}
		if int(idx) >= len(recv.Obj.Attrs) {
			return fatal("attribute index %d out of range", idx)
		}
		v := recv.Obj.Attrs[idx]
		if v.Tag == TagRef {
			incref(v.Obj)
		}
		vm.push(v)
		decref(recv.Obj)
	case codegen.OpStoreAttr:
		idx := vm.readUint16()
		val := vm.pop()
		recv := vm.pop()
		if recv.Tag != TagRef || recv.Obj == nil {
			return fatal("attribute assignment on a non-object receiver")
		}
		if int(idx) >= len(recv.Obj.Attrs) {
			return fatal("attribute index %d out of range", idx)
		}
		if old := recv.Obj.Attrs[idx]; old.Tag == TagRef {
			decref(old.Obj)
		}
		recv.Obj.Attrs[idx] = val
		decref(recv.Obj)

	case codegen.OpAdd:
		return vm.binaryArith(op)
	case codegen.OpSub, codegen.OpMul, codegen.OpDiv, codegen.OpMod:
		return vm.binaryArith(op)
	case codegen.OpEq, codegen.OpNeq, codegen.OpLt, codegen.OpLe, codegen.OpGt, codegen.OpGe:
		return vm.compare(op)
	case codegen.OpAnd, codegen.OpOr:
		r := vm.pop()
		l := vm.pop()
		if op == codegen.OpAnd {
			vm.push(BoolCell(l.truthy() && r.truthy()))
		} else {
			vm.push(BoolCell(l.truthy() || r.truthy()))
		}
	case codegen.OpNot:
		v := vm.pop()
		vm.push(BoolCell(!v.truthy()))
	case codegen.OpNeg:
		v := vm.pop()
		switch v.Tag {
		case TagInt:
			vm.push(IntCell(-v.AsInt()))
		case TagFloat:
			vm.push(FloatCell(-v.AsFloat()))
		default:
			return fatal("cannot negate a non-numeric value")
		}

	case codegen.OpJump:
		target := vm.readUint16()
		f.ip = int(target)
	case codegen.OpBranchFalse:
		target := vm.readUint16()
		cond := vm.pop()
		if !cond.truthy() {
			f.ip = int(target)
		}

	case codegen.OpCall:
		idx := vm.readUint16()
		argc := int(vm.readByte())
		if int(idx) >= len(vm.chunk.FuncNames) {
			return fatal("invalid function constant index %d", idx)
		}
		return vm.call(vm.chunk.FuncNames[idx], argc)
	case codegen.OpCallVirtual:
		slot := int(vm.readUint16())
		argc := int(vm.readByte())
		recv := vm.stack[len(vm.stack)-argc]
		if recv.Tag != TagRef || recv.Obj == nil {
			return fatal("virtual call on a nil receiver")
		}
		if recv.Obj.Class == nil || slot >= len(recv.Obj.Class.Vtable) {
			return fatal("receiver has no vtable slot %d", slot)
		}
		return vm.call(recv.Obj.Class.Vtable[slot], argc)
	case codegen.OpRet, codegen.OpRetRef:
		return vm.ret()

	case codegen.OpAllocObj:
		idx := vm.readUint16()
		if int(idx) >= len(vm.chunk.ClassNames) {
			return fatal("invalid class constant index %d", idx)
		}
		className := vm.chunk.ClassNames[idx]
		cd, ok := vm.prog.Classes[className]
		if !ok {
			return fatal("unknown class %q", className)
		}
		vm.push(RefCell(&Object{Refcount: 1, Class: cd, Attrs: make([]Cell, cd.NumAttrs)}))
	case codegen.OpIncref:
		c := vm.peek()
		if c.Tag == TagRef {
			incref(c.Obj)
		}
	case codegen.OpDecref:
		c := vm.pop()
		if c.Tag == TagRef {
			decref(c.Obj)
		}

	case codegen.OpHalt:
		vm.frames = nil
	default:
		return fatal("unknown opcode %d", byte(op))
	}
	return nil
}

func (vm *VM) binaryArith(op codegen.Opcode) error {
	r := vm.pop()
	l := vm.pop()

	if l.Tag == TagRef && r.Tag == TagRef && op == codegen.OpAdd && l.Obj != nil && r.Obj != nil {
		result := RefCell(newString(l.Obj.Str + r.Obj.Str))
		decref(l.Obj)
		decref(r.Obj)
		vm.push(result)
		return nil
	}

	if l.Tag == TagFloat || r.Tag == TagFloat {
		lf, rf := toFloat(l), toFloat(r)
		switch op {
		case codegen.OpAdd:
			vm.push(FloatCell(lf + rf))
		case codegen.OpSub:
			vm.push(FloatCell(lf - rf))
		case codegen.OpMul:
			vm.push(FloatCell(lf * rf))
		case codegen.OpDiv:
			if rf == 0 {
				return fatal("division by zero")
			}
			vm.push(FloatCell(lf / rf))
		case codegen.OpMod:
			return fatal("modulo is only defined for Int")
		}
		return nil
	}

	li, ri := l.AsInt(), r.AsInt()
	switch op {
	case codegen.OpAdd:
		sum := li + ri
		if (ri > 0 && sum < li) || (ri < 0 && sum > li) {
			return fatal("integer overflow in addition")
		}
		vm.push(IntCell(sum))
	case codegen.OpSub:
		diff := li - ri
		if (ri < 0 && diff < li) || (ri > 0 && diff > li) {
			return fatal("integer overflow in subtraction")
		}
		vm.push(IntCell(diff))
	case codegen.OpMul:
		prod := li * ri
		if li != 0 && prod/li != ri {
			return fatal("integer overflow in multiplication")
		}
		vm.push(IntCell(prod))
	case codegen.OpDiv:
		if ri == 0 {
			return fatal("division by zero")
		}
		vm.push(IntCell(li / ri))
	case codegen.OpMod:
		if ri == 0 {
			return fatal("division by zero")
		}
		vm.push(IntCell(li % ri))
	}
	return nil
}

func toFloat(c Cell) float64 {
	if c.Tag == TagInt {
		return float64(c.AsInt())
	}
	return c.AsFloat()
}

func (vm *VM) compare(op codegen.Opcode) error {
	r := vm.pop()
	l := vm.pop()

	var result bool
	switch op {
	case codegen.OpEq:
		result = cellsEqual(l, r)
	case codegen.OpNeq:
		result = !cellsEqual(l, r)
	case codegen.OpLt, codegen.OpLe, codegen.OpGt, codegen.OpGe:
		lf, rf := toFloat(l), toFloat(r)
		switch op {
		case codegen.OpLt:
			result = lf < rf
		case codegen.OpLe:
			result = lf <= rf
		case codegen.OpGt:
			result = lf > rf
		case codegen.OpGe:
			result = lf >= rf
		}
	}
	if l.Tag == TagRef {
		decref(l.Obj)
	}
	if r.Tag == TagRef {
		decref(r.Obj)
	}
	vm.push(BoolCell(result))
	return nil
}

// cellsEqual implements Venom's "==": identity for Ref cells (spec's
// "comparisons, and identity-based ==/!=" per internal/check's operator
// table), value equality for the four inline kinds.
func cellsEqual(l, r Cell) bool {
	if l.Tag == TagRef || r.Tag == TagRef {
		return l.Tag == r.Tag && l.Obj == r.Obj
	}
	if l.Tag != r.Tag {
		if (l.Tag == TagInt && r.Tag == TagFloat) || (l.Tag == TagFloat && r.Tag == TagInt) {
			return toFloat(l) == toFloat(r)
		}
		return false
	}
	switch l.Tag {
	case TagNil:
		return true
	case TagBool:
		return l.AsBool() == r.AsBool()
	case TagFloat:
		return l.AsFloat() == r.AsFloat()
	default:
		return l.Data == r.Data
	}
}
