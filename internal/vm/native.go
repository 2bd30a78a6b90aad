package vm

import (
	"fmt"
	"strconv"
)

// registerNatives wires every FuncDesc internal/check's registerBuiltins
// declared with Native: true to its Go implementation: print, the
// List/Map methods (SPEC_FULL.md §12.1), and the default stringify
// fallback internal/codegen installs for a class with no stringify
// method of its own.
func registerNatives(vm *VM) {
	vm.natives["print"] = nativePrint
	vm.natives["$default_stringify"] = nativeDefaultStringify
	vm.natives["List.push"] = nativeListPush
	vm.natives["List.get"] = nativeListGet
	vm.natives["List.set"] = nativeListSet
	vm.natives["List.size"] = nativeListSize
	vm.natives["Map.get"] = nativeMapGet
	vm.natives["Map.set"] = nativeMapSet
	vm.natives["Map.size"] = nativeMapSize
}

// stringify renders c per spec §6: Nil/Bool/Int/Float are formatted
// directly by the native print path (they are never heap objects so
// there is no vtable slot to call); a genuine Ref cell dispatches
// through its class's stringify vtable slot (String's own stringify is
// simply its own payload, so it short-circuits rather than round-
// tripping through a vtable call).
func (vm *VM) stringify(c Cell) (string, error) {
	switch c.Tag {
	case TagNil:
		return "Nil", nil
	case TagBool:
		if c.AsBool() {
			return "True", nil
		}
		return "False", nil
	case TagInt:
		return strconv.FormatInt(c.AsInt(), 10), nil
	case TagFloat:
		return formatFloat(c.AsFloat()), nil
	case TagRef:
		if c.Obj == nil {
			return "Nil", nil
		}
		if c.Obj.Class == nil {
			return c.Obj.Str, nil
		}
		if len(c.Obj.Class.Vtable) == 0 {
			return fmt.Sprintf("<%s>", c.Obj.Class.Name), nil
		}
		incref(c.Obj)
		result, err := vm.invoke(c.Obj.Class.Vtable[0], []Cell{c})
		if err != nil {
			return "", err
		}
		if result.Tag != TagRef || result.Obj == nil {
			return "", fatal("stringify on %s did not return a String", c.Obj.Class.Name)
		}
		s := result.Obj.Str
		decref(result.Obj)
		return s, nil
	default:
		return "", fatal("unrecognized cell tag %d", c.Tag)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

func nativePrint(vm *VM, args []Cell) (Cell, error) {
	s, err := vm.stringify(args[0])
	if err != nil {
		return Cell{}, err
	}
	if args[0].Tag == TagRef {
		decref(args[0].Obj)
	}
	fmt.Fprintln(vm.Stdout, s)
	return NilCell(), nil
}

// nativeDefaultStringify is slot 0 for any class that declares no
// stringify method: "<ClassName>" identifies the instance without
// walking its attributes.
func nativeDefaultStringify(vm *VM, args []Cell) (Cell, error) {
	self := args[0]
	name := "Object"
	if self.Tag == TagRef && self.Obj != nil && self.Obj.Class != nil {
		name = self.Obj.Class.Name
	}
	if self.Tag == TagRef {
		decref(self.Obj)
	}
	return RefCell(newString(fmt.Sprintf("<%s>", name))), nil
}

func nativeListPush(vm *VM, args []Cell) (Cell, error) {
	self, value := args[0], args[1]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("push called on a nil List")
	}
	self.Obj.List = append(self.Obj.List, value)
	decref(self.Obj)
	return NilCell(), nil
}

func nativeListGet(vm *VM, args []Cell) (Cell, error) {
	self, index := args[0], args[1]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("get called on a nil List")
	}
	i := index.AsInt()
	if i < 0 || i >= int64(len(self.Obj.List)) {
		return Cell{}, fatal("List index %d out of range (size %d)", i, len(self.Obj.List))
	}
	v := self.Obj.List[i]
	if v.Tag == TagRef {
		incref(v.Obj)
	}
	decref(self.Obj)
	return v, nil
}

func nativeListSet(vm *VM, args []Cell) (Cell, error) {
	self, index, value := args[0], args[1], args[2]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("set called on a nil List")
	}
	i := index.AsInt()
	if i < 0 || i >= int64(len(self.Obj.List)) {
		return Cell{}, fatal("List index %d out of range (size %d)", i, len(self.Obj.List))
	}
	if old := self.Obj.List[i]; old.Tag == TagRef {
		decref(old.Obj)
	}
	self.Obj.List[i] = value
	decref(self.Obj)
	return NilCell(), nil
}

func nativeListSize(vm *VM, args []Cell) (Cell, error) {
	self := args[0]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("size called on a nil List")
	}
	n := len(self.Obj.List)
	decref(self.Obj)
	return IntCell(int64(n)), nil
}

func nativeMapGet(vm *VM, args []Cell) (Cell, error) {
	self, key := args[0], args[1]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("get called on a nil Map")
	}
	entry, ok := self.Obj.Map[keyOf(key)]
	if key.Tag == TagRef {
		decref(key.Obj)
	}
	if !ok {
		decref(self.Obj)
		return Cell{}, fatal("Map has no such key")
	}
	v := entry.value
	if v.Tag == TagRef {
		incref(v.Obj)
	}
	decref(self.Obj)
	return v, nil
}

func nativeMapSet(vm *VM, args []Cell) (Cell, error) {
	self, key, value := args[0], args[1], args[2]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("set called on a nil Map")
	}
	if self.Obj.Map == nil {
		self.Obj.Map = map[mapKey]mapEntry{}
	}
	k := keyOf(key)
	if old, ok := self.Obj.Map[k]; ok {
		if old.value.Tag == TagRef {
			decref(old.value.Obj)
		}
		if old.key.Tag == TagRef {
			decref(old.key.Obj)
		}
	}
	self.Obj.Map[k] = mapEntry{key: key, value: value}
	decref(self.Obj)
	return NilCell(), nil
}

func nativeMapSize(vm *VM, args []Cell) (Cell, error) {
	self := args[0]
	if self.Tag != TagRef || self.Obj == nil {
		return Cell{}, fatal("size called on a nil Map")
	}
	n := len(self.Obj.Map)
	decref(self.Obj)
	return IntCell(int64(n)), nil
}
