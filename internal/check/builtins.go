package check

import (
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// registerBuiltins declares the symbols NamePass cannot produce from
// Venom source: the free function print, and the List/Map builtin
// classes with their native methods (SPEC_FULL.md §12.1: push/get/set/
// size). Each native FuncSymbol carries Native=true and a nil Body;
// internal/codegen emits a call into internal/vm's native dispatch table
// for these instead of compiling a bytecode body.
//
// typesystem.NewRegistry already creates the List and Map Types
// themselves (so a user program's TypeRefs like List{Int} resolve);
// this only adds the ClassSymbol wrapper NamePass/TypePass's class
// lookups (checker.classFor) need to dispatch a method call against one.
func registerBuiltins(reg *typesystem.Registry, root *symbols.Table) {
	objectT := reg.MustInstantiate(reg.Object())
	voidT := reg.MustInstantiate(reg.Void())
	intT := reg.MustInstantiate(reg.Lookup(typesystem.IntName))

	printSym := &symbols.FuncSymbol{
		Name:       "print",
		Params:     []*symbols.VariableSymbol{{Name: "value", DeclaredType: objectT, Storage: symbols.StorageParam, Slot: -1}},
		ReturnType: voidT,
		Native:     true,
	}
	_ = root.DefineFunction("print", printSym)

	registerListClass(reg, root, intT, voidT)
	registerMapClass(reg, root, intT, voidT)
}

func param(name string, t *typesystem.InstantiatedType) *symbols.VariableSymbol {
	return &symbols.VariableSymbol{Name: name, DeclaredType: t, Storage: symbols.StorageParam, Slot: -1}
}

func nativeMethod(name string, selfT *typesystem.InstantiatedType, params []*symbols.VariableSymbol, ret *typesystem.InstantiatedType) *symbols.FuncSymbol {
	all := append([]*symbols.VariableSymbol{param("self", selfT)}, params...)
	return &symbols.FuncSymbol{Name: name, Params: all, ReturnType: ret, Native: true}
}

// registerListClass wires List{T}'s single placeholder into a
// ClassSymbol whose self type is List{T}, the same shape
// internal/check/name_pass.go's selfArgs builds for a user-declared
// generic class.
func registerListClass(reg *typesystem.Registry, root *symbols.Table, intT, voidT *typesystem.InstantiatedType) {
	t := reg.Lookup(typesystem.ListName)
	elemParam := reg.NewTypeParam("T")
	elemT := reg.MustInstantiate(elemParam)
	selfT := reg.MustInstantiate(t, elemT)

	cls := &symbols.ClassSymbol{Name: typesystem.ListName, Type: t, TypeParams: []*typesystem.Type{elemParam}}
	cls.Methods = []*symbols.FuncSymbol{
		nativeMethod("push", selfT, []*symbols.VariableSymbol{param("value", elemT)}, voidT),
		nativeMethod("get", selfT, []*symbols.VariableSymbol{param("index", intT)}, elemT),
		nativeMethod("set", selfT, []*symbols.VariableSymbol{param("index", intT), param("value", elemT)}, voidT),
		nativeMethod("size", selfT, nil, intT),
	}
	for _, m := range cls.Methods {
		m.EnclosingClass = cls
	}
	_ = root.DefineClass(typesystem.ListName, cls)
}

// registerMapClass wires Map{K,V}'s two placeholders the same way.
func registerMapClass(reg *typesystem.Registry, root *symbols.Table, intT, voidT *typesystem.InstantiatedType) {
	t := reg.Lookup(typesystem.MapName)
	keyParam := reg.NewTypeParam("K")
	valParam := reg.NewTypeParam("V")
	keyT := reg.MustInstantiate(keyParam)
	valT := reg.MustInstantiate(valParam)
	selfT := reg.MustInstantiate(t, keyT, valT)

	cls := &symbols.ClassSymbol{Name: typesystem.MapName, Type: t, TypeParams: []*typesystem.Type{keyParam, valParam}}
	cls.Methods = []*symbols.FuncSymbol{
		nativeMethod("get", selfT, []*symbols.VariableSymbol{param("key", keyT)}, valT),
		nativeMethod("set", selfT, []*symbols.VariableSymbol{param("key", keyT), param("value", valT)}, voidT),
		nativeMethod("size", selfT, nil, intT),
	}
	for _, m := range cls.Methods {
		m.EnclosingClass = cls
	}
	_ = root.DefineClass(typesystem.MapName, cls)
}
