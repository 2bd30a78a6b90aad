package codegen

import (
	"fmt"
	"strings"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/bind"
	"github.com/stephentu/venom-lang-sub001/internal/lift"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// entryFuncName is the emitted name of the synthetic top-level function
// (spec §4.5's "liftInto" home for module statements). It starts with a
// character the lexer never produces for an identifier, so it can never
// collide with a user declaration.
const entryFuncName = "$main"

// defaultStringifyName is the native fallback for a class's vtable slot
// 0 when it declares no "stringify" method of its own (SPEC_FULL.md
// §12.3).
const defaultStringifyName = "$default_stringify"

type queuedFunc struct {
	name   string
	target *symbols.FuncSymbol // lifted body to emit
}

type gen struct {
	reg  *typesystem.Registry
	mod  *symbols.ModuleSymbol
	main *symbols.FuncSymbol

	chunk   *Chunk
	funcs   FuncDescMap
	classes ClassObjMap

	names      map[*symbols.FuncSymbol]string // target (post-Materialize, pre-lift) -> emitted name
	enqueued   map[*symbols.FuncSymbol]bool
	classCache map[string]*ClassDesc
	classByType map[*typesystem.Type]*symbols.ClassSymbol
	queue      []queuedFunc
}

// classSymbolFor maps a registered Type back to the ClassSymbol that
// declares its attributes and methods; InstantiatedType only carries the
// Type, not the declaring symbol, so emission needs this side table.
func (g *gen) classSymbolFor(t *typesystem.Type) *symbols.ClassSymbol {
	return g.classByType[t]
}

// Generate runs the code generator and linker over a fully type-checked
// program: it lifts every reachable function (spec §4.5), assigns local
// slots, emits the instruction stream, and builds FuncDescMap/ClassObjMap
// (spec §4.6).
func Generate(reg *typesystem.Registry, mod *symbols.ModuleSymbol, prog *ast.Program) (*Program, error) {
	g := &gen{
		reg:        reg,
		mod:        mod,
		chunk:      newChunk(),
		funcs:      FuncDescMap{},
		classes:    ClassObjMap{},
		names:      map[*symbols.FuncSymbol]string{},
		enqueued:   map[*symbols.FuncSymbol]bool{},
		classCache: map[string]*ClassDesc{},
		classByType: map[*typesystem.Type]*symbols.ClassSymbol{},
	}
	g.funcs[defaultStringifyName] = &FuncDesc{Name: defaultStringifyName, Native: true, NumParams: 1}

	g.main = &symbols.FuncSymbol{Name: entryFuncName, Body: &ast.Block{Stmts: prog.Statements}, Scope: mod.Scope}
	g.enqueueLifted(entryFuncName, lift.Function(g.main, g.main))

	// List/Map are declared by internal/check's registerBuiltins, not by
	// any ast.ClassDecl, so they need registering here explicitly.
	for _, name := range []string{typesystem.ListName, typesystem.MapName} {
		if cls := mod.Scope.LookupClass(name, true); cls != nil {
			g.classByType[cls.Type] = cls
		}
	}

	for _, s := range prog.Statements {
		switch n := s.(type) {
		case *ast.FuncDecl:
			fsym, _ := n.Symbol.(*symbols.FuncSymbol)
			if fsym != nil && !fsym.IsGeneric() {
				g.registerCall(fsym, nil)
			}
		case *ast.ClassDecl:
			cls, _ := n.Symbol.(*symbols.ClassSymbol)
			if cls != nil {
				g.classByType[cls.Type] = cls
			}
			if cls != nil && len(cls.TypeParams) == 0 {
				if _, err := g.classDescFor(cls, nil); err != nil {
					return nil, err
				}
			}
		}
	}

	for len(g.queue) > 0 {
		item := g.queue[0]
		g.queue = g.queue[1:]
		if err := g.emitFunc(item.name, item.target); err != nil {
			return nil, err
		}
	}

	return &Program{Chunk: g.chunk, Funcs: g.funcs, Classes: g.classes, EntryFunc: entryFuncName}, nil
}

// registerCall resolves a call target (materializing it if generic),
// lifts it, and enqueues its body for emission the first time it is
// seen, returning the emitted name call sites should reference.
func (g *gen) registerCall(fsym *symbols.FuncSymbol, typeArgs []*typesystem.InstantiatedType) (string, error) {
	target := fsym
	if fsym.IsGeneric() {
		m, err := symbols.Materialize(g.reg, fsym, typeArgs)
		if err != nil {
			return "", err
		}
		target = m
	}
	if name, ok := g.names[target]; ok {
		return name, nil
	}
	name := mangledName(fsym, typeArgs)
	g.names[target] = name

	if fsym.Native {
		g.funcs[name] = &FuncDesc{Name: name, Native: true, NumParams: len(target.Params)}
		return name, nil
	}

	g.enqueueLifted(name, lift.Function(g.main, target))
	return name, nil
}

func (g *gen) enqueueLifted(name string, lifted *symbols.FuncSymbol) {
	if g.enqueued[lifted] {
		return
	}
	g.enqueued[lifted] = true
	g.queue = append(g.queue, queuedFunc{name: name, target: lifted})
}

// resolveBound is the CallExpr/NewExpr entry point: it reads n.Bound
// (set by internal/check's type pass) and returns the emitted name the
// CALL instruction should reference.
func (g *gen) resolveBound(b *bind.BoundFunction) (string, error) {
	fsym, ok := b.Func.(*symbols.FuncSymbol)
	if !ok {
		return "", fmt.Errorf("codegen: call target %v is not a FuncSymbol", b.Func)
	}
	return g.registerCall(fsym, b.Args)
}

var nameSanitizer = strings.NewReplacer("{", "_", "}", "_", ",", "_")

// mangledName deterministically names an emitted function: its class
// qualifier (if a method), plus a suffix per bound type argument, so
// each generic specialization gets a distinct FuncDescMap entry (spec
// §9's "each instantiation get its own generated function").
func mangledName(fsym *symbols.FuncSymbol, typeArgs []*typesystem.InstantiatedType) string {
	name := fsym.Name
	if fsym.EnclosingClass != nil {
		name = fsym.EnclosingClass.Name + "." + name
	}
	for _, a := range typeArgs {
		name += "$" + nameSanitizer.Replace(a.String())
	}
	return name
}

// attrLayout returns cls's full attribute list, oldest ancestor first, so
// an attribute's index is stable across every subclass that inherits it.
func attrLayout(cls *symbols.ClassSymbol) []*symbols.VariableSymbol {
	var chain []*symbols.ClassSymbol
	for c := cls; c != nil; c = c.Parent {
		chain = append(chain, c)
	}
	var attrs []*symbols.VariableSymbol
	for i := len(chain) - 1; i >= 0; i-- {
		attrs = append(attrs, chain[i].Attrs...)
	}
	return attrs
}

func attrIndex(cls *symbols.ClassSymbol, attr *symbols.VariableSymbol) int {
	for i, a := range attrLayout(cls) {
		if a == attr {
			return i
		}
	}
	return -1
}

// vtableMethodNames returns every virtually dispatchable method name
// declared anywhere in cls's ancestry, "stringify" always first (spec
// SPEC_FULL.md §12.3). "init" is excluded: it is always invoked directly
// by construction sugar, never through a vtable slot.
func vtableMethodNames(cls *symbols.ClassSymbol) []string {
	names := []string{"stringify"}
	seen := map[string]bool{"stringify": true}
	var chain []*symbols.ClassSymbol
	for c := cls; c != nil; c = c.Parent {
		chain = append(chain, c)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Methods {
			if m.Name == "init" || seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}

// classDescFor builds (or returns the cached) ClassDesc for cls bound at
// typeArgs, resolving and enqueuing every vtable method and the "init"
// constructor along the way.
func (g *gen) classDescFor(cls *symbols.ClassSymbol, typeArgs []*typesystem.InstantiatedType) (*ClassDesc, error) {
	mangled := cls.Name
	for _, a := range typeArgs {
		mangled += "$" + nameSanitizer.Replace(a.String())
	}
	if cd, ok := g.classCache[mangled]; ok {
		return cd, nil
	}
	cd := &ClassDesc{Name: mangled, NumAttrs: len(attrLayout(cls))}
	g.classCache[mangled] = cd
	g.classes[mangled] = cd

	for _, name := range vtableMethodNames(cls) {
		cd.MethodNames = append(cd.MethodNames, name)
		declCls, msym := cls.ResolveMethod(name)
		if msym == nil {
			cd.Vtable = append(cd.Vtable, defaultStringifyName)
			continue
		}
		boundArgs := classMethodArgs(declCls, cls, typeArgs)
		emitted, err := g.registerCall(msym, boundArgs)
		if err != nil {
			return nil, err
		}
		cd.Vtable = append(cd.Vtable, emitted)
	}

	if _, ctor := cls.ResolveMethod("init"); ctor != nil {
		boundArgs := classMethodArgs(cls, cls, typeArgs)
		emitted, err := g.registerCall(ctor, boundArgs)
		if err != nil {
			return nil, err
		}
		cd.CtorName = emitted
	}
	return cd, nil
}

// classMethodArgs maps the instantiation's type arguments (bound against
// cls's own placeholders) onto declCls's placeholders, mirroring
// internal/check's classSubst for the case where declCls is an ancestor
// of cls. Venom restricts a subclass to forwarding its own type
// arguments straight through to its parent (see internal/typesystem's
// IsSubtypeOf), so a positional match against cls's own TypeParams always
// carries across the chain unchanged.
func classMethodArgs(declCls, cls *symbols.ClassSymbol, typeArgs []*typesystem.InstantiatedType) []*typesystem.InstantiatedType {
	_ = declCls
	_ = cls
	return typeArgs
}
