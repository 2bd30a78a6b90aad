package symbols

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// ErrArityMismatch is returned by Materialize when the supplied type
// argument count does not match fn's declared type parameters.
var ErrArityMismatch = errors.New("symbols: generic argument arity mismatch")

// Materialize returns the specialized FuncSymbol for fn applied to
// typeArgs, creating and caching it on first request (spec §9: "on
// demand... creates a specialized clone and caches it on the FuncSymbol
// keyed by the argument tuple"). Non-generic functions (len(TypeParams)
// == 0) are returned unchanged.
func Materialize(reg *typesystem.Registry, fn *FuncSymbol, typeArgs []*typesystem.InstantiatedType) (*FuncSymbol, error) {
	if len(fn.TypeParams) == 0 {
		return fn, nil
	}
	if len(typeArgs) != len(fn.TypeParams) {
		return nil, errors.Wrapf(ErrArityMismatch, "%s wants %d, got %d", fn.Name, len(fn.TypeParams), len(typeArgs))
	}
	key := specializationKey(typeArgs)
	if fn.Specializations == nil {
		fn.Specializations = make(map[string]*FuncSymbol)
	}
	if existing, ok := fn.Specializations[key]; ok {
		return existing, nil
	}

	subst := make(typesystem.Substitution, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		subst[tp] = typeArgs[i]
	}

	rw := &templateRewriter{localMap: make(map[*VariableSymbol]*VariableSymbol), subst: subst, reg: reg}

	newParams := make([]*VariableSymbol, len(fn.Params))
	for i, p := range fn.Params {
		nt, err := reg.Translate(p.DeclaredType, subst)
		if err != nil {
			return nil, err
		}
		np := &VariableSymbol{Name: p.Name, DeclaredType: nt, Storage: p.Storage, Slot: -1}
		rw.localMap[p] = np
		newParams[i] = np
	}
	newReturn, err := reg.Translate(fn.ReturnType, subst)
	if err != nil {
		return nil, err
	}

	ctx := &ast.CloneContext{Mode: ast.CloneTemplate, Registry: reg, TypeSubst: subst, Rewriter: rw}
	newBody, _ := ast.CloneStmt(fn.Body, ctx).(*ast.Block)

	spec := &FuncSymbol{
		Name:           fn.Name,
		Params:         newParams,
		ReturnType:     newReturn,
		EnclosingClass: fn.EnclosingClass,
		Body:           newBody,
	}
	fn.Specializations[key] = spec
	return spec, nil
}

func specializationKey(args []*typesystem.InstantiatedType) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// templateRewriter implements ast.Rewriter for CloneTemplate: it retargets
// references to a generic function's own parameters (and, transitively,
// its locals, once the name pass has run over the specialized copy) to
// freshly created symbols carrying the substituted type. References to
// function and class symbols pass through unchanged — a call to another
// generic function from within fn's body is re-bound to its own
// specialization separately, via the BoundFunction recorded on that call
// site, not by this rewriter.
type templateRewriter struct {
	localMap map[*VariableSymbol]*VariableSymbol
	subst    typesystem.Substitution
	reg      *typesystem.Registry
}

func (r *templateRewriter) Rewrite(orig ast.Symbol) (ast.Symbol, bool) {
	v, ok := orig.(*VariableSymbol)
	if !ok {
		return orig, false
	}
	if nv, ok := r.localMap[v]; ok {
		return nv, true
	}
	nt, err := r.reg.Translate(v.DeclaredType, r.subst)
	if err != nil {
		nt = v.DeclaredType
	}
	nv := &VariableSymbol{Name: v.Name, DeclaredType: nt, Storage: v.Storage, Slot: -1}
	r.localMap[v] = nv
	return nv, true
}

func (r *templateRewriter) EnterScope(ast.Node) {}
func (r *templateRewriter) LeaveScope(ast.Node) {}
