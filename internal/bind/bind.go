// Package bind defines BoundFunction, the (symbol, type-arguments) pair
// recorded on every call site once the type checker resolves it. It is
// split out from internal/symbols so that internal/ast can reference a
// call's binding without importing internal/symbols — symbols imports ast
// (a FuncSymbol owns its body AST), so ast must not import symbols back.
package bind

import (
	"fmt"
	"strings"

	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// FuncRef is the subset of symbols.FuncSymbol that BoundFunction needs.
// symbols.FuncSymbol implements this without bind ever importing symbols.
type FuncRef interface {
	FuncName() string
	TypeParamCount() int
}

// BoundFunction identifies a specific specialization request: a function
// symbol together with the type arguments selected at its call site.
type BoundFunction struct {
	Func FuncRef
	Args []*typesystem.InstantiatedType
}

// IsFullyInstantiated holds iff every provided type argument is ground.
func (b BoundFunction) IsFullyInstantiated() bool {
	if b.Func == nil {
		return false
	}
	if len(b.Args) != b.Func.TypeParamCount() {
		return false
	}
	for _, a := range b.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

// CreateFuncName deterministically mangles the symbol name and the bound
// type arguments into the name used for the generated specialization, e.g.
// "get$Int" for Box{Int}'s get() method.
func (b BoundFunction) CreateFuncName() string {
	if len(b.Args) == 0 {
		return b.Func.FuncName()
	}
	parts := make([]string, len(b.Args))
	for i, a := range b.Args {
		parts[i] = sanitize(a.String())
	}
	return fmt.Sprintf("%s$%s", b.Func.FuncName(), strings.Join(parts, "$"))
}

func sanitize(s string) string {
	return strings.NewReplacer("{", "_", "}", "_", ",", "_").Replace(s)
}
