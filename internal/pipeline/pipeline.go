// Package pipeline sequences Venom's compile-then-execute stages (spec
// §6): parse → name pass → type pass → closure-lift/codegen → execute.
// Each stage is a separately testable package (internal/frontend,
// internal/check, internal/codegen, internal/vm); pipeline's only job is
// wiring them together and translating whatever they return into the
// CompileResult shape §6 specifies: one context value threaded through a
// fixed, linear sequence of stage calls, stopping at the first error.
package pipeline

import (
	"bytes"
	"io"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/check"
	"github.com/stephentu/venom-lang-sub001/internal/codegen"
	"github.com/stephentu/venom-lang-sub001/internal/config"
	"github.com/stephentu/venom-lang-sub001/internal/diagnostic"
	"github.com/stephentu/venom-lang-sub001/internal/frontend"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
	"github.com/stephentu/venom-lang-sub001/internal/vm"
)

// ResultKind is the outcome of a Compile call (spec §6).
type ResultKind int

const (
	Success ResultKind = iota
	InvalidSyntax
	SemanticError
	TypeError
	UnknownError
)

func (k ResultKind) String() string {
	switch k {
	case Success:
		return "Success"
	case InvalidSyntax:
		return "InvalidSyntax"
	case SemanticError:
		return "SemanticError"
	case TypeError:
		return "TypeError"
	default:
		return "UnknownError"
	}
}

// CompileResult is the outcome spec §6 requires the driver to produce:
// which stage (if any) failed, and a human-readable message.
type CompileResult struct {
	Kind    ResultKind
	Message string

	Program *ast.Program
	Module  *symbols.ModuleSymbol
	Linked  *codegen.Program
}

// Context carries one compilation's intermediate state across stages:
// the source text, the type registry stages share, and the active
// configuration. It is threaded through direct Go function calls rather
// than a processor/interface chain, since Venom's pipeline has a fixed
// five-stage shape with no plugin points to support.
type Context struct {
	Source   string
	Registry *typesystem.Registry
	Config   *config.Config
}

// NewContext builds a Context with a fresh type registry and default
// configuration.
func NewContext(source string) *Context {
	return &Context{Source: source, Registry: typesystem.NewRegistry(), Config: config.Default()}
}

// Compile runs parse → name pass → type pass → codegen/link, stopping at
// the first stage that fails and classifying the failure per spec §6's
// CompileResult. It does not execute the program; call Execute on a
// Success result to do that.
func Compile(ctx *Context) CompileResult {
	prog, err := frontend.Parse(ctx.Source)
	if err != nil {
		return CompileResult{Kind: InvalidSyntax, Message: err.Error()}
	}

	mod, err := check.NamePass(prog, ctx.Registry)
	if err != nil {
		return classifyCheckError(err, prog)
	}

	if err := check.TypePass(mod, prog, ctx.Registry); err != nil {
		return classifyCheckError(err, prog)
	}

	linked, err := codegen.Generate(ctx.Registry, mod, prog)
	if err != nil {
		return CompileResult{Kind: UnknownError, Message: err.Error(), Program: prog, Module: mod}
	}

	return CompileResult{Kind: Success, Program: prog, Module: mod, Linked: linked}
}

func classifyCheckError(err error, prog *ast.Program) CompileResult {
	if d, ok := err.(*diagnostic.Diagnostic); ok {
		kind := SemanticError
		if d.Kind == diagnostic.TypeViolation {
			kind = TypeError
		}
		return CompileResult{Kind: kind, Message: d.Error(), Program: prog}
	}
	return CompileResult{Kind: UnknownError, Message: err.Error(), Program: prog}
}

// Execute runs a successfully linked program to completion, writing
// print output to stdout. It is the second half of spec §6's "compile
// then execute" driver contract, kept separate from Compile so
// cmd/venom's `-c` flag can stop after Compile.
func Execute(result CompileResult, cfg *config.Config, stdout io.Writer) error {
	machine := vm.New(result.Linked, stdout, cfg)
	return machine.Run()
}

// Run is the common case: compile src and, on success, execute it,
// capturing print output. Used by the end-to-end tests; cmd/venom calls
// Compile and Execute itself.
func Run(src string) (CompileResult, string, error) {
	ctx := NewContext(src)
	result := Compile(ctx)
	if result.Kind != Success {
		return result, "", nil
	}
	var out bytes.Buffer
	err := Execute(result, ctx.Config, &out)
	return result, out.String(), err
}
