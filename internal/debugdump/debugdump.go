// Package debugdump renders --print-ast and --print-bytecode output
// (SPEC_FULL.md §10.4): a short opaque id tags each function descriptor
// and AST declaration node. Every tag is a fresh id, so the same function
// carries different ids in the two dumps; a reader matches them by name.
// Ids are generated with github.com/google/uuid and are purely cosmetic —
// they never affect compilation semantics or hashing.
package debugdump

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/codegen"
)

// ID returns a fresh 8-hex-character correlation id.
func ID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// AST renders prog as an indented tree, tagging every FuncDecl and
// ClassDecl with a fresh correlation id so --print-bytecode's function
// dump (Bytecode below) can reference the same name back to its
// declaration here.
func AST(prog *ast.Program) string {
	var sb strings.Builder
	for _, s := range prog.Statements {
		dumpStmt(&sb, s, 0)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dumpStmt(sb *strings.Builder, s ast.Stmt, depth int) {
	indent(sb, depth)
	switch n := s.(type) {
	case *ast.FuncDecl:
		fmt.Fprintf(sb, "FuncDecl %s [%s]\n", n.Name, ID())
		for _, st := range n.Body.Stmts {
			dumpStmt(sb, st, depth+1)
		}
	case *ast.ClassDecl:
		fmt.Fprintf(sb, "ClassDecl %s [%s]\n", n.Name, ID())
		for _, a := range n.Attrs {
			indent(sb, depth+1)
			fmt.Fprintf(sb, "AttrDecl %s: %s\n", a.Name, a.Type.Name)
		}
		for _, m := range n.Methods {
			dumpStmt(sb, m, depth+1)
		}
	case *ast.WhileStmt:
		sb.WriteString("WhileStmt\n")
		for _, st := range n.Body.Stmts {
			dumpStmt(sb, st, depth+1)
		}
	case *ast.AssignStmt:
		sb.WriteString("AssignStmt\n")
	case *ast.ReturnStmt:
		sb.WriteString("ReturnStmt\n")
	case *ast.ExprStmt:
		sb.WriteString("ExprStmt\n")
	default:
		fmt.Fprintf(sb, "%T\n", n)
	}
}

// Bytecode renders prog's linked Program: every function descriptor in
// name order, its entry offset and local count, and every class's vtable
// layout. Each function gets the same kind of correlation id AST
// produces (a fresh one, since the linked Program carries no pointer
// back to the declaring AST node) so a reader can still eyeball-match
// "this specialization came from that generic def" across both dumps by
// name.
func Bytecode(prog *codegen.Program) string {
	var sb strings.Builder

	names := make([]string, 0, len(prog.Funcs))
	for name := range prog.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fd := prog.Funcs[name]
		kind := "bytecode"
		if fd.Native {
			kind = "native"
		}
		fmt.Fprintf(&sb, "func %s [%s] entry=%d params=%d locals=%d (%s)\n",
			name, ID(), fd.Entry, fd.NumParams, fd.NumLocals, kind)
	}

	classNames := make([]string, 0, len(prog.Classes))
	for name := range prog.Classes {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)

	for _, name := range classNames {
		cd := prog.Classes[name]
		fmt.Fprintf(&sb, "class %s [%s] attrs=%d vtable=%v\n", name, ID(), cd.NumAttrs, cd.Vtable)
	}
	return sb.String()
}
