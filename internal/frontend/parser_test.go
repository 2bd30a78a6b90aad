package frontend_test

import (
	"testing"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/frontend"
	"github.com/stretchr/testify/require"
)

// TestParseScenarios exercises spec §8's six end-to-end source programs
// purely at the syntax level: each must parse without error into the
// AST shape the semantic passes expect.
func TestParseScenarios(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"print_string", `print("hello")`},
		{"arith_precedence", `x = 1 + 2 * 3; print(x)`},
		{"while_loop", `i = 0; while i < 3: i = i + 1; end; print(i)`},
		{"function_call", `def f(x:Int)->Int: return x*x; end; print(f(5))`},
		{"nested_function_lift", `def outer()->Int: a = 10; def inner()->Int: return a+1; end; return inner(); end; print(outer())`},
		{"generic_class", `class Box{T}: attr v:T; def init(x:T)=v=x; def get()->T=v; end; b = Box{Int}.new(7); print(b.get())`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, err := frontend.Parse(tc.input)
			require.NoError(t, err)
			require.NotEmpty(t, prog.Statements)
		})
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog, err := frontend.Parse("x = 1 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	assign, ok := prog.Statements[0].(*ast.AssignStmt)
	require.True(t, ok)

	add, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", add.Op)

	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
}

func TestParseWhileLoop(t *testing.T) {
	prog, err := frontend.Parse("i = 0; while i < 3: i = i + 1; end")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	ws, ok := prog.Statements[1].(*ast.WhileStmt)
	require.True(t, ok)
	cond, ok := ws.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "<", cond.Op)
	require.Len(t, ws.Body.Stmts, 1)
}

func TestParseFuncDecl(t *testing.T) {
	prog, err := frontend.Parse(`def f(x:Int)->Int: return x*x; end`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	fd, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "f", fd.Name)
	require.Len(t, fd.Params, 1)
	require.Equal(t, "Int", fd.ReturnType.Name)
	require.Len(t, fd.Body.Stmts, 1)

	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestParseNestedFunction(t *testing.T) {
	prog, err := frontend.Parse(`def outer()->Int: a = 10; def inner()->Int: return a+1; end; return inner(); end`)
	require.NoError(t, err)
	outer, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Len(t, outer.Body.Stmts, 3)

	inner, ok := outer.Body.Stmts[1].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "inner", inner.Name)
}

func TestParseGenericClassAndConstruction(t *testing.T) {
	src := `class Box{T}: attr v:T; def init(x:T)=v=x; def get()->T=v; end; b = Box{Int}.new(7); print(b.get())`
	prog, err := frontend.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)

	cd, ok := prog.Statements[0].(*ast.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "Box", cd.Name)
	require.Equal(t, []string{"T"}, cd.TypeParams)
	require.Len(t, cd.Attrs, 1)
	require.Len(t, cd.Methods, 2)

	initMethod := cd.Methods[0]
	require.Equal(t, "init", initMethod.Name)
	_, isAssign := initMethod.Body.Stmts[0].(*ast.AssignStmt)
	require.True(t, isAssign)

	getMethod := cd.Methods[1]
	require.Equal(t, "get", getMethod.Name)
	_, isReturn := getMethod.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, isReturn)

	assign, ok := prog.Statements[1].(*ast.AssignStmt)
	require.True(t, ok)
	newExpr, ok := assign.Value.(*ast.NewExpr)
	require.True(t, ok)
	require.Equal(t, "Box", newExpr.Class.Name)
	require.Equal(t, "Int", newExpr.Class.Args[0].Name)
	require.Len(t, newExpr.Args, 1)
}

func TestParseErrorOnMissingEnd(t *testing.T) {
	_, err := frontend.Parse(`def f(): return 1`)
	require.Error(t, err)
}
