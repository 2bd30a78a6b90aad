package pipeline_test

import (
	"testing"

	"github.com/stephentu/venom-lang-sub001/internal/pipeline"
	"github.com/stretchr/testify/require"
)

// TestRunScenarios runs spec §8's six end-to-end programs through the
// full compile-then-execute pipeline and checks their exact stdout,
// exercising the VM through the pipeline rather than against hand-built
// bytecode.
func TestRunScenarios(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"print_string", `print("hello")`, "hello\n"},
		{"arith_precedence", `x = 1 + 2 * 3; print(x)`, "7\n"},
		{"while_loop", `i = 0; while i < 3: i = i + 1; end; print(i)`, "3\n"},
		{"function_call", `def f(x:Int)->Int: return x*x; end; print(f(5))`, "25\n"},
		{
			"nested_function_lift",
			`def outer()->Int: a = 10; def inner()->Int: return a+1; end; return inner(); end; print(outer())`,
			"11\n",
		},
		{
			"generic_class_and_construction",
			`class Box{T}: attr v:T; def init(x:T)=v=x; def get()->T=v; end; b = Box{Int}.new(7); print(b.get())`,
			"7\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, stdout, err := pipeline.Run(tc.source)
			require.Equal(t, pipeline.Success, result.Kind, result.Message)
			require.NoError(t, err)
			require.Equal(t, tc.want, stdout)
		})
	}
}

func TestCompileInvalidSyntax(t *testing.T) {
	result := pipeline.Compile(pipeline.NewContext(`def f(): return 1`))
	require.Equal(t, pipeline.InvalidSyntax, result.Kind)
	require.NotEmpty(t, result.Message)
}

func TestCompileUnknownIdentifierIsSemanticError(t *testing.T) {
	result := pipeline.Compile(pipeline.NewContext(`print(y)`))
	require.Equal(t, pipeline.SemanticError, result.Kind)
	require.NotEmpty(t, result.Message)
}

func TestCompileTypeMismatchIsTypeError(t *testing.T) {
	result := pipeline.Compile(pipeline.NewContext(`def f(x:Int)->Int: return x; end; print(f("hello"))`))
	require.Equal(t, pipeline.TypeError, result.Kind)
	require.NotEmpty(t, result.Message)
}

func TestRunSkipsExecutionOnCompileFailure(t *testing.T) {
	result, stdout, err := pipeline.Run(`print(y)`)
	require.Equal(t, pipeline.SemanticError, result.Kind)
	require.NoError(t, err)
	require.Empty(t, stdout)
}
