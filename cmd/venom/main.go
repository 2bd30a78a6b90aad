// Command venom is the compile-then-execute driver of spec §6: a flat
// loop over os.Args picking out -p/-s/-c/--print-ast/--print-bytecode
// and a bare trailing filename, falling back to a line-oriented REPL
// stub when no filename is given. Argument parsing is a hand-rolled
// os.Args scan rather than the flag package, since the original
// implementation's own CLI (and the interpreters it was modeled on)
// favor that shape for a handful of single-letter switches.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/stephentu/venom-lang-sub001/internal/config"
	"github.com/stephentu/venom-lang-sub001/internal/debugdump"
	"github.com/stephentu/venom-lang-sub001/internal/frontend"
	"github.com/stephentu/venom-lang-sub001/internal/pipeline"
)

type options struct {
	traceParse    bool // -p
	traceLex      bool // -s
	checkOnly     bool // -c
	printAST      bool // --print-ast
	printBytecode bool // --print-bytecode
	fname         string
}

func parseArgs(args []string) options {
	var opt options
	for _, arg := range args {
		switch arg {
		case "-p":
			opt.traceParse = true
		case "-s":
			opt.traceLex = true
		case "-c":
			opt.checkOnly = true
		case "--print-ast":
			opt.printAST = true
		case "--print-bytecode":
			opt.printBytecode = true
		default:
			opt.fname = arg
		}
	}
	return opt
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	cfg, err := config.Load(".venomrc.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "venom: reading .venomrc.yaml: %v\n", err)
		os.Exit(1)
	}

	opt := parseArgs(os.Args[1:])
	colorized := cfg.Colorized(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	if opt.fname == "" {
		repl(os.Stdin, os.Stdout)
		return
	}

	source, err := os.ReadFile(opt.fname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "venom: %v\n", err)
		os.Exit(1)
	}

	if opt.traceLex {
		traceLex(string(source), os.Stderr)
	}

	ctx := pipeline.NewContext(string(source))
	ctx.Config = cfg
	result := pipeline.Compile(ctx)

	if opt.traceParse && result.Program != nil {
		fmt.Fprint(os.Stderr, debugdump.AST(result.Program))
	}
	if opt.printAST && result.Program != nil {
		fmt.Println(debugdump.AST(result.Program))
	}

	if result.Kind != pipeline.Success {
		printDiagnostic(os.Stderr, result, colorized)
		os.Exit(1)
	}

	if opt.printBytecode {
		fmt.Println(debugdump.Bytecode(result.Linked))
	}

	if opt.checkOnly {
		return
	}

	if err := pipeline.Execute(result, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "venom: %v\n", err)
		os.Exit(1)
	}
}

// printDiagnostic reports a failed CompileResult the way the original's
// `result.message` report did, with an optional ANSI-red kind prefix
// when writing to a color-capable terminal.
func printDiagnostic(w io.Writer, result pipeline.CompileResult, colorized bool) {
	if colorized {
		fmt.Fprintf(w, "\x1b[31m%s\x1b[0m: %s\n", result.Kind, result.Message)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", result.Kind, result.Message)
}

// traceLex prints every token the lexer produces for source, the Go
// rendition of -s / global_compile_opts.trace_lex.
func traceLex(source string, w io.Writer) {
	lex := frontend.NewLexer(source)
	for {
		tok := lex.NextToken()
		fmt.Fprintf(w, "%d:%d %s %q\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
		if tok.Type == frontend.EOF {
			return
		}
	}
}

// repl is the line-oriented stub the original left as a TODO ("build a
// real repl"): each line is parsed standalone and its AST printed, with
// no persistent state carried between lines.
func repl(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "input: ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			return
		}
		prog, err := frontend.Parse(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprint(out, debugdump.AST(prog))
	}
}
