// Command egg is the CLI driver: it wires the lexer, parser and executor
// together and hands the assembled interpreter a file or a REPL session.
// Per the core specification this driver, along with file I/O and the
// logging sink, is an external collaborator of the runtime core rather
// than part of it; it exists here only so the core is reachable end to
// end.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"egg/internal/coroutine"
	"egg/internal/exec"
	"egg/internal/lexer"
	"egg/internal/parser"
	"egg/internal/repl"
	"egg/internal/source"
	"egg/internal/types"
)

var version = "0.1.0"

// stderrLogger is the diagnostics sink the interpreter reports warnings and
// errors through; user-severity output goes to stdout via the Context's own
// writer instead.
type stderrLogger struct {
	w io.Writer
}

func (l stderrLogger) Log(src source.Source, sev source.Severity, message string) {
	fmt.Fprintf(l.w, "%s %s: %s\n", src, sev, message)
}

func main() {
	root := &cobra.Command{
		Use:     "egg",
		Short:   "egg is a small statically-typed scripting language interpreter",
		Version: version,
	}

	root.AddCommand(runCmd(), replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [script]",
		Short: "run an egg script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			toks := lexer.NewScanner(args[0], string(src)).ScanTokens()
			p := parser.NewParser(args[0], toks)
			module := p.Parse()
			if len(p.Errors) > 0 {
				for _, perr := range p.Errors {
					fmt.Fprintln(os.Stderr, perr)
				}
				os.Exit(1)
			}

			ctx := exec.NewContext(os.Stdout)
			ctx.SetGeneratorFactory(coroutine.NewGeneratorValue)
			ctx.SetLogger(stderrLogger{w: os.Stderr})
			result := ctx.Run(module)
			if result.Has(types.Exception) {
				fmt.Fprintln(os.Stderr, result.ToString())
				os.Exit(1)
			}
			if ctx.MaxSeverity() >= source.Error {
				os.Exit(1)
			}
			return nil
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive egg session",
		RunE: func(cmd *cobra.Command, args []string) error {
			repl.Start(os.Stdin, os.Stdout, os.Stderr)
			return nil
		},
	}
}
