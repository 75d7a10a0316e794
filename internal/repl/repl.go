// Package repl drives an interactive read-eval-print loop over the
// runtime core: each line is lexed, parsed as a standalone statement
// list and run against a Context that persists across lines, the way
// the teacher's REPL kept one VM alive across inputs instead of
// restarting per line.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"egg/internal/coroutine"
	"egg/internal/exec"
	"egg/internal/lexer"
	"egg/internal/parser"
	"egg/internal/types"
)

// Start reads lines from in, printing output to out and errors to errOut,
// until EOF or a line consisting of exactly "exit".
func Start(in io.Reader, out, errOut io.Writer) {
	fmt.Fprintln(out, "egg REPL | type 'exit' to quit")
	scanner := bufio.NewScanner(in)
	ctx := exec.NewContext(out)
	ctx.SetGeneratorFactory(coroutine.NewGeneratorValue)

	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}

		toks := lexer.NewScanner("<repl>", line).ScanTokens()
		p := parser.NewParser("<repl>", toks)
		module := p.Parse()
		if len(p.Errors) > 0 {
			for _, perr := range p.Errors {
				fmt.Fprintln(errOut, perr)
			}
			continue
		}
		result := ctx.Run(module)
		switch {
		case result.Has(types.Exception):
			fmt.Fprintln(errOut, result.ToString())
		case !result.IsVoid():
			fmt.Fprintln(out, result.ToString())
		}
	}
}
