// Package eggerr implements the host-level error type for compiler
// (prepare-phase) errors; the parser reports its syntax errors through it.
// Runtime exceptions, including the failures the "assert" builtin raises,
// are flow-controlled Values instead (see packages value and object).
package eggerr

import (
	"fmt"
	"strings"

	"egg/internal/source"
)

type Kind string

const (
	SyntaxError     Kind = "SyntaxError"
	CompileError    Kind = "CompileError"
	RuntimeError    Kind = "RuntimeError"
	TypeError       Kind = "TypeError"
	ReferenceError  Kind = "ReferenceError"
	AssertionError  Kind = "AssertionError"
)

// StackFrame records one call-chain entry for diagnostics.
type StackFrame struct {
	Function string
	Location source.Location
}

// EggError is the host-level error type. Compiler errors use it directly;
// runtime exceptions are instead carried as flow-controlled Values (see
// package value), also when they escape the interpreter.
type EggError struct {
	Kind      Kind
	Message   string
	Location  source.Location
	CallStack []StackFrame
}

func New(kind Kind, loc source.Location, format string, args ...interface{}) *EggError {
	return &EggError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

func (e *EggError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if loc := e.Location.String(); loc != "" {
		fmt.Fprintf(&b, " (at %s)", loc)
	}
	for _, f := range e.CallStack {
		fmt.Fprintf(&b, "\n  at %s (%s)", f.Function, f.Location)
	}
	return b.String()
}

func (e *EggError) WithFrame(function string, loc source.Location) *EggError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, Location: loc})
	return e
}
