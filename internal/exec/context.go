// Package exec is the executor (component F): a tree-walking evaluator
// built as a Visitor over package ast, implementing value.Execution so the
// object subsystem can call back into it and object.FunctionRunner so user
// functions can invoke it without an import cycle. Context mirrors the
// teacher VM's single mutable machine struct, just walking a tree instead
// of stepping bytecode.
package exec

import (
	"fmt"
	"io"

	"egg/internal/ast"
	"egg/internal/object"
	"egg/internal/source"
	"egg/internal/stdlib"
	"egg/internal/symtab"
	"egg/internal/types"
	"egg/internal/value"
)

// Context is one interpreter instance: a basket of heap objects, the active
// scope chain, and the output sink. Running a generator body spins up a
// second Context sharing the same basket and output but with its own scope
// chain and a yieldHook, so its VisitYield blocks on a channel instead of
// returning a flow-control bit the single-threaded call stack can't resume
// into later.
type Context struct {
	basket *object.Basket
	scope  *symtab.Scope
	out    io.Writer
	loc    source.Location

	logger      source.Logger
	maxSeverity source.Severity

	currentException *value.Value
	yieldHook        func(value.Value)
	stepHook         func(source.Location)
	newGenerator     func(fn *object.Function, params []value.Value, runner *Context) value.Value
}

func NewContext(out io.Writer) *Context {
	basket := object.NewBasket()
	globals := object.NewGlobalBuiltins()
	for name, v := range stdlib.Builtins() {
		globals[name] = v
	}
	root := symtab.NewGlobalScope(globals)
	return &Context{basket: basket, scope: root, out: out}
}

// SetGeneratorFactory wires in the coroutine package's generator
// constructor. Package exec never imports package coroutine directly
// (coroutine already imports exec to drive generator bodies); the caller
// that assembles the interpreter injects the factory instead.
func (c *Context) SetGeneratorFactory(f func(fn *object.Function, params []value.Value, runner *Context) value.Value) {
	c.newGenerator = f
}

func (c *Context) Basket() *object.Basket { return c.basket }
func (c *Context) Scope() *symtab.Scope   { return c.scope }

// SetLogger attaches a diagnostics sink for warnings (symbol shadowing and
// the like). Print output still goes to the out writer; the logger carries
// the compiler/runtime-sourced messages a CLI wants on stderr.
func (c *Context) SetLogger(l source.Logger) { c.logger = l }

// SetStepHook installs the single-step hook: it fires with the statement's
// source location before each statement executes, which is all the
// debugging surface the runtime offers.
func (c *Context) SetStepHook(hook func(source.Location)) { c.stepHook = hook }

// MaxSeverity reports the most severe message observed so far, which the
// CLI maps to an exit code.
func (c *Context) MaxSeverity() source.Severity { return c.maxSeverity }

func (c *Context) observe(sev source.Severity) {
	if sev > c.maxSeverity {
		c.maxSeverity = sev
	}
}

func (c *Context) warnf(format string, args ...interface{}) {
	c.observe(source.Warning)
	if c.logger != nil {
		c.logger.Log(source.Runtime, source.Warning, fmt.Sprintf(format, args...))
	}
}

// Run executes a top-level module block against the root scope.
func (c *Context) Run(module *ast.Block) value.Value {
	return c.execStmt(module)
}

// --- value.Execution ---

func (c *Context) Raise(format string, args ...interface{}) value.Value {
	return object.Raise(c.loc, format, args...)
}

// Print emits one user-severity log line per call: the print builtin hands
// it the already-concatenated argument text, and the newline is the line
// boundary the logger contract implies.
func (c *Context) Print(utf8 string) {
	c.observe(source.Information)
	io.WriteString(c.out, utf8+"\n")
}

// Assertion implements the `assert` builtin: a non-bool or false argument
// raises; a true argument passes through as void.
func (c *Context) Assertion(v value.Value) value.Value {
	if isFlow(v) {
		return v
	}
	if v.Tag&^types.FlowControl != types.Bool || !v.AsBool() {
		return object.Raise(c.loc, "assertion failed")
	}
	return value.Void
}

// --- object.FunctionRunner ---

func (c *Context) RunFunction(fn *object.Function, params []value.Value) value.Value {
	if fn.IsGenerator {
		if c.newGenerator == nil {
			return c.Raise("generator functions are not supported in this execution context")
		}
		return c.newGenerator(fn, params, c)
	}
	capturedScope, _ := fn.CapturedScope.(*symtab.Scope)
	if capturedScope == nil {
		capturedScope = c.scope
	}
	callScope := capturedScope.Child()
	if bad := bindParams(c, callScope, fn, params); isFlow(bad) {
		return bad
	}

	saved := c.scope
	c.scope = callScope
	result := c.execStmt(fn.Body)
	c.exitScope(callScope, saved, result)

	if stripped, ok := result.StripFlowControl(types.Return); ok {
		return stripped
	}
	if result.Tag&types.Exception != 0 {
		return result
	}
	return value.Void
}

// RunGeneratorBody is exported for package coroutine: it runs fn's body to
// completion (or until the interpreter tears it down) in a fresh Context
// sharing this one's basket and output, with onYield wired as the
// yield-statement hook.
func (c *Context) RunGeneratorBody(fn *object.Function, params []value.Value, onYield func(value.Value)) value.Value {
	capturedScope, _ := fn.CapturedScope.(*symtab.Scope)
	if capturedScope == nil {
		capturedScope = c.scope
	}
	callScope := capturedScope.Child()
	if bad := bindParams(c, callScope, fn, params); isFlow(bad) {
		return bad
	}

	gctx := &Context{basket: c.basket, out: c.out, scope: callScope, yieldHook: onYield, newGenerator: c.newGenerator, logger: c.logger}
	result := gctx.execStmt(fn.Body)
	c.releaseScopeValues(callScope, result)
	if stripped, ok := result.StripFlowControl(types.Return); ok {
		return stripped
	}
	if result.Tag&types.Exception != 0 {
		return result
	}
	return value.Void
}

// bindParams binds params into scope per fn's declared signature, enforcing
// the same call-arity rule the spec's Signature.MinRequired/Max describe
// (reject a call below the required count, or above Max unless variadic) and
// promoting an int argument into a float parameter slot via
// types.Type.PromoteAssignment, the same widening VisitDeclare applies to a
// typed `var` initializer. Every bound value is retained for the call's
// duration; the caller releases them via exitScope/releaseScopeValues once
// the body finishes.
func bindParams(c *Context, scope *symtab.Scope, fn *object.Function, params []value.Value) value.Value {
	sig := fn.RuntimeType().Signature()
	if len(params) < sig.MinRequired() {
		return c.Raise("%s: expected at least %d argument(s), got %d", fnLabel(fn), sig.MinRequired(), len(params))
	}
	if max := sig.Max(); max >= 0 && len(params) > max {
		return c.Raise("%s: expected at most %d argument(s), got %d", fnLabel(fn), max, len(params))
	}
	for i, p := range fn.Params {
		if p.Variadic {
			rest := append([]value.Value{}, params[minInt(i, len(params)):]...)
			for _, v := range rest {
				c.basket.Retain(v)
			}
			arr := object.NewArray(rest)
			c.basket.Add(arr, false)
			scope.Declare(p.Name, types.ObjectT, value.ObjVal(arr))
			c.basket.Retain(value.ObjVal(arr))
			return value.Void
		}
		v := value.Null
		if i < len(params) {
			v = params[i]
		}
		if p.Type != nil && i < len(params) {
			coerced, ok := coerceAssign(p.Type, v)
			if !ok {
				return c.Raise("%s: cannot pass %s as parameter %s: %s",
					fnLabel(fn), runtimeTypeOf(v).String(), p.Name, p.Type.String())
			}
			v = coerced
		}
		scope.Declare(p.Name, p.Type, v)
		c.basket.Retain(v)
	}
	return value.Void
}

// coerceAssign applies t's assignment rule to v: an int widens to float
// when t asks for it, a compatible value passes through unchanged, and an
// incompatible one reports ok=false for the caller to raise on.
func coerceAssign(t *types.Type, v value.Value) (value.Value, bool) {
	promote, ok := t.PromoteAssignment(runtimeTypeOf(v))
	if !ok {
		return v, false
	}
	if promote {
		return value.Float(float64(v.AsInt())), true
	}
	return v, true
}

func fnLabel(fn *object.Function) string {
	if fn.Name == "" {
		return "<anonymous function>"
	}
	return fn.Name
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func isFlow(v value.Value) bool { return v.Tag&types.FlowControl != 0 }

func loopSignal(v value.Value) (brk, cont bool) {
	if v.Tag&types.Break != 0 {
		return true, false
	}
	if v.Tag&types.Continue != 0 {
		return false, true
	}
	return false, false
}

func runtimeTypeOf(v value.Value) *types.Type {
	if o := v.AsObject(); o != nil {
		return o.RuntimeType()
	}
	return types.Simple(v.Tag &^ types.FlowControl)
}

func (c *Context) eval(e ast.Expr) value.Value { return e.Accept(c) }

func (c *Context) execStmt(s ast.Stmt) value.Value {
	if c.stepHook != nil {
		c.stepHook(s.Loc())
	}
	return s.Accept(c)
}

func (c *Context) withChildScope(fn func() value.Value) value.Value {
	saved := c.scope
	child := saved.Child()
	c.scope = child
	result := fn()
	c.exitScope(child, saved, result)
	return result
}

// exitScope discards child (restoring parent as the active scope) and runs
// a garbage pass: every value child bound directly is released, and the
// basket is swept for anything that fell unreachable as a result — this is
// Component D's hook into the running interpreter, called at every block,
// loop-iteration, and function-call boundary. result is whatever value is
// still propagating out of the scope being discarded (a block's trailing
// expression, a function's return, an in-flight exception, ...); it is
// retained across the sweep so a value that child alone was rooting cannot
// be reclaimed before its caller has a chance to bind it somewhere durable.
func (c *Context) exitScope(child, parent *symtab.Scope, result value.Value) {
	c.basket.Retain(result)
	for _, v := range child.LocalValues() {
		c.basket.Release(v)
	}
	c.scope = parent
	c.basket.VisitGarbage(c.disposeCollectable)
	c.basket.Release(result)
}

// releaseScopeValues is exitScope without touching c.scope, for the
// generator-body path: the body runs on a separate ephemeral Context
// (gctx), so tearing down its call scope must never reassign the calling
// Context's own scope.
func (c *Context) releaseScopeValues(child *symtab.Scope, result value.Value) {
	c.basket.Retain(result)
	for _, v := range child.LocalValues() {
		c.basket.Release(v)
	}
	c.basket.VisitGarbage(c.disposeCollectable)
	c.basket.Release(result)
}

// disposeCollectable is VisitGarbage/VisitPurge's visitor: nothing beyond
// the Disposer hook the basket already applies is needed here, but wiring a
// real visitor (rather than a no-op) keeps the call site honest about what
// reclamation means for the objects that carry a resource beyond memory,
// namely an in-flight Generator's background goroutine.
func (c *Context) disposeCollectable(obj object.Collectable) {
	_ = obj
}
