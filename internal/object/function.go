package object

import (
	"egg/internal/ast"
	"egg/internal/types"
	"egg/internal/value"
)

// Function is a user-defined, closed-over callable: the body node plus the
// scope it was declared in. The scope is stored as an opaque CapturedScope
// so this package never has to import the symbol table or the executor —
// package exec, which owns both, knows what concrete type it put there.
type Function struct {
	collectableBase
	notDotable
	notIndexable
	notIterable

	Name          string
	Params        []ast.Param
	ReturnType    *types.Type
	Body          ast.Stmt
	IsGenerator   bool
	CapturedScope interface{}
	// softLinked is the id of one further collectable this function traces;
	// zero means none. SoftLinks also reports every object bound in
	// CapturedScope's chain, so a closure keeps its environment reachable.
	softLinked int
}

func NewFunction(name string, params []ast.Param, ret *types.Type, body ast.Stmt, isGenerator bool, capturedScope interface{}) *Function {
	return &Function{
		Name:          name,
		Params:        params,
		ReturnType:    ret,
		Body:          body,
		IsGenerator:   isGenerator,
		CapturedScope: capturedScope,
	}
}

func (f *Function) ToString() string {
	if f.Name == "" {
		return "<function>"
	}
	return "<function " + f.Name + ">"
}

func (f *Function) RuntimeType() *types.Type {
	sig := make([]types.Param, len(f.Params))
	for i, p := range f.Params {
		sig[i] = types.Param{Name: p.Name, Type: p.Type, Variadic: p.Variadic, Required: !p.Variadic}
	}
	ret := f.ReturnType
	if ret == nil {
		ret = types.VoidT
	}
	return types.Function(ret, sig...)
}

func (f *Function) SoftLinks() []int {
	var ids []int
	if f.softLinked != 0 {
		ids = append(ids, f.softLinked)
	}
	// the captured scope is reached through an interface so this package
	// need not import symtab
	if sc, ok := f.CapturedScope.(interface {
		SoftLinks(func(value.Value) (int, bool)) []int
	}); ok {
		ids = append(ids, sc.SoftLinks(func(v value.Value) (int, bool) {
			c, ok := asCollectable(v)
			if !ok {
				return 0, false
			}
			return c.ID(), true
		})...)
	}
	return ids
}

// FunctionRunner is implemented by the executor: Function.Call looks up
// this capability on the Execution it is handed rather than importing
// package exec directly, which would create an import cycle (exec already
// imports object for the builtin value kinds).
type FunctionRunner interface {
	RunFunction(fn *Function, params []value.Value) value.Value
}

func (f *Function) Call(ctx value.Execution, params []value.Value) value.Value {
	runner, ok := ctx.(FunctionRunner)
	if !ok {
		return ctx.Raise("call: execution context cannot invoke user functions")
	}
	return runner.RunFunction(f, params)
}
