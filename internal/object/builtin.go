package object

import (
	"strings"

	"egg/internal/strval"
	"egg/internal/types"
	"egg/internal/value"
)

// NativeFunc is a builtin implemented directly in Go: the global `print`
// and `assert`, the `string.from`/`type.of` methods, and the curried
// string-method wrappers (`string.split`, `string.indexOf`, etc.).
type NativeFunc struct {
	collectableBase
	notDotable
	notIndexable
	notIterable

	name string
	sig  *types.Type
	fn   func(ctx value.Execution, params []value.Value) value.Value
}

func NewNativeFunc(name string, sig *types.Type, fn func(value.Execution, []value.Value) value.Value) *NativeFunc {
	return &NativeFunc{name: name, sig: sig, fn: fn}
}

func (n *NativeFunc) ToString() string        { return "<builtin " + n.name + ">" }
func (n *NativeFunc) RuntimeType() *types.Type { return n.sig }
func (n *NativeFunc) SoftLinks() []int         { return nil }

func (n *NativeFunc) Call(ctx value.Execution, params []value.Value) value.Value {
	return n.fn(ctx, params)
}

func arg(params []value.Value, i int) value.Value {
	if i < len(params) {
		return params[i]
	}
	return value.Void
}

// Print is the `print` builtin: it concatenates the UTF-8 form of every
// argument, with no separator inserted, and forwards the result as one
// ctx.Print call (one log line per print statement), returning void.
func Print(ctx value.Execution, params []value.Value) value.Value {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(p.ToUTF8())
	}
	ctx.Print(b.String())
	return value.Void
}

// Assert is the `assert` builtin: a false argument raises through
// ctx.Assertion. When the call site wrapped its argument as a
// Binary.Predicate node, the executor annotates the raised exception with
// the operands and operator after this returns.
func Assert(ctx value.Execution, params []value.Value) value.Value {
	return ctx.Assertion(arg(params, 0))
}

// StringOf is the `string(...)` builtin: it concatenates every argument's
// toString result, the same way Print does, just returning the text
// instead of writing it.
func StringOf(ctx value.Execution, params []value.Value) value.Value {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(p.ToUTF8())
	}
	return value.StrOf(b.String())
}

// typeOfValue computes the runtime type of a value for `type.of`; it
// applies the same rule as the executor's own runtimeTypeOf.
func typeOfValue(v value.Value) *types.Type {
	if o := v.AsObject(); o != nil {
		return o.RuntimeType()
	}
	return types.Simple(v.Tag &^ types.FlowControl)
}

// TypeConstructor is the `type` global: calling it directly is unimplemented
// construction (spec.md §9 leaves `type(...)` as a documented TODO rather
// than have it silently return null), but `type.of(value)` is a real, fully
// implemented dotted method returning the runtime type's string form.
type TypeConstructor struct {
	collectableBase
	notIndexable
	notIterable
}

func NewTypeConstructor() *TypeConstructor { return &TypeConstructor{} }

func (t *TypeConstructor) ToString() string        { return "<builtin type>" }
func (t *TypeConstructor) RuntimeType() *types.Type { return types.Function(types.TypeT, types.Param{Name: "value", Type: types.Any, Required: true}) }
func (t *TypeConstructor) SoftLinks() []int         { return nil }

func (t *TypeConstructor) Call(ctx value.Execution, params []value.Value) value.Value {
	return ctx.Raise("type: construction is not supported")
}

func (t *TypeConstructor) SetProperty(name string, v value.Value) bool { return false }

func (t *TypeConstructor) GetProperty(name string) (value.Value, bool) {
	if name != "of" {
		return value.Void, false
	}
	return value.ObjVal(NewNativeFunc("type.of",
		types.Function(types.StringT, types.Param{Name: "value", Type: types.Any, Required: true}),
		func(ctx value.Execution, params []value.Value) value.Value {
			return value.StrOf(typeOfValue(arg(params, 0)).String())
		})), true
}

// StringConstructor is the `string` global: calling it concatenates every
// argument's toString result (the StringOf behavior); `string.from(value)`
// is a separate dotted method that converts a single value without the
// multi-argument concatenation.
type StringConstructor struct {
	collectableBase
	notIndexable
	notIterable
}

func NewStringConstructor() *StringConstructor { return &StringConstructor{} }

func (s *StringConstructor) ToString() string { return "<builtin string>" }
func (s *StringConstructor) RuntimeType() *types.Type {
	return types.Function(types.StringT, types.Param{Name: "values", Type: types.Any, Variadic: true})
}
func (s *StringConstructor) SoftLinks() []int { return nil }

func (s *StringConstructor) Call(ctx value.Execution, params []value.Value) value.Value {
	return StringOf(ctx, params)
}

func (s *StringConstructor) SetProperty(name string, v value.Value) bool { return false }

func (s *StringConstructor) GetProperty(name string) (value.Value, bool) {
	if name != "from" {
		return value.Void, false
	}
	return value.ObjVal(NewNativeFunc("string.from",
		types.Function(types.StringT, types.Param{Name: "value", Type: types.Any, Required: true}),
		func(ctx value.Execution, params []value.Value) value.Value {
			return value.StrOf(arg(params, 0).ToUTF8())
		})), true
}

// NewGlobalBuiltins returns the name -> callable table the symbol table
// seeds every root scope with.
func NewGlobalBuiltins() map[string]value.Value {
	return map[string]value.Value{
		"print": value.ObjVal(NewNativeFunc("print",
			types.Function(types.VoidT, types.Param{Name: "values", Type: types.Any, Variadic: true}),
			Print)),
		"assert": value.ObjVal(NewNativeFunc("assert",
			types.Function(types.VoidT, types.Param{Name: "condition", Type: types.BoolT, Required: true, Predicate: true}),
			Assert)),
		"string": value.ObjVal(NewStringConstructor()),
		"type":   value.ObjVal(NewTypeConstructor()),
	}
}

// stringMethod builds a curried NativeFunc bound to one receiver string, the
// shape `"abc".split` evaluates to before the call.
func stringMethod(name string, s strval.String, sig *types.Type, fn func(s strval.String, ctx value.Execution, params []value.Value) value.Value) value.Value {
	return value.ObjVal(NewNativeFunc("string."+name, sig, func(ctx value.Execution, params []value.Value) value.Value {
		return fn(s, ctx, params)
	}))
}

// StringMethod resolves one of the curried string methods the executor's
// Dot handler exposes on a string receiver; `length`, `isEmpty` and
// `hashCode` yield their value directly instead of a callable. ok is false
// for an unknown name, which the caller reports as a property-not-found
// error.
func StringMethod(s strval.String, name string) (value.Value, bool) {
	switch name {
	case "length":
		return value.Int(int64(s.Length())), true
	case "isEmpty":
		return value.Bool(s.IsEmpty()), true
	case "hashCode":
		return value.Int(int64(s.HashCode())), true
	case "toString":
		return stringMethod(name, s, types.Function(types.StringT),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Str(s)
			}), true
	case "compare":
		return stringMethod(name, s, types.Function(types.IntT, types.Param{Name: "other", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Int(int64(s.Compare(arg(params, 0).AsString())))
			}), true
	case "contains":
		return stringMethod(name, s, types.Function(types.BoolT, types.Param{Name: "needle", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Bool(s.IndexOfString(arg(params, 0).AsString(), 0) >= 0)
			}), true
	case "indexOf":
		return stringMethod(name, s, types.Function(types.IntT, types.Param{Name: "needle", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Int(int64(s.IndexOfString(arg(params, 0).AsString(), 0)))
			}), true
	case "lastIndexOf":
		return stringMethod(name, s, types.Function(types.IntT, types.Param{Name: "needle", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Int(int64(s.LastIndexOfString(arg(params, 0).AsString())))
			}), true
	case "startsWith":
		return stringMethod(name, s, types.Function(types.BoolT, types.Param{Name: "prefix", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Bool(s.IndexOfString(arg(params, 0).AsString(), 0) == 0)
			}), true
	case "endsWith":
		return stringMethod(name, s, types.Function(types.BoolT, types.Param{Name: "suffix", Type: types.StringT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				suffix := arg(params, 0).AsString()
				idx := s.LastIndexOfString(suffix)
				return value.Bool(idx >= 0 && idx+suffix.Length() == s.Length())
			}), true
	case "slice":
		return stringMethod(name, s, types.Function(types.StringT,
			types.Param{Name: "start", Type: types.IntT, Required: true},
			types.Param{Name: "end", Type: types.IntT}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				start := int(arg(params, 0).AsInt())
				end := s.Length()
				if len(params) > 1 {
					end = int(arg(params, 1).AsInt())
				}
				return value.Str(s.Substring(start, end))
			}), true
	case "repeat":
		return stringMethod(name, s, types.Function(types.StringT, types.Param{Name: "count", Type: types.IntT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				return value.Str(s.Repeat(int(arg(params, 0).AsInt())))
			}), true
	case "replace":
		return stringMethod(name, s, types.Function(types.StringT,
			types.Param{Name: "from", Type: types.StringT, Required: true},
			types.Param{Name: "to", Type: types.StringT, Required: true},
			types.Param{Name: "occurrences", Type: types.IntT}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				occurrences := 0
				if len(params) > 2 {
					occurrences = int(arg(params, 2).AsInt())
				}
				return value.Str(s.Replace(arg(params, 0).AsString(), arg(params, 1).AsString(), occurrences))
			}), true
	case "padLeft":
		return stringMethod(name, s, types.Function(types.StringT,
			types.Param{Name: "width", Type: types.IntT, Required: true},
			types.Param{Name: "pad", Type: types.StringT}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				pad := strval.New(" ")
				if len(params) > 1 {
					pad = arg(params, 1).AsString()
				}
				return value.Str(s.PadLeft(int(arg(params, 0).AsInt()), pad))
			}), true
	case "padRight":
		return stringMethod(name, s, types.Function(types.StringT,
			types.Param{Name: "width", Type: types.IntT, Required: true},
			types.Param{Name: "pad", Type: types.StringT}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				pad := strval.New(" ")
				if len(params) > 1 {
					pad = arg(params, 1).AsString()
				}
				return value.Str(s.PadRight(int(arg(params, 0).AsInt()), pad))
			}), true
	case "split":
		return stringMethod(name, s, types.Function(types.ObjectT,
			types.Param{Name: "sep", Type: types.StringT, Required: true},
			types.Param{Name: "limit", Type: types.IntT}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				var parts []strval.String
				if len(params) > 1 {
					parts = s.Split(arg(params, 0).AsString(), int(arg(params, 1).AsInt()))
				} else {
					parts = s.SplitAll(arg(params, 0).AsString())
				}
				elems := make([]value.Value, len(parts))
				for i, p := range parts {
					elems[i] = value.Str(p)
				}
				return value.ObjVal(NewArray(elems))
			}), true
	case "join":
		return stringMethod(name, s, types.Function(types.StringT, types.Param{Name: "parts", Type: types.ObjectT, Required: true}),
			func(s strval.String, ctx value.Execution, params []value.Value) value.Value {
				arr, ok := arg(params, 0).AsObject().(*Array)
				if !ok {
					return ctx.Raise("join: argument is not an array")
				}
				parts := make([]strval.String, len(arr.Elems))
				for i, e := range arr.Elems {
					parts[i] = e.AsString()
				}
				return value.Str(strval.Join(parts, s))
			}), true
	default:
		return value.Void, false
	}
}
