// Package value implements the runtime's tagged value cell: the single
// type every expression evaluates to. A Value is a small struct carrying a
// Bits tag plus whichever payload field that tag selects, optionally OR-ed
// with flow-control bits (break/continue/return/yield/exception) that the
// executor strips off at the construct meant to catch them.
//
// Object is declared here, not in package object, so that the object
// subsystem can depend on Value without creating an import cycle; package
// object provides the concrete implementations (vanilla array, function,
// iterator, ...).
package value

import (
	"fmt"
	"strconv"
	"strings"

	"egg/internal/strval"
	"egg/internal/types"
)

// Object is the capability set every heap object exposes to the executor.
// Concrete variants live in package object.
type Object interface {
	ToString() string
	RuntimeType() *types.Type
	Call(ctx Execution, params []Value) Value
	GetProperty(name string) (Value, bool)
	SetProperty(name string, v Value) bool
	GetIndex(key Value) (Value, bool)
	SetIndex(key Value, v Value) bool
	// Iterate, called on a collection, returns a Value wrapping a fresh
	// iterator Object. Called again on that iterator, it advances and
	// returns the next element, or Void once exhausted.
	Iterate(ctx Execution) Value
}

// Execution is the minimal interface objects use to call back into the
// runtime: raising exceptions, printing, and converting a bool into an
// assertion failure. The executor implements it; see package exec.
type Execution interface {
	Raise(format string, args ...interface{}) Value
	Print(utf8 string)
	Assertion(v Value) Value
}

// Value is the tagged cell. Exactly one of the primitive fields is live
// per the simple-kind bits in Tag; flow-control bits may additionally be
// set without changing which payload field is live.
type Value struct {
	Tag     types.Bits
	boolean bool
	integer int64
	float   float64
	str     strval.String
	typ     *types.Type
	obj     Object
	payload *Value // carried value for flow-control (break/return/yield/exception)
}

func Of(tag types.Bits) Value { return Value{Tag: tag} }

var (
	Void  = Value{Tag: types.Void}
	Null  = Value{Tag: types.Null}
	True  = Value{Tag: types.Bool, boolean: true}
	False = Value{Tag: types.Bool, boolean: false}

	EmptyString = Str(strval.Empty)

	Break    = Value{Tag: types.Break | types.Void}
	Continue = Value{Tag: types.Continue | types.Void}
	// Rethrow carries no payload; `throw;` inside a catch re-raises whatever
	// the catch clause itself is holding, not this sentinel's payload.
	Rethrow    = Value{Tag: types.Exception | types.Void}
	ReturnVoid = Value{Tag: types.Return | types.Void}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int64) Value          { return Value{Tag: types.Int, integer: i} }
func Float(f float64) Value      { return Value{Tag: types.Float, float: f} }
func Str(s strval.String) Value  { return Value{Tag: types.Str, str: s} }
func StrOf(s string) Value       { return Str(strval.New(s)) }
func TypeVal(t *types.Type) Value { return Value{Tag: types.TypeKind, typ: t} }
func ObjVal(o Object) Value      { return Value{Tag: types.Obj, obj: o} }

func (v Value) AsBool() bool          { return v.boolean }
func (v Value) AsInt() int64          { return v.integer }
func (v Value) AsFloat() float64      { return v.float }
func (v Value) AsString() strval.String { return v.str }
func (v Value) AsType() *types.Type   { return v.typ }
func (v Value) AsObject() Object      { return v.obj }
func (v Value) Payload() *Value       { return v.payload }

// Has reports whether ALL bits in mask are set on the tag (flow-control
// membership test: v.Has(types.Exception) asks "is this an exception,
// possibly among other things").
func (v Value) Has(mask types.Bits) bool { return v.Tag&mask == mask }

// Is reports an exact tag match.
func (v Value) Is(mask types.Bits) bool { return v.Tag == mask }

func (v Value) IsVoid() bool { return v.Tag&^types.FlowControl == types.Void }
func (v Value) IsNull() bool { return v.Tag&^types.FlowControl == types.Null }

// AddFlowControl OR-s a flow-control bit into the tag, attaching payload as
// the value being carried out (the returned/yielded/thrown value).
func (v Value) AddFlowControl(bit types.Bits, payload Value) Value {
	v.Tag |= bit
	p := payload
	v.payload = &p
	return v
}

// StripFlowControl clears bit from the tag if present, reporting whether it
// was set. Call sites use this at the exact construct meant to catch the
// signal (loop for break/continue, function call for return, try for
// exception) so the bit never survives past its boundary.
func (v Value) StripFlowControl(bit types.Bits) (Value, bool) {
	if v.Tag&bit == 0 {
		return v, false
	}
	v.Tag &^= bit
	return v, true
}

// Direct strips the Return bit and unwraps to the carried payload, or
// returns v unchanged if it isn't a return.
func (v Value) Direct() Value {
	if v.Tag&types.Return == 0 {
		return v
	}
	if v.payload != nil {
		return *v.payload
	}
	return Void
}

// ToString never fails: it falls back to a bracketed tag name for values
// with no sensible textual form.
func (v Value) ToString() string {
	switch {
	case v.Tag&types.Null != 0 && v.Tag&^types.FlowControl == types.Null:
		return "null"
	case v.Tag&^types.FlowControl == types.Void:
		return "void"
	case v.Tag&^types.FlowControl == types.Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case v.Tag&^types.FlowControl == types.Int:
		return fmt.Sprintf("%d", v.integer)
	case v.Tag&^types.FlowControl == types.Float:
		return formatFloat(v.float)
	case v.Tag&^types.FlowControl == types.Str:
		return v.str.Bytes()
	case v.Tag&^types.FlowControl == types.TypeKind:
		return v.typ.String()
	case v.Tag&^types.FlowControl == types.Obj:
		if v.obj != nil {
			return v.obj.ToString()
		}
		return "[object]"
	default:
		return "[" + Of(v.Tag).typeName() + "]"
	}
}

func (v Value) typeName() string {
	return types.Simple(v.Tag).String()
}

// formatFloat renders floats so they parse back as floats: an integral
// value keeps a trailing ".0" instead of collapsing to an int literal.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eENI") {
		s += ".0"
	}
	return s
}

// ToUTF8 is the narrow form used by concatenation and print. It returns
// exactly what ToString returns, bracketed tag names for non-printables
// included.
func (v Value) ToUTF8() string { return v.ToString() }

// Equals implements `==`: structural for primitives and strings, identity
// for objects. Between int and float it compares the mathematical value.
func Equals(a, b Value) bool {
	ab, bb := a.Tag&^types.FlowControl, b.Tag&^types.FlowControl
	switch {
	case ab == types.Int && bb == types.Float:
		return float64(a.integer) == b.float
	case ab == types.Float && bb == types.Int:
		return a.float == float64(b.integer)
	case ab != bb:
		return false
	}
	switch ab {
	case types.Void, types.Null:
		return true
	case types.Bool:
		return a.boolean == b.boolean
	case types.Int:
		return a.integer == b.integer
	case types.Float:
		return a.float == b.float
	case types.Str:
		return a.str.Equals(b.str)
	case types.TypeKind:
		return a.typ == b.typ
	case types.Obj:
		return a.obj == b.obj
	default:
		return false
	}
}
