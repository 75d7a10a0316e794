// Package types implements the runtime's type lattice: simple-kind bitsets,
// unions, nullability, callable signatures and assignability rules. Types
// are immutable once built, mirroring the teacher's bytecode.Chunk
// constants table — build once, share everywhere.
package types

import (
	"fmt"
	"strings"
)

// Bits is the simple-kind bitset. Flow-control bits share the same space
// as value kinds because a Value's tag is exactly this bitset (see package
// value): a value can be "int" or it can be "return|int" escaping a block.
type Bits uint32

const (
	Void Bits = 1 << iota
	Null
	Bool
	Int
	Float
	Str
	Obj
	TypeKind
	Inferred

	Break
	Continue
	Return
	Yield
	Exception

	FlowControl = Break | Continue | Return | Yield | Exception
)

// Type is a semantic descriptor: a simple-kind mask plus, optionally, a
// callable signature and compound-type descriptors.
type Type struct {
	bits      Bits
	signature *Signature
	indexable bool
	dotable   bool
	iterable  bool
	elem      *Type // for pointer / referenced types
}

func Simple(b Bits) *Type { return &Type{bits: b} }

var (
	VoidT   = Simple(Void)
	NullT   = Simple(Null)
	BoolT   = Simple(Bool)
	IntT    = Simple(Int)
	FloatT  = Simple(Float)
	StringT = Simple(Str)
	ObjectT = &Type{bits: Obj, indexable: true, dotable: true, iterable: true}
	TypeT   = Simple(TypeKind)

	Arithmetic = Simple(Int | Float)
	Any        = Simple(Bool | Int | Float | Str | Obj | TypeKind)
	AnyQ       = Simple(Bool | Int | Float | Str | Obj | TypeKind | Null)
)

// Param describes one parameter of a callable signature.
type Param struct {
	Name      string
	Type      *Type
	Position  int
	Required  bool
	Variadic  bool
	Predicate bool
}

// Signature is a callable's shape: return type plus ordered parameters.
type Signature struct {
	Return *Type
	Params []Param
}

func (sig *Signature) MinRequired() int {
	n := 0
	for _, p := range sig.Params {
		if p.Required {
			n++
		}
	}
	return n
}

func (sig *Signature) HasVariadic() bool {
	return len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Variadic
}

func (sig *Signature) Max() int {
	if sig.HasVariadic() {
		return -1 // unbounded
	}
	return len(sig.Params)
}

func Function(ret *Type, params ...Param) *Type {
	for i := range params {
		params[i].Position = i
	}
	return &Type{bits: Obj, signature: &Signature{Return: ret, Params: params}}
}

// GeneratorOf builds the "(void|T)()" shape a generator function's
// inferred type takes: calling it always yields void or T.
func GeneratorOf(t *Type) *Type {
	return Function(t.UnionWith(VoidT))
}

func (t *Type) Bits() Bits                { return t.bits }
func (t *Type) Signature() *Signature      { return t.signature }
func (t *Type) IsCallable() bool          { return t.signature != nil }
func (t *Type) Has(b Bits) bool           { return t.bits&b != 0 }
func (t *Type) IsNullable() bool          { return t.bits&Null != 0 }

func (t *Type) Nullable() *Type {
	n := *t
	n.bits |= Null
	return &n
}

// Dereferenced strips Null from a union (used for guard bindings and
// null-coalescing, where the narrowed type excludes null).
func (t *Type) Dereferenced() *Type {
	n := *t
	n.bits &^= Null
	return &n
}

func (t *Type) Referenced() *Type {
	return &Type{bits: Obj, elem: t}
}

func (t *Type) Elem() *Type { return t.elem }

// UnionWith merges bitsets; if either side is callable the union keeps the
// first signature found (unions of distinct callables are not precisely
// representable; the other signature is dropped).
func (t *Type) UnionWith(other *Type) *Type {
	u := &Type{bits: t.bits | other.bits}
	if t.signature != nil {
		u.signature = t.signature
	} else if other.signature != nil {
		u.signature = other.signature
	}
	return u
}

// CoalescedType is the union minus Null from the left-hand operand's type,
// used for `a ?? b`'s static type.
func (t *Type) CoalescedType(other *Type) *Type {
	return t.Dereferenced().UnionWith(other)
}

func (t *Type) String() string {
	if t.signature != nil {
		return t.signatureString(true)
	}
	return t.bitsString()
}

func (t *Type) StringNoNames() string {
	if t.signature != nil {
		return t.signatureString(false)
	}
	return t.bitsString()
}

func (t *Type) signatureString(withNames bool) string {
	var parts []string
	for _, p := range t.signature.Params {
		s := p.Type.String()
		if withNames && p.Name != "" {
			s = p.Name + ": " + s
		}
		if p.Variadic {
			s = "..." + s
		}
		if !p.Required {
			s += "?"
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("(%s)(%s)", t.signature.Return.String(), strings.Join(parts, ", "))
}

func (t *Type) bitsString() string {
	names := []struct {
		b Bits
		n string
	}{
		{Void, "void"}, {Null, "null"}, {Bool, "bool"}, {Int, "int"},
		{Float, "float"}, {Str, "string"}, {Obj, "object"}, {TypeKind, "type"},
		{Break, "break"}, {Continue, "continue"}, {Return, "return"},
		{Yield, "yield"}, {Exception, "exception"}, {Inferred, "inferred"},
	}
	var parts []string
	for _, nb := range names {
		if t.bits&nb.b != 0 {
			parts = append(parts, nb.n)
		}
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, "|")
}

// Compat is the tri-state result of an assignability check.
type Compat int

const (
	Always Compat = iota
	Never
	Sometimes
)

// CanBeAssignedFrom decides whether a value of type `other` may be
// assigned to a slot of type t, returning an explanation on Never.
func (t *Type) CanBeAssignedFrom(other *Type) (Compat, string) {
	if t.bits&Inferred != 0 {
		return Always, ""
	}
	// every simple bit of other must be covered by t, except that
	// int->float promotion is allowed when t admits float but not int.
	remaining := other.bits &^ t.bits
	if remaining == 0 {
		return Always, ""
	}
	if remaining == Int && t.bits&Float != 0 {
		return Always, ""
	}
	if other.bits&t.bits != 0 {
		return Sometimes, ""
	}
	return Never, fmt.Sprintf("cannot assign %s to %s", other.String(), t.String())
}

// PromoteAssignment performs int->float promotion (or returns the value
// type unchanged) when valueType is assignable to t; the actual numeric
// conversion happens in the executor (exec.coerceAssign), which calls this
// to decide whether to promote.
func (t *Type) PromoteAssignment(valueType *Type) (promoteToFloat bool, ok bool) {
	compat, _ := t.CanBeAssignedFrom(valueType)
	if compat == Never {
		return false, false
	}
	if valueType.bits == Int && t.bits&Float != 0 && t.bits&Int == 0 {
		return true, true
	}
	return false, true
}
