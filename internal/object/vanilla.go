package object

import (
	"strings"

	"egg/internal/types"
	"egg/internal/value"
)

// notCallable/notIndexable/notDotable/notIterable are embedded by object
// kinds that don't support a capability, so each concrete type only has to
// implement the handful of methods it actually supports.
type notCallable struct{}

func (notCallable) Call(ctx value.Execution, params []value.Value) value.Value {
	return ctx.Raise("call: value is not callable")
}

type notIndexable struct{}

func (notIndexable) GetIndex(key value.Value) (value.Value, bool) { return value.Void, false }
func (notIndexable) SetIndex(key value.Value, v value.Value) bool { return false }

type notDotable struct{}

func (notDotable) GetProperty(name string) (value.Value, bool) { return value.Void, false }
func (notDotable) SetProperty(name string, v value.Value) bool { return false }

type notIterable struct{}

func (notIterable) Iterate(ctx value.Execution) value.Value { return value.Void }

func softLinksOf(vals ...value.Value) []int {
	var ids []int
	for _, v := range vals {
		if o := v.AsObject(); o != nil {
			if c, ok := o.(Collectable); ok {
				ids = append(ids, c.ID())
			}
		}
	}
	return ids
}

// Array is the vanilla array: an ordered, int-indexed sequence. Reading
// past the end raises; writing past the end grows and pads with null.
type Array struct {
	collectableBase
	notCallable
	notDotable
	Elems []value.Value
}

func NewArray(elems []value.Value) *Array { return &Array{Elems: elems} }

func (a *Array) ToString() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.ToString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) RuntimeType() *types.Type { return types.ObjectT }
func (a *Array) SoftLinks() []int         { return softLinksOf(a.Elems...) }

func (a *Array) GetProperty(name string) (value.Value, bool) {
	if name == "length" {
		return value.Int(int64(len(a.Elems))), true
	}
	return value.Void, false
}

func (a *Array) SetProperty(name string, v value.Value) bool {
	if name != "length" {
		return false
	}
	n := int(v.AsInt())
	if n < 0 {
		return false
	}
	if n <= len(a.Elems) {
		a.Elems = a.Elems[:n]
		return true
	}
	grown := make([]value.Value, n)
	copy(grown, a.Elems)
	for i := len(a.Elems); i < n; i++ {
		grown[i] = value.Null
	}
	a.Elems = grown
	return true
}

func (a *Array) GetIndex(key value.Value) (value.Value, bool) {
	if !key.Is(types.Int) {
		return value.Void, false
	}
	i := int(key.AsInt())
	if i < 0 || i >= len(a.Elems) {
		return value.Void, false
	}
	return a.Elems[i], true
}

func (a *Array) SetIndex(key value.Value, v value.Value) bool {
	if !key.Is(types.Int) {
		return false
	}
	i := int(key.AsInt())
	if i < 0 {
		return false
	}
	if i >= len(a.Elems) {
		grown := make([]value.Value, i+1)
		copy(grown, a.Elems)
		for j := len(a.Elems); j < i; j++ {
			grown[j] = value.Null
		}
		a.Elems = grown
	}
	a.Elems[i] = v
	return true
}

func (a *Array) Iterate(ctx value.Execution) value.Value {
	return value.ObjVal(&arrayIterator{array: a})
}

type arrayIterator struct {
	collectableBase
	notCallable
	notDotable
	notIndexable
	array *Array
	index int
}

func (it *arrayIterator) ToString() string        { return "<array iterator>" }
func (it *arrayIterator) RuntimeType() *types.Type { return types.ObjectT }
func (it *arrayIterator) SoftLinks() []int         { return []int{it.array.ID()} }

func (it *arrayIterator) Iterate(ctx value.Execution) value.Value {
	if it.index >= len(it.array.Elems) {
		return value.Void
	}
	v := it.array.Elems[it.index]
	it.index++
	return v
}

// Dict is the vanilla object: an insertion-ordered string-keyed map.
type Dict struct {
	collectableBase
	notCallable
	keys []string
	vals map[string]value.Value
}

func NewDict() *Dict {
	return &Dict{vals: make(map[string]value.Value)}
}

func (d *Dict) ToString() string {
	parts := make([]string, len(d.keys))
	for i, k := range d.keys {
		parts[i] = k + ": " + d.vals[k].ToString()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *Dict) RuntimeType() *types.Type { return types.ObjectT }

func (d *Dict) SoftLinks() []int {
	vals := make([]value.Value, 0, len(d.keys))
	for _, k := range d.keys {
		vals = append(vals, d.vals[k])
	}
	return softLinksOf(vals...)
}

func (d *Dict) GetProperty(name string) (value.Value, bool) {
	v, ok := d.vals[name]
	return v, ok
}

func (d *Dict) SetProperty(name string, v value.Value) bool {
	if _, exists := d.vals[name]; !exists {
		d.keys = append(d.keys, name)
	}
	d.vals[name] = v
	return true
}

// Index operations accept only string keys.
func (d *Dict) GetIndex(key value.Value) (value.Value, bool) {
	if !key.Is(types.Str) {
		return value.Void, false
	}
	return d.GetProperty(key.AsString().Bytes())
}

func (d *Dict) SetIndex(key value.Value, v value.Value) bool {
	if !key.Is(types.Str) {
		return false
	}
	return d.SetProperty(key.AsString().Bytes(), v)
}

func (d *Dict) Iterate(ctx value.Execution) value.Value {
	return value.ObjVal(&dictIterator{dict: d})
}

type dictIterator struct {
	collectableBase
	notCallable
	notDotable
	notIndexable
	dict  *Dict
	index int
}

func (it *dictIterator) ToString() string        { return "<object iterator>" }
func (it *dictIterator) RuntimeType() *types.Type { return types.ObjectT }
func (it *dictIterator) SoftLinks() []int         { return []int{it.dict.ID()} }

func (it *dictIterator) Iterate(ctx value.Execution) value.Value {
	if it.index >= len(it.dict.keys) {
		return value.Void
	}
	k := it.dict.keys[it.index]
	it.index++
	return value.ObjVal(NewKeyValue(value.StrOf(k), it.dict.vals[k]))
}

// KeyValue is the fixed-property pair object dictionary iteration yields:
// it has `.key` and `.value`, and is itself iterable as a two-element
// dictionary.
type KeyValue struct {
	collectableBase
	notCallable
	Key, Val value.Value
}

func NewKeyValue(k, v value.Value) *KeyValue { return &KeyValue{Key: k, Val: v} }

func (kv *KeyValue) ToString() string        { return "(" + kv.Key.ToString() + ": " + kv.Val.ToString() + ")" }
func (kv *KeyValue) RuntimeType() *types.Type { return types.ObjectT }
func (kv *KeyValue) SoftLinks() []int         { return softLinksOf(kv.Key, kv.Val) }

func (kv *KeyValue) GetProperty(name string) (value.Value, bool) {
	switch name {
	case "key":
		return kv.Key, true
	case "value":
		return kv.Val, true
	default:
		return value.Void, false
	}
}

func (kv *KeyValue) SetProperty(name string, v value.Value) bool { return false }

func (kv *KeyValue) GetIndex(key value.Value) (value.Value, bool) {
	if !key.Is(types.Str) {
		return value.Void, false
	}
	return kv.GetProperty(key.AsString().Bytes())
}
func (kv *KeyValue) SetIndex(key value.Value, v value.Value) bool { return false }

func (kv *KeyValue) Iterate(ctx value.Execution) value.Value {
	return value.ObjVal(&kvIterator{pair: kv})
}

type kvIterator struct {
	collectableBase
	notCallable
	notDotable
	notIndexable
	pair  *KeyValue
	index int
}

func (it *kvIterator) ToString() string        { return "<pair iterator>" }
func (it *kvIterator) RuntimeType() *types.Type { return types.ObjectT }
func (it *kvIterator) SoftLinks() []int         { return []int{it.pair.ID()} }

func (it *kvIterator) Iterate(ctx value.Execution) value.Value {
	switch it.index {
	case 0:
		it.index++
		return value.ObjVal(NewKeyValue(value.StrOf("key"), it.pair.Key))
	case 1:
		it.index++
		return value.ObjVal(NewKeyValue(value.StrOf("value"), it.pair.Val))
	default:
		return value.Void
	}
}
