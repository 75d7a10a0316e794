package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"egg/internal/source"
	"egg/internal/types"
	"egg/internal/value"
)

type fakeExec struct {
	printed string
}

func (f *fakeExec) Raise(format string, args ...interface{}) value.Value {
	return Raise(source.Location{}, format, args...)
}
func (f *fakeExec) Print(s string) { f.printed += s }
func (f *fakeExec) Assertion(v value.Value) value.Value {
	if v.Tag&^types.FlowControl != types.Bool || !v.AsBool() {
		return f.Raise("assertion failed")
	}
	return value.Void
}

func TestArrayGrowsAndPadsWithNullOnOutOfRangeWrite(t *testing.T) {
	a := NewArray(nil)
	a.SetIndex(value.Int(0), value.StrOf("x"))
	a.SetIndex(value.Int(2), value.StrOf("z"))
	assert.Equal(t, 3, len(a.Elems))
	v, ok := a.GetIndex(value.Int(1))
	assert.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestArrayOutOfRangeReadFails(t *testing.T) {
	a := NewArray([]value.Value{value.Int(1)})
	_, ok := a.GetIndex(value.Int(5))
	assert.False(t, ok)
}

func TestArrayRejectsNonIntKeys(t *testing.T) {
	a := NewArray([]value.Value{value.Int(1)})
	_, ok := a.GetIndex(value.StrOf("0"))
	assert.False(t, ok)
	assert.False(t, a.SetIndex(value.StrOf("0"), value.Int(9)))
}

func TestDictRejectsNonStringKeys(t *testing.T) {
	d := NewDict()
	d.SetProperty("0", value.Int(1))
	_, ok := d.GetIndex(value.Int(0))
	assert.False(t, ok)
	assert.False(t, d.SetIndex(value.Int(0), value.Int(9)))
}

func TestArrayLengthPropertyShrinks(t *testing.T) {
	a := NewArray([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	a.SetProperty("length", value.Int(1))
	assert.Len(t, a.Elems, 1)
}

func TestArrayIteratesInOrder(t *testing.T) {
	a := NewArray([]value.Value{value.Int(1), value.Int(2)})
	it := a.Iterate(&fakeExec{}).AsObject()
	first := it.Iterate(&fakeExec{})
	second := it.Iterate(&fakeExec{})
	third := it.Iterate(&fakeExec{})
	assert.Equal(t, int64(1), first.AsInt())
	assert.Equal(t, int64(2), second.AsInt())
	assert.True(t, third.IsVoid())
}

func TestDictPreservesInsertionOrderOnIteration(t *testing.T) {
	d := NewDict()
	d.SetProperty("b", value.Int(2))
	d.SetProperty("a", value.Int(1))
	it := d.Iterate(&fakeExec{}).AsObject()
	first := it.Iterate(&fakeExec{})
	kv := first.AsObject().(*KeyValue)
	key, _ := kv.GetProperty("key")
	assert.Equal(t, "b", key.ToString())
}

func TestDictGetPropertyMissingFails(t *testing.T) {
	d := NewDict()
	_, ok := d.GetProperty("missing")
	assert.False(t, ok)
}

func TestKeyValueExposesKeyAndValue(t *testing.T) {
	kv := NewKeyValue(value.StrOf("k"), value.Int(9))
	k, _ := kv.GetProperty("key")
	v, _ := kv.GetProperty("value")
	assert.Equal(t, "k", k.ToString())
	assert.Equal(t, int64(9), v.AsInt())
}

func TestExceptionToStringFormatsLocationAndMessage(t *testing.T) {
	loc := source.Location{Resource: "test.egg", Line: 3}
	exc := NewException(loc, "boom")
	assert.Contains(t, exc.ToString(), "boom")
	assert.Contains(t, exc.ToString(), "test.egg")
}

func TestRaiseProducesExceptionFlowControlValue(t *testing.T) {
	v := Raise(source.Location{}, "bad thing: %d", 42)
	assert.True(t, v.Has(types.Exception))
	stripped, ok := v.StripFlowControl(types.Exception)
	assert.True(t, ok)
	assert.NotNil(t, stripped.AsObject())
	assert.Contains(t, stripped.AsObject().ToString(), "bad thing: 42")
}

func TestBasketVisitGarbageCollectsUnreachable(t *testing.T) {
	b := NewBasket()
	root := NewArray(nil)
	rootID := b.Add(root, true)

	child := NewArray(nil)
	childID := b.Add(child, false)
	root.Elems = append(root.Elems, value.ObjVal(child))

	orphan := NewArray(nil)
	orphanID := b.Add(orphan, false)

	var collected []int
	b.VisitGarbage(func(c Collectable) { collected = append(collected, c.ID()) })

	assert.Contains(t, collected, orphanID)
	assert.NotContains(t, collected, rootID)
	assert.NotContains(t, collected, childID)
	assert.Equal(t, 2, b.Len())
}

func TestBasketHardReleaseDropsRootStatus(t *testing.T) {
	b := NewBasket()
	a := NewArray(nil)
	id := b.Add(a, true)
	b.HardRelease(id)

	var collected []int
	b.VisitGarbage(func(c Collectable) { collected = append(collected, c.ID()) })
	assert.Contains(t, collected, id)
	assert.Equal(t, 0, b.Len())
}

func TestBasketVisitPurgeDropsEverythingUnconditionally(t *testing.T) {
	b := NewBasket()
	b.Add(NewArray(nil), true)
	b.Add(NewArray(nil), false)
	var n int
	b.VisitPurge(func(Collectable) { n++ })
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, b.Len())
}

func TestPrintConcatenatesWithNoSeparator(t *testing.T) {
	f := &fakeExec{}
	Print(f, []value.Value{value.StrOf("Hello, "), value.StrOf("world!")})
	assert.Equal(t, "Hello, world!", f.printed)
}

func TestStringOfConcatenatesAllArguments(t *testing.T) {
	v := StringOf(&fakeExec{}, []value.Value{value.StrOf("a"), value.Int(1)})
	assert.Equal(t, "a1", v.ToString())
}

func TestAssertPassesOnTrue(t *testing.T) {
	v := Assert(&fakeExec{}, []value.Value{value.True})
	assert.True(t, v.IsVoid())
}

func TestAssertRaisesOnFalse(t *testing.T) {
	v := Assert(&fakeExec{}, []value.Value{value.False})
	assert.True(t, v.Has(types.Exception))
}
