package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"egg/internal/types"
	"egg/internal/value"
)

func TestDeclareAndGet(t *testing.T) {
	s := NewRoot()
	ok := s.Declare("x", types.IntT, value.Int(5))
	assert.True(t, ok)
	v, found := s.Get("x")
	assert.True(t, found)
	assert.Equal(t, int64(5), v.AsInt())
}

func TestDeclareDuplicateInSameScopeFails(t *testing.T) {
	s := NewRoot()
	s.Declare("x", types.IntT, value.Int(1))
	ok := s.Declare("x", types.IntT, value.Int(2))
	assert.False(t, ok)
}

func TestChildScopeShadowsParent(t *testing.T) {
	parent := NewRoot()
	parent.Declare("x", types.IntT, value.Int(1))
	child := parent.Child()
	child.Declare("x", types.IntT, value.Int(2))

	cv, _ := child.Get("x")
	pv, _ := parent.Get("x")
	assert.Equal(t, int64(2), cv.AsInt())
	assert.Equal(t, int64(1), pv.AsInt())
}

func TestChildScopeFallsThroughToParentForUndeclaredName(t *testing.T) {
	parent := NewRoot()
	parent.Declare("y", types.StringT, value.StrOf("hi"))
	child := parent.Child()

	v, found := child.Get("y")
	assert.True(t, found)
	assert.Equal(t, "hi", v.ToString())
}

func TestSetMutatesNearestBindingInChain(t *testing.T) {
	parent := NewRoot()
	parent.Declare("x", types.IntT, value.Int(1))
	child := parent.Child()

	_, ok := child.Set("x", value.Int(9))
	assert.True(t, ok)

	pv, _ := parent.Get("x")
	assert.Equal(t, int64(9), pv.AsInt())
}

func TestSetUndeclaredNameFails(t *testing.T) {
	s := NewRoot()
	_, ok := s.Set("missing", value.Int(1))
	assert.False(t, ok)
}

func TestDeclareUninitializedReportsNotInitializedUntilSet(t *testing.T) {
	s := NewRoot()
	ok := s.DeclareUninitialized("x", types.IntT)
	assert.True(t, ok)

	_, declared, initialized := s.GetInitialized("x")
	assert.True(t, declared)
	assert.False(t, initialized)

	s.Set("x", value.Int(3))
	v, declared, initialized := s.GetInitialized("x")
	assert.True(t, declared)
	assert.True(t, initialized)
	assert.Equal(t, int64(3), v.AsInt())
}

func TestGetInitializedOnUndeclaredNameReportsNotDeclared(t *testing.T) {
	s := NewRoot()
	_, declared, initialized := s.GetInitialized("nope")
	assert.False(t, declared)
	assert.False(t, initialized)
}

func TestDeclareAfterDeclareUninitializedInSameScopeFails(t *testing.T) {
	s := NewRoot()
	s.DeclareUninitialized("x", types.IntT)
	ok := s.Declare("x", types.IntT, value.Int(1))
	assert.False(t, ok)
}

func TestHasVsHasLocal(t *testing.T) {
	parent := NewRoot()
	parent.Declare("x", types.IntT, value.Int(1))
	child := parent.Child()

	assert.True(t, child.Has("x"))
	assert.False(t, child.HasLocal("x"))

	child.Declare("y", types.IntT, value.Int(2))
	assert.True(t, child.HasLocal("y"))
}

func TestTypeLookup(t *testing.T) {
	s := NewRoot()
	s.Declare("x", types.StringT, value.StrOf("a"))
	typ, ok := s.Type("x")
	assert.True(t, ok)
	assert.Equal(t, types.StringT, typ)
}

func TestNewGlobalScopeSeedsBuiltinsWithoutRedeclarationGuard(t *testing.T) {
	builtins := map[string]value.Value{
		"print": value.Int(1),
	}
	root := NewGlobalScope(builtins)
	v, found := root.Get("print")
	assert.True(t, found)
	assert.Equal(t, int64(1), v.AsInt())
}

func TestBuiltinBindingsAreReadOnly(t *testing.T) {
	root := NewGlobalScope(map[string]value.Value{"print": value.Int(1)})
	assert.True(t, root.IsReadOnly("print"))
	_, ok := root.Set("print", value.Int(2))
	assert.False(t, ok)

	// shadowing in a child scope is still allowed, and the shadow is writable
	child := root.Child()
	assert.True(t, child.Declare("print", types.IntT, value.Int(3)))
	assert.False(t, child.IsReadOnly("print"))
	_, ok = child.Set("print", value.Int(4))
	assert.True(t, ok)
}

func TestSoftLinksCollectsObjectValuedBindingsAcrossChain(t *testing.T) {
	parent := NewRoot()
	parent.Declare("a", types.Any, value.Int(1))
	child := parent.Child()
	child.Declare("b", types.Any, value.Int(2))

	idOf := func(v value.Value) (int, bool) {
		if v.Tag&^types.FlowControl == types.Int {
			return int(v.AsInt()), true
		}
		return 0, false
	}
	ids := child.SoftLinks(idOf)
	assert.ElementsMatch(t, []int{1, 2}, ids)
}
