package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanBeAssignedFromExactMatch(t *testing.T) {
	compat, reason := IntT.CanBeAssignedFrom(IntT)
	assert.Equal(t, Always, compat)
	assert.Empty(t, reason)
}

func TestCanBeAssignedFromIntToFloatPromotes(t *testing.T) {
	compat, _ := FloatT.CanBeAssignedFrom(IntT)
	assert.Equal(t, Always, compat)
}

func TestCanBeAssignedFromFloatToIntNever(t *testing.T) {
	compat, reason := IntT.CanBeAssignedFrom(FloatT)
	assert.Equal(t, Never, compat)
	assert.NotEmpty(t, reason)
}

func TestCanBeAssignedFromUnionIsSometimes(t *testing.T) {
	u := IntT.UnionWith(StringT)
	compat, _ := IntT.CanBeAssignedFrom(u)
	assert.Equal(t, Sometimes, compat)
}

func TestCanBeAssignedFromInferredAlwaysAccepts(t *testing.T) {
	inferred := Simple(Inferred)
	compat, _ := inferred.CanBeAssignedFrom(StringT)
	assert.Equal(t, Always, compat)
}

func TestPromoteAssignmentIntToFloat(t *testing.T) {
	promote, ok := FloatT.PromoteAssignment(IntT)
	assert.True(t, ok)
	assert.True(t, promote)
}

func TestPromoteAssignmentSameTypeNoPromotion(t *testing.T) {
	promote, ok := IntT.PromoteAssignment(IntT)
	assert.True(t, ok)
	assert.False(t, promote)
}

func TestPromoteAssignmentIncompatibleFails(t *testing.T) {
	_, ok := IntT.PromoteAssignment(StringT)
	assert.False(t, ok)
}

func TestUnionWithMergesBits(t *testing.T) {
	u := IntT.UnionWith(StringT)
	assert.True(t, u.Has(Int))
	assert.True(t, u.Has(Str))
	assert.False(t, u.Has(Bool))
}

func TestNullableAndDereferenced(t *testing.T) {
	n := StringT.Nullable()
	assert.True(t, n.IsNullable())
	d := n.Dereferenced()
	assert.False(t, d.IsNullable())
	assert.True(t, d.Has(Str))
}

func TestAnyQIncludesNull(t *testing.T) {
	assert.True(t, AnyQ.IsNullable())
}

func TestAnyExcludesNullAndVoid(t *testing.T) {
	assert.False(t, Any.IsNullable())
	assert.False(t, Any.Has(Void))
	compat, _ := Any.CanBeAssignedFrom(NullT)
	assert.Equal(t, Never, compat)
	compat, _ = AnyQ.CanBeAssignedFrom(NullT)
	assert.Equal(t, Always, compat)
}

func TestFunctionSignatureMinMaxRequired(t *testing.T) {
	fn := Function(VoidT,
		Param{Name: "a", Type: IntT, Required: true},
		Param{Name: "b", Type: StringT, Required: false},
	)
	assert.Equal(t, 1, fn.Signature().MinRequired())
	assert.Equal(t, 2, fn.Signature().Max())
	assert.False(t, fn.Signature().HasVariadic())
}

func TestFunctionSignatureVariadicIsUnbounded(t *testing.T) {
	fn := Function(VoidT,
		Param{Name: "first", Type: IntT, Required: true},
		Param{Name: "rest", Type: StringT, Variadic: true},
	)
	assert.True(t, fn.Signature().HasVariadic())
	assert.Equal(t, -1, fn.Signature().Max())
}

func TestStringRendersBitsetNamesJoined(t *testing.T) {
	u := IntT.UnionWith(StringT)
	assert.Equal(t, "int|string", u.String())
}

func TestStringRendersSignature(t *testing.T) {
	fn := Function(IntT, Param{Name: "x", Type: StringT, Required: true})
	assert.Equal(t, "(int)(x: string)", fn.String())
}

func TestStringNoNamesOmitsParamNames(t *testing.T) {
	fn := Function(IntT, Param{Name: "x", Type: StringT, Required: true})
	assert.Equal(t, "(int)(string)", fn.StringNoNames())
}

func TestGeneratorOfWrapsReturnInVoidUnion(t *testing.T) {
	g := GeneratorOf(IntT)
	ret := g.Signature().Return
	assert.True(t, ret.Has(Void))
	assert.True(t, ret.Has(Int))
}
