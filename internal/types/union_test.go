package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnionEmpty(t *testing.T) {
	r := CreateUnion(nil)
	assert.True(t, r.IsUnknown())
	assert.IsType(t, Dynamic{}, r.Result)
	assert.Contains(t, r.Metadata.Notes, "empty union")
}

func TestCreateUnionSingleIsIdentity(t *testing.T) {
	orig := KnownType(Primitive{Kind: PrimitiveString})
	r := CreateUnion([]TypeResolution{orig})
	assert.Equal(t, orig, r)
}

func TestCreateUnionMergesEqualTypes(t *testing.T) {
	str := KnownType(Primitive{Kind: PrimitiveString})
	r := CreateUnion([]TypeResolution{str, str})

	concrete, ok := r.ConcreteType()
	require.True(t, ok, "two equal inputs must collapse to one concrete member")
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveString}))
}

func TestCreateUnionAllNumericCollapses(t *testing.T) {
	num := KnownType(Primitive{Kind: PrimitiveNumber})
	inferred := InferredType(Primitive{Kind: PrimitiveNumber}, 0.6)
	r := CreateUnion([]TypeResolution{num, inferred, num})

	concrete, ok := r.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
	assert.Equal(t, CertaintyInferred, r.Certainty.Kind, "collapsed union is inferred, never known")
}

func TestCreateUnionCardinalityBound(t *testing.T) {
	var inputs []TypeResolution
	for i := 0; i < 10; i++ {
		inputs = append(inputs, KnownType(Platform{TypeName: fmt.Sprintf("Тип%d", i)}))
	}
	r := CreateUnion(inputs)

	members, ok := r.UnionMembers()
	require.True(t, ok)
	assert.LessOrEqual(t, len(members), 5)

	var sum float32
	for _, m := range members {
		sum += m.Weight
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestCreateUnionWeightsSortedDescending(t *testing.T) {
	str := KnownType(Primitive{Kind: PrimitiveString})
	num := KnownType(Primitive{Kind: PrimitiveNumber})
	r := CreateUnion([]TypeResolution{str, str, num})

	members, ok := r.UnionMembers()
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.True(t, EqualConcrete(members[0].Type, Primitive{Kind: PrimitiveString}))
	assert.Greater(t, members[0].Weight, members[1].Weight)
}

func TestCreateUnionConfidenceCapped(t *testing.T) {
	str := KnownType(Primitive{Kind: PrimitiveString})
	num := KnownType(Primitive{Kind: PrimitiveNumber})
	r := CreateUnion([]TypeResolution{str, num})

	require.Equal(t, CertaintyInferred, r.Certainty.Kind)
	assert.LessOrEqual(t, r.Certainty.Confidence, float32(0.9))
}

func TestCreateUnionDropsNestedLowWeightMembers(t *testing.T) {
	// A nested union member at 2% of the total falls under the floor.
	rare := TypeResolution{
		Certainty: Inferred(0.5),
		Result: Union{Types: []WeightedType{
			{Type: Platform{TypeName: "Массив"}, Weight: 0.96},
			{Type: Platform{TypeName: "Соответствие"}, Weight: 0.04},
		}},
		Source: SourceInferred,
	}
	num := KnownType(Primitive{Kind: PrimitiveNumber})
	r := CreateUnion([]TypeResolution{rare, num})

	assert.False(t, ContainsType(r, Platform{TypeName: "Соответствие"}))
	assert.True(t, ContainsType(r, Platform{TypeName: "Массив"}))
	assert.True(t, ContainsType(r, Primitive{Kind: PrimitiveNumber}))
}

func TestIntersectUnions(t *testing.T) {
	a := CreateUnion([]TypeResolution{
		KnownType(Primitive{Kind: PrimitiveString}),
		KnownType(Platform{TypeName: "Массив"}),
	})
	b := CreateUnion([]TypeResolution{
		KnownType(Primitive{Kind: PrimitiveString}),
		KnownType(Primitive{Kind: PrimitiveNumber}),
	})

	r := IntersectUnions(a, b)
	concrete, ok := r.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveString}))
}

func TestMergeUnions(t *testing.T) {
	a := KnownType(Primitive{Kind: PrimitiveString})
	b := KnownType(Primitive{Kind: PrimitiveNumber})

	r := MergeUnions(a, b)
	members, ok := r.UnionMembers()
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.InDelta(t, 0.5, members[0].Weight, 0.001)
	assert.InDelta(t, 0.5, members[1].Weight, 0.001)
}

func TestFilterUnion(t *testing.T) {
	u := CreateUnion([]TypeResolution{
		KnownType(Primitive{Kind: PrimitiveString}),
		KnownType(Platform{TypeName: "Массив"}),
	})

	onlyPrimitives := FilterUnion(u, func(t ConcreteType) bool {
		_, ok := t.(Primitive)
		return ok
	})
	concrete, ok := onlyPrimitives.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveString}))
}

func TestMostLikelyType(t *testing.T) {
	str := KnownType(Primitive{Kind: PrimitiveString})
	num := KnownType(Primitive{Kind: PrimitiveNumber})
	u := CreateUnion([]TypeResolution{str, str, num})

	top, ok := MostLikelyType(u)
	require.True(t, ok)
	assert.True(t, EqualConcrete(top, Primitive{Kind: PrimitiveString}))

	weight := TypeWeight(u, Primitive{Kind: PrimitiveString})
	assert.InDelta(t, 2.0/3.0, weight, 0.01)
}

func TestIsCompatibleWithUnion(t *testing.T) {
	u := CreateUnion([]TypeResolution{
		KnownType(Primitive{Kind: PrimitiveString}),
		KnownType(Primitive{Kind: PrimitiveNumber}),
	})
	assert.True(t, IsCompatibleWithUnion(KnownType(Primitive{Kind: PrimitiveString}), u))
	assert.False(t, IsCompatibleWithUnion(KnownType(Primitive{Kind: PrimitiveDate}), u))
}

func TestUnionFromConcrete(t *testing.T) {
	r := UnionFromConcrete(
		Primitive{Kind: PrimitiveString},
		Platform{TypeName: "Массив"},
	)

	members, ok := r.UnionMembers()
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.InDelta(t, 0.5, members[0].Weight, 0.001)
	assert.Equal(t, CertaintyInferred, r.Certainty.Kind)
}

func TestUnionFromConcreteSingle(t *testing.T) {
	r := UnionFromConcrete(Primitive{Kind: PrimitiveNumber})
	concrete, ok := r.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
}

func TestAddTypeToUnion(t *testing.T) {
	base := KnownType(Primitive{Kind: PrimitiveString})
	r := AddTypeToUnion(base, Primitive{Kind: PrimitiveNumber}, 0.25)

	members, ok := r.UnionMembers()
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.InDelta(t, 0.75, TypeWeight(r, Primitive{Kind: PrimitiveString}), 0.001)
	assert.InDelta(t, 0.25, TypeWeight(r, Primitive{Kind: PrimitiveNumber}), 0.001)
}

func TestAddTypeToUnionClampsWeight(t *testing.T) {
	base := KnownType(Primitive{Kind: PrimitiveString})
	r := AddTypeToUnion(base, Primitive{Kind: PrimitiveNumber}, 1.5)

	concrete, ok := r.ConcreteType()
	require.True(t, ok, "full weight replaces the union outright")
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
}
