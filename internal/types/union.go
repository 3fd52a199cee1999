package types

import "sort"

// Union construction keeps results bounded for interactive use: low
// weight members are dropped and the member count is capped so deep
// branching cannot produce unions that make hover output unusable.
const (
	unionWeightFloor   = 0.05
	unionMaxMembers    = 5
	unionMaxConfidence = 0.9
)

// CreateUnion combines several resolutions into one. An empty input
// yields the never type; a single input is returned unchanged. Nested
// unions are flattened with their member weights scaled by the parent
// share, structurally equal members are merged, and the result is
// simplified before being returned.
func CreateUnion(resolutions []TypeResolution) TypeResolution {
	switch len(resolutions) {
	case 0:
		return UnknownTypeWithNote("empty union")
	case 1:
		return resolutions[0]
	}

	share := 1.0 / float32(len(resolutions))
	var members []WeightedType
	var confidenceSum float32

	for _, r := range resolutions {
		confidenceSum += r.Certainty.Score()
		switch res := r.Result.(type) {
		case Concrete:
			members = append(members, WeightedType{Type: res.Type, Weight: share})
		case Union:
			for _, wt := range res.Types {
				members = append(members, WeightedType{Type: wt.Type, Weight: wt.Weight * share})
			}
		}
	}

	members = simplifyMembers(normalizeMembers(members))
	confidence := confidenceSum / float32(len(resolutions))

	switch len(members) {
	case 0:
		return UnknownTypeWithNote("empty union")
	case 1:
		return InferredType(members[0].Type, confidence)
	default:
		if confidence > unionMaxConfidence {
			confidence = unionMaxConfidence
		}
		return TypeResolution{
			Certainty: Inferred(confidence),
			Result:    Union{Types: members},
			Source:    SourceInferred,
		}
	}
}

// normalizeMembers merges structurally equal members, summing their
// weights, and sorts the result by descending weight.
func normalizeMembers(members []WeightedType) []WeightedType {
	var merged []WeightedType
	for _, m := range members {
		found := false
		for i := range merged {
			if EqualConcrete(merged[i].Type, m.Type) {
				merged[i].Weight += m.Weight
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, m)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Weight > merged[j].Weight
	})
	return merged
}

func simplifyMembers(members []WeightedType) []WeightedType {
	if len(members) == 0 {
		return members
	}

	if allPrimitive(members, PrimitiveNumber) {
		return []WeightedType{{Type: Primitive{Kind: PrimitiveNumber}, Weight: totalWeight(members)}}
	}
	if allPrimitive(members, PrimitiveString) {
		return []WeightedType{{Type: Primitive{Kind: PrimitiveString}, Weight: totalWeight(members)}}
	}

	var kept []WeightedType
	for _, m := range members {
		if m.Weight >= unionWeightFloor {
			kept = append(kept, m)
		}
	}
	kept = renormalize(kept)

	if len(kept) > unionMaxMembers {
		kept = renormalize(kept[:unionMaxMembers])
	}
	return kept
}

func allPrimitive(members []WeightedType, kind PrimitiveKind) bool {
	for _, m := range members {
		p, ok := m.Type.(Primitive)
		if !ok || p.Kind != kind {
			return false
		}
	}
	return true
}

func totalWeight(members []WeightedType) float32 {
	var sum float32
	for _, m := range members {
		sum += m.Weight
	}
	return sum
}

func renormalize(members []WeightedType) []WeightedType {
	sum := totalWeight(members)
	if sum <= 0 {
		return members
	}
	out := make([]WeightedType, len(members))
	for i, m := range members {
		out[i] = WeightedType{Type: m.Type, Weight: m.Weight / sum}
	}
	return out
}

// NormalizeUnion re-normalizes a union resolution in case its member
// weights drifted. Non-union resolutions pass through unchanged.
func NormalizeUnion(r TypeResolution) TypeResolution {
	u, ok := r.Result.(Union)
	if !ok {
		return r
	}
	r.Result = Union{Types: renormalize(normalizeMembers(u.Types))}
	return r
}

// IntersectUnions keeps only members present in both unions; the kept
// member's weight is the product of the two weights, renormalized.
func IntersectUnions(a, b TypeResolution) TypeResolution {
	am := resolutionMembers(a)
	bm := resolutionMembers(b)

	var common []WeightedType
	for _, x := range am {
		for _, y := range bm {
			if EqualConcrete(x.Type, y.Type) {
				common = append(common, WeightedType{Type: x.Type, Weight: x.Weight * y.Weight})
			}
		}
	}
	return unionFromMembers(renormalize(normalizeMembers(common)))
}

// MergeUnions concatenates the members of both unions at half weight
// and normalizes, so each side contributes an equal share.
func MergeUnions(a, b TypeResolution) TypeResolution {
	var members []WeightedType
	for _, m := range resolutionMembers(a) {
		members = append(members, WeightedType{Type: m.Type, Weight: m.Weight / 2})
	}
	for _, m := range resolutionMembers(b) {
		members = append(members, WeightedType{Type: m.Type, Weight: m.Weight / 2})
	}
	return unionFromMembers(renormalize(normalizeMembers(members)))
}

// FilterUnion keeps only the members matching pred, renormalized.
func FilterUnion(r TypeResolution, pred func(ConcreteType) bool) TypeResolution {
	var kept []WeightedType
	for _, m := range resolutionMembers(r) {
		if pred(m.Type) {
			kept = append(kept, m)
		}
	}
	return unionFromMembers(renormalize(kept))
}

// ContainsType reports whether the resolution can be t.
func ContainsType(r TypeResolution, t ConcreteType) bool {
	for _, m := range resolutionMembers(r) {
		if EqualConcrete(m.Type, t) {
			return true
		}
	}
	return false
}

// TypeWeight returns the weight of t within the resolution, or 0.
func TypeWeight(r TypeResolution, t ConcreteType) float32 {
	for _, m := range resolutionMembers(r) {
		if EqualConcrete(m.Type, t) {
			return m.Weight
		}
	}
	return 0
}

// MostLikelyType returns the highest weighted member.
func MostLikelyType(r TypeResolution) (ConcreteType, bool) {
	members := resolutionMembers(r)
	if len(members) == 0 {
		return nil, false
	}
	return members[0].Type, true
}

// IsCompatibleWithUnion reports whether any member of a is
// structurally equal to any member of b.
func IsCompatibleWithUnion(a, b TypeResolution) bool {
	for _, m := range resolutionMembers(a) {
		if ContainsType(b, m.Type) {
			return true
		}
	}
	return false
}

// resolutionMembers views any resolution as a weighted member list:
// a concrete type is a single member with weight 1.
func resolutionMembers(r TypeResolution) []WeightedType {
	switch res := r.Result.(type) {
	case Concrete:
		return []WeightedType{{Type: res.Type, Weight: 1}}
	case Union:
		return res.Types
	default:
		return nil
	}
}

func unionFromMembers(members []WeightedType) TypeResolution {
	switch len(members) {
	case 0:
		return UnknownTypeWithNote("empty union")
	case 1:
		return InferredType(members[0].Type, unionMaxConfidence)
	default:
		return TypeResolution{
			Certainty: Inferred(unionMaxConfidence),
			Result:    Union{Types: members},
			Source:    SourceInferred,
		}
	}
}

// UnionFromConcrete builds a two-member union directly from concrete
// types with equal shares.
func UnionFromConcrete(types ...ConcreteType) TypeResolution {
	if len(types) == 0 {
		return UnknownTypeWithNote("empty union")
	}
	share := 1.0 / float32(len(types))
	members := make([]WeightedType, len(types))
	for i, t := range types {
		members[i] = WeightedType{Type: t, Weight: share}
	}
	return unionFromMembers(simplifyMembers(normalizeMembers(members)))
}

// AddTypeToUnion extends a resolution with one more possible type at
// the given share of the total, renormalizing the rest.
func AddTypeToUnion(r TypeResolution, t ConcreteType, weight float32) TypeResolution {
	if weight < 0 {
		weight = 0
	} else if weight > 1 {
		weight = 1
	}
	var members []WeightedType
	for _, m := range resolutionMembers(r) {
		members = append(members, WeightedType{Type: m.Type, Weight: m.Weight * (1 - weight)})
	}
	members = append(members, WeightedType{Type: t, Weight: weight})
	return unionFromMembers(simplifyMembers(normalizeMembers(members)))
}
