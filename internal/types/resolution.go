// Package types implements gradual type inference for BSL modules.
// Every expression and variable carries a TypeResolution that ranges
// from a fully known concrete type to fully dynamic, with weighted
// unions and confidence levels in between.
package types

import (
	"fmt"
	"strings"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// CertaintyKind discriminates the Certainty variants.
type CertaintyKind int

const (
	CertaintyKnown CertaintyKind = iota
	CertaintyInferred
	CertaintyUnknown
)

// Certainty is the confidence attached to a resolution. Confidence is
// only meaningful for CertaintyInferred and stays within [0, 1].
type Certainty struct {
	Kind       CertaintyKind
	Confidence float32
}

// Known is full static certainty.
func Known() Certainty { return Certainty{Kind: CertaintyKnown} }

// Inferred carries a confidence level in [0, 1]. Out-of-range values
// are clamped.
func Inferred(confidence float32) Certainty {
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return Certainty{Kind: CertaintyInferred, Confidence: confidence}
}

// Unknown means the result should be treated as dynamic regardless of
// what it literally says.
func Unknown() Certainty { return Certainty{Kind: CertaintyUnknown} }

// Score maps certainty onto [0, 1] for confidence averaging.
func (c Certainty) Score() float32 {
	switch c.Kind {
	case CertaintyKnown:
		return 1.0
	case CertaintyInferred:
		return c.Confidence
	default:
		return 0.0
	}
}

func (c Certainty) String() string {
	switch c.Kind {
	case CertaintyKnown:
		return "known"
	case CertaintyInferred:
		return fmt.Sprintf("inferred(%.2f)", c.Confidence)
	default:
		return "unknown"
	}
}

// ResolutionSource records how a resolution was obtained.
type ResolutionSource int

const (
	SourceStatic ResolutionSource = iota
	SourceInferred
	SourceAnnotated
	SourceRuntime
	SourcePredicted
)

// PrimitiveKind enumerates the BSL primitive types.
type PrimitiveKind int

const (
	PrimitiveString PrimitiveKind = iota
	PrimitiveNumber
	PrimitiveBoolean
	PrimitiveDate
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveString:
		return "Строка"
	case PrimitiveNumber:
		return "Число"
	case PrimitiveBoolean:
		return "Булево"
	default:
		return "Дата"
	}
}

// SpecialKind enumerates the special value types.
type SpecialKind int

const (
	SpecialUndefined SpecialKind = iota
	SpecialNull
	SpecialType
)

func (k SpecialKind) String() string {
	switch k {
	case SpecialUndefined:
		return "Неопределено"
	case SpecialNull:
		return "Null"
	default:
		return "Тип"
	}
}

// ConcreteType is the closed set of fully resolved BSL types.
// Equality between concrete types is structural; use EqualConcrete.
type ConcreteType interface {
	concreteType()
	Name() string
}

// Platform is a platform-provided object type (Массив, Соответствие,
// ТаблицаЗначений and friends).
type Platform struct {
	TypeName   string
	Methods    []string
	Properties []string
}

// Configuration is a configuration-defined object type.
type Configuration struct {
	Kind            string // e.g. "Справочник", "Документ"
	TypeName        string
	Attributes      []string
	TabularSections []string
}

// Primitive is one of the four value primitives.
type Primitive struct {
	Kind PrimitiveKind
}

// Special is Undefined, Null or the Type meta-type.
type Special struct {
	Kind SpecialKind
}

// GlobalFunction is a platform global function usable as a callee.
type GlobalFunction struct {
	FunctionName string
	ReturnType   string // primitive name or empty when unknown
	ParamCount   int
}

func (Platform) concreteType()       {}
func (Configuration) concreteType()  {}
func (Primitive) concreteType()      {}
func (Special) concreteType()        {}
func (GlobalFunction) concreteType() {}

func (t Platform) Name() string      { return t.TypeName }
func (t Configuration) Name() string { return t.Kind + "." + t.TypeName }
func (t Primitive) Name() string     { return t.Kind.String() }
func (t Special) Name() string       { return t.Kind.String() }
func (t GlobalFunction) Name() string {
	return t.FunctionName
}

// EqualConcrete reports structural equality between two concrete
// types. Method and attribute lists are identifying only through the
// type name, so two Platform values with the same name are equal.
func EqualConcrete(a, b ConcreteType) bool {
	switch at := a.(type) {
	case Platform:
		bt, ok := b.(Platform)
		return ok && at.TypeName == bt.TypeName
	case Configuration:
		bt, ok := b.(Configuration)
		return ok && at.Kind == bt.Kind && at.TypeName == bt.TypeName
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case Special:
		bt, ok := b.(Special)
		return ok && at.Kind == bt.Kind
	case GlobalFunction:
		bt, ok := b.(GlobalFunction)
		return ok && at.FunctionName == bt.FunctionName
	}
	return false
}

// WeightedType is one member of a union with its probability weight.
// Within a normalized union, weights sum to 1.0 and are sorted
// descending.
type WeightedType struct {
	Type   ConcreteType
	Weight float32
}

// ResolutionResult is the closed set of resolution outcomes.
type ResolutionResult interface {
	resolutionResult()
}

// Concrete wraps a single resolved type.
type Concrete struct {
	Type ConcreteType
}

// Union is a weighted set of possible concrete types.
type Union struct {
	Types []WeightedType
}

// Conditional depends on a guard that could not be discharged
// statically; both outcomes are retained.
type Conditional struct {
	Condition string
	IfTrue    *TypeResolution
	IfFalse   *TypeResolution
}

// Contextual depends on the surrounding usage context.
type Contextual struct {
	Context string
}

// Dynamic is the absence of static type information.
type Dynamic struct{}

func (Concrete) resolutionResult()    {}
func (Union) resolutionResult()       {}
func (Conditional) resolutionResult() {}
func (Contextual) resolutionResult()  {}
func (Dynamic) resolutionResult()     {}

// Metadata carries source position and free-form analysis notes.
type Metadata struct {
	File   string
	Line   int
	Column int
	Notes  []string
}

// TypeResolution is the atomic unit of type information. Values are
// never mutated in place; every transformation produces a new value
// so distinct flow states can share one resolution safely.
type TypeResolution struct {
	Certainty       Certainty
	Result          ResolutionResult
	Source          ResolutionSource
	Metadata        Metadata
	ActiveFacet     *FacetKind
	AvailableFacets []FacetKind
}

// KnownType builds a fully known resolution for a concrete type.
func KnownType(t ConcreteType) TypeResolution {
	return TypeResolution{
		Certainty: Known(),
		Result:    Concrete{Type: t},
		Source:    SourceStatic,
	}
}

// InferredType builds a resolution inferred with the given confidence.
func InferredType(t ConcreteType, confidence float32) TypeResolution {
	return TypeResolution{
		Certainty: Inferred(confidence),
		Result:    Concrete{Type: t},
		Source:    SourceInferred,
	}
}

// UnknownType builds the fully dynamic resolution.
func UnknownType() TypeResolution {
	return TypeResolution{
		Certainty: Unknown(),
		Result:    Dynamic{},
		Source:    SourceStatic,
	}
}

// UnknownTypeWithNote builds a dynamic resolution annotated with a
// reason, kept in the metadata notes.
func UnknownTypeWithNote(note string) TypeResolution {
	r := UnknownType()
	r.Metadata.Notes = []string{note}
	return r
}

// WithLocation returns a copy of the resolution positioned at loc.
func (r TypeResolution) WithLocation(loc ast.SourceLocation) TypeResolution {
	r.Metadata.File = loc.File
	r.Metadata.Line = loc.Line
	r.Metadata.Column = loc.Column
	return r
}

// IsKnown reports whether the resolution is fully certain.
func (r TypeResolution) IsKnown() bool { return r.Certainty.Kind == CertaintyKnown }

// IsUnknown reports whether the resolution carries no usable type.
func (r TypeResolution) IsUnknown() bool { return r.Certainty.Kind == CertaintyUnknown }

// ConcreteType returns the underlying concrete type when the result
// is Concrete.
func (r TypeResolution) ConcreteType() (ConcreteType, bool) {
	c, ok := r.Result.(Concrete)
	if !ok {
		return nil, false
	}
	return c.Type, true
}

// UnionMembers returns the weighted members when the result is Union.
func (r TypeResolution) UnionMembers() ([]WeightedType, bool) {
	u, ok := r.Result.(Union)
	if !ok {
		return nil, false
	}
	return u.Types, true
}

func (r TypeResolution) String() string {
	switch res := r.Result.(type) {
	case Concrete:
		return fmt.Sprintf("%s [%s]", res.Type.Name(), r.Certainty)
	case Union:
		parts := make([]string, len(res.Types))
		for i, wt := range res.Types {
			parts[i] = fmt.Sprintf("%s:%.2f", wt.Type.Name(), wt.Weight)
		}
		return fmt.Sprintf("union{%s} [%s]", strings.Join(parts, ", "), r.Certainty)
	case Conditional:
		return fmt.Sprintf("conditional(%s) [%s]", res.Condition, r.Certainty)
	case Contextual:
		return fmt.Sprintf("contextual(%s) [%s]", res.Context, r.Certainty)
	default:
		return fmt.Sprintf("dynamic [%s]", r.Certainty)
	}
}
