package types

import (
	"strings"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// RefinementKind discriminates the refinement conditions.
type RefinementKind int

const (
	TypeEquals RefinementKind = iota
	TypeNotEquals
	IsUndefined
	IsNotUndefined
	IsNull
	IsNotNull
	IsTruthy
	IsFalsy
)

// RefinementCondition is the guard shape that produced a refinement.
// TypeName is only set for TypeEquals/TypeNotEquals.
type RefinementCondition struct {
	Kind     RefinementKind
	TypeName string
}

// TypeRefinement narrows one variable within a guarded branch.
type TypeRefinement struct {
	Variable    string
	RefinedType TypeResolution
	Condition   RefinementCondition
}

// Narrower extracts type refinements from boolean conditions. It
// reads the surrounding context to fall back to a variable's
// pre-condition type where a guard's complement cannot determine a
// concrete type.
type Narrower struct {
	ctx *TypeContext
}

// NewNarrower creates a narrower over the given context.
func NewNarrower(ctx *TypeContext) *Narrower {
	return &Narrower{ctx: ctx}
}

// AnalyzeCondition pattern-matches the condition's shape and returns
// the refinements it implies for the branch where it holds. Shapes
// with no recognizable pattern yield no refinements.
func (n *Narrower) AnalyzeCondition(cond ast.Expr) []TypeRefinement {
	switch e := cond.(type) {
	case *ast.Binary:
		switch e.Op {
		case ast.Equal:
			return n.equality(e.Left, e.Right, true)
		case ast.NotEqual:
			return n.equality(e.Left, e.Right, false)
		}

	case *ast.Identifier:
		// A bare identifier guard only proves "truthy"; the marker
		// stays dynamic at low confidence rather than narrowing
		// away Undefined or False.
		return []TypeRefinement{{
			Variable:    e.Name,
			RefinedType: truthyMarker(),
			Condition:   RefinementCondition{Kind: IsTruthy},
		}}

	case *ast.Unary:
		if e.Op == ast.Not {
			if ident, ok := e.Operand.(*ast.Identifier); ok {
				return []TypeRefinement{{
					Variable:    ident.Name,
					RefinedType: truthyMarker(),
					Condition:   RefinementCondition{Kind: IsFalsy},
				}}
			}
		}
	}
	return nil
}

// equality handles the three recognized comparison patterns, in
// either operand order.
func (n *Narrower) equality(left, right ast.Expr, positive bool) []TypeRefinement {
	if refs := n.typeOfCheck(left, right, positive); refs != nil {
		return refs
	}
	if refs := n.typeOfCheck(right, left, positive); refs != nil {
		return refs
	}
	if refs := n.literalCheck(left, right, positive); refs != nil {
		return refs
	}
	return n.literalCheck(right, left, positive)
}

// typeOfCheck matches ТипЗнч(x) = Тип("Имя").
func (n *Narrower) typeOfCheck(left, right ast.Expr, positive bool) []TypeRefinement {
	variable, ok := typeOfOperand(left)
	if !ok {
		return nil
	}
	typeName, ok := typeLiteralOperand(right)
	if !ok {
		return nil
	}

	concrete, known := LookupTypeName(typeName)
	if positive {
		refined := UnknownType()
		if known {
			refined = KnownType(concrete)
		}
		return []TypeRefinement{{
			Variable:    variable,
			RefinedType: refined,
			Condition:   RefinementCondition{Kind: TypeEquals, TypeName: typeName},
		}}
	}
	// Knowing a variable is not some type does not say what it is;
	// keep whatever it was before the condition.
	return []TypeRefinement{{
		Variable:    variable,
		RefinedType: n.preConditionType(variable),
		Condition:   RefinementCondition{Kind: TypeNotEquals, TypeName: typeName},
	}}
}

// literalCheck matches x = Undefined and x = Null.
func (n *Narrower) literalCheck(left, right ast.Expr, positive bool) []TypeRefinement {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		return nil
	}

	var kind SpecialKind
	switch right.(type) {
	case *ast.UndefinedLit:
		kind = SpecialUndefined
	case *ast.NullLit:
		kind = SpecialNull
	default:
		return nil
	}

	if positive {
		cond := RefinementCondition{Kind: IsUndefined}
		if kind == SpecialNull {
			cond = RefinementCondition{Kind: IsNull}
		}
		return []TypeRefinement{{
			Variable:    ident.Name,
			RefinedType: KnownType(Special{Kind: kind}),
			Condition:   cond,
		}}
	}

	cond := RefinementCondition{Kind: IsNotUndefined}
	if kind == SpecialNull {
		cond = RefinementCondition{Kind: IsNotNull}
	}
	return []TypeRefinement{{
		Variable:    ident.Name,
		RefinedType: n.preConditionType(ident.Name),
		Condition:   cond,
	}}
}

// InvertRefinements computes the refinements implied by the logical
// complement of each condition, for the else branch. Complements that
// cannot determine a concrete type fall back to the variable's
// pre-condition type.
func (n *Narrower) InvertRefinements(refinements []TypeRefinement) []TypeRefinement {
	inverted := make([]TypeRefinement, 0, len(refinements))
	for _, ref := range refinements {
		inverted = append(inverted, n.invert(ref))
	}
	return inverted
}

func (n *Narrower) invert(ref TypeRefinement) TypeRefinement {
	switch ref.Condition.Kind {
	case TypeEquals:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: n.preConditionType(ref.Variable),
			Condition:   RefinementCondition{Kind: TypeNotEquals, TypeName: ref.Condition.TypeName},
		}
	case TypeNotEquals:
		refined := UnknownType()
		if concrete, ok := LookupTypeName(ref.Condition.TypeName); ok {
			refined = KnownType(concrete)
		}
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: refined,
			Condition:   RefinementCondition{Kind: TypeEquals, TypeName: ref.Condition.TypeName},
		}
	case IsUndefined:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: n.preConditionType(ref.Variable),
			Condition:   RefinementCondition{Kind: IsNotUndefined},
		}
	case IsNotUndefined:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: KnownType(Special{Kind: SpecialUndefined}),
			Condition:   RefinementCondition{Kind: IsUndefined},
		}
	case IsNull:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: n.preConditionType(ref.Variable),
			Condition:   RefinementCondition{Kind: IsNotNull},
		}
	case IsNotNull:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: KnownType(Special{Kind: SpecialNull}),
			Condition:   RefinementCondition{Kind: IsNull},
		}
	case IsTruthy:
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: truthyMarker(),
			Condition:   RefinementCondition{Kind: IsFalsy},
		}
	default: // IsFalsy
		return TypeRefinement{
			Variable:    ref.Variable,
			RefinedType: truthyMarker(),
			Condition:   RefinementCondition{Kind: IsTruthy},
		}
	}
}

// ApplyRefinements clones the context and overwrites the refined
// variables' types. The original context is never touched.
func (n *Narrower) ApplyRefinements(refinements []TypeRefinement) *TypeContext {
	refined := n.ctx.Clone()
	for _, ref := range refinements {
		refined.SetVariable(ref.Variable, ref.RefinedType)
	}
	return refined
}

func (n *Narrower) preConditionType(variable string) TypeResolution {
	if r, ok := n.ctx.VariableType(variable); ok {
		return r
	}
	return UnknownType()
}

// truthyMarker is the low-confidence dynamic resolution used for
// bare-identifier guards.
func truthyMarker() TypeResolution {
	return TypeResolution{
		Certainty: Inferred(0.8),
		Result:    Dynamic{},
		Source:    SourceInferred,
	}
}

func typeOfOperand(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	fn, ok := call.Function.(*ast.Identifier)
	if !ok || !isTypeOfName(fn.Name) {
		return "", false
	}
	arg, ok := call.Args[0].(*ast.Identifier)
	if !ok {
		return "", false
	}
	return arg.Name, true
}

func typeLiteralOperand(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	fn, ok := call.Function.(*ast.Identifier)
	if !ok || !isTypeLiteralName(fn.Name) {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.StringLit)
	if !ok {
		return "", false
	}
	return lit.Value, true
}

// Both guard functions are recognized under their Russian and English
// spellings.
func isTypeOfName(name string) bool {
	return strings.EqualFold(name, "ТипЗнч") || strings.EqualFold(name, "TypeOf")
}

func isTypeLiteralName(name string) bool {
	return strings.EqualFold(name, "Тип") || strings.EqualFold(name, "Type")
}
