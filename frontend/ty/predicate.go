package ty

import (
	"fmt"
	"strings"
)

// PredicateKind is something that must be proven about types,
// which relations emit when they cannot decide on the spot
type PredicateKind interface {
	fmt.Stringer
	OuterExclusiveBinder() DebruijnIndex
	isPredicateKind()
}

// SubtypePredicate requires A <: B.
// AIsExpected records which side the user wrote as the expected one, for diagnostics.
type SubtypePredicate struct {
	AIsExpected bool
	A, B        *Type
}

type AliasRelationDirection uint8

const (
	Equate AliasRelationDirection = iota
	Subtype
)

func (d AliasRelationDirection) String() string {
	if d == Subtype {
		return "<:"
	}
	return "=="
}

// AliasRelate requires A and B to be related in Direction once aliases are normalized
type AliasRelate struct {
	A, B      GenericArg
	Direction AliasRelationDirection
}

// WellFormed requires Arg to be a well-formed type, region or const
type WellFormed struct {
	Arg GenericArg
}

// Ambiguous is never provable nor disprovable: it makes its obligation ambiguous
type Ambiguous struct{}

// ConstEquate requires A == B for consts that cannot be compared yet
type ConstEquate struct {
	A, B Const
}

func (SubtypePredicate) isPredicateKind() {}
func (AliasRelate) isPredicateKind()      {}
func (WellFormed) isPredicateKind()       {}
func (Ambiguous) isPredicateKind()        {}
func (ConstEquate) isPredicateKind()      {}

func (p SubtypePredicate) String() string { return fmt.Sprintf("%s <: %s", p.A, p.B) }
func (p AliasRelate) String() string {
	return fmt.Sprintf("%s %s %s", p.A, p.Direction, p.B)
}
func (p WellFormed) String() string  { return fmt.Sprintf("WF(%s)", p.Arg) }
func (Ambiguous) String() string     { return "ambiguous" }
func (p ConstEquate) String() string { return fmt.Sprintf("%s == %s", p.A, p.B) }

func (p SubtypePredicate) OuterExclusiveBinder() DebruijnIndex {
	return max(p.A.outerExclusiveBinder, p.B.outerExclusiveBinder)
}
func (p AliasRelate) OuterExclusiveBinder() DebruijnIndex {
	return max(p.A.OuterExclusiveBinder(), p.B.OuterExclusiveBinder())
}
func (p WellFormed) OuterExclusiveBinder() DebruijnIndex { return p.Arg.OuterExclusiveBinder() }
func (Ambiguous) OuterExclusiveBinder() DebruijnIndex    { return Innermost }
func (p ConstEquate) OuterExclusiveBinder() DebruijnIndex {
	return max(p.A.OuterExclusiveBinder(), p.B.OuterExclusiveBinder())
}

// Predicate is a PredicateKind that does not refer to any bound variable
type Predicate struct {
	kind PredicateKind
}

// NewPredicate panics if kind has escaping bound variables
func NewPredicate(kind PredicateKind) Predicate {
	if kind.OuterExclusiveBinder() > Innermost {
		panic(fmt.Sprintf("predicate '%v' has escaping bound vars", kind))
	}
	return Predicate{kind: kind}
}

func (p Predicate) Kind() PredicateKind { return p.kind }
func (p Predicate) String() string      { return p.kind.String() }

// ParamEnv holds the predicates that may be assumed to hold where a relation happens
type ParamEnv struct {
	CallerBounds []Predicate
}

var EmptyParamEnv = ParamEnv{}

func (env ParamEnv) String() string {
	if len(env.CallerBounds) == 0 {
		return "{}"
	}
	sb := &strings.Builder{}
	sb.WriteString("{")
	for i, p := range env.CallerBounds {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString("}")
	return sb.String()
}
