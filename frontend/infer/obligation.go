package infer

import (
	"fmt"

	"github.com/cottand/tyrel/frontend/ty"
)

// ObligationCause is why an obligation had to be proven
type ObligationCause struct {
	Span ty.Span
	// Desc describes the cause for diagnostics, and may be empty
	Desc string
}

func MiscCause(span ty.Span) ObligationCause { return ObligationCause{Span: span, Desc: "misc"} }

// Obligation is a predicate a relation could not decide on the spot,
// left for a trait solver to prove
type Obligation struct {
	Cause     ObligationCause
	ParamEnv  ty.ParamEnv
	Predicate ty.Predicate
}

func NewObligation(cause ObligationCause, env ty.ParamEnv, predicate ty.Predicate) Obligation {
	return Obligation{Cause: cause, ParamEnv: env, Predicate: predicate}
}

func (o Obligation) String() string {
	if o.Cause.Desc == "" {
		return fmt.Sprintf("Obligation(%s)", o.Predicate)
	}
	return fmt.Sprintf("Obligation(%s, cause=%s)", o.Predicate, o.Cause.Desc)
}

// InferOK is the result of a successful relation: the obligations it produced
type InferOK struct {
	Obligations []Obligation
}

// DefineOpaqueTypes is whether relating an opaque type with another type
// may record the latter as the hidden type of the former
type DefineOpaqueTypes uint8

const (
	DefineOpaqueTypesNo DefineOpaqueTypes = iota
	DefineOpaqueTypesYes
)

// StructurallyRelateAliases is whether aliases are related like any other
// type rather than deferred to an AliasRelate obligation
type StructurallyRelateAliases uint8

const (
	StructurallyRelateAliasesNo StructurallyRelateAliases = iota
	StructurallyRelateAliasesYes
)

// ObligationEmittingRelation is a TypeRelation which may defer what it cannot
// decide by emitting obligations
type ObligationEmittingRelation interface {
	ty.TypeRelation

	ParamEnv() ty.ParamEnv
	StructurallyRelateAliases() StructurallyRelateAliases
	RegisterPredicates(predicates ...ty.Predicate)
	RegisterObligations(obligations ...Obligation)
	// RegisterTypeRelateObligation defers relating a and b in the
	// ambient direction of the relation
	RegisterTypeRelateObligation(a, b *ty.Type)
}
