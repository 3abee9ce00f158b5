package infer

import (
	"fmt"

	"github.com/cottand/tyrel/frontend/ty"
)

// TypeRelating relates two values for subtyping or equality, depending on
// its ambient variance: Covariant requires a <: b, Contravariant b <: a,
// and Invariant a == b.
//
// Whatever it cannot decide right away is pushed as an obligation to the
// CombineFields it was built with, and region relationships are recorded
// as region constraints of the InferCtxt.
type TypeRelating struct {
	fields                    *CombineFields
	structurallyRelateAliases StructurallyRelateAliases
	ambientVariance           ty.Variance
}

var _ ObligationEmittingRelation = &TypeRelating{}

// NewTypeRelating panics for Bivariant, where nothing is related:
// go through RelateWithVariance to get the bivariant short-circuit instead
func NewTypeRelating(fields *CombineFields, sra StructurallyRelateAliases, variance ty.Variance) *TypeRelating {
	if variance == ty.Bivariant {
		panic("cannot relate types bivariantly")
	}
	return &TypeRelating{
		fields:                    fields,
		structurallyRelateAliases: sra,
		ambientVariance:           variance,
	}
}

func (r *TypeRelating) Ctxt() *ty.Ctxt { return r.fields.Infcx.Ctxt }
func (r *TypeRelating) Tag() string    { return "TypeRelating" }
func (r *TypeRelating) Span() ty.Span  { return r.fields.Trace.Cause.Span }

func (r *TypeRelating) AmbientVariance() ty.Variance { return r.ambientVariance }
func (r *TypeRelating) Fields() *CombineFields        { return r.fields }
func (r *TypeRelating) ParamEnv() ty.ParamEnv         { return r.fields.ParamEnv }

func (r *TypeRelating) StructurallyRelateAliases() StructurallyRelateAliases {
	return r.structurallyRelateAliases
}

func (r *TypeRelating) RegisterPredicates(predicates ...ty.Predicate) {
	r.fields.RegisterPredicates(predicates...)
}

func (r *TypeRelating) RegisterObligations(obligations ...Obligation) {
	r.fields.RegisterObligations(obligations...)
}

func (r *TypeRelating) RegisterTypeRelateObligation(a, b *ty.Type) {
	var p ty.AliasRelate
	switch r.ambientVariance {
	case ty.Covariant:
		p = ty.AliasRelate{A: ty.TyArg(a), B: ty.TyArg(b), Direction: ty.Subtype}
	case ty.Contravariant:
		p = ty.AliasRelate{A: ty.TyArg(b), B: ty.TyArg(a), Direction: ty.Subtype}
	case ty.Invariant:
		p = ty.AliasRelate{A: ty.TyArg(a), B: ty.TyArg(b), Direction: ty.Equate}
	default:
		panic("bivariant relation cannot defer alias relations")
	}
	r.RegisterPredicates(ty.NewPredicate(p))
}

// RelateWithVariance relates a and b with the ambient variance composed with
// variance for the duration of the call. Bivariant positions are not related.
func (r *TypeRelating) RelateWithVariance(variance ty.Variance, _ ty.VarianceDiagInfo, a, b ty.Relatable) (ty.Relatable, error) {
	old := r.ambientVariance
	r.ambientVariance = old.Xform(variance)
	defer func() { r.ambientVariance = old }()

	if r.ambientVariance == ty.Bivariant {
		return a, nil
	}
	return a.RelateWith(r, b)
}

func (r *TypeRelating) Tys(a, b *ty.Type) (*ty.Type, error) {
	if a == b {
		return a, nil
	}
	infcx := r.fields.Infcx
	a, b = infcx.ReplaceIfPossible(a), infcx.ReplaceIfPossible(b)
	if a == b {
		return a, nil
	}

	aVid, aIsVar := a.TyVid()
	bVid, bIsVar := b.TyVid()
	switch {
	case aIsVar && bIsVar:
		switch r.ambientVariance {
		case ty.Covariant:
			r.RegisterPredicates(ty.NewPredicate(ty.SubtypePredicate{AIsExpected: true, A: a, B: b}))
		case ty.Contravariant:
			r.RegisterPredicates(ty.NewPredicate(ty.SubtypePredicate{AIsExpected: false, A: b, B: a}))
		case ty.Invariant:
			infcx.equateTyVars(aVid, bVid)
		default:
			panic(fmt.Sprintf("bivariant relation of %s and %s", a, b))
		}

	case aIsVar:
		if err := infcx.InstantiateTyVar(r, true, aVid, r.ambientVariance, b); err != nil {
			return nil, err
		}

	case bIsVar:
		if err := infcx.InstantiateTyVar(r, false, bVid, r.ambientVariance.Xform(ty.Contravariant), a); err != nil {
			return nil, err
		}

	case a.IsError() || b.IsError():
		guar := errorToken(a, b)
		infcx.SetTaintedByErrors(guar)
		return r.Ctxt().NewError(guar), nil

	case sameOpaque(a, b):
		// relating an opaque with itself must not define it
		return infcx.SuperCombineTys(r, a, b)

	case r.fields.DefineOpaqueTypes == DefineOpaqueTypesYes && !infcx.opts.NextTraitSolver && (isLocalOpaque(a) || isLocalOpaque(b)):
		obligations, err := infcx.HandleOpaqueType(a, b, r.fields.Trace.Cause, r.ParamEnv())
		if err != nil {
			return nil, err
		}
		r.RegisterObligations(obligations...)

	default:
		if _, err := infcx.SuperCombineTys(r, a, b); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Regions records the region constraint matching the ambient variance:
// a must outlive b when Covariant, b must outlive a when Contravariant,
// and both when Invariant
func (r *TypeRelating) Regions(a, b ty.Region) (ty.Region, error) {
	infcx := r.fields.Infcx
	origin := SubtypeOrigin(r.fields.Trace)
	switch r.ambientVariance {
	case ty.Covariant:
		infcx.MakeSubregion(origin, b, a)
	case ty.Contravariant:
		infcx.MakeSubregion(origin, a, b)
	case ty.Invariant:
		infcx.MakeEqregion(origin, a, b)
	default:
		panic(fmt.Sprintf("bivariant relation of %s and %s", a, b))
	}
	return a, nil
}

func (r *TypeRelating) Consts(a, b ty.Const) (ty.Const, error) {
	return r.fields.Infcx.SuperCombineConsts(r, a, b)
}

// Binders relates two higher-ranked values.
// For a <: b, every instantiation of b must be a supertype of some
// instantiation of a: b's variables become placeholders, and a's fresh
// inference variables. Equality requires that in both directions.
func (r *TypeRelating) Binders(a, b ty.Binder[ty.Relatable]) (ty.Binder[ty.Relatable], error) {
	if a.Equal(b) {
		return a, nil
	}
	aValue, aOk := a.NoBoundVars()
	bValue, bOk := b.NoBoundVars()
	if aOk && bOk {
		if _, err := aValue.RelateWith(r, bValue); err != nil {
			return ty.Binder[ty.Relatable]{}, err
		}
		return a, nil
	}

	infcx := r.fields.Infcx
	span := r.Span()
	// a with fresh variables, b with placeholders
	aSub := func() error {
		return enterForallAndLeakCheck(infcx, span, b, a, func(bPlaceholders, aFresh ty.Relatable) error {
			_, err := aFresh.RelateWith(r, bPlaceholders)
			return err
		})
	}
	// a with placeholders, b with fresh variables
	aSup := func() error {
		return enterForallAndLeakCheck(infcx, span, a, b, func(aPlaceholders, bFresh ty.Relatable) error {
			_, err := aPlaceholders.RelateWith(r, bFresh)
			return err
		})
	}

	higherRankedLogger.Debug("relate binders", "a", a, "b", b, "variance", r.ambientVariance)
	var err error
	switch r.ambientVariance {
	case ty.Covariant:
		err = aSub()
	case ty.Contravariant:
		err = aSup()
	case ty.Invariant:
		if err = aSub(); err == nil {
			err = aSup()
		}
	default:
		panic(fmt.Sprintf("bivariant relation of %s and %s", a, b))
	}
	if err != nil {
		return ty.Binder[ty.Relatable]{}, err
	}
	return a, nil
}

func errorToken(a, b *ty.Type) ty.ErrorGuaranteed {
	if e, ok := a.Kind().(ty.Error); ok {
		return e.Guar
	}
	return b.Kind().(ty.Error).Guar
}

func isLocalOpaque(t *ty.Type) bool {
	alias, ok := t.Opaque()
	return ok && alias.Def.IsLocal()
}
