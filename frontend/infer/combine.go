package infer

import (
	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
)

// TypeTrace is the pair of values a relation was started on, for diagnostics
type TypeTrace struct {
	Cause  ObligationCause
	Values relerr.ExpectedFound
}

// CombineFields is the state shared by the relations started by a single
// At call: where they come from and the obligations they accumulate
type CombineFields struct {
	Infcx             *InferCtxt
	Trace             TypeTrace
	ParamEnv          ty.ParamEnv
	Obligations       []Obligation
	DefineOpaqueTypes DefineOpaqueTypes
}

func (infcx *InferCtxt) Combine(trace TypeTrace, env ty.ParamEnv, define DefineOpaqueTypes) *CombineFields {
	return &CombineFields{
		Infcx:             infcx,
		Trace:             trace,
		ParamEnv:          env,
		DefineOpaqueTypes: define,
	}
}

func (f *CombineFields) RegisterObligations(obligations ...Obligation) {
	f.Obligations = append(f.Obligations, obligations...)
}

// RegisterPredicates wraps each predicate in an obligation caused by the trace
func (f *CombineFields) RegisterPredicates(predicates ...ty.Predicate) {
	for _, p := range predicates {
		f.Obligations = append(f.Obligations, NewObligation(f.Trace.Cause, f.ParamEnv, p))
	}
}

// SuperCombineTys relates two types which are not type variables, once the
// relation has dealt with what is specific to it. Numeric literal variables
// are unified here, aliases get deferred when they cannot be related yet,
// and everything else is related structurally.
func (infcx *InferCtxt) SuperCombineTys(r ObligationEmittingRelation, a, b *ty.Type) (*ty.Type, error) {
	infcx.logger.Debug("super combine tys", "relation", r.Tag(), "a", a, "b", b)
	aInfer, aIsInfer := a.Kind().(ty.Infer)
	bInfer, bIsInfer := b.Kind().(ty.Infer)

	switch {
	case aIsInfer && bIsInfer && aInfer.Kind == ty.IntVar && bInfer.Kind == ty.IntVar:
		if err := infcx.tables.intVars.unify(ty.IntVid(aInfer.Vid), ty.IntVid(bInfer.Vid)); err != nil {
			return nil, intMismatch(r, a, b)
		}
		return a, nil
	case aIsInfer && aInfer.Kind == ty.IntVar && isIntegral(b):
		return infcx.unifyIntVar(r, ty.IntVid(aInfer.Vid), b, a, b)
	case bIsInfer && bInfer.Kind == ty.IntVar && isIntegral(a):
		return infcx.unifyIntVar(r, ty.IntVid(bInfer.Vid), a, a, b)

	case aIsInfer && bIsInfer && aInfer.Kind == ty.FloatVar && bInfer.Kind == ty.FloatVar:
		if err := infcx.tables.floatVars.unify(ty.FloatVid(aInfer.Vid), ty.FloatVid(bInfer.Vid)); err != nil {
			return nil, floatMismatch(r, a, b)
		}
		return a, nil
	case aIsInfer && aInfer.Kind == ty.FloatVar && isFloat(b):
		return infcx.unifyFloatVar(r, ty.FloatVid(aInfer.Vid), b, a, b)
	case bIsInfer && bInfer.Kind == ty.FloatVar && isFloat(a):
		return infcx.unifyFloatVar(r, ty.FloatVid(bInfer.Vid), a, a, b)

	case infcx.opts.NextTraitSolver && (a.IsAlias() || b.IsAlias()) && !sameOpaque(a, b):
		return infcx.relateOrDeferAliases(r, a, b)

	case aIsInfer || bIsInfer:
		return nil, relerr.New(relerr.NewSorts{Positioner: r.Span(), ExpectedFound: ty.ExpectedFound(a, b)})

	case infcx.opts.Intercrate && (isOpaque(a) || isOpaque(b)):
		// in coherence, an opaque type may be any type, so we cannot decide
		r.RegisterPredicates(ty.NewPredicate(ty.Ambiguous{}))
		return a, nil

	case (isOpaque(a) || isOpaque(b)) && !sameOpaque(a, b):
		return infcx.relateOrDeferAliases(r, a, b)
	}
	return ty.StructurallyRelateTys(r, a, b)
}

// relateOrDeferAliases relates a and b structurally if r allows it, and
// otherwise emits an obligation to relate them once aliases are normalized
func (infcx *InferCtxt) relateOrDeferAliases(r ObligationEmittingRelation, a, b *ty.Type) (*ty.Type, error) {
	if r.StructurallyRelateAliases() == StructurallyRelateAliasesYes {
		return ty.StructurallyRelateTys(r, a, b)
	}
	r.RegisterTypeRelateObligation(a, b)
	return a, nil
}

// SuperCombineConsts relates two consts: variables are unified, or instantiated
// with a generalization of the other side, and everything else is related structurally
func (infcx *InferCtxt) SuperCombineConsts(r ObligationEmittingRelation, a, b ty.Const) (ty.Const, error) {
	a, b = infcx.ShallowResolveConst(a), infcx.ShallowResolveConst(b)
	switch {
	case a.IsInfer() && b.IsInfer():
		// values never fail to merge, unifyWith panics instead
		_ = infcx.tables.constVars.unify(a.Vid(), b.Vid())
		return a, nil
	case a.IsInfer():
		if err := infcx.InstantiateConstVar(r, true, a.Vid(), b); err != nil {
			return ty.Const{}, err
		}
		return b, nil
	case b.IsInfer():
		if err := infcx.InstantiateConstVar(r, false, b.Vid(), a); err != nil {
			return ty.Const{}, err
		}
		return a, nil
	}
	return ty.StructurallyRelateConsts(r, a, b)
}

func (infcx *InferCtxt) unifyIntVar(r ty.TypeRelation, vid ty.IntVid, val, a, b *ty.Type) (*ty.Type, error) {
	value := intVarValue{known: true}
	switch k := val.Kind().(type) {
	case ty.Int:
		value.signed, value.intTy = true, k.Ty
	case ty.Uint:
		value.uintTy = k.Ty
	}
	if err := infcx.tables.intVars.unifyValue(vid, value); err != nil {
		return nil, intMismatch(r, a, b)
	}
	return val, nil
}

func (infcx *InferCtxt) unifyFloatVar(r ty.TypeRelation, vid ty.FloatVid, val, a, b *ty.Type) (*ty.Type, error) {
	value := floatVarValue{known: true, floatTy: val.Kind().(ty.Float).Ty}
	if err := infcx.tables.floatVars.unifyValue(vid, value); err != nil {
		return nil, floatMismatch(r, a, b)
	}
	return val, nil
}

func intMismatch(r ty.TypeRelation, a, b *ty.Type) error {
	return relerr.New(relerr.NewIntMismatch{Positioner: r.Span(), Expected: a.String(), Found: b.String()})
}

func floatMismatch(r ty.TypeRelation, a, b *ty.Type) error {
	return relerr.New(relerr.NewFloatMismatch{Positioner: r.Span(), Expected: a.String(), Found: b.String()})
}

func isIntegral(t *ty.Type) bool {
	switch t.Kind().(type) {
	case ty.Int, ty.Uint:
		return true
	}
	return false
}

func isFloat(t *ty.Type) bool {
	_, ok := t.Kind().(ty.Float)
	return ok
}

func isOpaque(t *ty.Type) bool {
	_, ok := t.Opaque()
	return ok
}

// sameOpaque is whether a and b are the same opaque type, possibly with different arguments
func sameOpaque(a, b *ty.Type) bool {
	aAlias, aOk := a.Opaque()
	bAlias, bOk := b.Opaque()
	return aOk && bOk && aAlias.Def == bAlias.Def
}
