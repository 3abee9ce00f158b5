package infer

import "github.com/cottand/tyrel/frontend/ty"

// EnterForall instantiates the bound variables of b with placeholders of a
// fresh universe and calls f with the result.
// The universe is only current while f runs, so variables f creates can
// name the placeholders while variables created afterwards cannot.
func EnterForall[T ty.Relatable, U any](infcx *InferCtxt, b ty.Binder[T], f func(T) (U, error)) (U, error) {
	if value, ok := b.NoBoundVars(); ok {
		return f(value)
	}
	outer := infcx.universe
	next := infcx.createNextUniverse()
	defer func() { infcx.universe = outer }()

	c := infcx.Ctxt
	value := ty.InstantiateBoundVars(c, b, ty.FnMutDelegate{
		Regions: func(br ty.BoundRegion) ty.Region {
			return ty.NewRePlaceholder(ty.PlaceholderRegion{Universe: next, Bound: br})
		},
		Types: func(bt ty.BoundTy) *ty.Type {
			return c.NewPlaceholder(next, bt)
		},
		Consts: func(bv ty.BoundVar) ty.Const {
			return ty.NewConstPlaceholder(next, bv)
		},
	})
	higherRankedLogger.Debug("entered forall", "binder", b, "universe", next, "value", value)
	return f(value)
}

// InstantiateBinderWithFreshVars replaces the bound variables of b with fresh
// inference variables of the current universe, one per bound variable
func InstantiateBinderWithFreshVars[T ty.Relatable](infcx *InferCtxt, span ty.Span, b ty.Binder[T]) T {
	if value, ok := b.NoBoundVars(); ok {
		return value
	}
	regions := map[ty.BoundVar]ty.Region{}
	types := map[ty.BoundVar]*ty.Type{}
	consts := map[ty.BoundVar]ty.Const{}

	value := ty.InstantiateBoundVars(infcx.Ctxt, b, ty.FnMutDelegate{
		Regions: func(br ty.BoundRegion) ty.Region {
			if r, ok := regions[br.Var]; ok {
				return r
			}
			r := infcx.NextRegionVar(RegionVariableOrigin{Span: span})
			regions[br.Var] = r
			return r
		},
		Types: func(bt ty.BoundTy) *ty.Type {
			if t, ok := types[bt.Var]; ok {
				return t
			}
			t := infcx.NextTyVar(TypeVariableOrigin{Span: span, Param: bt.Name})
			types[bt.Var] = t
			return t
		},
		Consts: func(bv ty.BoundVar) ty.Const {
			if c, ok := consts[bv]; ok {
				return c
			}
			c := infcx.NextConstVar()
			consts[bv] = c
			return c
		},
	})
	higherRankedLogger.Debug("instantiated binder with fresh vars", "binder", b, "value", value)
	return value
}

// enterForallAndLeakCheck relates the placeholder instantiation of placeholderSide
// with the fresh variable instantiation of inferSide using relate, then checks
// no placeholder leaked into the region constraints relate added
func enterForallAndLeakCheck(
	infcx *InferCtxt,
	span ty.Span,
	placeholderSide, inferSide ty.Binder[ty.Relatable],
	relate func(placeholders, fresh ty.Relatable) error,
) error {
	outer := infcx.universe
	start := infcx.numRegionConstraints()
	_, err := EnterForall(infcx, placeholderSide, func(placeholders ty.Relatable) (struct{}, error) {
		fresh := InstantiateBinderWithFreshVars(infcx, span, inferSide)
		return struct{}{}, relate(placeholders, fresh)
	})
	if err != nil {
		return err
	}
	return infcx.leakCheck(span, outer, start)
}
