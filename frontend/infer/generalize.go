package infer

import (
	"fmt"

	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
)

// InstantiateTyVar instantiates the unknown type variable target so that it
// relates to source with variance, targetIsExpected telling which side of
// relation target is on.
//
// target cannot simply become source: source may mention regions and
// variables that target must stay free to differ from (for subtyping), or
// placeholders target's universe cannot name. So source is first generalized
// into a type with fresh variables in their place, target becomes that type,
// and then the generalization gets related with source.
func (infcx *InferCtxt) InstantiateTyVar(
	r ObligationEmittingRelation,
	targetIsExpected bool,
	target ty.TyVid,
	variance ty.Variance,
	source *ty.Type,
) error {
	if known, _ := infcx.tables.typeVars.probe(target); known != nil {
		panic(fmt.Sprintf("instantiating ?%dt which is already known as %s", target, known))
	}
	generalized, hasUnconstrainedTyVar, err := generalize(infcx, r.Span(), r.StructurallyRelateAliases(), tyVarTarget(target), variance, source)
	if err != nil {
		return err
	}

	if vid, ok := generalized.TyVid(); ok {
		// source was a variable too, there is nothing left to relate
		infcx.equateTyVars(target, vid)
		return nil
	}
	infcx.instantiateTyVar(target, generalized)

	// a variable of a bivariant position is not constrained by the relation,
	// so make sure it ends up well-formed
	if hasUnconstrainedTyVar {
		r.RegisterPredicates(ty.NewPredicate(ty.WellFormed{Arg: ty.TyArg(generalized)}))
	}

	if targetIsExpected {
		_, err = ty.Relate(r, generalized, source)
	} else {
		_, err = ty.Relate(r, source, generalized)
	}
	return err
}

// InstantiateConstVar instantiates the unknown const variable target with source,
// generalized so that target's universe can name it
func (infcx *InferCtxt) InstantiateConstVar(
	r ObligationEmittingRelation,
	targetIsExpected bool,
	target ty.ConstVid,
	source ty.Const,
) error {
	generalized, hasUnconstrainedTyVar, err := generalize(infcx, r.Span(), r.StructurallyRelateAliases(), constVarTarget(target), ty.Invariant, source)
	if err != nil {
		return err
	}
	if hasUnconstrainedTyVar {
		panic(fmt.Sprintf("unconstrained type variable when generalizing %s", source))
	}
	if err := infcx.tables.constVars.unifyValue(target, constVariableValue{known: true, value: generalized}); err != nil {
		return err
	}

	if targetIsExpected {
		_, err = ty.RelateWithVariance(r, ty.Invariant, ty.VarianceDiagInfo{}, generalized, source)
	} else {
		_, err = ty.RelateWithVariance(r, ty.Invariant, ty.VarianceDiagInfo{}, source, generalized)
	}
	return err
}

// generalizeTarget is the variable being instantiated with the generalization:
// either a type variable or a const variable
type generalizeTarget struct {
	isConst bool
	tyVid   ty.TyVid
	constID ty.ConstVid
}

func tyVarTarget(vid ty.TyVid) generalizeTarget       { return generalizeTarget{tyVid: vid} }
func constVarTarget(vid ty.ConstVid) generalizeTarget { return generalizeTarget{isConst: true, constID: vid} }

// generalize replaces the parts of source which target may not share with
// fresh variables of target's universe
func generalize[T ty.Relatable](
	infcx *InferCtxt,
	span ty.Span,
	sra StructurallyRelateAliases,
	target generalizeTarget,
	variance ty.Variance,
	source T,
) (T, bool, error) {
	g := &generalizer{
		infcx:                     infcx,
		span:                      span,
		structurallyRelateAliases: sra,
		ambientVariance:           variance,
	}
	if target.isConst {
		root := infcx.tables.constVars.find(target.constID)
		g.forConst, g.hasForConst = root, true
		_, _, g.forUniverse = infcx.ProbeConstVar(root)
	} else {
		root := infcx.tables.typeVars.root(target.tyVid)
		g.forTy, g.hasForTy = root, true
		_, g.forUniverse = infcx.tables.typeVars.probe(root)
	}

	generalized, err := ty.Relate(g, source, source)
	if err != nil {
		var zero T
		return zero, false, err
	}
	generalizeLogger.Debug("generalized", "source", source, "generalized", generalized, "universe", g.forUniverse)
	return generalized, g.hasUnconstrainedTyVar, nil
}

// generalizer is a TypeRelation that relates a value with itself, rebuilding
// it with fresh variables wherever the variable being instantiated should be
// free to differ from it.
type generalizer struct {
	infcx                     *InferCtxt
	span                      ty.Span
	structurallyRelateAliases StructurallyRelateAliases

	// the variable being instantiated, for the occurs check
	forTy       ty.TyVid
	hasForTy    bool
	forConst    ty.ConstVid
	hasForConst bool

	// forUniverse is the universe of the variable being instantiated:
	// the generalization must not mention anything it cannot name
	forUniverse ty.UniverseIndex

	ambientVariance ty.Variance

	hasUnconstrainedTyVar bool
}

var _ ty.TypeRelation = &generalizer{}

func (g *generalizer) Ctxt() *ty.Ctxt { return g.infcx.Ctxt }
func (g *generalizer) Tag() string    { return "Generalizer" }
func (g *generalizer) Span() ty.Span  { return g.span }

func (g *generalizer) RelateWithVariance(variance ty.Variance, _ ty.VarianceDiagInfo, a, b ty.Relatable) (ty.Relatable, error) {
	old := g.ambientVariance
	g.ambientVariance = old.Xform(variance)
	defer func() { g.ambientVariance = old }()
	return a.RelateWith(g, b)
}

func (g *generalizer) cyclicTy(t *ty.Type) error {
	return relerr.New(relerr.NewCyclicTy{Positioner: g.span, Ty: t})
}

func (g *generalizer) Tys(t, _ *ty.Type) (*ty.Type, error) {
	infcx := g.infcx
	switch k := t.Kind().(type) {
	case ty.Infer:
		if k.Kind != ty.TyVar {
			return t, nil
		}
		vid := infcx.tables.typeVars.root(ty.TyVid(k.Vid))
		if g.hasForTy && vid == g.forTy {
			return nil, g.cyclicTy(t)
		}
		known, universe := infcx.tables.typeVars.probe(vid)
		if known != nil {
			return ty.Relate[*ty.Type](g, known, known)
		}
		if g.ambientVariance == ty.Bivariant {
			g.hasUnconstrainedTyVar = true
		}
		// equal types may share the variable, if target could name it anyway
		if g.ambientVariance == ty.Invariant && g.forUniverse.CanName(universe) {
			return infcx.Ctxt.NewTyVar(vid), nil
		}
		origin := infcx.tables.typeVars.origin(vid)
		fresh := infcx.NextTyVarInUniverse(origin, g.forUniverse)
		generalizeLogger.Debug("replaced type variable", "var", t, "fresh", fresh)
		return fresh, nil

	case ty.Placeholder:
		if g.forUniverse.CanName(k.Universe) {
			return t, nil
		}
		generalizeLogger.Debug("placeholder not nameable", "placeholder", t, "universe", g.forUniverse)
		return nil, relerr.New(relerr.NewSorts{Positioner: g.span, ExpectedFound: ty.ExpectedFound(t, t)})
	}
	return ty.StructurallyRelateTys(g, t, t)
}

func (g *generalizer) Regions(r, _ ty.Region) (ty.Region, error) {
	switch r.Kind() {
	case ty.ReBound, ty.ReErased, ty.ReError:
		return r, nil
	}
	if g.ambientVariance == ty.Invariant && g.forUniverse.CanName(g.infcx.UniverseOfRegion(r)) {
		return r, nil
	}
	return g.infcx.NextRegionVarInUniverse(RegionVariableOrigin{Span: g.span}, g.forUniverse), nil
}

func (g *generalizer) Consts(c, _ ty.Const) (ty.Const, error) {
	infcx := g.infcx
	switch c.Kind() {
	case ty.ConstInfer:
		vid := infcx.tables.constVars.find(c.Vid())
		if g.hasForConst && vid == g.forConst {
			return ty.Const{}, relerr.New(relerr.NewCyclicConst{Positioner: g.span, Const: c})
		}
		value, known, universe := infcx.ProbeConstVar(vid)
		if known {
			return ty.Relate(g, value, value)
		}
		if g.forUniverse.CanName(universe) {
			return ty.NewConstVar(vid), nil
		}
		return infcx.NextConstVarInUniverse(g.forUniverse), nil

	case ty.ConstPlaceholder:
		if universe, _ := c.Placeholder(); g.forUniverse.CanName(universe) {
			return c, nil
		}
		return ty.Const{}, relerr.New(relerr.NewConstMismatch{Positioner: g.span, ExpectedFound: ty.ExpectedFound(c, c)})
	}
	return ty.StructurallyRelateConsts(g, c, c)
}

func (g *generalizer) Binders(a, _ ty.Binder[ty.Relatable]) (ty.Binder[ty.Relatable], error) {
	value, err := a.Skip().RelateWith(g, a.Skip())
	if err != nil {
		return ty.Binder[ty.Relatable]{}, err
	}
	return ty.Rebind(a, value), nil
}
