package infer

import "github.com/cottand/tyrel/frontend/ty"

// ReplaceIfPossible returns the type t stands for if t is a known type variable.
// Int and float variables are left alone.
func (infcx *InferCtxt) ReplaceIfPossible(t *ty.Type) *ty.Type {
	for {
		vid, ok := t.TyVid()
		if !ok {
			return t
		}
		known, _ := infcx.tables.typeVars.probe(vid)
		if known == nil {
			return infcx.Ctxt.NewTyVar(infcx.tables.typeVars.root(vid))
		}
		t = known
	}
}

// ShallowResolve is ReplaceIfPossible that also resolves int and float variables
func (infcx *InferCtxt) ShallowResolve(t *ty.Type) *ty.Type {
	t = infcx.ReplaceIfPossible(t)
	k, ok := t.Kind().(ty.Infer)
	if !ok {
		return t
	}
	switch k.Kind {
	case ty.IntVar:
		vid := infcx.tables.intVars.find(ty.IntVid(k.Vid))
		if v := infcx.tables.intVars.probeValue(vid); v.known {
			return v.toType(infcx.Ctxt)
		}
		return infcx.Ctxt.NewIntVar(vid)
	case ty.FloatVar:
		vid := infcx.tables.floatVars.find(ty.FloatVid(k.Vid))
		if v := infcx.tables.floatVars.probeValue(vid); v.known {
			return infcx.Ctxt.NewFloat(v.floatTy)
		}
		return infcx.Ctxt.NewFloatVar(vid)
	}
	return t
}

// ShallowResolveConst returns the value c stands for if c is a known const variable
func (infcx *InferCtxt) ShallowResolveConst(c ty.Const) ty.Const {
	for c.IsInfer() {
		root := infcx.tables.constVars.find(c.Vid())
		v := infcx.tables.constVars.probeValue(root)
		if !v.known {
			return ty.NewConstVar(root)
		}
		c = v.value
	}
	return c
}

type resolver struct{ infcx *InferCtxt }

func (r resolver) Ctxt() *ty.Ctxt                    { return r.infcx.Ctxt }
func (r resolver) EnterBinder()                      {}
func (r resolver) ExitBinder()                       {}
func (r resolver) FoldRegion(reg ty.Region) ty.Region { return reg }

func (r resolver) FoldTy(t *ty.Type) *ty.Type {
	return r.infcx.ShallowResolve(t).SuperFold(r)
}

func (r resolver) FoldConst(c ty.Const) ty.Const {
	return r.infcx.ShallowResolveConst(c).SuperFold(r)
}

// ResolveVarsIfPossible replaces every known type, int, float and const variable
// in value with what it stands for, as deep as possible.
// Unknown variables are replaced by the representative of their class,
// and regions are left alone.
func ResolveVarsIfPossible[T ty.Foldable](infcx *InferCtxt, value T) T {
	return ty.Fold(resolver{infcx: infcx}, value)
}
