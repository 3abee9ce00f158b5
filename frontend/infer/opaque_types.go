package infer

import (
	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
)

// OpaqueHiddenType is the type an opaque type was found to stand for
type OpaqueHiddenType struct {
	Key  ty.AliasTy
	Ty   *ty.Type
	Span ty.Span
}

// HandleOpaqueType records the non-opaque side of a and b as the hidden type
// of the local opaque type on the other side.
// An opaque type that already has a hidden type must be defined consistently,
// which is required with the returned obligations.
func (infcx *InferCtxt) HandleOpaqueType(a, b *ty.Type, cause ObligationCause, env ty.ParamEnv) ([]Obligation, error) {
	if alias, ok := a.Opaque(); ok && alias.Def.IsLocal() {
		return infcx.registerHiddenType(alias, cause, env, b)
	}
	if alias, ok := b.Opaque(); ok && alias.Def.IsLocal() {
		return infcx.registerHiddenType(alias, cause, env, a)
	}
	return nil, relerr.New(relerr.NewSorts{Positioner: cause.Span, ExpectedFound: ty.ExpectedFound(a, b)})
}

func (infcx *InferCtxt) registerHiddenType(key ty.AliasTy, cause ObligationCause, env ty.ParamEnv, hidden *ty.Type) ([]Obligation, error) {
	infcx.logger.Debug("register hidden type", "opaque", key, "hidden", hidden)
	prev, hadPrev := infcx.tables.opaques.Get(key.Key())
	infcx.tables.opaques = infcx.tables.opaques.Set(key.Key(), OpaqueHiddenType{Key: key, Ty: hidden, Span: cause.Span})
	if !hadPrev {
		return nil, nil
	}
	// both definitions must agree, opaque types in them included
	ok, err := infcx.At(cause, env).eqStructurallyRelatingAliases(prev.Ty, hidden)
	if err != nil {
		return nil, err
	}
	return ok.Obligations, nil
}

// HiddenType returns the hidden type recorded for opaque, if any
func (infcx *InferCtxt) HiddenType(opaque ty.AliasTy) (OpaqueHiddenType, bool) {
	return infcx.tables.opaques.Get(opaque.Key())
}

// OpaqueTypes returns every hidden type recorded so far
func (infcx *InferCtxt) OpaqueTypes() []OpaqueHiddenType {
	res := make([]OpaqueHiddenType, 0, infcx.tables.opaques.Len())
	itr := infcx.tables.opaques.Iterator()
	for !itr.Done() {
		_, hidden, _ := itr.Next()
		res = append(res, hidden)
	}
	return res
}
