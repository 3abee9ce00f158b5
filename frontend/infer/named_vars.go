package infer

import "github.com/cottand/tyrel/frontend/ty"

// NamedVars creates inference variables of an InferCtxt for names written in
// source, the way tysyntax.Scope asks for them
type NamedVars struct {
	Infcx *InferCtxt
	Span  ty.Span
}

func (v NamedVars) NewTyVar(name string) *ty.Type {
	return v.Infcx.NextTyVar(TypeVariableOrigin{Span: v.Span, Param: name})
}

func (v NamedVars) NewIntVar() *ty.Type   { return v.Infcx.NextIntVar() }
func (v NamedVars) NewFloatVar() *ty.Type { return v.Infcx.NextFloatVar() }

func (v NamedVars) NewRegionVar(string) ty.Region {
	return v.Infcx.NextRegionVar(RegionVariableOrigin{Span: v.Span})
}

func (v NamedVars) NewConstVar(string) ty.Const { return v.Infcx.NextConstVar() }
