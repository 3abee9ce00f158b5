package infer

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyrel/frontend/ty"
)

// TypeVariableOrigin records where a type variable was created
type TypeVariableOrigin struct {
	Span ty.Span
	// Param is set when the variable stands for a generic parameter of that name
	Param string
}

// typeVariableValue is either known, or unknown and only allowed to name
// placeholders of universes up to universe
type typeVariableValue struct {
	known    *ty.Type
	universe ty.UniverseIndex
}

func (v typeVariableValue) unifyWith(other typeVariableValue) (typeVariableValue, error) {
	switch {
	case v.known != nil && other.known != nil:
		panic(fmt.Sprintf("equating two type variables, both of which have known types: %s and %s", v.known, other.known))
	case v.known != nil:
		return v, nil
	case other.known != nil:
		return other, nil
	}
	return typeVariableValue{universe: min(v.universe, other.universe)}, nil
}

type typeVariableTable struct {
	eq      unificationTable[ty.TyVid, typeVariableValue]
	origins *immutable.List[TypeVariableOrigin]
}

func newTypeVariableTable() typeVariableTable {
	return typeVariableTable{
		eq:      newUnificationTable[ty.TyVid, typeVariableValue](),
		origins: immutable.NewList[TypeVariableOrigin](),
	}
}

func (t *typeVariableTable) newVar(universe ty.UniverseIndex, origin TypeVariableOrigin) ty.TyVid {
	vid := t.eq.newKey(typeVariableValue{universe: universe})
	t.origins = t.origins.Append(origin)
	return vid
}

func (t *typeVariableTable) origin(vid ty.TyVid) TypeVariableOrigin {
	return t.origins.Get(int(vid))
}

// probe returns the type vid is known to be, and otherwise the universe it lives in
func (t *typeVariableTable) probe(vid ty.TyVid) (known *ty.Type, universe ty.UniverseIndex) {
	v := t.eq.probeValue(vid)
	return v.known, v.universe
}

func (t *typeVariableTable) root(vid ty.TyVid) ty.TyVid { return t.eq.find(vid) }

// equate unifies two unknown variables
func (t *typeVariableTable) equate(a, b ty.TyVid) {
	// values never fail to merge, unifyWith panics instead
	_ = t.eq.unify(a, b)
}

// instantiate records that the unknown variable vid is t
func (t *typeVariableTable) instantiate(vid ty.TyVid, known *ty.Type) {
	if k, _ := t.probe(vid); k != nil {
		panic(fmt.Sprintf("instantiating ?%dt which is already known as %s", vid, k))
	}
	_ = t.eq.unifyValue(vid, typeVariableValue{known: known})
}

// intVarValue is what an integer literal variable is known to be
type intVarValue struct {
	known  bool
	signed bool
	intTy  ty.IntTy
	uintTy ty.UintTy
}

func (v intVarValue) unifyWith(other intVarValue) (intVarValue, error) {
	switch {
	case !v.known:
		return other, nil
	case !other.known:
		return v, nil
	case v == other:
		return v, nil
	}
	return v, errValuesDiffer
}

func (v intVarValue) toType(c *ty.Ctxt) *ty.Type {
	if v.signed {
		return c.NewInt(v.intTy)
	}
	return c.NewUint(v.uintTy)
}

// floatVarValue is what a float literal variable is known to be
type floatVarValue struct {
	known   bool
	floatTy ty.FloatTy
}

func (v floatVarValue) unifyWith(other floatVarValue) (floatVarValue, error) {
	switch {
	case !v.known:
		return other, nil
	case !other.known:
		return v, nil
	case v == other:
		return v, nil
	}
	return v, errValuesDiffer
}

// constVariableValue is like typeVariableValue, for consts
type constVariableValue struct {
	known    bool
	value    ty.Const
	universe ty.UniverseIndex
}

func (v constVariableValue) unifyWith(other constVariableValue) (constVariableValue, error) {
	switch {
	case v.known && other.known:
		panic(fmt.Sprintf("equating two const variables, both of which have known values: %s and %s", v.value, other.value))
	case v.known:
		return v, nil
	case other.known:
		return other, nil
	}
	return constVariableValue{universe: min(v.universe, other.universe)}, nil
}
