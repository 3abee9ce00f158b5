package infer

import (
	"testing"

	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralizePlaceholders(t *testing.T) {
	f := newFixture(t)
	c := f.scope.Ctxt
	placeholder := c.NewPlaceholder(1, ty.BoundTy{Name: "T"})
	source := c.NewSlice(placeholder)

	root := f.infcx.NextTyVarID(TypeVariableOrigin{})
	_, _, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(root), ty.Covariant, source)
	assert.Equal(t, relerr.Sorts, relerr.CodeOf(err), "got %v", err)

	inner, _ := f.infcx.NextTyVarInUniverse(TypeVariableOrigin{}, 1).TyVid()
	generalized, unconstrained, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(inner), ty.Covariant, source)
	require.NoError(t, err)
	assert.False(t, unconstrained)
	assert.Same(t, source, generalized)
}

func TestGeneralizeRegions(t *testing.T) {
	f := newFixture(t)
	c := f.scope.Ctxt
	placeholder := ty.NewRePlaceholder(ty.PlaceholderRegion{Universe: 1, Bound: ty.BoundRegion{Name: "x"}})
	source := c.NewTuple(c.NewRef(placeholder, c.Types.U8, ty.Not), f.parse("&'a u8"), f.parse("&'static u8"))

	root := f.infcx.NextTyVarID(TypeVariableOrigin{})
	generalized, _, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(root), ty.Invariant, source)
	require.NoError(t, err)
	// only what the variable can name is kept
	assert.Equal(t, "(&'?0 u8, &'a u8, &'static u8)", generalized.String())
	assert.Equal(t, ty.RootUniverse, f.infcx.UniverseOfRegion(generalized.Kind().(ty.Tuple).Elems[0].Kind().(ty.Ref).Region))

	generalized, _, err = generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(root), ty.Covariant, source)
	require.NoError(t, err)
	assert.Equal(t, "(&'?1 u8, &'?2 u8, &'?3 u8)", generalized.String())

	inner, _ := f.infcx.NextTyVarInUniverse(TypeVariableOrigin{}, 1).TyVid()
	generalized, _, err = generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(inner), ty.Invariant, source)
	require.NoError(t, err)
	assert.Same(t, source, generalized)
}

func TestGeneralizeBoundRegionsAreKept(t *testing.T) {
	f := newFixture(t)
	source := f.parse("for<'x> fn(&'x u8, &'a u8)")
	root := f.infcx.NextTyVarID(TypeVariableOrigin{})

	generalized, _, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, tyVarTarget(root), ty.Covariant, source)
	require.NoError(t, err)
	assert.Equal(t, "for<'x> fn(&'^0_x u8, &'?0 u8)", generalized.String())
}

func TestGeneralizeOccursCheck(t *testing.T) {
	f := newFixture(t)
	_, err := f.relate("?x", ty.Invariant, "?y", DefineOpaqueTypesNo)
	require.NoError(t, err)

	// ?y is ?x in disguise
	_, err = f.relate("?x", ty.Covariant, "(u8, [?y])", DefineOpaqueTypesNo)
	assert.Equal(t, relerr.CyclicTy, relerr.CodeOf(err), "got %v", err)

	_, err = f.relate("?z", ty.Invariant, "Foo<?x>", DefineOpaqueTypesNo)
	require.NoError(t, err)
	_, err = f.relate("?x", ty.Invariant, "Foo<?z>", DefineOpaqueTypesNo)
	assert.Equal(t, relerr.CyclicTy, relerr.CodeOf(err), "got %v", err)
}

func TestGeneralizeConsts(t *testing.T) {
	f := newFixture(t)
	root := f.infcx.NextConstVar()
	placeholder := ty.NewConstPlaceholder(1, 0)

	_, _, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, constVarTarget(root.Vid()), ty.Invariant, placeholder)
	assert.Equal(t, relerr.ConstMismatch, relerr.CodeOf(err), "got %v", err)

	_, _, err = generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, constVarTarget(root.Vid()), ty.Invariant, root)
	assert.Equal(t, relerr.CyclicConst, relerr.CodeOf(err), "got %v", err)

	inner := f.infcx.NextConstVarInUniverse(1)
	generalized, _, err := generalize(f.infcx, ty.DummySpan, StructurallyRelateAliasesNo, constVarTarget(root.Vid()), ty.Invariant, inner)
	require.NoError(t, err)
	assert.NotEqual(t, inner, generalized)
	_, known, universe := f.infcx.ProbeConstVar(generalized.Vid())
	assert.False(t, known)
	assert.Equal(t, ty.RootUniverse, universe)
}
