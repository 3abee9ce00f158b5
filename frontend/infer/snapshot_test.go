package infer

import (
	"testing"

	"github.com/cottand/tyrel/frontend/ty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeRollsBack(t *testing.T) {
	f := newFixture(t)
	x := f.parse("?x")
	vid, _ := x.TyVid()
	opaque, _ := f.parse("Opaque<T>").Opaque()
	numVars := f.infcx.NumTyVars()

	err := Probe(f.infcx, func() error {
		if _, err := f.relate("(?x, &'a u8)", ty.Covariant, "(Foo<?y>, &'b u8)", DefineOpaqueTypesNo); err != nil {
			return err
		}
		if _, err := f.relate("Opaque<T>", ty.Covariant, "bool", DefineOpaqueTypesYes); err != nil {
			return err
		}
		_, err := f.relate("for<'x> fn(&'x u8)", ty.Invariant, "for<'y> fn(&'y u8)", DefineOpaqueTypesNo)
		return err
	})
	require.NoError(t, err)

	known, _ := f.infcx.ProbeTyVar(vid)
	assert.Nil(t, known)
	assert.Equal(t, numVars, f.infcx.NumTyVars())
	assert.Empty(t, f.infcx.RegionConstraints())
	_, defined := f.infcx.HiddenType(opaque)
	assert.False(t, defined)
	assert.Equal(t, ty.RootUniverse, f.infcx.Universe())

	// universes created by the probe are not handed out again
	sig := f.parse("for<'x> fn(&'x u8)").Kind().(ty.FnPtr).Sig
	universe, err := EnterForall(f.infcx, sig, func(ty.FnSig) (ty.UniverseIndex, error) {
		return f.infcx.Universe(), nil
	})
	require.NoError(t, err)
	assert.Greater(t, universe, ty.UniverseIndex(2))
}

func TestTaintIsNotRolledBack(t *testing.T) {
	f := newFixture(t)
	Probe(f.infcx, func() error {
		_, err := f.relate("{error}", ty.Covariant, "u8", DefineOpaqueTypesNo)
		return err
	})
	_, tainted := f.infcx.TaintedByErrors()
	assert.True(t, tainted)
}

func TestCommitIfOK(t *testing.T) {
	f := newFixture(t)
	x := f.parse("?x")

	_, err := CommitIfOK(f.infcx, func() (InferOK, error) {
		return f.at().Eq(DefineOpaqueTypesNo, x, f.scope.Ctxt.Types.U8)
	})
	require.NoError(t, err)
	assert.Equal(t, "u8", f.resolved("?x"))

	y := f.parse("?y")
	_, err = CommitIfOK(f.infcx, func() (InferOK, error) {
		if _, err := f.at().Eq(DefineOpaqueTypesNo, y, f.scope.Ctxt.Types.U16); err != nil {
			return InferOK{}, err
		}
		return f.at().Eq(DefineOpaqueTypesNo, x, y)
	})
	assert.Error(t, err)
	assert.Equal(t, "?1t", f.resolved("?y"))
	assert.Equal(t, "u8", f.resolved("?x"))
}

func TestSnapshotsAreIndependent(t *testing.T) {
	f := newFixture(t)
	before := f.infcx.StartSnapshot()
	_, err := f.relate("?x", ty.Invariant, "u8", DefineOpaqueTypesNo)
	require.NoError(t, err)
	after := f.infcx.StartSnapshot()

	f.infcx.RollbackTo(before)
	assert.Equal(t, "?0t", f.resolved("?x"))
	f.infcx.RollbackTo(after)
	assert.Equal(t, "u8", f.resolved("?x"))
}
