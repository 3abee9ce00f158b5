package infer

import (
	"testing"

	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/frontend/tysyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t     *testing.T
	infcx *InferCtxt
	scope *tysyntax.Scope
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	scope := tysyntax.NewScope(ty.NewCtxt())
	scope.DeclareItem("Foo", ty.DefAdt, ty.Covariant)
	scope.DeclareItem("Cell", ty.DefAdt, ty.Invariant)
	scope.DeclareItem("Bivar", ty.DefAdt, ty.Bivariant)
	scope.DeclareItem("Opaque", ty.DefOpaque)
	scope.DeclareForeignItem(1, "Foreign", ty.DefOpaque)
	scope.DeclareItem("Proj", ty.DefProjection)
	require.NoError(t, scope.DeclareParams("'a", "'b", "T", "U", "const N"))

	infcx := NewInferCtxt(scope.Ctxt, opts...)
	return &fixture{t: t, infcx: infcx, scope: scope.WithVars(NamedVars{Infcx: infcx})}
}

func (f *fixture) parse(src string) *ty.Type {
	t, err := f.scope.Parse(src)
	require.NoError(f.t, err)
	return t
}

func (f *fixture) at() At {
	return f.infcx.At(MiscCause(ty.DummySpan), ty.EmptyParamEnv)
}

func (f *fixture) relate(a string, variance ty.Variance, b string, define DefineOpaqueTypes) (InferOK, error) {
	return f.at().Relate(define, f.parse(a), variance, f.parse(b))
}

func (f *fixture) tyVid(name string) ty.TyVid {
	t, ok := f.scope.TyVar(name)
	require.True(f.t, ok, "?%s was never mentioned", name)
	vid, _ := t.TyVid()
	return vid
}

// resolved prints src with every inference variable known so far replaced
func (f *fixture) resolved(src string) string {
	return ResolveVarsIfPossible(f.infcx, f.parse(src)).String()
}

func (f *fixture) constraints() []string {
	var res []string
	for _, c := range f.infcx.RegionConstraints() {
		res = append(res, c.String())
	}
	return res
}

func predicates(ok InferOK) []ty.PredicateKind {
	var res []ty.PredicateKind
	for _, o := range ok.Obligations {
		res = append(res, o.Predicate.Kind())
	}
	return res
}

var relatingVariances = []ty.Variance{ty.Covariant, ty.Contravariant, ty.Invariant}

func TestRelateIsReflexive(t *testing.T) {
	types := []string{
		"bool", "u8", "!", "()", "(u8, &'a str)", "Foo<&'a T>", "Cell<*mut [U]>",
		"[u8; 3]", "[T; N]", "fn(u8) -> bool", "for<'x> fn(&'x u8, &'a u8) -> &'x u8",
		"Opaque<T>", "Foreign<'a>", "Proj<T>", "?x", "&'?r u8", "[u8; ?n]",
	}
	for _, variance := range relatingVariances {
		for _, src := range types {
			t.Run(variance.Name()+" "+src, func(t *testing.T) {
				f := newFixture(t)
				a := f.parse(src)
				ok, err := f.at().Relate(DefineOpaqueTypesYes, a, variance, a)
				assert.NoError(t, err)
				assert.Empty(t, ok.Obligations)
				assert.Empty(t, f.infcx.RegionConstraints())
				assert.Empty(t, f.infcx.OpaqueTypes())
			})
		}
	}
}

func TestEqualityImpliesSubtyping(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"?x", "u8"},
		{"Foo<?x>", "Foo<u8>"},
		{"Cell<(?x, ?y)>", "Cell<(u8, ?x)>"},
		{"(u8, {integer})", "(u8, u16)"},
		{"[?x; ?n]", "[bool; 3]"},
		{"&'a ?x", "&'a [u8]"},
		{"for<'x> fn(&'x u8)", "for<'y> fn(&'y u8)"},
	}
	for _, pair := range pairs {
		t.Run(pair.a+" == "+pair.b, func(t *testing.T) {
			_, err := newFixture(t).relate(pair.a, ty.Invariant, pair.b, DefineOpaqueTypesNo)
			require.NoError(t, err)
			_, err = newFixture(t).relate(pair.a, ty.Covariant, pair.b, DefineOpaqueTypesNo)
			assert.NoError(t, err)
			_, err = newFixture(t).relate(pair.a, ty.Contravariant, pair.b, DefineOpaqueTypesNo)
			assert.NoError(t, err)
		})
	}
}

func TestRelateMismatches(t *testing.T) {
	testCases := []struct {
		a        string
		variance ty.Variance
		b        string
		expected relerr.ErrCode
	}{
		{"u8", ty.Covariant, "bool", relerr.Sorts},
		{"Foo<u8>", ty.Invariant, "Foo<u16>", relerr.Sorts},
		{"(u8, ?x)", ty.Covariant, "(u8, ?x, ?y)", relerr.TupleSize},
		{"fn(u8)", ty.Contravariant, "fn(u16)", relerr.ArgumentSorts},
		{"&'a u8", ty.Covariant, "&'a mut u8", relerr.Mutability},
		{"[u8; 3]", ty.Invariant, "[u8; 4]", relerr.FixedArraySize},
		{"unsafe fn()", ty.Covariant, "fn()", relerr.SafetyMismatch},
		{"{integer}", ty.Covariant, "bool", relerr.Sorts},
		{"{float}", ty.Covariant, "u8", relerr.Sorts},
		{"?x", ty.Covariant, "Foo<?x>", relerr.CyclicTy},
		{"Cell<[?x]>", ty.Invariant, "?x", relerr.CyclicTy},
		{"Proj<T>", ty.Covariant, "u8", relerr.Sorts},
	}
	for _, testCase := range testCases {
		t.Run(testCase.a+" "+testCase.variance.String()+" "+testCase.b, func(t *testing.T) {
			_, err := newFixture(t).relate(testCase.a, testCase.variance, testCase.b, DefineOpaqueTypesNo)
			assert.Error(t, err)
			assert.Equal(t, testCase.expected, relerr.CodeOf(err), "got %v", err)
		})
	}
}

func TestFailedRelationInfersNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.relate("(?x, &'a u8, u8)", ty.Invariant, "(u8, &'b u8, u16)", DefineOpaqueTypesNo)
	assert.Error(t, err)

	known, _ := f.infcx.ProbeTyVar(f.tyVid("x"))
	assert.Nil(t, known)
	assert.Empty(t, f.infcx.RegionConstraints())
}

func TestRegionConstraintDirections(t *testing.T) {
	testCases := []struct {
		a        string
		variance ty.Variance
		b        string
		expected []string
	}{
		// a <: b needs 'a: 'b
		{"&'a u8", ty.Covariant, "&'b u8", []string{"SubRegion('b, 'a)"}},
		{"&'a u8", ty.Contravariant, "&'b u8", []string{"SubRegion('a, 'b)"}},
		{"&'a u8", ty.Invariant, "&'b u8", []string{"EqRegion('a, 'b)"}},
		{"fn(&'a u8)", ty.Covariant, "fn(&'b u8)", []string{"SubRegion('a, 'b)"}},
		{"&'a mut &'a u8", ty.Covariant, "&'b mut &'b u8", []string{"SubRegion('b, 'a)", "EqRegion('a, 'b)"}},
		{"Cell<&'a u8>", ty.Covariant, "Cell<&'b u8>", []string{"EqRegion('a, 'b)"}},
		{"Foo<&'a u8>", ty.Contravariant, "Foo<&'b u8>", []string{"SubRegion('a, 'b)"}},
		{"Bivar<&'a u8>", ty.Invariant, "Bivar<&'b u8>", nil},
		// 'static outlives everything
		{"&'static u8", ty.Covariant, "&'a u8", nil},
		{"&'static u8", ty.Contravariant, "&'a u8", []string{"SubRegion('static, 'a)"}},
		{"&'a u8", ty.Covariant, "&'a u8", nil},
	}
	for _, testCase := range testCases {
		t.Run(testCase.a+" "+testCase.variance.String()+" "+testCase.b, func(t *testing.T) {
			f := newFixture(t)
			ok, err := f.relate(testCase.a, testCase.variance, testCase.b, DefineOpaqueTypesNo)
			require.NoError(t, err)
			assert.Empty(t, ok.Obligations)
			assert.Equal(t, testCase.expected, f.constraints())
		})
	}
}

func TestRegionConstraintsRecordTheirOrigin(t *testing.T) {
	f := newFixture(t)
	a, b := f.parse("&'a u8"), f.parse("&'b u8")
	cause := ObligationCause{Span: ty.DummySpan, Desc: "assignment"}
	_, err := f.infcx.At(cause, ty.EmptyParamEnv).Sub(DefineOpaqueTypesNo, a, b)
	require.NoError(t, err)

	constraints := f.infcx.RegionConstraints()
	require.Len(t, constraints, 1)
	origin := constraints[0].Origin
	assert.Equal(t, OriginSubtype, origin.Kind)
	require.NotNil(t, origin.Trace)
	assert.Equal(t, "assignment", origin.Trace.Cause.Desc)
	assert.Equal(t, a, origin.Trace.Values.Expected)
	assert.Equal(t, b, origin.Trace.Values.Found)
}

func TestObligationsCarryTheirCause(t *testing.T) {
	f := newFixture(t)
	cause := ObligationCause{Span: ty.DummySpan, Desc: "assignment"}
	ok, err := f.infcx.At(cause, ty.EmptyParamEnv).Sub(DefineOpaqueTypesNo, f.parse("?x"), f.parse("?y"))
	require.NoError(t, err)
	require.Len(t, ok.Obligations, 1)
	assert.Equal(t, cause, ok.Obligations[0].Cause)
	assert.Contains(t, ok.Obligations[0].String(), "cause=assignment")

	ok, err = f.relate("?x", ty.Covariant, "?z", DefineOpaqueTypesNo)
	require.NoError(t, err)
	require.Len(t, ok.Obligations, 1)
	assert.Equal(t, "misc", ok.Obligations[0].Cause.Desc)
}

func TestTypeVariablePairs(t *testing.T) {
	t.Run("covariant", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Covariant, "?y", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Equal(t, []ty.PredicateKind{
			ty.SubtypePredicate{AIsExpected: true, A: f.parse("?x"), B: f.parse("?y")},
		}, predicates(ok))
	})
	t.Run("contravariant", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Contravariant, "?y", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Equal(t, []ty.PredicateKind{
			ty.SubtypePredicate{AIsExpected: false, A: f.parse("?y"), B: f.parse("?x")},
		}, predicates(ok))
	})
	t.Run("invariant", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Invariant, "?y", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Empty(t, ok.Obligations)
		assert.Equal(t, f.infcx.RootTyVar(f.tyVid("x")), f.infcx.RootTyVar(f.tyVid("y")))

		_, err = f.relate("?y", ty.Invariant, "u8", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Equal(t, "u8", f.resolved("?x"))
	})
}

func TestInstantiateTypeVariables(t *testing.T) {
	testCases := []struct {
		name        string
		a           string
		variance    ty.Variance
		b           string
		resolved    string
		constraints []string
	}{{
		name: "equal types share regions", a: "?x", variance: ty.Invariant, b: "&'a u8",
		resolved: "&'a u8",
	}, {
		name: "subtypes get fresh regions", a: "?x", variance: ty.Covariant, b: "&'a u8",
		resolved: "&'?0 u8", constraints: []string{"SubRegion('a, '?0)"},
	}, {
		name: "supertypes get fresh regions", a: "?x", variance: ty.Contravariant, b: "&'a u8",
		resolved: "&'?0 u8", constraints: []string{"SubRegion('?0, 'a)"},
	}, {
		name: "on the expected side", a: "&'a u8", variance: ty.Covariant, b: "?x",
		resolved: "&'?0 u8", constraints: []string{"SubRegion('?0, 'a)"},
	}, {
		name: "mutable pointees stay equal", a: "?x", variance: ty.Covariant, b: "&'a mut &'b u8",
		resolved: "&'?0 mut &'b u8", constraints: []string{"SubRegion('a, '?0)"},
	}}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t)
			ok, err := f.relate(testCase.a, testCase.variance, testCase.b, DefineOpaqueTypesNo)
			require.NoError(t, err)
			assert.Empty(t, ok.Obligations)
			assert.Equal(t, testCase.resolved, f.resolved("?x"))
			assert.Equal(t, testCase.constraints, f.constraints())
		})
	}
}

func TestInstantiateWithVariablesOfSource(t *testing.T) {
	t.Run("invariant keeps them", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Invariant, "Foo<?y>", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Empty(t, ok.Obligations)
		assert.Equal(t, "Foo<?1t>", f.resolved("?x"))
	})
	t.Run("covariant relates fresh ones", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Covariant, "Foo<?y>", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Equal(t, "Foo<?2t>", f.resolved("?x"))
		assert.Equal(t, []ty.PredicateKind{
			ty.SubtypePredicate{AIsExpected: true, A: f.scope.Ctxt.NewTyVar(2), B: f.parse("?y")},
		}, predicates(ok))
	})
	t.Run("bivariant ones must be well formed", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.relate("?x", ty.Covariant, "Bivar<?y>", DefineOpaqueTypesNo)
		require.NoError(t, err)
		assert.Equal(t, "Bivar<?2t>", f.resolved("?x"))
		require.Len(t, ok.Obligations, 1)
		wf, isWF := ok.Obligations[0].Predicate.Kind().(ty.WellFormed)
		require.True(t, isWF)
		assert.Equal(t, "Bivar<?2t>", wf.Arg.String())
	})
}

func TestErrorTypesTaintOnce(t *testing.T) {
	f := newFixture(t)
	_, tainted := f.infcx.TaintedByErrors()
	assert.False(t, tainted)

	ok, err := f.relate("{error}", ty.Covariant, "fn(u8) -> bool", DefineOpaqueTypesNo)
	require.NoError(t, err)
	assert.Empty(t, ok.Obligations)
	guar, tainted := f.infcx.TaintedByErrors()
	assert.True(t, tainted)
	assert.Equal(t, ty.ErrorGuaranteed(1), guar)

	// {error} is a new token each time it is parsed
	_, err = f.relate("Foo<u8>", ty.Invariant, "Foo<{error}>", DefineOpaqueTypesNo)
	require.NoError(t, err)
	guar, _ = f.infcx.TaintedByErrors()
	assert.Equal(t, ty.ErrorGuaranteed(1), guar)
}

func TestBivariantRelatesNothing(t *testing.T) {
	f := newFixture(t)
	ok, err := f.relate("(?x, &'a u8)", ty.Bivariant, "bool", DefineOpaqueTypesNo)
	assert.NoError(t, err)
	assert.Empty(t, ok.Obligations)
	assert.Empty(t, f.infcx.RegionConstraints())
	known, _ := f.infcx.ProbeTyVar(f.tyVid("x"))
	assert.Nil(t, known)

	assert.Panics(t, func() {
		fields := f.infcx.Combine(TypeTrace{}, ty.EmptyParamEnv, DefineOpaqueTypesNo)
		NewTypeRelating(fields, StructurallyRelateAliasesNo, ty.Bivariant)
	})
}

func TestRelateWithVarianceRestoresAmbientVariance(t *testing.T) {
	f := newFixture(t)
	fields := f.infcx.Combine(TypeTrace{}, ty.EmptyParamEnv, DefineOpaqueTypesNo)
	r := NewTypeRelating(fields, StructurallyRelateAliasesNo, ty.Contravariant)

	u8 := f.scope.Ctxt.Types.U8
	for _, v := range []ty.Variance{ty.Covariant, ty.Contravariant, ty.Invariant, ty.Bivariant} {
		_, err := ty.RelateWithVariance(r, v, ty.VarianceDiagInfo{}, u8, u8)
		assert.NoError(t, err)
		assert.Equal(t, ty.Contravariant, r.AmbientVariance())
	}

	_, err := ty.RelateWithVariance(r, ty.Covariant, ty.VarianceDiagInfo{}, u8, f.scope.Ctxt.Types.Bool)
	assert.Error(t, err)
	assert.Equal(t, ty.Contravariant, r.AmbientVariance())
}
