package ty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allVariances = []Variance{Covariant, Invariant, Contravariant, Bivariant}

func TestXformTable(t *testing.T) {
	testCases := []struct {
		ambient, nested, expected Variance
	}{
		{Covariant, Covariant, Covariant},
		{Covariant, Contravariant, Contravariant},
		{Covariant, Invariant, Invariant},
		{Covariant, Bivariant, Bivariant},
		{Contravariant, Covariant, Contravariant},
		{Contravariant, Contravariant, Covariant},
		{Contravariant, Invariant, Invariant},
		{Contravariant, Bivariant, Bivariant},
		{Invariant, Covariant, Invariant},
		{Invariant, Contravariant, Invariant},
		{Invariant, Bivariant, Invariant},
		{Bivariant, Covariant, Bivariant},
		{Bivariant, Invariant, Bivariant},
	}
	for _, testCase := range testCases {
		t.Run(testCase.ambient.Name()+"."+testCase.nested.Name(), func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.ambient.Xform(testCase.nested))
		})
	}
}

func TestXformLaws(t *testing.T) {
	for _, v := range allVariances {
		assert.Equal(t, v, Covariant.Xform(v), "Covariant is the identity on the left for %s", v)
		assert.Equal(t, Invariant, Invariant.Xform(v), "Invariant absorbs %s", v)
		assert.Equal(t, Bivariant, Bivariant.Xform(v), "Bivariant absorbs %s", v)
		assert.Equal(t, v, Contravariant.Xform(Contravariant.Xform(v)), "Contravariant flips %s twice back", v)

		for _, w := range allVariances {
			for _, x := range allVariances {
				assert.Equal(t, v.Xform(w).Xform(x), v.Xform(w.Xform(x)), "associativity of %s.%s.%s", v, w, x)
			}
		}
	}
}

func TestParseVariance(t *testing.T) {
	for _, v := range allVariances {
		parsed, ok := ParseVariance(v.String())
		assert.True(t, ok)
		assert.Equal(t, v, parsed)

		parsed, ok = ParseVariance(v.Name())
		assert.True(t, ok)
		assert.Equal(t, v, parsed)
	}
	_, ok := ParseVariance("sideways")
	assert.False(t, ok)
}
