package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const inlineScenario = `
options:
  skipLeakCheck: true
params: ["'a", T]
items:
  - name: Foo
    kind: adt
    variances: ["+"]
  - name: Ext
    kind: opaque
    crate: 2
cases:
  - name: leak check skipped
    a: fn(&'static u8)
    b: for<'x> fn(&'x u8)
`

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario(strings.NewReader(inlineScenario))
	require.NoError(t, err)
	assert.True(t, scenario.Options.SkipLeakCheck)
	assert.False(t, scenario.Options.Intercrate)
	assert.Equal(t, []string{"'a", "T"}, scenario.Params)
	require.Len(t, scenario.Items, 2)
	assert.Equal(t, uint32(2), scenario.Items[1].Crate)
	require.Len(t, scenario.Cases, 1)

	scope, err := scenario.Scope()
	require.NoError(t, err)
	assert.Equal(t, "Foo<&'a T>", scope.MustParse("Foo<&'a T>").String())

	res, err := scenario.Run(scope, scenario.Cases[0])
	require.NoError(t, err)
	assert.NoError(t, res.Err)
	assert.True(t, res.Matches())
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario(strings.NewReader("cases:\n  - name: x\n    expected: Sorts\n"))
	assert.Error(t, err)
}

func TestScenarioScopeErrors(t *testing.T) {
	testCases := []struct {
		name     string
		scenario Scenario
		expected string
	}{
		{"unknown kind", Scenario{Items: []ItemDecl{{Name: "Foo", Kind: "struct"}}}, "unknown kind 'struct'"},
		{"unknown variance", Scenario{Items: []ItemDecl{{Name: "Foo", Kind: "adt", Variances: []string{"sideways"}}}}, "unknown variance 'sideways'"},
		{"repeated param", Scenario{Params: []string{"T", "T"}}, "declared twice"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := testCase.scenario.Scope()
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.expected)
		})
	}
}

func TestRunReportsBadCases(t *testing.T) {
	scenario := &Scenario{Params: []string{"T"}}
	scope, err := scenario.Scope()
	require.NoError(t, err)

	_, err = scenario.Run(scope, Case{Name: "bad a", A: "Nope", B: "u8"})
	assert.ErrorContains(t, err, "could not parse a")
	_, err = scenario.Run(scope, Case{Name: "bad variance", A: "u8", B: "u8", Variance: "sideways"})
	assert.ErrorContains(t, err, "unknown variance")
}

func TestCaseResultMatches(t *testing.T) {
	one := 1
	mismatch := relerr.New(relerr.NewMutability{})
	testCases := []struct {
		name     string
		res      CaseResult
		expected bool
	}{
		{"ok by default", CaseResult{}, true},
		{"explicit ok", CaseResult{Case: Case{Expect: " ok "}}, true},
		{"unexpected error", CaseResult{Err: mismatch}, false},
		{"expected error", CaseResult{Case: Case{Expect: "Mutability"}, Err: mismatch}, true},
		{"wrong error", CaseResult{Case: Case{Expect: "Sorts"}, Err: mismatch}, false},
		{"unknown code", CaseResult{Case: Case{Expect: "Nope"}, Err: mismatch}, false},
		{"missing obligation", CaseResult{Case: Case{Obligations: &one}}, false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.res.Matches())
		})
	}
}

func TestTestdataScenario(t *testing.T) {
	f, err := os.Open("testdata/relate.yaml")
	require.NoError(t, err)
	defer f.Close()
	scenario, err := LoadScenario(f)
	require.NoError(t, err)
	scope, err := scenario.Scope()
	require.NoError(t, err)

	for _, c := range scenario.Cases {
		t.Run(c.Name, func(t *testing.T) {
			res, err := scenario.Run(scope, c)
			require.NoError(t, err)
			assert.True(t, res.Matches(), "error %v, %d obligations", res.Err, len(res.Obligations))
		})
	}
}

func TestRelateCmd(t *testing.T) {
	out := &bytes.Buffer{}
	RelateCmd.SetOut(out)
	RelateCmd.SetArgs([]string{"testdata/relate.yaml"})
	require.NoError(t, RelateCmd.Execute())
	assert.Contains(t, out.String(), "covariant regions: ok\n")
	assert.Contains(t, out.String(), "all 9 cases matched their expectation")
	assert.Contains(t, out.String(), "error: (E015)")
	assert.Contains(t, out.String(), "hidden type: ")
	assert.Contains(t, out.String(), "(from two variables)\n")
	assert.Contains(t, out.String(), "relation errors: TupleSize=1 FixedArraySize=1 RegionsPlaceholderMismatch=1\n")
}

func TestRelateCmdLogSections(t *testing.T) {
	previous := log.EnabledSections()
	t.Cleanup(func() {
		log.EnableSections(previous...)
		*logSections = nil
	})

	out := &bytes.Buffer{}
	RelateCmd.SetOut(out)
	RelateCmd.SetArgs([]string{"--log-section", "higher-ranked,cli", "testdata/relate.yaml"})
	require.NoError(t, RelateCmd.Execute())
	assert.Equal(t, []string{"higher-ranked", "cli"}, log.EnabledSections())
}

func TestCountByCode(t *testing.T) {
	errs := (&relerr.Errors{}).With(
		relerr.New(relerr.NewMutability{}),
		relerr.New(relerr.NewSorts{}),
		relerr.New(relerr.NewMutability{}),
	)
	assert.Equal(t, "Sorts=1 Mutability=2", countByCode(errs))
	assert.Equal(t, "", countByCode(nil))
}
