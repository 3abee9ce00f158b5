package cmd

import (
	"io"
	"strings"

	"github.com/cottand/tyrel/frontend/infer"
	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/frontend/tysyntax"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scenario declares items and generic parameters, and the pairs of types
// to relate in their scope
type Scenario struct {
	Options ScenarioOptions `yaml:"options"`
	// Params are the generic parameters in scope, like 'a, T or "const N"
	Params []string   `yaml:"params"`
	Items  []ItemDecl `yaml:"items"`
	Cases  []Case     `yaml:"cases"`
}

type ScenarioOptions struct {
	NextTraitSolver bool `yaml:"nextTraitSolver"`
	Intercrate      bool `yaml:"intercrate"`
	SkipLeakCheck   bool `yaml:"skipLeakCheck"`
}

func (o ScenarioOptions) inferOptions() []infer.Option {
	var opts []infer.Option
	if o.NextTraitSolver {
		opts = append(opts, infer.WithNextTraitSolver())
	}
	if o.Intercrate {
		opts = append(opts, infer.WithIntercrate())
	}
	if o.SkipLeakCheck {
		opts = append(opts, infer.WithSkipLeakCheck())
	}
	return opts
}

type ItemDecl struct {
	Name string `yaml:"name"`
	// Kind is one of adt, fn, opaque or projection
	Kind string `yaml:"kind"`
	// Crate is the crate the item belongs to, 0 being the local crate
	Crate     uint32   `yaml:"crate"`
	Variances []string `yaml:"variances"`
}

// Case is a pair of types to relate
type Case struct {
	Name string `yaml:"name"`
	A    string `yaml:"a"`
	B    string `yaml:"b"`
	// Variance is how A must relate to B, covariant (A <: B) by default
	Variance string `yaml:"variance"`
	// Define lets local opaque types get defined by the relation
	Define bool `yaml:"define"`
	// Expect is either ok or the code of the expected error, ok by default
	Expect string `yaml:"expect"`
	// Obligations is the number of obligations the relation must produce, if set
	Obligations *int `yaml:"obligations"`
}

func LoadScenario(r io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	scenario := &Scenario{}
	if err := decoder.Decode(scenario); err != nil {
		return nil, errors.Wrap(err, "could not decode scenario")
	}
	return scenario, nil
}

// Scope declares the items and parameters of s in a fresh Ctxt
func (s *Scenario) Scope() (*tysyntax.Scope, error) {
	scope := tysyntax.NewScope(ty.NewCtxt())
	if err := scope.DeclareParams(s.Params...); err != nil {
		return nil, err
	}
	for _, item := range s.Items {
		kind, ok := ty.ParseDefKind(item.Kind)
		if !ok {
			return nil, errors.Errorf("item %s: unknown kind '%s'", item.Name, item.Kind)
		}
		variances := make([]ty.Variance, len(item.Variances))
		for i, v := range item.Variances {
			if variances[i], ok = ty.ParseVariance(v); !ok {
				return nil, errors.Errorf("item %s: unknown variance '%s'", item.Name, v)
			}
		}
		scope.DeclareForeignItem(ty.CrateNum(item.Crate), item.Name, kind, variances...)
	}
	return scope, nil
}

// CaseResult is the outcome of relating the types of a Case
type CaseResult struct {
	Case        Case
	A, B        *ty.Type
	Err         error
	Obligations []infer.Obligation
	Constraints []infer.Constraint
	HiddenTypes []infer.OpaqueHiddenType
	Tainted     bool
}

// Matches is whether the result is what the case expects
func (r CaseResult) Matches() bool {
	expect := strings.TrimSpace(r.Case.Expect)
	if expect == "" || expect == "ok" {
		if r.Err != nil {
			return false
		}
	} else {
		code, ok := relerr.ParseErrCode(expect)
		if !ok || relerr.CodeOf(r.Err) != code {
			return false
		}
	}
	return r.Case.Obligations == nil || *r.Case.Obligations == len(r.Obligations)
}

// Run relates the types of c in a fresh inference context
func (s *Scenario) Run(scope *tysyntax.Scope, c Case) (CaseResult, error) {
	infcx := infer.NewInferCtxt(scope.Ctxt, s.Options.inferOptions()...)
	caseScope := scope.WithVars(infer.NamedVars{Infcx: infcx})

	a, err := caseScope.Parse(c.A)
	if err != nil {
		return CaseResult{}, errors.Wrapf(err, "case %s: could not parse a", c.Name)
	}
	b, err := caseScope.Parse(c.B)
	if err != nil {
		return CaseResult{}, errors.Wrapf(err, "case %s: could not parse b", c.Name)
	}
	variance := ty.Covariant
	if c.Variance != "" {
		var ok bool
		if variance, ok = ty.ParseVariance(c.Variance); !ok {
			return CaseResult{}, errors.Errorf("case %s: unknown variance '%s'", c.Name, c.Variance)
		}
	}
	define := infer.DefineOpaqueTypesNo
	if c.Define {
		define = infer.DefineOpaqueTypesYes
	}

	logger.Debug("relating case", "case", c.Name, "a", a, "b", b, "variance", variance)
	ok, relateErr := infcx.At(infer.ObligationCause{Span: ty.DummySpan, Desc: c.Name}, ty.EmptyParamEnv).Relate(define, a, variance, b)
	_, tainted := infcx.TaintedByErrors()
	return CaseResult{
		Case:        c,
		A:           infer.ResolveVarsIfPossible(infcx, a),
		B:           infer.ResolveVarsIfPossible(infcx, b),
		Err:         relateErr,
		Obligations: ok.Obligations,
		Constraints: infcx.RegionConstraints(),
		HiddenTypes: infcx.OpaqueTypes(),
		Tainted:     tainted,
	}, nil
}
