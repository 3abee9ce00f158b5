package infer

import "github.com/cottand/tyrel/frontend/ty"

// At is where relations get started from: it knows why they are needed
// and which predicates can be assumed
type At struct {
	infcx    *InferCtxt
	cause    ObligationCause
	paramEnv ty.ParamEnv
}

func (infcx *InferCtxt) At(cause ObligationCause, env ty.ParamEnv) At {
	return At{infcx: infcx, cause: cause, paramEnv: env}
}

// Sub makes expected a subtype of actual
func (at At) Sub(define DefineOpaqueTypes, expected, actual *ty.Type) (InferOK, error) {
	return RelateAt(at, define, expected, ty.Covariant, actual)
}

// Sup makes expected a supertype of actual
func (at At) Sup(define DefineOpaqueTypes, expected, actual *ty.Type) (InferOK, error) {
	return RelateAt(at, define, expected, ty.Contravariant, actual)
}

// Eq makes expected equal to actual
func (at At) Eq(define DefineOpaqueTypes, expected, actual *ty.Type) (InferOK, error) {
	return RelateAt(at, define, expected, ty.Invariant, actual)
}

func (at At) Relate(define DefineOpaqueTypes, expected *ty.Type, variance ty.Variance, actual *ty.Type) (InferOK, error) {
	return RelateAt(at, define, expected, variance, actual)
}

// eqStructurallyRelatingAliases equates a and b, relating aliases like any other type
func (at At) eqStructurallyRelatingAliases(a, b *ty.Type) (InferOK, error) {
	return relateAt(at, DefineOpaqueTypesNo, StructurallyRelateAliasesYes, a, ty.Invariant, b)
}

// RelateAt relates expected and actual with variance.
// Nothing is inferred when the relation fails, and nothing at all is related
// when variance is Bivariant.
func RelateAt[T ty.Relatable](at At, define DefineOpaqueTypes, expected T, variance ty.Variance, actual T) (InferOK, error) {
	return relateAt(at, define, StructurallyRelateAliasesNo, expected, variance, actual)
}

func relateAt[T ty.Relatable](at At, define DefineOpaqueTypes, sra StructurallyRelateAliases, expected T, variance ty.Variance, actual T) (InferOK, error) {
	return CommitIfOK(at.infcx, func() (InferOK, error) {
		trace := TypeTrace{Cause: at.cause, Values: ty.ExpectedFound(expected, actual)}
		fields := at.infcx.Combine(trace, at.paramEnv, define)
		// starting Covariant, the ambient variance is variance itself
		relation := NewTypeRelating(fields, sra, ty.Covariant)
		if _, err := ty.RelateWithVariance(relation, variance, ty.VarianceDiagInfo{}, expected, actual); err != nil {
			return InferOK{}, err
		}
		return InferOK{Obligations: fields.Obligations}, nil
	})
}
