package ty

// Variance says how subtyping of a position relates to subtyping of the whole
type Variance uint8

const (
	// Covariant means T<A> <: T<B> iff A <: B
	Covariant Variance = iota
	// Invariant means T<A> <: T<B> iff B == A
	Invariant
	// Contravariant means T<A> <: T<B> iff B <: A
	Contravariant
	// Bivariant means T<A> <: T<B> for any A and B
	Bivariant
)

// Xform composes the ambient variance v with the variance of a nested position.
//
// Given a type T<A> where A sits in a position with variance vA,
// and a type X<T<A>> where T<A> sits in a position with variance vT,
// the variance of A within X is vT.Xform(vA).
func (v Variance) Xform(nested Variance) Variance {
	switch v {
	case Covariant:
		return nested
	case Contravariant:
		switch nested {
		case Covariant:
			return Contravariant
		case Contravariant:
			return Covariant
		default:
			return nested
		}
	case Invariant:
		return Invariant
	case Bivariant:
		return Bivariant
	}
	panic("unknown variance")
}

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "+"
	case Contravariant:
		return "-"
	case Invariant:
		return "o"
	case Bivariant:
		return "*"
	}
	return "?"
}

// Name is the long form of String, used in diagnostics and scenario files
func (v Variance) Name() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	case Invariant:
		return "invariant"
	case Bivariant:
		return "bivariant"
	}
	return "unknown"
}

// ParseVariance accepts both the short (+, -, o, *) and the long form
func ParseVariance(s string) (Variance, bool) {
	for _, v := range []Variance{Covariant, Invariant, Contravariant, Bivariant} {
		if s == v.String() || s == v.Name() {
			return v, true
		}
	}
	return 0, false
}
