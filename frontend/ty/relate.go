package ty

import (
	"errors"
	"fmt"

	"github.com/cottand/tyrel/frontend/relerr"
)

// Relatable values can be structurally related to another value of the same Go type
type Relatable interface {
	Foldable
	fmt.Stringer
	// RelateWith relates the receiver (the 'a' side) with other (the 'b' side),
	// which must have the same dynamic type as the receiver
	RelateWith(r TypeRelation, other Relatable) (Relatable, error)
	// Equal is structural equality, bound variables included
	Equal(other Relatable) bool
	OuterExclusiveBinder() DebruijnIndex
}

// VarianceDiagInfo explains why a position is invariant, for diagnostics
type VarianceDiagInfo struct {
	// Ty is the type whose parameter is invariant, nil when unknown
	Ty         *Type
	ParamIndex int
}

// TypeRelation is a way of relating two values: subtyping, equating, generalizing...
// Implementations decide what happens at the leaves (types, regions, consts,
// binders), while the structural walk is shared and driven by Relatable.
type TypeRelation interface {
	Ctxt() *Ctxt
	// Tag names the relation, for debugging
	Tag() string
	// Span is where the relation was requested, used to position errors
	Span() Span

	// RelateWithVariance relates a and b in a position of variance v,
	// relative to the current ambient variance
	RelateWithVariance(v Variance, info VarianceDiagInfo, a, b Relatable) (Relatable, error)

	Tys(a, b *Type) (*Type, error)
	Regions(a, b Region) (Region, error)
	Consts(a, b Const) (Const, error)
	Binders(a, b Binder[Relatable]) (Binder[Relatable], error)
}

// Relate relates a and b with r at the current ambient variance
func Relate[T Relatable](r TypeRelation, a, b T) (T, error) {
	res, err := a.RelateWith(r, b)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// RelateWithVariance relates a and b with r in a position of variance v
func RelateWithVariance[T Relatable](r TypeRelation, v Variance, info VarianceDiagInfo, a, b T) (T, error) {
	res, err := r.RelateWithVariance(v, info, a, b)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// leaves

func (t *Type) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	return r.Tys(t, other.(*Type))
}

func (t *Type) Equal(other Relatable) bool {
	o, ok := other.(*Type)
	return ok && o == t
}

func (reg Region) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	return r.Regions(reg, other.(Region))
}

func (reg Region) Equal(other Relatable) bool {
	o, ok := other.(Region)
	return ok && o == reg
}

func (c Const) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	return r.Consts(c, other.(Const))
}

func (c Const) Equal(other Relatable) bool {
	o, ok := other.(Const)
	return ok && o == c
}

func (b Binder[T]) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	res, err := r.Binders(b.erase(), other.(Binder[T]).erase())
	if err != nil {
		return nil, err
	}
	return unerase[T](res), nil
}

// composites

func (a GenericArg) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	b := other.(GenericArg)
	if a.kind != b.kind {
		return nil, relerr.New(relerr.NewArgKindMismatch{
			Positioner:    r.Span(),
			ExpectedFound: relerr.ExpectedFound{Expected: a, Found: b},
		})
	}
	switch a.kind {
	case TypeArg:
		t, err := Relate(r, a.ty, b.ty)
		return TyArg(t), err
	case RegionArg:
		reg, err := Relate(r, a.region, b.region)
		return RegionArgOf(reg), err
	default:
		c, err := Relate(r, a.ct, b.ct)
		return ConstArgOf(c), err
	}
}

func (a GenericArg) Equal(other Relatable) bool {
	o, ok := other.(GenericArg)
	return ok && o == a
}

// RelateWith on Args relates them invariantly, which is right for items whose
// arguments' variance is unknown
func (args Args) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	return RelateArgsInvariantly(r, args, other.(Args))
}

func (a AliasTy) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	b := other.(AliasTy)
	if a.Def != b.Def {
		return nil, relerr.New(relerr.NewSorts{
			Positioner:    r.Span(),
			ExpectedFound: relerr.ExpectedFound{Expected: r.Ctxt().NewAlias(Projection, a), Found: r.Ctxt().NewAlias(Projection, b)},
		})
	}
	args, err := RelateArgsInvariantly(r, a.Args, b.Args)
	if err != nil {
		return nil, err
	}
	return AliasTy{Def: a.Def, Args: args}, nil
}

func (a FnSig) RelateWith(r TypeRelation, other Relatable) (Relatable, error) {
	b := other.(FnSig)
	span := r.Span()
	if a.CVariadic != b.CVariadic {
		return nil, relerr.New(relerr.NewVariadicMismatch{Positioner: span, Expected: a.CVariadic, Found: b.CVariadic})
	}
	if a.Safety != b.Safety {
		return nil, relerr.New(relerr.NewSafetyMismatch{Positioner: span, Expected: a.Safety.String(), Found: b.Safety.String()})
	}
	if a.Abi != b.Abi {
		return nil, relerr.New(relerr.NewAbiMismatch{Positioner: span, Expected: a.Abi, Found: b.Abi})
	}
	aInputs, bInputs := a.Inputs(), b.Inputs()
	if len(aInputs) != len(bInputs) {
		return nil, relerr.New(relerr.NewArgCount{Positioner: span, Expected: len(aInputs), Found: len(bInputs)})
	}

	related := make([]*Type, len(a.InputsAndOutput))
	for i := range aInputs {
		t, err := RelateWithVariance(r, Contravariant, VarianceDiagInfo{}, aInputs[i], bInputs[i])
		if err != nil {
			var sorts relerr.NewSorts
			if errors.As(err, &sorts) {
				return nil, relerr.New(relerr.NewArgumentSorts{Positioner: span, ExpectedFound: sorts.ExpectedFound, Index: i})
			}
			return nil, err
		}
		related[i] = t
	}
	out, err := Relate(r, a.Output(), b.Output())
	if err != nil {
		return nil, err
	}
	related[len(related)-1] = out

	res := a
	res.InputsAndOutput = related
	return res, nil
}

// RelateArgsInvariantly relates each pair of arguments invariantly
func RelateArgsInvariantly(r TypeRelation, a, b Args) (Args, error) {
	return relateArgs(r, nil, a, b)
}

// RelateArgsWithVariances relates each pair of arguments in a position of the matching declared variance
func RelateArgsWithVariances(r TypeRelation, variances []Variance, a, b Args) (Args, error) {
	if variances == nil {
		variances = []Variance{}
	}
	return relateArgs(r, variances, a, b)
}

// relateArgs relates invariantly when variances is nil, and defaults to
// invariance for arguments past the end of variances
func relateArgs(r TypeRelation, variances []Variance, a, b Args) (Args, error) {
	if len(a) != len(b) {
		return nil, relerr.New(relerr.NewArgCount{Positioner: r.Span(), Expected: len(a), Found: len(b)})
	}
	related := make(Args, len(a))
	for i := range a {
		variance := Invariant
		if i < len(variances) {
			variance = variances[i]
		}
		arg, err := RelateWithVariance(r, variance, VarianceDiagInfo{ParamIndex: i}, a[i], b[i])
		if err != nil {
			return nil, err
		}
		related[i] = arg
	}
	return related, nil
}

// RelateItemArgs relates the arguments of item def with its declared variances
func RelateItemArgs(r TypeRelation, def DefID, a, b Args) (Args, error) {
	return RelateArgsWithVariances(r, r.Ctxt().VariancesOf(def), a, b)
}

// ExpectedFound builds the two sides of a mismatch, a being the expected side
func ExpectedFound(a, b fmt.Stringer) relerr.ExpectedFound {
	return relerr.ExpectedFound{Expected: a, Found: b}
}

func sortsError(r TypeRelation, a, b *Type) error {
	return relerr.New(relerr.NewSorts{Positioner: r.Span(), ExpectedFound: ExpectedFound(a, b)})
}

// relateTypeAndMut relates the pointees of two references or pointers:
// invariantly when mutable, covariantly otherwise
func relateTypeAndMut(r TypeRelation, aTy, bTy *Type, aMut, bMut Mutability, base *Type) (*Type, error) {
	if aMut != bMut {
		return nil, relerr.New(relerr.NewMutability{Positioner: r.Span()})
	}
	variance := Covariant
	if aMut == Mut {
		variance = Invariant
	}
	return RelateWithVariance(r, variance, VarianceDiagInfo{Ty: base}, aTy, bTy)
}

// StructurallyRelateTys relates two types that are neither inference variables
// nor otherwise special to the relation: they must have the same constructor,
// and their components are related in positions of their declared variance.
func StructurallyRelateTys(r TypeRelation, a, b *Type) (*Type, error) {
	c := r.Ctxt()
	if _, ok := a.kind.(Infer); ok {
		panic(fmt.Sprintf("var types encountered in StructurallyRelateTys: %s", a))
	}
	if _, ok := b.kind.(Infer); ok {
		panic(fmt.Sprintf("var types encountered in StructurallyRelateTys: %s", b))
	}
	if e, ok := a.kind.(Error); ok {
		return c.NewError(e.Guar), nil
	}
	if e, ok := b.kind.(Error); ok {
		return c.NewError(e.Guar), nil
	}

	switch ak := a.kind.(type) {
	case Bool, Char, Str, Never, Int, Uint, Float, Placeholder, Bound:
		if a == b {
			return a, nil
		}

	case Param:
		if bk, ok := b.kind.(Param); ok && ak.Index == bk.Index {
			return a, nil
		}

	case Adt:
		if bk, ok := b.kind.(Adt); ok && ak.Def == bk.Def {
			args, err := RelateItemArgs(r, ak.Def, ak.Args, bk.Args)
			if err != nil {
				return nil, err
			}
			return c.NewAdt(ak.Def, args), nil
		}

	case RawPtr:
		if bk, ok := b.kind.(RawPtr); ok {
			t, err := relateTypeAndMut(r, ak.Ty, bk.Ty, ak.Mut, bk.Mut, a)
			if err != nil {
				return nil, err
			}
			return c.NewRawPtr(t, ak.Mut), nil
		}

	case Ref:
		if bk, ok := b.kind.(Ref); ok {
			region, err := Relate(r, ak.Region, bk.Region)
			if err != nil {
				return nil, err
			}
			t, err := relateTypeAndMut(r, ak.Ty, bk.Ty, ak.Mut, bk.Mut, a)
			if err != nil {
				return nil, err
			}
			return c.NewRef(region, t, ak.Mut), nil
		}

	case Array:
		if bk, ok := b.kind.(Array); ok {
			t, err := Relate(r, ak.Elem, bk.Elem)
			if err != nil {
				return nil, err
			}
			length, err := Relate(r, ak.Len, bk.Len)
			if err != nil {
				_, aLen, aKnown := ak.Len.Value()
				_, bLen, bKnown := bk.Len.Value()
				if aKnown && bKnown && aLen != bLen {
					return nil, relerr.New(relerr.NewFixedArraySize{Positioner: r.Span(), Expected: aLen, Found: bLen})
				}
				return nil, err
			}
			return c.NewArray(t, length), nil
		}

	case Slice:
		if bk, ok := b.kind.(Slice); ok {
			t, err := Relate(r, ak.Elem, bk.Elem)
			if err != nil {
				return nil, err
			}
			return c.NewSlice(t), nil
		}

	case Tuple:
		if bk, ok := b.kind.(Tuple); ok {
			if len(ak.Elems) != len(bk.Elems) {
				if len(ak.Elems) == 0 || len(bk.Elems) == 0 {
					return nil, sortsError(r, a, b)
				}
				return nil, relerr.New(relerr.NewTupleSize{Positioner: r.Span(), Expected: len(ak.Elems), Found: len(bk.Elems)})
			}
			elems := make([]*Type, len(ak.Elems))
			for i := range ak.Elems {
				elem, err := Relate(r, ak.Elems[i], bk.Elems[i])
				if err != nil {
					return nil, err
				}
				elems[i] = elem
			}
			return c.NewTuple(elems...), nil
		}

	case FnDef:
		if bk, ok := b.kind.(FnDef); ok && ak.Def == bk.Def {
			args, err := RelateItemArgs(r, ak.Def, ak.Args, bk.Args)
			if err != nil {
				return nil, err
			}
			return c.NewFnDef(ak.Def, args), nil
		}

	case FnPtr:
		if bk, ok := b.kind.(FnPtr); ok {
			sig, err := Relate(r, ak.Sig, bk.Sig)
			if err != nil {
				return nil, err
			}
			return c.NewFnPtr(sig), nil
		}

	case Alias:
		// the hidden type of an opaque can depend on its arguments in any way,
		// so they are related invariantly like those of projections
		if bk, ok := b.kind.(Alias); ok && ak.Kind == bk.Kind && ak.Ty.Def == bk.Ty.Def {
			alias, err := Relate(r, ak.Ty, bk.Ty)
			if err != nil {
				return nil, err
			}
			return c.NewAlias(ak.Kind, alias), nil
		}
	}
	logger.Debug("structural mismatch", "relation", r.Tag(), "a", a, "b", b)
	return nil, sortsError(r, a, b)
}

// StructurallyRelateConsts relates two consts that are not inference variables
func StructurallyRelateConsts(r TypeRelation, a, b Const) (Const, error) {
	if a.kind == ConstInfer || b.kind == ConstInfer {
		panic(fmt.Sprintf("var consts encountered in StructurallyRelateConsts: %s, %s", a, b))
	}
	if a.kind == ConstError {
		return a, nil
	}
	if b.kind == ConstError {
		return b, nil
	}

	isMatch := false
	switch a.kind {
	case ConstParam:
		isMatch = b.kind == ConstParam && a.index == b.index
	case ConstPlaceholder, ConstBound:
		isMatch = a == b
	case ConstValue:
		isMatch = b.kind == ConstValue && a.ty == b.ty && a.value == b.value
	}
	if !isMatch {
		return Const{}, relerr.New(relerr.NewConstMismatch{Positioner: r.Span(), ExpectedFound: ExpectedFound(a, b)})
	}
	return a, nil
}
