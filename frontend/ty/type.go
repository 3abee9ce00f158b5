package ty

import (
	"fmt"
	"strings"
)

// Type is an interned type. Build them with the Ctxt constructors only;
// pointer equality is structural equality.
type Type struct {
	id   uint32
	kind TyKind
	// outerExclusiveBinder is the innermost binder that is not bound within
	// this type: 0 means the type has no escaping bound variables
	outerExclusiveBinder DebruijnIndex
	ctxt                 *Ctxt
}

func (t *Type) Kind() TyKind                         { return t.kind }
func (t *Type) OuterExclusiveBinder() DebruijnIndex { return t.outerExclusiveBinder }
func (t *Type) HasEscapingBoundVars() bool          { return t.outerExclusiveBinder > Innermost }

// TyKind is implemented by each shape a Type can have
type TyKind interface {
	isTyKind()
}

type (
	Bool  struct{}
	Char  struct{}
	Str   struct{}
	Never struct{}

	Int   struct{ Ty IntTy }
	Uint  struct{ Ty UintTy }
	Float struct{ Ty FloatTy }

	// Adt is a struct or enum instantiated with Args
	Adt struct {
		Def  DefID
		Args Args
	}
	Ref struct {
		Region Region
		Ty     *Type
		Mut    Mutability
	}
	RawPtr struct {
		Ty  *Type
		Mut Mutability
	}
	Slice struct{ Elem *Type }
	Array struct {
		Elem *Type
		Len  Const
	}
	Tuple struct{ Elems []*Type }
	// FnPtr is a function pointer, possibly higher-ranked over regions
	FnPtr struct{ Sig Binder[FnSig] }
	// FnDef is the zero-sized type of a specific function item
	FnDef struct {
		Def  DefID
		Args Args
	}
	// Alias is an opaque type or a projection, which stands for some other type
	Alias struct {
		Kind AliasKind
		Ty   AliasTy
	}
	Param struct {
		Index uint32
		Name  string
	}
	// Bound is a type variable bound by an enclosing Binder
	Bound struct {
		Debruijn DebruijnIndex
		Var      BoundTy
	}
	Placeholder struct {
		Universe UniverseIndex
		Bound    BoundTy
	}
	Infer struct {
		Kind InferKind
		Vid  uint32
	}
	Error struct{ Guar ErrorGuaranteed }
)

func (Bool) isTyKind()        {}
func (Char) isTyKind()        {}
func (Str) isTyKind()         {}
func (Never) isTyKind()       {}
func (Int) isTyKind()         {}
func (Uint) isTyKind()        {}
func (Float) isTyKind()       {}
func (Adt) isTyKind()         {}
func (Ref) isTyKind()         {}
func (RawPtr) isTyKind()      {}
func (Slice) isTyKind()       {}
func (Array) isTyKind()       {}
func (Tuple) isTyKind()       {}
func (FnPtr) isTyKind()       {}
func (FnDef) isTyKind()       {}
func (Alias) isTyKind()       {}
func (Param) isTyKind()       {}
func (Bound) isTyKind()       {}
func (Placeholder) isTyKind() {}
func (Infer) isTyKind()       {}
func (Error) isTyKind()       {}

type IntTy uint8

const (
	Isize IntTy = iota
	I8
	I16
	I32
	I64
	I128
)

func (t IntTy) String() string {
	return [...]string{"isize", "i8", "i16", "i32", "i64", "i128"}[t]
}

type UintTy uint8

const (
	Usize UintTy = iota
	U8
	U16
	U32
	U64
	U128
)

func (t UintTy) String() string {
	return [...]string{"usize", "u8", "u16", "u32", "u64", "u128"}[t]
}

type FloatTy uint8

const (
	F32 FloatTy = iota
	F64
)

func (t FloatTy) String() string {
	return [...]string{"f32", "f64"}[t]
}

type Mutability uint8

const (
	Not Mutability = iota
	Mut
)

type AliasKind uint8

const (
	Opaque AliasKind = iota
	Projection
)

// AliasTy is the defining item of an alias together with its arguments
type AliasTy struct {
	Def  DefID
	Args Args
}

type InferKind uint8

const (
	TyVar InferKind = iota
	IntVar
	FloatVar
)

type TyVid uint32
type IntVid uint32
type FloatVid uint32

// ErrorGuaranteed is a token proving an error has already been reported
type ErrorGuaranteed uint32

// BoundTy is a type variable as declared by its binder
type BoundTy struct {
	Var  BoundVar
	Name string
}

func (b BoundTy) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprint(b.Var)
}

// constructors

func (c *Ctxt) NewInt(i IntTy) *Type       { return c.intern(Int{i}) }
func (c *Ctxt) NewUint(u UintTy) *Type     { return c.intern(Uint{u}) }
func (c *Ctxt) NewFloat(f FloatTy) *Type   { return c.intern(Float{f}) }
func (c *Ctxt) NewSlice(elem *Type) *Type  { return c.intern(Slice{elem}) }
func (c *Ctxt) NewTyVar(v TyVid) *Type     { return c.intern(Infer{TyVar, uint32(v)}) }
func (c *Ctxt) NewIntVar(v IntVid) *Type   { return c.intern(Infer{IntVar, uint32(v)}) }
func (c *Ctxt) NewFloatVar(v FloatVid) *Type {
	return c.intern(Infer{FloatVar, uint32(v)})
}
func (c *Ctxt) NewError(guar ErrorGuaranteed) *Type { return c.intern(Error{guar}) }
func (c *Ctxt) NewParam(index uint32, name string) *Type {
	return c.intern(Param{Index: index, Name: name})
}
func (c *Ctxt) NewBound(debruijn DebruijnIndex, bt BoundTy) *Type {
	return c.intern(Bound{Debruijn: debruijn, Var: bt})
}
func (c *Ctxt) NewPlaceholder(universe UniverseIndex, bt BoundTy) *Type {
	return c.intern(Placeholder{Universe: universe, Bound: bt})
}
func (c *Ctxt) NewAdt(def DefID, args Args) *Type {
	return c.intern(Adt{Def: def, Args: args})
}
func (c *Ctxt) NewFnDef(def DefID, args Args) *Type {
	return c.intern(FnDef{Def: def, Args: args})
}
func (c *Ctxt) NewRef(r Region, t *Type, mut Mutability) *Type {
	return c.intern(Ref{Region: r, Ty: t, Mut: mut})
}
func (c *Ctxt) NewRawPtr(t *Type, mut Mutability) *Type {
	return c.intern(RawPtr{Ty: t, Mut: mut})
}
func (c *Ctxt) NewArray(elem *Type, len Const) *Type {
	return c.intern(Array{Elem: elem, Len: len})
}
func (c *Ctxt) NewTuple(elems ...*Type) *Type {
	return c.intern(Tuple{Elems: elems})
}
func (c *Ctxt) NewFnPtr(sig Binder[FnSig]) *Type {
	return c.intern(FnPtr{Sig: sig})
}
func (c *Ctxt) NewAlias(kind AliasKind, alias AliasTy) *Type {
	return c.intern(Alias{Kind: kind, Ty: alias})
}
func (c *Ctxt) NewOpaque(def DefID, args Args) *Type {
	return c.NewAlias(Opaque, AliasTy{Def: def, Args: args})
}

// predicates on kinds

// TyVid returns the type variable t is, if it is one
func (t *Type) TyVid() (TyVid, bool) {
	if k, ok := t.kind.(Infer); ok && k.Kind == TyVar {
		return TyVid(k.Vid), true
	}
	return 0, false
}

func (t *Type) IsTyVar() bool {
	_, ok := t.TyVid()
	return ok
}

func (t *Type) IsError() bool {
	_, ok := t.kind.(Error)
	return ok
}

// Opaque returns the alias t is, if t is an opaque alias
func (t *Type) Opaque() (AliasTy, bool) {
	if k, ok := t.kind.(Alias); ok && k.Kind == Opaque {
		return k.Ty, true
	}
	return AliasTy{}, false
}

func (t *Type) IsAlias() bool {
	_, ok := t.kind.(Alias)
	return ok
}

func (t *Type) String() string {
	sb := &strings.Builder{}
	t.write(sb)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	switch k := t.kind.(type) {
	case Bool:
		sb.WriteString("bool")
	case Char:
		sb.WriteString("char")
	case Str:
		sb.WriteString("str")
	case Never:
		sb.WriteString("!")
	case Int:
		sb.WriteString(k.Ty.String())
	case Uint:
		sb.WriteString(k.Ty.String())
	case Float:
		sb.WriteString(k.Ty.String())
	case Adt:
		sb.WriteString(t.ctxt.ItemName(k.Def))
		k.Args.write(sb)
	case FnDef:
		sb.WriteString("fn ")
		sb.WriteString(t.ctxt.ItemName(k.Def))
		k.Args.write(sb)
	case Alias:
		if k.Kind == Opaque {
			sb.WriteString("impl ")
		}
		sb.WriteString(t.ctxt.ItemName(k.Ty.Def))
		k.Ty.Args.write(sb)
	case Ref:
		sb.WriteString("&")
		if k.Region.Kind() != ReErased {
			sb.WriteString(k.Region.String())
			sb.WriteString(" ")
		}
		if k.Mut == Mut {
			sb.WriteString("mut ")
		}
		k.Ty.write(sb)
	case RawPtr:
		if k.Mut == Mut {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		k.Ty.write(sb)
	case Slice:
		sb.WriteString("[")
		k.Elem.write(sb)
		sb.WriteString("]")
	case Array:
		sb.WriteString("[")
		k.Elem.write(sb)
		sb.WriteString("; ")
		sb.WriteString(k.Len.String())
		sb.WriteString("]")
	case Tuple:
		sb.WriteString("(")
		for i, elem := range k.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			elem.write(sb)
		}
		if len(k.Elems) == 1 {
			sb.WriteString(",")
		}
		sb.WriteString(")")
	case FnPtr:
		k.Sig.writeBoundVars(sb)
		k.Sig.Skip().write(sb)
	case Param:
		sb.WriteString(k.Name)
	case Bound:
		fmt.Fprintf(sb, "^%d_%s", k.Debruijn, k.Var)
	case Placeholder:
		fmt.Fprintf(sb, "!%d_%s", k.Universe, k.Var())
	case Infer:
		switch k.Kind {
		case TyVar:
			fmt.Fprintf(sb, "?%dt", k.Vid)
		case IntVar:
			fmt.Fprintf(sb, "?%di", k.Vid)
		case FloatVar:
			fmt.Fprintf(sb, "?%df", k.Vid)
		}
	case Error:
		sb.WriteString("{error}")
	}
}

// Var is the bound variable this placeholder was instantiated from
func (p Placeholder) Var() BoundTy { return p.Bound }

func outerExclusiveBinderOfKind(kind TyKind) DebruijnIndex {
	switch k := kind.(type) {
	case Adt:
		return k.Args.OuterExclusiveBinder()
	case FnDef:
		return k.Args.OuterExclusiveBinder()
	case Alias:
		return k.Ty.Args.OuterExclusiveBinder()
	case Ref:
		return max(k.Region.OuterExclusiveBinder(), k.Ty.outerExclusiveBinder)
	case RawPtr:
		return k.Ty.outerExclusiveBinder
	case Slice:
		return k.Elem.outerExclusiveBinder
	case Array:
		return max(k.Elem.outerExclusiveBinder, k.Len.OuterExclusiveBinder())
	case Tuple:
		var res DebruijnIndex
		for _, elem := range k.Elems {
			res = max(res, elem.outerExclusiveBinder)
		}
		return res
	case FnPtr:
		return k.Sig.OuterExclusiveBinder()
	case Bound:
		return k.Debruijn.Shifted(1)
	default:
		return Innermost
	}
}
