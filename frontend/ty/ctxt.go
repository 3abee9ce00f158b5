package ty

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/cottand/tyrel/internal/log"
)

var logger = log.DefaultLogger.With("section", "relate")

// CrateNum identifies a compilation unit
type CrateNum uint32

// LocalCrate is the compilation unit currently being checked
const LocalCrate CrateNum = 0

// DefID identifies an item (an ADT, a function, an opaque type...)
type DefID struct {
	Krate CrateNum
	Index uint32
}

func (d DefID) IsLocal() bool { return d.Krate == LocalCrate }

type DefKind uint8

const (
	DefAdt DefKind = iota
	DefFn
	DefOpaque
	DefProjection
	DefConst
	DefTrait
)

func (k DefKind) String() string {
	switch k {
	case DefAdt:
		return "adt"
	case DefFn:
		return "fn"
	case DefOpaque:
		return "opaque"
	case DefProjection:
		return "projection"
	case DefConst:
		return "const"
	case DefTrait:
		return "trait"
	}
	return "unknown"
}

// ParseDefKind is the inverse of DefKind.String
func ParseDefKind(s string) (DefKind, bool) {
	for k := DefAdt; k <= DefTrait; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

type itemInfo struct {
	name      string
	kind      DefKind
	variances []Variance
}

// Span is a source range, used as the provenance of obligations and errors
type Span struct {
	Start, Stop token.Pos
}

var DummySpan = Span{}

func (s Span) Pos() token.Pos { return s.Start }
func (s Span) End() token.Pos { return s.Stop }

// Ctxt interns types and keeps track of the items types refer to.
// Two *Type built by the same Ctxt are structurally equal iff they are the same pointer.
//
// It is mutable and not suitable for concurrent use
type Ctxt struct {
	types  map[string]*Type
	nextID uint32
	items  map[DefID]itemInfo
	// nextIndex is the next free item index per crate
	nextIndex map[CrateNum]uint32

	Types CommonTypes
}

// CommonTypes holds the types without any components, interned once
type CommonTypes struct {
	Bool, Char, Str, Never, Unit *Type

	I8, I16, I32, I64, I128, Isize *Type
	U8, U16, U32, U64, U128, Usize *Type
	F32, F64                       *Type
}

func NewCtxt() *Ctxt {
	c := &Ctxt{
		types:     make(map[string]*Type),
		items:     make(map[DefID]itemInfo),
		nextIndex: make(map[CrateNum]uint32),
	}
	c.Types = CommonTypes{
		Bool:  c.intern(Bool{}),
		Char:  c.intern(Char{}),
		Str:   c.intern(Str{}),
		Never: c.intern(Never{}),
		Unit:  c.intern(Tuple{}),
		I8:    c.intern(Int{I8}),
		I16:   c.intern(Int{I16}),
		I32:   c.intern(Int{I32}),
		I64:   c.intern(Int{I64}),
		I128:  c.intern(Int{I128}),
		Isize: c.intern(Int{Isize}),
		U8:    c.intern(Uint{U8}),
		U16:   c.intern(Uint{U16}),
		U32:   c.intern(Uint{U32}),
		U64:   c.intern(Uint{U64}),
		U128:  c.intern(Uint{U128}),
		Usize: c.intern(Uint{Usize}),
		F32:   c.intern(Float{F32}),
		F64:   c.intern(Float{F64}),
	}
	return c
}

// DefineItem registers a new item in crate krate.
// variances is only meaningful for items that take generic arguments
// which are related with variance (ADTs and fns); other items relate their
// arguments invariantly.
func (c *Ctxt) DefineItem(krate CrateNum, name string, kind DefKind, variances ...Variance) DefID {
	id := DefID{Krate: krate, Index: c.nextIndex[krate]}
	c.nextIndex[krate]++
	c.items[id] = itemInfo{name: name, kind: kind, variances: variances}
	return id
}

func (c *Ctxt) DefKind(id DefID) DefKind {
	return c.mustItem(id).kind
}

func (c *Ctxt) ItemName(id DefID) string {
	return c.mustItem(id).name
}

// VariancesOf returns the declared variance of each generic parameter of an item
func (c *Ctxt) VariancesOf(id DefID) []Variance {
	return c.mustItem(id).variances
}

func (c *Ctxt) mustItem(id DefID) itemInfo {
	info, ok := c.items[id]
	if !ok {
		panic(fmt.Sprintf("unknown item %v", id))
	}
	return info
}

// intern returns the unique *Type for kind
func (c *Ctxt) intern(kind TyKind) *Type {
	key := kindKey(kind)
	if t, ok := c.types[key]; ok {
		return t
	}
	t := &Type{
		id:                   c.nextID,
		kind:                 kind,
		outerExclusiveBinder: outerExclusiveBinderOfKind(kind),
		ctxt:                 c,
	}
	c.nextID++
	c.types[key] = t
	return t
}

// kindKey is the interning key of a kind: kinds with equal keys are structurally equal.
// Component types are referred to by id, which is sound because they are interned already.
func kindKey(kind TyKind) string {
	sb := &strings.Builder{}
	switch k := kind.(type) {
	case Bool:
		sb.WriteString("bool")
	case Char:
		sb.WriteString("char")
	case Str:
		sb.WriteString("str")
	case Never:
		sb.WriteString("!")
	case Int:
		fmt.Fprintf(sb, "int/%d", k.Ty)
	case Uint:
		fmt.Fprintf(sb, "uint/%d", k.Ty)
	case Float:
		fmt.Fprintf(sb, "float/%d", k.Ty)
	case Adt:
		fmt.Fprintf(sb, "adt/%v/", k.Def)
		k.Args.writeKey(sb)
	case Ref:
		fmt.Fprintf(sb, "ref/%s/%d/%d", k.Region.key(), k.Ty.id, k.Mut)
	case RawPtr:
		fmt.Fprintf(sb, "ptr/%d/%d", k.Ty.id, k.Mut)
	case Slice:
		fmt.Fprintf(sb, "slice/%d", k.Elem.id)
	case Array:
		fmt.Fprintf(sb, "array/%d/%s", k.Elem.id, k.Len.key())
	case Tuple:
		sb.WriteString("tuple")
		for _, elem := range k.Elems {
			fmt.Fprintf(sb, "/%d", elem.id)
		}
	case FnPtr:
		sb.WriteString("fnptr")
		for _, bv := range k.Sig.BoundVars() {
			fmt.Fprintf(sb, "/%d:%s", bv.Kind, bv.Name)
		}
		sig := k.Sig.Skip()
		fmt.Fprintf(sb, "/%v/%v/%v", sig.CVariadic, sig.Safety, sig.Abi)
		for _, t := range sig.InputsAndOutput {
			fmt.Fprintf(sb, "/%d", t.id)
		}
	case FnDef:
		fmt.Fprintf(sb, "fndef/%v/", k.Def)
		k.Args.writeKey(sb)
	case Alias:
		fmt.Fprintf(sb, "alias/%d/%v/", k.Kind, k.Ty.Def)
		k.Ty.Args.writeKey(sb)
	case Param:
		fmt.Fprintf(sb, "param/%d/%s", k.Index, k.Name)
	case Bound:
		fmt.Fprintf(sb, "bound/%d/%d/%s", k.Debruijn, k.Var.Var, k.Var.Name)
	case Placeholder:
		fmt.Fprintf(sb, "placeholder/%d/%d/%s", k.Universe, k.Bound.Var, k.Bound.Name)
	case Infer:
		fmt.Fprintf(sb, "infer/%d/%d", k.Kind, k.Vid)
	case Error:
		fmt.Fprintf(sb, "error/%d", k.Guar)
	default:
		panic(fmt.Sprintf("unhandled type kind %T", kind))
	}
	return sb.String()
}
