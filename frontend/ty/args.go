package ty

import (
	"fmt"
	"strings"
)

type ArgKind uint8

const (
	TypeArg ArgKind = iota
	RegionArg
	ConstArg
)

// GenericArg is one argument of a generic item: a type, a region or a const
type GenericArg struct {
	kind   ArgKind
	ty     *Type
	region Region
	ct     Const
}

func TyArg(t *Type) GenericArg      { return GenericArg{kind: TypeArg, ty: t} }
func RegionArgOf(r Region) GenericArg { return GenericArg{kind: RegionArg, region: r} }
func ConstArgOf(c Const) GenericArg  { return GenericArg{kind: ConstArg, ct: c} }

func (a GenericArg) Kind() ArgKind { return a.kind }

func (a GenericArg) Ty() (*Type, bool)     { return a.ty, a.kind == TypeArg }
func (a GenericArg) Region() (Region, bool) { return a.region, a.kind == RegionArg }
func (a GenericArg) Const() (Const, bool)  { return a.ct, a.kind == ConstArg }

func (a GenericArg) OuterExclusiveBinder() DebruijnIndex {
	switch a.kind {
	case TypeArg:
		return a.ty.outerExclusiveBinder
	case RegionArg:
		return a.region.OuterExclusiveBinder()
	default:
		return a.ct.OuterExclusiveBinder()
	}
}

func (a GenericArg) String() string {
	switch a.kind {
	case TypeArg:
		return a.ty.String()
	case RegionArg:
		return a.region.String()
	default:
		return a.ct.String()
	}
}

func (a GenericArg) key() string {
	switch a.kind {
	case TypeArg:
		return fmt.Sprintf("t%d", a.ty.id)
	case RegionArg:
		return "r" + a.region.key()
	default:
		return "c" + a.ct.key()
	}
}

// Args are the arguments of a generic item, in declaration order
type Args []GenericArg

func (args Args) OuterExclusiveBinder() DebruijnIndex {
	var res DebruijnIndex
	for _, arg := range args {
		res = max(res, arg.OuterExclusiveBinder())
	}
	return res
}

func (args Args) writeKey(sb *strings.Builder) {
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(arg.key())
	}
}

func (args Args) write(sb *strings.Builder) {
	if len(args) == 0 {
		return
	}
	sb.WriteString("<")
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(">")
}

func (args Args) String() string {
	sb := &strings.Builder{}
	args.write(sb)
	return sb.String()
}

func (args Args) Equal(other Relatable) bool {
	o, ok := other.(Args)
	if !ok || len(o) != len(args) {
		return false
	}
	for i := range args {
		if args[i] != o[i] {
			return false
		}
	}
	return true
}

func (a AliasTy) OuterExclusiveBinder() DebruijnIndex { return a.Args.OuterExclusiveBinder() }

func (a AliasTy) Equal(other Relatable) bool {
	o, ok := other.(AliasTy)
	return ok && o.Def == a.Def && a.Args.Equal(o.Args)
}

func (a AliasTy) String() string {
	return fmt.Sprintf("%v%s", a.Def, a.Args)
}

// key identifies an alias structurally, for use in maps
func (a AliasTy) Key() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%d/%d/", a.Def.Krate, a.Def.Index)
	a.Args.writeKey(sb)
	return sb.String()
}
