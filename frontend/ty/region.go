package ty

import "fmt"

type RegionKind uint8

const (
	// ReEarlyParam is a named region parameter of the enclosing item
	ReEarlyParam RegionKind = iota
	// ReBound is a region bound by an enclosing Binder
	ReBound
	ReStatic
	// ReVar is a region inference variable
	ReVar
	// RePlaceholder stands for a universally quantified region inside a universe
	RePlaceholder
	ReErased
	ReError
)

type RegionVid uint32

// BoundRegion is a region variable as declared by its binder
type BoundRegion struct {
	Var  BoundVar
	Name string
}

func (b BoundRegion) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprint(b.Var)
}

// PlaceholderRegion is a bound region after its binder was entered in Universe
type PlaceholderRegion struct {
	Universe UniverseIndex
	Bound    BoundRegion
}

// Region is a lifetime. It is a plain value: two regions are the same iff they are ==
type Region struct {
	kind RegionKind
	// index is the parameter index or the inference variable id
	index    uint32
	name     string
	debruijn DebruijnIndex
	universe UniverseIndex
	bound    BoundRegion
	guar     ErrorGuaranteed
}

var (
	ReStaticRegion = Region{kind: ReStatic}
	ReErasedRegion = Region{kind: ReErased}
)

func NewReEarlyParam(index uint32, name string) Region {
	return Region{kind: ReEarlyParam, index: index, name: name}
}

func NewReBound(debruijn DebruijnIndex, br BoundRegion) Region {
	return Region{kind: ReBound, debruijn: debruijn, bound: br}
}

func NewReVar(vid RegionVid) Region {
	return Region{kind: ReVar, index: uint32(vid)}
}

func NewRePlaceholder(p PlaceholderRegion) Region {
	return Region{kind: RePlaceholder, universe: p.Universe, bound: p.Bound}
}

func NewReError(guar ErrorGuaranteed) Region {
	return Region{kind: ReError, guar: guar}
}

func (r Region) Kind() RegionKind { return r.kind }

// Vid is only meaningful for ReVar
func (r Region) Vid() RegionVid { return RegionVid(r.index) }

// Placeholder is only meaningful for RePlaceholder
func (r Region) Placeholder() PlaceholderRegion {
	return PlaceholderRegion{Universe: r.universe, Bound: r.bound}
}

// Bound is only meaningful for ReBound
func (r Region) Bound() (DebruijnIndex, BoundRegion) { return r.debruijn, r.bound }

func (r Region) ParamIndex() uint32 { return r.index }

func (r Region) OuterExclusiveBinder() DebruijnIndex {
	if r.kind == ReBound {
		return r.debruijn.Shifted(1)
	}
	return Innermost
}

func (r Region) String() string {
	switch r.kind {
	case ReEarlyParam:
		return "'" + r.name
	case ReBound:
		return fmt.Sprintf("'^%d_%s", r.debruijn, r.bound)
	case ReStatic:
		return "'static"
	case ReVar:
		return fmt.Sprintf("'?%d", r.index)
	case RePlaceholder:
		return fmt.Sprintf("'!%d_%s", r.universe, r.bound)
	case ReErased:
		return "'{erased}"
	case ReError:
		return "'{error}"
	}
	return "'{unknown}"
}

func (r Region) key() string {
	return fmt.Sprintf("%d:%d:%s:%d:%d:%d:%s:%d", r.kind, r.index, r.name, r.debruijn, r.universe, r.bound.Var, r.bound.Name, r.guar)
}
