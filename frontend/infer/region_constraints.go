package infer

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyrel/frontend/relerr"
	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/util"
	"github.com/hashicorp/go-set/v2"
)

type SubregionOriginKind uint8

const (
	// OriginSubtype is a constraint arising from relating two types
	OriginSubtype SubregionOriginKind = iota
	OriginMisc
)

// SubregionOrigin explains why a region constraint exists
type SubregionOrigin struct {
	Kind  SubregionOriginKind
	Span  ty.Span
	Trace *TypeTrace
}

func SubtypeOrigin(trace TypeTrace) SubregionOrigin {
	return SubregionOrigin{Kind: OriginSubtype, Span: trace.Cause.Span, Trace: &trace}
}

type ConstraintKind uint8

const (
	// SubRegion requires Sup to outlive Sub
	SubRegion ConstraintKind = iota
	// EqRegion requires Sub and Sup to be the same region
	EqRegion
)

func (k ConstraintKind) String() string {
	if k == EqRegion {
		return "EqRegion"
	}
	return "SubRegion"
}

// Constraint is a region constraint for the region solver to check later
type Constraint struct {
	Kind     ConstraintKind
	Sub, Sup ty.Region
	Origin   SubregionOrigin
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Kind, c.Sub, c.Sup)
}

// RegionVariableOrigin records where a region variable was created
type RegionVariableOrigin struct {
	Span ty.Span
}

type RegionVariableInfo struct {
	Universe ty.UniverseIndex
	Origin   RegionVariableOrigin
}

type regionConstraintStorage struct {
	vars        *immutable.List[RegionVariableInfo]
	constraints *immutable.List[Constraint]
}

func newRegionConstraintStorage() regionConstraintStorage {
	return regionConstraintStorage{
		vars:        immutable.NewList[RegionVariableInfo](),
		constraints: immutable.NewList[Constraint](),
	}
}

func (infcx *InferCtxt) NextRegionVar(origin RegionVariableOrigin) ty.Region {
	return infcx.NextRegionVarInUniverse(origin, infcx.universe)
}

func (infcx *InferCtxt) NextRegionVarInUniverse(origin RegionVariableOrigin, universe ty.UniverseIndex) ty.Region {
	storage := &infcx.tables.regions
	vid := ty.RegionVid(storage.vars.Len())
	storage.vars = storage.vars.Append(RegionVariableInfo{Universe: universe, Origin: origin})
	return ty.NewReVar(vid)
}

func (infcx *InferCtxt) NumRegionVars() int { return infcx.tables.regions.vars.Len() }

// UniverseOfRegion is the universe a region lives in: the one of its variable
// or placeholder, and the root universe for everything else
func (infcx *InferCtxt) UniverseOfRegion(r ty.Region) ty.UniverseIndex {
	switch r.Kind() {
	case ty.ReVar:
		return infcx.tables.regions.vars.Get(int(r.Vid())).Universe
	case ty.RePlaceholder:
		return r.Placeholder().Universe
	default:
		return ty.RootUniverse
	}
}

// MakeSubregion records that sup must outlive sub
func (infcx *InferCtxt) MakeSubregion(origin SubregionOrigin, sub, sup ty.Region) {
	if sub.Kind() == ty.ReBound || sup.Kind() == ty.ReBound {
		panic(fmt.Sprintf("cannot relate bound regions: %s <= %s", sub, sup))
	}
	// everything is outlived by 'static
	if sub == sup || sup == ty.ReStaticRegion {
		return
	}
	infcx.addConstraint(Constraint{Kind: SubRegion, Sub: sub, Sup: sup, Origin: origin})
}

// MakeEqregion records that a and b must be the same region
func (infcx *InferCtxt) MakeEqregion(origin SubregionOrigin, a, b ty.Region) {
	if a.Kind() == ty.ReBound || b.Kind() == ty.ReBound {
		panic(fmt.Sprintf("cannot relate bound regions: %s == %s", a, b))
	}
	if a == b {
		return
	}
	infcx.addConstraint(Constraint{Kind: EqRegion, Sub: a, Sup: b, Origin: origin})
}

func (infcx *InferCtxt) addConstraint(c Constraint) {
	infcx.logger.Debug("add region constraint", "constraint", c)
	storage := &infcx.tables.regions
	storage.constraints = storage.constraints.Append(c)
}

func (infcx *InferCtxt) numRegionConstraints() int { return infcx.tables.regions.constraints.Len() }

// RegionConstraints returns the constraints recorded so far, oldest first
func (infcx *InferCtxt) RegionConstraints() []Constraint {
	return infcx.regionConstraintsSince(0)
}

func (infcx *InferCtxt) regionConstraintsSince(start int) []Constraint {
	constraints := infcx.tables.regions.constraints
	res := make([]Constraint, 0, constraints.Len()-start)
	for i := start; i < constraints.Len(); i++ {
		res = append(res, constraints.Get(i))
	}
	return res
}

// leakCheck fails when a constraint recorded since the start-th one relates a
// placeholder of a universe created after outer to a region that cannot name
// it, or requires the placeholder to outlive another placeholder, 'static or
// a region parameter: the higher-ranked region it stands for would then not
// be arbitrary.
func (infcx *InferCtxt) leakCheck(span ty.Span, outer ty.UniverseIndex, start int) error {
	if infcx.opts.SkipLeakCheck {
		return nil
	}
	// outlives[r] are the regions r must outlive, outlivedBy[r] those that must outlive r
	outlives := map[ty.Region][]ty.Region{}
	outlivedBy := map[ty.Region][]ty.Region{}
	var placeholders []ty.Region
	seen := set.New[ty.Region](0)
	for _, c := range infcx.regionConstraintsSince(start) {
		outlives[c.Sup] = append(outlives[c.Sup], c.Sub)
		outlivedBy[c.Sub] = append(outlivedBy[c.Sub], c.Sup)
		if c.Kind == EqRegion {
			outlives[c.Sub] = append(outlives[c.Sub], c.Sup)
			outlivedBy[c.Sup] = append(outlivedBy[c.Sup], c.Sub)
		}
		for _, r := range []ty.Region{c.Sub, c.Sup} {
			if r.Kind() == ty.RePlaceholder && r.Placeholder().Universe > outer && seen.Insert(r) {
				placeholders = append(placeholders, r)
			}
		}
	}

	for _, placeholder := range placeholders {
		universe := placeholder.Placeholder().Universe
		cannotName := func(r ty.Region) bool {
			return !infcx.UniverseOfRegion(r).CanName(universe)
		}
		outlived, leaked := leakingRegion(placeholder, outlives, func(r ty.Region) bool {
			switch r.Kind() {
			case ty.RePlaceholder, ty.ReStatic, ty.ReEarlyParam:
				return true
			}
			return cannotName(r)
		})
		if leaked {
			infcx.logger.Debug("leak check failed", "placeholder", placeholder, "outlives", outlived)
			return relerr.New(relerr.NewRegionsPlaceholderMismatch{
				Positioner:  span,
				Placeholder: placeholder,
				Other:       outlived,
			})
		}
		if outliving, leaked := leakingRegion(placeholder, outlivedBy, cannotName); leaked {
			infcx.logger.Debug("leak check failed", "placeholder", placeholder, "outlived by", outliving)
			return relerr.New(relerr.NewRegionsPlaceholderMismatch{
				Positioner:    span,
				Placeholder:   placeholder,
				Other:         outliving,
				OtherOutlives: true,
			})
		}
	}
	return nil
}

// leakingRegion walks edges from placeholder and returns the first region
// other than placeholder for which leaks holds
func leakingRegion(placeholder ty.Region, edges map[ty.Region][]ty.Region, leaks func(ty.Region) bool) (ty.Region, bool) {
	visited := set.New[ty.Region](len(edges))
	visited.Insert(placeholder)
	pending := &util.Stack[ty.Region]{}
	pending.PushAll(edges[placeholder])
	for r, ok := pending.Pop(); ok; r, ok = pending.Pop() {
		if !visited.Insert(r) {
			continue
		}
		if leaks(r) {
			return r, true
		}
		pending.PushAll(edges[r])
	}
	return ty.Region{}, false
}
