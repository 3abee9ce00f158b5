package ty

import "fmt"

type ConstKind uint8

const (
	ConstParam ConstKind = iota
	ConstInfer
	ConstBound
	ConstPlaceholder
	ConstValue
	ConstError
)

type ConstVid uint32

// Const is a constant appearing in a type, such as the length of an array.
// It is a plain value: two consts are the same iff they are ==
type Const struct {
	kind ConstKind
	// ty is the type of the value, only set for ConstValue
	ty *Type
	// index is the parameter index, inference variable id or bound variable
	index    uint32
	name     string
	debruijn DebruijnIndex
	universe UniverseIndex
	value    uint64
	guar     ErrorGuaranteed
}

func NewConstParam(index uint32, name string) Const {
	return Const{kind: ConstParam, index: index, name: name}
}

func NewConstVar(vid ConstVid) Const {
	return Const{kind: ConstInfer, index: uint32(vid)}
}

func NewConstBound(debruijn DebruijnIndex, v BoundVar) Const {
	return Const{kind: ConstBound, debruijn: debruijn, index: uint32(v)}
}

func NewConstPlaceholder(universe UniverseIndex, v BoundVar) Const {
	return Const{kind: ConstPlaceholder, universe: universe, index: uint32(v)}
}

func NewConstValue(t *Type, value uint64) Const {
	return Const{kind: ConstValue, ty: t, value: value}
}

func NewConstError(guar ErrorGuaranteed) Const {
	return Const{kind: ConstError, guar: guar}
}

func (c Const) Kind() ConstKind { return c.kind }

// Vid is only meaningful for ConstInfer
func (c Const) Vid() ConstVid { return ConstVid(c.index) }

// Value returns the type and value of a known constant
func (c Const) Value() (*Type, uint64, bool) {
	if c.kind != ConstValue {
		return nil, 0, false
	}
	return c.ty, c.value, true
}

// Bound is only meaningful for ConstBound
func (c Const) Bound() (DebruijnIndex, BoundVar) { return c.debruijn, BoundVar(c.index) }

// Placeholder is only meaningful for ConstPlaceholder
func (c Const) Placeholder() (UniverseIndex, BoundVar) { return c.universe, BoundVar(c.index) }

func (c Const) ParamIndex() uint32 { return c.index }

func (c Const) IsInfer() bool { return c.kind == ConstInfer }

func (c Const) OuterExclusiveBinder() DebruijnIndex {
	switch c.kind {
	case ConstBound:
		return c.debruijn.Shifted(1)
	case ConstValue:
		return c.ty.outerExclusiveBinder
	}
	return Innermost
}

func (c Const) String() string {
	switch c.kind {
	case ConstParam:
		return c.name
	case ConstInfer:
		return fmt.Sprintf("?%dc", c.index)
	case ConstBound:
		return fmt.Sprintf("^%d_%d", c.debruijn, c.index)
	case ConstPlaceholder:
		return fmt.Sprintf("!%d_%d", c.universe, c.index)
	case ConstValue:
		return fmt.Sprintf("%d_%s", c.value, c.ty)
	case ConstError:
		return "{const error}"
	}
	return "{unknown const}"
}

func (c Const) key() string {
	var tyID uint32
	if c.ty != nil {
		tyID = c.ty.id + 1
	}
	return fmt.Sprintf("%d:%d:%d:%s:%d:%d:%d:%d", c.kind, tyID, c.index, c.name, c.debruijn, c.universe, c.value, c.guar)
}
