package ty

import (
	"fmt"
	"slices"
	"strings"
)

// DebruijnIndex counts binders outwards from a bound variable: 0 is the innermost binder
type DebruijnIndex uint32

const Innermost DebruijnIndex = 0

func (d DebruijnIndex) Shifted(amount uint32) DebruijnIndex { return d + DebruijnIndex(amount) }

// ShiftedOut panics on underflow, which would mean a bound variable escaped its binder
func (d DebruijnIndex) ShiftedOut(amount uint32) DebruijnIndex {
	if uint32(d) < amount {
		panic("debruijn index underflow")
	}
	return d - DebruijnIndex(amount)
}

// UniverseIndex names a universe. Universes nest: a universe can name
// everything in the universes created before it.
type UniverseIndex uint32

const RootUniverse UniverseIndex = 0

func (u UniverseIndex) NextUniverse() UniverseIndex { return u + 1 }

// CanName is whether something in universe u may refer to a placeholder of other
func (u UniverseIndex) CanName(other UniverseIndex) bool { return u >= other }

type BoundVar uint32

type BoundVarKind uint8

const (
	BoundRegionVar BoundVarKind = iota
	BoundTyVar
	BoundConstVar
)

// BoundVariableKind describes one variable a Binder introduces
type BoundVariableKind struct {
	Kind BoundVarKind
	Name string
}

func (b BoundVariableKind) String() string {
	switch b.Kind {
	case BoundRegionVar:
		if b.Name == "" {
			return "'_"
		}
		return "'" + b.Name
	case BoundConstVar:
		return "const " + b.Name
	default:
		return b.Name
	}
}

// Binder quantifies a value over BoundVars.
// Bound variables inside value refer to this binder with a DebruijnIndex
// equal to the number of binders in between.
type Binder[T Relatable] struct {
	value     T
	boundVars []BoundVariableKind
}

func BindWithVars[T Relatable](value T, vars []BoundVariableKind) Binder[T] {
	return Binder[T]{value: value, boundVars: vars}
}

// Dummy wraps a value that refers to no bound variables
func Dummy[T Relatable](value T) Binder[T] {
	if value.OuterExclusiveBinder() > Innermost {
		panic(fmt.Sprintf("'%v' has escaping bound vars, so it cannot be wrapped in a dummy binder", value))
	}
	return Binder[T]{value: value}
}

// Skip returns the value without instantiating bound variables:
// callers must be careful with the bound variables it contains
func (b Binder[T]) Skip() T                         { return b.value }
func (b Binder[T]) BoundVars() []BoundVariableKind { return b.boundVars }

// NoBoundVars returns the value if it does not refer to the variables of this binder
func (b Binder[T]) NoBoundVars() (T, bool) {
	if b.value.OuterExclusiveBinder() > Innermost {
		var zero T
		return zero, false
	}
	return b.value, true
}

func (b Binder[T]) OuterExclusiveBinder() DebruijnIndex {
	oeb := b.value.OuterExclusiveBinder()
	if oeb == Innermost {
		return Innermost
	}
	return oeb.ShiftedOut(1)
}

func (b Binder[T]) Equal(other Relatable) bool {
	o, ok := other.(Binder[T])
	return ok && b.value.Equal(o.value) && slices.Equal(b.boundVars, o.boundVars)
}

func (b Binder[T]) String() string {
	sb := &strings.Builder{}
	b.writeBoundVars(sb)
	sb.WriteString(b.value.String())
	return sb.String()
}

func (b Binder[T]) writeBoundVars(sb *strings.Builder) {
	if len(b.boundVars) == 0 {
		return
	}
	sb.WriteString("for<")
	for i, v := range b.boundVars {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString("> ")
}

// Rebind keeps the bound variables of b around a new value, which is expected
// to refer to them in the same way
func Rebind[T, U Relatable](b Binder[T], value U) Binder[U] {
	return Binder[U]{value: value, boundVars: b.boundVars}
}

func (b Binder[T]) erase() Binder[Relatable] {
	return Binder[Relatable]{value: b.value, boundVars: b.boundVars}
}

func unerase[T Relatable](b Binder[Relatable]) Binder[T] {
	return Binder[T]{value: b.value.(T), boundVars: b.boundVars}
}
