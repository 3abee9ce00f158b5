package relerr

import (
	"errors"
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	Sorts
	ArgumentSorts
	TupleSize
	ArgCount
	FixedArraySize
	Mutability
	AbiMismatch
	SafetyMismatch
	VariadicMismatch
	IntMismatch
	FloatMismatch
	ConstMismatch
	CyclicTy
	CyclicConst
	RegionsPlaceholderMismatch
	ArgKindMismatch
)

var codeNames = map[ErrCode]string{
	None:                       "None",
	Sorts:                      "Sorts",
	ArgumentSorts:              "ArgumentSorts",
	TupleSize:                  "TupleSize",
	ArgCount:                   "ArgCount",
	FixedArraySize:             "FixedArraySize",
	Mutability:                 "Mutability",
	AbiMismatch:                "AbiMismatch",
	SafetyMismatch:             "SafetyMismatch",
	VariadicMismatch:           "VariadicMismatch",
	IntMismatch:                "IntMismatch",
	FloatMismatch:              "FloatMismatch",
	ConstMismatch:              "ConstMismatch",
	CyclicTy:                   "CyclicTy",
	CyclicConst:                "CyclicConst",
	RegionsPlaceholderMismatch: "RegionsPlaceholderMismatch",
	ArgKindMismatch:            "ArgKindMismatch",
}

func (c ErrCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrCode(%d)", int(c))
}

// ParseErrCode is the inverse of ErrCode.String
func ParseErrCode(name string) (ErrCode, bool) {
	for code, codeName := range codeNames {
		if codeName == name {
			return code, true
		}
	}
	return None, false
}

// Positioner is implemented by anything that knows where in the source it comes from
type Positioner interface {
	Pos() token.Pos
	End() token.Pos
}

// RelateError is a hard failure of a relation: the two sides cannot be related
// no matter how the pending obligations are later solved.
type RelateError interface {
	Error() string
	Code() ErrCode
	Positioner

	withStack([]byte) RelateError
	getStack() []byte
}

func FormatWithCode(e RelateError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E RelateError](err E) RelateError {
	return err.withStack(debug.Stack())
}

// CodeOf returns the code of the RelateError wrapped in err, or None
func CodeOf(err error) ErrCode {
	var relErr RelateError
	if errors.As(err, &relErr) {
		return relErr.Code()
	}
	return None
}

// ExpectedFound names the two sides of a mismatch from the point of view of the caller
type ExpectedFound struct {
	Expected fmt.Stringer
	Found    fmt.Stringer
}

type NewSorts struct {
	Positioner
	ExpectedFound
	stack []byte
}

func (e NewSorts) Error() string {
	return fmt.Sprintf("mismatched types: expected '%v', found '%v'", e.Expected, e.Found)
}
func (e NewSorts) Code() ErrCode    { return Sorts }
func (e NewSorts) getStack() []byte { return e.stack }
func (e NewSorts) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

// NewArgumentSorts is a NewSorts found at a function argument
type NewArgumentSorts struct {
	Positioner
	ExpectedFound
	Index int
	stack []byte
}

func (e NewArgumentSorts) Error() string {
	return fmt.Sprintf("mismatched types in argument %d: expected '%v', found '%v'", e.Index, e.Expected, e.Found)
}
func (e NewArgumentSorts) Code() ErrCode    { return ArgumentSorts }
func (e NewArgumentSorts) getStack() []byte { return e.stack }
func (e NewArgumentSorts) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewTupleSize struct {
	Positioner
	Expected, Found int
	stack           []byte
}

func (e NewTupleSize) Error() string {
	return fmt.Sprintf("expected a tuple with %d elements, found one with %d elements", e.Expected, e.Found)
}
func (e NewTupleSize) Code() ErrCode    { return TupleSize }
func (e NewTupleSize) getStack() []byte { return e.stack }
func (e NewTupleSize) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewArgCount struct {
	Positioner
	Expected, Found int
	stack           []byte
}

func (e NewArgCount) Error() string {
	return fmt.Sprintf("incorrect number of function parameters: expected %d, found %d", e.Expected, e.Found)
}
func (e NewArgCount) Code() ErrCode    { return ArgCount }
func (e NewArgCount) getStack() []byte { return e.stack }
func (e NewArgCount) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewFixedArraySize struct {
	Positioner
	Expected, Found uint64
	stack           []byte
}

func (e NewFixedArraySize) Error() string {
	return fmt.Sprintf("expected an array with a size of %d, found one with a size of %d", e.Expected, e.Found)
}
func (e NewFixedArraySize) Code() ErrCode    { return FixedArraySize }
func (e NewFixedArraySize) getStack() []byte { return e.stack }
func (e NewFixedArraySize) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewMutability struct {
	Positioner
	stack []byte
}

func (e NewMutability) Error() string    { return "types differ in mutability" }
func (e NewMutability) Code() ErrCode    { return Mutability }
func (e NewMutability) getStack() []byte { return e.stack }
func (e NewMutability) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewAbiMismatch struct {
	Positioner
	Expected, Found string
	stack           []byte
}

func (e NewAbiMismatch) Error() string {
	return fmt.Sprintf("expected %s fn, found %s fn", e.Expected, e.Found)
}
func (e NewAbiMismatch) Code() ErrCode    { return AbiMismatch }
func (e NewAbiMismatch) getStack() []byte { return e.stack }
func (e NewAbiMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewSafetyMismatch struct {
	Positioner
	Expected, Found string
	stack           []byte
}

func (e NewSafetyMismatch) Error() string {
	return fmt.Sprintf("expected %s fn, found %s fn", e.Expected, e.Found)
}
func (e NewSafetyMismatch) Code() ErrCode    { return SafetyMismatch }
func (e NewSafetyMismatch) getStack() []byte { return e.stack }
func (e NewSafetyMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewVariadicMismatch struct {
	Positioner
	Expected, Found bool
	stack           []byte
}

func (e NewVariadicMismatch) Error() string {
	variadic := func(b bool) string {
		if b {
			return "variadic"
		}
		return "non-variadic"
	}
	return fmt.Sprintf("expected %s fn, found %s function", variadic(e.Expected), variadic(e.Found))
}
func (e NewVariadicMismatch) Code() ErrCode    { return VariadicMismatch }
func (e NewVariadicMismatch) getStack() []byte { return e.stack }
func (e NewVariadicMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewIntMismatch struct {
	Positioner
	Expected, Found string
	stack           []byte
}

func (e NewIntMismatch) Error() string {
	return fmt.Sprintf("expected '%s', found '%s'", e.Expected, e.Found)
}
func (e NewIntMismatch) Code() ErrCode    { return IntMismatch }
func (e NewIntMismatch) getStack() []byte { return e.stack }
func (e NewIntMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewFloatMismatch struct {
	Positioner
	Expected, Found string
	stack           []byte
}

func (e NewFloatMismatch) Error() string {
	return fmt.Sprintf("expected '%s', found '%s'", e.Expected, e.Found)
}
func (e NewFloatMismatch) Code() ErrCode    { return FloatMismatch }
func (e NewFloatMismatch) getStack() []byte { return e.stack }
func (e NewFloatMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewConstMismatch struct {
	Positioner
	ExpectedFound
	stack []byte
}

func (e NewConstMismatch) Error() string {
	return fmt.Sprintf("expected '%v', found '%v'", e.Expected, e.Found)
}
func (e NewConstMismatch) Code() ErrCode    { return ConstMismatch }
func (e NewConstMismatch) getStack() []byte { return e.stack }
func (e NewConstMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewCyclicTy struct {
	Positioner
	Ty    fmt.Stringer
	stack []byte
}

func (e NewCyclicTy) Error() string {
	return fmt.Sprintf("cyclic type of infinite size: '%v'", e.Ty)
}
func (e NewCyclicTy) Code() ErrCode    { return CyclicTy }
func (e NewCyclicTy) getStack() []byte { return e.stack }
func (e NewCyclicTy) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewCyclicConst struct {
	Positioner
	Const fmt.Stringer
	stack []byte
}

func (e NewCyclicConst) Error() string {
	return fmt.Sprintf("encountered a self-referencing constant: '%v'", e.Const)
}
func (e NewCyclicConst) Code() ErrCode    { return CyclicConst }
func (e NewCyclicConst) getStack() []byte { return e.stack }
func (e NewCyclicConst) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

// NewRegionsPlaceholderMismatch is reported by the leak check when a
// higher-ranked relation would force a placeholder to outlive another region,
// or a region that cannot name the placeholder to outlive it
type NewRegionsPlaceholderMismatch struct {
	Positioner
	Placeholder fmt.Stringer
	Other       fmt.Stringer
	// OtherOutlives is set when Other would have to outlive Placeholder
	OtherOutlives bool
	stack         []byte
}

func (e NewRegionsPlaceholderMismatch) Error() string {
	longer, shorter := e.Placeholder, e.Other
	if e.OtherOutlives {
		longer, shorter = e.Other, e.Placeholder
	}
	return fmt.Sprintf("one type is more general than the other: '%v' would have to outlive '%v'", longer, shorter)
}
func (e NewRegionsPlaceholderMismatch) Code() ErrCode    { return RegionsPlaceholderMismatch }
func (e NewRegionsPlaceholderMismatch) getStack() []byte { return e.stack }
func (e NewRegionsPlaceholderMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}

type NewArgKindMismatch struct {
	Positioner
	ExpectedFound
	stack []byte
}

func (e NewArgKindMismatch) Error() string {
	return fmt.Sprintf("generic argument kinds differ: expected '%v', found '%v'", e.Expected, e.Found)
}
func (e NewArgKindMismatch) Code() ErrCode    { return ArgKindMismatch }
func (e NewArgKindMismatch) getStack() []byte { return e.stack }
func (e NewArgKindMismatch) withStack(stack []byte) RelateError {
	e.stack = stack
	return e
}
