package relerr

import (
	"fmt"
	"go/token"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos token.Pos

func (p pos) Pos() token.Pos { return token.Pos(p) }
func (p pos) End() token.Pos { return token.Pos(p) }

type name string

func (n name) String() string { return string(n) }

func TestErrCodeNames(t *testing.T) {
	for code := None; code <= ArgKindMismatch; code++ {
		parsed, ok := ParseErrCode(code.String())
		require.True(t, ok, code.String())
		assert.Equal(t, code, parsed)
	}
	_, ok := ParseErrCode("Nope")
	assert.False(t, ok)
	assert.Equal(t, "ErrCode(99)", ErrCode(99).String())
}

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		err      RelateError
		code     ErrCode
		expected string
	}{
		{NewSorts{ExpectedFound: ExpectedFound{name("u8"), name("bool")}}, Sorts, "mismatched types: expected 'u8', found 'bool'"},
		{NewArgumentSorts{ExpectedFound: ExpectedFound{name("u8"), name("bool")}, Index: 1}, ArgumentSorts, "argument 1"},
		{NewTupleSize{Expected: 2, Found: 3}, TupleSize, "2 elements, found one with 3 elements"},
		{NewArgCount{Expected: 1, Found: 0}, ArgCount, "expected 1, found 0"},
		{NewFixedArraySize{Expected: 3, Found: 4}, FixedArraySize, "size of 3, found one with a size of 4"},
		{NewMutability{}, Mutability, "mutability"},
		{NewVariadicMismatch{Expected: true}, VariadicMismatch, "expected variadic fn, found non-variadic function"},
		{NewRegionsPlaceholderMismatch{Placeholder: name("!1_x"), Other: name("static")}, RegionsPlaceholderMismatch, "'!1_x' would have to outlive 'static'"},
		{NewRegionsPlaceholderMismatch{Placeholder: name("!1_x"), Other: name("?0"), OtherOutlives: true}, RegionsPlaceholderMismatch, "'?0' would have to outlive '!1_x'"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.code.String(), func(t *testing.T) {
			err := New(testCase.err)
			assert.Equal(t, testCase.code, err.Code())
			assert.Contains(t, err.Error(), testCase.expected)
			assert.Equal(t, fmt.Sprintf("(E%03d) %s", testCase.code, err.Error()), FormatWithCode(err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := New(NewMutability{Positioner: pos(3)})
	assert.Equal(t, Mutability, CodeOf(err))
	assert.Equal(t, Mutability, CodeOf(errors.Wrap(err, "relating fn pointers")))
	assert.Equal(t, token.Pos(3), err.Pos())

	assert.Equal(t, None, CodeOf(nil))
	assert.Equal(t, None, CodeOf(errors.New("something else")))
}

func TestErrors(t *testing.T) {
	var errs *Errors
	assert.False(t, errs.HasError())
	assert.Nil(t, errs.Errors())
	assert.Nil(t, errs.Merge(nil))

	sorts, mutability := New(NewSorts{}), New(NewMutability{})
	errs = errs.With(sorts)
	require.True(t, errs.HasError())

	other := (&Errors{}).With(mutability)
	merged := errs.Merge(other)
	assert.Same(t, errs, merged)
	assert.Equal(t, []RelateError{sorts, mutability}, merged.Errors())
	assert.Same(t, errs, errs.Merge(&Errors{}))

	logged := errs.LogValue()
	require.Equal(t, slog.KindGroup, logged.Kind())
	assert.Len(t, logged.Group(), 2)
	assert.Equal(t, "e1", logged.Group()[1].Key)
}
