// Package tysyntax parses types written in a compact, Rust-like syntax:
//
//	bool char str ! i32 u8 f64 ...
//	&'a T   &'a mut T   &T   *const T   *mut T
//	[T]   [T; 4]   (T, U)   ()
//	for<'a> unsafe extern "C" fn(&'a u8, ...) -> T
//	Vec<'a, T, 3>   (a declared item, or a declared parameter)
//	?x   {integer}   {float}   {error}
//	'static   '_   '?x   'a
//
// Names are resolved in a Scope, which also creates the inference variables
// that ?x, '?x and {integer} stand for.
package tysyntax

import (
	"fmt"
	"sort"

	"github.com/cottand/tyrel/frontend/ty"
	"github.com/samber/lo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// VarSource creates inference variables for a Scope
type VarSource interface {
	NewTyVar(name string) *ty.Type
	NewIntVar() *ty.Type
	NewFloatVar() *ty.Type
	NewRegionVar(name string) ty.Region
	NewConstVar(name string) ty.Const
}

type paramKind uint8

const (
	tyParam paramKind = iota
	regionParam
	constParam
)

type param struct {
	kind  paramKind
	index uint32
}

// Scope holds the names types can refer to. Named inference variables are
// created the first time they are mentioned and shared by later parses.
type Scope struct {
	Ctxt *ty.Ctxt

	items  map[string]ty.DefID
	params map[string]param
	// nextParam is the index of the next declared parameter, whatever its kind
	nextParam uint32

	vars       VarSource
	tyVars     map[string]*ty.Type
	regionVars map[string]ty.Region
	constVars  map[string]ty.Const

	lastGuar ty.ErrorGuaranteed
}

func NewScope(c *ty.Ctxt) *Scope {
	return &Scope{
		Ctxt:       c,
		items:      map[string]ty.DefID{},
		params:     map[string]param{},
		tyVars:     map[string]*ty.Type{},
		regionVars: map[string]ty.Region{},
		constVars:  map[string]ty.Const{},
	}
}

// WithVars returns a copy of s that creates inference variables with vars.
// The copy shares the items and parameters of s, but none of its variables.
func (s *Scope) WithVars(vars VarSource) *Scope {
	return &Scope{
		Ctxt:       s.Ctxt,
		items:      s.items,
		params:     s.params,
		nextParam:  s.nextParam,
		vars:       vars,
		tyVars:     map[string]*ty.Type{},
		regionVars: map[string]ty.Region{},
		constVars:  map[string]ty.Const{},
		lastGuar:   s.lastGuar,
	}
}

// DeclareItem defines a new item of the local crate named name
func (s *Scope) DeclareItem(name string, kind ty.DefKind, variances ...ty.Variance) ty.DefID {
	return s.DeclareForeignItem(ty.LocalCrate, name, kind, variances...)
}

// DeclareForeignItem defines a new item of crate krate named name
func (s *Scope) DeclareForeignItem(krate ty.CrateNum, name string, kind ty.DefKind, variances ...ty.Variance) ty.DefID {
	id := s.Ctxt.DefineItem(krate, name, kind, variances...)
	s.items[name] = id
	return id
}

func (s *Scope) Item(name string) (ty.DefID, bool) {
	id, ok := s.items[name]
	return id, ok
}

// closestName finds the declared item or parameter with the smallest edit
// distance from name, for typos. It returns "" when every candidate would
// need its whole text replaced.
func (s *Scope) closestName(name string) (closest string) {
	candidates := append(lo.Keys(s.items), lo.Keys(s.params)...)
	sort.Strings(candidates)

	nameRunes := []rune(name)
	closestDistance := len(name)
	for _, candidate := range candidates {
		distance := levenshtein.DistanceForStrings(nameRunes, []rune(candidate), levenshtein.DefaultOptions)
		if distance < closestDistance && distance < len(candidate) {
			closest, closestDistance = candidate, distance
		}
	}
	return closest
}

// DeclareParams declares generic parameters of the enclosing item, in order:
// 'a is a region parameter, "const N" a const parameter, and anything else
// a type parameter
func (s *Scope) DeclareParams(names ...string) error {
	for _, name := range names {
		p := param{kind: tyParam, index: s.nextParam}
		switch {
		case len(name) > 1 && name[0] == '\'':
			p.kind, name = regionParam, name[1:]
		case len(name) > 6 && name[:6] == "const ":
			p.kind, name = constParam, name[6:]
		}
		if _, ok := s.params[name]; ok {
			return fmt.Errorf("parameter %s declared twice", name)
		}
		s.params[name] = p
		s.nextParam++
	}
	return nil
}

func (s *Scope) tyVar(name string) (*ty.Type, bool) {
	if t, ok := s.tyVars[name]; ok {
		return t, true
	}
	if s.vars == nil {
		return nil, false
	}
	t := s.vars.NewTyVar(name)
	s.tyVars[name] = t
	return t, true
}

func (s *Scope) regionVar(name string) (ty.Region, bool) {
	if r, ok := s.regionVars[name]; ok {
		return r, true
	}
	if s.vars == nil {
		return ty.Region{}, false
	}
	r := s.vars.NewRegionVar(name)
	s.regionVars[name] = r
	return r, true
}

func (s *Scope) constVar(name string) (ty.Const, bool) {
	if c, ok := s.constVars[name]; ok {
		return c, true
	}
	if s.vars == nil {
		return ty.Const{}, false
	}
	c := s.vars.NewConstVar(name)
	s.constVars[name] = c
	return c, true
}

// TyVar returns the type variable named name, if it was mentioned already
func (s *Scope) TyVar(name string) (*ty.Type, bool) {
	t, ok := s.tyVars[name]
	return t, ok
}

// RegionVar returns the region variable named name, if it was mentioned already
func (s *Scope) RegionVar(name string) (ty.Region, bool) {
	r, ok := s.regionVars[name]
	return r, ok
}

// nextErrorToken hands out a distinct token for each {error} parsed
func (s *Scope) nextErrorToken() ty.ErrorGuaranteed {
	s.lastGuar++
	return s.lastGuar
}
