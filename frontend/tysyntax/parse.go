package tysyntax

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/util"
)

// SyntaxError is a type that failed to parse
type SyntaxError struct {
	Src    string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d of '%s'", e.Msg, e.Offset, e.Src)
}

// Parse parses a single type
func (s *Scope) Parse(src string) (t *ty.Type, err error) {
	defer func() {
		if r := recover(); r != nil {
			syntaxErr, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			t, err = nil, syntaxErr
		}
	}()
	p := newParser(s, src)
	t = p.parseType()
	if p.tok != scanner.EOF {
		p.fail("unexpected '%s' after type", p.text)
	}
	return t, nil
}

// MustParse is Parse that panics on error, for tests
func (s *Scope) MustParse(src string) *ty.Type {
	t, err := s.Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	scope *Scope
	src   string
	sc    scanner.Scanner

	tok    rune
	text   string
	offset int

	// binders holds the region names bound by each enclosing fn pointer, innermost last
	binders util.Stack[[]string]
}

func newParser(s *Scope, src string) *parser {
	p := &parser{scope: s, src: src}
	p.sc.Init(strings.NewReader(src))
	// without ScanChars, a lifetime's quote is scanned as a token of its own
	p.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.sc.Error = func(_ *scanner.Scanner, msg string) { p.fail("%s", msg) }
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.sc.Scan()
	p.text = p.sc.TokenText()
	p.offset = p.sc.Position.Offset
}

func (p *parser) fail(format string, args ...any) {
	panic(&SyntaxError{Src: p.src, Offset: p.offset, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.fail("expected '%c', found '%s'", tok, p.text)
	}
	p.next()
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok == scanner.Ident && p.text == kw
}

func (p *parser) expectKeyword(kw string) {
	if !p.isKeyword(kw) {
		p.fail("expected '%s', found '%s'", kw, p.text)
	}
	p.next()
}

func (p *parser) expectIdent() string {
	if p.tok != scanner.Ident {
		p.fail("expected a name, found '%s'", p.text)
	}
	name := p.text
	p.next()
	return name
}

func primitives(c *ty.Ctxt) map[string]*ty.Type {
	t := c.Types
	return map[string]*ty.Type{
		"bool": t.Bool, "char": t.Char, "str": t.Str,
		"i8": t.I8, "i16": t.I16, "i32": t.I32, "i64": t.I64, "i128": t.I128, "isize": t.Isize,
		"u8": t.U8, "u16": t.U16, "u32": t.U32, "u64": t.U64, "u128": t.U128, "usize": t.Usize,
		"f32": t.F32, "f64": t.F64,
	}
}

func (p *parser) parseType() *ty.Type {
	c := p.scope.Ctxt
	switch p.tok {
	case '!':
		p.next()
		return c.Types.Never

	case '&':
		p.next()
		region := ty.ReErasedRegion
		if p.tok == '\'' {
			region = p.parseRegion()
		}
		mut := ty.Not
		if p.isKeyword("mut") {
			p.next()
			mut = ty.Mut
		}
		return c.NewRef(region, p.parseType(), mut)

	case '*':
		p.next()
		mut := ty.Not
		switch {
		case p.isKeyword("const"):
		case p.isKeyword("mut"):
			mut = ty.Mut
		default:
			p.fail("expected 'const' or 'mut' after '*', found '%s'", p.text)
		}
		p.next()
		return c.NewRawPtr(p.parseType(), mut)

	case '[':
		p.next()
		elem := p.parseType()
		if p.tok == ';' {
			p.next()
			length := p.parseConst()
			p.expect(']')
			return c.NewArray(elem, length)
		}
		p.expect(']')
		return c.NewSlice(elem)

	case '(':
		p.next()
		var elems []*ty.Type
		trailingComma := false
		for p.tok != ')' {
			elems = append(elems, p.parseType())
			trailingComma = p.tok == ','
			if !trailingComma {
				break
			}
			p.next()
		}
		p.expect(')')
		if len(elems) == 1 && !trailingComma {
			return elems[0]
		}
		return c.NewTuple(elems...)

	case '?':
		p.next()
		name := p.expectIdent()
		t, ok := p.scope.tyVar(name)
		if !ok {
			p.fail("no inference variables in scope for ?%s", name)
		}
		return t

	case '{':
		p.next()
		name := p.expectIdent()
		p.expect('}')
		switch name {
		case "error":
			return c.NewError(p.scope.nextErrorToken())
		case "integer", "float":
			if p.scope.vars == nil {
				p.fail("no inference variables in scope for {%s}", name)
			}
			if name == "integer" {
				return p.scope.vars.NewIntVar()
			}
			return p.scope.vars.NewFloatVar()
		}
		p.fail("unknown type {%s}", name)

	case scanner.Ident:
		switch p.text {
		case "for", "fn", "unsafe", "extern":
			return p.parseFnPtr()
		}
		if prim, ok := primitives(c)[p.text]; ok {
			p.next()
			return prim
		}
		return p.parsePath()
	}
	p.fail("expected a type, found '%s'", p.text)
	return nil
}

func (p *parser) parseFnPtr() *ty.Type {
	var names []string
	if p.isKeyword("for") {
		p.next()
		p.expect('<')
		for p.tok != '>' {
			p.expect('\'')
			name := p.expectIdent()
			if slices.Contains(names, name) {
				p.fail("lifetime '%s bound twice", name)
			}
			names = append(names, name)
			if p.tok != ',' {
				break
			}
			p.next()
		}
		p.expect('>')
	}

	safety := ty.Safe
	if p.isKeyword("unsafe") {
		p.next()
		safety = ty.Unsafe
	}
	abi := ty.RustAbi
	if p.isKeyword("extern") {
		p.next()
		abi = "C"
		if p.tok == scanner.String {
			unquoted, err := strconv.Unquote(p.text)
			if err != nil {
				p.fail("bad abi %s", p.text)
			}
			abi = unquoted
			p.next()
		}
	}
	p.expectKeyword("fn")

	p.binders.Push(names)
	defer p.binders.Pop()

	p.expect('(')
	var inputs []*ty.Type
	variadic := false
	for p.tok != ')' {
		if p.tok == '.' {
			p.expect('.')
			p.expect('.')
			p.expect('.')
			variadic = true
			break
		}
		inputs = append(inputs, p.parseType())
		if p.tok != ',' {
			break
		}
		p.next()
	}
	p.expect(')')

	output := p.scope.Ctxt.Types.Unit
	if p.tok == '-' {
		p.next()
		p.expect('>')
		output = p.parseType()
	}

	sig := ty.NewFnSig(inputs, output)
	sig.Safety, sig.Abi, sig.CVariadic = safety, abi, variadic
	vars := make([]ty.BoundVariableKind, len(names))
	for i, name := range names {
		vars[i] = ty.BoundVariableKind{Kind: ty.BoundRegionVar, Name: name}
	}
	return p.scope.Ctxt.NewFnPtr(ty.BindWithVars(sig, vars))
}

func (p *parser) parseRegion() ty.Region {
	p.expect('\'')
	if p.tok == '?' {
		p.next()
		name := p.expectIdent()
		r, ok := p.scope.regionVar(name)
		if !ok {
			p.fail("no inference variables in scope for '?%s", name)
		}
		return r
	}
	name := p.expectIdent()
	switch name {
	case "static":
		return ty.ReStaticRegion
	case "_":
		return ty.ReErasedRegion
	}

	binders := p.binders.Items()
	for i := len(binders) - 1; i >= 0; i-- {
		if index := slices.Index(binders[i], name); index >= 0 {
			debruijn := ty.DebruijnIndex(len(binders) - 1 - i)
			return ty.NewReBound(debruijn, ty.BoundRegion{Var: ty.BoundVar(index), Name: name})
		}
	}
	if prm, ok := p.scope.params[name]; ok && prm.kind == regionParam {
		return ty.NewReEarlyParam(prm.index, name)
	}
	p.fail("undeclared lifetime '%s", name)
	return ty.Region{}
}

func (p *parser) parseConst() ty.Const {
	switch p.tok {
	case scanner.Int:
		value, err := strconv.ParseUint(p.text, 0, 64)
		if err != nil {
			p.fail("bad constant %s", p.text)
		}
		p.next()
		return ty.NewConstValue(p.scope.Ctxt.Types.Usize, value)
	case '?':
		p.next()
		name := p.expectIdent()
		c, ok := p.scope.constVar(name)
		if !ok {
			p.fail("no inference variables in scope for ?%s", name)
		}
		return c
	case scanner.Ident:
		if prm, ok := p.scope.params[p.text]; ok && prm.kind == constParam {
			name := p.text
			p.next()
			return ty.NewConstParam(prm.index, name)
		}
	}
	p.fail("expected a constant, found '%s'", p.text)
	return ty.Const{}
}

func (p *parser) parseGenericArg() ty.GenericArg {
	switch p.tok {
	case '\'':
		return ty.RegionArgOf(p.parseRegion())
	case scanner.Int:
		return ty.ConstArgOf(p.parseConst())
	case scanner.Ident:
		if prm, ok := p.scope.params[p.text]; ok && prm.kind == constParam {
			return ty.ConstArgOf(p.parseConst())
		}
	}
	return ty.TyArg(p.parseType())
}

func (p *parser) parsePath() *ty.Type {
	c := p.scope.Ctxt
	name := p.expectIdent()

	if prm, ok := p.scope.params[name]; ok {
		if prm.kind != tyParam {
			p.fail("%s is not a type parameter", name)
		}
		return c.NewParam(prm.index, name)
	}

	def, ok := p.scope.items[name]
	if !ok {
		if closest := p.scope.closestName(name); closest != "" {
			p.fail("undeclared type %s (did you mean %s?)", name, closest)
		}
		p.fail("undeclared type %s", name)
	}
	var args ty.Args
	if p.tok == '<' {
		p.next()
		for p.tok != '>' {
			args = append(args, p.parseGenericArg())
			if p.tok != ',' {
				break
			}
			p.next()
		}
		p.expect('>')
	}

	switch c.DefKind(def) {
	case ty.DefAdt:
		return c.NewAdt(def, args)
	case ty.DefFn:
		return c.NewFnDef(def, args)
	case ty.DefOpaque:
		return c.NewOpaque(def, args)
	case ty.DefProjection:
		return c.NewAlias(ty.Projection, ty.AliasTy{Def: def, Args: args})
	}
	p.fail("%s is a %s, not a type", name, c.DefKind(def))
	return nil
}
