package ty

// Foldable values can be rebuilt with their types, regions and consts replaced by a TypeFolder
type Foldable interface {
	FoldWith(f TypeFolder) Foldable
}

// TypeFolder maps the leaves of a Foldable.
// FoldTy is responsible for recursing into the components of a type,
// which it usually does by calling SuperFold.
type TypeFolder interface {
	Ctxt() *Ctxt
	FoldTy(t *Type) *Type
	FoldRegion(r Region) Region
	FoldConst(c Const) Const
	// EnterBinder and ExitBinder are called around the contents of every Binder
	EnterBinder()
	ExitBinder()
}

// Fold is FoldWith without the type assertion at the call site
func Fold[T Foldable](f TypeFolder, value T) T {
	return value.FoldWith(f).(T)
}

func (t *Type) FoldWith(f TypeFolder) Foldable { return f.FoldTy(t) }
func (r Region) FoldWith(f TypeFolder) Foldable { return f.FoldRegion(r) }
func (c Const) FoldWith(f TypeFolder) Foldable  { return f.FoldConst(c) }

func (a GenericArg) FoldWith(f TypeFolder) Foldable {
	switch a.kind {
	case TypeArg:
		return TyArg(f.FoldTy(a.ty))
	case RegionArg:
		return RegionArgOf(f.FoldRegion(a.region))
	default:
		return ConstArgOf(f.FoldConst(a.ct))
	}
}

func (args Args) FoldWith(f TypeFolder) Foldable {
	if len(args) == 0 {
		return args
	}
	folded := make(Args, len(args))
	for i, arg := range args {
		folded[i] = Fold(f, arg)
	}
	return folded
}

func (a AliasTy) FoldWith(f TypeFolder) Foldable {
	return AliasTy{Def: a.Def, Args: Fold(f, a.Args)}
}

func (s FnSig) FoldWith(f TypeFolder) Foldable {
	folded := s
	folded.InputsAndOutput = foldTys(f, s.InputsAndOutput)
	return folded
}

func (b Binder[T]) FoldWith(f TypeFolder) Foldable {
	f.EnterBinder()
	defer f.ExitBinder()
	return Binder[T]{value: b.value.FoldWith(f).(T), boundVars: b.boundVars}
}

func foldTys(f TypeFolder, tys []*Type) []*Type {
	folded := make([]*Type, len(tys))
	for i, t := range tys {
		folded[i] = f.FoldTy(t)
	}
	return folded
}

// SuperFold folds the components of t and rebuilds it
func (t *Type) SuperFold(f TypeFolder) *Type {
	c := f.Ctxt()
	switch k := t.kind.(type) {
	case Adt:
		return c.NewAdt(k.Def, Fold(f, k.Args))
	case FnDef:
		return c.NewFnDef(k.Def, Fold(f, k.Args))
	case Alias:
		return c.NewAlias(k.Kind, Fold(f, k.Ty))
	case Ref:
		return c.NewRef(f.FoldRegion(k.Region), f.FoldTy(k.Ty), k.Mut)
	case RawPtr:
		return c.NewRawPtr(f.FoldTy(k.Ty), k.Mut)
	case Slice:
		return c.NewSlice(f.FoldTy(k.Elem))
	case Array:
		return c.NewArray(f.FoldTy(k.Elem), f.FoldConst(k.Len))
	case Tuple:
		if len(k.Elems) == 0 {
			return t
		}
		return c.NewTuple(foldTys(f, k.Elems)...)
	case FnPtr:
		return c.NewFnPtr(Fold(f, k.Sig))
	default:
		return t
	}
}

// SuperFold folds the type of a known constant
func (c Const) SuperFold(f TypeFolder) Const {
	if c.kind == ConstValue {
		return NewConstValue(f.FoldTy(c.ty), c.value)
	}
	return c
}

// BoundVarReplacerDelegate provides what bound variables get replaced with
// when a binder is instantiated. The replacements must not contain escaping bound variables.
type BoundVarReplacerDelegate interface {
	ReplaceRegion(br BoundRegion) Region
	ReplaceTy(bt BoundTy) *Type
	ReplaceConst(bv BoundVar) Const
}

type boundVarReplacer struct {
	ctxt     *Ctxt
	current  DebruijnIndex
	delegate BoundVarReplacerDelegate
}

func (r *boundVarReplacer) Ctxt() *Ctxt  { return r.ctxt }
func (r *boundVarReplacer) EnterBinder() { r.current = r.current.Shifted(1) }
func (r *boundVarReplacer) ExitBinder()  { r.current = r.current.ShiftedOut(1) }

func (r *boundVarReplacer) FoldTy(t *Type) *Type {
	if t.outerExclusiveBinder <= r.current {
		return t
	}
	if k, ok := t.kind.(Bound); ok && k.Debruijn == r.current {
		return r.delegate.ReplaceTy(k.Var)
	}
	return t.SuperFold(r)
}

func (r *boundVarReplacer) FoldRegion(region Region) Region {
	if region.kind == ReBound && region.debruijn == r.current {
		return r.delegate.ReplaceRegion(region.bound)
	}
	return region
}

func (r *boundVarReplacer) FoldConst(c Const) Const {
	if c.kind == ConstBound && c.debruijn == r.current {
		return r.delegate.ReplaceConst(BoundVar(c.index))
	}
	return c.SuperFold(r)
}

// InstantiateBoundVars replaces the variables bound by b with what delegate provides
// and returns the now unbound value
func InstantiateBoundVars[T Relatable](c *Ctxt, b Binder[T], delegate BoundVarReplacerDelegate) T {
	if value, ok := b.NoBoundVars(); ok {
		return value
	}
	replacer := &boundVarReplacer{ctxt: c, current: Innermost, delegate: delegate}
	return b.value.FoldWith(replacer).(T)
}

// FnMutDelegate builds a BoundVarReplacerDelegate out of closures
type FnMutDelegate struct {
	Regions func(BoundRegion) Region
	Types   func(BoundTy) *Type
	Consts  func(BoundVar) Const
}

func (d FnMutDelegate) ReplaceRegion(br BoundRegion) Region { return d.Regions(br) }
func (d FnMutDelegate) ReplaceTy(bt BoundTy) *Type          { return d.Types(bt) }
func (d FnMutDelegate) ReplaceConst(bv BoundVar) Const      { return d.Consts(bv) }
