package infer

import (
	"log/slog"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyrel/frontend/ty"
	"github.com/cottand/tyrel/internal/log"
)

var (
	logger             = log.DefaultLogger.With("section", "infer")
	higherRankedLogger = log.DefaultLogger.With("section", "higher-ranked")
	generalizeLogger   = log.DefaultLogger.With("section", "generalize")
)

// Options tweak how an InferCtxt relates types
type Options struct {
	// NextTraitSolver defers every alias to an AliasRelate obligation
	// rather than defining opaque types eagerly
	NextTraitSolver bool
	// Intercrate is coherence checking mode, where opaque types are ambiguous
	Intercrate bool
	// SkipLeakCheck lets placeholders escape into region constraints unchecked
	SkipLeakCheck bool
}

type Option func(*Options)

func WithNextTraitSolver() Option { return func(o *Options) { o.NextTraitSolver = true } }
func WithIntercrate() Option      { return func(o *Options) { o.Intercrate = true } }
func WithSkipLeakCheck() Option   { return func(o *Options) { o.SkipLeakCheck = true } }

// inferTables is the state of an InferCtxt that snapshots roll back.
// Every field is persistent, so copying the struct is a snapshot.
type inferTables struct {
	typeVars  typeVariableTable
	intVars   unificationTable[ty.IntVid, intVarValue]
	floatVars unificationTable[ty.FloatVid, floatVarValue]
	constVars unificationTable[ty.ConstVid, constVariableValue]
	regions   regionConstraintStorage
	opaques   *immutable.Map[string, OpaqueHiddenType]
}

// InferCtxt owns the inference variables of a type checking session:
// their values, the universes they live in, and the region constraints
// collected while relating types.
//
// It is not suitable for concurrent use
type InferCtxt struct {
	Ctxt *ty.Ctxt
	opts Options

	tables inferTables

	// universe is the innermost universe we are in
	universe ty.UniverseIndex
	// lastUniverse is the most recently created universe, which is never reused
	lastUniverse ty.UniverseIndex

	tainted *ty.ErrorGuaranteed
	logger  *slog.Logger
}

func NewInferCtxt(c *ty.Ctxt, opts ...Option) *InferCtxt {
	infcx := &InferCtxt{
		Ctxt: c,
		tables: inferTables{
			typeVars:  newTypeVariableTable(),
			intVars:   newUnificationTable[ty.IntVid, intVarValue](),
			floatVars: newUnificationTable[ty.FloatVid, floatVarValue](),
			constVars: newUnificationTable[ty.ConstVid, constVariableValue](),
			regions:   newRegionConstraintStorage(),
			opaques:   immutable.NewMap[string, OpaqueHiddenType](nil),
		},
		universe: ty.RootUniverse,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(&infcx.opts)
	}
	return infcx
}

func (infcx *InferCtxt) Options() Options { return infcx.opts }

// Universe is the innermost universe new variables get created in
func (infcx *InferCtxt) Universe() ty.UniverseIndex { return infcx.universe }

// createNextUniverse enters a universe that can name everything the current one can
func (infcx *InferCtxt) createNextUniverse() ty.UniverseIndex {
	infcx.lastUniverse = infcx.lastUniverse.NextUniverse()
	infcx.universe = infcx.lastUniverse
	return infcx.universe
}

// SetTaintedByErrors records that an error was already reported while inferring.
// Only the first token is kept.
func (infcx *InferCtxt) SetTaintedByErrors(guar ty.ErrorGuaranteed) {
	if infcx.tainted != nil {
		return
	}
	infcx.logger.Debug("tainted by errors", "guar", guar)
	infcx.tainted = &guar
}

func (infcx *InferCtxt) TaintedByErrors() (ty.ErrorGuaranteed, bool) {
	if infcx.tainted == nil {
		return 0, false
	}
	return *infcx.tainted, true
}

// fresh variables

func (infcx *InferCtxt) NextTyVarID(origin TypeVariableOrigin) ty.TyVid {
	return infcx.tables.typeVars.newVar(infcx.universe, origin)
}

func (infcx *InferCtxt) NextTyVar(origin TypeVariableOrigin) *ty.Type {
	return infcx.Ctxt.NewTyVar(infcx.NextTyVarID(origin))
}

func (infcx *InferCtxt) NextTyVarInUniverse(origin TypeVariableOrigin, universe ty.UniverseIndex) *ty.Type {
	return infcx.Ctxt.NewTyVar(infcx.tables.typeVars.newVar(universe, origin))
}

func (infcx *InferCtxt) NextIntVar() *ty.Type {
	return infcx.Ctxt.NewIntVar(infcx.tables.intVars.newKey(intVarValue{}))
}

func (infcx *InferCtxt) NextFloatVar() *ty.Type {
	return infcx.Ctxt.NewFloatVar(infcx.tables.floatVars.newKey(floatVarValue{}))
}

func (infcx *InferCtxt) NextConstVar() ty.Const {
	return infcx.NextConstVarInUniverse(infcx.universe)
}

func (infcx *InferCtxt) NextConstVarInUniverse(universe ty.UniverseIndex) ty.Const {
	return ty.NewConstVar(infcx.tables.constVars.newKey(constVariableValue{universe: universe}))
}

func (infcx *InferCtxt) NumTyVars() int { return infcx.tables.typeVars.eq.numVars() }

// TyVarOrigin returns where vid was created
func (infcx *InferCtxt) TyVarOrigin(vid ty.TyVid) TypeVariableOrigin {
	return infcx.tables.typeVars.origin(vid)
}

// ProbeTyVar returns the type vid is known to be, or the universe it lives in when unknown
func (infcx *InferCtxt) ProbeTyVar(vid ty.TyVid) (*ty.Type, ty.UniverseIndex) {
	return infcx.tables.typeVars.probe(vid)
}

func (infcx *InferCtxt) RootTyVar(vid ty.TyVid) ty.TyVid {
	return infcx.tables.typeVars.root(vid)
}

// ProbeConstVar returns the value vid is known to be, or the universe it lives in when unknown
func (infcx *InferCtxt) ProbeConstVar(vid ty.ConstVid) (ty.Const, bool, ty.UniverseIndex) {
	v := infcx.tables.constVars.probeValue(vid)
	return v.value, v.known, v.universe
}

func (infcx *InferCtxt) equateTyVars(a, b ty.TyVid) {
	infcx.logger.Debug("equate type vars", "a", a, "b", b)
	infcx.tables.typeVars.equate(a, b)
}

func (infcx *InferCtxt) instantiateTyVar(vid ty.TyVid, t *ty.Type) {
	infcx.logger.Debug("instantiate type var", "vid", vid, "ty", t)
	infcx.tables.typeVars.instantiate(vid, t)
}
