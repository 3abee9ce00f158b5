package infer

import "github.com/cottand/tyrel/frontend/ty"

// Snapshot is the state of an InferCtxt at some point, to roll back to
type Snapshot struct {
	tables   inferTables
	universe ty.UniverseIndex
}

func (infcx *InferCtxt) StartSnapshot() Snapshot {
	return Snapshot{tables: infcx.tables, universe: infcx.universe}
}

// RollbackTo forgets everything inferred since s was taken.
// Being tainted by errors is never forgotten, and neither are created universes.
func (infcx *InferCtxt) RollbackTo(s Snapshot) {
	infcx.logger.Debug("rollback to snapshot")
	infcx.tables = s.tables
	infcx.universe = s.universe
}

// CommitIfOK rolls back whatever f inferred if it fails
func CommitIfOK[T any](infcx *InferCtxt, f func() (T, error)) (T, error) {
	s := infcx.StartSnapshot()
	res, err := f()
	if err != nil {
		infcx.RollbackTo(s)
	}
	return res, err
}

// Probe runs f and then rolls back whatever it inferred
func Probe[T any](infcx *InferCtxt, f func() T) T {
	s := infcx.StartSnapshot()
	defer infcx.RollbackTo(s)
	return f()
}
