package infer

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/immutable"
)

// errValuesDiffer is returned when two known values of unified variables differ
var errValuesDiffer = errors.New("unified variables have different values")

// unifiable values get merged when their variables are unified
type unifiable[V any] interface {
	unifyWith(other V) (V, error)
}

type vidHasher[K ~uint32] struct{}

func (vidHasher[K]) Hash(k K) uint32    { return uint32(k) }
func (vidHasher[K]) Equal(a, b K) bool { return a == b }

type varEntry[K ~uint32, V any] struct {
	parent K
	rank   uint32
	value  V
}

// unificationTable is a union-find over variable ids K with a value per class.
// It is persistent: copying the struct is a snapshot of it.
type unificationTable[K ~uint32, V unifiable[V]] struct {
	entries *immutable.Map[K, varEntry[K, V]]
	len     uint32
}

func newUnificationTable[K ~uint32, V unifiable[V]]() unificationTable[K, V] {
	return unificationTable[K, V]{
		entries: immutable.NewMap[K, varEntry[K, V]](vidHasher[K]{}),
	}
}

func (t *unificationTable[K, V]) newKey(value V) K {
	key := K(t.len)
	t.len++
	t.entries = t.entries.Set(key, varEntry[K, V]{parent: key, value: value})
	return key
}

func (t *unificationTable[K, V]) numVars() int { return int(t.len) }

func (t *unificationTable[K, V]) entry(key K) varEntry[K, V] {
	e, ok := t.entries.Get(key)
	if !ok {
		panic(fmt.Sprintf("unknown variable %d", key))
	}
	return e
}

// find returns the representative of the class of key, compressing the path to it
func (t *unificationTable[K, V]) find(key K) K {
	e := t.entry(key)
	if e.parent == key {
		return key
	}
	root := t.find(e.parent)
	if root != e.parent {
		e.parent = root
		t.entries = t.entries.Set(key, e)
	}
	return root
}

func (t *unificationTable[K, V]) probeValue(key K) V {
	return t.entry(t.find(key)).value
}

// unify merges the classes of a and b, failing when their values cannot be merged
func (t *unificationTable[K, V]) unify(a, b K) error {
	rootA, rootB := t.find(a), t.find(b)
	if rootA == rootB {
		return nil
	}
	entryA, entryB := t.entry(rootA), t.entry(rootB)
	merged, err := entryA.value.unifyWith(entryB.value)
	if err != nil {
		return err
	}
	if entryA.rank < entryB.rank {
		rootA, rootB = rootB, rootA
		entryA, entryB = entryB, entryA
	}
	// rootA becomes the representative
	if entryA.rank == entryB.rank {
		entryA.rank++
	}
	entryA.value = merged
	entryB.parent = rootA
	t.entries = t.entries.Set(rootA, entryA).Set(rootB, entryB)
	return nil
}

// unifyValue merges value into the value of the class of key
func (t *unificationTable[K, V]) unifyValue(key K, value V) error {
	root := t.find(key)
	e := t.entry(root)
	merged, err := e.value.unifyWith(value)
	if err != nil {
		return err
	}
	e.value = merged
	t.entries = t.entries.Set(root, e)
	return nil
}
