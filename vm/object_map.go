package vm

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// ObjMap is a general Value-keyed map value, backed by a swiss table rather
// than a hand-rolled hash map since its probing/tombstone policy never needs
// to be externally observed the way RefTable's does. It is a different data
// structure from RefTable (reftable.go): RefTable is VM-internal plumbing
// keyed by opaque uint64 handles, while ObjMap is a first-class
// bytecode-visible value keyed by arbitrary Values (the MAP_NEW/MAP_GET/
// MAP_SET/MAP_DELETE/MAP_LEN family operates on it).
//
// Value is comparable (a small struct of a tag, a float64 and an Obj
// interface value), so it can be used directly as swiss.Map's key type
// without a separate hashing adapter.
type ObjMap struct {
	ObjHeader
	m *swiss.Map[Value, Value]
}

func newMap(h *Heap, sizeHint int) *ObjMap {
	if sizeHint < 1 {
		sizeHint = 1
	}
	return registerObj(h, &ObjMap{m: swiss.NewMap[Value, Value](uint32(sizeHint))})
}

func (m *ObjMap) String() string { return fmt.Sprintf("map(%p)", m) }
func (m *ObjMap) Type() string   { return "map" }

func (m *ObjMap) trace(gc *gcState) {
	m.m.Iter(func(k, v Value) bool {
		gc.gray_(k)
		gc.gray_(v)
		return false
	})
}

func (m *ObjMap) approxSize() int { return 48 + m.m.Count()*32 }

func (m *ObjMap) Get(k Value) (Value, bool) { return m.m.Get(k) }

func (m *ObjMap) Set(k, v Value) { m.m.Put(k, v) }

func (m *ObjMap) Delete(k Value) bool { return m.m.Delete(k) }

func (m *ObjMap) Len() int { return m.m.Count() }
