package vm

import "fmt"

// ObjRef is a stable handle into a VM's RefTable. The Ref object itself is
// just its key plus a pointer back to the table it lives in; the actual
// value is looked up by key so that it can be mutated in place without the
// Ref's own identity (and anything holding a copy of the Ref Value) needing
// to change.
type ObjRef struct {
	ObjHeader
	Key   uint64
	Table *RefTable
}

func newRef(h *Heap, table *RefTable, initial Value) *ObjRef {
	key := table.NewRef(initial)
	return registerObj(h, &ObjRef{Key: key, Table: table})
}

func (r *ObjRef) String() string { return fmt.Sprintf("ref(%d)", r.Key) }
func (r *ObjRef) Type() string   { return "ref" }

// trace grays whatever value is currently stored under this ref's key, so a
// Ref keeps its referent alive exactly as long as the Ref itself is
// reachable.
func (r *ObjRef) trace(gc *gcState) {
	if r.Table == nil {
		return
	}
	if v, ok := r.Table.Get(r.Key); ok {
		gc.gray_(v)
	}
}

func (r *ObjRef) approxSize() int { return 24 }

// Get reads the ref's current value.
func (r *ObjRef) Get() (Value, bool) { return r.Table.Get(r.Key) }

// Set overwrites the ref's current value.
func (r *ObjRef) Set(v Value) { r.Table.Set(r.Key, v) }
