package vm

// An Obj is any heap-allocated value. Every concrete object type embeds
// ObjHeader, which carries the two pieces of bookkeeping the collector needs:
// the mark bit and the intrusive "next allocated object" link that threads
// every live object into one chain for sweep.
//
// Unlike a host language that would just let its own garbage collector
// manage every Value, this VM models its own tracing mark-and-sweep
// explicitly, on top of Go's: objects are registered through registerObj,
// linked into Heap.objects, and only reclaimed (unlinked, eligible for Go's
// GC to actually free the backing memory) when a sweep finds them unmarked.
// Precise, pausable collection over the VM's own object graph is one of this
// core's distinguishing capabilities over a host-GC-backed interpreter.
type Obj interface {
	// String returns a short diagnostic representation.
	String() string
	// Type returns the object variant's name, used in error messages and by
	// Value.TypeName.
	Type() string

	header() *ObjHeader
	// trace appends every Value/Obj directly reachable from this object to
	// the collector's gray worklist. Leaf objects (e.g. *ObjString) have a
	// no-op trace.
	trace(gc *gcState)
	// approxSize estimates the object's contribution to bytesAllocated. It
	// does not need to be exact (Go's allocator has its own overhead we can't
	// observe); it only needs to be monotonic with object size so that
	// Config.HeapGrowthPercent has a meaningful effect.
	approxSize() int
}

// ObjHeader is embedded by every concrete Obj implementation.
type ObjHeader struct {
	marked bool
	next   Obj
}

func (h *ObjHeader) header() *ObjHeader { return h }
