package vm

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// grayGrowthChunk is how many extra slots grayObj reserves at a time once
// the worklist is full, in place of the doubling-reallocation growth a
// hand-rolled dynamic array would use for the same gray/grayCount/
// grayCapacity bookkeeping.
const grayGrowthChunk = 64

// gcState carries the gray worklist for one collection cycle. It is
// allocated fresh by Heap.collect rather than kept permanently on Heap, the
// same reset-at-the-top-of-the-cycle discipline a grayCount/grayCapacity
// pair gets in a from-scratch collector.
type gcState struct {
	gray []Obj
}

// gray_ enqueues v's object (if it is one and not already marked) onto the
// worklist.
func (gc *gcState) gray_(v Value) {
	if !v.IsObj() {
		return
	}
	gc.grayObj(v.AsObj())
}

func (gc *gcState) grayObj(o Obj) {
	if o == nil {
		return
	}
	h := o.header()
	if h.marked {
		return
	}
	h.marked = true
	if len(gc.gray) == cap(gc.gray) {
		gc.gray = slices.Grow(gc.gray, grayGrowthChunk)
	}
	gc.gray = append(gc.gray, o)
}

// Heap owns every allocated Obj, the allocation accounting, and the
// intrusive "all objects" chain used for sweep. One Heap belongs to one VM.
type Heap struct {
	objects Obj // head of the intrusively-linked chain of all live objects

	bytesAllocated int
	nextGC         int
	minHeapSize    int
	growthPercent  int
	stressGC       bool

	log *zap.Logger

	// roots is supplied by the VM at collection time: the installed CodeBlock
	// and the running fiber.
	roots func(gc *gcState)
}

func newHeap(cfg Config) *Heap {
	initial := cfg.InitialHeapSize
	if initial <= 0 {
		initial = defaultInitialHeapSize
	}
	minHeap := cfg.MinHeapSize
	if minHeap <= 0 {
		minHeap = defaultMinHeapSize
	}
	growth := cfg.HeapGrowthPercent
	if growth <= 0 {
		growth = defaultHeapGrowthPercent
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Heap{
		nextGC:        initial,
		minHeapSize:   minHeap,
		growthPercent: growth,
		stressGC:      cfg.StressGC,
		log:           log,
	}
}

// registerObj accounts for o's size, triggers a collection if the threshold
// is crossed (or stress-GC is on), then links o into the allocated chain.
// Go already owns the actual memory management underneath; what this adds on
// top is the byte accounting, the collection trigger, and the trace/sweep
// discipline that lets the VM reason about object lifetime precisely rather
// than leaving it entirely to the Go runtime's own collector.
func registerObj[T Obj](h *Heap, o T) T {
	size := o.approxSize()
	h.bytesAllocated += size
	if h.stressGC || h.bytesAllocated > h.nextGC {
		h.collect()
	}
	hdr := o.header()
	hdr.marked = false
	hdr.next = h.objects
	h.objects = o
	return o
}

// collect runs one full mark-and-sweep cycle.
func (h *Heap) collect() {
	before := h.bytesAllocated
	h.bytesAllocated = 0 // recomputed below while blackening survivors

	gc := &gcState{}
	if h.roots != nil {
		h.roots(gc)
	}

	for len(gc.gray) > 0 {
		n := len(gc.gray) - 1
		o := gc.gray[n]
		gc.gray = gc.gray[:n]
		h.bytesAllocated += o.approxSize()
		o.trace(gc)
	}

	var kept Obj
	var freed int
	for o := h.objects; o != nil; {
		next := o.header().next
		if o.header().marked {
			o.header().marked = false
			o.header().next = kept
			kept = o
		} else {
			freed++
		}
		o = next
	}
	h.objects = kept

	h.nextGC = h.bytesAllocated + h.bytesAllocated*h.growthPercent/100
	if h.nextGC < h.minHeapSize {
		h.nextGC = h.minHeapSize
	}

	h.log.Debug("gc cycle",
		zap.Int("before_bytes", before),
		zap.Int("after_bytes", h.bytesAllocated),
		zap.Int("freed_objects", freed),
		zap.Int("next_gc", h.nextGC),
	)
}
