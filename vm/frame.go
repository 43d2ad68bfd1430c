package vm

// Frames are the activation records pushed onto a Fiber's frame stack.
// Each variant embeds the previous one (VarFrame -> CallFrame -> HandleFrame),
// the same embedding a reference-counted C interpreter expresses as
// ObjVarFrame -> ObjCallFrame -> ObjMarkFrame, generalized with one more
// layer for handler bookkeeping.
//
// All three variants are heap objects so the collector can trace the values
// and closures they keep alive. Besides the frame stack they live on, a
// frame can also be held in a continuation's SavedFrames, which
// CALL_CONTINUATION pushes back onto a frame stack as the same objects.

// VarFrame holds a block of slots captured off the value stack by STORE, and
// nothing else. It is the frame pushed for a plain lexical scope.
type VarFrame struct {
	ObjHeader
	Slots []Value
}

func newVarFrame(h *Heap, slots []Value) *VarFrame {
	cp := make([]Value, len(slots))
	copy(cp, slots)
	return registerObj(h, &VarFrame{Slots: cp})
}

func (f *VarFrame) String() string { return "varframe" }
func (f *VarFrame) Type() string   { return "varframe" }
func (f *VarFrame) trace(gc *gcState) {
	for _, v := range f.Slots {
		gc.gray_(v)
	}
}
func (f *VarFrame) approxSize() int { return 32 + len(f.Slots)*16 }

// CallFrame is a VarFrame plus the byte offset execution resumes at when the
// call this frame belongs to returns.
type CallFrame struct {
	VarFrame
	AfterLocation int
}

func newCallFrame(h *Heap, slots []Value, afterLocation int) *CallFrame {
	cp := make([]Value, len(slots))
	copy(cp, slots)
	return registerObj(h, &CallFrame{VarFrame: VarFrame{Slots: cp}, AfterLocation: afterLocation})
}

func (f *CallFrame) String() string { return "callframe" }
func (f *CallFrame) Type() string   { return "callframe" }

// HandleFrame is a CallFrame plus everything HANDLE needs to remember about
// the effect handlers it installed: the handle-site identity (HandleID),
// a counter raised by INJECT and lowered by EJECT (Nesting — while it is
// above zero, ESCAPE/REACT skip this frame when looking for a free handler
// with its identity), the closure
// to invoke on COMPLETE, and the handler closures themselves, indexed by
// effect-operation ordinal.
type HandleFrame struct {
	CallFrame
	HandleID     int
	Nesting      int
	AfterClosure *ObjClosure
	Handlers     []*ObjClosure
}

func newHandleFrame(h *Heap, slots []Value, afterLocation, handleID int, afterClosure *ObjClosure, handlers []*ObjClosure) *HandleFrame {
	cp := make([]Value, len(slots))
	copy(cp, slots)
	hs := make([]*ObjClosure, len(handlers))
	copy(hs, handlers)
	return registerObj(h, &HandleFrame{
		CallFrame:    CallFrame{VarFrame: VarFrame{Slots: cp}, AfterLocation: afterLocation},
		HandleID:     handleID,
		Nesting:      0,
		AfterClosure: afterClosure,
		Handlers:     hs,
	})
}

func (f *HandleFrame) String() string { return "handleframe" }
func (f *HandleFrame) Type() string   { return "handleframe" }
func (f *HandleFrame) trace(gc *gcState) {
	f.VarFrame.trace(gc)
	if f.AfterClosure != nil {
		gc.grayObj(f.AfterClosure)
	}
	for _, c := range f.Handlers {
		if c != nil {
			gc.grayObj(c)
		}
	}
}
func (f *HandleFrame) approxSize() int {
	return f.VarFrame.approxSize() + 32 + len(f.Handlers)*8
}

// Frame is the common type every frame-stack entry satisfies. Go has no
// struct-embedding-based sum type, so rather than force CallFrame/HandleFrame
// through VarFrame's interface methods (which would hide the AfterLocation/
// HandleID fields behind type assertions at every use site anyway), frame
// stack entries are stored as the Obj interface and type-switched on where
// the distinction matters (handlers.go, interp.go). asVarFrame/asCallFrame/
// asHandleFrame below centralize that.
type Frame = Obj

func asVarFrame(o Obj) (*VarFrame, bool) {
	switch f := o.(type) {
	case *VarFrame:
		return f, true
	case *CallFrame:
		return &f.VarFrame, true
	case *HandleFrame:
		return &f.VarFrame, true
	}
	return nil, false
}

func asCallFrame(o Obj) (*CallFrame, bool) {
	switch f := o.(type) {
	case *CallFrame:
		return f, true
	case *HandleFrame:
		return &f.CallFrame, true
	}
	return nil, false
}

func asHandleFrame(o Obj) (*HandleFrame, bool) {
	f, ok := o.(*HandleFrame)
	return f, ok
}
