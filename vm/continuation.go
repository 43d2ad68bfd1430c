package vm

import "fmt"

// ObjContinuation is a captured multi-shot delimited continuation: a frozen
// snapshot of the value stack and frame stack above (and including) the
// handle frame a REACT captured at, plus the byte offset execution should
// resume at when the continuation is later invoked.
//
// Its shape and the exact stack-slicing boundary follow the capture/replay
// protocol a reference effect-handler VM uses for its own ObjContinuation
// and REACT case — there is no equivalent in a plain closures-and-call-
// frames interpreter with no continuation support.
type ObjContinuation struct {
	ObjHeader

	// ResumeLocation is the byte offset CALL_CONTINUATION/TAILCALL_CONTINUATION
	// jump to after splicing the saved stacks back in.
	ResumeLocation int

	// ParamCount is how many values CALL_CONTINUATION must supply (the
	// captured handle frame's parameter count) before splicing SavedStack
	// back in.
	ParamCount int

	// SavedStack is the slice of the value stack captured at REACT time:
	// everything below (not including) the handler operation's arguments.
	SavedStack []Value

	// SavedFrames is the slice of the frame stack captured at REACT time,
	// starting at (and including) the handle frame that was unwound to.
	SavedFrames []Obj
}

func newContinuation(h *Heap, resumeLocation, paramCount int, savedStack []Value, savedFrames []Obj) *ObjContinuation {
	st := make([]Value, len(savedStack))
	copy(st, savedStack)
	fr := make([]Obj, len(savedFrames))
	copy(fr, savedFrames)
	return registerObj(h, &ObjContinuation{
		ResumeLocation: resumeLocation,
		ParamCount:     paramCount,
		SavedStack:     st,
		SavedFrames:    fr,
	})
}

func (c *ObjContinuation) String() string { return fmt.Sprintf("continuation(@%d)", c.ResumeLocation) }
func (c *ObjContinuation) Type() string   { return "continuation" }
func (c *ObjContinuation) trace(gc *gcState) {
	for _, v := range c.SavedStack {
		gc.gray_(v)
	}
	for _, f := range c.SavedFrames {
		gc.grayObj(f)
	}
}
func (c *ObjContinuation) approxSize() int {
	return 32 + len(c.SavedStack)*16 + len(c.SavedFrames)*8
}
