package vm

import "fmt"

// ResumeLimit tags how many times a closure's capture point may be resumed,
// a resumption-limit hint carried on the closure itself. It does not by
// itself stop a continuation from being invoked more than its hint allows —
// nothing in this VM enforces that; it is advisory, left for a future
// verifier pass — it exists so ESCAPE/REACT can decide
// whether a continuation needs to be captured at all: a NONE closure never
// resumes its continuation, so ESCAPE can skip the (relatively expensive)
// stack-snapshot REACT performs and behave like a non-resumable abort.
type ResumeLimit uint8

const (
	ResumeNone     ResumeLimit = iota // never resumes; ESCAPE, no continuation captured
	ResumeOnce                        // resumes at most once, not in tail position
	ResumeOnceTail                    // resumes at most once, in tail position
	ResumeMany                        // may resume any number of times (multi-shot)
)

func (r ResumeLimit) String() string {
	switch r {
	case ResumeNone:
		return "none"
	case ResumeOnce:
		return "once"
	case ResumeOnceTail:
		return "once-tail"
	case ResumeMany:
		return "many"
	default:
		return fmt.Sprintf("resumelimit(%d)", uint8(r))
	}
}

// ObjClosure is a function body (identified by its entry byte offset in the
// owning CodeBlock) plus the values it captured at creation time. It pairs
// a function with its captured cells the way many register-based
// interpreters do, generalized to flat byte-offset CodeBlock addressing and
// given a resumption-limit hint most closure representations have no
// analogue for.
type ObjClosure struct {
	ObjHeader

	// CodeOffset is the absolute byte offset of this closure's body within
	// the owning CodeBlock.
	CodeOffset int

	// ParamCount is how many arguments CALL_CLOSURE/TAILCALL_CLOSURE must pop
	// off the value stack before building this closure's call frame.
	ParamCount int

	// Captured holds the free variables closed over at CLOSURE/RECURSIVE time.
	Captured []Value

	// Limit is this closure's resumption-limit hint. It is meaningful only
	// for closures installed as effect handlers; for ordinary
	// function closures it is always ResumeMany and unused.
	Limit ResumeLimit
}

func newClosure(h *Heap, codeOffset, paramCount int, captured []Value, limit ResumeLimit) *ObjClosure {
	cp := make([]Value, len(captured))
	copy(cp, captured)
	return registerObj(h, &ObjClosure{
		CodeOffset: codeOffset,
		ParamCount: paramCount,
		Captured:   cp,
		Limit:      limit,
	})
}

func (c *ObjClosure) String() string { return fmt.Sprintf("closure(@%d)", c.CodeOffset) }
func (c *ObjClosure) Type() string   { return "closure" }
func (c *ObjClosure) trace(gc *gcState) {
	for _, v := range c.Captured {
		gc.gray_(v)
	}
}
func (c *ObjClosure) approxSize() int { return 32 + len(c.Captured)*16 }

// execMutual implements MUTUAL n: given n already-built closures
// on top of the value stack, rebuilds each with room for n cross-references
// plus its original captures, then fills the first n captured slots of every
// rebuilt closure with references to all n (in stack order, including
// itself), leaving the n rebuilt closures in place on the stack.
func (vm *VM) execMutual(fiber *ObjFiber, mutualCount int) error {
	if fiber.valueCount() < mutualCount {
		return fatalf(OpMutual, fiber.IP, "MUTUAL requested %d closures but only %d values are on the stack", mutualCount, fiber.valueCount())
	}
	base := len(fiber.Values) - mutualCount

	for i := 0; i < mutualCount; i++ {
		old, ok := fiber.Values[base+i].AsObj().(*ObjClosure)
		if !ok {
			return fatalf(OpMutual, fiber.IP, "MUTUAL expects only closures in its operand range")
		}
		captured := make([]Value, mutualCount+len(old.Captured))
		copy(captured[mutualCount:], old.Captured)
		nc := newClosure(vm.heap, old.CodeOffset, old.ParamCount, captured, old.Limit)
		fiber.Values[base+i] = ObjVal(nc)
	}

	for i := 0; i < mutualCount; i++ {
		c := fiber.Values[base+i].AsObj().(*ObjClosure)
		copy(c.Captured[:mutualCount], fiber.Values[base:base+mutualCount])
	}
	return nil
}
