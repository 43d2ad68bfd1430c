package vm

import "fmt"

// ObjForeign is an opaque byte blob owned by a foreign function, opaque to
// the interpreter itself.
type ObjForeign struct {
	ObjHeader
	Data []byte
}

func newForeign(h *Heap, data []byte) *ObjForeign {
	cp := make([]byte, len(data))
	copy(cp, data)
	return registerObj(h, &ObjForeign{Data: cp})
}

func (f *ObjForeign) String() string    { return fmt.Sprintf("foreign(%d bytes)", len(f.Data)) }
func (f *ObjForeign) Type() string      { return "foreign" }
func (f *ObjForeign) trace(gc *gcState) {}
func (f *ObjForeign) approxSize() int   { return 24 + len(f.Data) }

// ObjCPointer is an untyped pointer held only for foreign-function interop;
// the interpreter never dereferences it. Go has no raw untyped pointer the
// collector could safely scan, so this wraps an any, the usual way a
// managed runtime's value representation carries an opaque host handle it
// never itself interprets.
type ObjCPointer struct {
	ObjHeader
	Ptr any
}

func newCPointer(h *Heap, ptr any) *ObjCPointer { return registerObj(h, &ObjCPointer{Ptr: ptr}) }

func (p *ObjCPointer) String() string    { return fmt.Sprintf("cpointer(%p)", p) }
func (p *ObjCPointer) Type() string      { return "cpointer" }
func (p *ObjCPointer) trace(gc *gcState) {}
func (p *ObjCPointer) approxSize() int   { return 24 }

// ObjForeignResume is the (vm, fiber) handle given to a foreign function at
// call time so that, having suspended the fiber, it (or an external callback
// holding onto this value) can later clear Fiber.Suspended and push resume
// values.
type ObjForeignResume struct {
	ObjHeader
	VM    *VM
	Fiber *ObjFiber
}

func newForeignResume(h *Heap, vm *VM, fiber *ObjFiber) *ObjForeignResume {
	return registerObj(h, &ObjForeignResume{VM: vm, Fiber: fiber})
}

// NewForeignResume allocates a resume handle for fiber on vm's heap, for
// foreign functions living outside this package that need to suspend a
// fiber and resume it later (e.g. from a timer or I/O callback).
func NewForeignResume(vm *VM, fiber *ObjFiber) *ObjForeignResume {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return newForeignResume(vm.heap, vm, fiber)
}

func (r *ObjForeignResume) String() string { return "foreignresume" }
func (r *ObjForeignResume) Type() string   { return "foreignresume" }
func (r *ObjForeignResume) trace(gc *gcState) {
	if r.Fiber != nil {
		gc.grayObj(r.Fiber)
	}
}
func (r *ObjForeignResume) approxSize() int { return 24 }

// Resume clears the target fiber's suspension flag and pushes result onto
// its value stack, ready for the dispatch loop to continue on its next
// scheduling pass. Resume takes no lock, and neither does the dispatch loop,
// so nothing serializes a Resume from another goroutine against a running
// Interpret over the same fiber.
func (r *ObjForeignResume) Resume(result Value) {
	r.Fiber.push(result)
	r.Fiber.Suspended = false
}
