// Package battery registers a small set of reference foreign functions on a
// VM, the way the original C runtime ships a couple of trivial natives
// alongside its core interpreter so the embedding surface has at least one
// real exerciser. ClockMS is synchronous; SleepSuspend is asynchronous and
// exists specifically to drive the ForeignResume suspend/resume contract
// end-to-end in tests, since nothing in the vm package itself needs to
// suspend a fiber.
package battery

import (
	"time"

	"github.com/mna/embervm/vm"
)

// Indices names the foreign function table slots Register assigned, so
// callers building bytecode (by hand or via the asm package) know which
// CALL_FOREIGN index to emit for each function.
type Indices struct {
	ClockMS      uint16
	SleepSuspend uint16
}

// Register installs every battery function on target and returns the
// indices they were assigned.
func Register(target *vm.VM) (Indices, error) {
	var idx Indices
	var err error

	if idx.ClockMS, err = target.AddForeign(clockMS); err != nil {
		return idx, err
	}
	if idx.SleepSuspend, err = target.AddForeign(sleepSuspend); err != nil {
		return idx, err
	}
	return idx, nil
}

// clockMS pushes the current Unix time in milliseconds as a double. It never
// suspends: a synchronous foreign function reads its arguments (none, here),
// pushes its result, and returns in the same dispatch step.
func clockMS(_ *vm.VM, fiber *vm.ObjFiber) {
	fiber.Push(vm.Double(float64(time.Now().UnixMilli())))
}

// sleepSuspend pops a millisecond duration (as a double), suspends the
// fiber, and arranges a real-time callback that resumes it with
// vm.Bool(true) once the duration elapses. This is the battery's one
// asynchronous exerciser of the suspend/resume contract: Suspended prevents
// the dispatch loop from observing this fiber again until some outside
// party (here, time.AfterFunc) calls Resume.
func sleepSuspend(v *vm.VM, fiber *vm.ObjFiber) {
	ms := fiber.Pop()
	d := time.Duration(ms.AsDouble()) * time.Millisecond

	fiber.Suspended = true
	resume := vm.NewForeignResume(v, fiber)
	time.AfterFunc(d, func() {
		resume.Resume(vm.Bool(true))
	})
}
