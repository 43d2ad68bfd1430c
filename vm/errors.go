package vm

import "fmt"

// FatalError reports a precondition violation: a bug in the bytecode or in
// the interpreter itself (stack underflow, frame-type mismatch, an EJECT
// without a matching INJECT, findFreeHandler finding nothing, an
// uninitialized Ref, and so on). These have no defined recovery path; the
// interpreter aborts and reports one back to the embedder rather than
// trying to continue in a possibly-corrupt state. This mirrors a
// panic-and-recover-at-the-boundary discipline, translated into a typed
// error instead of a bare panic so that Interpret can return it normally.
type FatalError struct {
	Op      Opcode
	IP      int
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("vm: fatal error at ip=%d (%s): %s", e.IP, e.Op, e.Message)
}

func fatalf(op Opcode, ip int, format string, args ...any) *FatalError {
	return &FatalError{Op: op, IP: ip, Message: fmt.Sprintf(format, args...)}
}

// Result is the outcome of Interpret.
type Result int

const (
	ResultSuccess Result = iota
	ResultRuntimeError
	ResultAbort

	// ResultSuspended is returned when the running fiber suspended itself
	// (a foreign function set Fiber.Suspended). A reference dispatcher might
	// spin in an event loop instead of advancing; a goroutine-based embedder
	// has no such loop to spin in, so Interpret instead returns control here,
	// leaving the caller free to run its own event pump and call Interpret
	// again once the fiber's ObjForeignResume has cleared Fiber.Suspended.
	ResultSuspended
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultRuntimeError:
		return "runtime_error"
	case ResultAbort:
		return "abort"
	case ResultSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}
