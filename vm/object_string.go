package vm

// ObjString is an immutable byte string.
// Real foreign interop sometimes wants a trailing NUL; Go strings are not
// NUL-terminated, so ForeignFunc implementations that need a C string must
// convert explicitly. We don't carry a synthetic NUL byte in Data itself, to
// keep len(Data) equal to the string's length and to keep this type usable
// as a normal Go string without trimming.
type ObjString struct {
	ObjHeader
	Data string
}

func newString(h *Heap, s string) *ObjString {
	return registerObj(h, &ObjString{Data: s})
}

func (s *ObjString) String() string    { return s.Data }
func (s *ObjString) Type() string      { return "string" }
func (s *ObjString) trace(gc *gcState) {}
func (s *ObjString) approxSize() int   { return 24 + len(s.Data) }
