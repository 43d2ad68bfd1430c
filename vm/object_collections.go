package vm

import "fmt"

// ObjArray is a growable vector of Values.
type ObjArray struct {
	ObjHeader
	Values []Value
}

func newArray(h *Heap, values []Value) *ObjArray {
	cp := make([]Value, len(values))
	copy(cp, values)
	return registerObj(h, &ObjArray{Values: cp})
}

func (a *ObjArray) String() string { return fmt.Sprintf("array(len=%d)", len(a.Values)) }
func (a *ObjArray) Type() string   { return "array" }
func (a *ObjArray) trace(gc *gcState) {
	for _, v := range a.Values {
		gc.gray_(v)
	}
}
func (a *ObjArray) approxSize() int { return 32 + len(a.Values)*16 }

func (a *ObjArray) fill(n int, v Value) {
	a.Values = a.Values[:0]
	for i := 0; i < n; i++ {
		a.Values = append(a.Values, v)
	}
}

func (a *ObjArray) snoc(v Value) { a.Values = append(a.Values, v) }

func (a *ObjArray) getAt(i int) (Value, error) {
	if i < 0 || i >= len(a.Values) {
		return Nil, fmt.Errorf("vm: array index %d out of range [0,%d)", i, len(a.Values))
	}
	return a.Values[i], nil
}

func (a *ObjArray) setAt(i int, v Value) error {
	if i < 0 || i >= len(a.Values) {
		return fmt.Errorf("vm: array index %d out of range [0,%d)", i, len(a.Values))
	}
	a.Values[i] = v
	return nil
}

// ObjSlice is a (start, length) window onto a source Array. It never copies
// and never owns: the source Array may grow underneath a live Slice, but the
// interpreter contract forbids it from shrinking below start+length while
// the Slice is reachable.
type ObjSlice struct {
	ObjHeader
	Source *ObjArray
	Start  int
	Length int
}

func newSlice(h *Heap, source *ObjArray, start, length int) (*ObjSlice, error) {
	if start+length > len(source.Values) {
		return nil, fmt.Errorf("vm: slice [%d:%d] exceeds source array length %d", start, start+length, len(source.Values))
	}
	return registerObj(h, &ObjSlice{Source: source, Start: start, Length: length}), nil
}

func (s *ObjSlice) String() string { return fmt.Sprintf("slice(%d:%d)", s.Start, s.Start+s.Length) }
func (s *ObjSlice) Type() string   { return "slice" }
func (s *ObjSlice) trace(gc *gcState) {
	if s.Source != nil {
		gc.grayObj(s.Source)
	}
}
func (s *ObjSlice) approxSize() int { return 32 }

func (s *ObjSlice) getAt(i int) (Value, error) {
	if i < 0 || i >= s.Length {
		return Nil, fmt.Errorf("vm: slice index %d out of range [0,%d)", i, s.Length)
	}
	return s.Source.getAt(s.Start + i)
}

func (s *ObjSlice) setAt(i int, v Value) error {
	if i < 0 || i >= s.Length {
		return fmt.Errorf("vm: slice index %d out of range [0,%d)", i, s.Length)
	}
	return s.Source.setAt(s.Start+i, v)
}

// ObjByteArray is the byte-typed analogue of Array.
type ObjByteArray struct {
	ObjHeader
	Bytes []byte
}

func newByteArray(h *Heap, b []byte) *ObjByteArray {
	cp := make([]byte, len(b))
	copy(cp, b)
	return registerObj(h, &ObjByteArray{Bytes: cp})
}

func (a *ObjByteArray) String() string    { return fmt.Sprintf("bytearray(len=%d)", len(a.Bytes)) }
func (a *ObjByteArray) Type() string      { return "bytearray" }
func (a *ObjByteArray) trace(gc *gcState) {}
func (a *ObjByteArray) approxSize() int   { return 24 + len(a.Bytes) }

func (a *ObjByteArray) fill(n int, v byte) {
	a.Bytes = a.Bytes[:0]
	for i := 0; i < n; i++ {
		a.Bytes = append(a.Bytes, v)
	}
}

func (a *ObjByteArray) snoc(v byte) { a.Bytes = append(a.Bytes, v) }

func (a *ObjByteArray) getAt(i int) (byte, error) {
	if i < 0 || i >= len(a.Bytes) {
		return 0, fmt.Errorf("vm: byte array index %d out of range [0,%d)", i, len(a.Bytes))
	}
	return a.Bytes[i], nil
}

func (a *ObjByteArray) setAt(i int, v byte) error {
	if i < 0 || i >= len(a.Bytes) {
		return fmt.Errorf("vm: byte array index %d out of range [0,%d)", i, len(a.Bytes))
	}
	a.Bytes[i] = v
	return nil
}

// ObjByteSlice is the byte-typed analogue of Slice.
type ObjByteSlice struct {
	ObjHeader
	Source *ObjByteArray
	Start  int
	Length int
}

func newByteSlice(h *Heap, source *ObjByteArray, start, length int) (*ObjByteSlice, error) {
	if start+length > len(source.Bytes) {
		return nil, fmt.Errorf("vm: byte slice [%d:%d] exceeds source array length %d", start, start+length, len(source.Bytes))
	}
	return registerObj(h, &ObjByteSlice{Source: source, Start: start, Length: length}), nil
}

func (s *ObjByteSlice) String() string {
	return fmt.Sprintf("byteslice(%d:%d)", s.Start, s.Start+s.Length)
}
func (s *ObjByteSlice) Type() string { return "byteslice" }
func (s *ObjByteSlice) trace(gc *gcState) {
	if s.Source != nil {
		gc.grayObj(s.Source)
	}
}
func (s *ObjByteSlice) approxSize() int { return 32 }

func (s *ObjByteSlice) getAt(i int) (byte, error) {
	if i < 0 || i >= s.Length {
		return 0, fmt.Errorf("vm: byte slice index %d out of range [0,%d)", i, s.Length)
	}
	return s.Source.getAt(s.Start + i)
}

func (s *ObjByteSlice) setAt(i int, v byte) error {
	if i < 0 || i >= s.Length {
		return fmt.Errorf("vm: byte slice index %d out of range [0,%d)", i, s.Length)
	}
	return s.Source.setAt(s.Start+i, v)
}
