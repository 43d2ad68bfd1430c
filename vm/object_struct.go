package vm

import "fmt"

// ObjStruct is a tagged aggregate: a struct-id chosen by the compiler
// (distinguishing e.g. different record types or sum-type constructors) plus
// a flat vector of field values.
type ObjStruct struct {
	ObjHeader
	StructID int
	Fields   []Value
}

func newStruct(h *Heap, structID int, fields []Value) *ObjStruct {
	cp := make([]Value, len(fields))
	copy(cp, fields)
	return registerObj(h, &ObjStruct{StructID: structID, Fields: cp})
}

func (s *ObjStruct) String() string {
	return fmt.Sprintf("struct#%d(%d fields)", s.StructID, len(s.Fields))
}
func (s *ObjStruct) Type() string { return "struct" }
func (s *ObjStruct) trace(gc *gcState) {
	for _, v := range s.Fields {
		gc.gray_(v)
	}
}
func (s *ObjStruct) approxSize() int { return 24 + len(s.Fields)*16 }

func (s *ObjStruct) getField(i int) (Value, error) {
	if i < 0 || i >= len(s.Fields) {
		return Nil, fmt.Errorf("vm: struct field index %d out of range [0,%d)", i, len(s.Fields))
	}
	return s.Fields[i], nil
}

func (s *ObjStruct) setField(i int, v Value) error {
	if i < 0 || i >= len(s.Fields) {
		return fmt.Errorf("vm: struct field index %d out of range [0,%d)", i, len(s.Fields))
	}
	s.Fields[i] = v
	return nil
}
