package vm

import "fmt"

// ObjListCons is a singly-linked, persistent cons cell backing the
// LIST_NIL / LIST_CONS / LIST_HEAD / LIST_TAIL / LIST_IS_EMPTY / LIST_APPEND
// opcodes. The empty list is simply Nil — there is no separate "empty list"
// object.
type ObjListCons struct {
	ObjHeader
	Head Value
	Tail Value // Nil, or another *ObjListCons wrapped in a Value
}

func newListCons(h *Heap, head, tail Value) *ObjListCons {
	return registerObj(h, &ObjListCons{Head: head, Tail: tail})
}

func (l *ObjListCons) String() string { return fmt.Sprintf("cons(%p)", l) }
func (l *ObjListCons) Type() string   { return "list" }
func (l *ObjListCons) trace(gc *gcState) {
	gc.gray_(l.Head)
	gc.gray_(l.Tail)
}
func (l *ObjListCons) approxSize() int { return 48 }

// listAppend implements LIST_APPEND: walks prefix, rebuilding each cell
// (since the original prefix may be shared by other lists), and terminates
// the rebuilt chain with suffix instead of Nil.
func listAppend(h *Heap, prefix, suffix Value) Value {
	if prefix.IsNil() {
		return suffix
	}
	cell, ok := prefix.AsObj().(*ObjListCons)
	if !ok {
		return suffix
	}
	return ObjVal(newListCons(h, cell.Head, listAppend(h, cell.Tail, suffix)))
}
