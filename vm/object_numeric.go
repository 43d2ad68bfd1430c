package vm

import "fmt"

// ObjI64, ObjU64 and ObjDouble box numerics the uniform Value encoding can't
// carry unboxed.
//
// This VM's Value is a tagged union (vm/value.go), not NaN-boxing, so an
// inline float64 already has full precision; these boxed variants exist for
// I64/U64, which a tagged-union Value likewise cannot inline without a
// dedicated Kind (adding one would be a reasonable future optimization), and
// for any embedder that wants an unambiguously-64-bit integer distinct from
// the double-precision float Value already provides.

type ObjI64 struct {
	ObjHeader
	V int64
}

func newI64(h *Heap, v int64) *ObjI64 { return registerObj(h, &ObjI64{V: v}) }

func (o *ObjI64) String() string    { return fmt.Sprintf("%d", o.V) }
func (o *ObjI64) Type() string      { return "i64" }
func (o *ObjI64) trace(gc *gcState) {}
func (o *ObjI64) approxSize() int   { return 24 }

type ObjU64 struct {
	ObjHeader
	V uint64
}

func newU64(h *Heap, v uint64) *ObjU64 { return registerObj(h, &ObjU64{V: v}) }

func (o *ObjU64) String() string    { return fmt.Sprintf("%d", o.V) }
func (o *ObjU64) Type() string      { return "u64" }
func (o *ObjU64) trace(gc *gcState) {}
func (o *ObjU64) approxSize() int   { return 24 }

type ObjDouble struct {
	ObjHeader
	V float64
}

func newDouble(h *Heap, v float64) *ObjDouble { return registerObj(h, &ObjDouble{V: v}) }

func (o *ObjDouble) String() string    { return fmt.Sprintf("%g", o.V) }
func (o *ObjDouble) Type() string      { return "double" }
func (o *ObjDouble) trace(gc *gcState) {}
func (o *ObjDouble) approxSize() int   { return 24 }
