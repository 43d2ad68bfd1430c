package vm

import "fmt"

// Opcode is one instruction in a CodeBlock's bytecode stream. Operand
// widths are fixed per opcode and encoded big-endian; see
// asm's opcodeTable (asm/opcodes.go) / the dispatch loop in interp.go for the authoritative
// operand layout of each opcode.
type Opcode byte

const (
	OpNop Opcode = iota

	// control
	OpAbort    // u8 code
	OpOffset   // i16 delta
	OpCall     // u32 absolute byte index
	OpTailcall // u32 absolute byte index
	OpReturn   // none

	// constants and arithmetic
	OpConstant // u8 constant index
	OpNegate
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpGreater
	OpLess
	OpTrue
	OpFalse
	OpNot
	OpBoolAnd
	OpBoolOr
	OpBoolEq
	OpBoolNeq
	OpConcat

	// variables / frames
	OpStore  // u8 slot count
	OpFind   // u16 frameIdx, u16 slotIdx
	OpForget // none

	// closures
	OpClosure         // u32 body, u8 paramCount, u16 capturedCount, captured pairs
	OpRecursive       // same operands as OpClosure
	OpMutual          // u8 count
	OpCallClosure     // none
	OpTailcallClosure // none
	OpClosureOnce
	OpClosureOnceTail
	OpClosureMany

	// handlers / continuations
	OpHandle               // i16 afterDelta, u32 handleId, u8 paramCount, u8 handlerCount
	OpInject               // u32 handleId
	OpEject                // u32 handleId
	OpEscape               // u32 handleId, u8 handlerIdx
	OpReact                // u32 handleId, u8 handlerIdx
	OpComplete             // none
	OpCallContinuation     // none
	OpTailcallContinuation // none

	// stack manipulation
	OpZap  // drop top
	OpSwap // exchange top two
	OpDup
	OpDup2
	OpExch

	// lists (immutable cons cells, general Value payload)
	OpListNil
	OpListCons
	OpListHead
	OpListTail
	OpListIsEmpty
	OpListAppend

	// arrays / slices / byte arrays
	OpArrayNew  // u8 initial length (filled with nil)
	OpArrayFill // pops n, v; fills/truncates top array to length n with v
	OpArraySnoc // pops v; appends v to the array left on top
	OpArrayGet  // pops index, array; pushes value
	OpArraySet  // pops value, index; mutates the array left on top in place
	OpArrayLen  // pops array; pushes length
	OpSliceNew  // pops length, start, source array; pushes slice
	OpByteArrayNew
	OpByteArrayFill
	OpByteArraySnoc
	OpByteArrayGet
	OpByteArraySet
	OpByteArrayLen
	OpByteSliceNew

	// maps (see object_map.go)
	OpMapNew // u16 size hint
	OpMapGet
	OpMapSet
	OpMapDelete
	OpMapLen

	// structs
	OpStructNew // u16 structID, u8 fieldCount
	OpStructGet // u8 fieldIdx
	OpStructSet // u8 fieldIdx

	// refs
	OpRefNew
	OpRefGet
	OpRefSet

	// foreign
	OpCallForeign // u16 index

	opcodeCount
)

var opcodeNames = [...]string{
	OpNop:                  "NOP",
	OpAbort:                "ABORT",
	OpOffset:               "OFFSET",
	OpCall:                 "CALL",
	OpTailcall:             "TAILCALL",
	OpReturn:               "RETURN",
	OpConstant:             "CONSTANT",
	OpNegate:               "NEGATE",
	OpAdd:                  "ADD",
	OpSubtract:             "SUBTRACT",
	OpMultiply:             "MULTIPLY",
	OpDivide:               "DIVIDE",
	OpEqual:                "EQUAL",
	OpGreater:              "GREATER",
	OpLess:                 "LESS",
	OpTrue:                 "TRUE",
	OpFalse:                "FALSE",
	OpNot:                  "NOT",
	OpBoolAnd:              "BOOL_AND",
	OpBoolOr:               "BOOL_OR",
	OpBoolEq:               "BOOL_EQ",
	OpBoolNeq:              "BOOL_NEQ",
	OpConcat:               "CONCAT",
	OpStore:                "STORE",
	OpFind:                 "FIND",
	OpForget:               "FORGET",
	OpClosure:              "CLOSURE",
	OpRecursive:            "RECURSIVE",
	OpMutual:               "MUTUAL",
	OpCallClosure:          "CALL_CLOSURE",
	OpTailcallClosure:      "TAILCALL_CLOSURE",
	OpClosureOnce:          "CLOSURE_ONCE",
	OpClosureOnceTail:      "CLOSURE_ONCE_TAIL",
	OpClosureMany:          "CLOSURE_MANY",
	OpHandle:               "HANDLE",
	OpInject:               "INJECT",
	OpEject:                "EJECT",
	OpEscape:               "ESCAPE",
	OpReact:                "REACT",
	OpComplete:             "COMPLETE",
	OpCallContinuation:     "CALL_CONTINUATION",
	OpTailcallContinuation: "TAILCALL_CONTINUATION",
	OpZap:                  "ZAP",
	OpSwap:                 "SWAP",
	OpDup:                  "DUP",
	OpDup2:                 "DUP2",
	OpExch:                 "EXCH",
	OpListNil:              "LIST_NIL",
	OpListCons:             "LIST_CONS",
	OpListHead:             "LIST_HEAD",
	OpListTail:             "LIST_TAIL",
	OpListIsEmpty:          "LIST_IS_EMPTY",
	OpListAppend:           "LIST_APPEND",
	OpArrayNew:             "ARRAY_NEW",
	OpArrayFill:            "ARRAY_FILL",
	OpArraySnoc:            "ARRAY_SNOC",
	OpArrayGet:             "ARRAY_GET",
	OpArraySet:             "ARRAY_SET",
	OpArrayLen:             "ARRAY_LEN",
	OpSliceNew:             "SLICE_NEW",
	OpByteArrayNew:         "BYTE_ARRAY_NEW",
	OpByteArrayFill:        "BYTE_ARRAY_FILL",
	OpByteArraySnoc:        "BYTE_ARRAY_SNOC",
	OpByteArrayGet:         "BYTE_ARRAY_GET",
	OpByteArraySet:         "BYTE_ARRAY_SET",
	OpByteArrayLen:         "BYTE_ARRAY_LEN",
	OpByteSliceNew:         "BYTE_SLICE_NEW",
	OpMapNew:               "MAP_NEW",
	OpMapGet:               "MAP_GET",
	OpMapSet:               "MAP_SET",
	OpMapDelete:            "MAP_DELETE",
	OpMapLen:               "MAP_LEN",
	OpStructNew:            "STRUCT_NEW",
	OpStructGet:            "STRUCT_GET",
	OpStructSet:            "STRUCT_SET",
	OpRefNew:               "REF_NEW",
	OpRefGet:               "REF_GET",
	OpRefSet:               "REF_SET",
	OpCallForeign:          "CALL_FOREIGN",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}
