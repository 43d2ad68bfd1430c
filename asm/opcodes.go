package asm

import (
	"fmt"
	"strings"

	"github.com/mna/embervm/vm"
)

// none is an opSpec.operand for zero-operand opcodes.
func none(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 0 {
		return nil, fmt.Errorf("%s takes no operands", in.op)
	}
	return nil, nil
}

func opU8(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("%s takes one u8 operand", in.op)
	}
	v, err := u8(in.operand[0])
	if err != nil {
		return nil, err
	}
	return []byte{v}, nil
}

func opU16(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("%s takes one u16 operand", in.op)
	}
	v, err := u16(in.operand[0])
	if err != nil {
		return nil, err
	}
	return beU16(v), nil
}

// opU32Label encodes a label reference as a u32 absolute byte offset (CALL,
// TAILCALL). During the size pass (emit==false) the label need not resolve
// yet; a placeholder zero is returned since only the length matters.
func opU32Label(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("%s takes one label operand", in.op)
	}
	if !emit {
		return make([]byte, 4), nil
	}
	target, err := a.resolveLabel(strings.TrimPrefix(in.operand[0], "@"))
	if err != nil {
		return nil, err
	}
	return beU32(target), nil
}

func opFind(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 2 {
		return nil, fmt.Errorf("FIND takes frameIdx and slotIdx operands")
	}
	frame, err := u16(in.operand[0])
	if err != nil {
		return nil, err
	}
	slot, err := u16(in.operand[1])
	if err != nil {
		return nil, err
	}
	return append(beU16(frame), beU16(slot)...), nil
}

func opOffset(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("OFFSET takes one i16 operand")
	}
	v, err := i16(in.operand[0])
	if err != nil {
		return nil, err
	}
	return beI16(v), nil
}

func opCallForeign(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("CALL_FOREIGN takes one u16 index operand")
	}
	v, err := u16(in.operand[0])
	if err != nil {
		return nil, err
	}
	return beU16(v), nil
}

// opClosure encodes CLOSURE/RECURSIVE: label, u8 paramCount, u16
// capturedCount, then capturedCount * (u16 frame, u16 slot).
func opClosure(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) < 2 || (len(in.operand)-2)%2 != 0 {
		return nil, fmt.Errorf("%s takes label, paramCount, then (frame slot) pairs", in.op)
	}
	var target uint32
	if emit {
		t, err := a.resolveLabel(strings.TrimPrefix(in.operand[0], "@"))
		if err != nil {
			return nil, err
		}
		target = t
	}
	paramCount, err := u8(in.operand[1])
	if err != nil {
		return nil, err
	}
	pairs := in.operand[2:]
	capturedCount := uint16(len(pairs) / 2)

	out := append(beU32(target), paramCount)
	out = append(out, beU16(capturedCount)...)
	for i := 0; i+1 < len(pairs); i += 2 {
		frame, err := u16(pairs[i])
		if err != nil {
			return nil, err
		}
		slot, err := u16(pairs[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, beU16(frame)...)
		out = append(out, beU16(slot)...)
	}
	return out, nil
}

// opHandle encodes HANDLE: i16 afterDelta (given as a label, converted to a
// delta from the end of this instruction during emission), u32 handleId,
// u8 paramCount, u8 handlerCount.
func opHandle(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 4 {
		return nil, fmt.Errorf("HANDLE takes afterLabel, handleId, paramCount, handlerCount")
	}
	var delta int16
	if emit {
		target, err := a.resolveLabel(strings.TrimPrefix(in.operand[0], "@"))
		if err != nil {
			return nil, err
		}
		// ip at the time HANDLE reads afterDelta is the offset just past this
		// instruction's fixed-size operands (1 opcode byte + 2 + 4 + 1 + 1 =
		// 9 bytes from the opcode byte); compute it from the label table
		// entry recorded for this instruction's own position, which the
		// assembler does not track per-instruction, so instead resolve
		// relative to the instruction's start plus its fixed width.
		delta = int16(int(target) - (a.currentInstrEnd))
	}
	handleID, err := u32(in.operand[1])
	if err != nil {
		return nil, err
	}
	paramCount, err := u8(in.operand[2])
	if err != nil {
		return nil, err
	}
	handlerCount, err := u8(in.operand[3])
	if err != nil {
		return nil, err
	}
	out := beI16(delta)
	out = append(out, beU32(handleID)...)
	out = append(out, paramCount, handlerCount)
	return out, nil
}

func opMarkID(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 1 {
		return nil, fmt.Errorf("%s takes one handleId operand", in.op)
	}
	v, err := u32(in.operand[0])
	if err != nil {
		return nil, err
	}
	return beU32(v), nil
}

func opStructNew(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 2 {
		return nil, fmt.Errorf("STRUCT_NEW takes structId and fieldCount operands")
	}
	structID, err := u16(in.operand[0])
	if err != nil {
		return nil, err
	}
	fieldCount, err := u8(in.operand[1])
	if err != nil {
		return nil, err
	}
	return append(beU16(structID), fieldCount), nil
}

func opEscapeReact(a *assembler, in instr, emit bool) ([]byte, error) {
	if len(in.operand) != 2 {
		return nil, fmt.Errorf("%s takes handleId and handlerIdx operands", in.op)
	}
	handleID, err := u32(in.operand[0])
	if err != nil {
		return nil, err
	}
	handlerIdx, err := u8(in.operand[1])
	if err != nil {
		return nil, err
	}
	return append(beU32(handleID), handlerIdx), nil
}

var opcodeTable = map[string]opSpec{
	"NOP":                   {vm.OpNop, none},
	"ABORT":                 {vm.OpAbort, opU8},
	"OFFSET":                {vm.OpOffset, opOffset},
	"CALL":                  {vm.OpCall, opU32Label},
	"TAILCALL":              {vm.OpTailcall, opU32Label},
	"RETURN":                {vm.OpReturn, none},
	"CONSTANT":              {vm.OpConstant, opU8},
	"NEGATE":                {vm.OpNegate, none},
	"ADD":                   {vm.OpAdd, none},
	"SUBTRACT":              {vm.OpSubtract, none},
	"MULTIPLY":              {vm.OpMultiply, none},
	"DIVIDE":                {vm.OpDivide, none},
	"EQUAL":                 {vm.OpEqual, none},
	"GREATER":               {vm.OpGreater, none},
	"LESS":                  {vm.OpLess, none},
	"TRUE":                  {vm.OpTrue, none},
	"FALSE":                 {vm.OpFalse, none},
	"NOT":                   {vm.OpNot, none},
	"BOOL_AND":              {vm.OpBoolAnd, none},
	"BOOL_OR":               {vm.OpBoolOr, none},
	"BOOL_EQ":               {vm.OpBoolEq, none},
	"BOOL_NEQ":              {vm.OpBoolNeq, none},
	"CONCAT":                {vm.OpConcat, none},
	"STORE":                 {vm.OpStore, opU8},
	"FIND":                  {vm.OpFind, opFind},
	"FORGET":                {vm.OpForget, none},
	"CLOSURE":               {vm.OpClosure, opClosure},
	"RECURSIVE":             {vm.OpRecursive, opClosure},
	"MUTUAL":                {vm.OpMutual, opU8},
	"CALL_CLOSURE":          {vm.OpCallClosure, none},
	"TAILCALL_CLOSURE":      {vm.OpTailcallClosure, none},
	"CLOSURE_ONCE":          {vm.OpClosureOnce, none},
	"CLOSURE_ONCE_TAIL":     {vm.OpClosureOnceTail, none},
	"CLOSURE_MANY":          {vm.OpClosureMany, none},
	"HANDLE":                {vm.OpHandle, opHandle},
	"INJECT":                {vm.OpInject, opMarkID},
	"EJECT":                 {vm.OpEject, opMarkID},
	"ESCAPE":                {vm.OpEscape, opEscapeReact},
	"REACT":                 {vm.OpReact, opEscapeReact},
	"COMPLETE":              {vm.OpComplete, none},
	"CALL_CONTINUATION":     {vm.OpCallContinuation, none},
	"TAILCALL_CONTINUATION": {vm.OpTailcallContinuation, none},
	"ZAP":                   {vm.OpZap, none},
	"SWAP":                  {vm.OpSwap, none},
	"DUP":                   {vm.OpDup, none},
	"DUP2":                  {vm.OpDup2, none},
	"EXCH":                  {vm.OpExch, none},
	"LIST_NIL":              {vm.OpListNil, none},
	"LIST_CONS":             {vm.OpListCons, none},
	"LIST_HEAD":             {vm.OpListHead, none},
	"LIST_TAIL":             {vm.OpListTail, none},
	"LIST_IS_EMPTY":         {vm.OpListIsEmpty, none},
	"LIST_APPEND":           {vm.OpListAppend, none},
	"ARRAY_NEW":             {vm.OpArrayNew, opU8},
	"ARRAY_FILL":            {vm.OpArrayFill, none},
	"ARRAY_SNOC":            {vm.OpArraySnoc, none},
	"ARRAY_GET":             {vm.OpArrayGet, none},
	"ARRAY_SET":             {vm.OpArraySet, none},
	"ARRAY_LEN":             {vm.OpArrayLen, none},
	"SLICE_NEW":             {vm.OpSliceNew, none},
	"BYTE_ARRAY_NEW":        {vm.OpByteArrayNew, opU8},
	"BYTE_ARRAY_FILL":       {vm.OpByteArrayFill, none},
	"BYTE_ARRAY_SNOC":       {vm.OpByteArraySnoc, none},
	"BYTE_ARRAY_GET":        {vm.OpByteArrayGet, none},
	"BYTE_ARRAY_SET":        {vm.OpByteArraySet, none},
	"BYTE_ARRAY_LEN":        {vm.OpByteArrayLen, none},
	"BYTE_SLICE_NEW":        {vm.OpByteSliceNew, none},
	"MAP_NEW":               {vm.OpMapNew, opU16},
	"MAP_GET":               {vm.OpMapGet, none},
	"MAP_SET":               {vm.OpMapSet, none},
	"MAP_DELETE":            {vm.OpMapDelete, none},
	"MAP_LEN":               {vm.OpMapLen, none},
	"STRUCT_NEW":            {vm.OpStructNew, opStructNew},
	"STRUCT_GET":            {vm.OpStructGet, opU8},
	"STRUCT_SET":            {vm.OpStructSet, opU8},
	"REF_NEW":               {vm.OpRefNew, none},
	"REF_GET":               {vm.OpRefGet, none},
	"REF_SET":               {vm.OpRefSet, none},
	"CALL_FOREIGN":          {vm.OpCallForeign, opCallForeign},
}
