package asm

import (
	"fmt"
	"strings"

	"github.com/mna/embervm/vm"
)

// Disassemble renders block's bytecode as text laid out like the form
// Assemble reads: a "constants:" section, a "code:" section, and the label
// names the CodeBlock recorded via WriteLabel/asm's "label:" lines (see
// vm.ObjCodeBlock.LabelAt/LabelText). The output is not itself accepted by
// Assemble: constants are listed as "; index: value" lines, CALL/TAILCALL/
// CLOSURE targets as raw "@offset" byte offsets, and HANDLE's delta as
// "afterDelta=N". Purely observational; it never mutates block.
func Disassemble(block *vm.ObjCodeBlock) string {
	var b strings.Builder

	labelAt := make(map[int]string, len(block.LabelAt))
	for i, at := range block.LabelAt {
		if i < len(block.LabelText) {
			labelAt[at] = block.LabelText[i].String()
		}
	}

	fmt.Fprintf(&b, "constants:\n")
	for i, c := range block.Constants {
		fmt.Fprintf(&b, "\t; %d: %s\n", i, c.String())
	}

	fmt.Fprintf(&b, "code:\n")
	code := block.Code
	ip := 0
	for ip < len(code) {
		if name, ok := labelAt[ip]; ok {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		start := ip
		op := vm.Opcode(code[ip])
		ip++

		text, width, err := decodeOperand(op, code, ip)
		if err != nil {
			fmt.Fprintf(&b, "\t; %d: %s  ; %v\n", start, op, err)
			break
		}
		ip += width

		if text == "" {
			fmt.Fprintf(&b, "\t%s\n", op)
		} else {
			fmt.Fprintf(&b, "\t%s %s\n", op, text)
		}
	}
	return b.String()
}

// decodeOperand mirrors the encoding opcodeTable describes, in the opposite
// direction: given the opcode and a position just past it, it returns the
// operand's textual rendering and its width in bytes.
func decodeOperand(op vm.Opcode, code []byte, ip int) (string, int, error) {
	need := func(n int) error {
		if ip+n > len(code) {
			return fmt.Errorf("truncated operand for %s", op)
		}
		return nil
	}

	switch op {
	case vm.OpNop, vm.OpReturn, vm.OpNegate, vm.OpAdd, vm.OpSubtract, vm.OpMultiply,
		vm.OpDivide, vm.OpEqual, vm.OpGreater, vm.OpLess, vm.OpTrue, vm.OpFalse,
		vm.OpNot, vm.OpBoolAnd, vm.OpBoolOr, vm.OpBoolEq, vm.OpBoolNeq, vm.OpConcat,
		vm.OpForget, vm.OpCallClosure, vm.OpTailcallClosure, vm.OpClosureOnce,
		vm.OpClosureOnceTail, vm.OpClosureMany, vm.OpComplete, vm.OpCallContinuation,
		vm.OpTailcallContinuation, vm.OpZap, vm.OpSwap, vm.OpDup, vm.OpDup2, vm.OpExch,
		vm.OpListNil, vm.OpListCons, vm.OpListHead, vm.OpListTail, vm.OpListIsEmpty,
		vm.OpListAppend, vm.OpArrayFill, vm.OpArraySnoc, vm.OpArrayGet, vm.OpArraySet,
		vm.OpArrayLen, vm.OpSliceNew, vm.OpByteArrayFill, vm.OpByteArraySnoc,
		vm.OpByteArrayGet, vm.OpByteArraySet, vm.OpByteArrayLen, vm.OpByteSliceNew,
		vm.OpMapGet, vm.OpMapSet, vm.OpMapDelete, vm.OpMapLen, vm.OpRefNew, vm.OpRefGet,
		vm.OpRefSet:
		return "", 0, nil

	case vm.OpAbort, vm.OpConstant, vm.OpStore, vm.OpMutual, vm.OpArrayNew, vm.OpByteArrayNew,
		vm.OpStructGet, vm.OpStructSet:
		if err := need(1); err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%d", code[ip]), 1, nil

	case vm.OpMapNew, vm.OpCallForeign:
		if err := need(2); err != nil {
			return "", 0, err
		}
		v := beDecodeU16(code[ip:])
		return fmt.Sprintf("%d", v), 2, nil

	case vm.OpOffset:
		if err := need(2); err != nil {
			return "", 0, err
		}
		v := int16(beDecodeU16(code[ip:]))
		return fmt.Sprintf("%d", v), 2, nil

	case vm.OpFind:
		if err := need(4); err != nil {
			return "", 0, err
		}
		frame := beDecodeU16(code[ip:])
		slot := beDecodeU16(code[ip+2:])
		return fmt.Sprintf("%d %d", frame, slot), 4, nil

	case vm.OpStructNew:
		if err := need(3); err != nil {
			return "", 0, err
		}
		structID := beDecodeU16(code[ip:])
		fieldCount := code[ip+2]
		return fmt.Sprintf("%d %d", structID, fieldCount), 3, nil

	case vm.OpCall, vm.OpTailcall:
		if err := need(4); err != nil {
			return "", 0, err
		}
		target := beDecodeU32(code[ip:])
		return fmt.Sprintf("@%d", target), 4, nil

	case vm.OpInject, vm.OpEject:
		if err := need(4); err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%d", beDecodeU32(code[ip:])), 4, nil

	case vm.OpEscape, vm.OpReact:
		if err := need(5); err != nil {
			return "", 0, err
		}
		handleID := beDecodeU32(code[ip:])
		handlerIdx := code[ip+4]
		return fmt.Sprintf("%d %d", handleID, handlerIdx), 5, nil

	case vm.OpClosure, vm.OpRecursive:
		if err := need(7); err != nil {
			return "", 0, err
		}
		target := beDecodeU32(code[ip:])
		paramCount := code[ip+4]
		capturedCount := int(beDecodeU16(code[ip+5:]))
		width := 7 + capturedCount*4
		if err := need(width); err != nil {
			return "", 0, err
		}
		var pairs strings.Builder
		for i := 0; i < capturedCount; i++ {
			off := ip + 7 + i*4
			frame := beDecodeU16(code[off:])
			slot := beDecodeU16(code[off+2:])
			fmt.Fprintf(&pairs, " %d %d", frame, slot)
		}
		return fmt.Sprintf("@%d %d%s", target, paramCount, pairs.String()), width, nil

	case vm.OpHandle:
		if err := need(8); err != nil {
			return "", 0, err
		}
		delta := int16(beDecodeU16(code[ip:]))
		handleID := beDecodeU32(code[ip+2:])
		paramCount := code[ip+6]
		handlerCount := code[ip+7]
		return fmt.Sprintf("afterDelta=%d %d %d %d", delta, handleID, paramCount, handlerCount), 8, nil

	default:
		return "", 0, fmt.Errorf("unknown opcode byte %d", byte(op))
	}
}

func beDecodeU16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beDecodeU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
