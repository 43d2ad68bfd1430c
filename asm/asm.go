// Package asm implements a human-readable/writable textual form of a
// CodeBlock, used to build test programs and reference programs without a
// source-level compiler — this core only ever consumes an already-built
// CodeBlock, never produces one from source. It also implements a
// disassembler.
//
// The format uses the same section-header-plus-indented-body shape common
// to small bytecode assemblers, adapted to this VM's flat, single-CodeBlock,
// byte-offset-addressed model: there is no per-function section here, just
// one "code:" section and a label table used to name byte offsets for
// CALL/CLOSURE/HANDLE/etc. to target symbolically.
//
//	constants:
//		double 1.5
//		string "hello"
//
//	code:
//	main:
//		CONSTANT 0
//		CALL_FOREIGN 0
//		ABORT 0
//	helper:
//		RETURN
package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/embervm/vm"
)

// Assemble parses src and writes the resulting bytecode, constants and
// labels onto target (an already-created VM's installed CodeBlock). It
// returns the byte offset of every label defined in the "code:" section, so
// callers can locate entry points (e.g. "main") to build a fiber with.
func Assemble(target *vm.VM, src string) (map[string]int, error) {
	a := &assembler{vm: target, labels: map[string]int{}}
	if err := a.run(src); err != nil {
		return nil, err
	}
	return a.labels, nil
}

type instr struct {
	line    int
	label   string // non-empty if this line only declares a label
	op      string
	operand []string
}

type assembler struct {
	vm     *vm.VM
	labels map[string]int

	// currentInstrEnd is the byte offset one past the instruction currently
	// being emitted, i.e. where the next instruction's opcode byte will land.
	// Set by emit before invoking an opSpec's operand func, for opcodes (like
	// HANDLE) whose encoded operand is a delta relative to that position.
	currentInstrEnd int
}

func (a *assembler) run(src string) error {
	lines, err := parseLines(src)
	if err != nil {
		return err
	}

	constants, code, err := splitSections(lines)
	if err != nil {
		return err
	}

	if err := a.emitConstants(constants); err != nil {
		return err
	}

	// Pass 1: compute the byte offset of every label by measuring each
	// instruction's encoded size without emitting anything yet.
	offset := len(a.vm.Block().Code)
	for _, in := range code {
		if in.label != "" {
			a.labels[in.label] = offset
			continue
		}
		size, err := encodedSize(in)
		if err != nil {
			return fmt.Errorf("line %d: %w", in.line, err)
		}
		offset += size
	}

	// Pass 2: emit, resolving @label operands against the table built above.
	for _, in := range code {
		if in.label != "" {
			a.vm.WriteLabel(len(a.vm.Block().Code), in.label)
			continue
		}
		if err := a.emit(in); err != nil {
			return fmt.Errorf("line %d: %w", in.line, err)
		}
	}
	return nil
}

func parseLines(src string) ([]instr, error) {
	var out []instr
	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			out = append(out, instr{line: lineNo, label: strings.TrimSuffix(line, ":")})
			continue
		}
		fields := strings.Fields(line)
		// A quoted string constant may contain spaces; rejoin naively isn't
		// needed here since constants are parsed in their own section with
		// one directive per line (see parseConstant).
		out = append(out, instr{line: lineNo, op: fields[0], operand: fields[1:]})
	}
	return out, sc.Err()
}

// splitSections separates the top-level "constants:" and "code:" sections.
// parseLines reads both headers as labels. The constants section is
// optional; the code section is required and comes after constants if both
// are present.
func splitSections(lines []instr) (constants, code []instr, err error) {
	i := 0
	if i < len(lines) && lines[i].label == "constants" {
		i++
		for i < len(lines) && lines[i].label != "code" {
			constants = append(constants, lines[i])
			i++
		}
	}
	if i >= len(lines) || lines[i].label != "code" {
		return nil, nil, fmt.Errorf("expected a \"code:\" section")
	}
	i++
	code = lines[i:]
	return constants, code, nil
}

func (a *assembler) emitConstants(lines []instr) error {
	for _, in := range lines {
		v, err := parseConstant(a.vm, in)
		if err != nil {
			return fmt.Errorf("line %d: %w", in.line, err)
		}
		if _, err := a.vm.AddConstant(v); err != nil {
			return fmt.Errorf("line %d: %w", in.line, err)
		}
	}
	return nil
}

func parseConstant(target *vm.VM, in instr) (vm.Value, error) {
	switch in.op {
	case "double":
		if len(in.operand) != 1 {
			return vm.Nil, fmt.Errorf("double constant needs exactly one operand")
		}
		f, err := strconv.ParseFloat(in.operand[0], 64)
		if err != nil {
			return vm.Nil, err
		}
		return vm.Double(f), nil
	case "string":
		text := strings.Join(in.operand, " ")
		text = strings.TrimPrefix(text, `"`)
		text = strings.TrimSuffix(text, `"`)
		return target.NewString(text), nil
	case "bool":
		if len(in.operand) != 1 {
			return vm.Nil, fmt.Errorf("bool constant needs exactly one operand")
		}
		return vm.Bool(in.operand[0] == "true"), nil
	default:
		return vm.Nil, fmt.Errorf("unknown constant kind %q", in.op)
	}
}

// opSpec describes one opcode's textual operand shape, for both size
// computation and emission.
type opSpec struct {
	code    vm.Opcode
	operand func(a *assembler, in instr, emit bool) ([]byte, error)
}

func encodedSize(in instr) (int, error) {
	spec, ok := opcodeTable[in.op]
	if !ok {
		return 0, fmt.Errorf("unknown opcode %q", in.op)
	}
	b, err := spec.operand(nil, in, false)
	if err != nil {
		return 0, err
	}
	return 1 + len(b), nil
}

func (a *assembler) emit(in instr) error {
	spec, ok := opcodeTable[in.op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", in.op)
	}
	size, err := encodedSize(in)
	if err != nil {
		return err
	}
	instrStart := len(a.vm.Block().Code)
	a.currentInstrEnd = instrStart + size

	a.vm.WriteChunk(byte(spec.code), in.line)
	operands, err := spec.operand(a, in, true)
	if err != nil {
		return err
	}
	for _, b := range operands {
		a.vm.WriteChunk(b, in.line)
	}
	return nil
}

func (a *assembler) resolveLabel(name string) (uint32, error) {
	off, ok := a.labels[name]
	if !ok {
		return 0, fmt.Errorf("undefined label %q", name)
	}
	return uint32(off), nil
}

func u8(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	return byte(n), err
}
func u16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	return uint16(n), err
}
func i16(s string) (int16, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	return int16(n), err
}
func u32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}

func beU16(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func beI16(v int16) []byte  { return beU16(uint16(v)) }
func beU32(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }
