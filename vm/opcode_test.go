package vm

import (
	"strings"
	"testing"
)

func TestOpcodeString(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		if opcodeNames[op] == "" {
			t.Errorf("missing string representation of opcode %d", op)
		}
		if s := op.String(); strings.Contains(s, "OP(") {
			t.Errorf("invalid string representation of opcode %d", op)
		}
	}
}

func TestOpcodeStringUnknown(t *testing.T) {
	if s := Opcode(255).String(); !strings.Contains(s, "OP(") {
		t.Errorf("expected fallback format for unknown opcode, got %q", s)
	}
}
