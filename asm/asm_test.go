package asm_test

import (
	"strings"
	"testing"

	"github.com/mna/embervm/asm"
	"github.com/mna/embervm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleProgram = `
constants:
	double 1.5
	double 2.5

code:
main:
	CONSTANT 0
	CONSTANT 1
	ADD
	ABORT 0
`

func TestAssembleSimpleProgram(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	labels, err := asm.Assemble(target, simpleProgram)
	require.NoError(t, err)
	require.Contains(t, labels, "main")
	assert.Equal(t, 0, labels["main"])

	fiber := target.NewFiber(labels["main"], nil)
	res, code, err := target.Interpret(fiber)
	require.NoError(t, err)
	assert.Equal(t, vm.ResultAbort, res)
	assert.Equal(t, 0, code)
}

func TestAssembleUnknownOpcode(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	_, err := asm.Assemble(target, "code:\nmain:\n\tNOT_A_REAL_OP\n")
	require.Error(t, err)
}

func TestAssembleForwardLabelReference(t *testing.T) {
	src := `
code:
main:
	CALL @helper
	ABORT 0
helper:
	RETURN
`
	target := vm.NewVM(vm.Config{})
	labels, err := asm.Assemble(target, src)
	require.NoError(t, err)
	require.Contains(t, labels, "helper")
	assert.Greater(t, labels["helper"], labels["main"])
}

func TestDisassembleRoundTripsOpcodeNames(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	_, err := asm.Assemble(target, simpleProgram)
	require.NoError(t, err)

	out := asm.Disassemble(target.Block())
	assert.True(t, strings.Contains(out, "CONSTANT"))
	assert.True(t, strings.Contains(out, "ADD"))
	assert.True(t, strings.Contains(out, "ABORT"))
}

func TestAssembleMissingCodeSection(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	_, err := asm.Assemble(target, "constants:\n\tdouble 1.0\n")
	require.Error(t, err)
}
