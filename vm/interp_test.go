package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeU32 appends a big-endian u32 label operand inline, for CALL/TAILCALL
// style opcodes whose target is just a literal byte offset in these tests
// (no real assembler involved).
func writeU32(target *VM, line int, v uint32) {
	target.WriteChunk(byte(v>>24), line)
	target.WriteChunk(byte(v>>16), line)
	target.WriteChunk(byte(v>>8), line)
	target.WriteChunk(byte(v), line)
}

func TestInterpArithmetic(t *testing.T) {
	target := NewVM(Config{})
	c1, err := target.AddConstant(Double(4))
	require.NoError(t, err)
	c2, err := target.AddConstant(Double(3))
	require.NoError(t, err)

	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(c1, 1)
	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(c2, 1)
	target.WriteChunk(byte(OpAdd), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	assert.True(t, Equal(Double(7), target.RootFiber().peek(0)))
}

func TestInterpBoolOps(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpTrue), 1)
	target.WriteChunk(byte(OpFalse), 1)
	target.WriteChunk(byte(OpBoolAnd), 1)
	target.WriteChunk(byte(OpNot), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	assert.True(t, Equal(True, target.RootFiber().peek(0)), "not(true && false) == true")
}

func TestInterpStackManipulation(t *testing.T) {
	target := NewVM(Config{})
	c1, _ := target.AddConstant(Double(1))
	c2, _ := target.AddConstant(Double(2))
	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(c1, 1)
	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(c2, 1)
	target.WriteChunk(byte(OpSwap), 1)
	target.WriteChunk(byte(OpDup), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	fiber := target.RootFiber()
	require.Equal(t, 3, fiber.valueCount())
	assert.True(t, Equal(Double(1), fiber.peek(0)))
	assert.True(t, Equal(Double(1), fiber.peek(1)))
	assert.True(t, Equal(Double(2), fiber.peek(2)))
}

func TestInterpListOperations(t *testing.T) {
	target := NewVM(Config{})
	c1, _ := target.AddConstant(Double(1))
	target.WriteChunk(byte(OpListNil), 1)
	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(c1, 1)
	target.WriteChunk(byte(OpListCons), 1)
	target.WriteChunk(byte(OpDup), 1)
	target.WriteChunk(byte(OpListIsEmpty), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	fiber := target.RootFiber()
	require.Equal(t, 2, fiber.valueCount())
	assert.True(t, Equal(False, fiber.peek(0)), "a cons cell is never empty")
	cell, ok := fiber.peek(1).AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.True(t, Equal(Double(1), cell.Head))
	assert.True(t, cell.Tail.IsNil())
}

func TestInterpCallAndReturn(t *testing.T) {
	target := NewVM(Config{})
	c1, _ := target.AddConstant(Double(42))

	// main: CALL @callee; ABORT 0
	target.WriteChunk(byte(OpCall), 1)
	operandStart := len(target.Block().Code)
	writeU32(target, 1, 0) // patched below once the callee's offset is known
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	calleeStart := len(target.Block().Code)
	code := target.Block().Code
	code[operandStart] = byte(calleeStart >> 24)
	code[operandStart+1] = byte(calleeStart >> 16)
	code[operandStart+2] = byte(calleeStart >> 8)
	code[operandStart+3] = byte(calleeStart)

	// callee: CONSTANT 42; RETURN
	target.WriteChunk(byte(OpConstant), 2)
	target.WriteChunk(c1, 2)
	target.WriteChunk(byte(OpReturn), 2)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	assert.True(t, Equal(Double(42), target.RootFiber().peek(0)))
}

func TestInterpConstantOutOfRangeIsFatal(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpConstant), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	assert.Equal(t, ResultRuntimeError, res)
	assert.Error(t, err)
}

func TestInterpZapOnEmptyStackIsFatalNotPanic(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpZap), 1)

	assert.NotPanics(t, func() {
		res, _, err := target.Interpret(target.RootFiber())
		assert.Equal(t, ResultRuntimeError, res)
		assert.Error(t, err)
	})
}

func TestInterpAbortReturnsItsCode(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(7, 1)

	res, code, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	assert.Equal(t, 7, code)
}

func TestInterpNopThenEndOfCodeIsSuccess(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpNop), 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res)
}

func TestInterpCallForeignInvokesRegisteredFunction(t *testing.T) {
	target := NewVM(Config{})
	called := false
	idx, err := target.AddForeign(func(vm *VM, fiber *ObjFiber) {
		called = true
		fiber.Push(Double(1234))
	})
	require.NoError(t, err)

	target.WriteChunk(byte(OpCallForeign), 1)
	target.WriteChunk(byte(idx>>8), 1)
	target.WriteChunk(byte(idx), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	res, _, err := target.Interpret(target.RootFiber())
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
	assert.True(t, called)
	assert.True(t, Equal(Double(1234), target.RootFiber().peek(0)))
}

func TestInterpCallForeignSuspendsFiber(t *testing.T) {
	target := NewVM(Config{})
	var captured *ObjForeignResume
	idx, err := target.AddForeign(func(vm *VM, fiber *ObjFiber) {
		fiber.Suspended = true
		captured = NewForeignResume(vm, fiber)
	})
	require.NoError(t, err)

	target.WriteChunk(byte(OpCallForeign), 1)
	target.WriteChunk(byte(idx>>8), 1)
	target.WriteChunk(byte(idx), 1)
	target.WriteChunk(byte(OpAbort), 1)
	target.WriteChunk(0, 1)

	fiber := target.RootFiber()
	res, _, err := target.Interpret(fiber)
	require.NoError(t, err)
	assert.Equal(t, ResultSuspended, res)
	require.NotNil(t, captured)

	captured.Resume(Double(1))
	res, _, err = target.Interpret(fiber)
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res)
}
