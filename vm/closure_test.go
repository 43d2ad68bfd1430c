package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeLimitString(t *testing.T) {
	assert.Equal(t, "none", ResumeNone.String())
	assert.Equal(t, "once", ResumeOnce.String())
	assert.Equal(t, "once-tail", ResumeOnceTail.String())
	assert.Equal(t, "many", ResumeMany.String())
	assert.Contains(t, ResumeLimit(99).String(), "resumelimit(")
}

func TestNewClosureCopiesCaptured(t *testing.T) {
	target := NewVM(Config{})
	captured := []Value{Double(1), Double(2)}
	cl := newClosure(target.heap, 10, 1, captured, ResumeMany)

	captured[0] = Double(99)
	assert.True(t, Equal(Double(1), cl.Captured[0]), "newClosure must copy, not alias, the captured slice")
}

func TestExecMutualWiresCrossReferences(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber

	a := newClosure(target.heap, 1, 0, []Value{Double(100)}, ResumeMany)
	b := newClosure(target.heap, 2, 0, []Value{Double(200)}, ResumeMany)
	fiber.push(ObjVal(a))
	fiber.push(ObjVal(b))

	require.NoError(t, target.execMutual(fiber, 2))
	require.Equal(t, 2, fiber.valueCount())

	rebuiltA, ok := fiber.Values[0].AsObj().(*ObjClosure)
	require.True(t, ok)
	rebuiltB, ok := fiber.Values[1].AsObj().(*ObjClosure)
	require.True(t, ok)

	require.Len(t, rebuiltA.Captured, 3)
	assert.Same(t, rebuiltA, rebuiltA.Captured[0].AsObj())
	assert.Same(t, rebuiltB, rebuiltA.Captured[1].AsObj())
	assert.True(t, Equal(Double(100), rebuiltA.Captured[2]), "original captures are preserved after the cross-reference slots")

	require.Len(t, rebuiltB.Captured, 3)
	assert.Same(t, rebuiltA, rebuiltB.Captured[0].AsObj())
	assert.Same(t, rebuiltB, rebuiltB.Captured[1].AsObj())
	assert.True(t, Equal(Double(200), rebuiltB.Captured[2]))
}

func TestExecMutualErrorsOnNonClosureOperand(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.push(Double(1))
	fiber.push(ObjVal(newClosure(target.heap, 0, 0, nil, ResumeMany)))

	err := target.execMutual(fiber, 2)
	assert.Error(t, err)
}

func TestExecMutualErrorsWhenStackTooShort(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.push(ObjVal(newClosure(target.heap, 0, 0, nil, ResumeMany)))

	err := target.execMutual(fiber, 2)
	assert.Error(t, err)
}
