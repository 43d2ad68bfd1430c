package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberValueStackLifecycle(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber

	fiber.push(Double(1))
	fiber.push(Double(2))
	fiber.push(Double(3))

	assert.Equal(t, 3, fiber.valueCount())
	assert.True(t, Equal(Double(3), fiber.peek(0)))
	assert.True(t, Equal(Double(2), fiber.peek(1)))

	assert.True(t, Equal(Double(3), fiber.pop()))
	assert.Equal(t, 2, fiber.valueCount())
}

func TestFiberDropValues(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.push(Double(1))
	fiber.push(Double(2))
	fiber.push(Double(3))

	fiber.dropValues(2)
	assert.Equal(t, 1, fiber.valueCount())
	assert.True(t, Equal(Double(1), fiber.peek(0)))
}

func TestFiberFrameStackLifecycle(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	f1 := newVarFrame(target.heap, nil)
	f2 := newVarFrame(target.heap, nil)

	fiber.pushFrame(f1)
	fiber.pushFrame(f2)
	assert.Equal(t, 2, fiber.frameCount())
	assert.Same(t, f2, fiber.peekFrame(0))
	assert.Same(t, f1, fiber.peekFrame(1))

	popped := fiber.popFrame()
	assert.Same(t, f2, popped)
	assert.Equal(t, 1, fiber.frameCount())
}

func TestFiberTruncateFrames(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.pushFrame(newVarFrame(target.heap, nil))
	fiber.pushFrame(newVarFrame(target.heap, nil))
	fiber.pushFrame(newVarFrame(target.heap, nil))

	fiber.truncateFrames(1)
	assert.Equal(t, 1, fiber.frameCount())
}

func TestFiberRootsScratchpad(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.pushRoot(Double(9))
	require.Len(t, fiber.Roots, 1)
	fiber.popRoot()
	assert.Empty(t, fiber.Roots)
}

func TestFiberExportedPushPopMirrorInternal(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber

	fiber.Push(Double(42))
	assert.Equal(t, 1, fiber.ValueCount())
	assert.True(t, Equal(Double(42), fiber.Peek(0)))
	assert.True(t, Equal(Double(42), fiber.Pop()))
	assert.Equal(t, 0, fiber.ValueCount())
}

func TestForeignResumeClearsSuspensionAndPushesResult(t *testing.T) {
	target := NewVM(Config{})
	fiber := target.fiber
	fiber.Suspended = true

	resume := NewForeignResume(target, fiber)
	resume.Resume(Bool(true))

	assert.False(t, fiber.Suspended)
	assert.True(t, Equal(True, fiber.pop()))
}
