package battery_test

import (
	"testing"
	"time"

	"github.com/mna/embervm/internal/battery"
	"github.com/mna/embervm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAssignsDistinctIndices(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	idx, err := battery.Register(target)
	require.NoError(t, err)
	assert.NotEqual(t, idx.ClockMS, idx.SleepSuspend)
}

func TestClockMSPushesADouble(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	idx, err := battery.Register(target)
	require.NoError(t, err)

	target.WriteChunk(byte(vm.OpCallForeign), 1)
	target.WriteChunk(byte(idx.ClockMS>>8), 1)
	target.WriteChunk(byte(idx.ClockMS), 1)
	target.WriteChunk(byte(vm.OpAbort), 1)
	target.WriteChunk(0, 1)

	fiber := target.NewFiber(0, nil)
	res, _, err := target.Interpret(fiber)
	require.NoError(t, err)
	assert.Equal(t, vm.ResultAbort, res)
	require.Equal(t, 1, fiber.ValueCount())
	assert.Greater(t, fiber.Peek(0).AsDouble(), float64(0))
}

func TestSleepSuspendResumesAfterDelay(t *testing.T) {
	target := vm.NewVM(vm.Config{})
	idx, err := battery.Register(target)
	require.NoError(t, err)

	target.AddConstant(vm.Double(20))
	target.WriteChunk(byte(vm.OpConstant), 1)
	target.WriteChunk(0, 1)
	target.WriteChunk(byte(vm.OpCallForeign), 1)
	target.WriteChunk(byte(idx.SleepSuspend>>8), 1)
	target.WriteChunk(byte(idx.SleepSuspend), 1)
	target.WriteChunk(byte(vm.OpAbort), 1)
	target.WriteChunk(0, 1)

	fiber := target.NewFiber(0, nil)
	res, _, err := target.Interpret(fiber)
	require.NoError(t, err)
	require.Equal(t, vm.ResultSuspended, res)

	require.Eventually(t, func() bool {
		return !fiber.Suspended
	}, time.Second, 5*time.Millisecond)

	res, _, err = target.Interpret(fiber)
	require.NoError(t, err)
	assert.Equal(t, vm.ResultAbort, res)
}
