package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTagAccessorsPanicOnMismatch(t *testing.T) {
	assert.Panics(t, func() { Nil.AsBool() })
	assert.Panics(t, func() { Nil.AsDouble() })
	assert.Panics(t, func() { Nil.AsObj() })
	assert.Panics(t, func() { True.AsDouble() })
	assert.Panics(t, func() { Double(1).AsBool() })
}

func TestValueTruth(t *testing.T) {
	assert.False(t, Nil.Truth())
	assert.False(t, False.Truth())
	assert.True(t, True.Truth())
	assert.True(t, Double(0).Truth())
}

func TestEqualBitIdentityForImmediates(t *testing.T) {
	assert.True(t, Equal(Nil, Nil))
	assert.True(t, Equal(True, True))
	assert.False(t, Equal(True, False))
	assert.True(t, Equal(Double(1.5), Double(1.5)))
	assert.False(t, Equal(Double(1.5), Double(2.5)))
	assert.False(t, Equal(Nil, False))
}

func TestEqualPointerIdentityForObjects(t *testing.T) {
	h := newHeap(Config{})
	s1 := newString(h, "a")
	s2 := newString(h, "a")
	require.True(t, Equal(ObjVal(s1), ObjVal(s1)))
	assert.False(t, Equal(ObjVal(s1), ObjVal(s2)), "distinct allocations compare unequal even with equal contents")
}

func TestObjValPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ObjVal(nil) })
}

func TestTypeName(t *testing.T) {
	h := newHeap(Config{})
	assert.Equal(t, "nil", Nil.TypeName())
	assert.Equal(t, "bool", True.TypeName())
	assert.Equal(t, "double", Double(1).TypeName())
	assert.Equal(t, "string", ObjVal(newString(h, "x")).TypeName())
}
