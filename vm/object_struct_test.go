package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructGetSetField(t *testing.T) {
	target := NewVM(Config{})
	s := newStruct(target.heap, 3, []Value{Double(1), Double(2)})

	v, err := s.getField(1)
	require.NoError(t, err)
	assert.True(t, Equal(Double(2), v))

	require.NoError(t, s.setField(0, Double(10)))
	v, err = s.getField(0)
	require.NoError(t, err)
	assert.True(t, Equal(Double(10), v))

	_, err = s.getField(5)
	assert.Error(t, err)
	assert.Error(t, s.setField(-1, Nil))
}

func TestNewStructCopiesFields(t *testing.T) {
	target := NewVM(Config{})
	fields := []Value{Double(1)}
	s := newStruct(target.heap, 0, fields)
	fields[0] = Double(99)
	assert.True(t, Equal(Double(1), s.Fields[0]))
}

func TestListConsAndAppend(t *testing.T) {
	target := NewVM(Config{})
	h := target.heap

	list := ObjVal(newListCons(h, Double(1), ObjVal(newListCons(h, Double(2), Nil))))
	other := ObjVal(newListCons(h, Double(3), Nil))

	joined := listAppend(h, list, other)

	cell, ok := joined.AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.True(t, Equal(Double(1), cell.Head))

	cell2, ok := cell.Tail.AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.True(t, Equal(Double(2), cell2.Head))

	cell3, ok := cell2.Tail.AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.True(t, Equal(Double(3), cell3.Head))
	assert.True(t, cell3.Tail.IsNil())
}

func TestListAppendToNilPrefixReturnsSuffix(t *testing.T) {
	target := NewVM(Config{})
	suffix := ObjVal(newListCons(target.heap, Double(1), Nil))
	assert.True(t, Equal(suffix, listAppend(target.heap, Nil, suffix)))
}

func TestListAppendSharesPrefixWithoutMutatingIt(t *testing.T) {
	target := NewVM(Config{})
	h := target.heap
	shared := ObjVal(newListCons(h, Double(1), Nil))

	joined := listAppend(h, shared, ObjVal(newListCons(h, Double(2), Nil)))

	original, ok := shared.AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.True(t, original.Tail.IsNil(), "the original cell is untouched; listAppend rebuilds a new chain")

	rebuilt, ok := joined.AsObj().(*ObjListCons)
	require.True(t, ok)
	assert.NotSame(t, original, rebuilt)
}
