package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefGetSet(t *testing.T) {
	target := NewVM(Config{})
	rt := newRefTable()
	r := newRef(target.heap, rt, Double(1))

	v, ok := r.Get()
	require.True(t, ok)
	assert.True(t, Equal(Double(1), v))

	r.Set(Double(2))
	v, ok = r.Get()
	require.True(t, ok)
	assert.True(t, Equal(Double(2), v))
}

func TestRefTracesItsReferent(t *testing.T) {
	target := NewVM(Config{})
	rt := newRefTable()
	referent := newString(target.heap, "held")
	r := newRef(target.heap, rt, ObjVal(referent))

	var root *ObjRef
	target.heap.roots = func(gc *gcState) { gc.grayObj(root) }
	root = r

	target.heap.collect()
	assert.Equal(t, 2, countLive(target.heap), "the ref and the string it currently points at both survive")
}

func TestRefWithNilTableTracesSafely(t *testing.T) {
	r := &ObjRef{Key: 1, Table: nil}
	gc := &gcState{}
	assert.NotPanics(t, func() { r.trace(gc) })
}
