package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefTableBasicLifecycle(t *testing.T) {
	rt := newRefTable()
	k := rt.NewRef(Double(1))

	v, ok := rt.Get(k)
	require.True(t, ok)
	assert.Equal(t, Double(1), v)

	require.True(t, rt.Set(k, Double(2)))
	v, ok = rt.Get(k)
	require.True(t, ok)
	assert.Equal(t, Double(2), v)

	require.True(t, rt.Delete(k))
	_, ok = rt.Get(k)
	assert.False(t, ok)
}

func TestRefTableUnknownKeyOperations(t *testing.T) {
	rt := newRefTable()
	_, ok := rt.Get(999)
	assert.False(t, ok)
	assert.False(t, rt.Set(999, Double(1)))
	assert.False(t, rt.Delete(999))
}

func TestRefTableKeysAreNeverReused(t *testing.T) {
	rt := newRefTable()
	k1 := rt.NewRef(Double(1))
	rt.Delete(k1)
	k2 := rt.NewRef(Double(2))
	assert.NotEqual(t, k1, k2)
}

func TestRefTableGrowsPastLoadFactor(t *testing.T) {
	rt := newRefTable()
	initialCap := len(rt.slots)

	var keys []uint64
	for i := 0; i < initialCap; i++ {
		keys = append(keys, rt.NewRef(Double(float64(i))))
	}
	assert.Greater(t, len(rt.slots), initialCap, "table should have grown past its starting capacity")

	for _, k := range keys {
		v, ok := rt.Get(k)
		require.True(t, ok)
		assert.Equal(t, Kind(KindDouble), v.kind)
	}
}

func TestRefTableShrinksAfterBulkDelete(t *testing.T) {
	rt := newRefTable()
	var keys []uint64
	for i := 0; i < 64; i++ {
		keys = append(keys, rt.NewRef(Double(float64(i))))
	}
	grownCap := len(rt.slots)
	require.Greater(t, grownCap, refTableMinCapacity)

	for _, k := range keys {
		rt.Delete(k)
	}
	assert.Less(t, len(rt.slots), grownCap)
	assert.GreaterOrEqual(t, len(rt.slots), refTableMinCapacity)
}

func TestWangHash64IsDeterministic(t *testing.T) {
	assert.Equal(t, wangHash64(42), wangHash64(42))
	assert.NotEqual(t, wangHash64(42), wangHash64(43))
}
