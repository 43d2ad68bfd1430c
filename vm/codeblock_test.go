package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeBlockWriteChunkTracksLines(t *testing.T) {
	target := NewVM(Config{})
	block := target.Block()
	block.WriteChunk(byte(OpNop), 10)
	block.WriteChunk(byte(OpReturn), 11)

	assert.Equal(t, 10, block.LineFor(0))
	assert.Equal(t, 11, block.LineFor(1))
	assert.Equal(t, -1, block.LineFor(2))
	assert.Equal(t, -1, block.LineFor(-1))
}

func TestCodeBlockAddConstantEnforcesLimit(t *testing.T) {
	target := NewVM(Config{})
	block := target.Block()
	for i := 0; i < 256; i++ {
		idx, err := block.AddConstant(Double(float64(i)))
		require.NoError(t, err)
		assert.Equal(t, byte(i), idx)
	}
	_, err := block.AddConstant(Double(256))
	assert.Error(t, err)
}

func TestCodeBlockWriteLabelRecordsName(t *testing.T) {
	target := NewVM(Config{})
	target.WriteChunk(byte(OpNop), 1)
	target.WriteLabel(1, "after")

	block := target.Block()
	require.Len(t, block.LabelAt, 1)
	assert.Equal(t, 1, block.LabelAt[0])
	assert.Equal(t, "after", block.LabelText[0].String())
}
