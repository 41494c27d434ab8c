package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBlock(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}

func TestFrame_StatusBits(t *testing.T) {
	tests := []struct {
		status byte
		failed bool
		more   bool
		final  bool
	}{
		{0x00, true, false, false},
		{0x01, false, false, true},
		{0x7F, false, false, true},
		{0x80, false, true, false},
		{0x81, false, true, false},
		{0xFF, false, true, false},
	}

	for _, tt := range tests {
		f := Frame{Status: tt.status}
		assert.Equal(t, tt.failed, f.Failed(), "status 0x%02X", tt.status)
		assert.Equal(t, tt.more, f.More(), "status 0x%02X", tt.status)
		assert.Equal(t, tt.final, f.Final(), "status 0x%02X", tt.status)
	}
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte{StatusMore, 1, 2, 3})
	require.NoError(t, err)
	assert.True(t, f.More())
	assert.Equal(t, []byte{1, 2, 3}, f.Data)

	_, err = ParseFrame(nil)
	require.ErrorIs(t, err, ErrEmptyFrame)

	_, err = ParseFrame(make([]byte, TxCap+1))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrame_Pack(t *testing.T) {
	f := Frame{Status: StatusFinal, Data: []byte{0xAA, 0xBB}}
	assert.Equal(t, []byte{StatusFinal, 0xAA, 0xBB}, f.Pack())

	parsed, err := ParseFrame(f.Pack())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)
}

func TestSplitFrames_160Bytes(t *testing.T) {
	block := makeBlock(160)
	frames := SplitFrames(block)

	require.Len(t, frames, 6)
	wantLens := []int{31, 31, 31, 31, 31, 5}
	wantOffsets := []int{0, 31, 62, 93, 124, 155}
	for i, f := range frames {
		assert.Len(t, f.Data, wantLens[i], "chunk %d", i)
		assert.Equal(t, byte(wantOffsets[i]), f.Data[0], "chunk %d offset", i)
		assert.Equal(t, i < 5, f.More(), "chunk %d continuation", i)
		assert.LessOrEqual(t, len(f.Pack()), TxCap)
	}
	assert.True(t, frames[5].Final())
}

func TestSplitFrames_Reassemble(t *testing.T) {
	for _, size := range []int{1, 4, 11, 30, 31, 32, 62, 66, 93, 160, 310} {
		block := makeBlock(size)
		frames := SplitFrames(block)
		require.Len(t, frames, NumChunks(size, ChunkDataCap))

		var out []byte
		for _, f := range frames {
			out = append(out, f.Data...)
		}
		assert.Equal(t, block, out, "size %d", size)
	}
}

func TestSplitWrites(t *testing.T) {
	block := makeBlock(66)
	chunks := SplitWrites(block)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 32)
	assert.Len(t, chunks[1], 32)
	assert.Len(t, chunks[2], 2)
	assert.Equal(t, byte(64), chunks[2][0])

	assert.Empty(t, SplitWrites(nil))
}

func TestNumChunks(t *testing.T) {
	assert.Equal(t, 0, NumChunks(0, 31))
	assert.Equal(t, 1, NumChunks(1, 31))
	assert.Equal(t, 1, NumChunks(31, 31))
	assert.Equal(t, 2, NumChunks(32, 31))
	assert.Equal(t, 6, NumChunks(160, 31))
	assert.Equal(t, 5, NumChunks(160, 32))
}
