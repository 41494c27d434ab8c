package kosmo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-kosmo/bus"
)

func sequentialBlock(size int) []byte {
	block := make([]byte, size)
	for i := range block {
		block[i] = byte(i*7 + 3)
	}

	return block
}

func TestReadChunked_Sizes(t *testing.T) {
	for _, size := range []int{1, 4, 11, 30, 31, 32, 62, 63, 66, 160, 310} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			tr := &fakeTransport{}
			m, _ := newTestMaster(t, tr)

			block := sequentialBlock(size)
			tr.queueFrames(block)

			got, err := m.readChunked(context.Background(), bus.AddrTempo, size)
			require.NoError(t, err)
			assert.Equal(t, block, got)

			chunks := bus.NumChunks(size, bus.ChunkDataCap)
			assert.Len(t, tr.reads(), chunks)
			assert.Equal(t, uint64(chunks), m.Metrics().ChunkReadCount.Load())
		})
	}
}

func TestReadChunked_Traffic(t *testing.T) {
	tr := &fakeTransport{}
	m, _ := newTestMaster(t, tr)

	block := sequentialBlock(160)
	tr.queueFrames(block)

	got, err := m.readChunked(context.Background(), bus.AddrSampler, len(block))
	require.NoError(t, err)
	assert.Equal(t, block, got)

	// a leading snapshot command, then one select and one read per chunk
	expected := []op{{addr: bus.AddrSampler, write: []byte("get")}}
	for i, n := range []int{32, 32, 32, 32, 32, 6} {
		expected = append(expected,
			op{addr: bus.AddrSampler, write: []byte(fmt.Sprintf("get %d", i))},
			op{addr: bus.AddrSampler, read: n},
		)
	}
	assert.Equal(t, expected, tr.ops)
}

func TestReadChunked_AbortOnNoData(t *testing.T) {
	tr := &fakeTransport{}
	m, _ := newTestMaster(t, tr)

	frames := bus.SplitFrames(sequentialBlock(160))
	tr.replies = [][]byte{
		frames[0].Pack(),
		frames[1].Pack(),
		{bus.StatusNoData},
	}

	got, err := m.readChunked(context.Background(), bus.AddrTempo, 160)
	require.ErrorIs(t, err, ErrProtocolAbort)
	assert.Nil(t, got)

	// no request after the aborting chunk
	assert.Len(t, tr.reads(), 3)
	assert.Equal(t, []string{"get", "get 0", "get 1", "get 2"}, tr.writes())
}

func TestReadChunked_Failures(t *testing.T) {
	full := bus.SplitFrames(sequentialBlock(40))

	tests := []struct {
		name     string
		size     int
		statuses []bus.Status
		replies  [][]byte
		wantErr  error
	}{
		{
			name:    "empty reply",
			size:    40,
			replies: nil,
			wantErr: ErrNoData,
		},
		{
			name:    "fewer bytes than requested",
			size:    40,
			replies: [][]byte{full[0].Pack()[:10]},
			wantErr: ErrShortRead,
		},
		{
			name:    "lone status byte 0",
			size:    40,
			replies: [][]byte{{bus.StatusNoData}},
			wantErr: ErrProtocolAbort,
		},
		{
			name:    "truncated reply with status 0",
			size:    40,
			replies: [][]byte{{bus.StatusNoData, 0xAA, 0xBB}},
			wantErr: ErrProtocolAbort,
		},
		{
			name: "final status before the block is complete",
			size: 40,
			replies: [][]byte{
				bus.Frame{Status: bus.StatusFinal, Data: full[0].Data}.Pack(),
			},
			wantErr: ErrShortRead,
		},
		{
			name: "continuation with no remaining bytes",
			size: 40,
			replies: [][]byte{
				full[0].Pack(),
				bus.Frame{Status: bus.StatusMore, Data: full[1].Data}.Pack(),
			},
			wantErr: ErrProtocolAbort,
		},
		{
			name:     "snapshot command not acknowledged",
			size:     40,
			statuses: []bus.Status{bus.StatusAddrNack},
			wantErr:  ErrBusTransmission,
		},
		{
			name:     "chunk select not acknowledged",
			size:     40,
			statuses: []bus.Status{bus.StatusOK, bus.StatusOK, bus.StatusTimeout},
			replies:  [][]byte{full[0].Pack()},
			wantErr:  ErrBusTransmission,
		},
		{
			name:    "block too large",
			size:    10*bus.ChunkDataCap + 1,
			wantErr: ErrBlockTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{statuses: tt.statuses, replies: tt.replies}
			m, _ := newTestMaster(t, tr)

			got, err := m.readChunked(context.Background(), bus.AddrDrumSequencer, tt.size)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestReadChunked_TransmissionErrorStatus(t *testing.T) {
	tr := &fakeTransport{statuses: []bus.Status{bus.StatusDataNack}}
	m, _ := newTestMaster(t, tr)

	_, err := m.readChunked(context.Background(), bus.AddrSampler, 11)

	var txErr *TransmissionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, bus.AddrSampler, txErr.Address)
	assert.Equal(t, bus.StatusDataNack, txErr.Status)
	assert.Contains(t, err.Error(), "data nack")
}

func TestReadChunked_BlockTooLargeSendsNothing(t *testing.T) {
	tr := &fakeTransport{}
	m, _ := newTestMaster(t, tr)

	_, err := m.readChunked(context.Background(), bus.AddrTempo, 11*bus.ChunkDataCap)
	require.ErrorIs(t, err, ErrBlockTooLarge)
	assert.Empty(t, tr.ops)
}

func TestWriteChunked(t *testing.T) {
	tr := &fakeTransport{}
	m, _ := newTestMaster(t, tr)

	block := sequentialBlock(66)
	require.NoError(t, m.writeChunked(context.Background(), bus.AddrDrumSequencer, block))

	require.Len(t, tr.ops, 3)
	assert.Equal(t, block[0:32], tr.ops[0].write)
	assert.Equal(t, block[32:64], tr.ops[1].write)
	assert.Equal(t, block[64:66], tr.ops[2].write)
	for _, o := range tr.ops {
		assert.Equal(t, bus.AddrDrumSequencer, o.addr)
	}
	assert.Equal(t, uint64(3), m.Metrics().ChunkWriteCount.Load())
}

func TestWriteChunked_ChunkCounts(t *testing.T) {
	for _, size := range []int{1, 31, 32, 33, 64, 65, 160} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			tr := &fakeTransport{}
			m, _ := newTestMaster(t, tr)

			block := sequentialBlock(size)
			require.NoError(t, m.writeChunked(context.Background(), bus.AddrSampler, block))

			assert.Len(t, tr.ops, bus.NumChunks(size, bus.WriteChunkCap))

			var joined []byte
			for _, o := range tr.ops {
				assert.LessOrEqual(t, len(o.write), bus.WriteChunkCap)
				joined = append(joined, o.write...)
			}
			assert.Equal(t, block, joined)
		})
	}
}

func TestWriteChunked_AbortsOnNack(t *testing.T) {
	tr := &fakeTransport{statuses: []bus.Status{bus.StatusOK, bus.StatusDataNack}}
	m, _ := newTestMaster(t, tr)

	err := m.writeChunked(context.Background(), bus.AddrSampler, sequentialBlock(100))
	require.ErrorIs(t, err, ErrBusTransmission)
	assert.Len(t, tr.ops, 2, "remaining chunks are not sent")
	assert.Equal(t, uint64(1), m.Metrics().ChunkWriteCount.Load())
}
