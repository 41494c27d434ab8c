package bus

import (
	"errors"
	"fmt"
)

// Chunk framing constants.
const (
	// ChunkDataCap is the number of data bytes in one framed read chunk.
	ChunkDataCap = TxCap - 1
	// WriteChunkCap is the number of data bytes in one unframed write chunk.
	WriteChunkCap = TxCap

	// StatusNoData marks a failed read chunk.
	StatusNoData byte = 0x00
	// StatusContinue is the continuation bit: more chunks follow.
	StatusContinue byte = 0x80

	// StatusFinal and StatusMore are the status bytes emitted by the slave firmware.
	StatusFinal = 0x01
	StatusMore  = StatusContinue | StatusFinal
)

// Frame errors.
var (
	ErrEmptyFrame    = errors.New("bus: empty frame")
	ErrFrameTooLarge = errors.New("bus: frame exceeds transaction cap")
)

// Frame is one framed read chunk: a status byte followed by its data.
type Frame struct {
	Status byte
	Data   []byte
}

// Failed reports whether the slave signalled that it has no data.
func (f Frame) Failed() bool {
	return f.Status == StatusNoData
}

// More reports whether more chunks follow this one.
func (f Frame) More() bool {
	return f.Status != StatusNoData && f.Status&StatusContinue != 0
}

// Final reports whether this is the last chunk of a transfer.
func (f Frame) Final() bool {
	return f.Status != StatusNoData && f.Status&StatusContinue == 0
}

// Pack serializes the frame to its wire format: [Status][Data...].
func (f Frame) Pack() []byte {
	buf := make([]byte, 1+len(f.Data))
	buf[0] = f.Status
	copy(buf[1:], f.Data)

	return buf
}

// ParseFrame deserializes one frame from the raw bytes of a read transaction.
// The returned Data aliases raw.
func ParseFrame(raw []byte) (Frame, error) {
	if len(raw) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if len(raw) > TxCap {
		return Frame{}, fmt.Errorf("%w: got %d bytes, cap %d", ErrFrameTooLarge, len(raw), TxCap)
	}

	return Frame{Status: raw[0], Data: raw[1:]}, nil
}

// NumChunks returns ceil(size/chunk), the number of pieces needed to carry size bytes.
func NumChunks(size, chunk int) int {
	if size <= 0 {
		return 0
	}

	return (size + chunk - 1) / chunk
}

// SplitFrames splits a register block into the framed chunks a slave emits,
// ChunkDataCap bytes each, with the continuation bit set on all but the last.
func SplitFrames(block []byte) []Frame {
	n := NumChunks(len(block), ChunkDataCap)
	frames := make([]Frame, 0, n)

	for offset := 0; offset < len(block); offset += ChunkDataCap {
		end := min(offset+ChunkDataCap, len(block))

		status := byte(StatusMore)
		if end == len(block) {
			status = StatusFinal
		}

		data := make([]byte, end-offset)
		copy(data, block[offset:end])
		frames = append(frames, Frame{Status: status, Data: data})
	}

	return frames
}

// SplitWrites splits a register block into the unframed write chunks pushed by
// the master, WriteChunkCap bytes each, in increasing offset order.
func SplitWrites(block []byte) [][]byte {
	chunks := make([][]byte, 0, NumChunks(len(block), WriteChunkCap))
	for offset := 0; offset < len(block); offset += WriteChunkCap {
		end := min(offset+WriteChunkCap, len(block))
		chunks = append(chunks, block[offset:end])
	}

	return chunks
}
