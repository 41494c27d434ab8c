package kosmo

import (
	"context"
	"fmt"

	"github.com/arloliu/go-kosmo/bus"
)

// sendCommand writes one command frame to addr.
func (m *Master) sendCommand(ctx context.Context, addr bus.Address, cmd string) error {
	return m.transmit(ctx, addr, []byte(cmd))
}

// transmit sends payload as one write transaction and converts a non-zero
// end status into a *TransmissionError.
func (m *Master) transmit(ctx context.Context, addr bus.Address, payload []byte) error {
	m.transport.BeginTransmission(addr)
	// A truncated write is reported by the end status as StatusDataTooLong.
	_, _ = m.transport.Write(payload)

	if status := m.transport.EndTransmission(ctx); status != bus.StatusOK {
		return &TransmissionError{Address: addr, Status: status}
	}

	return nil
}

// requestBytes reads up to n bytes from addr. It fails only if nothing
// arrived; a shorter reply is returned as is so the caller can look at its
// status byte.
func (m *Master) requestBytes(ctx context.Context, addr bus.Address, n int) ([]byte, error) {
	m.transport.RequestFrom(ctx, addr, n)

	avail := m.transport.Available()
	if avail == 0 {
		return nil, fmt.Errorf("%w: %s requested %d bytes", ErrNoData, addr, n)
	}

	buf := make([]byte, 0, n)
	for range avail {
		b, err := m.transport.ReadByte()
		if err != nil {
			break
		}
		if len(buf) < n {
			buf = append(buf, b)
		}
	}

	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: %s requested %d bytes", ErrNoData, addr, n)
	}

	return buf, nil
}

// readChunked reads the size-byte register block of addr.
//
// A leading "get" latches the slave's snapshot, then every chunk is selected
// with "get <index>" and read as one status byte followed by up to
// ChunkDataCap data bytes. The block is returned only when the final chunk
// completes it exactly; on any failure nothing is returned.
func (m *Master) readChunked(ctx context.Context, addr bus.Address, size int) ([]byte, error) {
	total := bus.NumChunks(size, bus.ChunkDataCap)
	if total > bus.MaxChunkIndex+1 {
		return nil, fmt.Errorf("%w: %s needs %d chunks", ErrBlockTooLarge, addr, total)
	}

	if err := m.sendCommand(ctx, addr, bus.CmdGet); err != nil {
		return nil, err
	}

	block := make([]byte, size)
	for index := range total {
		cmd, err := bus.CmdGetChunk(index)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlockTooLarge, err)
		}

		if err := m.sendCommand(ctx, addr, cmd); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", index, err)
		}

		offset := index * bus.ChunkDataCap
		want := min(bus.ChunkDataCap, size-offset)
		raw, err := m.requestBytes(ctx, addr, want+1)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", index, err)
		}

		frame, err := bus.ParseFrame(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrProtocolAbort, index, err)
		}
		m.metrics.incChunkReadCount()

		if frame.Failed() {
			return nil, fmt.Errorf("%w: %s has no data for chunk %d", ErrProtocolAbort, addr, index)
		}

		if len(raw) < want+1 {
			return nil, fmt.Errorf("%w: %s chunk %d requested %d bytes, got %d", ErrShortRead, addr, index, want+1, len(raw))
		}

		filled := offset + copy(block[offset:], frame.Data)

		m.logger.Debug("kosmo: chunk received",
			"slave", addr,
			"chunk", index,
			"status", frame.Status,
			"filled", filled,
			"size", size,
		)

		if frame.More() {
			if filled >= size {
				return nil, fmt.Errorf("%w: %s continues after %d of %d bytes", ErrProtocolAbort, addr, filled, size)
			}

			continue
		}

		if filled < size {
			return nil, fmt.Errorf("%w: %s ended at %d of %d bytes", ErrShortRead, addr, filled, size)
		}

		return block, nil
	}

	// the last chunk fills the block, so a continuation there is rejected above
	return nil, fmt.Errorf("%w: %s sent no final chunk", ErrProtocolAbort, addr)
}

// writeChunked pushes block to addr as consecutive WriteChunkCap-sized
// transactions in offset order, stopping at the first failed transaction.
func (m *Master) writeChunked(ctx context.Context, addr bus.Address, block []byte) error {
	for index, chunk := range bus.SplitWrites(block) {
		if err := m.transmit(ctx, addr, chunk); err != nil {
			return fmt.Errorf("write chunk %d: %w", index, err)
		}
		m.metrics.incChunkWriteCount()
	}

	return nil
}
