package bus

import (
	"context"
	"errors"
	"fmt"
)

// TxCap is the maximum number of bytes in a single bus transaction.
const TxCap = 32

// Address is a 7-bit bus address of a slave module.
type Address uint16

// Fixed slave addresses of the rig.
const (
	AddrTempo         Address = 8
	AddrDrumSequencer Address = 9
	AddrSampler       Address = 10
)

// String returns the slave name for known addresses.
func (a Address) String() string {
	switch a {
	case AddrTempo:
		return "tempo"
	case AddrDrumSequencer:
		return "drum-sequencer"
	case AddrSampler:
		return "sampler"
	default:
		return fmt.Sprintf("slave-0x%02X", uint16(a))
	}
}

// Status is the end status of a write transaction.
// The values follow the codes returned by the Arduino Wire library that the
// slave firmware is built against.
type Status uint8

const (
	StatusOK          Status = 0 // transaction acknowledged
	StatusDataTooLong Status = 1 // data exceeded the transaction buffer
	StatusAddrNack    Status = 2 // address not acknowledged
	StatusDataNack    Status = 3 // data byte not acknowledged
	StatusOther       Status = 4 // other bus error
	StatusTimeout     Status = 5 // driver timeout
)

// String returns a short description of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDataTooLong:
		return "data too long"
	case StatusAddrNack:
		return "address nack"
	case StatusDataNack:
		return "data nack"
	case StatusOther:
		return "other error"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("status %d", uint8(s))
	}
}

// ErrTxBufferFull is returned by Write when the pending transaction would exceed TxCap.
var ErrTxBufferFull = errors.New("bus: transaction buffer full")

// Transport is the synchronous transaction interface of the bus.
//
// Implementations are not required to be goroutine-safe: the bus is owned by
// exactly one master and every call returns only when the transaction, or the
// driver-level timeout, has completed.
type Transport interface {
	// BeginTransmission starts a write transaction to addr, discarding any
	// pending unsent data.
	BeginTransmission(addr Address)
	// Write appends p to the pending transaction. It writes as many bytes as fit
	// into TxCap and returns ErrTxBufferFull if p was truncated.
	Write(p []byte) (int, error)
	// EndTransmission sends the pending transaction and returns its end status.
	EndTransmission(ctx context.Context) Status
	// RequestFrom reads up to n bytes from addr into the receive buffer and
	// returns the number of bytes received.
	RequestFrom(ctx context.Context, addr Address, n int) int
	// Available returns the number of unread bytes in the receive buffer.
	Available() int
	// ReadByte returns the next byte of the receive buffer.
	ReadByte() (byte, error)
}

// TxBuffer holds the pending-write and receive buffering shared by the transports
// in this module.
type TxBuffer struct {
	addr    Address
	pending []byte
	overrun bool
	rx      []byte
}

// Begin resets the pending transaction for addr.
func (b *TxBuffer) Begin(addr Address) {
	b.addr = addr
	b.pending = b.pending[:0]
	b.overrun = false
}

// Write implements the Transport.Write semantics.
func (b *TxBuffer) Write(p []byte) (int, error) {
	room := TxCap - len(b.pending)
	if len(p) > room {
		b.pending = append(b.pending, p[:room]...)
		b.overrun = true

		return room, fmt.Errorf("%w: %d bytes dropped", ErrTxBufferFull, len(p)-room)
	}
	b.pending = append(b.pending, p...)

	return len(p), nil
}

// Pending returns the destination address and a copy of the pending bytes, and
// reports whether the transaction overflowed.
func (b *TxBuffer) Pending() (Address, []byte, bool) {
	out := make([]byte, len(b.pending))
	copy(out, b.pending)

	return b.addr, out, b.overrun
}

// Fill replaces the receive buffer with data.
func (b *TxBuffer) Fill(data []byte) {
	b.rx = append(b.rx[:0], data...)
}

// Available implements Transport.Available.
func (b *TxBuffer) Available() int {
	return len(b.rx)
}

// ReadByte implements Transport.ReadByte.
func (b *TxBuffer) ReadByte() (byte, error) {
	if len(b.rx) == 0 {
		return 0, ErrRxEmpty
	}
	c := b.rx[0]
	b.rx = b.rx[1:]

	return c, nil
}

// ErrRxEmpty is returned by ReadByte when the receive buffer is exhausted.
var ErrRxEmpty = errors.New("bus: receive buffer empty")
