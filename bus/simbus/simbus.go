// Package simbus provides an in-memory bus with simulated Kosmo slaves.
//
// The simulated slaves implement the slave side of the control protocol:
// programming mode, snapshot and chunked register reads, framed set pushes
// and transport control. The bus records every transaction so callers can
// inspect the exact traffic a master produced, and faults can be injected per
// slave to exercise the master's recovery paths.
package simbus

import (
	"context"
	"slices"
	"sync"

	"github.com/arloliu/go-kosmo/bus"
)

// Tx is one recorded bus transaction.
type Tx struct {
	Addr   bus.Address
	Write  []byte     // payload of a write transaction, nil for reads
	Read   int        // number of bytes requested by a read transaction
	Got    int        // number of bytes returned by a read transaction
	Status bus.Status // end status of a write transaction
}

// IsRead reports whether the transaction was a read request.
func (t Tx) IsRead() bool {
	return t.Write == nil
}

// Bus is a simulated bus. It implements bus.Transport.
//
// All methods are safe for concurrent use, so tests can inspect slaves while
// a master polls from another goroutine.
type Bus struct {
	mu     sync.Mutex
	buf    bus.TxBuffer
	slaves map[bus.Address]*Slave
	txs    []Tx
}

var _ bus.Transport = (*Bus)(nil)

// New creates a bus with the given slaves attached.
func New(slaves ...*Slave) *Bus {
	b := &Bus{slaves: make(map[bus.Address]*Slave, len(slaves))}
	for _, s := range slaves {
		b.slaves[s.addr] = s
	}

	return b
}

// NewRig creates a bus with the three slaves of the rig attached, holding the
// given register blocks.
func NewRig(tempo, drums, sampler []byte) *Bus {
	return New(
		NewSlave(bus.AddrTempo, tempo),
		NewSlave(bus.AddrDrumSequencer, drums),
		NewSlave(bus.AddrSampler, sampler),
	)
}

// Slave returns the simulated slave at addr, or nil.
func (b *Bus) Slave(addr bus.Address) *Slave {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.slaves[addr]
}

// Transactions returns a copy of the recorded transactions.
func (b *Bus) Transactions() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.txs)
}

// TransactionsTo returns the recorded transactions addressed to addr.
func (b *Bus) TransactionsTo(addr bus.Address) []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Tx
	for _, tx := range b.txs {
		if tx.Addr == addr {
			out = append(out, tx)
		}
	}

	return out
}

// ResetTransactions clears the transaction log.
func (b *Bus) ResetTransactions() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.txs = nil
}

// BeginTransmission implements bus.Transport.
func (b *Bus) BeginTransmission(addr bus.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Begin(addr)
}

// Write implements bus.Transport.
func (b *Bus) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// EndTransmission implements bus.Transport.
func (b *Bus) EndTransmission(ctx context.Context) bus.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	addr, payload, overrun := b.buf.Pending()

	var status bus.Status
	switch {
	case ctx.Err() != nil:
		status = bus.StatusTimeout
	case overrun:
		status = bus.StatusDataTooLong
	default:
		s, ok := b.slaves[addr]
		if !ok {
			status = bus.StatusAddrNack
		} else {
			status = s.receive(payload)
		}
	}

	b.txs = append(b.txs, Tx{Addr: addr, Write: payload, Status: status})

	return status
}

// RequestFrom implements bus.Transport.
func (b *Bus) RequestFrom(ctx context.Context, addr bus.Address, n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var data []byte
	if s, ok := b.slaves[addr]; ok && ctx.Err() == nil {
		data = s.respond(min(n, bus.TxCap))
	}
	b.buf.Fill(data)
	b.txs = append(b.txs, Tx{Addr: addr, Read: n, Got: len(data)})

	return len(data)
}

// Available implements bus.Transport.
func (b *Bus) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Available()
}

// ReadByte implements bus.Transport.
func (b *Bus) ReadByte() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.ReadByte()
}
