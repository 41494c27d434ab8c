package kosmo

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/register"
)

// RegisterStore holds the last-known-good register block of every slave.
//
// Blocks are committed only after a complete and successful chunked read, so
// a reader never observes a partially transferred block. All methods are safe
// for concurrent use.
type RegisterStore struct {
	entries *xsync.MapOf[bus.Address, storeEntry]
}

type storeEntry struct {
	block     register.Block
	updatedAt time.Time
}

func newRegisterStore() *RegisterStore {
	return &RegisterStore{entries: xsync.NewMapOf[bus.Address, storeEntry]()}
}

// commit replaces the block of addr. The stored block is never mutated after
// it was committed.
func (s *RegisterStore) commit(addr bus.Address, block register.Block, now time.Time) {
	s.entries.Store(addr, storeEntry{block: block, updatedAt: now})
}

// Tempo returns the last-known-good tempo registers.
func (s *RegisterStore) Tempo() (register.TempoRegisters, bool) {
	e, ok := s.entries.Load(bus.AddrTempo)
	if !ok {
		return register.TempoRegisters{}, false
	}
	regs, ok := e.block.(*register.TempoRegisters)
	if !ok {
		return register.TempoRegisters{}, false
	}

	return *regs, true
}

// DrumSequencer returns the last-known-good drum sequencer registers.
func (s *RegisterStore) DrumSequencer() (register.DrumSequencerRegisters, bool) {
	e, ok := s.entries.Load(bus.AddrDrumSequencer)
	if !ok {
		return register.DrumSequencerRegisters{}, false
	}
	regs, ok := e.block.(*register.DrumSequencerRegisters)
	if !ok {
		return register.DrumSequencerRegisters{}, false
	}

	return *regs, true
}

// Sampler returns the last-known-good sampler registers.
func (s *RegisterStore) Sampler() (register.SamplerRegisters, bool) {
	e, ok := s.entries.Load(bus.AddrSampler)
	if !ok {
		return register.SamplerRegisters{}, false
	}
	regs, ok := e.block.(*register.SamplerRegisters)
	if !ok {
		return register.SamplerRegisters{}, false
	}

	return *regs, true
}

// Bytes returns the encoded block of addr.
func (s *RegisterStore) Bytes(addr bus.Address) ([]byte, bool) {
	e, ok := s.entries.Load(addr)
	if !ok {
		return nil, false
	}
	data, err := e.block.MarshalBinary()
	if err != nil {
		return nil, false
	}

	return data, true
}

// UpdatedAt returns the tick time at which the block of addr was committed.
func (s *RegisterStore) UpdatedAt(addr bus.Address) (time.Time, bool) {
	e, ok := s.entries.Load(addr)
	if !ok {
		return time.Time{}, false
	}

	return e.updatedAt, true
}

// Len returns the number of slaves with a committed block.
func (s *RegisterStore) Len() int {
	return s.entries.Size()
}
