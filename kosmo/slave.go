package kosmo

import (
	"fmt"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/register"
)

// The rig has a closed set of slave kinds, one per bus address. Each helper
// below dispatches on the address.

func registerSize(addr bus.Address) (int, error) {
	switch addr {
	case bus.AddrTempo:
		return register.TempoSize, nil
	case bus.AddrDrumSequencer:
		return register.DrumSequencerSize, nil
	case bus.AddrSampler:
		return register.SamplerSize, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownSlave, addr)
	}
}

// newBlock returns an empty register block for decoding a read from addr.
func newBlock(addr bus.Address) (register.Block, error) {
	switch addr {
	case bus.AddrTempo:
		return &register.TempoRegisters{}, nil
	case bus.AddrDrumSequencer:
		return &register.DrumSequencerRegisters{}, nil
	case bus.AddrSampler:
		return &register.SamplerRegisters{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSlave, addr)
	}
}

// partBlock returns the block of part that belongs to the slave at addr.
func partBlock(part *register.Part, addr bus.Address) (register.Block, error) {
	switch addr {
	case bus.AddrTempo:
		return &part.Tempo, nil
	case bus.AddrDrumSequencer:
		return &part.DrumSequencer, nil
	case bus.AddrSampler:
		return &part.Sampler, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSlave, addr)
	}
}

// checkBlockSize rejects blocks that cannot be addressed with single digit chunk indices.
func checkBlockSize(addr bus.Address, size int) error {
	if n := bus.NumChunks(size, bus.ChunkDataCap); n > bus.MaxChunkIndex+1 {
		return fmt.Errorf("%w: %s needs %d chunks for %d bytes", ErrBlockTooLarge, addr, n, size)
	}

	return nil
}
