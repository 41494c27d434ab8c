package kosmo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/register"
)

func TestRegisterStore_Empty(t *testing.T) {
	s := newRegisterStore()

	_, ok := s.Tempo()
	assert.False(t, ok)
	_, ok = s.DrumSequencer()
	assert.False(t, ok)
	_, ok = s.Sampler()
	assert.False(t, ok)
	_, ok = s.Bytes(bus.AddrTempo)
	assert.False(t, ok)
	_, ok = s.UpdatedAt(bus.AddrTempo)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestRegisterStore_Commit(t *testing.T) {
	s := newRegisterStore()
	part := testPart()

	tempo := part.Tempo
	s.commit(bus.AddrTempo, &tempo, epoch)

	got, ok := s.Tempo()
	require.True(t, ok)
	assert.Equal(t, part.Tempo, got)

	// getters return copies
	got.BPM = 1
	again, _ := s.Tempo()
	assert.Equal(t, part.Tempo.BPM, again.BPM)

	data, ok := s.Bytes(bus.AddrTempo)
	require.True(t, ok)
	want, err := part.Tempo.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, want, data)

	updated, ok := s.UpdatedAt(bus.AddrTempo)
	require.True(t, ok)
	assert.Equal(t, epoch, updated)
	assert.Equal(t, 1, s.Len())
}

func TestRegisterStore_ConcurrentReaders(t *testing.T) {
	s := newRegisterStore()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				if regs, ok := s.Sampler(); ok {
					assert.LessOrEqual(t, regs.Bank, uint8(register.MaxBank))
				}
			}
		}()
	}

	for i := range 1000 {
		regs := &register.SamplerRegisters{Bank: uint8(i % (register.MaxBank + 1))}
		s.commit(bus.AddrSampler, regs, epoch)
	}
	wg.Wait()

	_, ok := s.Sampler()
	assert.True(t, ok)
}
