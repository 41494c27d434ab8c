package register

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
)

// SamplerChannels is the number of mix channels of the sampler.
const SamplerChannels = 5

// SamplerSize is the encoded size of SamplerRegisters.
//
//	offset 0      u8        Bank
//	offset 1+2*i  u16 (LE)  Mix[i], i in [0, 5)
const SamplerSize = 1 + 2*SamplerChannels

// Sampler limits accepted by the slave.
const (
	MaxBank = 99
	MaxMix  = 1023
)

// SamplerRegisters is the register block of the sampler slave.
type SamplerRegisters struct {
	Bank uint8
	Mix  [SamplerChannels]uint16
}

var _ Block = (*SamplerRegisters)(nil)

// Size implements Block.
func (r *SamplerRegisters) Size() int { return SamplerSize }

// Reset clears the bank and every mix level.
func (r *SamplerRegisters) Reset() {
	*r = SamplerRegisters{}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *SamplerRegisters) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SamplerSize)
	buf[0] = r.Bank
	for i, mix := range r.Mix {
		binary.LittleEndian.PutUint16(buf[1+2*i:], mix)
	}

	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *SamplerRegisters) UnmarshalBinary(data []byte) error {
	if err := checkSize("sampler", data, SamplerSize); err != nil {
		return err
	}

	r.Bank = data[0]
	for i := range r.Mix {
		r.Mix[i] = binary.LittleEndian.Uint16(data[1+2*i:])
	}

	return nil
}

// Validate implements Block.
func (r *SamplerRegisters) Validate() error {
	var errs error
	if r.Bank > MaxBank {
		errs = errors.Join(errs, invalid("sampler.bank", r.Bank))
	}
	for i, mix := range r.Mix {
		if mix > MaxMix {
			errs = errors.Join(errs, invalid(fmt.Sprintf("sampler.mix[%d]", i), mix))
		}
	}

	return errs
}

// LogValue implements slog.LogValuer.
func (r *SamplerRegisters) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bank", int(r.Bank)),
		slog.Any("mix", r.Mix[:]),
	)
}
