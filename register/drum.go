package register

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Drum sequencer geometry.
const (
	DrumChannels = 5
	DrumPages    = 4
)

// DrumChannelSize is the encoded size of one DrumChannel.
//
//	offset 0+2*p  u16 (LE)  Pages[p], p in [0, 4)
//	offset 8      i16 (LE)  Divider
//	offset 10     i16 (LE)  LastStep
//	offset 12     u8        Enabled (0 or 1)
const DrumChannelSize = 2*DrumPages + 2 + 2 + 1

// DrumSequencerSize is the encoded size of DrumSequencerRegisters:
// DrumChannels consecutive channels followed by the chain-mode flag.
const DrumSequencerSize = DrumChannels*DrumChannelSize + 1

// Drum channel limits accepted by the slave.
const (
	DefaultDivider = 6
	MaxLastStep    = DrumPages*16 - 1
)

// AllowedDividers lists the clock dividers the drum sequencer understands.
var AllowedDividers = []int16{3, 6, 8, 9, 12, 15, 24}

// DrumChannel is one trigger channel of the drum sequencer.
// Each page is a 16-step bitmask, bit i set meaning step i triggers.
type DrumChannel struct {
	Pages    [DrumPages]uint16
	Divider  int16
	LastStep int16
	Enabled  bool
}

// Step reports whether the given absolute step (0..63) is set.
func (c *DrumChannel) Step(step int) bool {
	if step < 0 || step > MaxLastStep {
		return false
	}

	return c.Pages[step/16]&(1<<(step%16)) != 0
}

// SetStep sets or clears the given absolute step (0..63).
func (c *DrumChannel) SetStep(step int, on bool) {
	if step < 0 || step > MaxLastStep {
		return
	}
	mask := uint16(1) << (step % 16)
	if on {
		c.Pages[step/16] |= mask
	} else {
		c.Pages[step/16] &^= mask
	}
}

// PageCount returns how many pages are in use for the configured last step.
func (c *DrumChannel) PageCount() int {
	return int(c.LastStep)/16 + 1
}

func (c *DrumChannel) reset() {
	*c = DrumChannel{Divider: DefaultDivider}
}

func (c *DrumChannel) put(buf []byte) {
	for p, page := range c.Pages {
		binary.LittleEndian.PutUint16(buf[2*p:], page)
	}
	binary.LittleEndian.PutUint16(buf[8:], uint16(c.Divider))   //nolint:gosec // two's complement on the wire
	binary.LittleEndian.PutUint16(buf[10:], uint16(c.LastStep)) //nolint:gosec // two's complement on the wire
	buf[12] = boolByte(c.Enabled)
}

func (c *DrumChannel) get(buf []byte) {
	for p := range c.Pages {
		c.Pages[p] = binary.LittleEndian.Uint16(buf[2*p:])
	}
	c.Divider = int16(binary.LittleEndian.Uint16(buf[8:]))   //nolint:gosec // two's complement on the wire
	c.LastStep = int16(binary.LittleEndian.Uint16(buf[10:])) //nolint:gosec // two's complement on the wire
	c.Enabled = buf[12] != 0
}

// DrumSequencerRegisters is the register block of the drum-sequencer slave.
type DrumSequencerRegisters struct {
	Channels         [DrumChannels]DrumChannel
	ChainModeEnabled bool
}

var _ Block = (*DrumSequencerRegisters)(nil)

// NewDrumSequencerRegisters returns a drum block with every channel at the default divider.
func NewDrumSequencerRegisters() DrumSequencerRegisters {
	var r DrumSequencerRegisters
	r.Reset()

	return r
}

// Size implements Block.
func (r *DrumSequencerRegisters) Size() int { return DrumSequencerSize }

// Reset clears all steps, disables every channel and restores the default divider.
func (r *DrumSequencerRegisters) Reset() {
	for i := range r.Channels {
		r.Channels[i].reset()
	}
	r.ChainModeEnabled = false
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *DrumSequencerRegisters) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DrumSequencerSize)
	for i := range r.Channels {
		r.Channels[i].put(buf[i*DrumChannelSize:])
	}
	buf[DrumSequencerSize-1] = boolByte(r.ChainModeEnabled)

	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *DrumSequencerRegisters) UnmarshalBinary(data []byte) error {
	if err := checkSize("drum sequencer", data, DrumSequencerSize); err != nil {
		return err
	}

	for i := range r.Channels {
		r.Channels[i].get(data[i*DrumChannelSize:])
	}
	r.ChainModeEnabled = data[DrumSequencerSize-1] != 0

	return nil
}

// Validate implements Block.
func (r *DrumSequencerRegisters) Validate() error {
	var errs error
	for i, ch := range r.Channels {
		if !slices.Contains(AllowedDividers, ch.Divider) {
			errs = errors.Join(errs, invalid(fmt.Sprintf("seq[%d].div", i), ch.Divider))
		}
		if ch.LastStep < 0 || ch.LastStep > MaxLastStep {
			errs = errors.Join(errs, invalid(fmt.Sprintf("seq[%d].last", i), ch.LastStep))
		}
	}

	return errs
}

// LogValue implements slog.LogValuer.
func (r *DrumSequencerRegisters) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, DrumChannels+1)
	for i, ch := range r.Channels {
		attrs = append(attrs, slog.Group(fmt.Sprintf("ch%d", i),
			slog.String("steps", fmt.Sprintf("%016b %016b %016b %016b", ch.Pages[0], ch.Pages[1], ch.Pages[2], ch.Pages[3])),
			slog.Int("divider", int(ch.Divider)),
			slog.Int("lastStep", int(ch.LastStep)),
			slog.Bool("enabled", ch.Enabled),
		))
	}
	attrs = append(attrs, slog.Bool("chainMode", r.ChainModeEnabled))

	return slog.GroupValue(attrs...)
}
