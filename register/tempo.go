package register

import "log/slog"

// TempoSize is the encoded size of TempoRegisters.
//
//	offset 0  u8   BPM
//	offset 1  u8   MorphTargetBPM
//	offset 2  u8   MorphBars
//	offset 3  u8   MorphEnabled (0 or 1)
const TempoSize = 4

// Tempo defaults used by a freshly created part.
const (
	DefaultBPM            = 120
	DefaultMorphTargetBPM = 100
	DefaultMorphBars      = 4
)

// TempoRegisters is the register block of the tempo/clock slave.
type TempoRegisters struct {
	BPM            uint8
	MorphTargetBPM uint8
	MorphBars      uint8
	MorphEnabled   bool
}

var _ Block = (*TempoRegisters)(nil)

// NewTempoRegisters returns the tempo block with firmware defaults.
func NewTempoRegisters() TempoRegisters {
	return TempoRegisters{
		BPM:            DefaultBPM,
		MorphTargetBPM: DefaultMorphTargetBPM,
		MorphBars:      DefaultMorphBars,
	}
}

// Size implements Block.
func (r *TempoRegisters) Size() int { return TempoSize }

// Reset clears every field.
func (r *TempoRegisters) Reset() {
	*r = TempoRegisters{}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *TempoRegisters) MarshalBinary() ([]byte, error) {
	return []byte{r.BPM, r.MorphTargetBPM, r.MorphBars, boolByte(r.MorphEnabled)}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *TempoRegisters) UnmarshalBinary(data []byte) error {
	if err := checkSize("tempo", data, TempoSize); err != nil {
		return err
	}

	r.BPM = data[0]
	r.MorphTargetBPM = data[1]
	r.MorphBars = data[2]
	r.MorphEnabled = data[3] != 0

	return nil
}

// Validate implements Block. Every byte value is a valid tempo setting.
func (r *TempoRegisters) Validate() error {
	return nil
}

// LogValue implements slog.LogValuer.
func (r *TempoRegisters) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bpm", int(r.BPM)),
		slog.Int("morphTargetBpm", int(r.MorphTargetBPM)),
		slog.Int("morphBars", int(r.MorphBars)),
		slog.Bool("morphEnabled", r.MorphEnabled),
	)
}
