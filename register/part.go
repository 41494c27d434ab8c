package register

import (
	"errors"
	"log/slog"
)

// Part limits, as enforced by the song programmer.
const (
	MaxRepeats = 32
	MaxChainTo = 15
	NoChain    = -1
)

// Part is one complete rig configuration: the blocks of every slave plus the
// song-programmer fields that decide what plays next. It is the unit the
// master pushes down with a set cycle.
type Part struct {
	Repeats       uint8
	ChainTo       int8
	Tempo         TempoRegisters
	DrumSequencer DrumSequencerRegisters
	Sampler       SamplerRegisters
}

// NewPart returns a part with firmware defaults.
func NewPart() Part {
	return Part{
		ChainTo:       NoChain,
		Tempo:         NewTempoRegisters(),
		DrumSequencer: NewDrumSequencerRegisters(),
	}
}

// Reset restores the cleared state: no repeats, no chaining, empty blocks.
func (p *Part) Reset() {
	p.Repeats = 0
	p.ChainTo = NoChain
	p.Tempo.Reset()
	p.DrumSequencer.Reset()
	p.Sampler.Reset()
}

// Validate checks every block and the programmer fields, reporting all violations.
func (p *Part) Validate() error {
	var errs error
	if p.Repeats > MaxRepeats {
		errs = errors.Join(errs, invalid("repeats", p.Repeats))
	}
	if p.ChainTo < NoChain || p.ChainTo > MaxChainTo {
		errs = errors.Join(errs, invalid("chainTo", p.ChainTo))
	}

	return errors.Join(errs, p.Tempo.Validate(), p.DrumSequencer.Validate(), p.Sampler.Validate())
}

// LogValue implements slog.LogValuer.
func (p *Part) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("repeats", int(p.Repeats)),
		slog.Int("chainTo", int(p.ChainTo)),
		slog.Any("tempo", &p.Tempo),
		slog.Any("drums", &p.DrumSequencer),
		slog.Any("sampler", &p.Sampler),
	)
}
