package kosmo

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/go-kosmo/bus"
)

// EnterProgrammingMode sends "prg" to every slave in address order.
//
// A slave is marked as in programming mode only if it acknowledged the
// command. Failures are not retried; the errors of all slaves are joined.
func (m *Master) EnterProgrammingMode(ctx context.Context) error {
	var errs error
	for _, s := range m.sessions {
		if err := m.command(ctx, s, bus.CmdEnterProgramming); err != nil {
			errs = errors.Join(errs, err)
			continue
		}

		s.inProgrammingMode = true
		m.logger.Info("kosmo: slave entered programming mode", "slave", s.address)
	}

	return errs
}

// ExitProgrammingMode sends "end" to every slave in address order.
//
// An acknowledging slave leaves programming mode and becomes eligible for
// polling immediately. A slave that does not acknowledge keeps its state until
// the poll retry limit settles it.
func (m *Master) ExitProgrammingMode(ctx context.Context) error {
	var errs error
	for _, s := range m.sessions {
		if err := m.command(ctx, s, bus.CmdExitProgramming); err != nil {
			errs = errors.Join(errs, err)
			continue
		}

		s.release()
		m.logger.Info("kosmo: slave left programming mode", "slave", s.address)
	}

	return errs
}

// StartClock starts playback on the tempo slave.
func (m *Master) StartClock(ctx context.Context) error {
	return m.tempoCommand(ctx, bus.CmdStart)
}

// StopClock stops playback on the tempo slave.
func (m *Master) StopClock(ctx context.Context) error {
	return m.tempoCommand(ctx, bus.CmdStop)
}

func (m *Master) tempoCommand(ctx context.Context, cmd string) error {
	s := m.Session(bus.AddrTempo)
	if s == nil {
		return fmt.Errorf("%w: %s is not configured", ErrUnknownSlave, bus.AddrTempo)
	}

	if err := m.command(ctx, s, cmd); err != nil {
		return err
	}

	m.logger.Debug("kosmo: transport command sent", "slave", s.address, "command", cmd)

	return nil
}

// command sends one command to the slave of s as a single exchange.
func (m *Master) command(ctx context.Context, s *Session, cmd string) error {
	s.begin()
	defer s.end()

	if err := m.sendCommand(ctx, s.address, cmd); err != nil {
		m.logger.Warn("kosmo: command failed", "slave", s.address, "command", cmd, "error", err)
		return fmt.Errorf("%q: %w", cmd, err)
	}

	return nil
}
