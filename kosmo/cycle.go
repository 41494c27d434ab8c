package kosmo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/register"
)

// GetCycle runs one poll tick at now.
//
// Every slave whose retry interval has elapsed is asked for its register
// block. A successful read is committed to the store and resets the retry
// count. A failed read increments it; when it reaches the retry limit the
// slave is settled: programming mode is forced off and the slave waits a full
// interval before it is asked again. Slaves whose interval has not elapsed are
// skipped without bus traffic.
//
// GetCycle returns true only if every slave either succeeded or was settled
// during this tick.
func (m *Master) GetCycle(ctx context.Context, now time.Time) bool {
	settled := 0

	for _, s := range m.sessions {
		if !s.due(now, m.cfg.retryInterval) {
			continue
		}

		s.begin()
		s.lastGetRequest = now
		m.metrics.incGetRequestCount()

		err := m.getRegisters(ctx, s, now)
		if err == nil {
			s.succeed()
			m.metrics.incGetSuccessCount()
			settled++
		} else {
			m.metrics.incGetFailureCount()
			if s.fail(now, m.cfg.retryLimit) {
				m.metrics.incSettleCount()
				settled++
				m.logger.Warn("kosmo: retry limit reached, leaving programming mode",
					"slave", s.address,
					"retryLimit", m.cfg.retryLimit,
					"error", err,
				)
			} else {
				m.logger.Debug("kosmo: get registers failed",
					"slave", s.address,
					"retry", s.retryCount,
					"maxRetry", m.cfg.retryLimit,
					"error", err,
				)
			}
		}

		s.end()
	}

	return settled == len(m.sessions)
}

// getRegisters reads, decodes and commits the register block of one slave.
func (m *Master) getRegisters(ctx context.Context, s *Session, now time.Time) error {
	data, err := m.readChunked(ctx, s.address, s.registerSize)
	if err != nil {
		return err
	}

	block, err := newBlock(s.address)
	if err != nil {
		return err
	}

	if err := block.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("%w: %w", ErrShortRead, err)
	}

	m.store.commit(s.address, block, now)
	m.logger.Debug("kosmo: registers updated", "slave", s.address, "registers", block)

	return nil
}

// SetCycle pushes part down to every slave in address order.
//
// The part is validated before any bus traffic. Each slave gets a "set 0"
// handshake, its block as consecutive write chunks when the handshake
// succeeded, and a closing "endset" in every case. Pushes are not retried;
// the errors of all slaves are joined.
func (m *Master) SetCycle(ctx context.Context, part register.Part) error {
	if err := part.Validate(); err != nil {
		return err
	}

	var errs error
	for _, s := range m.sessions {
		s.begin()
		err := m.setRegisters(ctx, s, &part)
		s.end()

		if err != nil {
			m.metrics.incSetFailureCount()
			m.logger.Warn("kosmo: set registers failed", "slave", s.address, "error", err)
			errs = errors.Join(errs, fmt.Errorf("%s: %w", s.address, err))

			continue
		}

		m.metrics.incSetCount()
		m.logger.Debug("kosmo: registers pushed", "slave", s.address)
	}

	return errs
}

func (m *Master) setRegisters(ctx context.Context, s *Session, part *register.Part) error {
	block, err := partBlock(part, s.address)
	if err != nil {
		return err
	}

	data, err := block.MarshalBinary()
	if err != nil {
		return err
	}

	err = m.sendCommand(ctx, s.address, bus.CmdBeginSet)
	if err == nil {
		err = m.writeChunked(ctx, s.address, data)
	}

	// the closing frame resets the slave's push state even after a partial push
	if endErr := m.sendCommand(ctx, s.address, bus.CmdEndSet); endErr != nil {
		err = errors.Join(err, fmt.Errorf("endset: %w", endErr))
	}

	return err
}
