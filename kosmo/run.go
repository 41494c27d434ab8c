package kosmo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type request struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Run polls the slaves every tick until ctx is done, then returns ctx.Err().
//
// Each tick calls GetCycle with the time of the configured clock. Work handed
// in with Submit is executed between ticks, on the goroutine executing Run.
func (m *Master) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		return fmt.Errorf("kosmo: invalid tick %v", tick)
	}

	ticker := m.cfg.clock.Ticker(tick)
	defer ticker.Stop()

	m.logger.Info("kosmo: poll loop started", "tick", tick, "slaves", len(m.sessions))

	synced := false
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("kosmo: poll loop stopped")
			return ctx.Err()

		case <-ticker.C:
			all := m.GetCycle(ctx, m.cfg.clock.Now())
			if all && !synced {
				m.logger.Debug("kosmo: all slaves settled")
			}
			synced = all

		case req := <-m.requests:
			req.done <- req.fn(ctx)
		}
	}
}

// Submit executes fn on the goroutine executing Run and returns its error.
// fn receives the context of Run and may call any Master operation, e.g.
//
//	err := m.Submit(ctx, func(ctx context.Context) error {
//		return m.SetCycle(ctx, part)
//	})
//
// Submit returns ctx.Err() if ctx is done before fn was started.
func (m *Master) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("kosmo: nil function submitted")
	}

	req := &request{fn: fn, done: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.requests <- req:
	}

	return <-req.done
}
