package kosmo

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/logger"
)

// Default poll policy.
const (
	DefaultRetryInterval = 3000 * time.Millisecond // minimum time between two get requests to one slave
	DefaultRetryLimit    = 10                      // consecutive failures before a slave is forced to settle
)

// Poll policy limits.
const (
	MinRetryInterval = 10 * time.Millisecond
	MaxRetryInterval = 10 * time.Minute
	MaxRetryLimit    = 255
)

// Config holds the configuration of a Master.
type Config struct {
	retryInterval time.Duration
	retryLimit    int
	slaves        []bus.Address
	clock         clock.Clock
	logger        logger.Logger
}

// NewConfig creates a master configuration polling every slave of the rig with
// the default retry policy. opts are applied in order; see the With* functions.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		retryInterval: DefaultRetryInterval,
		retryLimit:    DefaultRetryLimit,
		slaves:        []bus.Address{bus.AddrTempo, bus.AddrDrumSequencer, bus.AddrSampler},
		clock:         clock.New(),
		logger:        logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// RetryInterval returns the minimum time between two get requests to one slave.
func (cfg *Config) RetryInterval() time.Duration { return cfg.retryInterval }

// RetryLimit returns the number of consecutive failures after which a slave is settled.
func (cfg *Config) RetryLimit() int { return cfg.retryLimit }

// Slaves returns the polled slave addresses in address order.
func (cfg *Config) Slaves() []bus.Address { return slices.Clone(cfg.slaves) }

// Clock returns the clock driving the poll loop.
func (cfg *Config) Clock() clock.Clock { return cfg.clock }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithRetryInterval sets the minimum time between two get requests to one slave.
func WithRetryInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinRetryInterval || d > MaxRetryInterval {
			return fmt.Errorf("kosmo: retry interval %v out of range [%v, %v]", d, MinRetryInterval, MaxRetryInterval)
		}
		cfg.retryInterval = d

		return nil
	})
}

// WithRetryLimit sets the number of consecutive get failures after which a
// slave is forced out of programming mode and settled. Must be in [1, 255].
func WithRetryLimit(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 1 || n > MaxRetryLimit {
			return fmt.Errorf("kosmo: retry limit %d out of range [1, %d]", n, MaxRetryLimit)
		}
		cfg.retryLimit = n

		return nil
	})
}

// WithSlaves restricts the master to the given slaves, e.g. when a module is
// not fitted to the rig. Sessions are kept in address order.
func WithSlaves(addrs ...bus.Address) Option {
	return optFunc(func(cfg *Config) error {
		if len(addrs) == 0 {
			return errors.New("kosmo: at least one slave is required")
		}

		sorted := slices.Clone(addrs)
		slices.Sort(sorted)
		for i, addr := range sorted {
			if _, err := registerSize(addr); err != nil {
				return err
			}
			if i > 0 && sorted[i-1] == addr {
				return fmt.Errorf("kosmo: duplicate slave %s", addr)
			}
		}
		cfg.slaves = sorted

		return nil
	})
}

// WithClock sets the clock used by Run. Tests use clock.NewMock().
func WithClock(c clock.Clock) Option {
	return optFunc(func(cfg *Config) error {
		if c == nil {
			return errors.New("kosmo: clock must not be nil")
		}
		cfg.clock = c

		return nil
	})
}

// WithLogger sets the logger for the master.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("kosmo: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
