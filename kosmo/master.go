package kosmo

import (
	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/logger"
)

// Master drives the control bus of the rig: it polls every slave for its
// register block, pushes configurations down, and switches slaves in and out
// of programming mode.
//
// Master is not goroutine-safe. All protocol operations must be called from
// one goroutine, usually the one executing Run; other goroutines hand work to
// that goroutine with Submit. Store and Metrics may be read from anywhere.
type Master struct {
	cfg       *Config
	transport bus.Transport
	logger    logger.Logger

	sessions []*Session
	store    *RegisterStore
	metrics  Metrics

	requests chan *request
}

// NewMaster creates a master on transport t. A nil cfg uses NewConfig defaults.
func NewMaster(t bus.Transport, cfg *Config) (*Master, error) {
	if t == nil {
		return nil, ErrNoTransport
	}

	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}

	m := &Master{
		cfg:       cfg,
		transport: t,
		logger:    cfg.logger,
		sessions:  make([]*Session, 0, len(cfg.slaves)),
		store:     newRegisterStore(),
		requests:  make(chan *request),
	}

	for _, addr := range cfg.slaves {
		s, err := newSession(addr)
		if err != nil {
			return nil, err
		}
		m.sessions = append(m.sessions, s)
	}

	return m, nil
}

// Config returns the master configuration.
func (m *Master) Config() *Config { return m.cfg }

// Store returns the last-known-good register store.
func (m *Master) Store() *RegisterStore { return m.store }

// Metrics returns the master counters.
func (m *Master) Metrics() *Metrics { return &m.metrics }

// Sessions returns the slave sessions in address order.
func (m *Master) Sessions() []*Session { return m.sessions }

// Session returns the session of the slave at addr, or nil.
func (m *Master) Session(addr bus.Address) *Session {
	for _, s := range m.sessions {
		if s.address == addr {
			return s
		}
	}

	return nil
}
