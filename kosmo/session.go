package kosmo

import (
	"time"

	"github.com/arloliu/go-kosmo/bus"
)

// State is the protocol state of one slave session.
type State int

const (
	StateIdle            State = iota // no exchange running, not programming
	StateRequesting                   // a synchronous exchange is running
	StateProgrammingMode              // the slave accepted "prg" and holds its playback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateProgrammingMode:
		return "programming"
	default:
		return "unknown"
	}
}

// Session is the master-side view of one slave.
//
// A Session is owned by its Master and is only mutated from the goroutine
// driving that Master.
type Session struct {
	address           bus.Address
	registerSize      int
	inProgrammingMode bool
	requestInProgress bool
	lastGetRequest    time.Time
	retryCount        int
}

func newSession(addr bus.Address) (*Session, error) {
	size, err := registerSize(addr)
	if err != nil {
		return nil, err
	}

	if err := checkBlockSize(addr, size); err != nil {
		return nil, err
	}

	return &Session{address: addr, registerSize: size}, nil
}

// Address returns the bus address of the slave.
func (s *Session) Address() bus.Address { return s.address }

// RegisterSize returns the encoded size of the slave's register block.
func (s *Session) RegisterSize() int { return s.registerSize }

// InProgrammingMode reports whether the slave is believed to be in programming mode.
func (s *Session) InProgrammingMode() bool { return s.inProgrammingMode }

// RequestInProgress reports whether an exchange with the slave is running.
func (s *Session) RequestInProgress() bool { return s.requestInProgress }

// LastGetRequest returns the time of the last get attempt. The zero time means
// the slave is eligible immediately.
func (s *Session) LastGetRequest() time.Time { return s.lastGetRequest }

// RetryCount returns the number of consecutive failed get attempts.
func (s *Session) RetryCount() int { return s.retryCount }

// State returns the current protocol state.
func (s *Session) State() State {
	switch {
	case s.requestInProgress:
		return StateRequesting
	case s.inProgrammingMode:
		return StateProgrammingMode
	default:
		return StateIdle
	}
}

// due reports whether a get request may be issued at now.
func (s *Session) due(now time.Time, interval time.Duration) bool {
	return !s.requestInProgress && now.Sub(s.lastGetRequest) > interval
}

// begin and end bracket one synchronous exchange.
func (s *Session) begin() { s.requestInProgress = true }

func (s *Session) end() { s.requestInProgress = false }

// succeed records a successful get.
func (s *Session) succeed() { s.retryCount = 0 }

// fail records a failed get at now and reports whether the retry limit was
// reached, in which case the slave is settled: programming mode is forced
// off and the next attempt waits a full interval.
func (s *Session) fail(now time.Time, limit int) bool {
	s.retryCount++
	if s.retryCount < limit {
		return false
	}

	s.inProgrammingMode = false
	s.retryCount = 0
	s.lastGetRequest = now

	return true
}

// release clears programming mode and makes the slave eligible for polling immediately.
func (s *Session) release() {
	s.inProgrammingMode = false
	s.retryCount = 0
	s.lastGetRequest = time.Time{}
}
