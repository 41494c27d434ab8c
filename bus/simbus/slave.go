package simbus

import (
	"slices"
	"sync"

	"github.com/arloliu/go-kosmo/bus"
)

// Fault is a failure mode that can be injected into a simulated slave.
type Fault int

const (
	// FaultNoData makes the next read return a frame with status 0.
	FaultNoData Fault = iota
	// FaultShortRead makes the next read return half of the requested bytes.
	FaultShortRead
	// FaultEmptyRead makes the next read return no bytes at all.
	FaultEmptyRead
	// FaultWriteNack makes the next write transaction end with a data NACK.
	FaultWriteNack
)

// Slave is a simulated slave module.
type Slave struct {
	addr bus.Address

	mu              sync.Mutex
	registers       []byte
	snapshot        []byte
	chunk           int
	programmingMode bool
	requireProgMode bool
	setting         bool
	pushed          []byte
	applied         int
	running         bool
	offline         bool
	faults          map[Fault]int
}

// SlaveOption configures a simulated slave.
type SlaveOption func(*Slave)

// WithoutProgrammingModeCheck makes the slave accept set pushes outside programming mode.
func WithoutProgrammingModeCheck() SlaveOption {
	return func(s *Slave) {
		s.requireProgMode = false
	}
}

// NewSlave creates a slave at addr holding a copy of registers.
func NewSlave(addr bus.Address, registers []byte, opts ...SlaveOption) *Slave {
	s := &Slave{
		addr:            addr,
		registers:       slices.Clone(registers),
		requireProgMode: true,
		faults:          make(map[Fault]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Address returns the slave's bus address.
func (s *Slave) Address() bus.Address { return s.addr }

// Registers returns a copy of the slave's current register block.
func (s *Slave) Registers() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.registers)
}

// SetRegisters replaces the register block, as if changed from the slave's front panel.
func (s *Slave) SetRegisters(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registers = slices.Clone(data)
}

// InProgrammingMode reports whether the slave is in programming mode.
func (s *Slave) InProgrammingMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.programmingMode
}

// Running reports whether the slave received "start" more recently than "stop".
func (s *Slave) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Applied returns the number of complete set pushes the slave has applied.
func (s *Slave) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applied
}

// SetOffline makes the slave stop acknowledging its address.
func (s *Slave) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offline = offline
}

// Inject arms fault f for the next count affected operations.
func (s *Slave) Inject(f Fault, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults[f] += count
}

func (s *Slave) takeFault(f Fault) bool {
	if s.faults[f] == 0 {
		return false
	}
	s.faults[f]--

	return true
}

// receive handles a write transaction and returns its end status.
func (s *Slave) receive(payload []byte) bus.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return bus.StatusAddrNack
	}
	if s.takeFault(FaultWriteNack) {
		return bus.StatusDataNack
	}

	if s.setting {
		if string(payload) == bus.CmdEndSet {
			s.finishSet()
		} else {
			s.pushed = append(s.pushed, payload...)
		}

		return bus.StatusOK
	}

	if idx, ok := bus.ParseGetChunk(payload); ok {
		s.chunk = idx
		return bus.StatusOK
	}

	switch string(payload) {
	case bus.CmdEnterProgramming:
		s.programmingMode = true
	case bus.CmdExitProgramming:
		s.programmingMode = false
	case bus.CmdGet:
		s.snapshot = slices.Clone(s.registers)
		s.chunk = 0
	case bus.CmdBeginSet:
		if s.requireProgMode && !s.programmingMode {
			return bus.StatusDataNack
		}
		s.setting = true
		s.pushed = s.pushed[:0]
	case bus.CmdEndSet:
		// closing frame without an open push is harmless
	case bus.CmdStart:
		s.running = true
	case bus.CmdStop:
		s.running = false
	default:
		return bus.StatusDataNack
	}

	return bus.StatusOK
}

func (s *Slave) finishSet() {
	s.setting = false
	if len(s.pushed) > 0 && len(s.pushed) == len(s.registers) {
		s.registers = slices.Clone(s.pushed)
		s.applied++
	}
	s.pushed = s.pushed[:0]
}

// respond produces the bytes returned for a read request of n bytes.
func (s *Slave) respond(n int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline || n <= 0 || s.takeFault(FaultEmptyRead) {
		return nil
	}
	if s.snapshot == nil || s.takeFault(FaultNoData) {
		return []byte{bus.StatusNoData}
	}

	frames := bus.SplitFrames(s.snapshot)
	if s.chunk >= len(frames) {
		return []byte{bus.StatusNoData}
	}
	out := frames[s.chunk].Pack()
	if len(out) > n {
		out = out[:n]
	}
	if s.takeFault(FaultShortRead) {
		out = out[:max(1, len(out)/2)]
	}

	return out
}
