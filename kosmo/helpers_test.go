package kosmo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/bus/simbus"
	"github.com/arloliu/go-kosmo/logger"
	"github.com/arloliu/go-kosmo/register"
)

// epoch is an arbitrary non-zero tick time used as the start of scenarios.
var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// op is one transaction seen by fakeTransport.
type op struct {
	addr  bus.Address
	write []byte // nil for read requests
	read  int
}

func (o op) isRead() bool { return o.write == nil }

// fakeTransport is a scripted bus.Transport. Write transactions end with the
// queued statuses (StatusOK once the queue is empty) and read requests return
// the queued replies (nothing once the queue is empty).
type fakeTransport struct {
	buf      bus.TxBuffer
	statuses []bus.Status
	replies  [][]byte
	ops      []op

	// onTx is called at every transaction, before it completes.
	onTx func()
}

var _ bus.Transport = (*fakeTransport)(nil)

func (f *fakeTransport) BeginTransmission(addr bus.Address) {
	f.buf.Begin(addr)
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *fakeTransport) EndTransmission(_ context.Context) bus.Status {
	if f.onTx != nil {
		f.onTx()
	}

	addr, payload, _ := f.buf.Pending()
	if payload == nil {
		payload = []byte{}
	}
	f.ops = append(f.ops, op{addr: addr, write: payload})

	if len(f.statuses) == 0 {
		return bus.StatusOK
	}
	status := f.statuses[0]
	f.statuses = f.statuses[1:]

	return status
}

func (f *fakeTransport) RequestFrom(_ context.Context, addr bus.Address, n int) int {
	if f.onTx != nil {
		f.onTx()
	}

	f.ops = append(f.ops, op{addr: addr, read: n})

	var reply []byte
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	f.buf.Fill(reply)

	return len(reply)
}

func (f *fakeTransport) Available() int {
	return f.buf.Available()
}

func (f *fakeTransport) ReadByte() (byte, error) {
	return f.buf.ReadByte()
}

// queueFrames queues the framed chunks a well-behaved slave emits for block.
func (f *fakeTransport) queueFrames(block []byte) {
	for _, frame := range bus.SplitFrames(block) {
		f.replies = append(f.replies, frame.Pack())
	}
}

func (f *fakeTransport) writes() []string {
	var out []string
	for _, o := range f.ops {
		if !o.isRead() {
			out = append(out, string(o.write))
		}
	}

	return out
}

func (f *fakeTransport) reads() []int {
	var out []int
	for _, o := range f.ops {
		if o.isRead() {
			out = append(out, o.read)
		}
	}

	return out
}

// newTestMaster creates a master on t with a silent mock logger.
func newTestMaster(t *testing.T, tr bus.Transport, opts ...Option) (*Master, *logger.MockLogger) {
	t.Helper()

	l := logger.NewMockLogger().AllowAll()
	cfg, err := NewConfig(append([]Option{WithLogger(l)}, opts...)...)
	require.NoError(t, err)

	m, err := NewMaster(tr, cfg)
	require.NoError(t, err)

	return m, l
}

// testPart returns a valid part that differs from the firmware defaults.
func testPart() register.Part {
	part := register.NewPart()
	part.Repeats = 4
	part.ChainTo = 2
	part.Tempo.BPM = 132
	part.Tempo.MorphEnabled = true
	part.DrumSequencer.Channels[0].Enabled = true
	part.DrumSequencer.Channels[0].LastStep = 15
	part.DrumSequencer.Channels[0].SetStep(0, true)
	part.DrumSequencer.Channels[0].SetStep(4, true)
	part.DrumSequencer.Channels[3].Divider = 12
	part.Sampler.Bank = 7
	part.Sampler.Mix = [register.SamplerChannels]uint16{1023, 512, 0, 1, 800}

	return part
}

// encodeBlocks returns the encoded tempo, drum and sampler blocks of part.
func encodeBlocks(t *testing.T, part register.Part) (tempo, drums, sampler []byte) {
	t.Helper()

	var err error
	tempo, err = part.Tempo.MarshalBinary()
	require.NoError(t, err)
	drums, err = part.DrumSequencer.MarshalBinary()
	require.NoError(t, err)
	sampler, err = part.Sampler.MarshalBinary()
	require.NoError(t, err)

	return tempo, drums, sampler
}

// newTestRig creates a simulated rig whose slaves hold the blocks of part.
func newTestRig(t *testing.T, part register.Part) *simbus.Bus {
	t.Helper()

	return simbus.NewRig(encodeBlocks(t, part))
}
