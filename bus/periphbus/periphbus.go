// Package periphbus implements bus.Transport on top of a periph.io I2C bus,
// for masters running on a Linux single-board computer.
//
// Write transactions are buffered between BeginTransmission and
// EndTransmission and sent as one I2C write; RequestFrom performs one I2C read
// of the requested length. Errors reported by the I2C driver are mapped onto
// bus.Status codes, so the protocol layer sees the same end statuses as on a
// microcontroller master.
package periphbus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/arloliu/go-kosmo/bus"
	"github.com/arloliu/go-kosmo/logger"
)

// DefaultSpeed is the bus clock used by the rig's slaves.
const DefaultSpeed = 400 * physic.KiloHertz

// Transport is a bus.Transport backed by an i2c.Bus.
type Transport struct {
	i2c    i2c.Bus
	closer func() error
	buf    bus.TxBuffer
	logger logger.Logger
}

var _ bus.Transport = (*Transport)(nil)

// Open initializes the host drivers and opens the named I2C bus ("" selects the
// first available bus) at DefaultSpeed.
func Open(name string, l logger.Logger) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphbus: host init: %w", err)
	}

	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periphbus: open %q: %w", name, err)
	}

	if err := b.SetSpeed(DefaultSpeed); err != nil {
		// not every adapter supports changing the clock
		l.Warn("periphbus: keeping default bus speed", "bus", b.String(), "error", err)
	}

	t := New(b, l)
	t.closer = b.Close

	return t, nil
}

// New wraps an already opened i2c.Bus.
func New(b i2c.Bus, l logger.Logger) *Transport {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Transport{i2c: b, logger: l}
}

// Close releases the underlying bus if it was opened by Open.
func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}

	return t.closer()
}

// BeginTransmission implements bus.Transport.
func (t *Transport) BeginTransmission(addr bus.Address) {
	t.buf.Begin(addr)
}

// Write implements bus.Transport.
func (t *Transport) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// EndTransmission implements bus.Transport.
func (t *Transport) EndTransmission(ctx context.Context) bus.Status {
	addr, payload, overrun := t.buf.Pending()
	if overrun {
		return bus.StatusDataTooLong
	}
	if ctx.Err() != nil {
		return bus.StatusTimeout
	}

	if err := t.i2c.Tx(uint16(addr), payload, nil); err != nil {
		status := statusFromError(err)
		t.logger.Debug("periphbus: write failed", "address", addr, "status", status, "error", err)

		return status
	}

	return bus.StatusOK
}

// RequestFrom implements bus.Transport.
func (t *Transport) RequestFrom(ctx context.Context, addr bus.Address, n int) int {
	if n <= 0 || ctx.Err() != nil {
		t.buf.Fill(nil)
		return 0
	}

	rx := make([]byte, min(n, bus.TxCap))
	if err := t.i2c.Tx(uint16(addr), nil, rx); err != nil {
		t.logger.Debug("periphbus: read failed", "address", addr, "error", err)
		t.buf.Fill(nil)

		return 0
	}
	t.buf.Fill(rx)

	return len(rx)
}

// Available implements bus.Transport.
func (t *Transport) Available() int {
	return t.buf.Available()
}

// ReadByte implements bus.Transport.
func (t *Transport) ReadByte() (byte, error) {
	return t.buf.ReadByte()
}

// statusFromError maps a driver error onto the closest end status.
// Linux reports a missing ACK as ENXIO/EREMOTEIO and a stuck bus as ETIMEDOUT.
func statusFromError(err error) bus.Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return bus.StatusTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return bus.StatusTimeout
	case strings.Contains(msg, "no such device or address"):
		return bus.StatusAddrNack
	case strings.Contains(msg, "remote i/o error"):
		return bus.StatusDataNack
	default:
		return bus.StatusOther
	}
}
