package kosmo

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-kosmo/bus"
)

// Sentinel errors for the master protocol.
//
// Every bus-level failure is recovered by the per-slave retry policy; none of
// them stops the poll loop or affects other slaves.
var (
	// Exchange errors.
	ErrBusTransmission = errors.New("kosmo: bus transmission failed")
	ErrShortRead       = errors.New("kosmo: short read")
	ErrNoData          = errors.New("kosmo: no data received")
	ErrProtocolAbort   = errors.New("kosmo: transfer aborted by slave")
	ErrBlockTooLarge   = errors.New("kosmo: register block exceeds chunk index range")

	// Configuration errors.
	ErrUnknownSlave = errors.New("kosmo: unknown slave")
	ErrNoTransport  = errors.New("kosmo: transport is nil")
)

// TransmissionError is returned when a write transaction ends with a non-zero status.
// It matches ErrBusTransmission with errors.Is.
type TransmissionError struct {
	Address bus.Address
	Status  bus.Status
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("%s: %s: %s (%d)", ErrBusTransmission, e.Address, e.Status, uint8(e.Status))
}

func (e *TransmissionError) Unwrap() error {
	return ErrBusTransmission
}
