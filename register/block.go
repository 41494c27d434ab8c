package register

import (
	"encoding"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrSizeMismatch is returned when a byte slice does not match a block's fixed size.
	ErrSizeMismatch = errors.New("register: block size mismatch")
	// ErrInvalidValue is returned when a field is outside the range the slave accepts.
	ErrInvalidValue = errors.New("register: invalid value")
)

// Block is a fixed-size register block of one slave kind.
type Block interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	slog.LogValuer

	// Size returns the encoded size in bytes.
	Size() int
	// Validate reports fields outside the ranges accepted by the slave.
	Validate() error
}

func checkSize(name string, data []byte, size int) error {
	if len(data) != size {
		return fmt.Errorf("%w: %s got %d bytes, want %d", ErrSizeMismatch, name, len(data), size)
	}

	return nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}

	return 0
}

func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidValue, field, value)
}
