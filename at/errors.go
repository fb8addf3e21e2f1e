package at

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol is returned when the device answers a command with ERROR
	// (or FAIL). The device gives no further detail, so none is kept.
	ErrProtocol = errors.New("device replied ERROR")

	// ErrBusy is returned when the device answers with its busy marker.
	//
	// The command was not executed. Callers may retry later; nothing in
	// this package retries on its own.
	ErrBusy = errors.New("device busy")

	// ErrBufferOverflow is returned when a response does not fit in the
	// framing buffer before a terminator line is seen. The partial response
	// is discarded.
	ErrBufferOverflow = errors.New("response exceeds buffer capacity")

	// ErrWouldBlock may be returned by a transport to signal that no byte is
	// available (or can be accepted) right now. A Read or Write returning
	// zero bytes and a nil error means the same.
	ErrWouldBlock = errors.New("operation would block")

	// ErrSerialRead and ErrSerialWrite match any *SerialError of the
	// corresponding direction with errors.Is.
	ErrSerialRead  = errors.New("serial read failed")
	ErrSerialWrite = errors.New("serial write failed")
)

// Op is the direction of a failed transport operation.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// SerialError wraps an error reported by the transport itself. Use
// errors.As to reach the transport specific error kind.
type SerialError struct {
	Op  Op
	Err error
}

func (e *SerialError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *SerialError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for ErrSerialRead and ErrSerialWrite.
func (e *SerialError) Is(target error) bool {
	switch target {
	case ErrSerialRead:
		return e.Op == OpRead
	case ErrSerialWrite:
		return e.Op == OpWrite
	}
	return false
}
