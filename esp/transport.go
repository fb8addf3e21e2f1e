package esp

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=esp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to an
// ESP-AT module.
//
// The driver reads and writes one byte per call. A call that moves zero
// bytes with a nil error, or fails with at.ErrWouldBlock or
// os.ErrDeadlineExceeded, means "would block": the driver polls again.
// Any other error is reported to the caller as a serial read or write
// failure. Typical implementations are serial ports opened with a read
// timeout, TCP bridges, or the in-memory TestDevice.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to an ESP-AT module.
//
// It is used during driver construction only. Once a Transport is obtained,
// the Dialer is no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may block and
	// should respect cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context) (Transport, error) {
	return f(ctx)
}

// DefaultReadTimeout is the serial read timeout used when a dialer does not
// set one. It is the granularity at which the driver notices cancellation.
const DefaultReadTimeout = 100 * time.Millisecond

// SerialDialer opens the module over a serial port using go.bug.st/serial.
type SerialDialer struct {
	PortName string
	// BaudRate is used when Mode is nil; ESP-AT firmware defaults to 115200.
	BaudRate int
	Mode     *serial.Mode
	// ReadTimeout makes Read return zero bytes after this long without
	// data. Defaults to DefaultReadTimeout; a negative value blocks.
	ReadTimeout time.Duration
}

var _ Dialer = SerialDialer{}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("esp: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("esp: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = 115200
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("esp: open serial port %s: %w", d.PortName, err)
	}

	timeout := d.ReadTimeout
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}
	if timeout < 0 {
		timeout = serial.NoTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("esp: set read timeout: %w", err)
	}

	return port, nil
}
