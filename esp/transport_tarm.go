package esp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"i4.energy/across/espat/at"
)

// TarmDialer opens the module over a serial port using github.com/tarm/serial.
// It is an alternative for platforms where go.bug.st/serial is unavailable.
type TarmDialer struct {
	PortName    string
	BaudRate    int
	ReadTimeout time.Duration
}

var _ Dialer = TarmDialer{}

func (d TarmDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("esp: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("esp: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baud := d.BaudRate
	if baud == 0 {
		baud = 115200
	}
	timeout := d.ReadTimeout
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        d.PortName,
		Baud:        baud,
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("esp: open serial port %s: %w", d.PortName, err)
	}
	return &tarmPort{port: port}, nil
}

// tarmPort reports read timeouts as would-block. On POSIX systems tarm
// surfaces an expired VTIME read as io.EOF, which would otherwise look
// like a closed stream.
type tarmPort struct {
	port *serial.Port
}

func (p *tarmPort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, at.ErrWouldBlock
	}
	return n, err
}

func (p *tarmPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *tarmPort) Close() error {
	return p.port.Close()
}
