package esp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"i4.energy/across/espat/at"
)

// port turns a Transport into the blocking byte source and sink used by the
// at package. It spins while the transport would block, checking ctx on
// every empty poll, and wraps transport errors in *at.SerialError.
type port struct {
	ctx context.Context
	t   Transport
	one [1]byte
	// sent collects written bytes when non-nil
	sent *[]byte
}

var (
	_ io.ByteReader = (*port)(nil)
	_ io.ByteWriter = (*port)(nil)
)

func wouldBlock(n int, err error) bool {
	if n > 0 {
		return false
	}
	return err == nil || errors.Is(err, at.ErrWouldBlock) || errors.Is(err, os.ErrDeadlineExceeded)
}

func (p *port) ReadByte() (byte, error) {
	for {
		n, err := p.t.Read(p.one[:])
		if n == 1 {
			return p.one[0], nil
		}
		if !wouldBlock(n, err) {
			return 0, &at.SerialError{Op: at.OpRead, Err: err}
		}
		if err := p.ctx.Err(); err != nil {
			return 0, fmt.Errorf("wait for response: %w", err)
		}
	}
}

func (p *port) WriteByte(c byte) error {
	p.one[0] = c
	for {
		n, err := p.t.Write(p.one[:])
		if n == 1 {
			if p.sent != nil {
				*p.sent = append(*p.sent, c)
			}
			return nil
		}
		if !wouldBlock(n, err) {
			return &at.SerialError{Op: at.OpWrite, Err: err}
		}
		if err := p.ctx.Err(); err != nil {
			return fmt.Errorf("wait for transmit: %w", err)
		}
	}
}

// drain reads and discards bytes until the transport would block or ctx is
// done. Read errors are ignored, except io.EOF which ends the drain since a
// closed stream never reports would-block.
func (p *port) drain() (discarded int) {
	for p.ctx.Err() == nil {
		n, err := p.t.Read(p.one[:])
		switch {
		case n == 1:
			discarded++
		case wouldBlock(n, err), errors.Is(err, io.EOF):
			return discarded
		}
	}
	return discarded
}
