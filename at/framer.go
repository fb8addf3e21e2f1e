package at

import (
	"bytes"
	"io"
)

// DefaultBufferSize is the framing capacity of an ESP-AT response.
const DefaultBufferSize = 1024

// Framer delimits responses in the byte stream coming from the device.
//
// Bytes are accumulated in a fixed-size buffer. Every CR LF closes a line,
// and a line that classifies as final (OK, ERROR, busy) ends the response.
// Everything else, including blank lines and device log output, is kept as
// payload.
type Framer struct {
	buf []byte
}

// NewFramer returns a Framer with a buffer of the given capacity. A size
// of zero or less selects DefaultBufferSize.
func NewFramer(size int) *Framer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Framer{buf: make([]byte, size)}
}

// Cap returns the buffer capacity.
func (f *Framer) Cap() int {
	return len(f.buf)
}

// ReadResponse consumes bytes from r until a terminator line is found.
//
// On OK it returns everything before the OK line with trailing whitespace
// removed. The returned slice aliases the internal buffer and is only valid
// until the next call. On ERROR or FAIL it returns ErrProtocol, on a busy
// marker ErrBusy, and ErrBufferOverflow when the buffer fills up first.
// Errors from r are returned unchanged.
func (f *Framer) ReadResponse(r io.ByteReader) ([]byte, error) {
	i, lineStart := 0, 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		if b == LF && i >= 1 && f.buf[i-1] == CR {
			line := bytes.TrimSpace(f.buf[lineStart : i-1])
			switch ClassifyBytes(line) {
			case TypeOK:
				return bytes.TrimRight(f.buf[:lineStart], " \t\r\n"), nil
			case TypeError:
				return nil, ErrProtocol
			case TypeBusy:
				return nil, ErrBusy
			}
			f.buf[i] = LF
			lineStart = i + 1
		} else {
			f.buf[i] = b
		}

		i++
		if i >= len(f.buf) {
			return nil, ErrBufferOverflow
		}
	}
}
