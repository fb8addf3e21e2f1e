package esp

import (
	"io"
	"strings"
	"sync"

	"i4.energy/across/espat/at"
)

// TestDevice is an in-memory ESP-AT module for tests and demos.
//
// Bytes written by the driver are collected into CR LF terminated command
// lines. Each complete line is answered with the reply registered for it,
// or with ERROR when there is none. Read never blocks: with nothing queued
// it returns zero bytes, which the driver treats as would-block.
type TestDevice struct {
	mu       sync.Mutex
	replies  map[string][]string
	pending  []byte
	written  strings.Builder
	out      []byte
	commands []string
	readErr  error
	writeErr error
	closed   bool
}

// NewTestDevice creates an emulated module with no replies registered.
func NewTestDevice() *TestDevice {
	return &TestDevice{replies: make(map[string][]string)}
}

// Reply registers raw as the answer to the command line cmd. Registering
// the same command again queues further answers; the last one is reused
// once the queue is down to it.
func (t *TestDevice) Reply(cmd, raw string) *TestDevice {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[cmd] = append(t.replies[cmd], raw)
	return t
}

// SendData queues unsolicited bytes, as if the module printed them.
func (t *TestDevice) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = append(t.out, data...)
}

// FailReads makes every following Read return err.
func (t *TestDevice) FailReads(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr = err
}

// FailWrites makes every following Write return err.
func (t *TestDevice) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// Commands returns the command lines received so far.
func (t *TestDevice) Commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.commands...)
}

// Written returns every byte the driver wrote, terminators included.
func (t *TestDevice) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written.String()
}

// Pending returns the number of queued bytes not yet read.
func (t *TestDevice) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.out)
}

func (t *TestDevice) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}

	t.written.Write(p)
	t.pending = append(t.pending, p...)
	for {
		advance, line, _ := at.Splitter(t.pending, false)
		if advance == 0 {
			break
		}
		cmd := string(line)
		t.pending = t.pending[advance:]
		t.commands = append(t.commands, cmd)
		t.out = append(t.out, t.replyLocked(cmd)...)
	}
	return len(p), nil
}

func (t *TestDevice) replyLocked(cmd string) string {
	queue, ok := t.replies[cmd]
	if !ok {
		return at.CRLF + at.ERROR + at.CRLF
	}
	reply := queue[0]
	if len(queue) > 1 {
		t.replies[cmd] = queue[1:]
	}
	return reply
}

func (t *TestDevice) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}
	if t.readErr != nil {
		return 0, t.readErr
	}
	n = copy(p, t.out)
	t.out = t.out[n:]
	return n, nil
}

func (t *TestDevice) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
