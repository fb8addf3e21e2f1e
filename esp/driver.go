package esp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"i4.energy/across/espat/at"
)

// Driver talks to an ESP8266/ESP32 module running the ESP-AT firmware.
//
// A Driver exclusively owns its Transport and a fixed-size framing buffer.
// Commands and responses strictly alternate: every method writes one
// command and blocks until its response has been framed. A Driver is not
// safe for concurrent use; callers sharing one must serialize access.
type Driver struct {
	// transport is the byte stream to the module
	transport Transport
	// framer owns the response scratch buffer
	framer *at.Framer
	// config contains the driver configuration settings
	config Config
	logger *slog.Logger
	// closed indicates if the driver has been shut down
	closed bool
	// sent holds the last command line when echo is on
	sent []byte
}

// New dials the module with config.Dialer and prepares it for use.
//
// Unless config.SkipInit is set, output already pending on the link (boot
// banners, stale responses) is discarded and echo is switched according to
// config.EchoOn. The transport is closed again if initialization fails.
func New(ctx context.Context, config Config) (*Driver, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	d := Attach(transport, config)
	if config.SkipInit {
		return d, nil
	}

	initCtx := ctx
	if config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.InitTimeout)
		defer cancel()
	}

	if err := d.init(initCtx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize module: %w", err)
	}
	return d, nil
}

// Attach wraps a transport that is already open. No bytes are exchanged.
// The Dialer in config is ignored.
func Attach(transport Transport, config Config) *Driver {
	config.setDefaults()
	return &Driver{
		transport: transport,
		framer:    at.NewFramer(config.BufferSize),
		config:    config,
		logger:    config.Logger,
	}
}

func (d *Driver) init(ctx context.Context) error {
	if n := d.skipToNext(ctx); n > 0 {
		d.logger.Debug("discarded pending output", "bytes", n)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("discard pending output: %w", err)
	}
	if d.config.EchoOn {
		if err := d.EchoOn(ctx); err != nil {
			return fmt.Errorf("could not enable echo: %w", err)
		}
		return nil
	}
	if err := d.EchoOff(ctx); err != nil {
		return fmt.Errorf("could not disable echo: %w", err)
	}
	return nil
}

// Close releases the transport. After Close the Driver cannot be reused.
func (d *Driver) Close() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true
	if d.transport != nil {
		return d.transport.Close()
	}
	return nil
}

// Transport returns the underlying transport, for callers that want it
// back after they are done with the Driver.
func (d *Driver) Transport() Transport {
	return d.transport
}

func (d *Driver) ready() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	if d.transport == nil {
		return ErrNotInitialized
	}
	return nil
}

// withTimeout applies config.ATTimeout when ctx has no deadline.
func (d *Driver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok && d.config.ATTimeout > 0 {
		return context.WithTimeout(ctx, d.config.ATTimeout)
	}
	return ctx, func() {}
}

func (d *Driver) encoder(p *port) *at.Encoder {
	e := at.NewEncoder(p)
	e.Escape = d.config.EscapeArguments
	return e
}

// exec writes one command through encode and frames the reply. name is
// the bare command used for logging and error context; arguments are
// never logged. The returned payload aliases the framing buffer.
func (d *Driver) exec(ctx context.Context, name string, encode func(e *at.Encoder) error) ([]byte, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	p := &port{ctx: ctx, t: d.transport}
	if d.config.EchoOn {
		d.sent = d.sent[:0]
		p.sent = &d.sent
	}
	d.logger.Debug("send command", "cmd", name)
	if err := encode(d.encoder(p)); err != nil {
		d.logger.Debug("command not sent", "cmd", name, "error", err)
		return nil, fmt.Errorf("write command %s: %w", name, err)
	}

	payload, err := d.framer.ReadResponse(p)
	if err != nil {
		d.logger.Debug("command failed", "cmd", name, "error", err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if d.config.EchoOn {
		payload = stripEcho(payload, bytes.TrimSuffix(d.sent, []byte(at.CRLF)))
	}
	d.logger.Debug("response framed", "cmd", name, "bytes", len(payload))
	return payload, nil
}

// stripEcho removes a leading payload line equal to cmd, as sent back by a
// module in ATE1 mode.
func stripEcho(payload, cmd []byte) []byte {
	if len(cmd) == 0 {
		return payload
	}
	rest, ok := bytes.CutPrefix(payload, cmd)
	if !ok {
		return payload
	}
	if len(rest) > 0 && rest[0] != at.CR && rest[0] != at.LF {
		return payload
	}
	return bytes.TrimLeft(rest, "\r\n")
}

// SendCommand writes text followed by CR LF without waiting for a reply.
// Pair it with ReadResponse.
func (d *Driver) SendCommand(ctx context.Context, text string) error {
	if err := d.ready(); err != nil {
		return err
	}
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	p := &port{ctx: ctx, t: d.transport}
	return d.encoder(p).Command(text)
}

// ReadResponse frames the next response from the module.
//
// The returned slice is a view of the Driver's scratch buffer and is only
// valid until the next command or response on this Driver. Copy it if it
// must outlive that. An echoed command line is not removed.
func (d *Driver) ReadResponse(ctx context.Context) ([]byte, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	return d.framer.ReadResponse(&port{ctx: ctx, t: d.transport})
}

// SkipToNext discards whatever the module has already sent, until the
// transport reports that no more input is available. It is meant for
// flushing unsolicited output before a fresh command and returns the
// number of bytes dropped. Read errors are swallowed.
//
// SkipToNext relies on the transport reporting would-block. On a transport
// whose Read blocks indefinitely, it blocks too.
func (d *Driver) SkipToNext() int {
	return d.skipToNext(context.Background())
}

// skipToNext is SkipToNext bounded by ctx.
func (d *Driver) skipToNext(ctx context.Context) int {
	if d.ready() != nil {
		return 0
	}
	return (&port{ctx: ctx, t: d.transport}).drain()
}

// Command sends an arbitrary command line and returns the success payload
// as an owned string.
func (d *Driver) Command(ctx context.Context, text string) (string, error) {
	name := text
	if i := strings.IndexAny(text, "=?"); i >= 0 {
		name = text[:i]
	}
	payload, err := d.exec(ctx, name, func(e *at.Encoder) error {
		return e.Command(text)
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
