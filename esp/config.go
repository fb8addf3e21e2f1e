package esp

import (
	"log/slog"
	"time"

	"i4.energy/across/espat/at"
)

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

type Config struct {
	// Dialer opens the transport. Only New needs it.
	Dialer Dialer
	// EchoOn selects ATE1 during New; the default is ATE0. With echo on,
	// command methods drop the echoed command line from the reply before
	// decoding it. ReadResponse returns it untouched.
	EchoOn bool
	// ATTimeout bounds the exchange of one command when the caller's
	// context has no deadline. Zero waits as long as the transport does.
	ATTimeout time.Duration
	// InitTimeout bounds the initialization performed by New. Zero means
	// no bound beyond the context passed to New.
	InitTimeout time.Duration
	// BufferSize is the response framing capacity.
	BufferSize int
	// EscapeArguments escapes '\\', '"' and ',' in quoted arguments.
	EscapeArguments bool
	// SkipInit makes New return right after dialing, without draining
	// pending output or setting echo.
	SkipInit bool
	Logger   *slog.Logger
}

func (c *Config) setDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = at.DefaultBufferSize
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithEchoOn(on bool) *ConfigBuilder {
	b.config.EchoOn = on
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.InitTimeout = d
	return b
}

func (b *ConfigBuilder) WithBufferSize(n int) *ConfigBuilder {
	b.config.BufferSize = n
	return b
}

func (b *ConfigBuilder) WithEscapedArguments(on bool) *ConfigBuilder {
	b.config.EscapeArguments = on
	return b
}

func (b *ConfigBuilder) WithSkipInit(skip bool) *ConfigBuilder {
	b.config.SkipInit = skip
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
