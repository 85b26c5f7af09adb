package modem

import (
	"log/slog"
	"time"

	"i4.energy/across/wifigw/at"
)

// Default timeouts, tunable per Config.
const (
	DefaultATTimeout          = 2 * time.Second
	DefaultNetworkJoinTimeout = 8 * time.Second
	DefaultTCPConnectTimeout  = 4 * time.Second
	DefaultPromptTimeout      = 1 * time.Second
	DefaultSendTimeout        = 10 * time.Second
	DefaultCloseTimeout       = 1 * time.Second

	DefaultMaxBufferSize = 64 * 1024
)

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

type Config struct {
	Dialer Dialer
	Clock  Clock
	Logger *slog.Logger

	// ATTimeout applies to each command of the init sequence.
	ATTimeout          time.Duration
	NetworkJoinTimeout time.Duration
	TCPConnectTimeout  time.Duration
	PromptTimeout      time.Duration
	SendTimeout        time.Duration
	CloseTimeout       time.Duration

	InitialBufferSize int
	// MaxBufferSize caps a single reply; zero means DefaultMaxBufferSize and
	// a negative value disables the cap.
	MaxBufferSize int

	UserAgent string
	// SkipInit leaves the modem as found instead of running the init
	// sequence (AT, ATE0, AT+CWMODE=1, AT+CIPMUX=0).
	SkipInit bool
}

func (c *Config) setDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.ATTimeout == 0 {
		c.ATTimeout = DefaultATTimeout
	}
	if c.NetworkJoinTimeout == 0 {
		c.NetworkJoinTimeout = DefaultNetworkJoinTimeout
	}
	if c.TCPConnectTimeout == 0 {
		c.TCPConnectTimeout = DefaultTCPConnectTimeout
	}
	if c.PromptTimeout == 0 {
		c.PromptTimeout = DefaultPromptTimeout
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = DefaultCloseTimeout
	}
	if c.InitialBufferSize == 0 {
		c.InitialBufferSize = DefaultInitialBufferSize
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = DefaultMaxBufferSize
	}
	if c.UserAgent == "" {
		c.UserAgent = at.DefaultUserAgent
	}
}

// ConfigBuilder assembles a Config fluently.
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

func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.Clock = c
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	return b
}

func (b *ConfigBuilder) WithNetworkJoinTimeout(d time.Duration) *ConfigBuilder {
	b.config.NetworkJoinTimeout = d
	return b
}

func (b *ConfigBuilder) WithTCPConnectTimeout(d time.Duration) *ConfigBuilder {
	b.config.TCPConnectTimeout = d
	return b
}

func (b *ConfigBuilder) WithPromptTimeout(d time.Duration) *ConfigBuilder {
	b.config.PromptTimeout = d
	return b
}

func (b *ConfigBuilder) WithSendTimeout(d time.Duration) *ConfigBuilder {
	b.config.SendTimeout = d
	return b
}

func (b *ConfigBuilder) WithCloseTimeout(d time.Duration) *ConfigBuilder {
	b.config.CloseTimeout = d
	return b
}

func (b *ConfigBuilder) WithBufferSize(initial, max int) *ConfigBuilder {
	b.config.InitialBufferSize = initial
	b.config.MaxBufferSize = max
	return b
}

func (b *ConfigBuilder) WithUserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

func (b *ConfigBuilder) WithSkipInit(skip bool) *ConfigBuilder {
	b.config.SkipInit = skip
	return b
}

// Build applies defaults and validates the result.
func (b *ConfigBuilder) Build() (Config, error) {
	config := b.config
	config.setDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
