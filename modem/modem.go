package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"i4.energy/across/wifigw/at"
)

// Modem represents an ESP8266-class WiFi modem that communicates via AT
// commands over a single serial channel.
//
// Only one command is in flight at a time: every public operation holds the
// modem lock for its full duration, so the transport is never shared between
// interleaved commands. There are no retries at this layer.
type Modem struct {
	mu sync.Mutex

	// transport provides the physical connection to the modem
	transport Transport
	// scanner waits for command replies on transport
	scanner *Scanner
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger
	// metrics counts commands, bytes and requests
	metrics *Metrics

	// state is changed only by network join and leave outcomes. It is read
	// without the lock so status queries do not wait for a running request.
	state atomic.Uint32
	// closed indicates if the modem has been shut down
	closed bool
}

// New creates a new Modem instance with the given configuration.
// It establishes the transport connection and, unless config.SkipInit is set,
// runs the init sequence: attention, echo off, station mode and single
// connection mode.
//
// Returns an error if the transport connection or modem initialization
// fails.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	metrics := newMetrics()
	m := &Modem{
		transport: transport,
		scanner:   newScanner(transport, config, metrics),
		config:    config,
		logger:    config.Logger,
		metrics:   metrics,
	}

	if !config.SkipInit {
		if err := m.init(ctx); err != nil {
			transport.Close()
			return nil, fmt.Errorf("initialize modem: %w", err)
		}
	}

	return m, nil
}

// init performs the initial setup sequence for the modem hardware.
// Echo must be off before anything else is scanned: an echoed command could
// otherwise contain a success token by itself.
func (m *Modem) init(ctx context.Context) error {
	steps := []struct {
		cmd  string
		what string
	}{
		{at.Attention(), "modem not responding"},
		{at.EchoOff(), "could not disable echo"},
		{at.StationMode(), "could not select station mode"},
		{at.SingleConnection(), "could not select single connection mode"},
	}

	for _, step := range steps {
		if err := m.exec(ctx, at.NewCommand(step.cmd, m.config.ATTimeout, at.OK)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInit, step.what, err)
		}
	}
	return nil
}

// Connect joins the wireless network ssid. The connection state becomes
// Connected on success and Disconnected on failure. Credentials containing
// quotes or line breaks are rejected with at.ErrInvalidArgument before
// anything is written.
func (m *Modem) Connect(ctx context.Context, ssid, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}

	if err := errors.Join(at.CheckQuoted("ssid", ssid), at.CheckQuoted("password", password)); err != nil {
		return err
	}

	cmd := at.NewCommand(at.JoinNetwork(ssid, password), m.config.NetworkJoinTimeout, at.OK)
	if err := m.exec(ctx, cmd); err != nil {
		m.setState(Disconnected)
		return fmt.Errorf("%w: ssid %q: %w", ErrNetworkJoin, ssid, err)
	}
	m.setState(Connected)
	return nil
}

// Disconnect leaves the current wireless network. On failure the connection
// state is left unchanged.
func (m *Modem) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}

	cmd := at.NewCommand(at.LeaveNetwork(), m.config.NetworkJoinTimeout, at.OK)
	if err := m.exec(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkLeave, err)
	}
	m.setState(Disconnected)
	return nil
}

// IsConnected reports whether the last join succeeded and no leave has
// succeeded since.
func (m *Modem) IsConnected() bool {
	return m.State() == Connected
}

// State returns the current connection state. It does not block on an
// operation in progress.
func (m *Modem) State() ConnectionState {
	return ConnectionState(m.state.Load())
}

// Metrics returns the live counters of this modem.
func (m *Modem) Metrics() *Metrics {
	return m.metrics
}

// Close shuts down the modem and releases the transport. After calling
// Close(), the modem cannot be reused.
func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true
	m.state.Store(uint32(Disconnected))

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

func (m *Modem) ready() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if m.transport == nil {
		return ErrNotInitialized
	}
	return nil
}

func (m *Modem) setState(s ConnectionState) {
	if prev := ConnectionState(m.state.Swap(uint32(s))); prev != s {
		m.logger.Info("Connection state changed", "from", prev, "to", s)
	}
}

// exec discards stale input, writes cmd and scans for its success tokens.
func (m *Modem) exec(ctx context.Context, cmd at.Command) error {
	if err := m.transport.ResetInput(); err != nil {
		return fmt.Errorf("reset input: %w", err)
	}

	wire := cmd.Wire()
	n, err := m.transport.Write(wire)
	m.metrics.BytesWritten.Add(int64(n))
	if err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	m.metrics.CommandCount.Inc()

	m.logger.Debug("Command sent", "command", cmd.String(), "timeout", cmd.Timeout())
	return m.scanner.Scan(ctx, cmd.Timeout(), cmd.Tokens()...)
}
