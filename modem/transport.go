package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

// DefaultBaudRate is the line speed used when a SerialDialer has no Mode or
// BaudRate set.
const DefaultBaudRate = 9600

// Transport represents an established, bidirectional byte channel to a WiFi
// modem.
//
// A Transport is assumed to be already connected and ready for use. It provides
// the byte-level primitives the scanner polls: how many bytes are waiting,
// reading them one at a time, discarding stale input and writing commands.
// Typical implementations include serial ports or in-memory fakes used for
// testing.
type Transport interface {
	// Write sends p to the modem.
	Write(p []byte) (n int, err error)
	// ReadByte returns the next received byte. It is only called when
	// Available reported pending bytes.
	ReadByte() (byte, error)
	// Available returns the number of received bytes that can be read
	// without blocking.
	Available() (int, error)
	// ResetInput discards any received but unread bytes.
	ResetInput() error
	// Close releases the underlying channel.
	Close() error
}

// Dialer opens a Transport to a WiFi modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port or a test double) and is intended to be used during modem
// construction only. Once a Transport is obtained, the Dialer is no longer
// needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context) (Transport, error) { return f(ctx) }

// SerialDialer opens a WiFi modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	PortName string
	// BaudRate is used when Mode is nil. Zero means DefaultBaudRate.
	BaudRate int
	// Mode overrides the full line configuration.
	Mode *serial.Mode
	// PollTimeout bounds how long a single availability check may wait for
	// input. Zero makes every check non-blocking.
	PollTimeout time.Duration
}

// Dial opens and configures the serial port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud <= 0 {
			baud = DefaultBaudRate
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
		return nil, fmt.Errorf("modem: open serial port %q: %w", d.PortName, err)
	}
	if err := port.SetReadTimeout(d.PollTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("modem: set read timeout on %q: %w", d.PortName, err)
	}

	return &serialTransport{
		port:  port,
		chunk: make([]byte, 256),
	}, nil
}

// serialTransport adds byte-level availability on top of serial.Port, which
// only offers bulk reads with a timeout.
type serialTransport struct {
	port    serial.Port
	chunk   []byte
	pending []byte
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Available() (int, error) {
	n, err := t.port.Read(t.chunk)
	if err != nil {
		return len(t.pending), err
	}
	t.pending = append(t.pending, t.chunk[:n]...)
	return len(t.pending), nil
}

func (t *serialTransport) ReadByte() (byte, error) {
	if len(t.pending) == 0 {
		return 0, io.EOF
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, nil
}

func (t *serialTransport) ResetInput() error {
	t.pending = nil
	return t.port.ResetInputBuffer()
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
