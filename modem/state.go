package modem

import (
	"fmt"
	"log/slog"
)

// ConnectionState reports whether the modem is joined to a wireless network.
// It changes only on the outcome of a join or leave command.
type ConnectionState uint8

const (
	Disconnected ConnectionState = iota
	Connected
)

// String returns string representation of the connection state.
func (cs ConnectionState) String() string {
	switch cs {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// SessionState tracks the progress of a single HTTP request over a TCP link.
type SessionState uint8

const (
	Idle SessionState = iota
	TCPOpening
	TCPOpen
	AwaitingPrompt
	Sending
	Closing
	Done
)

func (s SessionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case TCPOpening:
		return "tcp-opening"
	case TCPOpen:
		return "tcp-open"
	case AwaitingPrompt:
		return "awaiting-prompt"
	case Sending:
		return "sending"
	case Closing:
		return "closing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// session is the per-request state machine. Transitions only move forward;
// skipping ahead (for example straight to Closing on failure) is allowed.
type session struct {
	state  SessionState
	logger *slog.Logger
}

func newSession(logger *slog.Logger) *session {
	return &session{state: Idle, logger: logger}
}

func (s *session) to(next SessionState) error {
	if next <= s.state {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
	}
	s.logger.Debug("Session transition", "from", s.state, "to", next)
	s.state = next
	return nil
}
