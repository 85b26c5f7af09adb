package modem

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "unknown", ConnectionState(42).String())
}

func TestSessionStateString(t *testing.T) {
	want := map[SessionState]string{
		Idle:            "idle",
		TCPOpening:      "tcp-opening",
		TCPOpen:         "tcp-open",
		AwaitingPrompt:  "awaiting-prompt",
		Sending:         "sending",
		Closing:         "closing",
		Done:            "done",
		SessionState(9): "unknown",
	}
	for state, name := range want {
		assert.Equal(t, name, state.String())
	}
}

func TestSessionTransitions(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("full request path", func(t *testing.T) {
		s := newSession(logger)
		for _, next := range []SessionState{TCPOpening, TCPOpen, AwaitingPrompt, Sending, Closing, Done} {
			require.NoError(t, s.to(next))
			assert.Equal(t, next, s.state)
		}
	})

	t.Run("failure skips ahead to closing", func(t *testing.T) {
		s := newSession(logger)
		require.NoError(t, s.to(TCPOpening))
		require.NoError(t, s.to(Closing))
		require.NoError(t, s.to(Done))
	})

	t.Run("backwards is rejected", func(t *testing.T) {
		s := newSession(logger)
		require.NoError(t, s.to(Sending))

		err := s.to(TCPOpen)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, Sending, s.state)
	})

	t.Run("repeating a state is rejected", func(t *testing.T) {
		s := newSession(logger)
		require.NoError(t, s.to(Done))
		assert.ErrorIs(t, s.to(Done), ErrInvalidTransition)
	})
}
