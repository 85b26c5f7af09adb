package modem

import (
	"context"
	"errors"
	"fmt"

	"i4.energy/across/wifigw/at"
)

// Get sends a single HTTP GET for path to host:port over a TCP link that is
// opened for this request and closed before Get returns.
//
// The sequence is: open the TCP link, announce the request length and wait
// for the send prompt, write the request and wait for the send confirmation,
// then close the link. The close is issued exactly once on every path, also
// when an earlier step failed or ctx was cancelled. A nil error means every
// step succeeded; otherwise the error wraps the stage that failed first
// (ErrTCPOpen, ErrPromptTimeout, ErrPayloadSend or ErrCloseTimeout).
//
// Arguments that would break the command framing are rejected with
// at.ErrInvalidArgument before the link is opened.
//
// Success only means the request was handed to the server. The response is
// not read.
func (m *Modem) Get(ctx context.Context, host, path string, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	if err := errors.Join(at.CheckHost(host), at.CheckPath(path), at.CheckHeader("user agent", m.config.UserAgent)); err != nil {
		return err
	}
	return m.request(ctx, host, port, at.HTTPGetAs(host, path, m.config.UserAgent))
}

// Post is reserved for sending a request body. It is not implemented and
// never touches the transport.
func (m *Modem) Post(ctx context.Context, host, path string, body []byte, port int) error {
	return ErrNotImplemented
}

func (m *Modem) request(ctx context.Context, host string, port int, payload string) (err error) {
	m.metrics.RequestCount.Inc()
	logger := m.logger.With("host", host, "port", port)
	s := newSession(logger)

	defer func() {
		// The link is torn down even if the caller gave up.
		closeErr := m.closeTCP(context.WithoutCancel(ctx), s)
		if err == nil {
			err = closeErr
		} else if closeErr != nil {
			logger.Warn("TCP close failed after earlier failure", "error", closeErr)
		}
		if err != nil {
			m.metrics.RequestFailCount.Inc()
			logger.Error("Request failed", "stage", FailedStage(err), "error", err)
		}
	}()

	if err := s.to(TCPOpening); err != nil {
		return err
	}
	open := at.NewCommand(at.OpenTCP(host, port), m.config.TCPConnectTimeout, at.OK, at.AlreadyConnected)
	if err := m.exec(ctx, open); err != nil {
		return fmt.Errorf("%w: %w", ErrTCPOpen, err)
	}
	if err := s.to(TCPOpen); err != nil {
		return err
	}

	if err := s.to(AwaitingPrompt); err != nil {
		return err
	}
	announce := at.NewCommand(at.SendLength(len(payload)), m.config.PromptTimeout, at.Prompt)
	if err := m.exec(ctx, announce); err != nil {
		return fmt.Errorf("%w: %w", ErrPromptTimeout, err)
	}

	if err := s.to(Sending); err != nil {
		return err
	}
	send := at.NewRawCommand(payload, m.config.SendTimeout, at.SendOK)
	if err := m.exec(ctx, send); err != nil {
		return fmt.Errorf("%w: %w", ErrPayloadSend, err)
	}

	logger.Debug("Request sent", "bytes", len(payload))
	return nil
}

func (m *Modem) closeTCP(ctx context.Context, s *session) error {
	defer s.to(Done)

	// Closing is reachable from every earlier state, and the close must be
	// issued regardless.
	if err := s.to(Closing); err != nil {
		s.logger.Warn("Unexpected session state before close", "error", err)
	}
	m.metrics.TCPCloseCount.Inc()
	cmd := at.NewCommand(at.CloseTCP(), m.config.CloseTimeout, at.Linked, at.ERROR, at.MustRestart, at.OK)
	if err := m.exec(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrCloseTimeout, err)
	}
	return nil
}
