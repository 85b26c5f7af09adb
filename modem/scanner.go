package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/wifigw/at"
)

// Scanner waits for a modem reply that contains one of a set of success
// tokens.
//
// Every scan starts with a fresh ResponseBuffer and busy-polls the transport:
// each cycle drains all available bytes into the buffer, searches the whole
// accumulated reply for the tokens and then checks the clock. Because the
// search always covers the entire reply, a token split across several reads
// is still found. The first match ends the scan.
type Scanner struct {
	transport   Transport
	clock       Clock
	logger      *slog.Logger
	metrics     *Metrics
	initialSize int
	maxSize     int
}

// NewScanner creates a Scanner reading from transport. Only the clock, logger
// and buffer sizing fields of config are used.
func NewScanner(transport Transport, config Config) *Scanner {
	config.setDefaults()
	return newScanner(transport, config, newMetrics())
}

func newScanner(transport Transport, config Config, metrics *Metrics) *Scanner {
	return &Scanner{
		transport:   transport,
		clock:       config.Clock,
		logger:      config.Logger,
		metrics:     metrics,
		initialSize: config.InitialBufferSize,
		maxSize:     config.MaxBufferSize,
	}
}

// Scan returns nil as soon as the reply contains any of tokens. It returns
// ErrScanTimeout once timeout has elapsed without a match, ErrBufferAllocation
// if the reply cannot be buffered, a wrapped transport error if polling or
// reading fails, or ctx.Err() if ctx is done.
func (s *Scanner) Scan(ctx context.Context, timeout time.Duration, tokens ...[]byte) (err error) {
	buf, err := NewResponseBuffer(s.initialSize, s.maxSize)
	if err != nil {
		return err
	}

	start := s.clock.Now()
	defer func() {
		s.finish(ctx, buf, s.clock.Now().Sub(start), err)
	}()

	checked := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.transport.Available()
		if err != nil {
			return fmt.Errorf("poll transport: %w", err)
		}
		for range n {
			c, err := s.transport.ReadByte()
			if err != nil {
				return fmt.Errorf("read transport: %w", err)
			}
			if err := buf.WriteByte(c); err != nil {
				return err
			}
		}

		// The reply only changes when bytes arrive.
		if n > 0 || !checked {
			if buf.ContainsAny(tokens) {
				return nil
			}
			checked = true
		}

		if s.clock.Now().Sub(start) >= timeout {
			return ErrScanTimeout
		}
	}
}

func (s *Scanner) finish(ctx context.Context, buf *ResponseBuffer, elapsed time.Duration, err error) {
	s.metrics.BytesRead.Add(int64(buf.Len()))
	s.metrics.observeBufferSize(buf.Cap())
	if errors.Is(err, ErrScanTimeout) {
		s.metrics.CommandTimeoutCount.Inc()
	}

	if !s.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	lines := at.Lines(buf.Bytes())
	kinds := make([]string, len(lines))
	for i, line := range lines {
		kinds[i] = at.Classify(line).String()
	}
	s.logger.Debug("Scan finished",
		"matched", err == nil,
		"elapsed", elapsed,
		"bytes", buf.Len(),
		"lines", lines,
		"kinds", kinds,
		"error", err,
	)
}
