package modem_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/wifigw/modem"
)

func newTestScanner(transport modem.Transport, clock modem.Clock) *modem.Scanner {
	return modem.NewScanner(transport, modem.Config{Clock: clock})
}

func TestScannerScan(t *testing.T) {
	tests := []struct {
		name      string
		chunks    []string
		timeout   time.Duration
		tokens    []string
		wantErr   error
		wantPolls int
	}{
		{
			name:      "Match in first chunk",
			chunks:    []string{"\r\nOK\r\n"},
			timeout:   time.Second,
			tokens:    []string{"OK"},
			wantPolls: 1,
		},
		{
			name:      "First match ends the scan",
			chunks:    []string{"OK", "noise", "noise"},
			timeout:   time.Second,
			tokens:    []string{"OK"},
			wantPolls: 1,
		},
		{
			name:      "Token split across reads",
			chunks:    []string{"\r\nSEND ", "O", "K\r\n"},
			timeout:   time.Second,
			tokens:    []string{"SEND OK"},
			wantPolls: 3,
		},
		{
			name:      "Any of several tokens",
			chunks:    []string{"\r\nALREADY CONNECTED\r\n"},
			timeout:   time.Second,
			tokens:    []string{"OK", "ALREADY CONNECTED"},
			wantPolls: 1,
		},
		{
			name:      "No match waits for the full timeout",
			chunks:    []string{"\r\nbusy p...", "\r\n"},
			timeout:   500 * time.Millisecond,
			tokens:    []string{"OK"},
			wantErr:   modem.ErrScanTimeout,
			wantPolls: 5,
		},
		{
			name:      "Silence times out",
			timeout:   300 * time.Millisecond,
			tokens:    []string{"OK"},
			wantErr:   modem.ErrScanTimeout,
			wantPolls: 3,
		},
		{
			name:      "Zero timeout still polls once",
			timeout:   0,
			tokens:    []string{"OK"},
			wantErr:   modem.ErrScanTimeout,
			wantPolls: 1,
		},
		{
			name:      "Zero timeout matches data already waiting",
			chunks:    []string{"OK"},
			timeout:   0,
			tokens:    []string{"OK"},
			wantPolls: 1,
		},
		{
			name:      "Empty token never matches",
			chunks:    []string{"anything"},
			timeout:   200 * time.Millisecond,
			tokens:    []string{""},
			wantErr:   modem.ErrScanTimeout,
			wantPolls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := modem.NewTestTransport()
			transport.Feed(tt.chunks...)
			scanner := newTestScanner(transport, modem.NewTestClock(100*time.Millisecond))

			tokens := make([][]byte, len(tt.tokens))
			for i, tok := range tt.tokens {
				tokens[i] = []byte(tok)
			}

			err := scanner.Scan(context.Background(), tt.timeout, tokens...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPolls, transport.Polls())
		})
	}
}

func TestScannerTimeoutIsMeasuredFromStart(t *testing.T) {
	transport := modem.NewTestTransport()
	clock := modem.NewTestClock(250 * time.Millisecond)
	scanner := newTestScanner(transport, clock)

	err := scanner.Scan(context.Background(), time.Second, []byte("OK"))
	require.ErrorIs(t, err, modem.ErrScanTimeout)

	assert.Equal(t, 4, transport.Polls())
	assert.GreaterOrEqual(t, clock.Elapsed(), time.Second)
}

func TestScannerErrors(t *testing.T) {
	t.Run("poll error is wrapped", func(t *testing.T) {
		transport := modem.NewTestTransport()
		transport.FailPolls(io.ErrUnexpectedEOF)
		scanner := newTestScanner(transport, modem.NewTestClock(time.Millisecond))

		err := scanner.Scan(context.Background(), time.Second, []byte("OK"))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.ErrorContains(t, err, "poll transport")
	})

	t.Run("cancelled context stops before polling", func(t *testing.T) {
		transport := modem.NewTestTransport()
		transport.Feed("OK")
		scanner := newTestScanner(transport, modem.NewTestClock(time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := scanner.Scan(ctx, time.Second, []byte("OK"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, transport.Polls())
	})

	t.Run("reply larger than the buffer limit", func(t *testing.T) {
		transport := modem.NewTestTransport()
		transport.Feed("+IPD,12:HTTP/1.1 200", " OK")
		scanner := modem.NewScanner(transport, modem.Config{
			Clock:             modem.NewTestClock(time.Millisecond),
			InitialBufferSize: 2,
			MaxBufferSize:     8,
		})

		err := scanner.Scan(context.Background(), time.Second, []byte("OK"))
		assert.ErrorIs(t, err, modem.ErrBufferAllocation)
		assert.Equal(t, 1, transport.Polls())
	})

	t.Run("negative limit disables the cap", func(t *testing.T) {
		transport := modem.NewTestTransport()
		transport.Feed(string(bytes.Repeat([]byte("x"), 1000)), "OK")
		scanner := modem.NewScanner(transport, modem.Config{
			Clock:             modem.NewTestClock(time.Millisecond),
			InitialBufferSize: 2,
			MaxBufferSize:     -1,
		})

		assert.NoError(t, scanner.Scan(context.Background(), time.Second, []byte("OK")))
	})
}

func TestScannerDebugLog(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	transport := modem.NewTestTransport()
	transport.Feed("AT\r\n\r\nOK\r\n")
	scanner := modem.NewScanner(transport, modem.Config{
		Clock:  modem.NewTestClock(time.Millisecond),
		Logger: logger,
	})

	require.NoError(t, scanner.Scan(context.Background(), time.Second, []byte("OK")))

	assert.Contains(t, out.String(), `msg="Scan finished"`)
	assert.Contains(t, out.String(), "matched=true")
	assert.Contains(t, out.String(), "bytes=10")
}
