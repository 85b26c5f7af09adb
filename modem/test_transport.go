package modem

import (
	"io"
	"strings"
	"sync"
	"time"
)

// TestTransport is a scripted in-memory Transport for tests.
//
// Replies are scripted per command with Reply and released when a write
// starting with the scripted prefix arrives. Each reply is split into
// chunks, and every call to Available delivers at most one new chunk, so a
// token can be made to arrive split across several polling cycles.
type TestTransport struct {
	mu      sync.Mutex
	script  []scriptedReply
	queue   [][]byte
	pending []byte
	writes  []string
	resets  int
	polls   int
	pollErr error
	closed  bool
}

type scriptedReply struct {
	prefix string
	chunks []string
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{}
}

// Reply scripts the answer to the next scripted write. Scripted replies are
// consumed in order; a write that does not start with the next prefix gets
// no answer.
func (t *TestTransport) Reply(prefix string, chunks ...string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.script = append(t.script, scriptedReply{prefix: prefix, chunks: chunks})
	return t
}

// Feed queues unsolicited data, one chunk per polling cycle.
func (t *TestTransport) Feed(chunks ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range chunks {
		t.queue = append(t.queue, []byte(c))
	}
}

// FailPolls makes every later Available call return err.
func (t *TestTransport) FailPolls(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pollErr = err
}

// Writes returns everything written so far, one entry per Write call.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Resets returns how often the input was cleared.
func (t *TestTransport) Resets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resets
}

// Polls returns how often Available was called.
func (t *TestTransport) Polls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polls
}

func (t *TestTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}

	t.writes = append(t.writes, string(p))
	if len(t.script) > 0 && strings.HasPrefix(string(p), t.script[0].prefix) {
		for _, c := range t.script[0].chunks {
			t.queue = append(t.queue, []byte(c))
		}
		t.script = t.script[1:]
	}
	return len(p), nil
}

func (t *TestTransport) Available() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.polls++
	if t.pollErr != nil {
		return 0, t.pollErr
	}
	if len(t.pending) == 0 && len(t.queue) > 0 {
		t.pending = t.queue[0]
		t.queue = t.queue[1:]
	}
	return len(t.pending), nil
}

func (t *TestTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return 0, io.EOF
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, nil
}

// ResetInput drops both delivered and queued bytes.
func (t *TestTransport) ResetInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resets++
	t.pending = nil
	t.queue = nil
	return nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// TestClock is a Clock that moves forward by a fixed step on every reading,
// which makes busy-polling timeouts deterministic.
type TestClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewTestClock returns a clock advancing by step per Now call.
func NewTestClock(step time.Duration) *TestClock {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &TestClock{start: start, now: start, step: step}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Elapsed returns how far the clock has moved since creation.
func (c *TestClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}
