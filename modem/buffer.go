package modem

import (
	"bytes"
	"fmt"
	"math"
)

// DefaultInitialBufferSize is the capacity a ResponseBuffer starts with.
const DefaultInitialBufferSize = 64

// ResponseBuffer accumulates the bytes of one modem reply.
//
// Capacity doubles whenever a write would not fit, newly added capacity is
// zero-filled and the bytes already written are preserved. When max is
// positive, capacity never exceeds it and a write that would need more
// fails with ErrBufferAllocation.
type ResponseBuffer struct {
	data []byte
	n    int
	max  int
}

// NewResponseBuffer allocates a buffer with the given initial capacity
// (DefaultInitialBufferSize when initial <= 0) and optional maximum.
func NewResponseBuffer(initial, max int) (*ResponseBuffer, error) {
	if initial <= 0 {
		initial = DefaultInitialBufferSize
	}
	if max > 0 && initial > max {
		initial = max
	}
	data, err := allocate(initial)
	if err != nil {
		return nil, err
	}
	return &ResponseBuffer{data: data, max: max}, nil
}

// WriteByte appends c, growing the buffer as needed.
func (b *ResponseBuffer) WriteByte(c byte) error {
	if b.n >= len(b.data) {
		if err := b.grow(b.n + 1); err != nil {
			return err
		}
	}
	b.data[b.n] = c
	b.n++
	return nil
}

// Write appends p. It implements io.Writer; on growth failure the bytes that
// fit are kept and the error is ErrBufferAllocation.
func (b *ResponseBuffer) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := b.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Bytes returns the written bytes. The slice aliases the buffer until the
// next write.
func (b *ResponseBuffer) Bytes() []byte { return b.data[:b.n] }

// Len returns the number of bytes written.
func (b *ResponseBuffer) Len() int { return b.n }

// Cap returns the current capacity.
func (b *ResponseBuffer) Cap() int { return len(b.data) }

// ContainsAny reports whether any token occurs as a contiguous substring of
// everything written so far. Empty tokens are ignored.
func (b *ResponseBuffer) ContainsAny(tokens [][]byte) bool {
	data := b.Bytes()
	for _, tok := range tokens {
		if len(tok) > 0 && bytes.Contains(data, tok) {
			return true
		}
	}
	return false
}

func (b *ResponseBuffer) grow(need int) error {
	size := len(b.data)
	if size == 0 {
		size = 1
	}
	for size < need {
		if size > math.MaxInt/2 {
			return fmt.Errorf("%w: capacity overflow", ErrBufferAllocation)
		}
		size *= 2
	}
	if b.max > 0 && size > b.max {
		if need > b.max {
			return fmt.Errorf("%w: reply exceeds %d bytes", ErrBufferAllocation, b.max)
		}
		size = b.max
	}

	data, err := allocate(size)
	if err != nil {
		return err
	}
	copy(data, b.data[:b.n])
	b.data = data
	return nil
}

// allocate returns a zeroed slice, converting a runtime allocation panic
// into ErrBufferAllocation.
func allocate(size int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrBufferAllocation, r)
		}
	}()
	return make([]byte, size), nil
}
