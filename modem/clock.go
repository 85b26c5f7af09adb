package modem

import "time"

// Clock supplies the wall-clock readings used to enforce scan timeouts.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
