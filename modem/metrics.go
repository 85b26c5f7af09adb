package modem

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Metrics contains counters for a modem.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// CommandCount indicates the number of commands written to the transport.
	CommandCount *xsync.Counter
	// CommandTimeoutCount indicates the number of scans that timed out.
	CommandTimeoutCount *xsync.Counter
	// BytesWritten indicates the number of bytes written to the transport.
	BytesWritten *xsync.Counter
	// BytesRead indicates the number of reply bytes consumed by scans.
	BytesRead *xsync.Counter
	// RequestCount indicates the number of HTTP requests attempted.
	RequestCount *xsync.Counter
	// RequestFailCount indicates the number of HTTP requests that failed.
	RequestFailCount *xsync.Counter
	// TCPCloseCount indicates the number of TCP close commands issued.
	TCPCloseCount *xsync.Counter

	// PeakBufferSize indicates the largest response buffer capacity seen.
	PeakBufferSize atomic.Int64
}

func newMetrics() *Metrics {
	return &Metrics{
		CommandCount:        xsync.NewCounter(),
		CommandTimeoutCount: xsync.NewCounter(),
		BytesWritten:        xsync.NewCounter(),
		BytesRead:           xsync.NewCounter(),
		RequestCount:        xsync.NewCounter(),
		RequestFailCount:    xsync.NewCounter(),
		TCPCloseCount:       xsync.NewCounter(),
	}
}

func (m *Metrics) observeBufferSize(size int) {
	for {
		peak := m.PeakBufferSize.Load()
		if int64(size) <= peak || m.PeakBufferSize.CompareAndSwap(peak, int64(size)) {
			return
		}
	}
}
