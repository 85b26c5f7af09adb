package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"i4.energy/across/wifigw/modem"
)

const metricsNamespace = "wifigw"

// registerMetrics exposes the modem counters on reg. The values are read
// from m on every scrape.
func registerMetrics(reg prometheus.Registerer, m *modem.Metrics, connected func() bool) error {
	counter := func(name, help string, value func() int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value()) })
	}

	collectors := []prometheus.Collector{
		counter("commands_total", "AT commands written to the modem.", m.CommandCount.Value),
		counter("command_timeouts_total", "Replies that did not contain a success token in time.", m.CommandTimeoutCount.Value),
		counter("bytes_written_total", "Bytes written to the modem.", m.BytesWritten.Value),
		counter("bytes_read_total", "Reply bytes read from the modem.", m.BytesRead.Value),
		counter("http_requests_total", "HTTP requests attempted.", m.RequestCount.Value),
		counter("http_request_failures_total", "HTTP requests that failed at any stage.", m.RequestFailCount.Value),
		counter("tcp_closes_total", "TCP close commands issued.", m.TCPCloseCount.Value),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "response_buffer_peak_bytes",
			Help:      "Largest response buffer capacity used.",
		}, func() float64 { return float64(m.PeakBufferSize.Load()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connected",
			Help:      "1 when the modem is joined to a network.",
		}, func() float64 {
			if connected() {
				return 1
			}
			return 0
		}),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
