package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace  = "otactl"
	transferSubsystem = "transfer"

	resultSuccess = "success"
	resultFailure = "failure"
)

type Metrics struct {
	chunkAttempts *prometheus.CounterVec
	bytes         prometheus.Counter
	chunkDuration prometheus.Histogram
}

// NewMetrics builds the transfer collectors and registers them on reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunkAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: transferSubsystem,
				Name:      "chunk_attempts_total",
				Help:      "Number of chunk requests, by result",
			},
			[]string{"result"},
		),
		bytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: transferSubsystem,
				Name:      "bytes_total",
				Help:      "Number of artifact bytes written to staged files",
			},
		),
		chunkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: transferSubsystem,
				Name:      "chunk_duration_seconds",
				Help:      "Duration of chunk requests",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.chunkAttempts, m.bytes, m.chunkDuration)
	}
	return m
}

func (m *Metrics) observeAttempt(err error, seconds float64) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.chunkAttempts.WithLabelValues(result).Inc()
	m.chunkDuration.Observe(seconds)
}

func (m *Metrics) addBytes(n int) {
	if m == nil {
		return
	}
	m.bytes.Add(float64(n))
}
