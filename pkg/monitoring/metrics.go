package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts capture engine events. All methods are nil-safe so
// the engine can run without monitoring attached.
type Metrics struct {
	frames    prometheus.Counter
	aborted   prometheus.Counter
	timeouts  prometheus.Counter
	shortages prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		frames: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_total",
			Help: "Frames captured and retired with success.",
		}),
		aborted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_aborted_total",
			Help: "Buffers retired with an abort status on stream stop.",
		}),
		timeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_hw_timeouts_total",
			Help: "Reset or disable acknowledgements missed within the deadline.",
		}),
		shortages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_descriptor_shortage_total",
			Help: "Enqueue attempts rejected on an exhausted descriptor pool.",
		}),
	}
}

func (m *Metrics) FrameDone() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *Metrics) Aborted() {
	if m != nil {
		m.aborted.Inc()
	}
}

func (m *Metrics) HwTimeout() {
	if m != nil {
		m.timeouts.Inc()
	}
}

func (m *Metrics) DescriptorShortage() {
	if m != nil {
		m.shortages.Inc()
	}
}
