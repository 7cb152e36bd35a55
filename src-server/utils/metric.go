package utils

import "time"

// Latency samples in microseconds, consumed by the metric package
type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
	Parse         chan float64
	Serialize     chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 16),
		DatabaseWrite: make(chan float64, 16),
		Parse:         make(chan float64, 16),
		Serialize:     make(chan float64, 16),
	}
}

// Send the microseconds elapsed since `start` to `ch`. The sample is dropped
// when nobody drains the channel, e.g. in tests or before metric.Init.
func (m *Metric) Observe(ch chan float64, start time.Time) {
	select {
	case ch <- float64(time.Since(start).Microseconds()):
	default:
	}
}
