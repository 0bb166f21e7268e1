package obs

import "sync"

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// MemoryMeter keeps counter totals and histogram observations in memory,
// keyed by metric name. Labels are ignored. It is safe for concurrent use.
type MemoryMeter struct {
	mu         sync.Mutex
	counters   map[string]float64
	histograms map[string][]float64
}

func (m *MemoryMeter) Counter(name string, value float64, labels ...Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]float64)
	}
	m.counters[name] += value
}

func (m *MemoryMeter) Histogram(name string, value float64, labels ...Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.histograms == nil {
		m.histograms = make(map[string][]float64)
	}
	m.histograms[name] = append(m.histograms[name], value)
}

// CounterValue returns the running total for name.
func (m *MemoryMeter) CounterValue(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// Observations returns a copy of the values recorded for histogram name.
func (m *MemoryMeter) Observations(name string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.histograms[name]...)
}
