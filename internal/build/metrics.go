package build

import (
	"sync"
	"time"
)

// Metrics tracks page rendering performance across workers.
type Metrics struct {
	Pages           int64
	Failed          int64
	Bytes           int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	mutex           sync.RWMutex
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record records one page attempt.
func (m *Metrics) Record(size int64, d time.Duration, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err != nil {
		m.Failed++

		return
	}

	m.Pages++
	m.Bytes += size
	m.TotalDuration += d
	m.AverageDuration = m.TotalDuration / time.Duration(m.Pages)
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Metrics{
		Pages:           m.Pages,
		Failed:          m.Failed,
		Bytes:           m.Bytes,
		TotalDuration:   m.TotalDuration,
		AverageDuration: m.AverageDuration,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Pages = 0
	m.Failed = 0
	m.Bytes = 0
	m.TotalDuration = 0
	m.AverageDuration = 0
}
