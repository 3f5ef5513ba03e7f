package build

import (
	"sync"
	"time"
)

// Result summarizes one build run
type Result struct {
	Entries  int
	Warnings int
	Errors   int
	Duration time.Duration
	Error    error
}

// Metrics tracks build performance across runs, as in watch mode
type Metrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	TotalWarnings    int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	LastDuration     time.Duration
	mutex            sync.RWMutex
}

// NewMetrics creates a new build metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record records a build result in the metrics
func (m *Metrics) Record(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds++
	m.TotalDuration += result.Duration
	m.LastDuration = result.Duration
	m.TotalWarnings += int64(result.Warnings)

	if result.Error != nil {
		m.FailedBuilds++
	} else {
		m.SuccessfulBuilds++
	}

	if m.TotalBuilds > 0 {
		m.AverageDuration = m.TotalDuration / time.Duration(m.TotalBuilds)
	}
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return Metrics{
		TotalBuilds:      m.TotalBuilds,
		SuccessfulBuilds: m.SuccessfulBuilds,
		FailedBuilds:     m.FailedBuilds,
		TotalWarnings:    m.TotalWarnings,
		AverageDuration:  m.AverageDuration,
		TotalDuration:    m.TotalDuration,
		LastDuration:     m.LastDuration,
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds = 0
	m.SuccessfulBuilds = 0
	m.FailedBuilds = 0
	m.TotalWarnings = 0
	m.AverageDuration = 0
	m.TotalDuration = 0
	m.LastDuration = 0
}

// SuccessRate returns the success rate as a percentage
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBuilds == 0 {
		return 0.0
	}

	return float64(m.SuccessfulBuilds) / float64(m.TotalBuilds) * 100.0
}
