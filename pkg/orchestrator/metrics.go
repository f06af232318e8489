package orchestrator

import (
	"sync/atomic"
	"time"
)

type metrics struct {
	startTime    time.Time
	total        atomic.Int64
	succeeded    atomic.Int64
	failed       atomic.Int64
	jiraDegraded atomic.Int64
	processingMS atomic.Int64
}

func newMetrics() *metrics {
	return &metrics{startTime: time.Now()}
}

// Metrics is a point-in-time snapshot of orchestrator counters.
type Metrics struct {
	TotalRequests       int64   `json:"total_requests"`
	Succeeded           int64   `json:"succeeded"`
	Failed              int64   `json:"failed"`
	JiraDegraded        int64   `json:"jira_degraded"`
	AverageProcessingMS float64 `json:"average_processing_time_ms"`
	SuccessRate         float64 `json:"success_rate"`
	UptimeSeconds       int64   `json:"uptime_seconds"`
}

// Metrics returns a snapshot of the performance counters. Averages cover
// successful requests only.
func (o *Orchestrator) Metrics() Metrics {
	m := Metrics{
		TotalRequests: o.metrics.total.Load(),
		Succeeded:     o.metrics.succeeded.Load(),
		Failed:        o.metrics.failed.Load(),
		JiraDegraded:  o.metrics.jiraDegraded.Load(),
		UptimeSeconds: int64(time.Since(o.metrics.startTime).Seconds()),
	}
	if m.Succeeded > 0 {
		m.AverageProcessingMS = float64(o.metrics.processingMS.Load()) / float64(m.Succeeded)
	}
	if done := m.Succeeded + m.Failed; done > 0 {
		m.SuccessRate = float64(m.Succeeded) / float64(done)
	}
	return m
}
