package orchestrator

import (
	"sync"

	"go-skyscout-automation/internal/models"
)

// Metrics is an injected run-level collector. No package globals: every
// component that reports gets handed the same instance.
type Metrics struct {
	mu      sync.Mutex
	records []*models.RunRecord
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Record(run *models.RunRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, run)
}

// Records returns a snapshot of every finished run, in completion order.
func (m *Metrics) Records() []*models.RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.RunRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Totals sums the counters across all recorded runs.
func (m *Metrics) Totals() (found, created, updated, duplicate, errs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		found += r.Found
		created += r.New
		updated += r.Updated
		duplicate += r.Duplicate
		errs += r.Errors
	}
	return
}

// ExitCode maps run outcomes to the process exit code:
// 0 = all completed, 1 = mixed, 2 = all failed (or nothing ran).
func (m *Metrics) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == 0 {
		return 2
	}

	completed := 0
	for _, r := range m.records {
		if r.Status == models.RunCompleted {
			completed++
		}
	}

	switch completed {
	case len(m.records):
		return 0
	case 0:
		return 2
	default:
		return 1
	}
}
