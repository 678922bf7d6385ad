package netoptimizer

import (
	"fmt"
	"sync"
	"time"
)

// targetMetric is the value the adjuster drives the overlay adapter to
// (spec §4.J: "Set the metric to 1").
const targetMetric = 1

// verifyDelays implements the increasing-delay re-read
// schedule (spec §4.J: "re-reading the interface list up to 3 times with
// increasing delays").
var verifyDelays = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// rollbackVerifyAttempts bounds the rollback re-verify loop (spec §4.J
// "Rollback on stop": "re-verify (2 attempts)").
const rollbackVerifyAttempts = 2

// AdapterOutcome reports the per-adapter result of an optimize or
// rollback attempt (spec §4.J "Status object", detailed form).
type AdapterOutcome struct {
	Name     string
	Original int
	Current  int
	Target   int
	Status   string // "optimized" | "degraded" | "missing"
}

// MetricAdjuster owns the in-process record of adapters it has changed,
// so it can roll them back (spec §5: "the record is in-process only").
type MetricAdjuster struct {
	mu       sync.Mutex
	original map[string]int
}

// NewMetricAdjuster constructs an adjuster with no recorded adapters.
func NewMetricAdjuster() *MetricAdjuster {
	return &MetricAdjuster{original: make(map[string]int)}
}

// Optimize locates the overlay adapter, records its current metric if not
// already recorded, sets it to the target, and verifies with bounded
// retries. On verification failure it rolls back and returns an error
// (spec §4.J "NIC-metric adjuster").
func (a *MetricAdjuster) Optimize() (AdapterOutcome, error) {
	ifaces, err := listInterfaces()
	if err != nil {
		return AdapterOutcome{}, fmt.Errorf("netoptimizer: listing interfaces: %w", err)
	}
	adapter, found := findOverlayAdapter(ifaces)
	if !found {
		return AdapterOutcome{Status: "missing"}, fmt.Errorf("netoptimizer: no overlay adapter found")
	}

	a.mu.Lock()
	if _, recorded := a.original[adapter.Name]; !recorded {
		a.original[adapter.Name] = adapter.Metric
	}
	original := a.original[adapter.Name]
	a.mu.Unlock()

	if err := setMetricPlatform(adapter.Name, targetMetric); err != nil {
		return AdapterOutcome{Name: adapter.Name, Original: original, Target: targetMetric, Status: "degraded"},
			fmt.Errorf("netoptimizer: setting metric: %w", err)
	}

	if verifyMetric(adapter.Name, targetMetric, verifyDelays) {
		return AdapterOutcome{Name: adapter.Name, Original: original, Current: targetMetric, Target: targetMetric, Status: "optimized"}, nil
	}

	a.rollbackOne(adapter.Name, original)
	return AdapterOutcome{Name: adapter.Name, Original: original, Target: targetMetric, Status: "degraded"},
		fmt.Errorf("netoptimizer: verification failed for %s, metric did not apply", adapter.Name)
}

// verifyMetric re-reads the interface list after each delay until the
// adapter's metric matches want, or the delay schedule is exhausted.
func verifyMetric(name string, want int, delays []time.Duration) bool {
	for _, d := range delays {
		time.Sleep(d)
		ifaces, err := listInterfaces()
		if err != nil {
			continue
		}
		for _, iface := range ifaces {
			if iface.Name == name && iface.Metric == want {
				return true
			}
		}
	}
	return false
}

// RollbackAll restores every recorded adapter to its original metric,
// re-verifying with a bounded retry loop, and clears the record on
// success (spec §4.J "Rollback on stop").
func (a *MetricAdjuster) RollbackAll() []AdapterOutcome {
	a.mu.Lock()
	pending := make(map[string]int, len(a.original))
	for name, metric := range a.original {
		pending[name] = metric
	}
	a.mu.Unlock()

	results := make([]AdapterOutcome, 0, len(pending))
	for name, original := range pending {
		ok := a.rollbackOne(name, original)
		status := "optimized"
		if !ok {
			status = "degraded"
		}
		results = append(results, AdapterOutcome{Name: name, Original: original, Current: original, Target: original, Status: status})
	}
	return results
}

// rollbackOne sets name back to original and re-verifies up to
// rollbackVerifyAttempts times, clearing the in-process record on
// success.
func (a *MetricAdjuster) rollbackOne(name string, original int) bool {
	if err := setMetricPlatform(name, original); err != nil {
		return false
	}

	delays := make([]time.Duration, rollbackVerifyAttempts)
	for i := range delays {
		delays[i] = 200 * time.Millisecond
	}
	if !verifyMetric(name, original, delays) {
		return false
	}

	a.mu.Lock()
	delete(a.original, name)
	a.mu.Unlock()
	return true
}
