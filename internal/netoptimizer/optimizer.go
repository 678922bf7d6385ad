// Package netoptimizer implements the two independent, toggleable network
// optimizations of spec §4.J: the LAN-broadcast helper process and the
// NIC-metric adjuster, each with verification and rollback. Grounded
// directly on pkg/network/changeset.go's Apply/Verify/Rollback triad.
package netoptimizer

// Status is the summary optimization status object (spec §4.J "Status
// object").
type Status struct {
	WinIPBroadcast     bool
	NICMetricOptimized bool
}

// DetailedStatus additionally reports per-adapter outcomes and a
// rolled-up health.
type DetailedStatus struct {
	Status
	Adapters []AdapterOutcome
	Health   string // "healthy" | "degraded" | "error"
}

// Optimizer composes the two optimizations behind one toggle surface.
type Optimizer struct {
	broadcast *LANBroadcast
	metric    *MetricAdjuster
}

// New constructs an Optimizer for the bundled LAN-broadcast binary at
// binaryPath.
func New(binaryPath string) *Optimizer {
	return &Optimizer{
		broadcast: &LANBroadcast{BinaryPath: binaryPath},
		metric:    NewMetricAdjuster(),
	}
}

// EnableLANBroadcast starts the LAN-broadcast helper.
func (o *Optimizer) EnableLANBroadcast() error {
	return o.broadcast.Start()
}

// DisableLANBroadcast stops the LAN-broadcast helper.
func (o *Optimizer) DisableLANBroadcast() error {
	return o.broadcast.Stop()
}

// EnableNICMetric optimizes the overlay adapter's routing metric.
func (o *Optimizer) EnableNICMetric() (AdapterOutcome, error) {
	return o.metric.Optimize()
}

// DisableNICMetric rolls back every recorded adapter metric.
func (o *Optimizer) DisableNICMetric() []AdapterOutcome {
	return o.metric.RollbackAll()
}

// Summary reports the coarse {WinIPBroadcast, NIC-metric-optimized}
// status object.
func (o *Optimizer) Summary(nicOptimized bool) Status {
	return Status{
		WinIPBroadcast:     o.broadcast.Status(),
		NICMetricOptimized: nicOptimized,
	}
}

// Detailed reports the full per-adapter status plus a rolled-up health.
func (o *Optimizer) Detailed(adapters []AdapterOutcome) DetailedStatus {
	status := o.Summary(len(adapters) > 0 && allOptimized(adapters))
	health := "healthy"
	for _, a := range adapters {
		if a.Status == "missing" {
			health = "error"
			break
		}
		if a.Status == "degraded" {
			health = "degraded"
		}
	}
	return DetailedStatus{Status: status, Adapters: adapters, Health: health}
}

func allOptimized(adapters []AdapterOutcome) bool {
	for _, a := range adapters {
		if a.Status != "optimized" {
			return false
		}
	}
	return true
}
