package types

// Subsystem domain tags. The composite aggregator accepts additional
// caller-defined domains beyond these three.
const (
	DomainBattery     = "battery"
	DomainSecurity    = "security"
	DomainPerformance = "performance"
)

// Canonical names for the raw signals the built-in analyzers consume.
// Providers key their signal maps with these; unknown keys are ignored.
const (
	SignalVoltage        = "battery_voltage"
	SignalCapacity       = "battery_capacity"
	SignalDesignCapacity = "battery_capacity_design"
	SignalCycleCount     = "battery_cycle_count"
	SignalBatteryTemp    = "battery_temp"
	SignalCPUUtil        = "cpu_utilization"
	SignalMemTotal       = "memory_total"
	SignalMemFree        = "memory_free"
	SignalMemReclaimable = "memory_reclaimable"
	SignalIOThroughput   = "io_throughput"

	// ThermalZonePrefix prefixes per-zone temperature signals, e.g.
	// "thermal_zone:cpu". The suffix is the zone name used to look up its
	// weight in the performance configuration.
	ThermalZonePrefix = "thermal_zone:"
)

// Score flags attached to a SubsystemScore when a degradation path fired.
const (
	// FlagInsufficientData marks a subsystem that had too few valid
	// factors for a meaningful score. The score is a fail-closed default,
	// the confidence is zero, and the composite aggregator excludes it.
	FlagInsufficientData = "insufficient_data"
)

// RawSignal is one domain-tagged measurement captured by a provider.
// Scalar signals carry Value; window signals (CPU utilization) carry
// Samples, newest last. A RawSignal is immutable once captured and is
// consumed exactly once per assessment cycle.
type RawSignal struct {
	Name  string
	Value float64
	Unit  string

	// Samples holds the recent observations of a window-type signal.
	// Empty for scalar signals.
	Samples []float64
}

// DetectionEvent is one security detector's verdict: whether the source
// considers the device compromised, and how confident it is in [0,1].
type DetectionEvent struct {
	Source      string
	Compromised bool
	Confidence  float64
}

// NormalizedSignal is a RawSignal mapped onto the unit "goodness" scale.
// Value is always in [0,1] and monotonic with the domain's goodness
// direction. Reliability is a multiplier in [0,1] expressing how much the
// measurement method itself can be trusted; 1 for direct hardware reads.
type NormalizedSignal struct {
	Name        string
	Value       float64
	Reliability float64
}

// WeightedFactor pairs a normalized value with its relative importance
// inside one analyzer. Weights across an analyzer's factors sum to 1.0
// within floating tolerance when all factors are present.
type WeightedFactor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// SubsystemScore is one analyzer's result for a cycle.
type SubsystemScore struct {
	Domain     string           `json:"domain"`
	Score      float64          `json:"score"`      // [0,100]
	Confidence float64          `json:"confidence"` // [0,1]
	Factors    []WeightedFactor `json:"factors"`    // ordered by descending weight
	Flag       string           `json:"flag,omitempty"`
}

// CompositeScore is the aggregator's terminal result for a cycle.
type CompositeScore struct {
	Score            float64          `json:"score"`             // [0,100]
	ReliabilityIndex float64          `json:"reliability_index"` // [0,100]
	Subsystems       []SubsystemScore `json:"subsystems"`

	// Partial is true when at least one configured subsystem was missing
	// or excluded for insufficient data.
	Partial bool `json:"partial"`

	// TrendDelta is the current score minus the moving average of recent
	// history. Nil when no trend history was supplied.
	TrendDelta *float64 `json:"trend_delta,omitempty"`
}
