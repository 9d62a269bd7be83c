package analyzer

import (
	"log/slog"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

// Performance is the resource load analyzer: window-smoothed CPU
// headroom, cache-aware memory pressure, zone-weighted thermal state, and
// I/O throughput against the configured baseline.
type Performance struct {
	weights map[string]float64
}

// NewPerformance builds the performance analyzer from its configured
// factor weights.
func NewPerformance(cfg config.PerformanceConfig) *Performance {
	return &Performance{weights: cfg.Weights}
}

func (p *Performance) Domain() string { return types.DomainPerformance }

// Analyze combines the present load factors into one score. Like the
// battery analyzer it fails closed below two valid factors.
func (p *Performance) Analyze(in Input) types.SubsystemScore {
	if presentCount(p.weights, in.Factors) < minFactors {
		slog.Warn("analyzer: too few performance factors for a meaningful score",
			"present", presentCount(p.weights, in.Factors), "required", minFactors)
		return types.SubsystemScore{
			Domain: types.DomainPerformance,
			Flag:   types.FlagInsufficientData,
		}
	}

	score, confidence, breakdown := combine(p.weights, in.Factors)
	return types.SubsystemScore{
		Domain:     types.DomainPerformance,
		Score:      score,
		Confidence: confidence,
		Factors:    breakdown,
	}
}
