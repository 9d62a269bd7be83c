package analyzer

import (
	"log/slog"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

// Battery is the battery health analyzer: a weighted sum over the
// capacity ratio, voltage health, thermal penalty, and cycle wear
// factors.
type Battery struct {
	weights map[string]float64
}

// NewBattery builds the battery analyzer from its configured factor
// weights.
func NewBattery(cfg config.BatteryConfig) *Battery {
	return &Battery{weights: cfg.Weights}
}

func (b *Battery) Domain() string { return types.DomainBattery }

// Analyze combines the present battery factors into one score.
//
// Fails closed: with fewer than two valid factors the result is score 0,
// confidence 0, flagged insufficient — partial data must not look like a
// healthy battery.
func (b *Battery) Analyze(in Input) types.SubsystemScore {
	if presentCount(b.weights, in.Factors) < minFactors {
		slog.Warn("analyzer: too few battery factors for a meaningful score",
			"present", presentCount(b.weights, in.Factors), "required", minFactors)
		return types.SubsystemScore{
			Domain: types.DomainBattery,
			Flag:   types.FlagInsufficientData,
		}
	}

	score, confidence, breakdown := combine(b.weights, in.Factors)
	return types.SubsystemScore{
		Domain:     types.DomainBattery,
		Score:      score,
		Confidence: confidence,
		Factors:    breakdown,
	}
}
