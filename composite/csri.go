package composite

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/history"
	"github.com/devscore/devscore/pkg/types"
)

// maxSubsystems bounds how many component scores one cycle may combine.
const maxSubsystems = 7

// Aggregator combines subsystem scores into a CompositeScore using the
// configured per-subsystem weights, the critical-floor penalty, and the
// optional trend history.
type Aggregator struct {
	cfg config.CompositeConfig
}

// New builds an Aggregator from its configuration.
func New(cfg config.CompositeConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate combines the given subsystem scores.
//
// Scores flagged insufficient are carried in the breakdown but excluded
// from the math — a fail-closed zero must not impersonate a measured
// catastrophic subsystem. Fewer than two usable scores is an
// ErrIncompleteAssessment; two or more with configured domains missing
// yields a result flagged Partial.
func (a *Aggregator) Aggregate(subs []types.SubsystemScore) (types.CompositeScore, error) {
	if len(subs) > maxSubsystems {
		return types.CompositeScore{}, fmt.Errorf("%w: %d subsystem scores, at most %d supported", types.ErrConfig, len(subs), maxSubsystems)
	}

	avail := make([]types.SubsystemScore, 0, len(subs))
	for _, s := range subs {
		if s.Flag == "" {
			avail = append(avail, s)
		}
	}
	if len(avail) < 2 {
		return types.CompositeScore{}, fmt.Errorf("%d usable subsystem scores: %w", len(avail), types.ErrIncompleteAssessment)
	}

	var totalWeight, weightedScore, weightedConfidence float64
	minScore := math.MaxFloat64
	for _, s := range avail {
		w := a.weight(s.Domain)
		totalWeight += w
		weightedScore += w * s.Score
		weightedConfidence += w * s.Confidence
		if s.Score < minScore {
			minScore = s.Score
		}
	}
	avg := weightedScore / totalWeight
	meanConfidence := weightedConfidence / totalWeight

	score := avg
	if minScore < a.cfg.CriticalFloor {
		// Exponential availability penalty: the further the weakest
		// subsystem sits below the floor, the harder the composite drops,
		// regardless of how healthy the others are.
		score = avg * math.Exp(-a.cfg.PenaltyK*(a.cfg.CriticalFloor-minScore)/a.cfg.CriticalFloor)
		slog.Warn("composite: critical floor breached",
			"min_score", minScore, "floor", a.cfg.CriticalFloor,
			"weighted_avg", avg, "penalized", score)
	}

	return types.CompositeScore{
		Score:            clampScore(score),
		ReliabilityIndex: clampScore(score * meanConfidence),
		Subsystems:       subs,
		Partial:          a.isPartial(subs, avail),
	}, nil
}

// WithTrend annotates cs with the delta between its score and the moving
// average of the newest TrendWindow history entries. The score itself is
// never altered. A nil or empty history leaves cs unchanged.
func (a *Aggregator) WithTrend(cs types.CompositeScore, hist *history.Trend) types.CompositeScore {
	if hist == nil {
		return cs
	}
	avg, ok := hist.MovingAverage(a.cfg.TrendWindow)
	if !ok {
		return cs
	}
	delta := cs.Score - avg
	cs.TrendDelta = &delta
	return cs
}

// weight returns the configured weight for a subsystem domain.
func (a *Aggregator) weight(domain string) float64 {
	if w, ok := a.cfg.Weights[domain]; ok {
		return w
	}
	return a.cfg.DefaultWeight
}

// isPartial reports whether any subsystem was excluded for insufficient
// data or any configured domain produced no score at all.
func (a *Aggregator) isPartial(all, avail []types.SubsystemScore) bool {
	if len(avail) < len(all) {
		return true
	}
	seen := make(map[string]bool, len(avail))
	for _, s := range avail {
		seen[s.Domain] = true
	}
	for domain := range a.cfg.Weights {
		if !seen[domain] {
			return true
		}
	}
	return false
}

// clampScore restricts v to the range [0, 100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
