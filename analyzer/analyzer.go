package analyzer

import (
	"sort"

	"github.com/devscore/devscore/pkg/types"
)

// minFactors is the fail-closed threshold: a weighted analyzer with fewer
// valid factors than this emits an insufficient-data score instead of a
// misleadingly good one built from scraps.
const minFactors = 2

// Input carries everything an analyzer may need for one cycle. Factors
// holds normalized signals keyed by factor name; Detections holds the raw
// detector verdicts the security analyzer consumes.
type Input struct {
	Factors    map[string]types.NormalizedSignal
	Detections []types.DetectionEvent
}

// Analyzer turns one cycle's inputs into a SubsystemScore.
type Analyzer interface {
	Domain() string
	Analyze(in Input) types.SubsystemScore
}

// combine computes the weighted score, confidence, and factor breakdown
// from the factors present.
//
// Missing factors have their weight redistributed proportionally across
// the present ones, so the effective weights always sum to 1.0. The
// confidence is reduced by the total original weight of the missing
// factors, then scaled by the reliability of the present factors — a
// degraded input can only lower confidence.
func combine(weights map[string]float64, factors map[string]types.NormalizedSignal) (score, confidence float64, breakdown []types.WeightedFactor) {
	var presentWeight float64
	for name, w := range weights {
		if _, ok := factors[name]; ok {
			presentWeight += w
		}
	}
	if presentWeight == 0 {
		return 0, 0, nil
	}

	var weightedValue, weightedReliability float64
	for name, w := range weights {
		sig, ok := factors[name]
		if !ok {
			continue
		}
		eff := w / presentWeight
		weightedValue += eff * sig.Value
		weightedReliability += eff * sig.Reliability
		breakdown = append(breakdown, types.WeightedFactor{
			Name:   name,
			Value:  sig.Value,
			Weight: eff,
		})
	}

	sortFactors(breakdown)
	score = clampScore(100 * weightedValue)
	confidence = presentWeight * weightedReliability
	return score, confidence, breakdown
}

// presentCount reports how many of the weighted factor names are present.
func presentCount(weights map[string]float64, factors map[string]types.NormalizedSignal) int {
	n := 0
	for name := range weights {
		if _, ok := factors[name]; ok {
			n++
		}
	}
	return n
}

// sortFactors orders a breakdown by descending weight, then by name, so
// the explainability list is deterministic across runs.
func sortFactors(fs []types.WeightedFactor) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Weight != fs[j].Weight {
			return fs[i].Weight > fs[j].Weight
		}
		return fs[i].Name < fs[j].Name
	})
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

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
