package analyzer

import (
	"log/slog"
	"sort"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

// neutralSecurityScore is emitted when no detectors reported at all.
// Absence of evidence is not evidence of absence, so the default is the
// midpoint rather than a clean bill of health.
const neutralSecurityScore = 50

// Security is the cross-verified security confidence analyzer. Each
// detector's verdict is scaled by the reliability weight of its detection
// method, then a pairwise agreement pass adjusts the combined confidence:
// independent sources agreeing strengthen it, disagreeing sources widen
// uncertainty without changing the score.
type Security struct {
	cfg config.SecurityConfig
}

// NewSecurity builds the security analyzer from its configuration,
// including the detector reliability table.
func NewSecurity(cfg config.SecurityConfig) *Security {
	return &Security{cfg: cfg}
}

func (s *Security) Domain() string { return types.DomainSecurity }

// Analyze aggregates the cycle's detection events into one score.
func (s *Security) Analyze(in Input) types.SubsystemScore {
	events := validDetections(in.Detections)
	if len(events) == 0 {
		slog.Warn("analyzer: no security detectors reported, defaulting to neutral midpoint")
		return types.SubsystemScore{
			Domain: types.DomainSecurity,
			Score:  neutralSecurityScore,
			Flag:   types.FlagInsufficientData,
		}
	}

	var totalRel, weightedRisk, weightedConfidence float64
	rels := make([]float64, len(events))
	for i, ev := range events {
		rels[i] = s.reliability(ev.Source)
		totalRel += rels[i]
		weightedRisk += rels[i] * compromiseRisk(ev)
		weightedConfidence += rels[i] * ev.Confidence
	}
	weightedRisk /= totalRel
	weightedConfidence /= totalRel

	// Pairwise cross-verification over the bounded event set. Only pairs
	// of distinct sources where both are above the agreement threshold
	// count; a source repeating itself is not corroboration.
	agreements, disagreements := 0, 0
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[i].Source == events[j].Source {
				continue
			}
			if events[i].Confidence < s.cfg.AgreementThreshold ||
				events[j].Confidence < s.cfg.AgreementThreshold {
				continue
			}
			if events[i].Compromised == events[j].Compromised {
				agreements++
			} else {
				disagreements++
			}
		}
	}

	confidence := weightedConfidence
	for i := 0; i < agreements; i++ {
		confidence *= s.cfg.AgreementBoost
	}
	for i := 0; i < disagreements; i++ {
		confidence *= s.cfg.DisagreementDiscount
	}
	confidence = clamp01(confidence)

	if disagreements > 0 {
		slog.Warn("analyzer: security detectors disagree, widening uncertainty",
			"disagreements", disagreements, "confidence", confidence)
	}

	return types.SubsystemScore{
		Domain:     types.DomainSecurity,
		Score:      clampScore(100 * (1 - weightedRisk)),
		Confidence: confidence,
		Factors:    s.breakdown(events, rels, totalRel),
	}
}

// reliability looks up the detection method's reliability weight.
func (s *Security) reliability(source string) float64 {
	if r, ok := s.cfg.DetectorReliability[source]; ok {
		return r
	}
	return s.cfg.DefaultReliability
}

// breakdown lists each source's goodness contribution with its share of
// the total reliability weight, ordered for determinism.
func (s *Security) breakdown(events []types.DetectionEvent, rels []float64, totalRel float64) []types.WeightedFactor {
	out := make([]types.WeightedFactor, len(events))
	for i, ev := range events {
		out[i] = types.WeightedFactor{
			Name:   ev.Source,
			Value:  1 - compromiseRisk(ev),
			Weight: rels[i] / totalRel,
		}
	}
	sortFactors(out)
	return out
}

// compromiseRisk is the event's confidence that the device is compromised:
// the stated confidence for a compromise verdict, its complement for a
// clean verdict.
func compromiseRisk(ev types.DetectionEvent) float64 {
	if ev.Compromised {
		return ev.Confidence
	}
	return 1 - ev.Confidence
}

// validDetections filters events with out-of-range confidence, keeping
// the original order stable for same-source duplicates.
func validDetections(events []types.DetectionEvent) []types.DetectionEvent {
	out := make([]types.DetectionEvent, 0, len(events))
	for _, ev := range events {
		if ev.Confidence < 0 || ev.Confidence > 1 || ev.Confidence != ev.Confidence {
			slog.Warn("analyzer: dropping detection with out-of-range confidence",
				"source", ev.Source, "confidence", ev.Confidence)
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
