package analyzer

import (
	"testing"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

func TestSecurity_NoDetectors(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	got := s.Analyze(Input{})

	if got.Score != neutralSecurityScore {
		t.Errorf("Score = %v, want neutral %v", got.Score, neutralSecurityScore)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
	if got.Flag != types.FlagInsufficientData {
		t.Errorf("Flag = %q, want %q", got.Flag, types.FlagInsufficientData)
	}
}

func TestSecurity_ReliabilityWeighting(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	// fs_integrity (reliability 0.95) clean at 0.9; su_binary (default
	// reliability 0.5) compromised at 0.8.
	// risks: 1-0.9 = 0.1 and 0.8.
	// weighted risk = (0.95*0.1 + 0.5*0.8) / 1.45 = 0.495/1.45
	got := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "su_binary", Compromised: true, Confidence: 0.8},
		{Source: "fs_integrity", Compromised: false, Confidence: 0.9},
	}})

	wantScore := 100 * (1 - 0.495/1.45)
	if !almostEqual(got.Score, wantScore, 1e-9) {
		t.Errorf("Score = %v, want %v", got.Score, wantScore)
	}
	if len(got.Factors) != 2 {
		t.Fatalf("breakdown has %d entries, want 2", len(got.Factors))
	}
	// fs_integrity carries 0.95/1.45 of the weight.
	if got.Factors[0].Name != "fs_integrity" {
		t.Errorf("heaviest source = %q, want fs_integrity", got.Factors[0].Name)
	}
	if !almostEqual(got.Factors[0].Weight, 0.95/1.45, 1e-9) {
		t.Errorf("fs_integrity weight = %v, want %v", got.Factors[0].Weight, 0.95/1.45)
	}
}

// Two confident sources agreeing boost the combined confidence; the
// boost is capped at 1.0.
func TestSecurity_AgreementBoost(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	got := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "binary_scan", Compromised: true, Confidence: 0.8},
		{Source: "prop_check", Compromised: true, Confidence: 0.9},
	}})

	// base confidence (0.5*0.8 + 0.5*0.9)/1.0 = 0.85, one agreement
	// multiplies by 1.25 giving 1.0625, clamped to 1.
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1 after capped agreement boost", got.Confidence)
	}
	// weighted risk 0.85, both compromised.
	if !almostEqual(got.Score, 15, 1e-9) {
		t.Errorf("Score = %v, want 15", got.Score)
	}
}

// Disagreement between confident sources widens uncertainty without
// moving the score.
func TestSecurity_DisagreementDiscountsConfidenceOnly(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	events := []types.DetectionEvent{
		{Source: "su_binary", Compromised: true, Confidence: 0.8},
		{Source: "fs_integrity", Compromised: false, Confidence: 0.9},
	}
	got := s.Analyze(Input{Detections: events})

	// base confidence (0.5*0.8 + 0.95*0.9)/1.45, one disagreement
	// multiplies by 0.6.
	base := (0.5*0.8 + 0.95*0.9) / 1.45
	if !almostEqual(got.Confidence, base*0.6, 1e-9) {
		t.Errorf("Confidence = %v, want %v", got.Confidence, base*0.6)
	}

	// The score is the reliability-weighted risk regardless of the
	// disagreement pass.
	wantScore := 100 * (1 - (0.5*0.8+0.95*0.1)/1.45)
	if !almostEqual(got.Score, wantScore, 1e-9) {
		t.Errorf("Score = %v, want %v", got.Score, wantScore)
	}
}

// Sources below the agreement threshold are excluded from the pairwise
// pass but still contribute to the weighted score.
func TestSecurity_AgreementThreshold(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	got := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "binary_scan", Compromised: true, Confidence: 0.9},
		{Source: "prop_check", Compromised: false, Confidence: 0.3}, // below 0.5
	}})

	// No countable pair, so confidence stays at the weighted mean
	// (0.5*0.9 + 0.5*0.3)/1.0 = 0.6 with no discount applied.
	if !almostEqual(got.Confidence, 0.6, 1e-9) {
		t.Errorf("Confidence = %v, want undiscounted 0.6", got.Confidence)
	}
}

// A source repeating its own verdict is not independent corroboration;
// same-source pairs neither boost nor discount.
func TestSecurity_SameSourcePairsDoNotCount(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	got := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "su_binary", Compromised: true, Confidence: 0.8},
		{Source: "su_binary", Compromised: true, Confidence: 0.9},
	}})

	// Confidence stays at the weighted mean (0.5*0.8 + 0.5*0.9)/1.0 with
	// no agreement boost applied.
	if !almostEqual(got.Confidence, 0.85, 1e-9) {
		t.Errorf("Confidence = %v, want unboosted 0.85", got.Confidence)
	}

	contradicting := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "su_binary", Compromised: true, Confidence: 0.8},
		{Source: "su_binary", Compromised: false, Confidence: 0.9},
	}})
	if !almostEqual(contradicting.Confidence, 0.85, 1e-9) {
		t.Errorf("Confidence = %v, want undiscounted 0.85 for a self-contradicting source", contradicting.Confidence)
	}
}

func TestSecurity_DropsInvalidConfidence(t *testing.T) {
	s := NewSecurity(config.Default().Security)

	got := s.Analyze(Input{Detections: []types.DetectionEvent{
		{Source: "binary_scan", Compromised: false, Confidence: 1.5},
		{Source: "prop_check", Compromised: false, Confidence: -0.2},
	}})

	// Both dropped, which leaves the zero-detector neutral result.
	if got.Score != neutralSecurityScore || got.Flag != types.FlagInsufficientData {
		t.Errorf("got (%v, %q), want neutral insufficient-data result", got.Score, got.Flag)
	}
}
