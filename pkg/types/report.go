package types

import "time"

// Health grades derived from the composite score.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeFair      = "fair"
	GradePoor      = "poor"
	GradeCritical  = "critical"
)

// Finding is one advisor rule hit embedded in the report: a named
// condition that matched, its severity, and the value that triggered it.
type Finding struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"` // "critical" | "warning" | "info"
	Message  string  `json:"message"`
	Value    float64 `json:"value"`
}

// Report is the cycle's final structured result, designed for direct
// serialization without further transformation. It is never mutated after
// the builder returns it.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	Score            float64 `json:"score"`
	ReliabilityIndex float64 `json:"reliability_index"`
	Grade            string  `json:"grade"`
	Partial          bool    `json:"partial"`

	Subsystems []SubsystemScore `json:"subsystems"`
	Findings   []Finding        `json:"findings,omitempty"`
	TrendDelta *float64         `json:"trend_delta,omitempty"`

	// Digest is a short content hash over the score fields only — two
	// cycles with identical inputs produce identical digests, which makes
	// reports auditable for reproducibility.
	Digest string `json:"digest"`
}
