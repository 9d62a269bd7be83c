package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/devscore/devscore/pkg/types"
)

// Grade thresholds that map a composite score to a named health grade.
const (
	ThresholdExcellent = 90.0
	ThresholdGood      = 80.0
	ThresholdFair      = 70.0
	ThresholdPoor      = 50.0
)

// digestLen is the number of hex characters kept from the content hash.
const digestLen = 16

// Build assembles the final Report from the composite result and the
// advisor findings. The report carries a fresh UUID and the supplied
// generation time; everything else is derived deterministically from the
// inputs.
func Build(cs types.CompositeScore, findings []types.Finding, now time.Time) *types.Report {
	return &types.Report{
		ID:               uuid.NewString(),
		GeneratedAt:      now.UTC(),
		Score:            cs.Score,
		ReliabilityIndex: cs.ReliabilityIndex,
		Grade:            GradeFromScore(cs.Score),
		Partial:          cs.Partial,
		Subsystems:       cs.Subsystems,
		Findings:         findings,
		TrendDelta:       cs.TrendDelta,
		Digest:           digest(cs),
	}
}

// GradeFromScore maps a composite score to a named health grade.
func GradeFromScore(score float64) string {
	switch {
	case score >= ThresholdExcellent:
		return types.GradeExcellent
	case score >= ThresholdGood:
		return types.GradeGood
	case score >= ThresholdFair:
		return types.GradeFair
	case score >= ThresholdPoor:
		return types.GradePoor
	default:
		return types.GradeCritical
	}
}

// digestPayload is the score content covered by the digest. The report ID,
// timestamp, and trend annotation are deliberately excluded: two cycles
// over identical inputs must produce identical digests.
type digestPayload struct {
	Score            float64                `json:"score"`
	ReliabilityIndex float64                `json:"reliability_index"`
	Partial          bool                   `json:"partial"`
	Subsystems       []types.SubsystemScore `json:"subsystems"`
}

// digest returns a short hex hash over the score fields.
func digest(cs types.CompositeScore) string {
	data, err := json.Marshal(digestPayload{
		Score:            cs.Score,
		ReliabilityIndex: cs.ReliabilityIndex,
		Partial:          cs.Partial,
		Subsystems:       cs.Subsystems,
	})
	if err != nil {
		// Marshal of plain value structs cannot fail; keep the report
		// usable regardless.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:digestLen]
}
