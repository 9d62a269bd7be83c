package advisor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

// Evaluate tests every rule against the composite result and returns the
// findings for those that fire, in rule order. Rules whose condition
// cannot be parsed or whose field is absent this cycle simply do not
// fire.
func Evaluate(rules []config.AdvisorRule, cs types.CompositeScore) []types.Finding {
	var findings []types.Finding
	for _, rule := range rules {
		fires, value := evalCondition(rule.Condition, cs)
		if !fires {
			continue
		}
		sev := rule.Severity
		if sev == "" {
			sev = "warning"
		}
		f := types.Finding{
			Rule:     rule.Name,
			Severity: sev,
			Value:    value,
			Message: fmt.Sprintf("[%s] %s — %s (value %.2f)",
				sev, rule.Name, rule.Condition, value),
		}
		findings = append(findings, f)
		slog.Warn("advisor: rule fired",
			"rule", rule.Name, "severity", sev, "value", value)
	}
	return findings
}

// evalCondition evaluates a rule condition string against a composite
// result. The grammar is config.ParseCondition's "field op value";
// malformed conditions never reach this point because Validate rejects
// them at load time.
//
// Returns (fires bool, triggering value float64). Returns (false, 0) if
// the condition's field produced no value this cycle.
func evalCondition(cond string, cs types.CompositeScore) (bool, float64) {
	field, op, threshold, err := config.ParseCondition(cond)
	if err != nil {
		return false, 0
	}
	v, ok := numericField(field, cs)
	if !ok {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the composite result.
// Subsystem fields use "<domain>.score" and "<domain>.confidence".
func numericField(field string, cs types.CompositeScore) (float64, bool) {
	switch field {
	case "overall":
		return cs.Score, true
	case "reliability":
		return cs.ReliabilityIndex, true
	}

	domain, attr, ok := strings.Cut(field, ".")
	if !ok {
		return 0, false
	}
	for _, s := range cs.Subsystems {
		if s.Domain != domain {
			continue
		}
		switch attr {
		case "score":
			return s.Score, true
		case "confidence":
			return s.Confidence, true
		}
		return 0, false
	}
	return 0, false
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
