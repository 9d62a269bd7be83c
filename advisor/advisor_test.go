package advisor

import (
	"testing"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/pkg/types"
)

func testComposite() types.CompositeScore {
	return types.CompositeScore{
		Score:            45,
		ReliabilityIndex: 38,
		Subsystems: []types.SubsystemScore{
			{Domain: types.DomainBattery, Score: 35, Confidence: 0.9},
			{Domain: types.DomainSecurity, Score: 60, Confidence: 0.25},
		},
	}
}

func TestEvalCondition(t *testing.T) {
	cs := testComposite()

	tests := []struct {
		name      string
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"overall below threshold", "overall < 50", true, 45},
		{"overall above threshold", "overall > 50", false, 0},
		{"reliability index", "reliability <= 38", true, 38},
		{"subsystem score", "battery.score < 40", true, 35},
		{"subsystem confidence", "security.confidence < 0.3", true, 0.25},
		{"exact match", "overall == 45", true, 45},
		{"unknown domain never fires", "storage.score < 100", false, 0},
		{"unknown attribute never fires", "battery.flux < 100", false, 0},
		{"unknown operator never fires", "overall != 45", false, 0},
		{"malformed expression never fires", "overall<50", false, 0},
		{"non-numeric threshold never fires", "overall < low", false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fires, value := evalCondition(tc.cond, cs)
			if fires != tc.wantFires {
				t.Errorf("evalCondition(%q) fires = %v, want %v", tc.cond, fires, tc.wantFires)
			}
			if fires && value != tc.wantValue {
				t.Errorf("evalCondition(%q) value = %v, want %v", tc.cond, value, tc.wantValue)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	rules := []config.AdvisorRule{
		{Name: "degraded-battery", Condition: "battery.score < 40", Severity: "critical"},
		{Name: "healthy-overall", Condition: "overall > 90", Severity: "info"},
		{Name: "uncertain-security", Condition: "security.confidence < 0.3"},
	}

	findings := Evaluate(rules, testComposite())

	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	if findings[0].Rule != "degraded-battery" || findings[0].Severity != "critical" {
		t.Errorf("first finding = %+v, want degraded-battery/critical", findings[0])
	}
	// Severity defaults to warning when the rule leaves it empty.
	if findings[1].Severity != "warning" {
		t.Errorf("default severity = %q, want warning", findings[1].Severity)
	}
	if findings[1].Value != 0.25 {
		t.Errorf("finding value = %v, want triggering value 0.25", findings[1].Value)
	}
}

func TestEvaluate_NoRules(t *testing.T) {
	if findings := Evaluate(nil, testComposite()); findings != nil {
		t.Errorf("Evaluate(nil) = %v, want nil", findings)
	}
}
