package analyzer

import (
	"math"
	"testing"

	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/normalize"
	"github.com/devscore/devscore/pkg/types"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// batteryFactors normalizes one set of readings with the default
// constants, failing the test on any invalid signal.
func batteryFactors(t *testing.T, capacity, design, voltage, tempC, cycles float64) map[string]types.NormalizedSignal {
	t.Helper()
	cfg := config.Default().Battery
	out := make(map[string]types.NormalizedSignal)

	ratio, err := normalize.CapacityRatio(capacity, design, cfg.CapacityTolerance)
	if err != nil {
		t.Fatalf("CapacityRatio: %v", err)
	}
	out[normalize.FactorCapacity] = ratio

	volt, err := normalize.Voltage(voltage, cfg.NominalVoltage)
	if err != nil {
		t.Fatalf("Voltage: %v", err)
	}
	out[normalize.FactorVoltage] = volt

	therm, err := normalize.Thermal(tempC, cfg.Thermal.ThresholdC, cfg.Thermal.DecayK)
	if err != nil {
		t.Fatalf("Thermal: %v", err)
	}
	out[normalize.FactorThermal] = therm

	wear, err := normalize.CycleWear(cycles, cfg.CycleLifetime)
	if err != nil {
		t.Fatalf("CycleWear: %v", err)
	}
	out[normalize.FactorCycles] = wear

	return out
}

func TestBattery_Analyze(t *testing.T) {
	b := NewBattery(config.Default().Battery)

	// capacity 3200/4000 = 0.8, voltage 4.0/4.2, temp 30 below threshold,
	// cycles 500/1000 = 0.5 wear remaining:
	//   0.50*0.8 + 0.20*(4.0/4.2) + 0.15*1.0 + 0.15*0.5 = 0.815476...
	got := b.Analyze(Input{Factors: batteryFactors(t, 3200, 4000, 4.0, 30, 500)})

	want := 100 * (0.50*0.8 + 0.20*(4.0/4.2) + 0.15*1.0 + 0.15*0.5)
	if !almostEqual(got.Score, want, 1e-9) {
		t.Errorf("Score = %v, want %v", got.Score, want)
	}
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1 with all factors present", got.Confidence)
	}
	if got.Flag != "" {
		t.Errorf("Flag = %q, want none", got.Flag)
	}
	if got.Domain != types.DomainBattery {
		t.Errorf("Domain = %q, want %q", got.Domain, types.DomainBattery)
	}
	if len(got.Factors) != 4 {
		t.Fatalf("breakdown has %d factors, want 4", len(got.Factors))
	}
	// Descending weight order puts capacity first.
	if got.Factors[0].Name != normalize.FactorCapacity {
		t.Errorf("heaviest factor = %q, want capacity", got.Factors[0].Name)
	}
}

// A missing factor's weight is redistributed; effective weights still
// sum to 1 and confidence drops to the present factors' share.
func TestBattery_MissingFactorRedistribution(t *testing.T) {
	b := NewBattery(config.Default().Battery)

	factors := batteryFactors(t, 3200, 4000, 4.0, 30, 500)
	delete(factors, normalize.FactorVoltage) // weight 0.20 gone

	got := b.Analyze(Input{Factors: factors})

	var effSum float64
	for _, f := range got.Factors {
		effSum += f.Weight
	}
	if !almostEqual(effSum, 1.0, 1e-9) {
		t.Errorf("effective weights sum to %v, want 1.0", effSum)
	}
	if !almostEqual(got.Confidence, 0.80, 1e-9) {
		t.Errorf("Confidence = %v, want 0.80 with a 0.20-weight factor missing", got.Confidence)
	}
	// capacity 0.50/0.80, thermal and cycles 0.15/0.80 each:
	//   0.625*0.8 + 0.1875*1.0 + 0.1875*0.5 = 0.78125
	if !almostEqual(got.Score, 78.125, 1e-9) {
		t.Errorf("Score = %v, want 78.125", got.Score)
	}
}

func TestBattery_FailsClosed(t *testing.T) {
	b := NewBattery(config.Default().Battery)

	volt, err := normalize.Voltage(4.0, 4.2)
	if err != nil {
		t.Fatalf("Voltage: %v", err)
	}
	got := b.Analyze(Input{Factors: map[string]types.NormalizedSignal{
		normalize.FactorVoltage: volt,
	}})

	if got.Score != 0 || got.Confidence != 0 {
		t.Errorf("single-factor result = (%v, %v), want (0, 0)", got.Score, got.Confidence)
	}
	if got.Flag != types.FlagInsufficientData {
		t.Errorf("Flag = %q, want %q", got.Flag, types.FlagInsufficientData)
	}
}

// More remaining capacity never scores worse.
func TestBattery_CapacityMonotonic(t *testing.T) {
	b := NewBattery(config.Default().Battery)

	prev := -1.0
	for capacity := 2000.0; capacity <= 4000; capacity += 200 {
		got := b.Analyze(Input{Factors: batteryFactors(t, capacity, 4000, 4.0, 30, 500)})
		if got.Score < prev {
			t.Fatalf("score dropped from %v to %v as capacity rose to %v", prev, got.Score, capacity)
		}
		prev = got.Score
	}
}

func TestBattery_ScoreBounds(t *testing.T) {
	b := NewBattery(config.Default().Battery)

	cases := []struct {
		name                                     string
		capacity, design, voltage, tempC, cycles float64
	}{
		{"everything perfect", 4000, 4000, 4.2, 25, 0},
		{"everything terrible", 0, 4000, 0, 120, 5000},
		{"mixed", 2200, 4000, 3.1, 55, 800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := b.Analyze(Input{Factors: batteryFactors(t, tc.capacity, tc.design, tc.voltage, tc.tempC, tc.cycles)})
			if got.Score < 0 || got.Score > 100 {
				t.Errorf("Score = %v outside [0,100]", got.Score)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("Confidence = %v outside [0,1]", got.Confidence)
			}
		})
	}
}
