package normalize

import (
	"math"

	"github.com/devscore/devscore/pkg/types"
)

// Factor names emitted by the normalizers. Analyzer weight maps are keyed
// by these.
const (
	FactorCapacity = "capacity"
	FactorVoltage  = "voltage"
	FactorThermal  = "thermal"
	FactorCycles   = "cycles"
	FactorCPU      = "cpu"
	FactorMemory   = "memory"
	FactorIO       = "io"
)

// Voltage maps a battery voltage reading onto [0,1] as v/nominal, clamped.
// Readings above nominal clamp to 1.0 — over-voltage beyond nominal is
// never penalized.
func Voltage(v, nominal float64) (types.NormalizedSignal, error) {
	if !isFinite(v) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorVoltage, Reason: "not a finite number"}
	}
	if v < 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorVoltage, Reason: "negative voltage"}
	}
	return unit(FactorVoltage, clamp01(v/nominal)), nil
}

// CapacityRatio maps current/design capacity onto [0,1]. A current
// capacity exceeding design by more than tolerance (a fraction of design)
// indicates a bad reading and is rejected.
func CapacityRatio(current, design, tolerance float64) (types.NormalizedSignal, error) {
	if !isFinite(current) || !isFinite(design) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorCapacity, Reason: "not a finite number"}
	}
	if current < 0 || design <= 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorCapacity, Reason: "capacity out of domain"}
	}
	if current > design*(1+tolerance) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorCapacity, Reason: "current capacity exceeds design capacity beyond tolerance"}
	}
	return unit(FactorCapacity, clamp01(current/design)), nil
}

// Thermal maps a temperature onto [0,1]: identity 1.0 at or below the
// threshold, exponential decay exp(-k*(T-threshold)) above it. The result
// asymptotically approaches 0 and is never negative.
func Thermal(tempC, thresholdC, k float64) (types.NormalizedSignal, error) {
	if !isFinite(tempC) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorThermal, Reason: "not a finite number"}
	}
	return unit(FactorThermal, thermalScore(tempC, thresholdC, k)), nil
}

// ZoneThermal combines per-zone temperatures into one thermal factor: each
// zone is scored with the thermal curve, then averaged using the given
// zone weights. Zones absent from the weight map get weight 1, so zones
// nearer critical components can be weighted higher via configuration.
func ZoneThermal(zonesC map[string]float64, zoneWeights map[string]float64, thresholdC, k float64) (types.NormalizedSignal, error) {
	if len(zonesC) == 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorThermal, Reason: "no thermal zones"}
	}
	var weighted, total float64
	for zone, tempC := range zonesC {
		if !isFinite(tempC) {
			return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorThermal, Reason: "zone " + zone + " is not a finite number"}
		}
		w := 1.0
		if zw, ok := zoneWeights[zone]; ok {
			w = zw
		}
		weighted += w * thermalScore(tempC, thresholdC, k)
		total += w
	}
	return unit(FactorThermal, weighted/total), nil
}

// CycleWear maps a charge cycle count onto [0,1] as max(0, 1-cycles/lifetime).
func CycleWear(cycles, lifetime float64) (types.NormalizedSignal, error) {
	if !isFinite(cycles) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorCycles, Reason: "not a finite number"}
	}
	if cycles < 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorCycles, Reason: "negative cycle count"}
	}
	return unit(FactorCycles, math.Max(0, 1-cycles/lifetime)), nil
}

// Utilization maps a load fraction in [0,1] onto a headroom score: higher
// utilization, lower score, saturating at 0 for full load.
func Utilization(name string, frac float64) (types.NormalizedSignal, error) {
	if !isFinite(frac) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: name, Reason: "not a finite number"}
	}
	if frac < 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: name, Reason: "negative utilization"}
	}
	return unit(name, 1-clamp01(frac)), nil
}

// MemoryPressure derives the memory headroom score from total, free, and
// reclaimable byte counts. Reclaimable buffer/cache memory is credited
// back as free at the cacheCredit fraction, since cache is not lost
// memory.
func MemoryPressure(total, free, reclaimable, cacheCredit float64) (types.NormalizedSignal, error) {
	if !isFinite(total) || !isFinite(free) || !isFinite(reclaimable) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorMemory, Reason: "not a finite number"}
	}
	if total <= 0 || free < 0 || reclaimable < 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorMemory, Reason: "memory counters out of domain"}
	}
	if free+reclaimable > total {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorMemory, Reason: "free plus reclaimable exceeds total"}
	}
	effective := free + cacheCredit*reclaimable
	used := clamp01((total - effective) / total)
	return unit(FactorMemory, 1-used), nil
}

// Throughput maps observed I/O throughput against an assumed baseline
// benchmark: the ratio clamped to [0,1]. Exceeding the baseline caps out
// at 1.0 rather than inflating the score.
func Throughput(observed, baseline float64) (types.NormalizedSignal, error) {
	if !isFinite(observed) {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorIO, Reason: "not a finite number"}
	}
	if observed < 0 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: FactorIO, Reason: "negative throughput"}
	}
	return unit(FactorIO, clamp01(observed/baseline)), nil
}

// Detection normalizes a detector verdict. The confidence is already in
// [0,1] so the value passes through; the detector's reliability weight is
// attached for the analyzer's weighted mean.
func Detection(ev types.DetectionEvent, reliability float64) (types.NormalizedSignal, error) {
	if !isFinite(ev.Confidence) || ev.Confidence < 0 || ev.Confidence > 1 {
		return types.NormalizedSignal{}, &types.InvalidSignalError{Signal: ev.Source, Reason: "confidence outside [0,1]"}
	}
	return types.NormalizedSignal{Name: ev.Source, Value: ev.Confidence, Reliability: reliability}, nil
}

// WindowMean averages the last window samples, smoothing transient
// spikes. Fewer samples than the window uses what is available.
func WindowMean(samples []float64, window int) (float64, error) {
	if len(samples) == 0 {
		return 0, &types.InvalidSignalError{Signal: FactorCPU, Reason: "no samples"}
	}
	if window < len(samples) {
		samples = samples[len(samples)-window:]
	}
	var sum float64
	for _, s := range samples {
		if !isFinite(s) {
			return 0, &types.InvalidSignalError{Signal: FactorCPU, Reason: "sample is not a finite number"}
		}
		sum += s
	}
	return sum / float64(len(samples)), nil
}

func thermalScore(tempC, thresholdC, k float64) float64 {
	if tempC <= thresholdC {
		return 1
	}
	return math.Exp(-k * (tempC - thresholdC))
}

// unit builds a fully-reliable normalized signal.
func unit(name string, v float64) types.NormalizedSignal {
	return types.NormalizedSignal{Name: name, Value: v, Reliability: 1}
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

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
