package engine

import (
	"log/slog"
	"strings"

	"github.com/devscore/devscore/normalize"
	"github.com/devscore/devscore/pkg/types"
)

// batteryFactors normalizes the battery-domain raw signals into analyzer
// factors. Invalid signals are excluded — the analyzer's weight
// redistribution and confidence reduction handle the gap; nothing is
// coerced to zero.
func (e *Engine) batteryFactors(raw map[string]types.RawSignal) map[string]types.NormalizedSignal {
	cfg := e.cfg.Battery
	factors := make(map[string]types.NormalizedSignal)
	add := func(sig types.NormalizedSignal, err error) {
		if err != nil {
			slog.Warn("engine: excluding invalid battery signal", "err", err)
			return
		}
		factors[sig.Name] = sig
	}

	if v, ok := raw[types.SignalVoltage]; ok {
		add(normalize.Voltage(v.Value, cfg.NominalVoltage))
	}
	cur, curOK := raw[types.SignalCapacity]
	design, designOK := raw[types.SignalDesignCapacity]
	if curOK && designOK {
		add(normalize.CapacityRatio(cur.Value, design.Value, cfg.CapacityTolerance))
	}
	if t, ok := raw[types.SignalBatteryTemp]; ok {
		add(normalize.Thermal(t.Value, cfg.Thermal.ThresholdC, cfg.Thermal.DecayK))
	}
	if c, ok := raw[types.SignalCycleCount]; ok {
		add(normalize.CycleWear(c.Value, cfg.CycleLifetime))
	}
	return factors
}

// performanceFactors normalizes the load-domain raw signals into
// analyzer factors.
func (e *Engine) performanceFactors(raw map[string]types.RawSignal) map[string]types.NormalizedSignal {
	cfg := e.cfg.Performance
	factors := make(map[string]types.NormalizedSignal)
	add := func(sig types.NormalizedSignal, err error) {
		if err != nil {
			slog.Warn("engine: excluding invalid performance signal", "err", err)
			return
		}
		factors[sig.Name] = sig
	}

	if cpu, ok := raw[types.SignalCPUUtil]; ok {
		samples := cpu.Samples
		if len(samples) == 0 {
			samples = []float64{cpu.Value}
		}
		frac, err := normalize.WindowMean(samples, cfg.SampleWindow)
		if err != nil {
			slog.Warn("engine: excluding invalid performance signal", "err", err)
		} else {
			add(normalize.Utilization(normalize.FactorCPU, frac))
		}
	}

	total, totalOK := raw[types.SignalMemTotal]
	free, freeOK := raw[types.SignalMemFree]
	if totalOK && freeOK {
		var reclaimable float64
		if r, ok := raw[types.SignalMemReclaimable]; ok {
			reclaimable = r.Value
		}
		add(normalize.MemoryPressure(total.Value, free.Value, reclaimable, cfg.CacheCredit))
	}

	if zones := thermalZones(raw); len(zones) > 0 {
		add(normalize.ZoneThermal(zones, cfg.ZoneWeights, cfg.Thermal.ThresholdC, cfg.Thermal.DecayK))
	}

	if io, ok := raw[types.SignalIOThroughput]; ok {
		add(normalize.Throughput(io.Value, cfg.IOBaselineMBps))
	}
	return factors
}

// thermalZones gathers the per-zone temperature signals, keyed by zone
// name.
func thermalZones(raw map[string]types.RawSignal) map[string]float64 {
	var zones map[string]float64
	for name, sig := range raw {
		zone, ok := strings.CutPrefix(name, types.ThermalZonePrefix)
		if !ok || zone == "" {
			continue
		}
		if zones == nil {
			zones = make(map[string]float64)
		}
		zones[zone] = sig.Value
	}
	return zones
}
