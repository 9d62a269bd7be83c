package promtext

import (
	"context"
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/devscore/devscore/pkg/types"
)

// Metric families the parser maps onto raw signals. A device telemetry
// exporter is expected to publish these as gauges.
const (
	metricVoltage        = "device_battery_voltage_volts"
	metricCapacity       = "device_battery_capacity_mah"
	metricDesignCapacity = "device_battery_capacity_design_mah"
	metricCycleCount     = "device_battery_cycle_count"
	metricBatteryTemp    = "device_battery_temp_celsius"
	metricCPUUtil        = "device_cpu_utilization_ratio"
	metricMemTotal       = "device_memory_total_bytes"
	metricMemFree        = "device_memory_free_bytes"
	metricMemReclaimable = "device_memory_reclaimable_bytes"
	metricIOThroughput   = "device_io_throughput_mbps"

	// metricThermalZone carries one sample per thermal zone, identified
	// by the "zone" label.
	metricThermalZone = "device_thermal_zone_celsius"
)

// scalarMetrics maps exposition family names to canonical signal names
// and units.
var scalarMetrics = map[string]struct {
	signal string
	unit   string
}{
	metricVoltage:        {types.SignalVoltage, "V"},
	metricCapacity:       {types.SignalCapacity, "mAh"},
	metricDesignCapacity: {types.SignalDesignCapacity, "mAh"},
	metricCycleCount:     {types.SignalCycleCount, "count"},
	metricBatteryTemp:    {types.SignalBatteryTemp, "C"},
	metricCPUUtil:        {types.SignalCPUUtil, "ratio"},
	metricMemTotal:       {types.SignalMemTotal, "B"},
	metricMemFree:        {types.SignalMemFree, "B"},
	metricMemReclaimable: {types.SignalMemReclaimable, "B"},
	metricIOThroughput:   {types.SignalIOThroughput, "MB/s"},
}

// Provider is a SignalProvider that opens an exposition source per cycle
// and parses it into raw signals.
type Provider struct {
	open func(ctx context.Context) (io.ReadCloser, error)
}

// New creates a Provider around an open function supplied by the caller —
// typically an HTTP GET against an exporter or an os.Open of a captured
// scrape.
func New(open func(ctx context.Context) (io.ReadCloser, error)) *Provider {
	return &Provider{open: open}
}

// Signals opens the exposition source and parses one cycle's signals.
func (p *Provider) Signals(ctx context.Context) (map[string]types.RawSignal, error) {
	rc, err := p.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("promtext: open exposition: %w", err)
	}
	defer rc.Close()
	return Parse(rc)
}

// Parse decodes a Prometheus text exposition from r and maps the known
// metric families onto raw signals. Families the engine does not know
// are ignored. A partial parse that still yielded families is treated as
// success.
func Parse(r io.Reader) (map[string]types.RawSignal, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("promtext: parse exposition: %w", err)
	}

	out := make(map[string]types.RawSignal)
	for family, mapping := range scalarMetrics {
		mf, ok := mfs[family]
		if !ok {
			continue
		}
		v, ok := firstValue(mf)
		if !ok {
			continue
		}
		out[mapping.signal] = types.RawSignal{
			Name:  mapping.signal,
			Value: v,
			Unit:  mapping.unit,
		}
	}

	for zone, temp := range zoneTemps(mfs[metricThermalZone]) {
		name := types.ThermalZonePrefix + zone
		out[name] = types.RawSignal{Name: name, Value: temp, Unit: "C"}
	}

	return out, nil
}

// firstValue extracts the first gauge, counter, or untyped sample of a
// family.
func firstValue(mf *dto.MetricFamily) (float64, bool) {
	for _, m := range mf.GetMetric() {
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue(), true
		case m.Counter != nil:
			return m.Counter.GetValue(), true
		case m.Untyped != nil:
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}

// zoneTemps extracts per-zone temperatures from the thermal family,
// keyed by the "zone" label. Samples without the label are skipped.
func zoneTemps(mf *dto.MetricFamily) map[string]float64 {
	if mf == nil {
		return nil
	}
	out := make(map[string]float64)
	for _, m := range mf.GetMetric() {
		var zone string
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "zone" {
				zone = lp.GetValue()
			}
		}
		if zone == "" {
			continue
		}
		switch {
		case m.Gauge != nil:
			out[zone] = m.Gauge.GetValue()
		case m.Untyped != nil:
			out[zone] = m.Untyped.GetValue()
		}
	}
	return out
}
