package promtext

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/devscore/devscore/pkg/types"
)

const sampleExposition = `# HELP device_battery_voltage_volts Battery voltage.
# TYPE device_battery_voltage_volts gauge
device_battery_voltage_volts 4.0
# TYPE device_battery_capacity_mah gauge
device_battery_capacity_mah 3200
# TYPE device_battery_capacity_design_mah gauge
device_battery_capacity_design_mah 4000
# TYPE device_battery_cycle_count counter
device_battery_cycle_count 500
# TYPE device_cpu_utilization_ratio gauge
device_cpu_utilization_ratio 0.3
# TYPE device_thermal_zone_celsius gauge
device_thermal_zone_celsius{zone="cpu"} 41
device_thermal_zone_celsius{zone="battery"} 33
# TYPE some_exporter_internal_metric gauge
some_exporter_internal_metric 1
`

func TestParse(t *testing.T) {
	signals, err := Parse(strings.NewReader(sampleExposition))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		signal string
		value  float64
		unit   string
	}{
		{types.SignalVoltage, 4.0, "V"},
		{types.SignalCapacity, 3200, "mAh"},
		{types.SignalDesignCapacity, 4000, "mAh"},
		{types.SignalCycleCount, 500, "count"},
		{types.SignalCPUUtil, 0.3, "ratio"},
		{types.ThermalZonePrefix + "cpu", 41, "C"},
		{types.ThermalZonePrefix + "battery", 33, "C"},
	}
	for _, tc := range tests {
		sig, ok := signals[tc.signal]
		if !ok {
			t.Errorf("signal %q missing from parse result", tc.signal)
			continue
		}
		if sig.Value != tc.value || sig.Unit != tc.unit {
			t.Errorf("%q = (%v, %q), want (%v, %q)", tc.signal, sig.Value, sig.Unit, tc.value, tc.unit)
		}
	}

	// Families the engine does not know are ignored, not errors.
	if _, ok := signals["some_exporter_internal_metric"]; ok {
		t.Error("unknown metric family leaked into the signal map")
	}
	// Absent families are simply absent.
	if _, ok := signals[types.SignalIOThroughput]; ok {
		t.Error("io throughput present without an exposition sample")
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse(strings.NewReader("{{{ not an exposition")); err == nil {
		t.Fatal("Parse of garbage input did not fail")
	}
}

func TestProvider_Signals(t *testing.T) {
	p := New(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(sampleExposition)), nil
	})

	signals, err := p.Signals(context.Background())
	if err != nil {
		t.Fatalf("Signals: %v", err)
	}
	if signals[types.SignalVoltage].Value != 4.0 {
		t.Errorf("voltage = %v, want 4.0", signals[types.SignalVoltage].Value)
	}
}

func TestProvider_OpenFailure(t *testing.T) {
	p := New(func(context.Context) (io.ReadCloser, error) {
		return nil, errors.New("exporter unreachable")
	})
	if _, err := p.Signals(context.Background()); err == nil {
		t.Fatal("Signals with a failing open did not error")
	}
}
