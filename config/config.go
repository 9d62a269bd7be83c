package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devscore/devscore/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultNominalVoltage    = 4.2
	DefaultCycleLifetime     = 1000
	DefaultCapacityTolerance = 0.05
	DefaultThermalThresholdC = 45.0
	DefaultThermalDecayK     = 0.1
	DefaultSampleWindow      = 5
	DefaultCacheCredit       = 0.5
	DefaultIOBaselineMBps    = 200.0
	DefaultAgreementLevel    = 0.5
	DefaultAgreementBoost    = 1.25
	DefaultDisagreeDiscount  = 0.6
	DefaultDetectorWeight    = 0.5
	DefaultCriticalFloor     = 20.0
	DefaultPenaltyK          = 1.0
	DefaultTrendWindow       = 5
	DefaultSubsystemWeight   = 0.1
	DefaultSignalTimeout     = 5 * time.Second
)

// weightEpsilon is the tolerance when checking that weights sum to 1.0.
const weightEpsilon = 1e-6

// Config is the full configuration surface of the scoring engine.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Battery     BatteryConfig     `yaml:"battery"`
	Security    SecurityConfig    `yaml:"security"`
	Performance PerformanceConfig `yaml:"performance"`
	Composite   CompositeConfig   `yaml:"composite"`
	Advisor     AdvisorConfig     `yaml:"advisor"`

	// SignalTimeout bounds each individual signal acquisition. A signal
	// that does not arrive in time is treated as unavailable rather than
	// stalling the cycle.
	SignalTimeout time.Duration `yaml:"signal_timeout"`
}

// BatteryConfig tunes the battery health analyzer and its normalization
// constants.
type BatteryConfig struct {
	// Weights maps factor name (capacity, voltage, thermal, cycles) to
	// its relative importance. Must sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// NominalVoltage is the voltage that normalizes to a perfect score.
	// Readings above it clamp to 1.0 rather than being penalized.
	NominalVoltage float64 `yaml:"nominal_voltage"`

	// CycleLifetime is the cycle count at which linear wear reaches zero.
	CycleLifetime float64 `yaml:"cycle_lifetime"`

	// CapacityTolerance is the fraction by which measured capacity may
	// exceed design capacity before the reading is rejected as invalid.
	CapacityTolerance float64 `yaml:"capacity_tolerance"`

	Thermal ThermalConfig `yaml:"thermal"`
}

// ThermalConfig describes the exponential thermal penalty curve: identity
// below ThresholdC, exp(-DecayK*(T-ThresholdC)) above it.
type ThermalConfig struct {
	ThresholdC float64 `yaml:"threshold_c"`
	DecayK     float64 `yaml:"decay_k"`
}

// SecurityConfig tunes the cross-verified security confidence analyzer.
type SecurityConfig struct {
	// DetectorReliability maps a detector source identifier to the
	// reliability weight of that detection method in (0,1]. Filesystem
	// integrity checks conventionally carry a high weight here.
	DetectorReliability map[string]float64 `yaml:"detector_reliability"`

	// DefaultReliability is used for sources absent from the table.
	DefaultReliability float64 `yaml:"default_reliability"`

	// AgreementThreshold is the minimum confidence two sources need
	// before their agreement or disagreement is counted.
	AgreementThreshold float64 `yaml:"agreement_threshold"`

	// AgreementBoost multiplies combined confidence for each agreeing
	// pair, capped at 1.0.
	AgreementBoost float64 `yaml:"agreement_boost"`

	// DisagreementDiscount multiplies combined confidence for each
	// disagreeing pair. Disagreement widens uncertainty; it never raises
	// the score.
	DisagreementDiscount float64 `yaml:"disagreement_discount"`
}

// PerformanceConfig tunes the resource load analyzer. Weights and the I/O
// baseline are configuration because benchmark baselines are
// device-class-dependent.
type PerformanceConfig struct {
	// Weights maps factor name (cpu, memory, thermal, io) to its relative
	// importance. Must sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// SampleWindow is how many recent CPU utilization samples are
	// averaged, smoothing transient spikes.
	SampleWindow int `yaml:"sample_window"`

	// CacheCredit is the fraction of reclaimable buffer/cache memory
	// credited back as free, since cache is not lost memory.
	CacheCredit float64 `yaml:"cache_credit"`

	// IOBaselineMBps is the assumed benchmark throughput; observed
	// throughput at or above it scores 1.0.
	IOBaselineMBps float64 `yaml:"io_baseline_mbps"`

	// ZoneWeights maps thermal zone name to its weight in the per-zone
	// average. Zones nearer critical components weigh higher; unlisted
	// zones get weight 1.
	ZoneWeights map[string]float64 `yaml:"zone_weights"`

	Thermal ThermalConfig `yaml:"thermal"`
}

// CompositeConfig tunes the reliability aggregator.
type CompositeConfig struct {
	// Weights maps subsystem domain to its weight in the composite
	// average. Domains absent from the map get DefaultWeight. Unlike
	// analyzer factor weights these need not sum to 1; they are
	// renormalized over the subsystems present in a cycle.
	Weights map[string]float64 `yaml:"weights"`

	// DefaultWeight applies to subsystem domains not listed in Weights.
	DefaultWeight float64 `yaml:"default_weight"`

	// CriticalFloor is the score below which a single subsystem triggers
	// the exponential composite penalty.
	CriticalFloor float64 `yaml:"critical_floor"`

	// PenaltyK scales the exponential critical penalty curve.
	PenaltyK float64 `yaml:"penalty_k"`

	// TrendWindow is how many recent history entries feed the moving
	// average behind the trend delta.
	TrendWindow int `yaml:"trend_window"`
}

// AdvisorConfig holds the threshold rules evaluated against each
// composite result.
type AdvisorConfig struct {
	Rules []AdvisorRule `yaml:"rules"`
}

// AdvisorRule defines one threshold condition over a composite result.
type AdvisorRule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "battery.score < 40" or
	// "overall < 50". See ParseCondition for the grammar; malformed
	// conditions are rejected at Validate time.
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults; structural problems are fatal.
//
// Map fields (weight tables, the detector reliability table) are
// replace-not-merge: a map present in the file fully replaces its
// default table instead of blending with it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	// yaml merges into pre-populated maps, so the default tables are
	// detached during parsing and restored only where the file supplied
	// nothing.
	cfg.Battery.Weights = nil
	cfg.Security.DetectorReliability = nil
	cfg.Performance.Weights = nil
	cfg.Composite.Weights = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	def := Default()
	if cfg.Battery.Weights == nil {
		cfg.Battery.Weights = def.Battery.Weights
	}
	if cfg.Security.DetectorReliability == nil {
		cfg.Security.DetectorReliability = def.Security.DetectorReliability
	}
	if cfg.Performance.Weights == nil {
		cfg.Performance.Weights = def.Performance.Weights
	}
	if cfg.Composite.Weights == nil {
		cfg.Composite.Weights = def.Composite.Weights
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a Config pre-populated with the documented defaults.
// The result is valid as-is.
func Default() *Config {
	return &Config{
		Battery: BatteryConfig{
			Weights: map[string]float64{
				"capacity": 0.50,
				"voltage":  0.20,
				"thermal":  0.15,
				"cycles":   0.15,
			},
			NominalVoltage:    DefaultNominalVoltage,
			CycleLifetime:     DefaultCycleLifetime,
			CapacityTolerance: DefaultCapacityTolerance,
			Thermal: ThermalConfig{
				ThresholdC: DefaultThermalThresholdC,
				DecayK:     DefaultThermalDecayK,
			},
		},
		Security: SecurityConfig{
			DetectorReliability: map[string]float64{
				"fs_integrity": 0.95,
			},
			DefaultReliability:   DefaultDetectorWeight,
			AgreementThreshold:   DefaultAgreementLevel,
			AgreementBoost:       DefaultAgreementBoost,
			DisagreementDiscount: DefaultDisagreeDiscount,
		},
		Performance: PerformanceConfig{
			Weights: map[string]float64{
				"cpu":     0.35,
				"memory":  0.30,
				"thermal": 0.20,
				"io":      0.15,
			},
			SampleWindow:   DefaultSampleWindow,
			CacheCredit:    DefaultCacheCredit,
			IOBaselineMBps: DefaultIOBaselineMBps,
			Thermal: ThermalConfig{
				ThresholdC: DefaultThermalThresholdC,
				DecayK:     DefaultThermalDecayK,
			},
		},
		Composite: CompositeConfig{
			Weights: map[string]float64{
				types.DomainBattery:     0.30,
				types.DomainSecurity:    0.35,
				types.DomainPerformance: 0.25,
			},
			DefaultWeight: DefaultSubsystemWeight,
			CriticalFloor: DefaultCriticalFloor,
			PenaltyK:      DefaultPenaltyK,
			TrendWindow:   DefaultTrendWindow,
		},
		SignalTimeout: DefaultSignalTimeout,
	}
}

// Validate checks structural constraints. Any violation is wrapped in
// types.ErrConfig and should abort startup.
func (c *Config) Validate() error {
	if err := validateWeightSum("battery.weights", c.Battery.Weights); err != nil {
		return err
	}
	if err := validateWeightSum("performance.weights", c.Performance.Weights); err != nil {
		return err
	}
	if c.Battery.NominalVoltage <= 0 {
		return fmt.Errorf("%w: battery.nominal_voltage must be positive", types.ErrConfig)
	}
	if c.Battery.CycleLifetime <= 0 {
		return fmt.Errorf("%w: battery.cycle_lifetime must be positive", types.ErrConfig)
	}
	if c.Battery.CapacityTolerance < 0 {
		return fmt.Errorf("%w: battery.capacity_tolerance must not be negative", types.ErrConfig)
	}
	if err := validateThermal("battery.thermal", c.Battery.Thermal); err != nil {
		return err
	}
	if err := validateThermal("performance.thermal", c.Performance.Thermal); err != nil {
		return err
	}

	for src, r := range c.Security.DetectorReliability {
		if r <= 0 || r > 1 {
			return fmt.Errorf("%w: security.detector_reliability[%q] = %v, want (0,1]", types.ErrConfig, src, r)
		}
	}
	if r := c.Security.DefaultReliability; r <= 0 || r > 1 {
		return fmt.Errorf("%w: security.default_reliability = %v, want (0,1]", types.ErrConfig, r)
	}
	if t := c.Security.AgreementThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: security.agreement_threshold = %v, want [0,1]", types.ErrConfig, t)
	}
	if c.Security.AgreementBoost < 1 {
		return fmt.Errorf("%w: security.agreement_boost must be at least 1", types.ErrConfig)
	}
	if d := c.Security.DisagreementDiscount; d <= 0 || d > 1 {
		return fmt.Errorf("%w: security.disagreement_discount = %v, want (0,1]", types.ErrConfig, d)
	}

	if c.Performance.SampleWindow < 1 {
		return fmt.Errorf("%w: performance.sample_window must be at least 1", types.ErrConfig)
	}
	if cc := c.Performance.CacheCredit; cc < 0 || cc > 1 {
		return fmt.Errorf("%w: performance.cache_credit = %v, want [0,1]", types.ErrConfig, cc)
	}
	if c.Performance.IOBaselineMBps <= 0 {
		return fmt.Errorf("%w: performance.io_baseline_mbps must be positive", types.ErrConfig)
	}
	for zone, w := range c.Performance.ZoneWeights {
		if w <= 0 {
			return fmt.Errorf("%w: performance.zone_weights[%q] must be positive", types.ErrConfig, zone)
		}
	}

	for domain, w := range c.Composite.Weights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("%w: composite.weights[%q] = %v, want (0,1]", types.ErrConfig, domain, w)
		}
	}
	if w := c.Composite.DefaultWeight; w <= 0 || w > 1 {
		return fmt.Errorf("%w: composite.default_weight = %v, want (0,1]", types.ErrConfig, w)
	}
	if f := c.Composite.CriticalFloor; f <= 0 || f >= 100 {
		return fmt.Errorf("%w: composite.critical_floor = %v, want (0,100)", types.ErrConfig, f)
	}
	if c.Composite.PenaltyK <= 0 {
		return fmt.Errorf("%w: composite.penalty_k must be positive", types.ErrConfig)
	}
	if c.Composite.TrendWindow < 1 {
		return fmt.Errorf("%w: composite.trend_window must be at least 1", types.ErrConfig)
	}

	for i, rule := range c.Advisor.Rules {
		if rule.Name == "" {
			return fmt.Errorf("%w: advisor.rules[%d]: name is required", types.ErrConfig, i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("%w: advisor.rules[%d] %q: condition is required", types.ErrConfig, i, rule.Name)
		}
		if _, _, _, err := ParseCondition(rule.Condition); err != nil {
			return fmt.Errorf("%w: advisor.rules[%d] %q: %v", types.ErrConfig, i, rule.Name, err)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("%w: advisor.rules[%d] %q: unknown severity %q", types.ErrConfig, i, rule.Name, rule.Severity)
		}
	}

	if c.SignalTimeout <= 0 {
		return fmt.Errorf("%w: signal_timeout must be positive", types.ErrConfig)
	}

	return nil
}

// validateWeightSum checks that every weight is in (0,1] and the set sums
// to 1.0 within floating tolerance.
func validateWeightSum(field string, weights map[string]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: %s must not be empty", types.ErrConfig, field)
	}
	var sum float64
	for name, w := range weights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("%w: %s[%q] = %v, want (0,1]", types.ErrConfig, field, name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("%w: %s sum to %v, want 1.0", types.ErrConfig, field, sum)
	}
	return nil
}

// ParseCondition splits an advisor rule condition of the form
// "field op value" into its parts. Field is "overall", "reliability", or
// "<domain>.score" / "<domain>.confidence"; op is one of > >= < <= ==.
// A condition that parses here can still not fire at evaluation time
// when its domain produced no score that cycle.
func ParseCondition(cond string) (field, op string, threshold float64, err error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("condition %q does not have the form \"field op value\"", cond)
	}
	field, op = parts[0], parts[1]

	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return "", "", 0, fmt.Errorf("unknown operator %q", op)
	}

	threshold, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("threshold %q is not a number", parts[2])
	}

	switch field {
	case "overall", "reliability":
		return field, op, threshold, nil
	}
	domain, attr, ok := strings.Cut(field, ".")
	if !ok || domain == "" || (attr != "score" && attr != "confidence") {
		return "", "", 0, fmt.Errorf("unknown field %q", field)
	}
	return field, op, threshold, nil
}

func validateThermal(field string, t ThermalConfig) error {
	if t.ThresholdC <= 0 {
		return fmt.Errorf("%w: %s.threshold_c must be positive", types.ErrConfig, field)
	}
	if t.DecayK <= 0 {
		return fmt.Errorf("%w: %s.decay_k must be positive", types.ErrConfig, field)
	}
	return nil
}
