package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devscore/devscore/advisor"
	"github.com/devscore/devscore/analyzer"
	"github.com/devscore/devscore/composite"
	"github.com/devscore/devscore/config"
	"github.com/devscore/devscore/history"
	"github.com/devscore/devscore/pkg/types"
	"github.com/devscore/devscore/provider"
	"github.com/devscore/devscore/report"
)

// Engine is the one-shot assessment pipeline. It holds no cycle state;
// Run may be called concurrently from multiple goroutines as long as
// each call uses its own history.
type Engine struct {
	cfg         *config.Config
	battery     *analyzer.Battery
	security    *analyzer.Security
	performance *analyzer.Performance
	aggregator  *composite.Aggregator

	now func() time.Time // injectable for deterministic tests
}

// New builds an Engine. The configuration is validated up front;
// configuration problems are fatal here, never discovered mid-cycle.
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:         cfg,
		battery:     analyzer.NewBattery(cfg.Battery),
		security:    analyzer.NewSecurity(cfg.Security),
		performance: analyzer.NewPerformance(cfg.Performance),
		aggregator:  composite.New(cfg.Composite),
		now:         time.Now,
	}, nil
}

// Option adjusts a single Run call.
type Option func(*runOptions)

type runOptions struct {
	history *history.Trend
	extra   []types.SubsystemScore
}

// WithHistory supplies the caller-owned trend history. The aggregator
// reads it for the trend delta and the engine appends the cycle's score
// after a fully successful run.
func WithHistory(t *history.Trend) Option {
	return func(o *runOptions) { o.history = t }
}

// WithComponentScores adds caller-computed subsystem scores (network,
// storage, stability, ...) to the composite, alongside the three built-in
// analyzers. The aggregator supports up to seven in total.
func WithComponentScores(scores ...types.SubsystemScore) Option {
	return func(o *runOptions) { o.extra = append(o.extra, scores...) }
}

// Run executes one assessment cycle. signals and detectors may be nil;
// the affected analyzers then score from whatever remains and flag
// themselves accordingly. Run returns types.ErrIncompleteAssessment when
// fewer than two subsystems produced usable scores.
func (e *Engine) Run(ctx context.Context, signals provider.SignalProvider, detectors provider.DetectorProvider, opts ...Option) (*types.Report, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	started := e.now()
	raw := e.collectSignals(ctx, signals)
	detections := e.collectDetections(ctx, detectors)

	batteryIn := analyzer.Input{Factors: e.batteryFactors(raw)}
	perfIn := analyzer.Input{Factors: e.performanceFactors(raw)}
	securityIn := analyzer.Input{Detections: detections}

	// The analyzers are independent given their inputs and share nothing
	// mutable; run them in parallel and join before aggregation.
	var (
		wg                                sync.WaitGroup
		batteryScore, secScore, perfScore types.SubsystemScore
	)
	wg.Add(3)
	go func() { defer wg.Done(); batteryScore = e.battery.Analyze(batteryIn) }()
	go func() { defer wg.Done(); secScore = e.security.Analyze(securityIn) }()
	go func() { defer wg.Done(); perfScore = e.performance.Analyze(perfIn) }()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subs := append([]types.SubsystemScore{batteryScore, secScore, perfScore}, o.extra...)
	cs, err := e.aggregator.Aggregate(subs)
	if err != nil {
		return nil, err
	}
	cs = e.aggregator.WithTrend(cs, o.history)

	findings := advisor.Evaluate(e.cfg.Advisor.Rules, cs)
	rep := report.Build(cs, findings, e.now())

	// Append-after-success keeps history atomic: a cancelled or failed
	// cycle leaves no trace.
	if o.history != nil && ctx.Err() == nil {
		o.history.Append(history.Entry{Score: cs.Score, RecordedAt: rep.GeneratedAt})
	}

	slog.Info("engine: assessment cycle complete",
		"score", cs.Score,
		"reliability_index", cs.ReliabilityIndex,
		"grade", rep.Grade,
		"partial", cs.Partial,
		"findings", len(findings),
		"elapsed", e.now().Sub(started),
	)
	return rep, nil
}

// collectSignals fetches the cycle's raw signals under the configured
// acquisition timeout. A failed or slow provider degrades to an empty
// signal set rather than stalling the cycle; the analyzers then lower
// confidence and flag insufficiency.
func (e *Engine) collectSignals(ctx context.Context, p provider.SignalProvider) map[string]types.RawSignal {
	if p == nil {
		return nil
	}
	sigCtx, cancel := context.WithTimeout(ctx, e.cfg.SignalTimeout)
	defer cancel()

	raw, err := p.Signals(sigCtx)
	if err != nil {
		slog.Warn("engine: signal provider failed, proceeding with partial signals",
			"signals", len(raw), "err", err)
	}
	return raw
}

// collectDetections fetches the cycle's detection events under the same
// acquisition timeout policy.
func (e *Engine) collectDetections(ctx context.Context, p provider.DetectorProvider) []types.DetectionEvent {
	if p == nil {
		return nil
	}
	detCtx, cancel := context.WithTimeout(ctx, e.cfg.SignalTimeout)
	defer cancel()

	events, err := p.Detections(detCtx)
	if err != nil {
		slog.Warn("engine: detector provider failed, proceeding without its events",
			"events", len(events), "err", err)
	}
	return events
}
