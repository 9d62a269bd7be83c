package provider

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devscore/devscore/pkg/types"
)

// SignalProvider supplies one cycle's raw signals keyed by signal name.
// A key absent from the map is an explicit "unavailable" marker; each
// signal is supplied at most once per cycle.
type SignalProvider interface {
	Signals(ctx context.Context) (map[string]types.RawSignal, error)
}

// DetectorProvider supplies one cycle's security detection events, each
// with a stable source identifier used to look up its reliability weight.
type DetectorProvider interface {
	Detections(ctx context.Context) ([]types.DetectionEvent, error)
}

// SignalFunc acquires a single raw signal. Implementations may block on
// hardware or OS calls; the Registry bounds each call with its timeout.
type SignalFunc func(ctx context.Context) (types.RawSignal, error)

// Registry is a SignalProvider that fans out to individually registered
// acquisition functions. Each function runs concurrently under its own
// timeout; a failed or timed-out acquisition leaves its key out of the
// result instead of stalling the cycle.
type Registry struct {
	timeout time.Duration
	funcs   map[string]SignalFunc
}

// NewRegistry creates a Registry with the given per-signal timeout.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{timeout: timeout, funcs: make(map[string]SignalFunc)}
}

// Register adds an acquisition function for the named signal, replacing
// any previous registration. Register is not safe to call concurrently
// with Signals; wire the registry up before starting cycles.
func (r *Registry) Register(name string, fn SignalFunc) {
	r.funcs[name] = fn
}

// Signals acquires every registered signal concurrently. The returned
// map contains only the signals that arrived in time.
func (r *Registry) Signals(ctx context.Context) (map[string]types.RawSignal, error) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]types.RawSignal, len(r.funcs))
	)
	for name, fn := range r.funcs {
		wg.Add(1)
		go func(name string, fn SignalFunc) {
			defer wg.Done()
			sigCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			sig, err := fn(sigCtx)
			if err != nil {
				slog.Warn("provider: signal unavailable", "signal", name, "err", err)
				return
			}
			mu.Lock()
			out[name] = sig
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()
	return out, ctx.Err()
}

// StaticSignals wraps a fixed signal map as a SignalProvider. Useful for
// callers that capture telemetry themselves and for tests.
func StaticSignals(signals map[string]types.RawSignal) SignalProvider {
	return staticSignals(signals)
}

type staticSignals map[string]types.RawSignal

func (s staticSignals) Signals(context.Context) (map[string]types.RawSignal, error) {
	return s, nil
}

// StaticDetections wraps a fixed event list as a DetectorProvider.
func StaticDetections(events []types.DetectionEvent) DetectorProvider {
	return staticDetections(events)
}

type staticDetections []types.DetectionEvent

func (s staticDetections) Detections(context.Context) ([]types.DetectionEvent, error) {
	return s, nil
}
