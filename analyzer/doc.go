// Package analyzer derives per-subsystem health scores from normalized
// signals: battery degradation, cross-verified security confidence, and
// resource load. Each analyzer is a pure computation over one cycle's
// inputs; missing factors redistribute their weight across the factors
// present and lower the emitted confidence, never silently scoring as
// zero.
package analyzer
