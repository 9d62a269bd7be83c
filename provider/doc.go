// Package provider defines the interfaces through which raw telemetry
// enters the engine: signal providers mapping signal identity to a raw
// value (absence is an explicit unavailable marker), and detector
// providers yielding security verdicts. The Registry runs each signal
// acquisition under its own timeout so one blocking hardware read cannot
// stall a cycle.
package provider
