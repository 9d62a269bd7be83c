// Package types defines the shared data model of the scoring engine: raw
// and normalized signals, weighted factors, subsystem and composite scores,
// the report structure, and the error taxonomy. Everything here is a value
// that is immutable once created; apart from trend history, entities live
// for a single assessment cycle.
package types
