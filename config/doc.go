// Package config loads, validates, and hot-reloads the scoring engine
// configuration: analyzer factor weights, normalization constants, the
// detector reliability table, composite weighting, and advisor rules.
// Validation failures are fatal at load time; the engine never runs on a
// silently-defaulted invalid configuration.
package config
