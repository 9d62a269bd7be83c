// Package history holds the optional trend history: a bounded,
// append-only log of past composite scores owned by the surrounding
// application. The aggregator only reads it; the engine appends exactly
// once after a fully successful cycle, so a cancelled cycle never leaves
// a partial write behind.
package history
