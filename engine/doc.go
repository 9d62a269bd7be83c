// Package engine runs one assessment cycle end to end: collect raw
// signals under acquisition timeouts, normalize them, run the three
// domain analyzers concurrently, join their scores through the composite
// aggregator, and build the final report. A cycle owns all of its data;
// the only state crossing cycles is the caller-supplied trend history,
// appended to exactly once after a fully successful run.
package engine
