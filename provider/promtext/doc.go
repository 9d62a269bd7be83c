// Package promtext adapts device telemetry exposed in the Prometheus
// text exposition format into the engine's raw signals. It is a codec,
// not a collector: callers hand it an already-captured exposition (an
// exporter response body, a file) and it maps the known metric families
// onto canonical signal names.
package promtext
