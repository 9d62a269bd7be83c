// Package composite joins the per-subsystem scores into the single
// device reliability index. The weighted average is modulated by an
// availability-style critical penalty: one catastrophic subsystem pulls
// the composite down disproportionately, because a device is only as
// reliable as its weakest critical path.
package composite
