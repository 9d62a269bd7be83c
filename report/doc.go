// Package report assembles the cycle's final structured result: the
// composite score with its per-subsystem breakdown, a health grade, the
// advisor findings, and a short content digest that makes identical
// inputs auditable as identical outputs.
package report
