// Package advisor evaluates configured threshold rules against a
// composite result and produces the findings embedded in the report:
// named conditions like "battery.score < 40" with a severity. Evaluation
// is a single pure pass over the rule list; the advisor keeps no state
// and never changes a score.
package advisor
