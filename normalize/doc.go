// Package normalize maps raw heterogeneous measurements onto the bounded
// [0,1] "goodness" scale the analyzers consume. Every function is pure and
// deterministic: same input, same output, no side effects. Out-of-domain
// inputs fail with types.InvalidSignalError instead of being coerced to
// zero.
package normalize
