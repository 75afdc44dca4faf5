package lincheck

import "time"

// SearchStats records lightweight, purely observational diagnostics about
// one [Checker.Check] DFS run. Recording stats must never influence the
// search's determinism property: two invocations on equal inputs return
// equal [Result.Consistent]/[Result.Violation] values regardless of
// whether [WithMetrics] is enabled.
type SearchStats struct {
	// StatesVisited counts search steps entered, including terminal states
	// and revisits of a (counters, memory) state already explored.
	StatesVisited int
	// MaxDepth is the deepest recursion reached by the DFS.
	MaxDepth int
	// Backtracks counts transitions that were tried and then abandoned.
	Backtracks int
	// Duration is the wall-clock time Check spent searching.
	Duration time.Duration
}
