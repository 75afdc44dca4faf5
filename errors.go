package lincheck

import "fmt"

// SequentialConsistencyViolation is returned by [Checker.Check] when the
// search exhausts every interleaving without reaching a terminal state:
// the execution admits no total order respecting program order, the
// covering, and memory. It is recoverable by the caller — who reports a
// linearizability failure — in contrast to [BarrierRace], which means the
// execution itself was malformed.
type SequentialConsistencyViolation struct {
	Stats SearchStats
}

func (e *SequentialConsistencyViolation) Error() string {
	return fmt.Sprintf("lincheck: no sequentially consistent total order found (visited %d states, max depth %d)",
		e.Stats.StatesVisited, e.Stats.MaxDepth)
}
