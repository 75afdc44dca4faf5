package lincheck

import (
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of [Checker.Check].
type Result struct {
	// Consistent is true iff some total order interleaving the
	// execution's per-thread sequences respects program order, the
	// configured covering, and memory.
	Consistent bool
	// Violation is nil on success. On failure it is either a
	// *SequentialConsistencyViolation (no total order exists) or a
	// *BarrierRace (the execution is structurally malformed) — use
	// errors.As to distinguish.
	Violation error
	// Stats holds DFS diagnostics, populated only when WithMetrics(true)
	// was supplied to NewChecker.
	Stats SearchStats
}

// Checker decides whether an [Execution] is consistent with some total
// order, for the covering and relaxation policy it was configured with. A
// Checker performs an in-process, synchronous DFS with no parallelism, no
// suspension points and no cancellation: do not share one Checker's
// in-flight Check call across goroutines.
type Checker struct {
	opts *checkerOptions
}

// NewChecker returns a Checker configured by opts. Unconfigured knobs
// default to [ExternalCausality]{} covering, [Strict] relaxation, the
// package-wide logger (or a no-op logger), and metrics disabled.
func NewChecker(opts ...CheckerOption) *Checker {
	return &Checker{opts: resolveCheckerOptions(opts)}
}

// Check runs the DFS described in spec.md §4.4: branching on every
// coverable, memory-consistent thread transition in threadId order, with a
// deterministic visited-set keyed by (counters, memory) to bound the
// search.
func (c *Checker) Check(ex *Execution) *Result {
	start := time.Now()

	if err := validateBarriers(ex); err != nil {
		logAt(c.opts.logger, LevelError, "barrier", "barrier race detected", err)
		return &Result{Consistent: false, Violation: err}
	}

	threads := ex.Threads()
	counters := make(map[ThreadID]int, len(threads))
	for _, t := range threads {
		counters[t] = 0
	}

	stats := &SearchStats{}
	visited := make(map[string]struct{})

	var search func(counters map[ThreadID]int, memory *MemoryTracker, depth int) bool
	search = func(counters map[ThreadID]int, memory *MemoryTracker, depth int) bool {
		if c.opts.metrics {
			stats.StatesVisited++
			if depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
		}

		terminal := true
		for _, t := range threads {
			if counters[t] < ex.Size(t) {
				terminal = false
				break
			}
		}
		if terminal {
			return true
		}

		key := stateKey(threads, counters, memory)
		if _, seen := visited[key]; seen {
			return false
		}
		visited[key] = struct{}{}

		for _, t := range threads {
			pos := counters[t]
			if pos >= ex.Size(t) {
				continue
			}
			label, members, ok := ex.GetAggregatedLabel(t, pos)
			if !ok {
				continue
			}
			if !allCoverable(c.opts.covering, ex, members, counters, t, pos+len(members)) {
				continue
			}
			if !allSynchronizedFromSources(ex, members, c.opts.relaxation) {
				continue
			}
			newMemory, ok := memory.Replay(t, label)
			if !ok {
				continue
			}
			nextCounters := cloneCounters(counters)
			nextCounters[t] += len(members)
			if search(nextCounters, newMemory, depth+1) {
				return true
			}
			if c.opts.metrics {
				stats.Backtracks++
			}
		}
		return false
	}

	consistent := search(counters, NewMemoryTracker(), 0)
	if c.opts.metrics {
		stats.Duration = time.Since(start)
	}

	res := &Result{Consistent: consistent, Stats: *stats}
	if !consistent {
		res.Violation = &SequentialConsistencyViolation{Stats: *stats}
		logAt(c.opts.logger, LevelInfo, "checker", "no consistent total order found", nil)
	} else {
		logAt(c.opts.logger, LevelDebug, "checker", "execution is sequentially consistent", nil)
	}
	return res
}

// allCoverable checks every member of a candidate aggregated group against
// cov. A group's later members always carry a (same-thread, program-order)
// dependency on its earlier members, which counters — advanced only once
// the whole group has been played — does not yet reflect; groupEnd (the
// position immediately after the group) is substituted for the group's own
// thread so those intra-group edges aren't mistaken for missing
// dependencies, while cross-thread dependencies still see the real counts.
func allCoverable(cov Covering, ex *Execution, members []Event, counters map[ThreadID]int, t ThreadID, groupEnd int) bool {
	adjusted := cloneCounters(counters)
	adjusted[t] = groupEnd
	for _, m := range members {
		if !coverable(cov, ex, m.Ref(), adjusted) {
			return false
		}
	}
	return true
}

// allSynchronizedFromSources validates every sourced member of a candidate
// aggregated group against spec.md §4.1's SynchronizedFrom predicate: a
// Response event's recorded source (set by
// [ExecutionBuilder.AppendResponse]) must actually be a legal
// synchronization partner for its label, under the checker's configured
// [RelaxationPolicy]. This is what makes WithRelaxation meaningful — a
// looser policy accepts source/response pairs whose location or mutex
// identity would otherwise have to match exactly, which matters when
// replaying the same canonical scenario against object identities that
// differ across runs.
func allSynchronizedFromSources(ex *Execution, members []Event, pol RelaxationPolicy) bool {
	for _, m := range members {
		if !m.HasSource() {
			continue
		}
		src, ok := ex.Get(m.Source.ThreadID, m.Source.ThreadPosition)
		if !ok {
			return false
		}
		if !SynchronizedFrom(m.Label, src.Label, pol) {
			return false
		}
		if rsp, ok := m.Label.(ThreadJoinLabel); ok && rsp.Phase == Response {
			if !joinResponseJustified(ex, m, rsp, src.Label) {
				return false
			}
		}
	}
	return true
}

// joinResponseJustified completes the finish->join half of SynchronizedFrom,
// which on labels alone can only check that the finish's threads have left
// the response's remaining set. The full rule — Synchronize(Finish{F},
// JoinReq{J}) is defined iff F ⊆ J and yields remaining J \ F — needs the
// original request's join set, so it is validated here where the request
// event is reachable: the nearest preceding join request on the same thread.
func joinResponseJustified(ex *Execution, m Event, rsp ThreadJoinLabel, srcLabel Label) bool {
	finish, ok := srcLabel.(ThreadFinishLabel)
	if !ok {
		return false
	}
	for p := m.ThreadPosition - 1; p >= 0; p-- {
		prev, ok := ex.Get(m.ThreadID, p)
		if !ok {
			return false
		}
		req, ok := prev.Label.(ThreadJoinLabel)
		if !ok || req.Phase != Request {
			continue
		}
		return isSubset(finish.FinishedThreadIDs, req.JoinThreadIDs) &&
			sameThreadSet(rsp.JoinThreadIDs, subtract(req.JoinThreadIDs, finish.FinishedThreadIDs))
	}
	return false
}

func cloneCounters(counters map[ThreadID]int) map[ThreadID]int {
	out := make(map[ThreadID]int, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// stateKey builds a hashable visited-set key from the DFS state: per-
// thread counters (in fixed thread order, so key construction is
// deterministic) plus the memory tracker's structural hash.
func stateKey(threads []ThreadID, counters map[ThreadID]int, memory *MemoryTracker) string {
	var b strings.Builder
	for _, t := range threads {
		b.WriteString(strconv.Itoa(int(t)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(counters[t]))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(memory.Hash())
	return b.String()
}

// validateBarriers folds every ThreadFinish label in the execution,
// thread by thread in ascending order, through [Synchronize]. Any overlap
// between finished-thread sets — the same thread finishing more than
// once — surfaces as a *BarrierRace immediately, independent of the DFS:
// barrier malformation is a structural property of the execution, not of
// any particular interleaving. A finish naming a thread no fork ever
// spawned is equally structural and raced here too.
func validateBarriers(ex *Execution) error {
	var forkScope []ThreadID
	for _, t := range ex.Threads() {
		for p := 0; p < ex.Size(t); p++ {
			ev, ok := ex.Get(t, p)
			if !ok {
				continue
			}
			if fork, isFork := ev.Label.(ThreadForkLabel); isFork {
				forkScope = union(forkScope, fork.ForkThreadIDs)
			}
		}
	}

	var acc Label = NewEmpty()
	for _, t := range ex.Threads() {
		for p := 0; p < ex.Size(t); p++ {
			ev, ok := ex.Get(t, p)
			if !ok {
				continue
			}
			finish, isFinish := ev.Label.(ThreadFinishLabel)
			if !isFinish {
				continue
			}
			if !isSubset(finish.FinishedThreadIDs, forkScope) {
				return &BarrierRace{Reason: "thread finish outside any fork scope", A: finish}
			}
			merged, err := Synchronize(acc, ev.Label)
			if err != nil {
				return err
			}
			acc = merged
		}
	}
	return nil
}
