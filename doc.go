// Package lincheck implements the event-structure model-checking core of a
// Lincheck-style concurrency-testing framework: a synchronization algebra
// over event labels, an append-only per-thread execution store, a
// sequentially-consistent memory tracker, and a depth-first search that
// decides whether a recorded concurrent execution is consistent with some
// total order.
//
// # Architecture
//
// Executions are built leaf-first: a [Label] describes what an event means;
// an [Event] places a label at a position on a thread; an [Execution] is the
// per-thread sequence of events recorded by [ExecutionBuilder]; a [Covering]
// answers what must already be replayed before a given event may be
// replayed; a [MemoryTracker] models sequentially-consistent shared memory;
// and a [Checker] searches the execution's interleavings for a total order
// respecting program order, the covering, and memory.
//
// # Thread Safety
//
// The engine is intentionally single-threaded and synchronous:
//   - [ExecutionBuilder] is a single-writer, append-only API. It is not
//     safe for concurrent use from multiple goroutines while recording one
//     execution (contrast this with frameworks whose submission APIs, e.g.
//     a Loop.Submit style method, are safe from any goroutine — here, the
//     instrumentation records one thread's events from that thread, and a
//     single external recorder interleaves threads' Begin/End calls).
//   - [Checker.Check] performs an in-process DFS with no parallelism, no
//     suspension points, and no cancellation. Do not share a [Checker]'s
//     internal search state across goroutines; constructing independent
//     [Checker] values and calling [Checker.Check] from different
//     goroutines on independent [Execution] values is fine.
//
// # Usage
//
//	b := lincheck.NewExecutionBuilder()
//	b.BeginThread(1)
//	b.AppendRequest(1, lincheck.NewThreadStartRequest(1, true))
//	b.AppendResponse(1, lincheck.NewThreadStartResponse(1, true), lincheck.InitializationRef)
//	b.AppendSend(1, lincheck.NewWriteAccess(loc, lincheck.IntValue(1), lincheck.KClassInt, false))
//	b.EndThread(1)
//	ex, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	checker := lincheck.NewChecker(lincheck.WithCovering(lincheck.ExternalCausality{}))
//	result := checker.Check(ex)
//	if !result.Consistent {
//	    log.Fatal(result.Violation)
//	}
package lincheck
