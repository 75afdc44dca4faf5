// Command lincheck-demo builds a handful of canned concurrent executions and
// runs the go-lincheck checker against them, printing the verdict and
// (optionally) search diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	flag "github.com/spf13/pflag"

	lincheck "github.com/joeycumines/go-lincheck"
)

var scenarios = map[string]func() (*lincheck.Execution, error){
	"single-writer-reader":  singleWriterReader,
	"store-buffering":       storeBuffering,
	"cas-success":           casSuccess,
	"cas-failure":           casFailure,
	"fork-join":             forkJoin,
	"lock-mutual-exclusion": lockMutualExclusion,
}

func main() {
	var (
		scenario = flag.StringP("scenario", "s", "single-writer-reader", "scenario to check (see --list)")
		verbose  = flag.BoolP("verbose", "v", false, "log builder/checker diagnostics via a logiface+stumpy sink")
		metrics  = flag.BoolP("metrics", "m", false, "print DFS search statistics")
		list     = flag.BoolP("list", "l", false, "list available scenarios and exit")
	)
	flag.Parse()

	if *list {
		for name := range scenarios {
			fmt.Println(name)
		}
		return
	}

	build, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "lincheck-demo: unknown scenario %q (use -l to list)\n", *scenario)
		os.Exit(2)
	}

	var opts []lincheck.CheckerOption
	if *verbose {
		logger := stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
			stumpy.L.WithLevel(logiface.LevelDebug),
		)
		opts = append(opts, lincheck.WithLogger(lincheck.NewLogifaceSink(logger)))
	}
	opts = append(opts, lincheck.WithMetrics(*metrics))

	ex, err := build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lincheck-demo: building scenario %q: %v\n", *scenario, err)
		os.Exit(1)
	}

	result := lincheck.NewChecker(opts...).Check(ex)
	if result.Consistent {
		fmt.Printf("%s: consistent\n", *scenario)
	} else {
		fmt.Printf("%s: inconsistent: %v\n", *scenario, result.Violation)
	}
	if *metrics {
		fmt.Printf("states visited: %d, max depth: %d, backtracks: %d, duration: %s\n",
			result.Stats.StatesVisited, result.Stats.MaxDepth, result.Stats.Backtracks, result.Stats.Duration)
	}
	if !result.Consistent {
		os.Exit(1)
	}
}

// singleWriterReader forks a child thread that reads the value its parent
// wrote, demonstrating a straightforwardly consistent execution.
func singleWriterReader() (*lincheck.Execution, error) {
	const loc lincheck.MemoryLocation = 1

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	forkEv, err := b.AppendSend(1, lincheck.NewThreadFork(2))
	if err != nil {
		return nil, err
	}
	writeEv, err := b.AppendSend(1, lincheck.NewWriteAccess(loc, lincheck.IntValue(5), lincheck.KClassInt, false))
	if err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	if err := b.BeginThread(2); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(2, lincheck.NewThreadStartRequest(2, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(2, lincheck.NewThreadStartResponse(2, false), forkEv.Ref()); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(2, lincheck.NewReadAccessRequest(loc, lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(2, lincheck.NewReadAccessResponse(loc, lincheck.IntValue(5), lincheck.KClassInt, false), writeEv.Ref()); err != nil {
		return nil, err
	}
	if err := b.EndThread(2); err != nil {
		return nil, err
	}

	return b.Build()
}

// storeBuffering encodes the classic SB litmus test: two independent threads
// each write their own variable then read the other's, both claiming to
// have observed the pre-write default. No sequentially consistent total
// order can produce that pair of observations.
func storeBuffering() (*lincheck.Execution, error) {
	const x, y lincheck.MemoryLocation = 1, 2

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(1, lincheck.NewWriteAccess(x, lincheck.IntValue(1), lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewReadAccessRequest(y, lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(1, lincheck.NewReadAccessResponse(y, lincheck.IntValue(0), lincheck.KClassInt, false), lincheck.InitializationRef); err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	if err := mainThread(b, 2); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(2, lincheck.NewWriteAccess(y, lincheck.IntValue(1), lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(2, lincheck.NewReadAccessRequest(x, lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(2, lincheck.NewReadAccessResponse(x, lincheck.IntValue(0), lincheck.KClassInt, false), lincheck.InitializationRef); err != nil {
		return nil, err
	}
	if err := b.EndThread(2); err != nil {
		return nil, err
	}

	return b.Build()
}

// casSuccess runs a single thread through an exclusive read-modify-write
// (compare-and-set) against a freshly initialized location.
func casSuccess() (*lincheck.Execution, error) {
	const loc lincheck.MemoryLocation = 1

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewReadAccessRequest(loc, lincheck.KClassInt, true)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(1, lincheck.NewReadAccessResponse(loc, lincheck.IntValue(0), lincheck.KClassInt, true), lincheck.InitializationRef); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(1, lincheck.NewWriteAccess(loc, lincheck.IntValue(1), lincheck.KClassInt, true)); err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	return b.Build()
}

// casFailure claims (via an exclusive read) to have observed a value nothing
// ever wrote, which no total order can justify.
func casFailure() (*lincheck.Execution, error) {
	const loc lincheck.MemoryLocation = 1

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewReadAccessRequest(loc, lincheck.KClassInt, true)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(1, lincheck.NewReadAccessResponse(loc, lincheck.IntValue(7), lincheck.KClassInt, true), lincheck.InitializationRef); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(1, lincheck.NewWriteAccess(loc, lincheck.IntValue(8), lincheck.KClassInt, true)); err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	return b.Build()
}

// forkJoin forks a child thread, joins it, then reads the value the child
// wrote before finishing — the join must make that write visible.
func forkJoin() (*lincheck.Execution, error) {
	const loc lincheck.MemoryLocation = 1

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	forkEv, err := b.AppendSend(1, lincheck.NewThreadFork(2))
	if err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewThreadJoinRequest(2)); err != nil {
		return nil, err
	}

	if err := b.BeginThread(2); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(2, lincheck.NewThreadStartRequest(2, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(2, lincheck.NewThreadStartResponse(2, false), forkEv.Ref()); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(2, lincheck.NewWriteAccess(loc, lincheck.IntValue(42), lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	finishEv, err := b.AppendSend(2, lincheck.NewThreadFinish(2))
	if err != nil {
		return nil, err
	}
	if err := b.EndThread(2); err != nil {
		return nil, err
	}

	if _, err := b.AppendResponse(1, lincheck.NewThreadJoinResponse(), finishEv.Ref()); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewReadAccessRequest(loc, lincheck.KClassInt, false)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(1, lincheck.NewReadAccessResponse(loc, lincheck.IntValue(42), lincheck.KClassInt, false), lincheck.EventRef{ThreadID: 2, ThreadPosition: 2}); err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	return b.Build()
}

// lockMutualExclusion hands a mutex from thread 1 to thread 2 via an
// explicit unlock/lock pairing.
func lockMutualExclusion() (*lincheck.Execution, error) {
	const mutex lincheck.MutexID = 1

	b := lincheck.NewExecutionBuilder()
	if err := mainThread(b, 1); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(1, lincheck.NewLockRequest(mutex, 0, 0)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(1, lincheck.NewLockResponse(mutex, 0, 0), lincheck.InitializationRef); err != nil {
		return nil, err
	}
	unlockEv, err := b.AppendSend(1, lincheck.NewUnlock(mutex, 0, 0))
	if err != nil {
		return nil, err
	}
	if err := b.EndThread(1); err != nil {
		return nil, err
	}

	if err := mainThread(b, 2); err != nil {
		return nil, err
	}
	if _, err := b.AppendRequest(2, lincheck.NewLockRequest(mutex, 0, 0)); err != nil {
		return nil, err
	}
	if _, err := b.AppendResponse(2, lincheck.NewLockResponse(mutex, 0, 0), unlockEv.Ref()); err != nil {
		return nil, err
	}
	if _, err := b.AppendSend(2, lincheck.NewUnlock(mutex, 0, 0)); err != nil {
		return nil, err
	}
	if err := b.EndThread(2); err != nil {
		return nil, err
	}

	return b.Build()
}

// mainThread appends the ThreadStart request/response pair every top-level
// thread in these demo scenarios begins with.
func mainThread(b *lincheck.ExecutionBuilder, tid lincheck.ThreadID) error {
	if err := b.BeginThread(tid); err != nil {
		return err
	}
	if _, err := b.AppendRequest(tid, lincheck.NewThreadStartRequest(tid, true)); err != nil {
		return err
	}
	_, err := b.AppendResponse(tid, lincheck.NewThreadStartResponse(tid, true), lincheck.InitializationRef)
	return err
}
