package lincheck

import (
	"fmt"
	"sort"
)

// Execution is the per-thread, append-only event history produced by
// [ExecutionBuilder.Build]. It is immutable for the duration of any
// consistency check: [Checker.Check] never changes the events of the
// Execution it is given, only the search state (counters and memory) it
// clones while exploring interleavings. The one thing it adds to the
// Execution is the memo cache [Execution.GetAggregatedLabel] fills.
type Execution struct {
	threads  map[ThreadID][]Event
	order    []ThreadID
	aggCache map[EventRef]aggregatedEntry
}

type aggregatedEntry struct {
	label   Label
	members []Event
}

var initEvent = Event{ID: 0, ThreadID: InitThreadID, ThreadPosition: 0, Label: NewInitialization()}

// Threads returns the ids of every real (non-virtual) thread in the
// execution, sorted ascending for deterministic iteration.
func (ex *Execution) Threads() []ThreadID {
	out := make([]ThreadID, len(ex.order))
	copy(out, ex.order)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Size returns the number of events recorded on tid.
func (ex *Execution) Size(tid ThreadID) int {
	if tid == InitThreadID {
		return 1
	}
	return len(ex.threads[tid])
}

// Get returns the event at (tid, pos).
func (ex *Execution) Get(tid ThreadID, pos int) (Event, bool) {
	if tid == InitThreadID {
		if pos == 0 {
			return initEvent, true
		}
		return Event{}, false
	}
	seq := ex.threads[tid]
	if pos < 0 || pos >= len(seq) {
		return Event{}, false
	}
	return seq[pos], true
}

// GetAggregatedLabel returns the largest same-thread prefix starting at
// (tid, pos) that fuses into one atomic label via [Aggregate], together
// with the member events that compose it. Results are memoized on the
// Execution since the covering/checker machinery repeatedly re-queries the
// same prefix while backtracking.
func (ex *Execution) GetAggregatedLabel(tid ThreadID, pos int) (Label, []Event, bool) {
	ref := EventRef{ThreadID: tid, ThreadPosition: pos}
	if entry, ok := ex.aggCache[ref]; ok {
		return entry.label, entry.members, true
	}
	first, ok := ex.Get(tid, pos)
	if !ok {
		return nil, nil, false
	}
	label := first.Label
	members := []Event{first}
	for {
		next, ok := ex.Get(tid, pos+len(members))
		if !ok {
			break
		}
		fused, ok := Aggregate(label, next.Label)
		if !ok {
			break
		}
		label = fused
		members = append(members, next)
	}
	entry := aggregatedEntry{label: label, members: members}
	if ex.aggCache == nil {
		ex.aggCache = make(map[EventRef]aggregatedEntry)
	}
	ex.aggCache[ref] = entry
	return label, members, true
}

// ExecutionBuilder incrementally assembles an [Execution] from the
// instrumentation callback surface spec.md §6 names: one BeginThread per
// observed thread, appendSend/appendRequest/appendResponse per observed
// action, EndThread when the thread exits, and Build to freeze the
// result.
//
// ExecutionBuilder is a single-writer, append-only API: it is not safe for
// concurrent use by multiple goroutines while recording one execution.
type ExecutionBuilder struct {
	threads map[ThreadID][]Event
	order   []ThreadID
	ended   map[ThreadID]bool
	pending map[ThreadID]Label
	nextID  EventID
	logger  Logger
}

// NewExecutionBuilder returns an empty builder.
func NewExecutionBuilder(opts ...BuilderOption) *ExecutionBuilder {
	cfg := resolveBuilderOptions(opts)
	return &ExecutionBuilder{
		threads: make(map[ThreadID][]Event),
		ended:   make(map[ThreadID]bool),
		pending: make(map[ThreadID]Label),
		logger:  cfg.logger,
	}
}

// BeginThread registers tid as present in the execution. tid must not be
// [InitThreadID] (reserved for the virtual Initialization root) and must
// not already have been begun.
func (b *ExecutionBuilder) BeginThread(tid ThreadID) error {
	if tid == InitThreadID {
		return fmt.Errorf("lincheck: thread id %d is reserved for Initialization", tid)
	}
	if _, exists := b.threads[tid]; exists {
		return fmt.Errorf("lincheck: thread %d already begun", tid)
	}
	b.threads[tid] = nil
	b.order = append(b.order, tid)
	return nil
}

func (b *ExecutionBuilder) requireThread(tid ThreadID) error {
	if _, ok := b.threads[tid]; !ok {
		return b.reject(fmt.Errorf("lincheck: thread %d was never begun", tid))
	}
	if b.ended[tid] {
		return b.reject(fmt.Errorf("lincheck: thread %d already ended", tid))
	}
	return nil
}

// reject logs err at LevelWarn (if a logger is configured) and returns it
// unchanged, so every malformed-append rejection is both reported to the
// caller and observable via structured logging.
func (b *ExecutionBuilder) reject(err error) error {
	logAt(b.logger, LevelWarn, "builder", "rejected malformed append", err)
	return err
}

func (b *ExecutionBuilder) append(tid ThreadID, label Label, source EventRef, hasSrc bool) (Event, error) {
	if err := b.requireThread(tid); err != nil {
		return Event{}, err
	}
	ev := Event{
		ID:             b.nextID,
		ThreadID:       tid,
		ThreadPosition: len(b.threads[tid]),
		Label:          label,
		Source:         source,
		hasSrc:         hasSrc,
	}
	b.nextID++
	b.threads[tid] = append(b.threads[tid], ev)
	return ev, nil
}

// AppendSend appends a Send-kind label.
func (b *ExecutionBuilder) AppendSend(tid ThreadID, label Label) (Event, error) {
	if label.Kind() != Send {
		return Event{}, b.reject(fmt.Errorf("lincheck: AppendSend given a %s label", label.Kind()))
	}
	return b.append(tid, label, EventRef{}, false)
}

// AppendRequest appends a Request-kind label, opening an operation that
// must be closed by a matching AppendResponse before any other Request is
// opened on tid.
func (b *ExecutionBuilder) AppendRequest(tid ThreadID, label Label) (Event, error) {
	if label.Kind() != Request {
		return Event{}, b.reject(fmt.Errorf("lincheck: AppendRequest given a %s label", label.Kind()))
	}
	if prior, open := b.pending[tid]; open {
		return Event{}, b.reject(fmt.Errorf("lincheck: thread %d has an open request %T awaiting its response", tid, prior))
	}
	ev, err := b.append(tid, label, EventRef{}, false)
	if err != nil {
		return Event{}, err
	}
	b.pending[tid] = label
	return ev, nil
}

// AppendResponse appends a Response-kind label closing the most recent
// open AppendRequest on tid, recording source as the event it
// synchronized from (used by [ExternalCausality]). The response's shape
// must match the open request (same operation, same location/mutex
// identity).
func (b *ExecutionBuilder) AppendResponse(tid ThreadID, label Label, source EventRef) (Event, error) {
	if label.Kind() != Response {
		return Event{}, b.reject(fmt.Errorf("lincheck: AppendResponse given a %s label", label.Kind()))
	}
	req, open := b.pending[tid]
	if !open {
		return Event{}, b.reject(fmt.Errorf("lincheck: thread %d has no open request for a response", tid))
	}
	if !matchesRequestResponse(req, label) {
		return Event{}, b.reject(fmt.Errorf("lincheck: response %T does not match open request %T on thread %d", label, req, tid))
	}
	ev, err := b.append(tid, label, source, true)
	if err != nil {
		return Event{}, err
	}
	delete(b.pending, tid)
	return ev, nil
}

// EndThread marks tid as finished; no further events may be appended to
// it. It is an error to end a thread with an open (unanswered) request.
func (b *ExecutionBuilder) EndThread(tid ThreadID) error {
	if err := b.requireThread(tid); err != nil {
		return err
	}
	if _, open := b.pending[tid]; open {
		return b.reject(fmt.Errorf("lincheck: thread %d ended with an open request", tid))
	}
	b.ended[tid] = true
	return nil
}

// Build freezes the builder into an immutable [Execution], validating the
// well-formedness invariants spec.md §3/§6 require: every thread begins
// with a ThreadStart request/response pair, and the main thread's start is
// sourced from Initialization.
func (b *ExecutionBuilder) Build() (*Execution, error) {
	for tid, seq := range b.threads {
		if len(seq) == 0 {
			return nil, fmt.Errorf("lincheck: thread %d has no events", tid)
		}
		start, ok := seq[0].Label.(ThreadStartLabel)
		if !ok || start.Phase != Request {
			return nil, fmt.Errorf("lincheck: thread %d does not begin with a ThreadStart request", tid)
		}
		if len(seq) < 2 {
			return nil, fmt.Errorf("lincheck: thread %d's ThreadStart request has no response", tid)
		}
		if len(seq) > 1 {
			if rsp, ok := seq[1].Label.(ThreadStartLabel); ok && rsp.Phase == Response {
				if start.IsMainThread && seq[1].Source != InitializationRef {
					return nil, fmt.Errorf("lincheck: main thread %d's start must be sourced from Initialization", tid)
				}
			}
		}
	}
	return &Execution{
		threads: b.threads,
		order:   append([]ThreadID(nil), b.order...),
	}, nil
}

// matchesRequestResponse validates that rsp is structurally the
// same-operation answer to req (ignoring, deliberately, whether the
// synchronization that produced its value is itself valid — that is the
// checker's job at verification time).
func matchesRequestResponse(req, rsp Label) bool {
	switch r := req.(type) {
	case ThreadStartLabel:
		o, ok := rsp.(ThreadStartLabel)
		return ok && o.Phase == Response && o.ThreadID == r.ThreadID
	case ThreadJoinLabel:
		o, ok := rsp.(ThreadJoinLabel)
		// The remaining set can only shrink: a response claiming threads
		// the request never waited on is malformed.
		return ok && o.Phase == Response && isSubset(o.JoinThreadIDs, r.JoinThreadIDs)
	case ReadAccessLabel:
		o, ok := rsp.(ReadAccessLabel)
		return ok && o.Phase == Response && o.Location == r.Location && o.Exclusive == r.Exclusive
	case LockLabel:
		o, ok := rsp.(LockLabel)
		return ok && o.Phase == Response && o.Mutex == r.Mutex
	case WaitLabel:
		o, ok := rsp.(WaitLabel)
		return ok && o.Phase == Response && o.Mutex == r.Mutex
	default:
		return false
	}
}
