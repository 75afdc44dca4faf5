package lincheck

// Kind classifies a label as a one-sided Send, or one half of a two-phase
// Request/Response operation.
type Kind uint8

const (
	Send Kind = iota
	Request
	Response
)

func (k Kind) String() string {
	switch k {
	case Send:
		return "Send"
	case Request:
		return "Request"
	case Response:
		return "Response"
	default:
		return "Unknown"
	}
}

// SyncType distinguishes pairwise (Binary) synchronization from
// multi-participant (Barrier) synchronization such as thread join/finish.
type SyncType uint8

const (
	Binary SyncType = iota
	Barrier
)

func (s SyncType) String() string {
	if s == Barrier {
		return "Barrier"
	}
	return "Binary"
}

// Label is the immutable, closed set of event-label variants. The
// interface is sealed to this package (via the unexported label method) so
// that synchronize, aggregate and replay can be implemented as exhaustive
// type switches rather than virtual dispatch — the compiler enforces that
// no label variant is defined outside this package.
type Label interface {
	Kind() Kind
	SyncType() SyncType
	IsBlocking() bool
	// Unblocked reports whether a blocking label has already been
	// satisfied (e.g. a ThreadJoin response whose remaining set is
	// empty).
	Unblocked() bool
	label()
}

// baseLabel centralizes the common, mostly-constant parts of Kind/SyncType
// so each variant only states what differs from the Send/Binary default.
type baseLabel struct {
	kind     Kind
	syncType SyncType
	blocking bool
}

func (b baseLabel) Kind() Kind         { return b.kind }
func (b baseLabel) SyncType() SyncType { return b.syncType }
func (b baseLabel) IsBlocking() bool   { return b.blocking }
func (b baseLabel) Unblocked() bool    { return false }
func (baseLabel) label()               {}

// EmptyLabel is the neutral element of synchronization: A ⊕ Empty = A.
type EmptyLabel struct{ baseLabel }

// NewEmpty returns the neutral label.
func NewEmpty() EmptyLabel { return EmptyLabel{} }

// InitializationLabel is the virtual root of every execution. It supplies
// default values for first reads and starts the main thread.
type InitializationLabel struct{ baseLabel }

// NewInitialization returns the virtual root label.
func NewInitialization() InitializationLabel { return InitializationLabel{} }

// ThreadForkLabel records the set of thread ids a Thread.start action
// spawns.
type ThreadForkLabel struct {
	baseLabel
	ForkThreadIDs []ThreadID
}

func NewThreadFork(forked ...ThreadID) ThreadForkLabel {
	return ThreadForkLabel{baseLabel: baseLabel{kind: Send}, ForkThreadIDs: append([]ThreadID(nil), forked...)}
}

// ThreadStartLabel is the Request/Response pair a new thread emits to
// begin executing, synchronized from the fork (or, for the main thread,
// from Initialization).
type ThreadStartLabel struct {
	baseLabel
	Phase        Kind // Request or Response
	ThreadID     ThreadID
	IsMainThread bool
}

func NewThreadStartRequest(tid ThreadID, isMain bool) ThreadStartLabel {
	return ThreadStartLabel{baseLabel: baseLabel{kind: Request}, Phase: Request, ThreadID: tid, IsMainThread: isMain}
}

func NewThreadStartResponse(tid ThreadID, isMain bool) ThreadStartLabel {
	return ThreadStartLabel{baseLabel: baseLabel{kind: Response}, Phase: Response, ThreadID: tid, IsMainThread: isMain}
}

// ThreadStartTotalLabel is the aggregated, atomic view of a thread-start
// Request immediately followed by its Response on the same thread.
type ThreadStartTotalLabel struct {
	baseLabel
	ThreadID     ThreadID
	IsMainThread bool
}

// ThreadFinishLabel marks the barrier participants that have exited. It is
// blocking: the emitting thread is done, but the label only "completes"
// the barrier once all finishers relevant to a join are aggregated in.
type ThreadFinishLabel struct {
	baseLabel
	FinishedThreadIDs []ThreadID
}

func NewThreadFinish(finished ...ThreadID) ThreadFinishLabel {
	return ThreadFinishLabel{
		baseLabel:         baseLabel{kind: Send, syncType: Barrier, blocking: true},
		FinishedThreadIDs: append([]ThreadID(nil), finished...),
	}
}

// ThreadJoinLabel is the Request/Response pair recording a thread waiting
// on a set of other threads to finish. A Response's Unblocked is true iff
// JoinThreadIDs is empty: every awaited thread has already finished.
type ThreadJoinLabel struct {
	baseLabel
	Phase         Kind
	JoinThreadIDs []ThreadID
}

func NewThreadJoinRequest(join ...ThreadID) ThreadJoinLabel {
	return ThreadJoinLabel{
		baseLabel:     baseLabel{kind: Request, syncType: Barrier, blocking: true},
		Phase:         Request,
		JoinThreadIDs: append([]ThreadID(nil), join...),
	}
}

func NewThreadJoinResponse(remaining ...ThreadID) ThreadJoinLabel {
	return ThreadJoinLabel{
		baseLabel:     baseLabel{kind: Response, syncType: Barrier, blocking: true},
		Phase:         Response,
		JoinThreadIDs: append([]ThreadID(nil), remaining...),
	}
}

func (l ThreadJoinLabel) Unblocked() bool {
	return l.Phase == Response && len(l.JoinThreadIDs) == 0
}

// ThreadJoinTotalLabel is the aggregated, atomic view of a join Request
// immediately followed by a fully-satisfied (empty remaining set)
// Response.
type ThreadJoinTotalLabel struct{ baseLabel }

// ReadAccessLabel is the Request/Response pair for a plain (non-exclusive
// or exclusive) memory read. A Request carries BottomValue(); a Response
// carries the value and KClass copied from the synchronizing write (or
// Initialization's default).
type ReadAccessLabel struct {
	baseLabel
	Phase     Kind
	Location  MemoryLocation
	Value     Value
	KClass    KClass
	Exclusive bool
}

func NewReadAccessRequest(loc MemoryLocation, kclass KClass, exclusive bool) ReadAccessLabel {
	return ReadAccessLabel{baseLabel: baseLabel{kind: Request}, Phase: Request, Location: loc, Value: BottomValue(), KClass: kclass, Exclusive: exclusive}
}

func NewReadAccessResponse(loc MemoryLocation, value Value, kclass KClass, exclusive bool) ReadAccessLabel {
	return ReadAccessLabel{baseLabel: baseLabel{kind: Response}, Phase: Response, Location: loc, Value: value, KClass: kclass, Exclusive: exclusive}
}

// ReadAccessTotalLabel is the aggregated, atomic view of a read
// Request+Response pair.
type ReadAccessTotalLabel struct {
	baseLabel
	Location  MemoryLocation
	Value     Value
	KClass    KClass
	Exclusive bool
}

// WriteAccessLabel is a Send label recording a memory write (or the write
// half of a CAS, when Exclusive).
type WriteAccessLabel struct {
	baseLabel
	Location  MemoryLocation
	Value     Value
	KClass    KClass
	Exclusive bool
}

func NewWriteAccess(loc MemoryLocation, value Value, kclass KClass, exclusive bool) WriteAccessLabel {
	return WriteAccessLabel{baseLabel: baseLabel{kind: Send}, Location: loc, Value: value, KClass: kclass, Exclusive: exclusive}
}

// ReadModifyWriteLabel is the aggregated, atomic view of an exclusive
// total-read immediately followed by an exclusive write to the same
// location by the same thread — the CAS primitive.
type ReadModifyWriteLabel struct {
	baseLabel
	Location MemoryLocation
	OldValue Value
	NewValue Value
	KClass   KClass
}

// LockLabel is the Request/Response pair for monitorenter. IsAcquiring is
// true when ReentranceDepth - ReentranceCount == 0, i.e. this call must
// actually acquire rather than just bump the reentrance counter. A
// non-reentrant lock call — the common case — uses depth=0, count=0.
type LockLabel struct {
	baseLabel
	Phase           Kind
	Mutex           MutexID
	ReentranceDepth int
	ReentranceCount int
}

func (l LockLabel) IsAcquiring() bool { return l.ReentranceDepth-l.ReentranceCount == 0 }

func NewLockRequest(mutex MutexID, depth, count int) LockLabel {
	return LockLabel{baseLabel: baseLabel{kind: Request, blocking: true}, Phase: Request, Mutex: mutex, ReentranceDepth: depth, ReentranceCount: count}
}

func NewLockResponse(mutex MutexID, depth, count int) LockLabel {
	return LockLabel{baseLabel: baseLabel{kind: Response, blocking: true}, Phase: Response, Mutex: mutex, ReentranceDepth: depth, ReentranceCount: count}
}

// UnlockLabel is the Send label for monitorexit. IsReleasing mirrors
// LockLabel.IsAcquiring: true only when the reentrance counter bottoms
// out. A non-reentrant unlock call — the common case — uses depth=0,
// count=0.
type UnlockLabel struct {
	baseLabel
	Mutex MutexID
	Depth int
	Count int
}

func (l UnlockLabel) IsReleasing() bool { return l.Depth-l.Count == 0 }

func NewUnlock(mutex MutexID, depth, count int) UnlockLabel {
	return UnlockLabel{baseLabel: baseLabel{kind: Send}, Mutex: mutex, Depth: depth, Count: count}
}

// WaitLabel is the Request/Response pair for Object.wait.
type WaitLabel struct {
	baseLabel
	Phase Kind
	Mutex MutexID
}

func NewWaitRequest(mutex MutexID) WaitLabel {
	return WaitLabel{baseLabel: baseLabel{kind: Request, blocking: true}, Phase: Request, Mutex: mutex}
}

func NewWaitResponse(mutex MutexID) WaitLabel {
	return WaitLabel{baseLabel: baseLabel{kind: Response, blocking: true}, Phase: Response, Mutex: mutex}
}

// NotifyLabel is the Send label for Object.notify/notifyAll.
type NotifyLabel struct {
	baseLabel
	Mutex       MutexID
	IsBroadcast bool
}

func NewNotify(mutex MutexID, broadcast bool) NotifyLabel {
	return NotifyLabel{baseLabel: baseLabel{kind: Send}, Mutex: mutex, IsBroadcast: broadcast}
}
