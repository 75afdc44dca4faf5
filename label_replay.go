package lincheck

// RelaxationPolicy threads a small set of relaxed-comparison switches
// through SynchronizedFrom and Replay, in place of the source's single
// "relaxedCheck bool". Partial replay — used when object identities (here,
// MemoryLocation/MutexID arena indices) differ across runs of the same
// canonical scenario — needs independent control over which identity
// classes may be treated as "the same slot, different run".
type RelaxationPolicy struct {
	RelaxLocation bool
	RelaxMutex    bool
}

// Strict is the default, exact-equality policy.
func Strict() RelaxationPolicy { return RelaxationPolicy{} }

// Relaxed relaxes both location and mutex identity comparisons.
func Relaxed() RelaxationPolicy { return RelaxationPolicy{RelaxLocation: true, RelaxMutex: true} }

// EqualUpToReplay reports whether a and b have the same "shape": same
// concrete label kind, same phase/kClass/exclusivity, and (unless relaxed
// by pol) the same location/mutex identity. Replay succeeds iff the two
// labels are EqualUpToReplay.
func EqualUpToReplay(a, b Label, pol RelaxationPolicy) bool {
	switch x := a.(type) {
	case ReadAccessLabel:
		y, ok := b.(ReadAccessLabel)
		return ok && x.Phase == y.Phase && x.KClass == y.KClass && x.Exclusive == y.Exclusive &&
			(pol.RelaxLocation || x.Location == y.Location)
	case WriteAccessLabel:
		y, ok := b.(WriteAccessLabel)
		return ok && x.KClass == y.KClass && x.Exclusive == y.Exclusive &&
			(pol.RelaxLocation || x.Location == y.Location)
	case LockLabel:
		y, ok := b.(LockLabel)
		return ok && x.Phase == y.Phase && (pol.RelaxMutex || x.Mutex == y.Mutex)
	case UnlockLabel:
		y, ok := b.(UnlockLabel)
		return ok && (pol.RelaxMutex || x.Mutex == y.Mutex)
	case WaitLabel:
		y, ok := b.(WaitLabel)
		return ok && x.Phase == y.Phase && (pol.RelaxMutex || x.Mutex == y.Mutex)
	case NotifyLabel:
		y, ok := b.(NotifyLabel)
		return ok && (pol.RelaxMutex || x.Mutex == y.Mutex)
	default:
		return false
	}
}

// Replay rewrites the mutable identity/value fields of this (memory
// location, value, mutex identity) from other, when EqualUpToReplay holds
// for their shapes. It returns (nil, false) — never an error — when the
// shapes differ; calling Replay with genuinely incompatible labels is a
// programmer error the caller must assert against eagerly (see
// [MustReplay]).
func Replay(this, other Label, pol RelaxationPolicy) (Label, bool) {
	if !EqualUpToReplay(this, other, pol) {
		return nil, false
	}
	switch x := this.(type) {
	case ReadAccessLabel:
		o := other.(ReadAccessLabel)
		x.Location = o.Location
		if x.Phase == Response {
			x.Value = o.Value
		}
		return x, true
	case WriteAccessLabel:
		o := other.(WriteAccessLabel)
		x.Location = o.Location
		x.Value = o.Value
		return x, true
	case LockLabel:
		o := other.(LockLabel)
		x.Mutex = o.Mutex
		return x, true
	case UnlockLabel:
		o := other.(UnlockLabel)
		x.Mutex = o.Mutex
		return x, true
	case WaitLabel:
		o := other.(WaitLabel)
		x.Mutex = o.Mutex
		return x, true
	case NotifyLabel:
		o := other.(NotifyLabel)
		x.Mutex = o.Mutex
		return x, true
	default:
		return nil, false
	}
}

// ShapeMismatch is the programmer-error panic value raised by MustReplay
// when Replay is called on labels whose shapes are incompatible. It is
// never returned to callers as an error: an incompatible replay call is an
// internal bug in the caller, asserted eagerly rather than propagated.
type ShapeMismatch struct {
	This, Other Label
}

func (e *ShapeMismatch) Error() string {
	return "lincheck: replay called with incompatible label shapes"
}

// MustReplay panics with a *ShapeMismatch if Replay fails, otherwise
// returns the rewritten label.
func MustReplay(this, other Label, pol RelaxationPolicy) Label {
	l, ok := Replay(this, other, pol)
	if !ok {
		panic(&ShapeMismatch{This: this, Other: other})
	}
	return l
}

// SynchronizedFrom is the symmetric predicate validating that this is a
// legal result of synchronizing with other: if Synchronize(other, x) ==
// this for some x, then SynchronizedFrom(this, other, pol) holds. It is
// used by the checker to validate a candidate (response, source) pair
// recorded by [ExecutionBuilder.AppendResponse] during replay, independent
// of re-deriving the synchronization from scratch.
func SynchronizedFrom(this, other Label, pol RelaxationPolicy) bool {
	switch o := other.(type) {
	case ThreadForkLabel:
		y, ok := this.(ThreadStartLabel)
		return ok && y.Phase == Response && containsThread(o.ForkThreadIDs, y.ThreadID)
	case InitializationLabel:
		switch y := this.(type) {
		case ThreadStartLabel:
			return y.Phase == Response && y.IsMainThread
		case ReadAccessLabel:
			return y.Phase == Response && y.Value.Equal(y.KClass.DefaultValue())
		case LockLabel:
			return y.Phase == Response
		}
	case ThreadFinishLabel:
		switch y := this.(type) {
		case ThreadFinishLabel:
			return overlaps(o.FinishedThreadIDs, y.FinishedThreadIDs) || isSubset(o.FinishedThreadIDs, y.FinishedThreadIDs)
		case ThreadJoinLabel:
			// The finish's threads must have left the response's remaining
			// set; Synchronize produces J \ F, so any overlap means this
			// response cannot have come from that finish. The full F ⊆ J
			// check needs the original request's join set, which the
			// checker validates separately (it has the request event).
			return y.Phase == Response && !overlaps(o.FinishedThreadIDs, y.JoinThreadIDs)
		}
	case WriteAccessLabel:
		y, ok := this.(ReadAccessLabel)
		return ok && y.Phase == Response && (pol.RelaxLocation || y.Location == o.Location) && y.Value.Equal(o.Value)
	case UnlockLabel:
		y, ok := this.(LockLabel)
		return ok && y.Phase == Response && o.IsReleasing() && y.IsAcquiring() && (pol.RelaxMutex || y.Mutex == o.Mutex)
	case NotifyLabel:
		y, ok := this.(WaitLabel)
		return ok && y.Phase == Response && (pol.RelaxMutex || y.Mutex == o.Mutex)
	}
	return false
}
