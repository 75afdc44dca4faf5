package lincheck

import (
	"fmt"
	"sort"
)

// BarrierRace is raised when two labels describe structurally impossible
// multi-participant synchronization: the same thread finishing twice, or a
// thread finishing outside any fork's scope. Unlike the silent ⊥ returned
// by every other partial rule, a BarrierRace means the execution itself is
// malformed and must not be treated as merely "does not synchronize".
type BarrierRace struct {
	Reason string
	A, B   Label
}

func (e *BarrierRace) Error() string {
	return fmt.Sprintf("barrier race: %s", e.Reason)
}

// Synchronize implements the label algebra's partial, commutative,
// associative ⊕ operation. It returns (nil, nil) when A and B do not
// synchronize (⊥), a non-nil error when the inputs describe an impossible
// barrier, and otherwise the resulting label.
func Synchronize(a, b Label) (Label, error) {
	if _, ok := a.(EmptyLabel); ok {
		return b, nil
	}
	if _, ok := b.(EmptyLabel); ok {
		return a, nil
	}
	if l, err, matched := synchronizeOrdered(a, b); matched {
		return l, err
	}
	if l, err, matched := synchronizeOrdered(b, a); matched {
		return l, err
	}
	return nil, nil
}

// synchronizeOrdered attempts every rule with a fixed left/right
// assignment. matched distinguishes "rule applies but is impossible"
// (err != nil) from "no rule applies" (returned label+err are both zero,
// matched is false) so Synchronize knows whether to retry the swapped
// order.
func synchronizeOrdered(a, b Label) (result Label, err error, matched bool) {
	switch x := a.(type) {
	case ThreadForkLabel:
		if y, ok := b.(ThreadStartLabel); ok && y.Phase == Request {
			if containsThread(x.ForkThreadIDs, y.ThreadID) {
				return NewThreadStartResponse(y.ThreadID, y.IsMainThread), nil, true
			}
		}
	case InitializationLabel:
		switch y := b.(type) {
		case ThreadStartLabel:
			if y.Phase == Request && y.IsMainThread {
				return NewThreadStartResponse(y.ThreadID, true), nil, true
			}
		case ReadAccessLabel:
			if y.Phase == Request {
				return NewReadAccessResponse(y.Location, y.KClass.DefaultValue(), y.KClass, y.Exclusive), nil, true
			}
		case LockLabel:
			if y.Phase == Request {
				return NewLockResponse(y.Mutex, y.ReentranceDepth, y.ReentranceCount), nil, true
			}
			// WaitRequest deliberately does NOT synchronize with
			// Initialization: the source models spurious wake-up as
			// commented-out, and the stricter (no-spurious-wakeup)
			// behaviour is preserved here per spec's open question.
		}
	case ThreadFinishLabel:
		switch y := b.(type) {
		case ThreadFinishLabel:
			if overlaps(x.FinishedThreadIDs, y.FinishedThreadIDs) {
				return nil, &BarrierRace{Reason: "duplicate ThreadFinish for one or more threads", A: a, B: b}, true
			}
			return NewThreadFinish(union(x.FinishedThreadIDs, y.FinishedThreadIDs)...), nil, true
		case ThreadJoinLabel:
			if y.Phase == Request && isSubset(x.FinishedThreadIDs, y.JoinThreadIDs) {
				return NewThreadJoinResponse(subtract(y.JoinThreadIDs, x.FinishedThreadIDs)...), nil, true
			}
		}
	case WriteAccessLabel:
		if y, ok := b.(ReadAccessLabel); ok && y.Phase == Request && y.Location == x.Location {
			return NewReadAccessResponse(x.Location, x.Value, x.KClass, y.Exclusive), nil, true
		}
	case UnlockLabel:
		if y, ok := b.(LockLabel); ok && y.Phase == Request && x.IsReleasing() && y.IsAcquiring() && x.Mutex == y.Mutex {
			return NewLockResponse(x.Mutex, y.ReentranceDepth, y.ReentranceCount), nil, true
		}
	case NotifyLabel:
		if y, ok := b.(WaitLabel); ok && y.Phase == Request && y.Mutex == x.Mutex {
			return NewWaitResponse(x.Mutex), nil, true
		}
	}
	return nil, nil, false
}

func containsThread(set []ThreadID, id ThreadID) bool {
	for _, t := range set {
		if t == id {
			return true
		}
	}
	return false
}

func overlaps(a, b []ThreadID) bool {
	for _, x := range a {
		if containsThread(b, x) {
			return true
		}
	}
	return false
}

func isSubset(sub, super []ThreadID) bool {
	for _, x := range sub {
		if !containsThread(super, x) {
			return false
		}
	}
	return true
}

func union(a, b []ThreadID) []ThreadID {
	out := append([]ThreadID(nil), a...)
	for _, x := range b {
		if !containsThread(out, x) {
			out = append(out, x)
		}
	}
	// Sorted so that union(a, b) and union(b, a) are equal, keeping the
	// ThreadFinish ⊕ ThreadFinish rule commutative.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameThreadSet(a, b []ThreadID) bool {
	return isSubset(a, b) && isSubset(b, a)
}

func subtract(a, b []ThreadID) []ThreadID {
	var out []ThreadID
	for _, x := range a {
		if !containsThread(b, x) {
			out = append(out, x)
		}
	}
	return out
}
