package lincheck

// Covering answers "what must already be replayed before this event may be
// replayed?" for a given event reference. Distinct coverings encode
// different consistency models; [Checker] is parameterized by one.
//
// Covering must be total (defined for every event in a well-formed
// execution) and acyclic.
type Covering interface {
	Cover(ex *Execution, ref EventRef) []EventRef
}

// ProgramOrder is the covering whose only dependency is same-thread
// precedence: cov(e) = {e' same thread, e'.position < e.position}.
type ProgramOrder struct{}

func (ProgramOrder) Cover(ex *Execution, ref EventRef) []EventRef {
	if ref.ThreadPosition <= 0 {
		return nil
	}
	out := make([]EventRef, 0, ref.ThreadPosition)
	for p := 0; p < ref.ThreadPosition; p++ {
		out = append(out, EventRef{ThreadID: ref.ThreadID, ThreadPosition: p})
	}
	return out
}

// ExternalCausality is program order plus the cross-thread edges already
// recorded by synchronization: fork→start, unlock→lock, write→read,
// notify→wait, finish→join. A response event's covering includes its
// explicit Source event, recorded by [ExecutionBuilder.AppendResponse].
// This is the covering the sequential-consistency [Checker] uses.
type ExternalCausality struct{}

func (ExternalCausality) Cover(ex *Execution, ref EventRef) []EventRef {
	out := ProgramOrder{}.Cover(ex, ref)
	ev, ok := ex.Get(ref.ThreadID, ref.ThreadPosition)
	if ok && ev.HasSource() {
		out = append(out, ev.Source)
	}
	return out
}

// coverable reports whether every dependency cov names has already been
// replayed, i.e. for each ref either it names the virtual Initialization
// event (always available) or its position is strictly less than the
// current replay counter for its thread.
func coverable(cov Covering, ex *Execution, ref EventRef, counters map[ThreadID]int) bool {
	for _, dep := range cov.Cover(ex, ref) {
		if dep == InitializationRef {
			continue
		}
		if dep.ThreadPosition >= counters[dep.ThreadID] {
			return false
		}
	}
	return true
}
