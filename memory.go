package lincheck

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

type memCell struct {
	value  Value
	kClass KClass
}

// MemoryTracker models a single, sequentially-consistent global memory: a
// mapping from location to current value. There are no per-thread views
// and no reordering buffers; threadId parameters exist only so the API
// shape accommodates future, weaker relaxations.
type MemoryTracker struct {
	cells map[MemoryLocation]memCell
}

// NewMemoryTracker returns an empty tracker: every location reads as its
// KClass default until first written.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{cells: make(map[MemoryLocation]memCell)}
}

// ReadValue returns the value currently stored at loc, or kClass's
// default if loc was never written.
func (m *MemoryTracker) ReadValue(_ ThreadID, loc MemoryLocation, kClass KClass) Value {
	if cell, ok := m.cells[loc]; ok {
		return cell.value
	}
	return kClass.DefaultValue()
}

// WriteValue stores v at loc in place.
func (m *MemoryTracker) WriteValue(_ ThreadID, loc MemoryLocation, v Value, kClass KClass) {
	m.cells[loc] = memCell{value: v, kClass: kClass}
}

// CompareAndSet atomically installs newVal at loc iff the current value
// equals expected, returning whether it did.
func (m *MemoryTracker) CompareAndSet(tid ThreadID, loc MemoryLocation, expected, newVal Value, kClass KClass) bool {
	if !m.ReadValue(tid, loc, kClass).Equal(expected) {
		return false
	}
	m.WriteValue(tid, loc, newVal, kClass)
	return true
}

// Copy returns a deep clone of m, isolated from further mutation of the
// original: writes on the clone never affect m, and vice versa.
func (m *MemoryTracker) Copy() *MemoryTracker {
	return &MemoryTracker{cells: maps.Clone(m.cells)}
}

// Replay is the checker-facing helper: given a total (aggregated) label,
// it returns a tracker consistent with having executed that label, or
// (nil, false) if the label contradicts the current memory state. Replay
// never mutates m; it returns either m itself (read-only/identity labels)
// or a fresh clone (labels with observable side effects).
func (m *MemoryTracker) Replay(threadID ThreadID, label Label) (*MemoryTracker, bool) {
	switch l := label.(type) {
	case ReadAccessTotalLabel:
		if m.ReadValue(threadID, l.Location, l.KClass).Equal(l.Value) {
			return m, true
		}
		return nil, false
	case WriteAccessLabel:
		clone := m.Copy()
		clone.WriteValue(threadID, l.Location, l.Value, l.KClass)
		return clone, true
	case ReadModifyWriteLabel:
		clone := m.Copy()
		if !clone.CompareAndSet(threadID, l.Location, l.OldValue, l.NewValue, l.KClass) {
			return nil, false
		}
		return clone, true
	default:
		// ThreadEvent and Initialization labels (and any other
		// memory-opaque label) carry no memory side effect.
		return m, true
	}
}

// Snapshot returns a location->value view of m's current contents,
// independent of internal cell bookkeeping (kClass, insertion order). It
// exists for structural comparison in tests, where two trackers built via
// different write orders must compare equal by content alone.
func (m *MemoryTracker) Snapshot() map[MemoryLocation]Value {
	out := make(map[MemoryLocation]Value, len(m.cells))
	for loc, cell := range m.cells {
		out[loc] = cell.value
	}
	return out
}

// Hash returns a stable representation of m's contents, suitable for use
// as a component of the checker's visited-set key: the multiset of
// (location, value) pairs, sorted so that structurally-equal memories
// always hash equal regardless of insertion order.
func (m *MemoryTracker) Hash() string {
	locs := maps.Keys(m.cells)
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	var b strings.Builder
	for _, loc := range locs {
		cell := m.cells[loc]
		fmt.Fprintf(&b, "%d=%v;", loc, cell.value.hashKey())
	}
	return b.String()
}
