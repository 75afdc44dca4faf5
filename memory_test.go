package lincheck

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTracker_ReadDefaultsBeforeWrite(t *testing.T) {
	m := NewMemoryTracker()
	assert.True(t, m.ReadValue(1, 1, KClassInt).Equal(IntValue(0)))
}

func TestMemoryTracker_WriteThenRead(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(7), KClassInt)
	assert.True(t, m.ReadValue(1, 1, KClassInt).Equal(IntValue(7)))
}

func TestMemoryTracker_CompareAndSet(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(0), KClassInt)
	assert.True(t, m.CompareAndSet(1, 1, IntValue(0), IntValue(1), KClassInt))
	assert.True(t, m.ReadValue(1, 1, KClassInt).Equal(IntValue(1)))
	assert.False(t, m.CompareAndSet(1, 1, IntValue(0), IntValue(2), KClassInt))
}

func TestMemoryTracker_CopyIsIsolated(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(1), KClassInt)
	clone := m.Copy()
	clone.WriteValue(1, 1, IntValue(2), KClassInt)
	assert.True(t, m.ReadValue(1, 1, KClassInt).Equal(IntValue(1)))
	assert.True(t, clone.ReadValue(1, 1, KClassInt).Equal(IntValue(2)))
}

func TestMemoryTracker_Replay_ReadMatchesIsNoOp(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(5), KClassInt)
	label := ReadAccessTotalLabel{baseLabel: baseLabel{kind: Response}, Location: 1, Value: IntValue(5), KClass: KClassInt}
	got, ok := m.Replay(1, label)
	require.True(t, ok)
	assert.Same(t, m, got, "a matching read must not clone memory")
}

func TestMemoryTracker_Replay_ReadMismatchFails(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(5), KClassInt)
	label := ReadAccessTotalLabel{baseLabel: baseLabel{kind: Response}, Location: 1, Value: IntValue(6), KClass: KClassInt}
	_, ok := m.Replay(1, label)
	assert.False(t, ok)
}

func TestMemoryTracker_Replay_WriteClones(t *testing.T) {
	m := NewMemoryTracker()
	write := NewWriteAccess(1, IntValue(9), KClassInt, false)
	got, ok := m.Replay(1, write)
	require.True(t, ok)
	assert.NotSame(t, m, got)
	assert.True(t, m.ReadValue(1, 1, KClassInt).Equal(IntValue(0)), "original must remain unmutated")
	assert.True(t, got.ReadValue(1, 1, KClassInt).Equal(IntValue(9)))
}

func TestMemoryTracker_Replay_RMWFailureReturnsFalse(t *testing.T) {
	m := NewMemoryTracker()
	m.WriteValue(1, 1, IntValue(1), KClassInt)
	rmw := ReadModifyWriteLabel{baseLabel: baseLabel{kind: Response}, Location: 1, OldValue: IntValue(0), NewValue: IntValue(2), KClass: KClassInt}
	_, ok := m.Replay(1, rmw)
	assert.False(t, ok)
}

func TestMemoryTracker_Hash_OrderIndependent(t *testing.T) {
	a := NewMemoryTracker()
	a.WriteValue(1, 1, IntValue(1), KClassInt)
	a.WriteValue(1, 2, IntValue(2), KClassInt)

	b := NewMemoryTracker()
	b.WriteValue(1, 2, IntValue(2), KClassInt)
	b.WriteValue(1, 1, IntValue(1), KClassInt)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestMemoryTracker_Snapshot_StructurallyEqualRegardlessOfWriteOrder(t *testing.T) {
	a := NewMemoryTracker()
	a.WriteValue(1, 1, IntValue(1), KClassInt)
	a.WriteValue(1, 2, IntValue(2), KClassInt)

	b := NewMemoryTracker()
	b.WriteValue(1, 2, IntValue(2), KClassInt)
	b.WriteValue(1, 1, IntValue(1), KClassInt)

	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Fatalf("snapshots differ despite equal contents (-a +b):\n%s", diff)
	}
}

func TestMemoryTracker_Snapshot_DiffersAfterDivergentWrite(t *testing.T) {
	a := NewMemoryTracker()
	a.WriteValue(1, 1, IntValue(1), KClassInt)

	b := NewMemoryTracker()
	b.WriteValue(1, 1, IntValue(2), KClassInt)

	diff := cmp.Diff(a.Snapshot(), b.Snapshot())
	assert.NotEmpty(t, diff, "snapshots of divergent trackers must report a structural difference")
}

func TestMemoryTracker_Hash_DiffersOnValue(t *testing.T) {
	a := NewMemoryTracker()
	a.WriteValue(1, 1, IntValue(1), KClassInt)
	b := NewMemoryTracker()
	b.WriteValue(1, 1, IntValue(2), KClassInt)
	assert.NotEqual(t, a.Hash(), b.Hash())
}
