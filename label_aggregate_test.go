package lincheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ReadRequestResponse(t *testing.T) {
	req := NewReadAccessRequest(1, KClassInt, false)
	rsp := NewReadAccessResponse(1, IntValue(9), KClassInt, false)
	got, ok := Aggregate(req, rsp)
	require.True(t, ok)
	total, ok := got.(ReadAccessTotalLabel)
	require.True(t, ok)
	assert.Equal(t, MemoryLocation(1), total.Location)
	assert.True(t, total.Value.Equal(IntValue(9)))
}

func TestAggregate_ReadRequestResponse_LocationMismatchDoesNotAggregate(t *testing.T) {
	req := NewReadAccessRequest(1, KClassInt, false)
	rsp := NewReadAccessResponse(2, IntValue(9), KClassInt, false)
	_, ok := Aggregate(req, rsp)
	assert.False(t, ok)
}

func TestAggregate_ExclusiveReadThenWriteIsRMW(t *testing.T) {
	readTotal := ReadAccessTotalLabel{
		baseLabel: baseLabel{kind: Response},
		Location:  1,
		Value:     IntValue(3),
		KClass:    KClassInt,
		Exclusive: true,
	}
	write := NewWriteAccess(1, IntValue(4), KClassInt, true)
	got, ok := Aggregate(readTotal, write)
	require.True(t, ok)
	rmw, ok := got.(ReadModifyWriteLabel)
	require.True(t, ok)
	assert.True(t, rmw.OldValue.Equal(IntValue(3)))
	assert.True(t, rmw.NewValue.Equal(IntValue(4)))
}

func TestAggregate_NonExclusiveReadDoesNotFuseWithWrite(t *testing.T) {
	readTotal := ReadAccessTotalLabel{
		baseLabel: baseLabel{kind: Response},
		Location:  1,
		Value:     IntValue(3),
		KClass:    KClassInt,
		Exclusive: false,
	}
	write := NewWriteAccess(1, IntValue(4), KClassInt, true)
	_, ok := Aggregate(readTotal, write)
	assert.False(t, ok)
}

func TestAggregate_ThreadStartTotal(t *testing.T) {
	req := NewThreadStartRequest(1, false)
	rsp := NewThreadStartResponse(1, false)
	got, ok := Aggregate(req, rsp)
	require.True(t, ok)
	assert.Equal(t, ThreadStartTotalLabel{baseLabel: baseLabel{kind: Response}, ThreadID: 1}, got)
}

func TestAggregate_ThreadJoinTotal_OnlyWhenFullySatisfied(t *testing.T) {
	req := NewThreadJoinRequest(1)
	satisfied := NewThreadJoinResponse()
	_, ok := Aggregate(req, satisfied)
	assert.True(t, ok)

	unsatisfied := NewThreadJoinResponse(1)
	_, ok = Aggregate(req, unsatisfied)
	assert.False(t, ok)
}

func TestAggregate_UnrelatedLabelsDoNotAggregate(t *testing.T) {
	_, ok := Aggregate(NewEmpty(), NewEmpty())
	assert.False(t, ok)
}
