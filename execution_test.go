package lincheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMainThread appends the two-event ThreadStart request/response pair that
// every real thread must begin with, returning the response event.
func newMainThread(t *testing.T, b *ExecutionBuilder, tid ThreadID) Event {
	t.Helper()
	require.NoError(t, b.BeginThread(tid))
	_, err := b.AppendRequest(tid, NewThreadStartRequest(tid, true))
	require.NoError(t, err)
	ev, err := b.AppendResponse(tid, NewThreadStartResponse(tid, true), InitializationRef)
	require.NoError(t, err)
	return ev
}

func TestExecutionBuilder_RejectsUnknownThread(t *testing.T) {
	b := NewExecutionBuilder()
	_, err := b.AppendSend(1, NewThreadFork(2))
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsDuplicateBeginThread(t *testing.T) {
	b := NewExecutionBuilder()
	require.NoError(t, b.BeginThread(1))
	assert.Error(t, b.BeginThread(1))
}

func TestExecutionBuilder_RejectsInitThreadIDAsBegin(t *testing.T) {
	b := NewExecutionBuilder()
	assert.Error(t, b.BeginThread(InitThreadID))
}

func TestExecutionBuilder_RejectsWrongKindForAppendSend(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendSend(1, NewReadAccessRequest(1, KClassInt, false))
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsResponseWithoutOpenRequest(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendResponse(1, NewReadAccessResponse(1, IntValue(0), KClassInt, false), InitializationRef)
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsSecondOpenRequest(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendRequest(1, NewReadAccessRequest(1, KClassInt, false))
	require.NoError(t, err)
	_, err = b.AppendRequest(1, NewReadAccessRequest(2, KClassInt, false))
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsMismatchedResponse(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendRequest(1, NewReadAccessRequest(1, KClassInt, false))
	require.NoError(t, err)
	_, err = b.AppendResponse(1, NewLockResponse(1, 0, 0), InitializationRef)
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsJoinResponseWithForeignRemainingThreads(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendRequest(1, NewThreadJoinRequest(5))
	require.NoError(t, err)
	// The response claims thread 6 is still awaited though the request
	// never joined it: the remaining set may only shrink.
	_, err = b.AppendResponse(1, NewThreadJoinResponse(5, 6), EventRef{ThreadID: 2, ThreadPosition: 0})
	assert.Error(t, err)
}

func TestExecutionBuilder_RejectsEndThreadWithOpenRequest(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendRequest(1, NewReadAccessRequest(1, KClassInt, false))
	require.NoError(t, err)
	assert.Error(t, b.EndThread(1))
}

func TestExecutionBuilder_Build_RejectsMissingThreadStart(t *testing.T) {
	b := NewExecutionBuilder()
	require.NoError(t, b.BeginThread(1))
	_, err := b.AppendSend(1, NewThreadFork(2))
	require.NoError(t, err)
	_, err = b.Build()
	assert.Error(t, err)
}

func TestExecutionBuilder_Build_RejectsMainThreadNotSourcedFromInitialization(t *testing.T) {
	b := NewExecutionBuilder()
	require.NoError(t, b.BeginThread(1))
	_, err := b.AppendRequest(1, NewThreadStartRequest(1, true))
	require.NoError(t, err)
	_, err = b.AppendResponse(1, NewThreadStartResponse(1, true), EventRef{ThreadID: 9, ThreadPosition: 0})
	require.NoError(t, err)
	_, err = b.Build()
	assert.Error(t, err)
}

func TestExecutionBuilder_Build_Succeeds(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	require.NoError(t, b.EndThread(1))
	ex, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []ThreadID{1}, ex.Threads())
	assert.Equal(t, 2, ex.Size(1))
}

func TestExecution_Get_ReturnsInitializationEvent(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	ex, err := b.Build()
	require.NoError(t, err)
	ev, ok := ex.Get(InitThreadID, 0)
	require.True(t, ok)
	assert.IsType(t, InitializationLabel{}, ev.Label)
}

func TestExecution_GetAggregatedLabel_FusesReadPair(t *testing.T) {
	b := NewExecutionBuilder()
	newMainThread(t, b, 1)
	_, err := b.AppendRequest(1, NewReadAccessRequest(1, KClassInt, false))
	require.NoError(t, err)
	_, err = b.AppendResponse(1, NewReadAccessResponse(1, IntValue(3), KClassInt, false), InitializationRef)
	require.NoError(t, err)
	require.NoError(t, b.EndThread(1))
	ex, err := b.Build()
	require.NoError(t, err)

	label, members, ok := ex.GetAggregatedLabel(1, 2)
	require.True(t, ok)
	assert.Len(t, members, 2)
	total, ok := label.(ReadAccessTotalLabel)
	require.True(t, ok)
	assert.True(t, total.Value.Equal(IntValue(3)))
}
