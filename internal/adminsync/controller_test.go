package adminsync

import (
	"context"
	"runtime"
	"sync"
	"testing"

	evbus "github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu        sync.Mutex
	rows      []string
	listErr   error
	createErr error
	updateErr error
	deleteErr error

	deleteGate chan struct{}
	deleted    []int64
}

func (f *fakeClient) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.rows...), nil
}

func (f *fakeClient) Create(ctx context.Context, item string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, item)
	return nil
}

func (f *fakeClient) Update(ctx context.Context, id int64, item string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateErr
}

func (f *fakeClient) Delete(ctx context.Context, id int64) error {
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type toastRecorder struct {
	mu       sync.Mutex
	success  []Toast
	failures []Toast
}

func newRecordedNotifier(t *testing.T) (*Notifier, *toastRecorder) {
	t.Helper()
	rec := &toastRecorder{}
	bus := evbus.New()
	require.NoError(t, bus.Subscribe(TopicToastSuccess, func(ts Toast) {
		rec.mu.Lock()
		rec.success = append(rec.success, ts)
		rec.mu.Unlock()
	}))
	require.NoError(t, bus.Subscribe(TopicToastFailure, func(ts Toast) {
		rec.mu.Lock()
		rec.failures = append(rec.failures, ts)
		rec.mu.Unlock()
	}))
	return NewNotifier(bus), rec
}

func TestRefreshLoadsRows(t *testing.T) {
	client := &fakeClient{rows: []string{"apple", "banana"}}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	assert.Equal(t, PhaseIdle, ctl.Phase())
	require.NoError(t, ctl.Refresh(context.Background()))
	assert.Equal(t, PhaseLoaded, ctl.Phase())
	assert.Equal(t, []string{"apple", "banana"}, ctl.Rows())
}

func TestRefreshFailureSurfacesAndKeepsPhase(t *testing.T) {
	client := &fakeClient{listErr: &TransportFault{Status: 502}}
	notifier, rec := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	require.Error(t, ctl.Refresh(context.Background()))
	assert.Equal(t, PhaseLoadFailed, ctl.Phase())
	assert.Error(t, ctl.LoadError())
	assert.Len(t, rec.failures, 1)
}

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	client := &fakeClient{}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	tokenA := ctl.StartFetch()
	tokenB := ctl.StartFetch()

	// B's response arrives first and wins.
	assert.True(t, ctl.CompleteFetch(tokenB, []string{"fresh"}, nil))
	assert.Equal(t, []string{"fresh"}, ctl.Rows())

	// A resolves late and must not overwrite the newer view.
	assert.False(t, ctl.CompleteFetch(tokenA, []string{"stale"}, nil))
	assert.Equal(t, []string{"fresh"}, ctl.Rows())
	assert.Equal(t, PhaseLoaded, ctl.Phase())
}

func TestStaleFetchFailureIsDiscarded(t *testing.T) {
	client := &fakeClient{}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	tokenA := ctl.StartFetch()
	tokenB := ctl.StartFetch()

	assert.True(t, ctl.CompleteFetch(tokenB, []string{"fresh"}, nil))
	assert.False(t, ctl.CompleteFetch(tokenA, nil, &TransportFault{Status: 500}))
	assert.Equal(t, PhaseLoaded, ctl.Phase())
	assert.NoError(t, ctl.LoadError())
}

func TestModalMutualExclusion(t *testing.T) {
	client := &fakeClient{}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	require.NoError(t, ctl.OpenCreate())
	assert.ErrorIs(t, ctl.OpenEdit("row"), ErrModalOpen)
	assert.ErrorIs(t, ctl.OpenDelete(7), ErrModalOpen)

	require.NoError(t, ctl.CloseModal())
	assert.Equal(t, ModalNone, ctl.Modal())
	require.NoError(t, ctl.OpenDelete(7))
	assert.Equal(t, ModalConfirmingDelete, ctl.Modal())
}

func TestDeleteRequiresConfirmationDialog(t *testing.T) {
	client := &fakeClient{}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)

	assert.ErrorIs(t, ctl.ConfirmDelete(context.Background()), ErrWrongModal)
	assert.Empty(t, client.deleted)
}

func TestFailedCreateKeepsModalAndRows(t *testing.T) {
	client := &fakeClient{rows: []string{"apple"}}
	notifier, rec := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)
	require.NoError(t, ctl.Refresh(context.Background()))

	client.createErr = &RemoteError{Message: "name is required"}
	require.NoError(t, ctl.OpenCreate())

	err := ctl.SubmitCreate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, ModalCreating, ctl.Modal())
	assert.Equal(t, []string{"apple"}, ctl.Rows())
	require.Len(t, rec.failures, 1)
	assert.Equal(t, "name is required", rec.failures[0].Message)
}

func TestSuccessfulCreateRefetches(t *testing.T) {
	client := &fakeClient{rows: []string{"apple"}}
	notifier, rec := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)
	require.NoError(t, ctl.Refresh(context.Background()))

	require.NoError(t, ctl.OpenCreate())
	require.NoError(t, ctl.SubmitCreate(context.Background(), "banana"))

	assert.Equal(t, ModalNone, ctl.Modal())
	assert.Equal(t, []string{"apple", "banana"}, ctl.Rows())
	assert.Len(t, rec.success, 1)
}

func TestSuccessfulDeleteRefetches(t *testing.T) {
	client := &fakeClient{rows: []string{"apple"}}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)
	require.NoError(t, ctl.Refresh(context.Background()))

	require.NoError(t, ctl.OpenDelete(41))
	require.NoError(t, ctl.ConfirmDelete(context.Background()))

	assert.Equal(t, []int64{41}, client.deleted)
	assert.Equal(t, ModalNone, ctl.Modal())
	assert.Equal(t, PhaseLoaded, ctl.Phase())
}

func TestDeleteControlDisabledWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{deleteGate: gate}
	notifier, _ := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)
	require.NoError(t, ctl.Refresh(context.Background()))
	require.NoError(t, ctl.OpenDelete(9))

	done := make(chan error, 1)
	go func() {
		done <- ctl.ConfirmDelete(context.Background())
	}()

	// Wait for the request to be in flight.
	for !ctl.DeleteBusy() {
		runtime.Gosched()
	}
	assert.ErrorIs(t, ctl.ConfirmDelete(context.Background()), ErrDeleteInFlight)
	assert.ErrorIs(t, ctl.CloseModal(), ErrDeleteInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, ctl.DeleteBusy())
}

func TestFailedUpdateLeavesListUntouched(t *testing.T) {
	client := &fakeClient{rows: []string{"apple"}}
	notifier, rec := newRecordedNotifier(t)
	ctl := NewController[string](client, notifier)
	require.NoError(t, ctl.Refresh(context.Background()))

	client.updateErr = &RemoteError{Message: "price must not be negative"}
	require.NoError(t, ctl.OpenEdit("apple"))
	require.Error(t, ctl.SubmitEdit(context.Background(), 3, "apple"))

	assert.Equal(t, ModalEditing, ctl.Modal())
	assert.Equal(t, []string{"apple"}, ctl.Rows())
	assert.Len(t, rec.failures, 1)
}

func TestFailureMessageClassification(t *testing.T) {
	assert.Equal(t, "no stock left", FailureMessage(&RemoteError{Message: "no stock left"}))
	assert.Equal(t, "request failed, please retry", FailureMessage(&TransportFault{Status: 503}))
	assert.True(t, IsRecoverable(&RemoteError{Message: "x"}))
	assert.False(t, IsRecoverable(&TransportFault{Status: 500}))
}
