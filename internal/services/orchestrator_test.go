package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-console/internal/models"
)

func TestOrchestratorAppliesOnSuccess(t *testing.T) {
	var (
		mu    sync.Mutex
		state = LoadState{Error: "stale"}
		got   []string
	)
	o := NewOrchestrator(context.Background(), &mu, &state, "failed")

	var a, b string
	err := o.Run(context.Background(),
		func() { got = []string{a, b} },
		func(context.Context) error { a = "a"; return nil },
		func(context.Context) error { b = "b"; return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, LoadState{Loaded: true}, state)
}

func TestOrchestratorAllOrNothing(t *testing.T) {
	var (
		mu      sync.Mutex
		state   LoadState
		applied bool
	)
	o := NewOrchestrator(context.Background(), &mu, &state, "failed")

	err := o.Run(context.Background(),
		func() { applied = true },
		func(context.Context) error { return nil },
		func(context.Context) error { return errNetwork },
	)
	assert.ErrorIs(t, err, errNetwork)
	assert.False(t, applied)
	assert.Equal(t, "failed", state.Error)
	assert.False(t, state.Loading)
}

func TestOrchestratorFetchesConcurrently(t *testing.T) {
	var (
		mu    sync.Mutex
		state LoadState
	)
	o := NewOrchestrator(context.Background(), &mu, &state, "failed")

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	fetch := func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), func() {}, fetch, fetch) }()

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("fetches were not issued concurrently")
		}
	}
	mu.Lock()
	assert.True(t, state.Loading)
	mu.Unlock()

	close(release)
	require.NoError(t, <-done)
	assert.False(t, state.Loading)
}

func TestOrchestratorIgnoresCallerCancellation(t *testing.T) {
	var (
		mu    sync.Mutex
		state LoadState
	)
	o := NewOrchestrator(context.Background(), &mu, &state, "failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	err := o.Run(ctx, func() {}, func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, sawErr)
	assert.True(t, state.Loaded)
}

func TestClosedScreenDropsResults(t *testing.T) {
	repo := newFakeEmployeeRepo(sampleEmployees()...)
	repo.started = make(chan struct{}, 1)
	repo.release = make(chan struct{})
	s := NewEmployeesScreen(repo, &recordingNotifier{})

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()

	<-repo.started
	s.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return after close")
	}

	v := s.View()
	assert.Empty(t, v.Employees)
	assert.Empty(t, v.Error)
	assert.False(t, v.Loaded)
	assert.False(t, v.Loading)
}

func TestResetDropsInflightResults(t *testing.T) {
	repo := newFakeEmployeeRepo(sampleEmployees()...)
	repo.started = make(chan struct{}, 1)
	repo.release = make(chan struct{})
	s := NewEmployeesScreen(repo, &recordingNotifier{})
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()

	<-repo.started
	s.Reset()
	close(repo.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return after reset")
	}

	v := s.View()
	assert.Empty(t, v.Employees)
	assert.False(t, v.Loaded)
	assert.False(t, v.Loading)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	repo := newFakeEmployeeRepo(sampleEmployees()...)
	s := NewEmployeesScreen(repo, &recordingNotifier{})
	defer s.Close()

	require.NoError(t, s.EnsureLoaded(context.Background()))
	require.NoError(t, s.EnsureLoaded(context.Background()))
	assert.Equal(t, 1, repo.listCalls)

	s.Invalidate()
	assert.False(t, s.View().Loaded)
	require.NoError(t, s.EnsureLoaded(context.Background()))
	assert.Equal(t, 2, repo.listCalls)
	assert.True(t, s.View().Loaded)
}

func TestInvalidateDuringFetchLeavesScreenStale(t *testing.T) {
	repo := newFakeEmployeeRepo(sampleEmployees()...)
	repo.started = make(chan struct{}, 1)
	repo.release = make(chan struct{})
	s := NewEmployeesScreen(repo, &recordingNotifier{})
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()

	<-repo.started
	s.Invalidate()
	close(repo.release)
	require.NoError(t, <-done)

	v := s.View()
	assert.Len(t, v.Employees, 2, "results are still applied")
	assert.False(t, v.Loaded, "the next mount re-fetches")
}

func TestAttendancePartialFailureKeepsCollections(t *testing.T) {
	employees := newFakeEmployeeRepo(sampleEmployees()...)
	attendance := newFakeAttendanceRepo(
		models.AttendanceRecord{ID: 1, EmployeeID: 1, Date: mustDate("2024-05-01"), Status: models.StatusPresent},
	)
	s := NewAttendanceScreen(employees, attendance, &recordingNotifier{})

	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, s.View().History, 1)

	employees.Create(context.Background(), models.CreateEmployeeCommand{EmployeeID: "EMP003", FullName: "Cy"})
	attendance.setListErr(errNetwork)

	assert.Error(t, s.Refresh(context.Background()))
	v := s.View()
	assert.Equal(t, msgAttendanceFetchFailed, v.Error)
	assert.False(t, v.Loading)
	assert.Len(t, v.Employees, 2, "employees must not be replaced when attendance fails")
	assert.Len(t, v.History, 1)

	attendance.setListErr(nil)
	require.NoError(t, s.Refresh(context.Background()))
	v = s.View()
	assert.Empty(t, v.Error)
	assert.Len(t, v.Employees, 3)
}
