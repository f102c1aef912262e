package services

import (
	"context"
	"sync"
)

// screen is the state every console screen shares: a lock, the load state
// and a lifetime that ends when the screen is closed.
type screen struct {
	mu       sync.Mutex
	load     LoadState
	lifetime context.Context
	close    context.CancelFunc
	fetch    *Orchestrator
	notifier Notifier

	dependents []Invalidator
}

// Invalidator is a screen whose cached collections can be marked stale
type Invalidator interface {
	Invalidate()
}

// Resetter is a screen that can drop all of its state
type Resetter interface {
	Reset()
}

func (s *screen) init(failure string, notifier Notifier) {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	s.lifetime, s.close = context.WithCancel(context.Background())
	s.fetch = NewOrchestrator(s.lifetime, &s.mu, &s.load, failure)
	s.notifier = notifier
}

// Close ends the screen's lifetime; in-flight fetches are cancelled and
// their results dropped.
func (s *screen) Close() {
	s.close()
}

// Invalidate marks the screen stale; the next EnsureLoaded re-fetches
func (s *screen) Invalidate() {
	s.fetch.Invalidate()
}

// Invalidates registers screens that show data this screen mutates. They are
// marked stale after every successful mutation. Call before the screen is used.
func (s *screen) Invalidates(dependents ...Invalidator) {
	s.dependents = append(s.dependents, dependents...)
}

func (s *screen) mutated() {
	for _, d := range s.dependents {
		d.Invalidate()
	}
}

// fail notifies message and returns err carrying it
func (s *screen) fail(message string, err error) error {
	s.notifier.Failure(message)
	return &NoticeError{Message: message, Err: err}
}

func (s *screen) needsLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.load.Loaded && !s.load.Loading
}

func (s *screen) loadState() LoadState {
	return s.load
}

// Link wires the console screens together: employee changes make the
// attendance and dashboard screens stale, attendance changes make the
// dashboard stale, and signing out drops every screen's state.
func Link(session *Session, employees *EmployeesScreen, attendance *AttendanceScreen, dashboard *DashboardScreen) {
	employees.Invalidates(attendance, dashboard)
	attendance.Invalidates(dashboard)
	session.ResetOnLogout(employees, attendance, dashboard)
}
