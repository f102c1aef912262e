package services

import (
	"errors"
	"sync"
)

// ErrSubmitting is returned when a mutation of the same kind is already in flight
var ErrSubmitting = errors.New("a submission is already in progress")

// MutationFlow guards one kind of mutation: Idle -> Submitting -> Idle.
// The zero value is Idle.
type MutationFlow struct {
	mu         sync.Mutex
	submitting bool
}

// TryBegin enters Submitting, or reports false when already there
func (m *MutationFlow) TryBegin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return false
	}
	m.submitting = true
	return true
}

// End returns to Idle
func (m *MutationFlow) End() {
	m.mu.Lock()
	m.submitting = false
	m.mu.Unlock()
}

func (m *MutationFlow) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// Run executes fn while Submitting; the flag is released on every exit path.
func (m *MutationFlow) Run(fn func() error) error {
	if !m.TryBegin() {
		return ErrSubmitting
	}
	defer m.End()
	return fn()
}
