package services

import (
	"errors"
	"sync"
)

// ErrNothingPending is returned by Confirm when the gate is closed
var ErrNothingPending = errors.New("no deletion is awaiting confirmation")

// ConfirmationGate holds an irreversible action until the operator confirms it.
// The zero value is Closed.
type ConfirmationGate struct {
	mu        sync.Mutex
	open      bool
	pendingID int64
}

// Open targets id, replacing any previous target
func (g *ConfirmationGate) Open(id int64) {
	g.mu.Lock()
	g.open = true
	g.pendingID = id
	g.mu.Unlock()
}

// Pending returns the target id while the gate is open
func (g *ConfirmationGate) Pending() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingID, g.open
}

// Cancel closes the gate without side effects
func (g *ConfirmationGate) Cancel() {
	g.mu.Lock()
	g.open = false
	g.pendingID = 0
	g.mu.Unlock()
}

// Confirm runs action with the pending id, then closes the gate whatever the
// outcome. A target opened while action runs stays pending.
func (g *ConfirmationGate) Confirm(action func(id int64) error) error {
	id, ok := g.Pending()
	if !ok {
		return ErrNothingPending
	}
	defer g.closeIf(id)
	return action(id)
}

func (g *ConfirmationGate) closeIf(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open && g.pendingID == id {
		g.open = false
		g.pendingID = 0
	}
}
