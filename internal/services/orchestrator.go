package services

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FetchFunc loads one collection into a caller-owned staging variable
type FetchFunc func(ctx context.Context) error

// LoadState is the loading/error part of a screen's view state
type LoadState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Loaded  bool   `json:"loaded"`
}

// Orchestrator runs a screen's fetches concurrently and applies the results
// all-or-nothing under the screen lock.
type Orchestrator struct {
	mu       sync.Locker
	state    *LoadState
	failure  string
	lifetime context.Context
	inflight int

	// generation moves on every Invalidate; epoch only on Reset
	generation uint64
	epoch      uint64
}

// NewOrchestrator binds an orchestrator to a screen's lock and load state.
// failure is the message set on the screen when any fetch fails.
// Completions arriving after lifetime is done are discarded.
func NewOrchestrator(lifetime context.Context, mu sync.Locker, state *LoadState, failure string) *Orchestrator {
	return &Orchestrator{mu: mu, state: state, failure: failure, lifetime: lifetime}
}

// Run issues every fetch concurrently and waits for all of them. If all
// succeed, apply is called to publish the staged results and the error is
// cleared; otherwise the collections are left untouched and the failure
// message is set. The loading flag covers exactly the duration of the run.
func (o *Orchestrator) Run(ctx context.Context, apply func(), fetches ...FetchFunc) error {
	// Fetches run to completion unless the screen itself goes away.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(o.lifetime, cancel)
	defer stop()

	o.mu.Lock()
	o.inflight++
	o.state.Loading = true
	generation, epoch := o.generation, o.epoch
	o.mu.Unlock()

	var g errgroup.Group
	for _, fetch := range fetches {
		g.Go(func() error { return fetch(runCtx) })
	}
	err := g.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight--
	o.state.Loading = o.inflight > 0

	if o.lifetime.Err() != nil {
		log.Printf("🔍 Screen closed, dropping fetch result")
		return nil
	}
	if o.epoch != epoch {
		log.Printf("🔍 Screen reset, dropping fetch result")
		return nil
	}
	if err != nil {
		o.state.Error = o.failure
		return err
	}
	apply()
	o.state.Error = ""
	// A fetch that raced an invalidation may predate the mutation
	o.state.Loaded = o.generation == generation
	return nil
}

// Invalidate marks the collections stale so the next load re-fetches them
func (o *Orchestrator) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.state.Loaded = false
}

// Reset runs drop under the screen lock and returns the load state to its
// initial value. Fetches still in flight are discarded when they complete.
func (o *Orchestrator) Reset(drop func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.epoch++
	drop()
	*o.state = LoadState{Loading: o.inflight > 0}
}
