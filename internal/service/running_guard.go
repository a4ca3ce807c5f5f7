package service

import (
	"context"
	"sync"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard: one run at a time per background task
// ─────────────────────────────────────────────────────────────

// runGuard keeps background tasks such as autosave and watched-file
// imports from overlapping with themselves, and lets shutdown wait for
// the ones in flight.
type runGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks task as running. It returns false if it already is.
func (g *runGuard) TryLock(task string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[task]; ok {
		return false
	}
	g.running[task] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends a run started by a successful TryLock.
func (g *runGuard) Unlock(task string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, task)
	g.wg.Done()
}

// Running reports whether task is in flight.
func (g *runGuard) Running(task string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[task]
	return ok
}

// WaitAll blocks until every running task finishes or ctx is done.
func (g *runGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
