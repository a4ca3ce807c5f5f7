package service_test

import (
	"context"
	"testing"
	"time"

	"pagedesigner/internal/service"
)

// ─────────────────────────────────────────────────────────────
// runGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("autosave") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("autosave") {
		t.Fatal("expected second TryLock for same task to fail")
	}
	if !g.TryLock("watch:a.json") {
		t.Fatal("expected TryLock for different task to succeed")
	}
	g.Unlock("autosave")
	g.Unlock("watch:a.json")

	if !g.TryLock("autosave") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("autosave")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("autosave") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("autosave")
	}()

	select {
	case <-done:
		// success
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != "test:event" {
		t.Errorf("expected 'test:event', got %q", m.Events[0].Event)
	}
}

func TestMockEmitter_LastEvent(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", "second")

	if m.Events[len(m.Events)-1].Event != "b" {
		t.Errorf("expected last event 'b', got %q", m.Events[len(m.Events)-1].Event)
	}
}

func TestRunningGuard_Running(t *testing.T) {
	var g service.ExportedRunningGuard
	if g.Running("autosave") {
		t.Fatal("nothing should be running yet")
	}
	g.TryLock("autosave")
	if !g.Running("autosave") {
		t.Error("expected autosave to be running")
	}
	g.Unlock("autosave")
	if g.Running("autosave") {
		t.Error("expected autosave to be finished")
	}
}

func TestMockEmitter_Count(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()
	m.Emit(ctx, service.EventLayoutChanged, nil)
	m.Emit(ctx, service.EventLayoutSaved, nil)
	m.Emit(ctx, service.EventLayoutChanged, nil)

	if got := m.Count(service.EventLayoutChanged); got != 2 {
		t.Errorf("expected 2 change events, got %d", got)
	}
}
