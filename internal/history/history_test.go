package history

import (
	"reflect"
	"testing"

	"pagedesigner/internal/domain"
)

func docWith(ids ...string) domain.Document {
	d := domain.Document{Page: domain.A4()}
	for i, id := range ids {
		d.Elements = append(d.Elements, domain.Element{ID: id, X: float64(i), W: 10, H: 10, Body: domain.RectBody{}})
	}
	return d
}

func TestNew_SingleEntry(t *testing.T) {
	h := New(0, docWith())
	if h.Len() != 1 || h.Index() != 0 {
		t.Fatalf("expected one entry at index 0, got len=%d index=%d", h.Len(), h.Index())
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("fresh history should not undo or redo")
	}
}

func TestUndoRedo(t *testing.T) {
	d0 := docWith()
	d1 := docWith("a")
	d2 := docWith("a", "b")

	h := New(10, d0)
	h.Push(d1)
	h.Push(d2)

	got, ok := h.Undo()
	if !ok || !reflect.DeepEqual(got, d1) {
		t.Fatalf("first undo: ok=%v got=%+v", ok, got)
	}
	got, ok = h.Undo()
	if !ok || !reflect.DeepEqual(got, d0) {
		t.Fatalf("second undo: ok=%v got=%+v", ok, got)
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo past the oldest entry should be a no-op")
	}
	got, ok = h.Redo()
	if !ok || !reflect.DeepEqual(got, d1) {
		t.Fatalf("redo: ok=%v got=%+v", ok, got)
	}
}

func TestPush_TruncatesRedoTail(t *testing.T) {
	h := New(10, docWith())
	h.Push(docWith("a"))
	h.Push(docWith("a", "b"))
	h.Undo()
	h.Push(docWith("c"))

	if h.CanRedo() {
		t.Error("push after undo should discard the redo tail")
	}
	if h.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", h.Len())
	}
}

func TestPush_DepthBound(t *testing.T) {
	h := New(50, docWith())
	for i := 0; i < 60; i++ {
		h.Push(docWith(string(rune('a' + i%26))))
	}
	if h.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", h.Len())
	}
	undos := 0
	for i := 0; i < 50; i++ {
		if _, ok := h.Undo(); ok {
			undos++
		}
	}
	if undos != 49 {
		t.Errorf("expected 49 successful undos, got %d", undos)
	}
	if h.Index() != 0 {
		t.Errorf("expected to rest at index 0, got %d", h.Index())
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	live := docWith()
	live.Elements = append(live.Elements, domain.Element{ID: "t", W: 10, H: 10, Body: domain.DefaultTable()})
	h := New(10, live)

	live.Elements[0].Body.(domain.TableBody).Data[0][0] = "mutated"
	live.Elements[0].X = 99

	h.Push(docWith())
	got, _ := h.Undo()
	tb := got.Elements[0].Body.(domain.TableBody)
	if tb.Data[0][0] != "" || got.Elements[0].X != 0 {
		t.Fatalf("stored snapshot changed after live mutation: %+v", got.Elements[0])
	}

	// mutating a returned copy must not reach the stored entry either
	tb.Data[0][0] = "again"
	again, _ := h.Redo()
	_ = again
	back, _ := h.Undo()
	if back.Elements[0].Body.(domain.TableBody).Data[0][0] != "" {
		t.Fatal("returned snapshot shares cells with history")
	}
}

func TestReset(t *testing.T) {
	h := New(10, docWith())
	h.Push(docWith("a"))
	h.Push(docWith("a", "b"))
	h.Reset(docWith("z"))
	if h.Len() != 1 || h.CanUndo() {
		t.Errorf("reset should leave a single entry, len=%d", h.Len())
	}
	cur, total := h.Stats()
	if cur != 1 || total != 1 {
		t.Errorf("Stats() = %d/%d, want 1/1", cur, total)
	}
}
