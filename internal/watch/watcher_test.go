package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(path, []byte(`{"elements":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 4)
	w, err := New(func(_ string, content []byte) { changes <- string(content) })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if err := w.WatchFile(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	next := `{"elements":[],"pageWidth":148,"pageHeight":210}`
	if err := os.WriteFile(path, []byte(next), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if got != next {
			t.Errorf("content = %q, want %q", got, next)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresRememberedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	os.WriteFile(path, []byte("a"), 0644)

	changes := make(chan string, 4)
	w, err := New(func(_ string, content []byte) { changes <- string(content) })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	w.WatchFile(path)

	w.Remember(path, []byte("own write"))
	os.WriteFile(path, []byte("own write"), 0644)

	select {
	case got := <-changes:
		t.Errorf("remembered write reported: %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	os.WriteFile(path, []byte("a"), 0644)

	changes := make(chan string, 4)
	w, err := New(func(p string, _ []byte) { changes <- p })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	w.WatchFile(path)

	os.WriteFile(filepath.Join(dir, "other.json"), []byte("b"), 0644)

	select {
	case got := <-changes:
		t.Errorf("unwatched file reported: %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	os.WriteFile(path, []byte(`{"elements":[]}`), 0644)

	changes := make(chan string, 8)
	w, err := New(func(_ string, content []byte) { changes <- string(content) })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	w.SetSettle(300 * time.Millisecond)
	if err := w.WatchFile(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	// An editor truncating, then writing in pieces.
	final := `{"elements":[],"pageWidth":148,"pageHeight":210}`
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(final[:10])
	f.Sync()
	f.WriteString(final[10:])
	f.Close()

	select {
	case got := <-changes:
		if got != final {
			t.Errorf("content = %q, want %q", got, final)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case got := <-changes:
		t.Errorf("burst reported twice, second content %q", got)
	case <-time.After(600 * time.Millisecond):
	}
}
