package app

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pagedesigner/internal/config"
	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	mcpserver "pagedesigner/internal/mcp"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "data_dir: " + filepath.Join(dir, "data") + "\nautosave: \"off\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func closeApp(a *App) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	a.Close(ctx)
}

// ─────────────────────────────────────────────────────────────
// Wiring
// ─────────────────────────────────────────────────────────────

func TestApp_SaveThenBatchExport(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Open(ctx, ""); err != nil {
		t.Fatalf("Open with no last layout: %v", err)
	}
	a.Layouts().Edit(ctx, func(s *editor.Session) bool {
		_, ok := s.AddElement(domain.KindRect, editor.AddRequest{})
		return ok
	})
	saved, err := a.Layouts().Save(ctx, "Invoice")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	closeApp(a)

	out := t.TempDir()
	exportPath := filepath.Join(out, "invoice.json")
	renderPath := filepath.Join(out, "invoice.png")
	err = RunBatch(cfg, BatchOptions{ExportPath: exportPath, RenderPath: renderPath})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	doc, err := domain.DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Elements) != 1 {
		t.Errorf("exported %d elements, want 1 from the reopened layout", len(doc.Elements))
	}

	f, err := os.Open(renderPath)
	if err != nil {
		t.Fatalf("open render: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("render is not a PNG: %v", err)
	}

	var list bytes.Buffer
	if err := ListLayouts(cfg, &list); err != nil {
		t.Fatalf("ListLayouts: %v", err)
	}
	if !strings.Contains(list.String(), saved.ID) || !strings.Contains(list.String(), "Invoice") {
		t.Errorf("layout list %q misses the saved layout", list.String())
	}
}

func TestApp_OpenMissingLayout(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeApp(a)

	if err := a.Open(context.Background(), "nope"); err == nil {
		t.Error("expected error opening an unknown layout id")
	}
}

func TestApp_Approvals(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	if err := ListApprovals(cfg, &out); err != nil {
		t.Fatalf("ListApprovals: %v", err)
	}
	if !strings.Contains(out.String(), "no pending approvals") {
		t.Errorf("got %q", out.String())
	}

	err := ResolveApproval(cfg, "missing", true)
	if !errors.Is(err, mcpserver.ErrNoPendingAction) {
		t.Errorf("ResolveApproval unknown id: got %v", err)
	}
}
