package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	"pagedesigner/internal/service"
	"pagedesigner/internal/storage"
)

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "designer.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	em := &service.MockEmitter{}
	layouts := service.NewLayoutService(storage.NewLayoutStore(db), storage.NewRevisionStore(db), editor.DefaultConfig(), em)
	return New(context.Background(), Deps{Emitter: em, Layouts: layouts, ExportDir: filepath.Join(dir, "exports")}), db
}

func call(t *testing.T, h handler, args map[string]any) string {
	t.Helper()
	out, err := callErr(h, args)
	if err != nil {
		t.Fatalf("tool failed: %v", err)
	}
	return out
}

func callErr(h handler, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		return "", err
	}
	return res.Content[0].(mcp.TextContent).Text, nil
}

type addedJSON struct {
	Element struct {
		ID          string  `json:"id"`
		Type        string  `json:"type"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		W           float64 `json:"w"`
		H           float64 `json:"h"`
		Content     string  `json:"content"`
		DataKey     string  `json:"dataKey"`
		IsContainer bool    `json:"isContainer"`
	} `json:"element"`
	Fallback bool `json:"fallback"`
	Changed  bool `json:"changed"`
}

func decode(t *testing.T, text string) addedJSON {
	t.Helper()
	var out addedJSON
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return out
}

func TestAddElementTool(t *testing.T) {
	s, _ := newTestServer(t)

	got := decode(t, call(t, s.handleAddElement, map[string]any{"type": "text", "content": "Hello", "dataKey": "greeting"}))
	if got.Element.X != 1 || got.Element.Y != 1 || got.Element.W != 53 || got.Element.H != 8 {
		t.Errorf("unexpected placement %+v", got.Element)
	}
	if got.Element.Content != "Hello" || got.Element.DataKey != "greeting" {
		t.Errorf("unexpected body %+v", got.Element)
	}

	got = decode(t, call(t, s.handleAddElement, map[string]any{"type": "rect", "x": 100.0, "y": 50.0}))
	if got.Element.X != 100 || got.Element.Y != 50 {
		t.Errorf("explicit placement = (%v, %v)", got.Element.X, got.Element.Y)
	}

	if _, err := callErr(s.handleAddElement, map[string]any{"type": "circle"}); err == nil {
		t.Error("expected an unknown type error")
	}
	if _, err := callErr(s.handleAddElement, map[string]any{}); err == nil {
		t.Error("expected a missing type error")
	}
}

func TestFrameAndContainment(t *testing.T) {
	s, _ := newTestServer(t)

	frame := decode(t, call(t, s.handleAddFrame, nil))
	if !frame.Element.IsContainer || frame.Element.W != 106 || frame.Element.H != 79 {
		t.Fatalf("unexpected frame %+v", frame.Element)
	}

	rect := decode(t, call(t, s.handleAddElement, map[string]any{"type": "rect"}))
	moved := decode(t, call(t, s.handleMoveElement, map[string]any{"elementId": rect.Element.ID, "x": 200.0}))
	if !moved.Changed || moved.Element.X+moved.Element.W != frame.Element.X+frame.Element.W {
		t.Errorf("element should be clamped to the frame's right edge: %+v", moved.Element)
	}

	if _, err := callErr(s.handleSetContainer, map[string]any{"elementId": rect.Element.ID}); err != nil {
		t.Fatalf("set_container: %v", err)
	}
	st := s.layouts.State()
	containers := 0
	for _, el := range st.Document.Elements {
		if el.IsContainer {
			containers++
		}
	}
	if containers != 1 {
		t.Errorf("expected exactly one container, got %d", containers)
	}
}

func TestSetContainerRejectsNonRect(t *testing.T) {
	s, _ := newTestServer(t)
	text := decode(t, call(t, s.handleAddElement, map[string]any{"type": "text"}))
	_, err := callErr(s.handleSetContainer, map[string]any{"elementId": text.Element.ID})
	if err == nil || !strings.Contains(err.Error(), "rectangles") {
		t.Errorf("expected a rectangle error, got %v", err)
	}
}

func TestUpdateElementMergesStyle(t *testing.T) {
	s, _ := newTestServer(t)
	el := decode(t, call(t, s.handleAddElement, map[string]any{"type": "text"}))

	call(t, s.handleUpdateElement, map[string]any{
		"elementId": el.Element.ID,
		"patchJSON": `{"content": "Total", "style": {"fontWeight": "bold"}, "w": 0.5}`,
	})

	got, _ := s.layouts.Document().Find(el.Element.ID)
	if tb := got.Body.(domain.TextBody); tb.Content != "Total" {
		t.Errorf("content = %q", tb.Content)
	}
	if got.Style.FontWeight != "bold" || got.Style.FontSize == 0 {
		t.Errorf("style should be merged, got %+v", got.Style)
	}
	if got.W != 2 {
		t.Errorf("width should be floored at 2, got %v", got.W)
	}

	if _, err := callErr(s.handleUpdateElement, map[string]any{"elementId": "ghost", "patchJSON": `{}`}); err == nil {
		t.Error("expected not found error")
	}
	if _, err := callErr(s.handleUpdateElement, map[string]any{"elementId": el.Element.ID, "patchJSON": `{`}); err == nil {
		t.Error("expected invalid patch error")
	}
}

func TestTableTools(t *testing.T) {
	s, _ := newTestServer(t)
	table := decode(t, call(t, s.handleAddElement, map[string]any{"type": "table"}))
	id := table.Element.ID

	call(t, s.handleResizeTable, map[string]any{"elementId": id, "rows": 4.0, "cols": 2.0})
	call(t, s.handleSetTableCell, map[string]any{"elementId": id, "row": 3.0, "col": 1.0, "value": "x"})

	el, _ := s.layouts.Document().Find(id)
	tb := el.Body.(domain.TableBody)
	if tb.Rows != 4 || tb.Cols != 2 || tb.Cell(3, 1) != "x" {
		t.Errorf("unexpected table %+v", tb)
	}

	if _, err := callErr(s.handleResizeTable, map[string]any{"elementId": id, "rows": 1.5, "cols": 2.0}); err == nil {
		t.Error("expected integer error")
	}
	rect := decode(t, call(t, s.handleAddElement, map[string]any{"type": "rect"}))
	if _, err := callErr(s.handleSetTableCell, map[string]any{"elementId": rect.Element.ID, "row": 0.0, "col": 0.0}); err == nil {
		t.Error("expected not-a-table error")
	}
}

func TestUndoRedoTools(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleAddElement, map[string]any{"type": "rect"})

	var res historyResult
	json.Unmarshal([]byte(call(t, s.handleUndo, nil)), &res)
	if !res.Changed || res.CanUndo || !res.CanRedo {
		t.Errorf("unexpected undo result %+v", res)
	}
	if n := len(s.layouts.Document().Elements); n != 0 {
		t.Errorf("undo left %d elements", n)
	}

	json.Unmarshal([]byte(call(t, s.handleRedo, nil)), &res)
	if !res.Changed || res.Current != 2 || res.Total != 2 {
		t.Errorf("unexpected redo result %+v", res)
	}
}

func TestReorderTools(t *testing.T) {
	s, _ := newTestServer(t)
	a := decode(t, call(t, s.handleAddElement, map[string]any{"type": "rect"}))
	call(t, s.handleAddElement, map[string]any{"type": "rect"})

	var res struct {
		Changed bool `json:"changed"`
		Index   int  `json:"index"`
	}
	json.Unmarshal([]byte(call(t, s.handleBringForward, map[string]any{"elementId": a.Element.ID})), &res)
	if !res.Changed || res.Index != 1 {
		t.Errorf("bring_forward = %+v", res)
	}
	json.Unmarshal([]byte(call(t, s.handleBringForward, map[string]any{"elementId": a.Element.ID})), &res)
	if res.Changed || res.Index != 1 {
		t.Errorf("bring_forward at the top = %+v", res)
	}
}

func TestDropItemTool(t *testing.T) {
	s, _ := newTestServer(t)
	got := decode(t, call(t, s.handleDropItem, map[string]any{
		"payloadJSON":    `{"label": "Customer", "value": "ACME"}`,
		"px":             397.0,
		"py":             0.0,
		"renderedWidth":  794.0,
		"renderedHeight": 1123.0,
	}))
	if got.Element.Content != "Customer: ACME" || got.Element.DataKey != "Customer" || got.Element.X != 105 {
		t.Errorf("unexpected drop %+v", got.Element)
	}

	_, err := callErr(s.handleDropItem, map[string]any{
		"payloadJSON": `{"text": "x"}`, "px": 1.0, "py": 1.0, "renderedWidth": 0.0, "renderedHeight": 10.0,
	})
	if err == nil {
		t.Error("expected rejection of a zero-width page")
	}
}

func TestSaveListAndExport(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleAddElement, map[string]any{"type": "rect"})
	call(t, s.handleSaveLayout, map[string]any{"name": "Delivery Note"})

	var list []domain.LayoutSummary
	json.Unmarshal([]byte(call(t, s.handleListLayouts, nil)), &list)
	if len(list) != 1 || list[0].Name != "Delivery Note" {
		t.Fatalf("unexpected listing %+v", list)
	}

	exported := call(t, s.handleExportLayout, nil)
	if !strings.Contains(exported, `"pageWidth"`) {
		t.Errorf("export should be a Layout Document: %s", exported)
	}

	call(t, s.handleNewLayout, nil)
	out := call(t, s.handleImportLayout, map[string]any{"json": exported})
	if !strings.HasPrefix(out, "Imported 1 elements") {
		t.Errorf("import result = %q", out)
	}

	if got := s.defaultExportPath(".png"); filepath.Base(got) != "Delivery-Note.png" {
		t.Errorf("default export path = %s", got)
	}
}

func TestCurrentLayoutResource(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleAddElement, map[string]any{"type": "line"})

	contents, err := s.handleCurrentLayoutResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	var st service.LayoutState
	if err := json.Unmarshal([]byte(text), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(st.Document.Elements) != 1 || !st.Dirty {
		t.Errorf("unexpected state %+v", st)
	}
}

// ─────────────────────────────────────────────────────────────
// Approvals
// ─────────────────────────────────────────────────────────────

type chanEmitter chan PendingAction

func (c chanEmitter) Emit(_ context.Context, event string, data any) {
	if a, ok := data.(PendingAction); ok && event == "mcp:approval-required" {
		c <- a
	}
}

func TestApprovalQueue_Channel(t *testing.T) {
	em := make(chanEmitter, 1)
	q := NewApprovalQueue(context.Background(), em)

	done := make(chan error, 1)
	go func() {
		_, err := q.Request("delete_layout", "Delete layout l1")
		done <- err
	}()

	action := <-em
	q.Reject(action.ID)
	if err := <-done; err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("expected rejection, got %v", err)
	}
}

func TestApprovalQueue_DB(t *testing.T) {
	_, db := newTestServer(t)
	q := NewApprovalQueue(context.Background(), make(chanEmitter, 1))
	q.SetDB(db.Conn())

	done := make(chan bool, 1)
	go func() {
		ok, _ := q.Request("delete_layout", "Delete layout l1")
		done <- ok
	}()

	var pending []PendingAction
	deadline := time.Now().Add(3 * time.Second)
	for len(pending) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
		pending, _ = PendingApprovals(db.Conn())
	}
	if len(pending) != 1 || pending[0].Tool != "delete_layout" {
		t.Fatalf("unexpected pending approvals %+v", pending)
	}
	if err := ResolveApproval(db.Conn(), pending[0].ID, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	select {
	case ok := <-done:
		if !ok {
			t.Error("expected approval")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("request did not observe the approval")
	}

	if err := ResolveApproval(db.Conn(), "ghost", false); !errors.Is(err, ErrNoPendingAction) {
		t.Errorf("expected ErrNoPendingAction, got %v", err)
	}
}
