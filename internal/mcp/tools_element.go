package mcpserver

import (
	"context"
	"fmt"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	"pagedesigner/internal/layout"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element to the page. Coordinates are millimetres from the top-left corner. Without x and y the element is placed in the first free spot; inside the container frame when one exists."),
		mcp.WithString("type",
			mcp.Description("Element type: text, image, rect, line, table"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("Preferred X in mm (optional, requires y)")),
		mcp.WithNumber("y", mcp.Description("Preferred Y in mm (optional, requires x)")),
		mcp.WithNumber("width", mcp.Description("Width in mm (optional, uses the type default)")),
		mcp.WithNumber("height", mcp.Description("Height in mm (optional, uses the type default)")),
		mcp.WithString("content", mcp.Description("Initial text (text elements, optional)")),
		mcp.WithString("dataKey", mcp.Description("Data key bound at export time (text and image elements, optional)")),
	), s.handleAddElement)

	// ── add_frame ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_frame",
		mcp.WithDescription("Add a container frame. New elements are placed inside it and moved elements are kept inside it. A page has at most one frame."),
	), s.handleAddFrame)

	// ── update_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Update properties of an element. Geometry is not constrained to the page; use move_element for that."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("patchJSON", mcp.Description(`JSON object with any of: x, y, w, h, rotate, content, dataKey, src, style (merged into the current style), table {rows, cols, data, border, cellPadding}`), mcp.Required()),
	), s.handleUpdateElement)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move and/or resize an element. The box is kept on the page and inside the container frame."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X in mm (optional, keeps current)")),
		mcp.WithNumber("y", mcp.Description("New Y in mm (optional, keeps current)")),
		mcp.WithNumber("width", mcp.Description("New width in mm (optional, keeps current)")),
		mcp.WithNumber("height", mcp.Description("New height in mm (optional, keeps current)")),
	), s.handleMoveElement)

	// ── commit_drag ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("commit_drag",
		mcp.WithDescription("Finish a drag gesture at a new origin. Moves smaller than the click deadband are ignored."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X in mm where the drag ended"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Y in mm where the drag ended"), mcp.Required()),
	), s.handleCommitDrag)

	// ── delete_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Remove an element. Can be undone."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleDeleteElement)

	// ── duplicate_element ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription("Copy an element with an offset. The copy is selected and is never a container."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleDuplicateElement)

	// ── select_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element. An empty or unknown ID clears the selection."),
		mcp.WithString("elementId", mcp.Description("Element ID (optional)")),
	), s.handleSelectElement)

	// ── set_container ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_container",
		mcp.WithDescription("Make a rectangle the container frame. An empty ID removes the frame flag from every element."),
		mcp.WithString("elementId", mcp.Description("Rectangle element ID (optional)")),
	), s.handleSetContainer)

	// ── bring_forward / send_backward ──────────────────
	s.mcp.AddTool(mcp.NewTool("bring_forward",
		mcp.WithDescription("Move an element one step up in the paint order"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleBringForward)

	s.mcp.AddTool(mcp.NewTool("send_backward",
		mcp.WithDescription("Move an element one step down in the paint order"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleSendBackward)

	// ── drop_item ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drop_item",
		mcp.WithDescription("Drop a palette item onto the rendered page. Pixel coordinates are relative to the rendered page of the given size."),
		mcp.WithString("payloadJSON", mcp.Description(`Drag payload: {"text"?, "label"?, "value"?, "dataKey"?}`), mcp.Required()),
		mcp.WithNumber("px", mcp.Description("Drop X in rendered pixels"), mcp.Required()),
		mcp.WithNumber("py", mcp.Description("Drop Y in rendered pixels"), mcp.Required()),
		mcp.WithNumber("renderedWidth", mcp.Description("Rendered page width in pixels"), mcp.Required()),
		mcp.WithNumber("renderedHeight", mcp.Description("Rendered page height in pixels"), mcp.Required()),
	), s.handleDropItem)
}

// elementPatch is the JSON form of an update_element patch.
type elementPatch struct {
	X       *float64      `json:"x"`
	Y       *float64      `json:"y"`
	W       *float64      `json:"w"`
	H       *float64      `json:"h"`
	Rotate  *float64      `json:"rotate"`
	Content *string       `json:"content"`
	DataKey *string       `json:"dataKey"`
	Src     *string       `json:"src"`
	Style   *domain.Style `json:"style"`
	Table   *tablePatch   `json:"table"`
}

type tablePatch struct {
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	Data        [][]string `json:"data"`
	Border      *bool      `json:"border"`
	CellPadding *float64   `json:"cellPadding"`
}

// toPatch resolves the JSON patch against the current element.
func (p elementPatch) toPatch(el domain.Element) editor.Patch {
	out := editor.Patch{
		X: p.X, Y: p.Y, W: p.W, H: p.H,
		Rotation: p.Rotate,
		Content:  p.Content,
		DataKey:  p.DataKey,
		Src:      p.Src,
	}
	if p.Style != nil {
		merged := el.Style.Merge(*p.Style)
		out.Style = &merged
	}
	if tb, ok := el.Body.(domain.TableBody); ok && p.Table != nil {
		next := tb
		if p.Table.Rows > 0 || p.Table.Cols > 0 {
			rows, cols := p.Table.Rows, p.Table.Cols
			if rows <= 0 {
				rows = tb.Rows
			}
			if cols <= 0 {
				cols = tb.Cols
			}
			next = next.Resize(rows, cols)
		}
		if p.Table.Data != nil {
			next.Data = p.Table.Data
		}
		if p.Table.Border != nil {
			next.Border = *p.Table.Border
		}
		if p.Table.CellPadding != nil {
			next.CellPadding = *p.Table.CellPadding
		}
		out.Table = &next
	}
	return out
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}

	r := editor.AddRequest{
		Content: optString(args, "content"),
		DataKey: getString(args, "dataKey", ""),
		Size:    layout.Size{W: getFloat(args, "width", 0), H: getFloat(args, "height", 0)},
	}
	if x, y := optFloat(args, "x"), optFloat(args, "y"); x != nil && y != nil {
		r.X, r.Y = x, y
	}

	var added editor.Added
	ok := s.layouts.Edit(ctx, func(sess *editor.Session) bool {
		var placed bool
		added, placed = sess.AddElement(domain.Kind(kind), r)
		return placed
	})
	if !ok {
		return nil, fmt.Errorf("unknown element type %q (use text, image, rect, line or table)", kind)
	}
	return jsonResult(added)
}

func (s *Server) handleAddFrame(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var added editor.Added
	s.layouts.Edit(ctx, func(sess *editor.Session) bool {
		added = sess.AddFrame()
		return true
	})
	return jsonResult(added)
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	raw, err := requireString(args, "patchJSON")
	if err != nil {
		return nil, err
	}
	var p elementPatch
	if err := parseJSON(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid patchJSON: %w", err)
	}

	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool {
		el, _ := sess.Element(id)
		return sess.UpdateElement(id, p.toPatch(el))
	})
	if err != nil {
		return nil, err
	}
	return s.elementResult(id, changed)
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool {
		el, _ := sess.Element(id)
		return sess.UpdateElementPosition(id,
			getFloat(args, "x", el.X),
			getFloat(args, "y", el.Y),
			getFloat(args, "width", el.W),
			getFloat(args, "height", el.H),
		)
	})
	if err != nil {
		return nil, err
	}
	return s.elementResult(id, changed)
}

func (s *Server) handleCommitDrag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	x, err := requireFloat(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := requireFloat(args, "y")
	if err != nil {
		return nil, err
	}
	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool {
		return sess.CommitDrag(id, x, y)
	})
	if err != nil {
		return nil, err
	}
	return s.elementResult(id, changed)
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "elementId")
	if err != nil {
		return nil, err
	}
	if _, err := s.edit(ctx, id, func(sess *editor.Session) bool { return sess.DeleteElement(id) }); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s deleted", id)), nil
}

func (s *Server) handleDuplicateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "elementId")
	if err != nil {
		return nil, err
	}
	var cp domain.Element
	_, err = s.edit(ctx, id, func(sess *editor.Session) bool {
		var ok bool
		cp, ok = sess.DuplicateElement(id)
		return ok
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(cp)
}

func (s *Server) handleSelectElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := getString(req.GetArguments(), "elementId", "")
	selected := s.layouts.Select(ctx, id)
	if selected == "" {
		return textResult("Selection cleared"), nil
	}
	return s.elementResult(selected, false)
}

func (s *Server) handleSetContainer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := getString(req.GetArguments(), "elementId", "")
	if id == "" {
		changed := s.layouts.Edit(ctx, func(sess *editor.Session) bool { return sess.SetContainer("") })
		return jsonResult(map[string]bool{"changed": changed})
	}

	var isRect bool
	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool {
		el, _ := sess.Element(id)
		isRect = el.Kind() == domain.KindRect
		return sess.SetContainer(id)
	})
	if err != nil {
		return nil, err
	}
	if !isRect {
		return nil, fmt.Errorf("only rectangles can be containers")
	}
	return s.elementResult(id, changed)
}

func (s *Server) handleBringForward(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.reorder(ctx, req, (*editor.Session).BringForward)
}

func (s *Server) handleSendBackward(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.reorder(ctx, req, (*editor.Session).SendBackward)
}

func (s *Server) reorder(ctx context.Context, req mcp.CallToolRequest, op func(*editor.Session, string) bool) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "elementId")
	if err != nil {
		return nil, err
	}
	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool { return op(sess, id) })
	if err != nil {
		return nil, err
	}
	var index int
	s.layouts.View(func(sess *editor.Session) { index = sess.Document().Index(id) })
	return jsonResult(map[string]any{"changed": changed, "index": index})
}

func (s *Server) handleDropItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, err := requireString(args, "payloadJSON")
	if err != nil {
		return nil, err
	}
	payload, err := editor.ParseDropPayload([]byte(raw))
	if err != nil {
		return nil, err
	}
	var coords [4]float64
	for i, key := range []string{"px", "py", "renderedWidth", "renderedHeight"} {
		if coords[i], err = requireFloat(args, key); err != nil {
			return nil, err
		}
	}

	added, ok := s.layouts.Drop(ctx, payload, coords[0], coords[1], coords[2], coords[3])
	if !ok {
		return nil, fmt.Errorf("drop rejected: rendered size must be positive")
	}
	return jsonResult(added)
}
