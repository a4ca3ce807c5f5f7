package mcpserver

import (
	"context"
	"fmt"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTableTools() {
	s.mcp.AddTool(mcp.NewTool("resize_table",
		mcp.WithDescription("Change the number of rows and columns of a table, keeping existing cells"),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("rows", mcp.Description("Row count (at least 1)"), mcp.Required()),
		mcp.WithNumber("cols", mcp.Description("Column count (at least 1)"), mcp.Required()),
	), s.handleResizeTable)

	s.mcp.AddTool(mcp.NewTool("set_table_cell",
		mcp.WithDescription("Set the text of one table cell (zero-based row and column)"),
		mcp.WithString("elementId", mcp.Description("Table element ID"), mcp.Required()),
		mcp.WithNumber("row", mcp.Description("Row index"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Column index"), mcp.Required()),
		mcp.WithString("value", mcp.Description("Cell text")),
	), s.handleSetTableCell)
}

// tableOp runs op on a table element, rejecting other kinds.
func (s *Server) tableOp(ctx context.Context, id string, op func(*editor.Session) bool) (*mcp.CallToolResult, error) {
	var notTable bool
	changed, err := s.edit(ctx, id, func(sess *editor.Session) bool {
		el, _ := sess.Element(id)
		if _, ok := el.Body.(domain.TableBody); !ok {
			notTable = true
			return false
		}
		return op(sess)
	})
	if err != nil {
		return nil, err
	}
	if notTable {
		return nil, fmt.Errorf("element %s is not a table", id)
	}
	return s.elementResult(id, changed)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleResizeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	rows, err := requireInt(args, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := requireInt(args, "cols")
	if err != nil {
		return nil, err
	}
	return s.tableOp(ctx, id, func(sess *editor.Session) bool {
		return sess.ResizeTable(id, rows, cols)
	})
}

func (s *Server) handleSetTableCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	row, err := requireInt(args, "row")
	if err != nil {
		return nil, err
	}
	col, err := requireInt(args, "col")
	if err != nil {
		return nil, err
	}
	value := getString(args, "value", "")
	return s.tableOp(ctx, id, func(sess *editor.Session) bool {
		return sess.SetTableCell(id, row, col, value)
	})
}
