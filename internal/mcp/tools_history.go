package mcpserver

import (
	"context"

	"pagedesigner/internal/editor"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change to the page. Clears the selection."),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change. Clears the selection."),
	), s.handleRedo)
}

type historyResult struct {
	Changed bool `json:"changed"`
	Current int  `json:"current"`
	Total   int  `json:"total"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func (s *Server) step(ctx context.Context, op func(*editor.Session) bool) (*mcp.CallToolResult, error) {
	var res historyResult
	res.Changed = s.layouts.Edit(ctx, func(sess *editor.Session) bool {
		changed := op(sess)
		res.Current, res.Total = sess.HistoryStats()
		res.CanUndo, res.CanRedo = sess.CanUndo(), sess.CanRedo()
		return changed
	})
	return jsonResult(res)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(ctx, (*editor.Session).Undo)
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(ctx, (*editor.Session).Redo)
}
