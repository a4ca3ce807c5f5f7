package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerLayoutTools() {
	s.mcp.AddTool(mcp.NewTool("get_layout",
		mcp.WithDescription("Get the open layout: id, name, unsaved flag, selection, undo/redo availability and the full document"),
	), s.handleGetLayout)

	s.mcp.AddTool(mcp.NewTool("new_layout",
		mcp.WithDescription("Start an empty A4 layout. Unsaved changes are discarded."),
		mcp.WithString("name", mcp.Description("Layout name (optional)")),
	), s.handleNewLayout)

	s.mcp.AddTool(mcp.NewTool("open_layout",
		mcp.WithDescription("Open a saved layout. Unsaved changes and the undo history are discarded."),
		mcp.WithString("layoutId", mcp.Description("Layout ID"), mcp.Required()),
	), s.handleOpenLayout)

	s.mcp.AddTool(mcp.NewTool("save_layout",
		mcp.WithDescription("Save the open layout and record a revision"),
		mcp.WithString("name", mcp.Description("New name (optional)")),
	), s.handleSaveLayout)

	s.mcp.AddTool(mcp.NewTool("list_layouts",
		mcp.WithDescription("List saved layouts, most recently updated first"),
	), s.handleListLayouts)

	s.mcp.AddTool(mcp.NewTool("delete_layout",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a saved layout and its revisions."),
		mcp.WithString("layoutId", mcp.Description("Layout ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteLayout)

	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List saved revisions of the open layout, newest first"),
	), s.handleListRevisions)

	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Load a saved revision of the open layout. The result stays unsaved until save_layout."),
		mcp.WithString("revisionId", mcp.Description("Revision ID"), mcp.Required()),
	), s.handleRestoreRevision)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.layouts.State())
}

func (s *Server) handleNewLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.confirmDiscard("new_layout"); err != nil {
		return nil, err
	}
	st := s.layouts.NewLayout(ctx, getString(req.GetArguments(), "name", ""))
	return textResult(fmt.Sprintf("Started new layout %q", st.Name)), nil
}

func (s *Server) handleOpenLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "layoutId")
	if err != nil {
		return nil, err
	}
	if err := s.confirmDiscard("open_layout"); err != nil {
		return nil, err
	}
	st, err := s.layouts.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(st)
}

func (s *Server) handleSaveLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l, err := s.layouts.Save(ctx, getString(req.GetArguments(), "name", ""))
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Saved layout %q (%s) with %d elements", l.Name, l.ID, len(l.Document.Elements))), nil
}

func (s *Server) handleListLayouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.layouts.List()
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return jsonResult(list)
}

func (s *Server) handleDeleteLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "layoutId")
	if err != nil {
		return nil, err
	}
	if err := s.confirm("delete_layout", fmt.Sprintf("Delete layout %s and its revisions", id), fmt.Sprintf(`{"layoutId":%q}`, id)); err != nil {
		return nil, err
	}
	if err := s.layouts.Delete(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Layout %s deleted", id)), nil
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	revs, err := s.layouts.Revisions()
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	type revisionSummary struct {
		ID           string `json:"id"`
		Label        string `json:"label"`
		ElementCount int    `json:"elementCount"`
		CreatedAt    string `json:"createdAt"`
	}
	summaries := make([]revisionSummary, len(revs))
	for i, r := range revs {
		summaries[i] = revisionSummary{
			ID:           r.ID,
			Label:        r.Label,
			ElementCount: len(r.Document.Elements),
			CreatedAt:    r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return jsonResult(summaries)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "revisionId")
	if err != nil {
		return nil, err
	}
	st, err := s.layouts.RestoreRevision(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Restored revision %s (%d elements)", id, len(st.Document.Elements))), nil
}
