package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	"pagedesigner/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the page designer.
// It exposes the editing operations, persistence and export as tools so an
// agent can lay out a page.
type Server struct {
	mcp       *server.MCPServer
	emitter   EventEmitter
	approval  *ApprovalQueue // nil when destructive tools need no approval
	layouts   *service.LayoutService
	exportDir string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter         EventEmitter
	Layouts         *service.LayoutService
	ExportDir       string  // default directory for render_png and export_layout
	RequireApproval bool    // ask before discarding or deleting layouts
	ApprovalDB      *sql.DB // When set, approvals are exchanged through SQLite
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		emitter:   deps.Emitter,
		layouts:   deps.Layouts,
		exportDir: deps.ExportDir,
	}
	if deps.RequireApproval {
		s.approval = NewApprovalQueue(ctx, deps.Emitter)
		if deps.ApprovalDB != nil {
			s.approval.SetDB(deps.ApprovalDB)
		}
	}

	s.mcp = server.NewMCPServer(
		"pagedesigner-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerElementTools()
	s.registerTableTools()
	s.registerHistoryTools()
	s.registerLayoutTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	if s.approval != nil {
		s.approval.Approve(actionID)
	}
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	if s.approval != nil {
		s.approval.Reject(actionID)
	}
}

// ── Helpers ────────────────────────────────────────────────

// confirm asks for approval of a destructive action when approvals are on.
func (s *Server) confirm(tool, description string, metadata ...string) error {
	if s.approval == nil {
		return nil
	}
	_, err := s.approval.Request(tool, description, metadata...)
	return err
}

// confirmDiscard asks before an action that drops unsaved changes.
func (s *Server) confirmDiscard(tool string) error {
	st := s.layouts.State()
	if !st.Dirty {
		return nil
	}
	return s.confirm(tool, fmt.Sprintf("Discard unsaved changes to %q", st.Name))
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// edit runs fn in the layout service and reports an unknown element as an
// error. fn's result says whether the document changed.
func (s *Server) edit(ctx context.Context, id string, fn func(*editor.Session) bool) (bool, error) {
	var missing bool
	changed := s.layouts.Edit(ctx, func(sess *editor.Session) bool {
		if _, ok := sess.Element(id); !ok {
			missing = true
			return false
		}
		return fn(sess)
	})
	if missing {
		return false, fmt.Errorf("element %s not found", id)
	}
	return changed, nil
}

// elementResult reports the current state of one element.
func (s *Server) elementResult(id string, changed bool) (*mcp.CallToolResult, error) {
	var el domain.Element
	var ok bool
	s.layouts.View(func(sess *editor.Session) { el, ok = sess.Element(id) })
	if !ok {
		return nil, fmt.Errorf("element %s not found", id)
	}
	return jsonResult(map[string]any{"changed": changed, "element": el})
}

func boolPtr(v bool) *bool { return &v }
