package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("import_layout",
		mcp.WithDescription("Replace the page with a Layout Document, given inline or as a file path. Invalid elements are skipped."),
		mcp.WithString("json", mcp.Description("Layout Document JSON (optional if path is set)")),
		mcp.WithString("path", mcp.Description("Path of a Layout Document file (optional if json is set)")),
	), s.handleImportLayout)

	s.mcp.AddTool(mcp.NewTool("export_layout",
		mcp.WithDescription("Export the page as a Layout Document. Returns the JSON, or writes it when a path is given."),
		mcp.WithString("path", mcp.Description("Output file (optional)")),
	), s.handleExportLayout)

	s.mcp.AddTool(mcp.NewTool("render_png",
		mcp.WithDescription("Render the page to a PNG file with data keys replaced by their bound values"),
		mcp.WithString("path", mcp.Description("Output file (optional, defaults to the export directory)")),
	), s.handleRenderPNG)

	s.mcp.AddTool(mcp.NewTool("palette",
		mcp.WithDescription("List the fields of the bound data record. Each item can be passed to drop_item as {label, value, dataKey}."),
	), s.handlePalette)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// defaultExportPath names an output file after the open layout.
func (s *Server) defaultExportPath(ext string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(s.layouts.State().Name, "-"), "-")
	if name == "" {
		name = "layout"
	}
	return filepath.Join(s.exportDir, name+ext)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleImportLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw := getString(args, "json", "")
	path := getString(args, "path", "")
	if raw == "" && path == "" {
		return nil, fmt.Errorf("json or path is required")
	}
	if err := s.confirmDiscard("import_layout"); err != nil {
		return nil, err
	}

	var skipped int
	var err error
	if raw != "" {
		skipped, err = s.layouts.ImportJSON(ctx, []byte(raw))
	} else {
		skipped, err = s.layouts.ImportFile(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	n := len(s.layouts.Document().Elements)
	return textResult(fmt.Sprintf("Imported %d elements (%d skipped)", n, skipped)), nil
}

func (s *Server) handleExportLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := getString(req.GetArguments(), "path", "")
	if path == "" {
		data, err := s.layouts.ExportJSON()
		if err != nil {
			return nil, fmt.Errorf("export layout: %w", err)
		}
		return textResult(string(data)), nil
	}
	if err := s.layouts.ExportFile(path); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Exported layout to %s", path)), nil
}

func (s *Server) handleRenderPNG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := getString(req.GetArguments(), "path", "")
	if path == "" {
		path = s.defaultExportPath(".png")
	}
	if err := s.layouts.RenderFile(ctx, path); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Rendered page to %s", path)), nil
}

func (s *Server) handlePalette(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.layouts.Palette(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return textResult("No data source configured"), nil
	}
	return jsonResult(items)
}
