package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	currentLayoutURI = "layout://current"
	layoutsURI       = "layout://layouts"
)

func (s *Server) registerResources() {
	// ── layout://current ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		currentLayoutURI,
		"Open Layout",
		mcp.WithResourceDescription("The open layout with its document, selection and history flags"),
		mcp.WithMIMEType("application/json"),
	), s.handleCurrentLayoutResource)

	// ── layout://layouts ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		layoutsURI,
		"Saved Layouts",
		mcp.WithMIMEType("application/json"),
	), s.handleLayoutsResource)
}

func (s *Server) handleCurrentLayoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.layouts.State(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      currentLayoutURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleLayoutsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.layouts.List()
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(list, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
