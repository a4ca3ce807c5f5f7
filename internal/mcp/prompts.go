package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("design_form",
		mcp.WithPromptDescription("Guide through laying out a printable form inside a frame"),
		mcp.WithArgument("title",
			mcp.ArgumentDescription("Title printed at the top of the form"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("fields",
			mcp.ArgumentDescription("Comma-separated field names to place on the form"),
			mcp.RequiredArgument(),
		),
	), s.handleDesignFormPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("bind_record",
		mcp.WithPromptDescription("Place every field of the bound data record on the page and render a preview"),
	), s.handleBindRecordPrompt)
}

func (s *Server) handleDesignFormPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := req.Params.Arguments["title"]
	fields := req.Params.Arguments["fields"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design the form %q", title),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Lay out a printable form titled "%s" with the fields: %s. Follow these steps:

1. Use new_layout with the title as name
2. Use add_frame to create the container; every element added afterwards lands inside it
3. Add a text element with the title, then use update_element to set style {"fontSize": 20, "fontWeight": "bold"}
4. For each field add a text element with content "<field>:" and dataKey set to the field name
5. Add a table if the form needs a list of items, then fill the header row with set_table_cell
6. Check get_layout for overlaps or fallback placements and fix them with move_element
7. Save with save_layout and preview with render_png

All coordinates are millimetres on an A4 page (210 × 297).`, title, fields),
				},
			},
		},
	}, nil
}

func (s *Server) handleBindRecordPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Place the bound record on the page",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Place the fields of the bound data record on the open layout. Follow these steps:

1. Call palette to list the fields
2. For each field call drop_item with payloadJSON {"label", "value", "dataKey"} from the palette item, px/py spread down the page and renderedWidth 794, renderedHeight 1123
3. Signature fields (__sign1Img__, __sign2Img__) belong in image elements: use add_element with type image and that dataKey instead
4. Call render_png to check the result with the values filled in`,
				},
			},
		},
	}, nil
}
