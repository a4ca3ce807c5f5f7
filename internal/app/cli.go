package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"pagedesigner/internal/config"
	mcpserver "pagedesigner/internal/mcp"
	"pagedesigner/internal/storage"
)

// BatchOptions describes a one-shot run without the MCP server.
type BatchOptions struct {
	LayoutID   string // layout to open, empty for the last one
	ImportPath string // Layout Document loaded after opening
	SaveAs     string // save under this name when set
	ExportPath string // write the Layout Document here when set
	RenderPath string // write a PNG preview here when set
}

// RunBatch opens, optionally imports, then saves, exports and renders.
func RunBatch(cfg config.Config, opts BatchOptions) error {
	ctx := context.Background()
	a, err := New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		a.Close(shutdown)
	}()

	if err := a.Open(ctx, opts.LayoutID); err != nil {
		return err
	}
	if opts.ImportPath != "" {
		skipped, err := a.layouts.ImportFile(ctx, opts.ImportPath)
		if err != nil {
			return err
		}
		log.Printf("[app] imported %s (%d skipped)", opts.ImportPath, skipped)
	}
	if opts.SaveAs != "" {
		l, err := a.layouts.Save(ctx, opts.SaveAs)
		if err != nil {
			return err
		}
		log.Printf("[app] saved %q as %s", l.Name, l.ID)
	}
	if opts.ExportPath != "" {
		if err := a.layouts.ExportFile(opts.ExportPath); err != nil {
			return err
		}
		log.Printf("[app] exported %s", opts.ExportPath)
	}
	if opts.RenderPath != "" {
		if err := a.layouts.RenderFile(ctx, opts.RenderPath); err != nil {
			return err
		}
		log.Printf("[app] rendered %s", opts.RenderPath)
	}
	return nil
}

// ListLayouts prints the saved layouts.
func ListLayouts(cfg config.Config, w io.Writer) error {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	list, err := storage.NewLayoutStore(db).ListLayouts()
	if err != nil {
		return err
	}
	for _, l := range list {
		fmt.Fprintf(w, "%s\t%s\t%d elements\t%s\n", l.ID, l.Name, l.ElementCount, l.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

// ListApprovals prints the destructive MCP actions waiting for an answer.
func ListApprovals(cfg config.Config, w io.Writer) error {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	pending, err := mcpserver.PendingApprovals(db.Conn())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(w, "no pending approvals")
	}
	for _, p := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Tool, p.Description, p.CreatedAt)
	}
	return nil
}

// ResolveApproval answers a pending action of a running MCP server.
func ResolveApproval(cfg config.Config, actionID string, approved bool) error {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return mcpserver.ResolveApproval(db.Conn(), actionID, approved)
}
