package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagedesigner/internal/config"
	mcpserver "pagedesigner/internal/mcp"
)

// ServeMCP runs the designer as an MCP server on stdin/stdout.
// It opens layoutID (or the last opened layout), imports importPath when
// given, starts autosave and the import watcher, and serves until stdin
// closes or the process is interrupted.
func ServeMCP(cfg config.Config, layoutID, importPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		a.Close(shutdown)
	}()

	if err := a.Open(ctx, layoutID); err != nil {
		return err
	}
	if importPath != "" {
		if _, err := a.layouts.ImportFile(ctx, importPath); err != nil {
			return err
		}
	}
	if err := a.StartBackground(ctx); err != nil {
		return err
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:         a.emitter,
		Layouts:         a.layouts,
		ExportDir:       cfg.ExportDir,
		RequireApproval: cfg.RequireApproval,
		ApprovalDB:      a.db.Conn(), // answered by another process with -approve/-reject
	})

	log.Println("[MCP] Starting standalone stdio server...")
	return mcpSrv.ServeStdio()
}
