package main

import (
	"flag"
	"log"
	"os"

	"pagedesigner/internal/app"
	"pagedesigner/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.yaml")
	layoutID := flag.String("layout", "", "layout id to open (default: last opened)")
	importPath := flag.String("import", "", "import a layout document before running")
	saveAs := flag.String("save", "", "save the layout under this name")
	exportPath := flag.String("export", "", "write the layout document to this file and exit")
	renderPath := flag.String("render", "", "render a PNG preview to this file and exit")
	list := flag.Bool("list", false, "list saved layouts and exit")
	approvals := flag.Bool("approvals", false, "list pending MCP approvals and exit")
	approve := flag.String("approve", "", "approve a pending MCP action")
	reject := flag.String("reject", "", "reject a pending MCP action")
	writeConfig := flag.Bool("write-config", false, "write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *writeConfig:
		err = config.Save(*configPath, cfg)
	case *list:
		err = app.ListLayouts(cfg, os.Stdout)
	case *approvals:
		err = app.ListApprovals(cfg, os.Stdout)
	case *approve != "":
		err = app.ResolveApproval(cfg, *approve, true)
	case *reject != "":
		err = app.ResolveApproval(cfg, *reject, false)
	case *exportPath != "" || *renderPath != "" || *saveAs != "":
		err = app.RunBatch(cfg, app.BatchOptions{
			LayoutID:   *layoutID,
			ImportPath: *importPath,
			SaveAs:     *saveAs,
			ExportPath: *exportPath,
			RenderPath: *renderPath,
		})
	default:
		// MCP uses stdout; keep logs on stderr.
		log.SetOutput(os.Stderr)
		err = app.ServeMCP(cfg, *layoutID, *importPath)
	}
	if err != nil {
		log.Fatal(err)
	}
}
