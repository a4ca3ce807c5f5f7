package app

import (
	"context"
	"fmt"
	"log"

	"pagedesigner/internal/binding"
	"pagedesigner/internal/config"
	"pagedesigner/internal/export"
	"pagedesigner/internal/secret"
	"pagedesigner/internal/service"
	"pagedesigner/internal/storage"
)

// App holds the storage and services of one designer process.
type App struct {
	cfg      config.Config
	db       *storage.DB
	emitter  service.EventEmitter
	layouts  *service.LayoutService
	settings *service.SettingsService
}

// logEmitter reports service events on the standard logger. Per-edit
// change events are left out.
type logEmitter struct{}

func (logEmitter) Emit(_ context.Context, event string, data any) {
	switch event {
	case service.EventLayoutChanged:
		return
	case service.EventLayoutSaved, service.EventLayoutOpened:
		if st, ok := data.(service.LayoutState); ok {
			log.Printf("[event] %s %q (%s)", event, st.Name, st.LayoutID)
			return
		}
	}
	log.Printf("[event] %s", event)
}

// New opens the database and wires the services described by cfg.
func New(cfg config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	emitter := logEmitter{}
	layouts := service.NewLayoutService(
		storage.NewLayoutStore(db),
		storage.NewRevisionStore(db),
		cfg.EditorConfig(),
		emitter,
	)
	settings := service.NewSettingsService(db)
	layouts.SetSettings(settings)

	renderer, err := export.NewRenderer(cfg.ExportDPI)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	layouts.SetRenderer(renderer)

	if cfg.DataSource.Enabled() {
		layouts.SetResolver(binding.NewSourceResolver(cfg.DataSource, secret.New(cfg.SecretBackend)))
		log.Printf("[binding] data keys resolve from %s", cfg.DataSource.Driver)
	}

	return &App{
		cfg:      cfg,
		db:       db,
		emitter:  emitter,
		layouts:  layouts,
		settings: settings,
	}, nil
}

// Layouts returns the layout service.
func (a *App) Layouts() *service.LayoutService {
	return a.layouts
}

// Open loads the layout with the given id, or the last opened one when id
// is empty. A missing last layout is not an error.
func (a *App) Open(ctx context.Context, id string) error {
	if id != "" {
		_, err := a.layouts.Open(ctx, id)
		return err
	}
	if _, err := a.layouts.OpenLast(ctx); err != nil {
		log.Printf("[app] could not reopen last layout: %v", err)
	}
	return nil
}

// StartBackground starts the autosave schedule and the import watcher
// configured in cfg.
func (a *App) StartBackground(ctx context.Context) error {
	if a.cfg.AutosaveEnabled() {
		if err := a.layouts.StartAutosave(ctx, a.cfg.Autosave); err != nil {
			return err
		}
	}
	if a.cfg.WatchFile != "" {
		if err := a.layouts.WatchImport(ctx, a.cfg.WatchFile); err != nil {
			return err
		}
	}
	return nil
}

// Close stops background work and closes the database.
func (a *App) Close(ctx context.Context) {
	a.layouts.Close(ctx)
	if err := a.db.Close(); err != nil {
		log.Printf("[app] close database: %v", err)
	}
}
