package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"pagedesigner/internal/binding"
	"pagedesigner/internal/domain"
	"pagedesigner/internal/editor"
	"pagedesigner/internal/export"
	"pagedesigner/internal/storage"
	"pagedesigner/internal/watch"
)

// ─────────────────────────────────────────────────────────────
// Layout Service: owns the open editing session
// ─────────────────────────────────────────────────────────────

// DefaultLayoutName names layouts saved without a name.
const DefaultLayoutName = "Untitled"

// LayoutState is the externally visible state of the open layout.
type LayoutState struct {
	LayoutID   string          `json:"layoutId,omitempty"`
	Name       string          `json:"name"`
	Dirty      bool            `json:"dirty"`
	SelectedID string          `json:"selectedId,omitempty"`
	CanUndo    bool            `json:"canUndo"`
	CanRedo    bool            `json:"canRedo"`
	Document   domain.Document `json:"document"`
}

// LayoutService serializes access to one editor.Session and connects it to
// persistence, import/export, rendering and background tasks. The MCP
// server, the autosave schedule and the file watcher all call it from
// their own goroutines.
type LayoutService struct {
	mu       sync.Mutex
	session  *editor.Session
	layoutID string // empty until first save
	name     string
	dirty    bool

	layouts   domain.LayoutStore
	revisions domain.RevisionStore
	settings  *SettingsService
	emitter   EventEmitter
	renderer  *export.Renderer
	resolver  binding.Resolver

	tasks     runGuard
	cronSched *cron.Cron
	watcher   *watch.Watcher
}

// NewLayoutService creates a LayoutService holding an empty, unsaved page.
func NewLayoutService(
	layouts domain.LayoutStore,
	revisions domain.RevisionStore,
	cfg editor.Config,
	emitter EventEmitter,
) *LayoutService {
	return &LayoutService{
		session:   editor.NewSession(cfg),
		name:      DefaultLayoutName,
		layouts:   layouts,
		revisions: revisions,
		emitter:   emitter,
	}
}

// SetSettings enables remembering the last opened layout.
func (s *LayoutService) SetSettings(settings *SettingsService) { s.settings = settings }

// SetRenderer sets the renderer used by RenderPNG.
func (s *LayoutService) SetRenderer(r *export.Renderer) { s.renderer = r }

// SetResolver sets the data key resolver used for rendering and the palette.
func (s *LayoutService) SetResolver(r binding.Resolver) { s.resolver = r }

// ── Session access ─────────────────────────────────────────

// Edit runs fn against the session. When fn reports a change the layout is
// marked dirty and EventLayoutChanged is emitted.
func (s *LayoutService) Edit(ctx context.Context, fn func(*editor.Session) bool) bool {
	s.mu.Lock()
	changed := fn(s.session)
	if changed {
		s.dirty = true
	}
	state := s.stateLocked()
	s.mu.Unlock()

	if changed {
		s.emitter.Emit(ctx, EventLayoutChanged, state)
	}
	return changed
}

// View runs fn against the session without recording a change.
func (s *LayoutService) View(fn func(*editor.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
}

// Select changes the selection. Selection is not part of the document, so
// the layout does not become dirty.
func (s *LayoutService) Select(ctx context.Context, id string) string {
	s.mu.Lock()
	s.session.SetSelected(id)
	state := s.stateLocked()
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventLayoutChanged, state)
	return state.SelectedID
}

// State returns a copy of the current state.
func (s *LayoutService) State() LayoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Document returns a deep copy of the live document.
func (s *LayoutService) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Document()
}

func (s *LayoutService) stateLocked() LayoutState {
	return LayoutState{
		LayoutID:   s.layoutID,
		Name:       s.name,
		Dirty:      s.dirty,
		SelectedID: s.session.SelectedID(),
		CanUndo:    s.session.CanUndo(),
		CanRedo:    s.session.CanRedo(),
		Document:   s.session.Document(),
	}
}

func (s *LayoutService) loadLocked(doc domain.Document) {
	w, h := doc.Page.WidthMM, doc.Page.HeightMM
	s.session.Load(doc.Elements, &w, &h)
}

// Drop adds a text element for a palette item dropped on the rendered page.
func (s *LayoutService) Drop(ctx context.Context, p editor.DropPayload, px, py, renderedW, renderedH float64) (editor.Added, bool) {
	var added editor.Added
	ok := s.Edit(ctx, func(sess *editor.Session) bool {
		var placed bool
		added, placed = sess.Drop(p, px, py, renderedW, renderedH)
		return placed
	})
	return added, ok
}

// ── Persistence ────────────────────────────────────────────

// NewLayout replaces the session with an empty, unsaved page.
func (s *LayoutService) NewLayout(ctx context.Context, name string) LayoutState {
	if name == "" {
		name = DefaultLayoutName
	}
	s.mu.Lock()
	s.session.Load(nil, nil, nil)
	s.layoutID, s.name, s.dirty = "", name, false
	state := s.stateLocked()
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventLayoutOpened, state)
	return state
}

// Open loads a stored layout into the session, discarding unsaved changes
// and the undo history.
func (s *LayoutService) Open(ctx context.Context, id string) (LayoutState, error) {
	l, err := s.layouts.GetLayout(id)
	if err != nil {
		return LayoutState{}, fmt.Errorf("open layout: %w", err)
	}

	s.mu.Lock()
	s.loadLocked(l.Document)
	s.layoutID, s.name, s.dirty = l.ID, l.Name, false
	state := s.stateLocked()
	s.mu.Unlock()

	s.rememberLast(l.ID)
	s.emitter.Emit(ctx, EventLayoutOpened, state)
	return state, nil
}

// OpenLast reopens the layout recorded by SetSettings, if any. It reports
// whether a layout was opened.
func (s *LayoutService) OpenLast(ctx context.Context) (bool, error) {
	id := s.settings.LastLayout()
	if id == "" {
		return false, nil
	}
	if _, err := s.Open(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Save stores the live document and records a revision. A non-empty name
// renames the layout. The first save of a new layout assigns its id.
func (s *LayoutService) Save(ctx context.Context, name string) (*domain.Layout, error) {
	return s.save(ctx, name, "save")
}

func (s *LayoutService) save(ctx context.Context, name, label string) (*domain.Layout, error) {
	s.mu.Lock()
	if name != "" {
		s.name = name
	}
	doc := s.session.Document()
	l := &domain.Layout{ID: s.layoutID, Name: s.name, Document: doc}
	if err := s.storeLocked(l); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	// The record exists from here on; later saves must update it.
	s.layoutID = l.ID
	if _, err := s.revisions.PushRevision(l.ID, label, doc); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("record revision: %w", err)
	}
	s.dirty = false
	state := s.stateLocked()
	s.mu.Unlock()

	s.rememberLast(l.ID)
	s.emitter.Emit(ctx, EventLayoutSaved, state)
	return l, nil
}

// storeLocked creates or updates l. A layout deleted behind the session's
// back is created again under the same id.
func (s *LayoutService) storeLocked(l *domain.Layout) error {
	if l.ID != "" {
		err := s.layouts.UpdateLayout(l)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("save layout: %w", err)
		}
	} else {
		l.ID = uuid.NewString()
	}
	if err := s.layouts.CreateLayout(l); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

func (s *LayoutService) rememberLast(id string) {
	if s.settings == nil {
		return
	}
	if err := s.settings.SetLastLayout(id); err != nil {
		log.Printf("[settings] remember layout %s: %v", id, err)
	}
}

// List returns the stored layouts, most recently updated first.
func (s *LayoutService) List() ([]domain.LayoutSummary, error) {
	return s.layouts.ListLayouts()
}

// Delete removes a stored layout. If it is the open one, the session keeps
// its document as a new unsaved layout.
func (s *LayoutService) Delete(ctx context.Context, id string) error {
	if err := s.layouts.DeleteLayout(id); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	s.mu.Lock()
	if s.layoutID == id {
		s.layoutID = ""
		s.dirty = true
	}
	state := s.stateLocked()
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventLayoutChanged, state)
	return nil
}

// Revisions lists the saved revisions of the open layout, newest first.
func (s *LayoutService) Revisions() ([]domain.Revision, error) {
	s.mu.Lock()
	id := s.layoutID
	s.mu.Unlock()
	if id == "" {
		return nil, nil
	}
	return s.revisions.ListRevisions(id)
}

// RestoreRevision loads a saved revision of the open layout. The result is
// unsaved until the next Save.
func (s *LayoutService) RestoreRevision(ctx context.Context, revisionID string) (LayoutState, error) {
	rev, err := s.revisions.GetRevision(revisionID)
	if err != nil {
		return LayoutState{}, fmt.Errorf("restore revision: %w", err)
	}

	s.mu.Lock()
	if rev.LayoutID != s.layoutID {
		s.mu.Unlock()
		return LayoutState{}, fmt.Errorf("restore revision: %s belongs to layout %s", revisionID, rev.LayoutID)
	}
	s.loadLocked(rev.Document)
	s.dirty = true
	state := s.stateLocked()
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventLayoutChanged, state)
	return state, nil
}

// ── Import / Export ────────────────────────────────────────

// ImportJSON replaces the document with a Layout Document. It returns the
// number of elements skipped as invalid. On error the session is unchanged.
func (s *LayoutService) ImportJSON(ctx context.Context, data []byte) (int, error) {
	s.mu.Lock()
	skipped, err := s.session.Import(data)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.dirty = true
	state := s.stateLocked()
	s.mu.Unlock()

	if skipped > 0 {
		log.Printf("[import] skipped %d invalid element(s)", skipped)
	}
	s.emitter.Emit(ctx, EventLayoutChanged, state)
	return skipped, nil
}

// ImportFile reads a Layout Document from disk.
func (s *LayoutService) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read layout file: %w", err)
	}
	return s.ImportJSON(ctx, data)
}

// ExportJSON encodes the live document.
func (s *LayoutService) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Export()
}

// ExportFile writes the live document to path. A watched file does not
// re-import its own export.
func (s *LayoutService) ExportFile(path string) error {
	data, err := s.ExportJSON()
	if err != nil {
		return fmt.Errorf("export layout: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w != nil {
		w.Remember(path, data)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

// ── Rendering & data binding ───────────────────────────────

// BoundDocument returns the live document with data key values substituted.
// Resolution failures leave the stored content in place.
func (s *LayoutService) BoundDocument(ctx context.Context) domain.Document {
	doc := s.Document()
	if s.resolver == nil {
		return doc
	}
	keys := binding.Keys(doc)
	if len(keys) == 0 {
		return doc
	}
	values, err := s.resolver.Resolve(ctx, keys)
	if err != nil {
		log.Printf("[binding] resolve %d key(s): %v", len(keys), err)
		return doc
	}
	return binding.Apply(doc, values)
}

// RenderPNG writes the bound page as a PNG image.
func (s *LayoutService) RenderPNG(ctx context.Context, w io.Writer) error {
	if s.renderer == nil {
		return fmt.Errorf("render: no renderer configured")
	}
	return s.renderer.WritePNG(w, s.BoundDocument(ctx))
}

// RenderFile writes the bound page to a PNG file.
func (s *LayoutService) RenderFile(ctx context.Context, path string) error {
	if s.renderer == nil {
		return fmt.Errorf("render: no renderer configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create render dir: %w", err)
	}
	return s.renderer.SavePNG(path, s.BoundDocument(ctx))
}

// Palette lists the fields of the bound record as draggable items. Without
// a record-backed resolver it is empty.
func (s *LayoutService) Palette(ctx context.Context) ([]binding.PaletteItem, error) {
	rec, ok := s.resolver.(binding.Recorder)
	if !ok {
		return nil, nil
	}
	r, err := rec.Record(ctx)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return binding.Palette(r), nil
}

// ── Background tasks ───────────────────────────────────────

const taskAutosave = "autosave"

// StartAutosave runs Autosave on a cron schedule until Close.
func (s *LayoutService) StartAutosave(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		saved, err := s.Autosave(ctx)
		if err != nil {
			log.Printf("[autosave] failed: %v", err)
			return
		}
		if saved {
			log.Printf("[autosave] saved layout %s", s.State().LayoutID)
		}
	})
	if err != nil {
		return fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	c.Start()

	s.mu.Lock()
	prev := s.cronSched
	s.cronSched = c
	s.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	log.Printf("[autosave] scheduled %s", spec)
	return nil
}

// Autosave saves the open layout if it has unsaved changes and has been
// saved before. It reports whether a save happened.
func (s *LayoutService) Autosave(ctx context.Context) (bool, error) {
	if !s.tasks.TryLock(taskAutosave) {
		return false, nil
	}
	defer s.tasks.Unlock(taskAutosave)

	s.mu.Lock()
	pending := s.dirty && s.layoutID != ""
	s.mu.Unlock()
	if !pending {
		return false, nil
	}
	if _, err := s.save(ctx, "", taskAutosave); err != nil {
		return false, err
	}
	return true, nil
}

// WatchImport re-imports path whenever another program changes it.
func (s *LayoutService) WatchImport(ctx context.Context, path string) error {
	s.mu.Lock()
	w := s.watcher
	if w == nil {
		var err error
		w, err = watch.New(func(p string, content []byte) { s.reimport(ctx, p, content) })
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.watcher = w
	}
	s.mu.Unlock()

	if err := w.WatchFile(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log.Printf("[watch] watching %s", path)
	return nil
}

func (s *LayoutService) reimport(ctx context.Context, path string, content []byte) {
	task := "watch:" + path
	if !s.tasks.TryLock(task) {
		return
	}
	defer s.tasks.Unlock(task)

	if _, err := s.ImportJSON(ctx, content); err != nil {
		log.Printf("[watch] re-import %s: %v", path, err)
		s.emitter.Emit(ctx, EventImportFailed, map[string]string{"path": path, "error": err.Error()})
		return
	}
	log.Printf("[watch] re-imported %s", path)
}

// Close stops the autosave schedule and the file watcher, then waits for
// running tasks until ctx is done.
func (s *LayoutService) Close(ctx context.Context) {
	s.mu.Lock()
	c, w := s.cronSched, s.watcher
	s.cronSched, s.watcher = nil, nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if w != nil {
		if err := w.Close(); err != nil {
			log.Printf("[watch] close: %v", err)
		}
	}
	s.tasks.WaitAll(ctx)
}
