// Package editor implements the editing operations of the page designer on
// top of the document model, the layout engine and the undo history.
package editor

import (
	"github.com/google/uuid"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/history"
	"pagedesigner/internal/layout"
)

// Config tunes a Session. Zero values fall back to the defaults.
type Config struct {
	Layout          layout.Config
	MaxHistory      int
	DuplicateOffset float64 // mm added to x and y of a duplicate
	DragDeadbandPx  float64 // device pixels a drag must exceed to count as a move
	NewID           func() string
}

// DefaultConfig returns the editor defaults.
func DefaultConfig() Config {
	return Config{
		Layout:          layout.DefaultConfig(),
		MaxHistory:      history.DefaultMaxDepth,
		DuplicateOffset: 20,
		DragDeadbandPx:  8,
	}
}

// Session is one open document with its selection and undo history.
// A Session is not safe for concurrent use; callers serialize access.
//
// Every committed mutation replaces the element slice instead of writing
// into it, so a slice handed out earlier never changes underneath a reader.
type Session struct {
	cfg      Config
	engine   *layout.Engine
	doc      domain.Document
	selected string
	history  *history.History
}

// NewSession creates a session holding an empty A4 page.
func NewSession(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = def.MaxHistory
	}
	if cfg.DuplicateOffset == 0 {
		cfg.DuplicateOffset = def.DuplicateOffset
	}
	if cfg.DragDeadbandPx <= 0 {
		cfg.DragDeadbandPx = def.DragDeadbandPx
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "el-" + uuid.NewString() }
	}
	doc := domain.Document{Page: domain.A4()}
	return &Session{
		cfg:     cfg,
		engine:  layout.NewEngine(cfg.Layout),
		doc:     doc,
		history: history.New(cfg.MaxHistory, doc),
	}
}

// Engine exposes the layout engine the session places elements with.
func (s *Session) Engine() *layout.Engine {
	return s.engine
}

// Document returns a deep copy of the live document.
func (s *Session) Document() domain.Document {
	return s.doc.Clone()
}

// Elements returns a deep copy of the element sequence.
func (s *Session) Elements() []domain.Element {
	return s.doc.Clone().Elements
}

// PaintOrder returns the elements in drawing order.
func (s *Session) PaintOrder() []domain.Element {
	return s.doc.PaintOrder()
}

// Page returns the page size.
func (s *Session) Page() domain.Page {
	return s.doc.Page
}

// Element returns a copy of the element with the given id.
func (s *Session) Element(id string) (domain.Element, bool) {
	return s.doc.Find(id)
}

// ── Selection ──────────────────────────────────────────────

// SetSelected selects the element with the given id. An empty or unknown
// id clears the selection.
func (s *Session) SetSelected(id string) {
	if s.doc.Index(id) < 0 {
		id = ""
	}
	s.selected = id
}

// SelectedID returns the selected element id or "".
func (s *Session) SelectedID() string {
	return s.selected
}

// Selected returns a copy of the selected element.
func (s *Session) Selected() (domain.Element, bool) {
	if s.selected == "" {
		return domain.Element{}, false
	}
	return s.doc.Find(s.selected)
}

// ── History ────────────────────────────────────────────────

// Undo restores the state before the last committed mutation.
func (s *Session) Undo() bool {
	doc, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.doc = doc
	s.selected = ""
	return true
}

// Redo re-applies the last undone mutation.
func (s *Session) Redo() bool {
	doc, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.doc = doc
	s.selected = ""
	return true
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryStats returns the 1-based history position and entry count.
func (s *Session) HistoryStats() (current, total int) {
	return s.history.Stats()
}

// working returns a document sharing no slice with the live one, ready to
// be mutated and committed.
func (s *Session) working() domain.Document {
	next := domain.Document{Page: s.doc.Page}
	next.Elements = make([]domain.Element, len(s.doc.Elements))
	copy(next.Elements, s.doc.Elements)
	return next
}

// commit makes next the live document and records it as one undo step.
func (s *Session) commit(next domain.Document) {
	s.doc = next
	s.history.Push(next)
}

// newID returns an id not used by any element of the live document.
func (s *Session) newID() string {
	for {
		id := s.cfg.NewID()
		if id != "" && s.doc.Index(id) < 0 {
			return id
		}
	}
}
