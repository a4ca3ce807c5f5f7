// Package history keeps a bounded linear undo/redo list of document
// snapshots.
package history

import "pagedesigner/internal/domain"

// DefaultMaxDepth is the number of snapshots kept when none is configured.
const DefaultMaxDepth = 50

// History stores committed document states. The entry at the current index
// is always the live state, so stepping back one entry yields the state
// before the last mutation.
type History struct {
	states  []domain.Document
	current int
	max     int
}

// New creates a history holding initial as its only entry.
func New(max int, initial domain.Document) *History {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	h := &History{max: max}
	h.Reset(initial)
	return h
}

// Reset discards every entry and starts over from doc. Used on every load;
// there is no undo past a fresh load.
func (h *History) Reset(doc domain.Document) {
	h.states = append(h.states[:0:0], doc.Clone())
	h.current = 0
}

// Push records doc as the newest state. Entries after the current index
// are dropped first; when the list exceeds the maximum depth the oldest
// entry goes.
func (h *History) Push(doc domain.Document) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}
	h.states = append(h.states, doc.Clone())
	if len(h.states) > h.max {
		h.states = h.states[len(h.states)-h.max:]
	}
	h.current = len(h.states) - 1
}

// CanUndo reports whether an older entry exists.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo reports whether a newer entry exists.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo steps back one entry and returns a copy of it.
func (h *History) Undo() (domain.Document, bool) {
	if !h.CanUndo() {
		return domain.Document{}, false
	}
	h.current--
	return h.states[h.current].Clone(), true
}

// Redo steps forward one entry and returns a copy of it.
func (h *History) Redo() (domain.Document, bool) {
	if !h.CanRedo() {
		return domain.Document{}, false
	}
	h.current++
	return h.states[h.current].Clone(), true
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.states)
}

// Index returns the position of the live entry.
func (h *History) Index() int {
	return h.current
}

// Stats returns the 1-based current position and the total entry count.
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
