package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pagedesigner/internal/domain"
)

// MaxRevisions is the number of revisions kept per layout.
const MaxRevisions = 40

// RevisionStore keeps saved snapshots of each layout in SQLite.
type RevisionStore struct {
	db  *DB
	max int
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db, max: MaxRevisions}
}

// PushRevision records doc as the newest revision of a layout and prunes the
// oldest ones beyond the limit.
func (s *RevisionStore) PushRevision(layoutID, label string, doc domain.Document) (*domain.Revision, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode revision: %w", err)
	}
	rev := &domain.Revision{
		ID:        uuid.NewString(),
		LayoutID:  layoutID,
		Label:     label,
		Document:  doc.Clone(),
		CreatedAt: time.Now(),
	}
	_, err = s.db.Conn().Exec(
		`INSERT INTO layout_revisions (id, layout_id, label, document_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rev.ID, rev.LayoutID, rev.Label, string(data), rev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	s.pruneIfNeeded(layoutID)
	return rev, nil
}

// ListRevisions returns a layout's revisions, newest first.
func (s *RevisionStore) ListRevisions(layoutID string) ([]domain.Revision, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, layout_id, label, document_json, created_at
		 FROM layout_revisions WHERE layout_id = ? ORDER BY created_at DESC, rowid DESC`, layoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	defer rows.Close()

	var revs []domain.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, *rev)
	}
	return revs, rows.Err()
}

func (s *RevisionStore) GetRevision(id string) (*domain.Revision, error) {
	row := s.db.Conn().QueryRow(
		`SELECT id, layout_id, label, document_json, created_at
		 FROM layout_revisions WHERE id = ?`, id,
	)
	rev, err := scanRevision(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get revision %s: %w", id, ErrNotFound)
	}
	return rev, err
}

// ClearLayout removes all revisions of a layout.
func (s *RevisionStore) ClearLayout(layoutID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM layout_revisions WHERE layout_id = ?`, layoutID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(sc scanner) (*domain.Revision, error) {
	var rev domain.Revision
	var docJSON string
	if err := sc.Scan(&rev.ID, &rev.LayoutID, &rev.Label, &docJSON, &rev.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan revision: %w", err)
	}
	if err := json.Unmarshal([]byte(docJSON), &rev.Document); err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", rev.ID, err)
	}
	return &rev, nil
}

// pruneIfNeeded removes the oldest revisions when a layout has more than
// the limit.
func (s *RevisionStore) pruneIfNeeded(layoutID string) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM layout_revisions WHERE layout_id = ?`, layoutID).Scan(&count)
	if count <= s.max {
		return
	}

	// Collect IDs first; a single connection cannot write with a cursor open
	rows, err := s.db.Conn().Query(
		`SELECT id FROM layout_revisions WHERE layout_id = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, layoutID, count-s.max,
	)
	if err != nil {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		s.db.Conn().Exec(`DELETE FROM layout_revisions WHERE id = ?`, id)
	}
}
