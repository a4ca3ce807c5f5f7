package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagedesigner/internal/domain"
)

// ErrNotFound is returned when a layout or revision does not exist.
var ErrNotFound = errors.New("not found")

// LayoutStore implements domain.LayoutStore using SQLite.
type LayoutStore struct {
	db *DB
}

func NewLayoutStore(db *DB) *LayoutStore {
	return &LayoutStore{db: db}
}

func (s *LayoutStore) CreateLayout(l *domain.Layout) error {
	data, err := json.Marshal(l.Document)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	_, err = s.db.conn.Exec(
		`INSERT INTO layouts (id, name, document_json, element_count, page_width, page_height, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, string(data), len(l.Document.Elements), l.Document.Page.WidthMM, l.Document.Page.HeightMM, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create layout: %w", err)
	}
	return nil
}

func (s *LayoutStore) GetLayout(id string) (*domain.Layout, error) {
	l := &domain.Layout{}
	var docJSON string
	err := s.db.conn.QueryRow(
		`SELECT id, name, document_json, created_at, updated_at FROM layouts WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &docJSON, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get layout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	if err := json.Unmarshal([]byte(docJSON), &l.Document); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", id, err)
	}
	return l, nil
}

func (s *LayoutStore) ListLayouts() ([]domain.LayoutSummary, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, element_count, updated_at FROM layouts ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layouts []domain.LayoutSummary
	for rows.Next() {
		var l domain.LayoutSummary
		if err := rows.Scan(&l.ID, &l.Name, &l.ElementCount, &l.UpdatedAt); err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, rows.Err()
}

func (s *LayoutStore) UpdateLayout(l *domain.Layout) error {
	data, err := json.Marshal(l.Document)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	l.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE layouts SET name = ?, document_json = ?, element_count = ?, page_width = ?, page_height = ?, updated_at = ?
		 WHERE id = ?`,
		l.Name, string(data), len(l.Document.Elements), l.Document.Page.WidthMM, l.Document.Page.HeightMM, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update layout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update layout %s: %w", l.ID, ErrNotFound)
	}
	return nil
}

// DeleteLayout removes a layout together with its revisions.
func (s *LayoutStore) DeleteLayout(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM layout_revisions WHERE layout_id = ?`, id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	_, err := s.db.conn.Exec(`DELETE FROM layouts WHERE id = ?`, id)
	return err
}
