package domain

import "time"

// Layout is a persisted Layout Document.
type Layout struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  Document  `json:"document"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LayoutSummary is a Layout without its document, for listings.
type LayoutSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ElementCount int       `json:"elementCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Revision is a document snapshot recorded on every save.
type Revision struct {
	ID        string    `json:"id"`
	LayoutID  string    `json:"layoutId"`
	Label     string    `json:"label"`
	Document  Document  `json:"document"`
	CreatedAt time.Time `json:"createdAt"`
}

type LayoutStore interface {
	CreateLayout(l *Layout) error
	GetLayout(id string) (*Layout, error)
	ListLayouts() ([]LayoutSummary, error)
	UpdateLayout(l *Layout) error
	DeleteLayout(id string) error
}

type RevisionStore interface {
	PushRevision(layoutID, label string, doc Document) (*Revision, error)
	ListRevisions(layoutID string) ([]Revision, error)
	GetRevision(id string) (*Revision, error)
	ClearLayout(layoutID string) error
}
