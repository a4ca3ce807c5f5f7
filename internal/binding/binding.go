// Package binding resolves element data keys to values and substitutes
// them into a document for preview and export.
package binding

import (
	"context"
	"fmt"
	"log"
	"sort"

	"pagedesigner/internal/dbclient"
	"pagedesigner/internal/domain"
	"pagedesigner/internal/secret"
)

// Values maps data keys to display values.
type Values map[string]string

// Resolver looks up values for data keys. Keys without a value are absent
// from the result.
type Resolver interface {
	Resolve(ctx context.Context, keys []string) (Values, error)
}

// Static resolves from a fixed map.
type Static Values

func (s Static) Resolve(_ context.Context, keys []string) (Values, error) {
	out := make(Values, len(keys))
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Record returns the whole map.
func (s Static) Record(_ context.Context) (dbclient.Record, error) {
	rec := make(dbclient.Record, len(s))
	for k, v := range s {
		rec[k] = v
	}
	return rec, nil
}

// Recorder exposes the full record behind a resolver, for the data palette.
type Recorder interface {
	Record(ctx context.Context) (dbclient.Record, error)
}

// ConnectFunc opens a connector for a data source.
type ConnectFunc func(src domain.DataSource, password string) (dbclient.Connector, error)

// SourceResolver resolves keys from the first record of a data source query.
// Columns or document fields are the keys.
type SourceResolver struct {
	src     domain.DataSource
	secrets secret.SecretStore
	connect ConnectFunc
}

// NewSourceResolver creates a resolver for src. secrets may be nil when the
// source needs no password.
func NewSourceResolver(src domain.DataSource, secrets secret.SecretStore) *SourceResolver {
	return &SourceResolver{src: src, secrets: secrets, connect: dbclient.NewConnector}
}

func (r *SourceResolver) Resolve(ctx context.Context, keys []string) (Values, error) {
	rec, err := r.Record(ctx)
	if err != nil {
		return nil, err
	}
	return Static(rec).Resolve(ctx, keys)
}

// Record fetches the whole record behind the data source.
func (r *SourceResolver) Record(ctx context.Context) (dbclient.Record, error) {
	if !r.src.Enabled() {
		return nil, fmt.Errorf("data source not configured")
	}
	var password string
	if r.src.PasswordKey != "" && r.secrets != nil {
		pw, err := r.secrets.Get(r.src.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("read data source password: %w", err)
		}
		password = string(pw)
	}

	conn, err := r.connect(r.src, password)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", r.src.Driver, err)
	}
	defer conn.Close()

	rec, err := conn.FetchRecord(ctx, r.src.Query)
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}
	log.Printf("[binding] fetched %d fields from %s", len(rec), r.src.Driver)
	return rec, nil
}

// Keys returns the distinct data keys used in doc, in sequence order.
func Keys(doc domain.Document) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, el := range doc.Elements {
		k := el.DataKey()
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Apply returns a copy of doc with bound values substituted: a text element
// shows the value of its key, a signature image takes the value as its
// source. Elements whose key has no value are unchanged.
func Apply(doc domain.Document, values Values) domain.Document {
	out := doc.Clone()
	for i, el := range out.Elements {
		switch b := el.Body.(type) {
		case domain.TextBody:
			if v, ok := values[b.DataKey]; ok && b.DataKey != "" {
				b.Content = v
				out.Elements[i].Body = b
			}
		case domain.ImageBody:
			if v, ok := values[b.DataKey]; ok && IsSignatureKey(b.DataKey) {
				b.Src = v
				out.Elements[i].Body = b
			}
		}
	}
	return out
}

// IsSignatureKey reports whether key names one of the signature slots.
func IsSignatureKey(key string) bool {
	return key == domain.SignatureKey1 || key == domain.SignatureKey2
}

// SignatureLabel is the placeholder caption for an empty signature image.
func SignatureLabel(key string) string {
	switch key {
	case domain.SignatureKey1:
		return "Signature 1"
	case domain.SignatureKey2:
		return "Signature 2"
	}
	return ""
}

// PaletteItem is one draggable entry of the data palette.
type PaletteItem struct {
	DataKey string `json:"dataKey"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// Palette lists a record as palette items sorted by key.
func Palette(rec map[string]string) []PaletteItem {
	items := make([]PaletteItem, 0, len(rec))
	for k, v := range rec {
		items = append(items, PaletteItem{DataKey: k, Label: k, Value: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DataKey < items[j].DataKey })
	return items
}
