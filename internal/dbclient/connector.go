package dbclient

import (
	"context"
	"errors"
	"fmt"

	"pagedesigner/internal/domain"
)

// ErrNoRecord is returned when a query matches nothing.
var ErrNoRecord = errors.New("query returned no record")

// ErrNotReadQuery is returned for SQL that would modify the database.
var ErrNotReadQuery = errors.New("only read queries are allowed")

// Record is one row or document flattened to display strings, keyed by
// column name or dotted field path.
type Record map[string]string

// Connector fetches binding values from an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// FetchRecord runs query and returns its first row or document.
	FetchRecord(ctx context.Context, query string) (Record, error)

	// Close closes the connection.
	Close() error
}

// NewConnector creates a Connector for the given data source.
// The password must be provided separately (from SecretStore).
func NewConnector(src domain.DataSource, password string) (Connector, error) {
	switch src.Driver {
	case domain.DataSourceSQLite:
		return newSQLiteConnector(src)
	case domain.DataSourceMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(src, password))
	case domain.DataSourcePostgres:
		return newSQLConnector("postgres", buildPostgresDSN(src, password))
	case domain.DataSourceMongoDB:
		return newMongoConnector(src, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", src.Driver)
	}
}
