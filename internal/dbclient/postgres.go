package dbclient

import (
	"fmt"

	"pagedesigner/internal/domain"

	_ "github.com/lib/pq"
)

// buildPostgresDSN constructs a Postgres connection string from a DataSource.
func buildPostgresDSN(src domain.DataSource, password string) string {
	port := src.Port
	if port == 0 {
		port = 5432
	}
	sslMode := src.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		src.Host, port, src.Username, password, src.Database, sslMode,
	)
}
