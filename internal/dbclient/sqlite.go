package dbclient

import (
	"pagedesigner/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector opens the SQLite file named by Host.
func newSQLiteConnector(src domain.DataSource) (*sqlConnector, error) {
	return newSQLConnector("sqlite", src.Host)
}
