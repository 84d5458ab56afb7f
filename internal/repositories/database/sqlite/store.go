// Package sqlite implements the event log and the analytics read model on an
// embedded SQLite database using the pure-Go modernc driver.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NewRepositoryProvider wires both stores onto one database handle.
// The schema must already be migrated.
func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EventStore:    NewEventRepository(db),
		AnalyticsRepo: NewAnalyticsRepository(db),
	}
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
