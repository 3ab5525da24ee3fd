package repository

import (
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so every repository can
// run inside a transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Dates are stored as YYYY-MM-DD text so SQLite never turns them into timestamps.
func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return d, nil
}
