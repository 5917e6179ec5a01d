// Package store holds the SQLite-backed repositories and the transactional
// unit of work the services run their writes through.
package store

import "database/sql"

// DBTX is the slice of *sql.DB and *sql.Tx the stores use, so the same
// store code serves both plain reads and transactional writes.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
