// package repositories provides the persistence layer over the local
// SQLite campaign history.
//
// Each repository implements models.Repository[T] for one entity type.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically increments and returns the next sequence number
// for the given table, using its companion <table>_sequence row.
//
// Sequences give campaigns the short human-readable numbers shown by
// `blastr history list` (e.g. #42); entity ids stay opaque.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
