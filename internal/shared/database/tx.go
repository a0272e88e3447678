package database

import (
	"database/sql"
	"fmt"
)

// Transact runs fn inside a transaction. The transaction commits only when
// fn returns nil; any error rolls it back and is returned unchanged so
// callers can match store sentinels with errors.Is.
//
// Domain events must be published only after Transact returns nil, never
// from inside fn: fn's writes are not durable until commit, and notifying
// consumers of state that may never materialise is forbidden.
func Transact(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
