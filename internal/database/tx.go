package database

import (
	"context"
	"database/sql"
)

// WithTx begins a transaction, runs fn inside it and commits. Any error
// returned by fn, or a panic, rolls the transaction back; the error is
// returned unchanged and the panic is re-raised.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
