// Package backup writes and restores point-in-time copies of the grocery
// database, optionally encrypted with a passphrase.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Snapshot writes a consistent copy of db to dst. With a non-empty
// passphrase the copy is encrypted. dst must not already exist.
func Snapshot(ctx context.Context, db *sql.DB, dst, passphrase string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("snapshot: %s already exists", dst)
	}

	if passphrase == "" {
		if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
			return fmt.Errorf("vacuum into: %w", err)
		}
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "grocerylist-backup-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plain := filepath.Join(tmpDir, "snapshot.db")
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, plain); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}

	data, err := os.ReadFile(plain)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := seal(data, passphrase)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	if err := os.WriteFile(dst, sealed, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Restore replaces the database file at dbPath with the snapshot at src.
// The snapshot is decrypted when a passphrase is given and validated before
// anything is overwritten. The database must not be open while restoring.
func Restore(ctx context.Context, src, dbPath, passphrase string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if passphrase != "" {
		if data, err = open(data, passphrase); err != nil {
			return err
		}
	}

	staged := dbPath + ".restore"
	if err := os.WriteFile(staged, data, 0600); err != nil {
		return fmt.Errorf("stage restore: %w", err)
	}
	defer os.Remove(staged)

	if err := validate(ctx, staged); err != nil {
		return err
	}

	// Stale WAL files belong to the old database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", suffix, err)
		}
	}
	if err := os.Rename(staged, dbPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

// validate checks that path is a SQLite database holding the items table.
func validate(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'grocery_items'`,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("snapshot has no grocery_items table")
	}
	if err != nil {
		return fmt.Errorf("validate snapshot: %w", err)
	}
	return nil
}
