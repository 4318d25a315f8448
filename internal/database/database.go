package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrStoreUnavailable wraps every failure to open, migrate or seed the store.
var ErrStoreUnavailable = errors.New("store unavailable")

const memoryPath = ":memory:"

// seedItems are inserted once into an empty store so a fresh install does not
// start with a blank list.
var seedItems = []struct {
	name     string
	quantity int
}{
	{"Milk", 1},
	{"Eggs", 12},
	{"Bread", 1},
}

// Open opens the SQLite database at dbPath, runs migrations and seeds default
// items into an empty table. The returned handle is meant to be opened once
// at startup and shared.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrStoreUnavailable, err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping db: %w", ErrStoreUnavailable, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %w", ErrStoreUnavailable, err)
	}

	if err := seed(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: seed: %w", ErrStoreUnavailable, err)
	}

	return db, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func seed(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM grocery_items`).Scan(&count); err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, s := range seedItems {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO grocery_items (name, quantity) VALUES (?, ?)`,
				s.name, s.quantity,
			); err != nil {
				return fmt.Errorf("insert seed %q: %w", s.name, err)
			}
		}
		return nil
	})
}
