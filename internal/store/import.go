package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/metrics"
	"github.com/dukerupert/grocerylist/internal/model"
)

// Import inserts records in one transaction. Names that already exist, in the
// table or earlier in the batch, are skipped. Blank names are skipped too.
// Any other failure rolls back the whole batch and is returned wrapped in
// ErrImportFailed. It returns the number of rows inserted.
func (s *GroceryStore) Import(ctx context.Context, records []model.ImportRecord) (inserted int, err error) {
	defer func() {
		metrics.Observe(metrics.StoreImport, err)
		if err == nil {
			metrics.ImportedItems.WithLabelValues("inserted").Add(float64(inserted))
			metrics.ImportedItems.WithLabelValues("skipped").Add(float64(len(records) - inserted))
		}
	}()

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO grocery_items (name, bought) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			name := strings.TrimSpace(rec.Name)
			if name == "" {
				continue
			}
			result, err := stmt.ExecContext(ctx, name, boolToInt(rec.Bought))
			if err != nil {
				return fmt.Errorf("insert %q: %w", name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	return inserted, nil
}
