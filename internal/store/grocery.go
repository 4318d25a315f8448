package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/grocerylist/internal/metrics"
	"github.com/dukerupert/grocerylist/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var category sql.NullString
	var bought int
	var createdAt int64

	err := scanner.Scan(&item.ID, &item.Name, &item.Quantity, &category, &bought, &createdAt)
	if err != nil {
		return nil, err
	}

	item.Bought = bought != 0
	item.CreatedAt = time.Unix(createdAt, 0).UTC()
	if category.Valid {
		item.Category = &category.String
	}
	return &item, nil
}

const itemCols = `id, name, quantity, category, bought, created_at`

// likeEscaper makes LIKE wildcards in a search filter match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns items newest first. A non-empty filter keeps only items whose
// name contains it (ASCII case-insensitive).
func (s *GroceryStore) List(ctx context.Context, filter string) (items []model.GroceryItem, err error) {
	defer func() { metrics.Observe(metrics.StoreList, err) }()

	query := `SELECT ` + itemCols + ` FROM grocery_items`
	var args []any
	if filter != "" {
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(filter)+"%")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items = []model.GroceryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *GroceryStore) Get(ctx context.Context, id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM grocery_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// normalize trims the name, defaults the quantity and drops blank categories.
func normalize(in model.ItemInput) (name string, quantity int, category sql.NullString, err error) {
	name = strings.TrimSpace(in.Name)
	if name == "" {
		return "", 0, category, ErrEmptyName
	}
	quantity = in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if in.Category != nil {
		if c := strings.TrimSpace(*in.Category); c != "" {
			category = sql.NullString{String: c, Valid: true}
		}
	}
	return name, quantity, category, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Add inserts a new item and returns its id. A name that already exists
// fails with ErrDuplicateName.
func (s *GroceryStore) Add(ctx context.Context, in model.ItemInput) (id int64, err error) {
	defer func() { metrics.Observe(metrics.StoreAdd, err) }()

	name, quantity, category, err := normalize(in)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO grocery_items (name, quantity, category, bought) VALUES (?, ?, ?, ?)`,
		name, quantity, category, boolToInt(in.Bought),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert item %q: %w", name, ErrDuplicateName)
		}
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Update overwrites name, quantity and category. Bought and created_at are
// left alone. An unknown id changes nothing and is not an error.
func (s *GroceryStore) Update(ctx context.Context, id int64, in model.ItemInput) (err error) {
	defer func() { metrics.Observe(metrics.StoreUpdate, err) }()

	name, quantity, category, err := normalize(in)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE grocery_items SET name = ?, quantity = ?, category = ? WHERE id = ?`,
		name, quantity, category, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update item %q: %w", name, ErrDuplicateName)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ToggleBought sets bought to the opposite of the caller's current value.
// It does not re-read the row; use Flip when the caller's view may be stale.
func (s *GroceryStore) ToggleBought(ctx context.Context, id int64, current bool) (err error) {
	defer func() { metrics.Observe(metrics.StoreToggle, err) }()

	_, err = s.db.ExecContext(ctx,
		`UPDATE grocery_items SET bought = ? WHERE id = ?`,
		boolToInt(!current), id,
	)
	if err != nil {
		return fmt.Errorf("toggle bought: %w", err)
	}
	return nil
}

// Flip inverts bought in a single statement.
func (s *GroceryStore) Flip(ctx context.Context, id int64) (err error) {
	defer func() { metrics.Observe(metrics.StoreToggle, err) }()

	_, err = s.db.ExecContext(ctx, `UPDATE grocery_items SET bought = 1 - bought WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("flip bought: %w", err)
	}
	return nil
}

func (s *GroceryStore) Delete(ctx context.Context, id int64) (err error) {
	defer func() { metrics.Observe(metrics.StoreDelete, err) }()

	_, err = s.db.ExecContext(ctx, `DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ClearBought deletes every bought item and returns how many were removed.
func (s *GroceryStore) ClearBought(ctx context.Context) (count int64, err error) {
	defer func() { metrics.Observe(metrics.StoreDelete, err) }()

	result, err := s.db.ExecContext(ctx, `DELETE FROM grocery_items WHERE bought = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear bought: %w", err)
	}
	count, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *GroceryStore) Summary(ctx context.Context) (model.Summary, error) {
	var sum model.Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(bought), 0) FROM grocery_items`,
	).Scan(&sum.Total, &sum.Bought)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return sum, nil
}
