package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/model"
)

func setupGroceryTestDB(t *testing.T) (*GroceryStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroceryStore(db), db
}

func strPtr(s string) *string { return &s }

func findItem(items []model.GroceryItem, id int64) *model.GroceryItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func TestSeedData(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	items, err := gs.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 seed items, got %d", len(items))
	}

	// Same created_at second, so newest id first.
	expected := []string{"Bread", "Eggs", "Milk"}
	for i, name := range expected {
		if items[i].Name != name {
			t.Errorf("items[%d].Name = %q, want %q", i, items[i].Name, name)
		}
		if items[i].Bought {
			t.Errorf("seed item %q should not be bought", name)
		}
		if items[i].Category != nil {
			t.Errorf("seed item %q category = %q, want nil", name, *items[i].Category)
		}
	}
}

func TestAddThenList(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, err := gs.Add(ctx, model.ItemInput{Name: "Apples", Quantity: 6, Category: strPtr("Produce")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := gs.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := findItem(items, id)
	if got == nil {
		t.Fatalf("added item %d not in list", id)
	}
	if got.Name != "Apples" {
		t.Errorf("name = %q, want %q", got.Name, "Apples")
	}
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}
	if got.Category == nil || *got.Category != "Produce" {
		t.Errorf("category = %v, want Produce", got.Category)
	}
	if got.Bought {
		t.Error("expected not bought")
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if items[0].ID != id {
		t.Errorf("newest item should be first, got id %d", items[0].ID)
	}
}

func TestAddBoughtAndDefaults(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, err := gs.Add(ctx, model.ItemInput{Name: "  Coffee  ", Quantity: 0, Category: strPtr("   "), Bought: true})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := gs.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Coffee" {
		t.Errorf("name = %q, want trimmed %q", got.Name, "Coffee")
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", got.Quantity)
	}
	if got.Category != nil {
		t.Errorf("blank category should be nil, got %q", *got.Category)
	}
	if !got.Bought {
		t.Error("expected bought from input")
	}
}

func TestAddEmptyName(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)

	_, err := gs.Add(context.Background(), model.ItemInput{Name: "   ", Quantity: 1})
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAddDuplicateName(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)

	_, err := gs.Add(context.Background(), model.ItemInput{Name: "Milk", Quantity: 2})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestFreshIDs(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id1, err := gs.Add(ctx, model.ItemInput{Name: "Rice"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := gs.Delete(ctx, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	id2, err := gs.Add(ctx, model.ItemInput{Name: "Rice"})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if id2 == id1 {
		t.Errorf("id %d was reused", id1)
	}
}

func TestToggleBought(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Butter", Quantity: 2, Category: strPtr("Dairy")})
	before, _ := gs.Get(ctx, id)

	for _, current := range []bool{false, true} {
		if err := gs.ToggleBought(ctx, id, current); err != nil {
			t.Fatalf("toggle(%v): %v", current, err)
		}
		items, err := gs.List(ctx, "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := findItem(items, id)
		if got.Bought != !current {
			t.Errorf("after toggle(%v) bought = %v, want %v", current, got.Bought, !current)
		}
		if got.Name != before.Name || got.Quantity != before.Quantity || *got.Category != *before.Category || !got.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("toggle changed other fields: before %+v after %+v", before, got)
		}
	}
}

func TestToggleBoughtUsesCallerValue(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Jam", Bought: true})

	// A stale caller thinking the item is unbought sets it to bought.
	if err := gs.ToggleBought(ctx, id, false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ := gs.Get(ctx, id)
	if !got.Bought {
		t.Error("expected bought to stay true")
	}
}

func TestFlip(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Tea"})

	if err := gs.Flip(ctx, id); err != nil {
		t.Fatalf("flip: %v", err)
	}
	got, _ := gs.Get(ctx, id)
	if !got.Bought {
		t.Error("expected bought after first flip")
	}

	if err := gs.Flip(ctx, id); err != nil {
		t.Fatalf("flip: %v", err)
	}
	got, _ = gs.Get(ctx, id)
	if got.Bought {
		t.Error("expected not bought after second flip")
	}
}

func TestUpdate(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Cheese", Quantity: 1, Bought: true})
	before, _ := gs.Get(ctx, id)

	if err := gs.Update(ctx, id, model.ItemInput{Name: "New Name", Quantity: 5, Category: strPtr("Cat")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, _ := gs.List(ctx, "")
	got := findItem(items, id)
	if got == nil {
		t.Fatal("updated item missing")
	}
	if got.Name != "New Name" || got.Quantity != 5 || got.Category == nil || *got.Category != "Cat" {
		t.Errorf("updated fields = %+v", got)
	}
	if !got.Bought {
		t.Error("update must not change bought")
	}
	if !got.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at changed from %v to %v", before.CreatedAt, got.CreatedAt)
	}
}

func TestUpdateClearsCategory(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Salt", Category: strPtr("Pantry")})
	if err := gs.Update(ctx, id, model.ItemInput{Name: "Salt", Quantity: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := gs.Get(ctx, id)
	if got.Category != nil {
		t.Errorf("expected nil category, got %q", *got.Category)
	}
}

func TestUpdateMissingIsNoop(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	if err := gs.Update(ctx, 9999, model.ItemInput{Name: "Ghost", Quantity: 1}); err != nil {
		t.Fatalf("update missing: %v", err)
	}
	items, _ := gs.List(ctx, "Ghost")
	if len(items) != 0 {
		t.Errorf("expected no rows, got %d", len(items))
	}
}

func TestUpdateValidation(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Flour"})

	if err := gs.Update(ctx, id, model.ItemInput{Name: ""}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if err := gs.Update(ctx, id, model.ItemInput{Name: "Milk"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	id, _ := gs.Add(ctx, model.ItemInput{Name: "Oats"})

	if err := gs.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ := gs.List(ctx, "")
	if findItem(items, id) != nil {
		t.Error("deleted item still listed")
	}

	if err := gs.Delete(ctx, id); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)

	got, err := gs.Get(context.Background(), 9999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestListFilter(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	rye, _ := gs.Add(ctx, model.ItemInput{Name: "Rye bread"})
	gs.Add(ctx, model.ItemInput{Name: "Butter"})
	rolls, _ := gs.Add(ctx, model.ItemInput{Name: "Breadsticks"})

	items, err := gs.List(ctx, "bread")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(items), items)
	}
	// Newest first: Breadsticks, Rye bread, then seeded Bread.
	if items[0].ID != rolls || items[1].ID != rye || items[2].Name != "Bread" {
		t.Errorf("unexpected order: %q, %q, %q", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestListFilterLiteralWildcards(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	gs.Add(ctx, model.ItemInput{Name: "100% juice"})
	gs.Add(ctx, model.ItemInput{Name: "1000 island"})

	items, err := gs.List(ctx, "100%")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "100% juice" {
		t.Errorf("expected only literal match, got %+v", items)
	}

	items, _ = gs.List(ctx, "_")
	if len(items) != 0 {
		t.Errorf("underscore should match literally, got %d items", len(items))
	}
}

func TestListNoMatchIsEmptyNotNil(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)

	items, err := gs.List(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestClearBoughtAndSummary(t *testing.T) {
	gs, _ := setupGroceryTestDB(t)
	ctx := context.Background()

	gs.Add(ctx, model.ItemInput{Name: "Soap", Bought: true})
	gs.Add(ctx, model.ItemInput{Name: "Sponge", Bought: true})

	sum, err := gs.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 5 || sum.Bought != 2 {
		t.Errorf("summary = %+v, want total 5 bought 2", sum)
	}

	n, err := gs.ClearBought(ctx)
	if err != nil {
		t.Fatalf("clear bought: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}

	sum, _ = gs.Summary(ctx)
	if sum.Total != 3 || sum.Bought != 0 {
		t.Errorf("summary after clear = %+v, want total 3 bought 0", sum)
	}
}
