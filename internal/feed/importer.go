package feed

import (
	"context"
	"log/slog"

	"github.com/dukerupert/grocerylist/internal/model"
)

// Fetcher returns the remote list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Todo, error)
}

// BatchImporter inserts records atomically and reports how many were new.
type BatchImporter interface {
	Import(ctx context.Context, records []model.ImportRecord) (int, error)
}

// Result summarises one import run.
type Result struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Importer fetches the remote list and hands it to the store.
type Importer struct {
	fetcher Fetcher
	store   BatchImporter
	logger  *slog.Logger
}

func NewImporter(f Fetcher, s BatchImporter, logger *slog.Logger) *Importer {
	return &Importer{fetcher: f, store: s, logger: logger}
}

// Run fetches, maps and imports. A fetch failure returns before the store is
// touched.
func (im *Importer) Run(ctx context.Context) (Result, error) {
	todos, err := im.fetcher.Fetch(ctx)
	if err != nil {
		im.logger.Error("fetch remote list", "error", err)
		return Result{}, err
	}

	inserted, err := im.store.Import(ctx, ToRecords(todos))
	if err != nil {
		im.logger.Error("import batch", "records", len(todos), "error", err)
		return Result{Fetched: len(todos)}, err
	}

	res := Result{
		Fetched:  len(todos),
		Inserted: inserted,
		Skipped:  len(todos) - inserted,
	}
	im.logger.Info("import complete", "fetched", res.Fetched, "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}
