package resultdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new game result repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Insert persists a new result and returns it with id and created_at populated.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, input GameResultInput) (*GameResult, error) {
	db = r.resolveDB(db)
	row := &GameResult{
		Username:     input.Username,
		WPM:          input.WPM,
		Accuracy:     input.Accuracy,
		RealAccuracy: input.RealAccuracy,
		Text:         input.Text,
	}
	_, err := db.NewInsert().
		Model(row).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game result: %w", err)
	}
	return row, nil
}

// Count returns the total number of stored results.
func (r *Impl) Count(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*GameResult)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count game results: %w", err)
	}
	return n, nil
}

// ListPage returns a window of results ordered by created_at then id, both descending.
func (r *Impl) ListPage(ctx context.Context, db bun.IDB, offset, limit int) ([]GameResult, error) {
	if offset < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}
	db = r.resolveDB(db)

	rows := make([]GameResult, 0, limit)
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}
	if rows == nil {
		rows = []GameResult{}
	}
	return rows, nil
}

// ListRecent returns up to limit of the newest results.
func (r *Impl) ListRecent(ctx context.Context, db bun.IDB, limit int) ([]GameResult, error) {
	return r.ListPage(ctx, db, 0, limit)
}
