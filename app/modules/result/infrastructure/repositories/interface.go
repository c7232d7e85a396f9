package resultdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for game result persistence.
// A nil db falls back to the repository's own connection.
type Repository interface {
	// Insert persists a new result; id and created_at are assigned by the database.
	Insert(ctx context.Context, db bun.IDB, input GameResultInput) (*GameResult, error)

	// Count returns the number of stored results.
	Count(ctx context.Context, db bun.IDB) (int, error)

	// ListPage returns results newest first, ties broken by id.
	ListPage(ctx context.Context, db bun.IDB, offset, limit int) ([]GameResult, error)

	// ListRecent returns up to limit of the newest results.
	ListRecent(ctx context.Context, db bun.IDB, limit int) ([]GameResult, error)
}
