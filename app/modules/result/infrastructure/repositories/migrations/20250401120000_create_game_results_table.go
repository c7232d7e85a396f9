package resultmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_results (
					id BIGSERIAL PRIMARY KEY,
					username TEXT NOT NULL,
					wpm DOUBLE PRECISION NOT NULL,
					accuracy DOUBLE PRECISION NOT NULL,
					real_accuracy DOUBLE PRECISION NOT NULL,
					text TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
				);
				CREATE INDEX IF NOT EXISTS idx_game_results_created_at_id
					ON game_results (created_at DESC, id DESC);
			`); err != nil {
				return fmt.Errorf("failed to create game_results table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_game_results_created_at_id;
				DROP TABLE IF EXISTS game_results;
			`); err != nil {
				return fmt.Errorf("failed to drop game_results table: %w", err)
			}
			return nil
		})
	})
}
