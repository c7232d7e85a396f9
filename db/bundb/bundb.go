package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	resultmigrations "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// DBService owns the connection pool and the repositories built on it.
type DBService struct {
	ResultDB resultdb.Repository
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close releases the pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService opens and pings the pool described by cfg.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bunDB(sqldb)
	db.RegisterModel((*resultdb.GameResult)(nil))

	return &DBService{
		ResultDB: resultdb.NewRepository(db),
		db:       db,
	}, nil
}

// Migrate applies every pending result migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator := migrate.NewMigrator(db, resultmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to unlock migrations", slog.String("error", err.Error()))
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "No new migrations to run")
		return nil
	}
	logger.InfoContext(ctx, "Applied migrations", slog.String("group", group.String()))
	return nil
}

func bunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
