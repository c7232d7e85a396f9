package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/Black-And-White-Club/typer-master/db/bundb"
	"github.com/Black-And-White-Club/typer-master/integration_tests/containers"
)

// TestEnvironment holds a migrated Postgres database for integration tests.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	DB            *bun.DB
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and applies every migration.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := bundb.Migrate(ctx, db, logger); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		PgContainer:   pgContainer,
		DB:            db,
		Config: &config.Config{
			HTTP:     config.HTTPConfig{RateLimitRPS: 1000, RateLimitBurst: 1000},
			Postgres: config.PostgresConfig{DSN: pgConnStr},
		},
		Logger: logger,
	}, nil
}

// Reset empties every table and restarts the id sequence.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if _, err := env.DB.ExecContext(env.Ctx, "TRUNCATE TABLE game_results RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}

// Cleanup releases the database and stops the container.
func (env *TestEnvironment) Cleanup() {
	if env.DB != nil {
		env.DB.Close()
	}
	if env.PgContainer != nil {
		env.PgContainer.Terminate(context.Background())
	}
	env.CancelContext()
}
