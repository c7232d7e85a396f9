package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	resultmigrations "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	var db *bun.DB

	cliApp := &cli.App{
		Name:  "bun",
		Usage: "manage the game result schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadDatabaseConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
			db = bun.NewDB(pgdb, pgdialect.New())
			return nil
		},
		After: func(*cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			newDBCommand(func() *migrate.Migrator {
				return migrate.NewMigrator(db, resultmigrations.Migrations)
			}),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newDBCommand(migrator func() *migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return migrator().Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					m := migrator()
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No new migrations to run")
						return nil
					}
					fmt.Printf("Migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					m := migrator()
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No groups to roll back")
						return nil
					}
					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator().CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "create_sql",
				Usage: "create up and down SQL migrations",
				Action: func(c *cli.Context) error {
					name := strings.Join(c.Args().Slice(), "_")
					files, err := migrator().CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					ms, err := migrator().MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("migrations: %s\n", ms)
					fmt.Printf("unapplied migrations: %s\n", ms.Unapplied())
					fmt.Printf("last migration group: %s\n", ms.LastGroup())
					return nil
				},
			},
		},
	}
}
