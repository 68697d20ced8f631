package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/Black-And-White-Club/debate-rounds/config"
	"github.com/Black-And-White-Club/debate-rounds/db/bundb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "migrate",
		Usage: "database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*config.Config, *bun.DB, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	return cfg, bundb.BunDB(pgdb), nil
}

// forEach runs fn per module in bundb.ModuleOrder, or in reverse for rollbacks.
func forEach(c *cli.Context, reverse bool, fn func(name string, m *migrate.Migrator) error) error {
	_, db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	migrators := bundb.NewMigrators(db)
	order := append([]string{}, bundb.ModuleOrder...)
	if reverse {
		slices.Reverse(order)
	}
	for _, name := range order {
		if err := fn(name, migrators[name]); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	return nil
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "module schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return forEach(c, false, func(name string, m *migrate.Migrator) error {
						fmt.Printf("Initializing migrations for module: %s\n", name)
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return forEach(c, false, func(name string, m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module",
				Action: func(c *cli.Context) error {
					return forEach(c, true, func(name string, m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return createMigration(c, func(m *migrate.Migrator, name string) ([]*migrate.MigrationFile, error) {
						mf, err := m.CreateGoMigration(c.Context, name)
						if err != nil {
							return nil, err
						}
						return []*migrate.MigrationFile{mf}, nil
					})
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return createMigration(c, func(m *migrate.Migrator, name string) ([]*migrate.MigrationFile, error) {
						return m.CreateSQLMigrations(c.Context, name)
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return forEach(c, false, func(name string, m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}

func createMigration(c *cli.Context, create func(m *migrate.Migrator, name string) ([]*migrate.MigrationFile, error)) error {
	moduleName := c.Args().First()
	_, db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, ok := bundb.NewMigrators(db)[moduleName]
	if !ok {
		return fmt.Errorf("invalid module name: %q (want one of %s)", moduleName, strings.Join(bundb.ModuleOrder, ", "))
	}

	name := strings.Join(c.Args().Tail(), "_")
	files, err := create(migrator, name)
	if err != nil {
		return err
	}
	for _, mf := range files {
		fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
	}
	return nil
}

// newRiverCommand applies River's own schema, needed when the queue is enabled.
func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "River queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply River migrations",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(c.Context, rivermigrate.DirectionUp, nil)
						if err != nil {
							return err
						}
						for _, v := range res.Versions {
							fmt.Printf("Applied River migration %03d %s\n", v.Version, v.Name)
						}
						if len(res.Versions) == 0 {
							fmt.Println("River schema is up to date")
						}
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last River migration",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(c.Context, rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: 1})
						if err != nil {
							return err
						}
						for _, v := range res.Versions {
							fmt.Printf("Rolled back River migration %03d %s\n", v.Version, v.Name)
						}
						return nil
					})
				},
			},
		},
	}
}

func withRiverMigrator(c *cli.Context, fn func(m *rivermigrate.Migrator[pgx.Tx]) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	pool, err := pgxpool.New(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	return fn(migrator)
}
