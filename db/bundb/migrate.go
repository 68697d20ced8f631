package bundb

import (
	"context"
	"fmt"

	activitymigrations "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/infrastructure/repositories/migrations"
	notificationmigrations "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/repositories/migrations"
	roundmigrations "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/debate-rounds/app/modules/user/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleOrder is the order module migrations apply in. Rounds reference
// users, so user comes first.
var ModuleOrder = []string{"user", "round", "activity", "notification"}

// NewMigrators returns one migrator per module. Each keeps its own
// bookkeeping tables so per-module migration groups never collide.
func NewMigrators(db *bun.DB) map[string]*migrate.Migrator {
	opts := func(module string) []migrate.MigratorOption {
		return []migrate.MigratorOption{
			migrate.WithTableName("bun_migrations_" + module),
			migrate.WithLocksTableName("bun_migration_locks_" + module),
		}
	}
	return map[string]*migrate.Migrator{
		"user":         migrate.NewMigrator(db, usermigrations.Migrations, opts("user")...),
		"round":        migrate.NewMigrator(db, roundmigrations.Migrations, opts("round")...),
		"activity":     migrate.NewMigrator(db, activitymigrations.Migrations, opts("activity")...),
		"notification": migrate.NewMigrator(db, notificationmigrations.Migrations, opts("notification")...),
	}
}

// MigrateAll initialises and applies every module's migrations in ModuleOrder.
func MigrateAll(ctx context.Context, db *bun.DB) error {
	migrators := NewMigrators(db)
	for _, name := range ModuleOrder {
		m := migrators[name]
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", name, err)
		}
		if _, err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("apply %s migrations: %w", name, err)
		}
	}
	return nil
}
