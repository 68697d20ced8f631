package activitymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating activity_logs table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS activity_logs (
				id BIGSERIAL PRIMARY KEY,
				user_id UUID NOT NULL,
				round_id UUID NOT NULL,
				role TEXT NOT NULL DEFAULT '',
				action TEXT NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT chk_activity_logs_action CHECK (action IN ('joined', 'allocated', 'completed'))
			);
			CREATE INDEX IF NOT EXISTS idx_activity_logs_round ON activity_logs(round_id);
			CREATE INDEX IF NOT EXISTS idx_activity_logs_user_timestamp ON activity_logs(user_id, timestamp DESC);
		`)
		if err != nil {
			return fmt.Errorf("failed to create activity_logs table: %w", err)
		}

		fmt.Println("Activity logs table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping activity_logs table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS activity_logs;`); err != nil {
			return fmt.Errorf("failed to drop activity_logs table: %w", err)
		}

		fmt.Println("Activity logs table dropped successfully!")
		return nil
	})
}
