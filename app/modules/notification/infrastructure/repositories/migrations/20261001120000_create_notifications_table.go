package notificationmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating notifications table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS notifications (
				id UUID PRIMARY KEY,
				recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				event_id UUID,
				type TEXT NOT NULL,
				message TEXT NOT NULL,
				link VARCHAR(255),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				read BOOLEAN NOT NULL DEFAULT FALSE,
				delivered_at TIMESTAMPTZ,
				CONSTRAINT chk_notifications_type CHECK (type IN (
					'ROUND_START', 'ROUND_END', 'ROLE_ASSIGNED', 'RESULTS_AVAILABLE', 'SYSTEM', 'ROUND_JOIN'
				))
			);
			CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created ON notifications(recipient_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(recipient_id) WHERE read = FALSE;
			CREATE UNIQUE INDEX IF NOT EXISTS uq_notifications_event_recipient ON notifications(event_id, recipient_id);
		`)
		if err != nil {
			return fmt.Errorf("failed to create notifications table: %w", err)
		}

		fmt.Println("Notifications table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping notifications table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS notifications;`); err != nil {
			return fmt.Errorf("failed to drop notifications table: %w", err)
		}

		fmt.Println("Notifications table dropped successfully!")
		return nil
	})
}
