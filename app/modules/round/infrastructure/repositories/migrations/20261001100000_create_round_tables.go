package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating round tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS rounds (
					id UUID PRIMARY KEY,
					format TEXT NOT NULL,
					motion_id UUID,
					max_adjudicators INTEGER NOT NULL DEFAULT 1,
					status TEXT NOT NULL DEFAULT 'SETUP',
					round_code VARCHAR(6) NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT FALSE,
					created_by UUID NOT NULL REFERENCES users(id),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					started_at TIMESTAMPTZ,
					completed_at TIMESTAMPTZ,
					CONSTRAINT uq_rounds_round_code UNIQUE (round_code),
					CONSTRAINT chk_rounds_format CHECK (format IN ('ABP', 'PDA')),
					CONSTRAINT chk_rounds_status CHECK (status IN ('SETUP', 'ALLOCATION', 'ACTIVE', 'COMPLETED', 'TERMINATED')),
					CONSTRAINT chk_rounds_is_active CHECK (is_active = (status = 'ACTIVE')),
					CONSTRAINT chk_rounds_max_adjudicators CHECK (max_adjudicators >= 1),
					CONSTRAINT chk_rounds_round_code CHECK (round_code ~ '^[A-Z0-9]{6}$')
				)`,
				`CREATE INDEX IF NOT EXISTS idx_rounds_status ON rounds(status)`,
				`CREATE TABLE IF NOT EXISTS round_allocations (
					id UUID PRIMARY KEY,
					round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
					user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					role TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_round_allocations_round_user UNIQUE (round_id, user_id),
					CONSTRAINT uq_round_allocations_id_round UNIQUE (id, round_id),
					CONSTRAINT chk_round_allocations_role CHECK (role IS NULL OR role IN (
						'Prime Minister', 'Deputy Prime Minister', 'Leader of Opposition', 'Deputy Leader of Opposition',
						'Member of Government', 'Member of Opposition', 'Government Whip', 'Opposition Whip',
						'Chair Adjudicator', 'Panelist', 'Trainee', 'Spectator'
					))
				)`,
				`CREATE INDEX IF NOT EXISTS idx_round_allocations_user ON round_allocations(user_id)`,
				`CREATE TABLE IF NOT EXISTS round_results (
					id UUID PRIMARY KEY,
					round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
					winning_side TEXT NOT NULL,
					summary TEXT NOT NULL DEFAULT '',
					submitted_by UUID REFERENCES users(id) ON DELETE SET NULL,
					submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_round_results_round UNIQUE (round_id),
					CONSTRAINT uq_round_results_id_round UNIQUE (id, round_id),
					CONSTRAINT chk_round_results_winning_side CHECK (winning_side IN ('GOVERNMENT', 'OPPOSITION'))
				)`,
				`CREATE TABLE IF NOT EXISTS speaker_scores (
					id UUID PRIMARY KEY,
					round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
					result_id UUID,
					allocation_id UUID,
					score NUMERIC(4,1) NOT NULL,
					comments TEXT NOT NULL DEFAULT '',
					CONSTRAINT fk_speaker_scores_result FOREIGN KEY (result_id, round_id)
						REFERENCES round_results(id, round_id) ON DELETE CASCADE,
					CONSTRAINT fk_speaker_scores_allocation FOREIGN KEY (allocation_id, round_id)
						REFERENCES round_allocations(id, round_id) ON DELETE CASCADE,
					CONSTRAINT chk_speaker_scores_score CHECK (score >= 0 AND score <= 100)
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_speaker_scores_result_allocation
					ON speaker_scores(result_id, allocation_id)
					WHERE result_id IS NOT NULL AND allocation_id IS NOT NULL`,
			}
			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to create round tables: %w", err)
				}
			}
			fmt.Println("Round tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping round tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS speaker_scores;
			DROP TABLE IF EXISTS round_results;
			DROP TABLE IF EXISTS round_allocations;
			DROP TABLE IF EXISTS rounds;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop round tables: %w", err)
		}

		fmt.Println("Round tables dropped successfully!")
		return nil
	})
}
