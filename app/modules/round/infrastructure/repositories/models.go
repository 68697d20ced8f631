package rounddb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Round is the rounds row.
type Round struct {
	bun.BaseModel   `bun:"table:rounds,alias:r"`
	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	Format          string     `bun:"format,notnull"`
	MotionID        *uuid.UUID `bun:"motion_id,type:uuid"`
	MaxAdjudicators int        `bun:"max_adjudicators,notnull"`
	Status          string     `bun:"status,notnull"`
	RoundCode       string     `bun:"round_code,notnull"`
	IsActive        bool       `bun:"is_active,notnull"`
	CreatedBy       uuid.UUID  `bun:"created_by,type:uuid,notnull"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	StartedAt       *time.Time `bun:"started_at"`
	CompletedAt     *time.Time `bun:"completed_at"`
}

// Allocation is the round_allocations row. Role is NULL until allocated.
type Allocation struct {
	bun.BaseModel `bun:"table:round_allocations,alias:ra"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	RoundID       uuid.UUID `bun:"round_id,type:uuid,notnull"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull"`
	Role          string    `bun:"role,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Username string `bun:"username,scanonly"`
}

// Result is the round_results row.
type Result struct {
	bun.BaseModel `bun:"table:round_results,alias:rr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	RoundID       uuid.UUID  `bun:"round_id,type:uuid,notnull"`
	WinningSide   string     `bun:"winning_side,notnull"`
	Summary       string     `bun:"summary,notnull"`
	SubmittedBy   *uuid.UUID `bun:"submitted_by,type:uuid"`
	SubmittedAt   time.Time  `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`

	SubmitterUsername string `bun:"submitter_username,scanonly"`
}

// SpeakerScore is the speaker_scores row. RoundID ties result and allocation
// to the same round through composite foreign keys.
type SpeakerScore struct {
	bun.BaseModel `bun:"table:speaker_scores,alias:ss"`
	ID            uuid.UUID       `bun:"id,pk,type:uuid"`
	RoundID       uuid.UUID       `bun:"round_id,type:uuid,notnull"`
	ResultID      *uuid.UUID      `bun:"result_id,type:uuid"`
	AllocationID  *uuid.UUID      `bun:"allocation_id,type:uuid"`
	Score         decimal.Decimal `bun:"score,type:numeric(4,1),notnull"`
	Comments      string          `bun:"comments,notnull"`
}

// ScoreDetail is a speaker score joined with the speaker it belongs to.
type ScoreDetail struct {
	UserID   uuid.UUID       `bun:"user_id"`
	Username string          `bun:"username"`
	Role     string          `bun:"role"`
	Score    decimal.Decimal `bun:"score"`
	Comments string          `bun:"comments"`
}

// Participant is a distinct user holding an allocation.
type Participant struct {
	UserID   uuid.UUID `bun:"user_id"`
	Username string    `bun:"username"`
	Role     string    `bun:"role"`
}

// UserRound is a round joined with one user's allocation in it.
type UserRound struct {
	RoundID   uuid.UUID  `bun:"round_id"`
	Format    string     `bun:"format"`
	Status    string     `bun:"status"`
	RoundCode string     `bun:"round_code"`
	StartedAt *time.Time `bun:"started_at"`
	Role      string     `bun:"your_role"`
}
