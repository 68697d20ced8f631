package roundservice

import (
	"time"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caller is the authenticated user an operation runs on behalf of.
type Caller struct {
	ID       uuid.UUID
	Username string
	IsStaff  bool
	IsAdmin  bool
}

// Staff reports whether the caller may manage rounds. Admins are staff.
func (c Caller) Staff() bool { return c.IsStaff || c.IsAdmin }

// CreateRoundInput is the payload for CreateRound.
type CreateRoundInput struct {
	Format          string  `json:"format"`
	MotionID        *string `json:"motion_id,omitempty"`
	MaxAdjudicators *int    `json:"max_adjudicators,omitempty"`
}

// AllocationInput assigns one role to one participant.
type AllocationInput struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// ScoreInput is one speaker score in a result submission.
type ScoreInput struct {
	UserID   uuid.UUID       `json:"user_id"`
	Score    decimal.Decimal `json:"score"`
	Comments string          `json:"comments"`
}

// SubmitResultInput is the payload for SubmitResult.
type SubmitResultInput struct {
	WinningSide   string       `json:"winning_side"`
	Summary       string       `json:"summary"`
	SpeakerScores []ScoreInput `json:"speaker_scores"`
}

// JoinResult is the caller's allocation after a join.
type JoinResult struct {
	Allocation    rounddomain.Allocation `json:"allocation"`
	AlreadyJoined bool                   `json:"already_joined"`
}

// SkippedScore is a submitted score that could not be attached to a speaker.
type SkippedScore struct {
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

// SubmitResultOutput is the stored result plus any scores that were dropped.
type SubmitResultOutput struct {
	Result        rounddomain.Result `json:"result"`
	SkippedScores []SkippedScore     `json:"skipped_scores"`
}

// Participant is a user holding an allocation in a round.
type Participant struct {
	UserID   uuid.UUID        `json:"user_id"`
	Username string           `json:"username"`
	Role     rounddomain.Role `json:"role"`
}

// RoundStatus is the lifecycle snapshot of a round.
type RoundStatus struct {
	RoundID     uuid.UUID          `json:"round_id"`
	Status      rounddomain.Status `json:"status"`
	IsActive    bool               `json:"is_active"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// RoundDetail is a round with its allocations.
type RoundDetail struct {
	rounddomain.Round
	FormatDisplay    string                   `json:"format_display"`
	RequiredDebaters int                      `json:"required_debaters"`
	Allocations      []rounddomain.Allocation `json:"allocations"`
}

// ActiveRound is a running round the user takes part in.
type ActiveRound struct {
	RoundID       uuid.UUID          `json:"round_id"`
	Format        rounddomain.Format `json:"format"`
	FormatDisplay string             `json:"format_display"`
	YourRole      rounddomain.Role   `json:"your_role"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
}

// ListRoundsInput narrows ListRounds.
type ListRoundsInput struct {
	Status string
	Limit  int
	Offset int
}
