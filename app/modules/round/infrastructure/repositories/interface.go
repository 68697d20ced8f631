package rounddb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LockMode selects the row lock taken when reading a round.
type LockMode int

const (
	LockNone LockMode = iota
	// LockShare blocks concurrent status updates but not other readers.
	LockShare
	// LockUpdate serialises writers on the round row.
	LockUpdate
)

// ListFilter narrows ListRounds.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repository defines the contract for round persistence. Every method takes
// the bun.IDB to run on so callers can compose them inside one transaction;
// a nil db falls back to the repository's own connection.
type Repository interface {
	// CreateRound inserts a round. Returns ErrCodeTaken when round_code collides.
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error

	// CodeExists reports whether any round already uses code.
	CodeExists(ctx context.Context, db bun.IDB, code string) (bool, error)

	// GetRound returns ErrNotFound when the round does not exist.
	GetRound(ctx context.Context, db bun.IDB, id uuid.UUID, lock LockMode) (*Round, error)

	// GetRoundByCode returns ErrNotFound when no round has code.
	GetRoundByCode(ctx context.Context, db bun.IDB, code string, lock LockMode) (*Round, error)

	// ListRounds returns rounds newest first.
	ListRounds(ctx context.Context, db bun.IDB, filter ListFilter) ([]*Round, error)

	// UpdateRoundState writes status, is_active, started_at and completed_at.
	// round_code is never written. Returns ErrNotFound when no row matched.
	UpdateRoundState(ctx context.Context, db bun.IDB, round *Round) error

	// DeleteRound removes the round; allocations, result and scores cascade.
	DeleteRound(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// InsertAllocationIfAbsent inserts alloc unless (round_id, user_id) exists.
	// It reports whether a row was written.
	InsertAllocationIfAbsent(ctx context.Context, db bun.IDB, alloc *Allocation) (bool, error)

	// GetAllocation returns ErrNotFound when the user holds no allocation in the round.
	GetAllocation(ctx context.Context, db bun.IDB, roundID, userID uuid.UUID) (*Allocation, error)

	// ListAllocations returns the round's allocations with usernames, oldest first.
	ListAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*Allocation, error)

	// ReplaceAllocations deletes every allocation of the round then inserts allocs.
	ReplaceAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID, allocs []*Allocation) error

	// ListParticipants returns the distinct users holding an allocation in the round.
	ListParticipants(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*Participant, error)

	// ListRoundsForUser returns rounds in status where the user holds an allocation.
	ListRoundsForUser(ctx context.Context, db bun.IDB, userID uuid.UUID, status string) ([]*UserRound, error)

	// InsertResult returns ErrResultExists when the round already has a result.
	InsertResult(ctx context.Context, db bun.IDB, result *Result) error

	// InsertSpeakerScores inserts scores in one statement.
	InsertSpeakerScores(ctx context.Context, db bun.IDB, scores []*SpeakerScore) error

	// GetResult returns the round's result with the submitter's username, or ErrNotFound.
	GetResult(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Result, error)

	// ListScoreDetails returns the result's scores resolved to speakers.
	ListScoreDetails(ctx context.Context, db bun.IDB, resultID uuid.UUID) ([]*ScoreDetail, error)
}
