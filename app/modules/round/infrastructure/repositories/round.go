package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new round repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func applyLock(q *bun.SelectQuery, lock LockMode) *bun.SelectQuery {
	switch lock {
	case LockShare:
		return q.For("SHARE OF r")
	case LockUpdate:
		return q.For("UPDATE OF r")
	default:
		return q
	}
}

// --- Rounds ---

func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	_, err := db.NewInsert().
		Model(round).
		Returning("created_at").
		Exec(ctx)
	if err != nil {
		if uniqueViolation(err, constraintRoundCode) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (r *Impl) CodeExists(ctx context.Context, db bun.IDB, code string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Round)(nil)).
		Where("r.round_code = ?", code).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check round code: %w", err)
	}
	return exists, nil
}

func (r *Impl) GetRound(ctx context.Context, db bun.IDB, id uuid.UUID, lock LockMode) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	q := db.NewSelect().
		Model(round).
		Where("r.id = ?", id)
	if err := applyLock(q, lock).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

func (r *Impl) GetRoundByCode(ctx context.Context, db bun.IDB, code string, lock LockMode) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	q := db.NewSelect().
		Model(round).
		Where("r.round_code = ?", code)
	if err := applyLock(q, lock).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round by code: %w", err)
	}
	return round, nil
}

func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, filter ListFilter) ([]*Round, error) {
	db = r.resolveDB(db)
	var rounds []*Round
	q := db.NewSelect().
		Model(&rounds).
		OrderExpr("r.created_at DESC").
		OrderExpr("r.id")
	if filter.Status != "" {
		q = q.Where("r.status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) UpdateRoundState(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model(round).
		Column("status", "is_active", "started_at", "completed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update round state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) DeleteRound(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Allocations ---

func allocationSelect(db bun.IDB, dest any) *bun.SelectQuery {
	return db.NewSelect().
		Model(dest).
		ColumnExpr("ra.*").
		ColumnExpr("COALESCE(u.username, '') AS username").
		Join("LEFT JOIN users AS u ON u.id = ra.user_id")
}

func (r *Impl) InsertAllocationIfAbsent(ctx context.Context, db bun.IDB, alloc *Allocation) (bool, error) {
	db = r.resolveDB(db)
	if alloc.ID == uuid.Nil {
		alloc.ID = uuid.New()
	}
	res, err := db.NewInsert().
		Model(alloc).
		On("CONFLICT (round_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert allocation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) GetAllocation(ctx context.Context, db bun.IDB, roundID, userID uuid.UUID) (*Allocation, error) {
	db = r.resolveDB(db)
	alloc := new(Allocation)
	err := allocationSelect(db, alloc).
		Where("ra.round_id = ?", roundID).
		Where("ra.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return alloc, nil
}

func (r *Impl) ListAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*Allocation, error) {
	db = r.resolveDB(db)
	var allocs []*Allocation
	err := allocationSelect(db, &allocs).
		Where("ra.round_id = ?", roundID).
		OrderExpr("ra.created_at, ra.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocs, nil
}

func (r *Impl) ReplaceAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID, allocs []*Allocation) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*Allocation)(nil)).
		Where("round_id = ?", roundID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}
	if len(allocs) == 0 {
		return nil
	}
	for _, a := range allocs {
		a.RoundID = roundID
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
	}
	if _, err := db.NewInsert().
		Model(&allocs).
		Returning("created_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert allocations: %w", err)
	}
	return nil
}

func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*Participant, error) {
	db = r.resolveDB(db)
	var parts []*Participant
	err := db.NewSelect().
		TableExpr("round_allocations AS ra").
		DistinctOn("ra.user_id").
		ColumnExpr("ra.user_id").
		ColumnExpr("COALESCE(u.username, '') AS username").
		ColumnExpr("COALESCE(ra.role, '') AS role").
		Join("LEFT JOIN users AS u ON u.id = ra.user_id").
		Where("ra.round_id = ?", roundID).
		OrderExpr("ra.user_id").
		Scan(ctx, &parts)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return parts, nil
}

func (r *Impl) ListRoundsForUser(ctx context.Context, db bun.IDB, userID uuid.UUID, status string) ([]*UserRound, error) {
	db = r.resolveDB(db)
	var rows []*UserRound
	err := db.NewSelect().
		TableExpr("round_allocations AS ra").
		ColumnExpr("r.id AS round_id").
		ColumnExpr("r.format, r.status, r.round_code, r.started_at").
		ColumnExpr("COALESCE(ra.role, '') AS your_role").
		Join("JOIN rounds AS r ON r.id = ra.round_id").
		Where("ra.user_id = ?", userID).
		Where("r.status = ?", status).
		OrderExpr("r.started_at DESC NULLS LAST, r.id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for user: %w", err)
	}
	return rows, nil
}

// --- Results ---

func (r *Impl) InsertResult(ctx context.Context, db bun.IDB, result *Result) error {
	db = r.resolveDB(db)
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	_, err := db.NewInsert().
		Model(result).
		Returning("submitted_at").
		Exec(ctx)
	if err != nil {
		if uniqueViolation(err, constraintResultRound) {
			return ErrResultExists
		}
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

func (r *Impl) InsertSpeakerScores(ctx context.Context, db bun.IDB, scores []*SpeakerScore) error {
	if len(scores) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	for _, s := range scores {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	if _, err := db.NewInsert().Model(&scores).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert speaker scores: %w", err)
	}
	return nil
}

func (r *Impl) GetResult(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Result, error) {
	db = r.resolveDB(db)
	result := new(Result)
	err := db.NewSelect().
		Model(result).
		ColumnExpr("rr.*").
		ColumnExpr("COALESCE(u.username, '') AS submitter_username").
		Join("LEFT JOIN users AS u ON u.id = rr.submitted_by").
		Where("rr.round_id = ?", roundID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

func (r *Impl) ListScoreDetails(ctx context.Context, db bun.IDB, resultID uuid.UUID) ([]*ScoreDetail, error) {
	db = r.resolveDB(db)
	var details []*ScoreDetail
	err := db.NewSelect().
		TableExpr("speaker_scores AS ss").
		ColumnExpr("ra.user_id").
		ColumnExpr("COALESCE(u.username, '') AS username").
		ColumnExpr("COALESCE(ra.role, '') AS role").
		ColumnExpr("ss.score, ss.comments").
		Join("JOIN round_allocations AS ra ON ra.id = ss.allocation_id").
		Join("LEFT JOIN users AS u ON u.id = ra.user_id").
		Where("ss.result_id = ?", resultID).
		OrderExpr("ra.role, u.username").
		Scan(ctx, &details)
	if err != nil {
		return nil, fmt.Errorf("failed to list speaker scores: %w", err)
	}
	return details, nil
}
