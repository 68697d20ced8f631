package roundservice

import (
	"context"
	"errors"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StartRound moves an allocated round to ACTIVE.
func (s *RoundService) StartRound(ctx context.Context, caller Caller, roundID uuid.UUID) (*rounddomain.Round, error) {
	if !caller.Staff() {
		return nil, forbidden("staff role required to start rounds")
	}
	return execute(s, ctx, "StartRound", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*rounddomain.Round], error) {
		return s.transitionLogic(ctx, db, caller, roundID, rounddomain.ActionStart, rounddomain.EventStarted)
	})
}

// TerminateRound ends an ACTIVE round without a result.
func (s *RoundService) TerminateRound(ctx context.Context, caller Caller, roundID uuid.UUID) (*rounddomain.Round, error) {
	if !caller.IsAdmin {
		return nil, forbidden("admin role required to terminate rounds")
	}
	return execute(s, ctx, "TerminateRound", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*rounddomain.Round], error) {
		return s.transitionLogic(ctx, db, caller, roundID, rounddomain.ActionTerminate, rounddomain.EventTerminated)
	})
}

func (s *RoundService) transitionLogic(ctx context.Context, db bun.IDB, caller Caller, roundID uuid.UUID, action rounddomain.Action, kind rounddomain.EventKind) (resultOf[*rounddomain.Round], error) {
	row, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockUpdate)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[*rounddomain.Round](notFound("round " + roundID.String()))
		}
		return internal[*rounddomain.Round]("failed to get round: %w", err)
	}
	next, err := rounddomain.Transition(rounddomain.Status(row.Status), action)
	if err != nil {
		return failure[*rounddomain.Round](err)
	}

	s.applyTransition(row, next)
	if err := s.repo.UpdateRoundState(ctx, db, row); err != nil {
		return internal[*rounddomain.Round]("failed to update round status: %w", err)
	}

	allocs, err := s.repo.ListAllocations(ctx, db, roundID)
	if err != nil {
		return internal[*rounddomain.Round]("failed to list allocations: %w", err)
	}

	round := toRound(row)
	event := &rounddomain.RoundEvent{
		Kind:        kind,
		Round:       round,
		ActorID:     caller.ID,
		Allocations: toAllocations(allocs),
	}
	return success(&round, event)
}

// GetRoundStatus returns the round's lifecycle snapshot.
func (s *RoundService) GetRoundStatus(ctx context.Context, roundID uuid.UUID) (*RoundStatus, error) {
	return execute(s, ctx, "GetRoundStatus", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*RoundStatus], error) {
		row, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockNone)
		if err != nil {
			if errors.Is(err, rounddb.ErrNotFound) {
				return failure[*RoundStatus](notFound("round " + roundID.String()))
			}
			return internal[*RoundStatus]("failed to get round: %w", err)
		}
		return success(&RoundStatus{
			RoundID:     row.ID,
			Status:      rounddomain.Status(row.Status),
			IsActive:    row.IsActive,
			StartedAt:   row.StartedAt,
			CompletedAt: row.CompletedAt,
		}, nil)
	})
}
