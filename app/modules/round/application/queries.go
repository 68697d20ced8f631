package roundservice

import (
	"context"
	"errors"
	"strings"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListRounds returns rounds newest first, optionally filtered by status.
func (s *RoundService) ListRounds(ctx context.Context, caller Caller, input ListRoundsInput) ([]rounddomain.Round, error) {
	if !caller.Staff() {
		return nil, forbidden("staff role required to list rounds")
	}
	filter := rounddb.ListFilter{Limit: input.Limit, Offset: input.Offset}
	if status := strings.ToUpper(strings.TrimSpace(input.Status)); status != "" {
		switch rounddomain.Status(status) {
		case rounddomain.StatusSetup, rounddomain.StatusAllocation, rounddomain.StatusActive,
			rounddomain.StatusCompleted, rounddomain.StatusTerminated:
			filter.Status = status
		default:
			return nil, invalid("status", "unknown status")
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return execute(s, ctx, "ListRounds", filter.Status, func(ctx context.Context, db bun.IDB) (resultOf[[]rounddomain.Round], error) {
		rows, err := s.repo.ListRounds(ctx, db, filter)
		if err != nil {
			return internal[[]rounddomain.Round]("failed to list rounds: %w", err)
		}
		out := make([]rounddomain.Round, 0, len(rows))
		for _, r := range rows {
			out = append(out, toRound(r))
		}
		return success(out, nil)
	})
}

// GetRoundDetail returns the round with its allocations.
func (s *RoundService) GetRoundDetail(ctx context.Context, roundID uuid.UUID) (*RoundDetail, error) {
	return execute(s, ctx, "GetRoundDetail", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*RoundDetail], error) {
		row, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockNone)
		if err != nil {
			if errors.Is(err, rounddb.ErrNotFound) {
				return failure[*RoundDetail](notFound("round " + roundID.String()))
			}
			return internal[*RoundDetail]("failed to get round: %w", err)
		}
		allocs, err := s.repo.ListAllocations(ctx, db, roundID)
		if err != nil {
			return internal[*RoundDetail]("failed to list allocations: %w", err)
		}
		round := toRound(row)
		return success(&RoundDetail{
			Round:            round,
			FormatDisplay:    round.Format.Display(),
			RequiredDebaters: round.Format.RequiredDebaters(),
			Allocations:      toAllocations(allocs),
		}, nil)
	})
}

// DeleteRound removes the round together with its allocations and result.
// Activity log entries are kept.
func (s *RoundService) DeleteRound(ctx context.Context, caller Caller, roundID uuid.UUID) error {
	if !caller.Staff() {
		return forbidden("staff role required to delete rounds")
	}
	_, err := execute(s, ctx, "DeleteRound", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[struct{}], error) {
		if err := s.repo.DeleteRound(ctx, db, roundID); err != nil {
			if errors.Is(err, rounddb.ErrNotFound) {
				return failure[struct{}](notFound("round " + roundID.String()))
			}
			return internal[struct{}]("failed to delete round: %w", err)
		}
		return success(struct{}{}, nil)
	})
	return err
}

// ActiveRoundsForUser lists the ACTIVE rounds the user holds an allocation in.
func (s *RoundService) ActiveRoundsForUser(ctx context.Context, userID uuid.UUID) ([]ActiveRound, error) {
	return execute(s, ctx, "ActiveRoundsForUser", userID.String(), func(ctx context.Context, db bun.IDB) (resultOf[[]ActiveRound], error) {
		rows, err := s.repo.ListRoundsForUser(ctx, db, userID, string(rounddomain.StatusActive))
		if err != nil {
			return internal[[]ActiveRound]("failed to list active rounds: %w", err)
		}
		out := make([]ActiveRound, 0, len(rows))
		for _, r := range rows {
			format := rounddomain.Format(r.Format)
			out = append(out, ActiveRound{
				RoundID:       r.RoundID,
				Format:        format,
				FormatDisplay: format.Display(),
				YourRole:      rounddomain.Role(r.Role),
				StartedAt:     r.StartedAt,
			})
		}
		return success(out, nil)
	})
}
