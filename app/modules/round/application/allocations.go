package roundservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// JoinRound adds the caller to the round identified by code. Joining twice
// returns the existing allocation with AlreadyJoined set.
func (s *RoundService) JoinRound(ctx context.Context, caller Caller, rawCode string) (*JoinResult, error) {
	code, err := rounddomain.ParseCode(rawCode)
	if err != nil {
		return nil, invalid("round_code", "round code is required")
	}
	return execute(s, ctx, "JoinRound", code.String(), func(ctx context.Context, db bun.IDB) (resultOf[*JoinResult], error) {
		return s.joinRoundLogic(ctx, db, caller, code)
	})
}

func (s *RoundService) joinRoundLogic(ctx context.Context, db bun.IDB, caller Caller, code rounddomain.Code) (resultOf[*JoinResult], error) {
	row, err := s.repo.GetRoundByCode(ctx, db, code.String(), rounddb.LockShare)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[*JoinResult](notFound("no round with code " + code.String()))
		}
		return internal[*JoinResult]("failed to get round: %w", err)
	}
	if _, err := rounddomain.Transition(rounddomain.Status(row.Status), rounddomain.ActionJoin); err != nil {
		return failure[*JoinResult](err)
	}

	alloc := &rounddb.Allocation{
		ID:        uuid.New(),
		RoundID:   row.ID,
		UserID:    caller.ID,
		CreatedAt: s.now(),
		Username:  caller.Username,
	}
	inserted, err := s.repo.InsertAllocationIfAbsent(ctx, db, alloc)
	if err != nil {
		return internal[*JoinResult]("failed to join round: %w", err)
	}
	if !inserted {
		existing, err := s.repo.GetAllocation(ctx, db, row.ID, caller.ID)
		if err != nil {
			return internal[*JoinResult]("failed to read existing allocation: %w", err)
		}
		return success(&JoinResult{Allocation: toAllocation(existing), AlreadyJoined: true}, nil)
	}

	joined := toAllocation(alloc)
	event := &rounddomain.RoundEvent{
		Kind:        rounddomain.EventJoined,
		Round:       toRound(row),
		ActorID:     caller.ID,
		Allocations: []rounddomain.Allocation{joined},
	}
	return success(&JoinResult{Allocation: joined}, event)
}

// keptAllocation is an entry whose user has joined the round. index points
// back into the submitted list for error fields.
type keptAllocation struct {
	index    int
	input    AllocationInput
	username string
}

// validateAllocations parses roles for the kept entries and rejects what no
// allocation could hold: unknown roles, repeated users and, when enforced,
// shared seats.
func (s *RoundService) validateAllocations(kept []keptAllocation) ([]rounddomain.Role, error) {
	roles := make([]rounddomain.Role, len(kept))
	users := make(map[uuid.UUID]struct{}, len(kept))
	for i, k := range kept {
		field := fmt.Sprintf("allocations[%d]", k.index)
		if _, dup := users[k.input.UserID]; dup {
			return nil, invalid(field+".user_id", "user appears more than once")
		}
		users[k.input.UserID] = struct{}{}

		role := rounddomain.Role(strings.TrimSpace(k.input.Role))
		if !role.Valid() {
			return nil, invalid(field+".role", fmt.Sprintf("unknown role '%s'", k.input.Role))
		}
		roles[i] = role
	}
	if s.opts.EnforceUniqueSeatRoles {
		if err := rounddomain.CheckUniqueSeats(roles); err != nil {
			return nil, invalid("allocations", err.Error())
		}
	}
	return roles, nil
}

// SetAllocations replaces the round's allocations with entries. Entries for
// users who never joined are dropped before validation. The round moves to
// ALLOCATION.
func (s *RoundService) SetAllocations(ctx context.Context, caller Caller, roundID uuid.UUID, entries []AllocationInput) ([]rounddomain.Allocation, error) {
	if !caller.Staff() {
		return nil, forbidden("staff role required to set allocations")
	}
	return execute(s, ctx, "SetAllocations", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[[]rounddomain.Allocation], error) {
		return s.setAllocationsLogic(ctx, db, caller, roundID, entries)
	})
}

func (s *RoundService) setAllocationsLogic(ctx context.Context, db bun.IDB, caller Caller, roundID uuid.UUID, entries []AllocationInput) (resultOf[[]rounddomain.Allocation], error) {
	row, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockUpdate)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[[]rounddomain.Allocation](notFound("round " + roundID.String()))
		}
		return internal[[]rounddomain.Allocation]("failed to get round: %w", err)
	}
	next, err := rounddomain.Transition(rounddomain.Status(row.Status), rounddomain.ActionAllocate)
	if err != nil {
		return failure[[]rounddomain.Allocation](err)
	}

	participants, err := s.repo.ListParticipants(ctx, db, roundID)
	if err != nil {
		return internal[[]rounddomain.Allocation]("failed to list participants: %w", err)
	}
	usernames := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		usernames[p.UserID] = p.Username
	}

	kept := make([]keptAllocation, 0, len(entries))
	for i, e := range entries {
		username, ok := usernames[e.UserID]
		if !ok {
			s.logger.WarnContext(ctx, "Dropping allocation for non-participant",
				attr.ExtractCorrelationID(ctx),
				attr.RoundID(roundID),
				attr.UserID(e.UserID),
			)
			continue
		}
		kept = append(kept, keptAllocation{index: i, input: e, username: username})
	}
	roles, err := s.validateAllocations(kept)
	if err != nil {
		return failure[[]rounddomain.Allocation](err)
	}

	now := s.now()
	allocs := make([]*rounddb.Allocation, 0, len(kept))
	for i, k := range kept {
		allocs = append(allocs, &rounddb.Allocation{
			ID:        uuid.New(),
			RoundID:   roundID,
			UserID:    k.input.UserID,
			Role:      string(roles[i]),
			CreatedAt: now,
			Username:  k.username,
		})
	}

	if err := s.repo.ReplaceAllocations(ctx, db, roundID, allocs); err != nil {
		return internal[[]rounddomain.Allocation]("failed to replace allocations: %w", err)
	}

	s.applyTransition(row, next)
	if err := s.repo.UpdateRoundState(ctx, db, row); err != nil {
		return internal[[]rounddomain.Allocation]("failed to update round status: %w", err)
	}

	created := toAllocations(allocs)
	event := &rounddomain.RoundEvent{
		Kind:        rounddomain.EventAllocated,
		Round:       toRound(row),
		ActorID:     caller.ID,
		Allocations: created,
	}
	return success(created, event)
}

// GetParticipants returns every user holding an allocation in the round.
func (s *RoundService) GetParticipants(ctx context.Context, roundID uuid.UUID) ([]Participant, error) {
	return execute(s, ctx, "GetParticipants", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[[]Participant], error) {
		if _, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockNone); err != nil {
			if errors.Is(err, rounddb.ErrNotFound) {
				return failure[[]Participant](notFound("round " + roundID.String()))
			}
			return internal[[]Participant]("failed to get round: %w", err)
		}
		rows, err := s.repo.ListParticipants(ctx, db, roundID)
		if err != nil {
			return internal[[]Participant]("failed to list participants: %w", err)
		}
		out := make([]Participant, 0, len(rows))
		for _, p := range rows {
			out = append(out, Participant{UserID: p.UserID, Username: p.Username, Role: rounddomain.Role(p.Role)})
		}
		return success(out, nil)
	})
}
