package roundservice

import (
	"context"
	"errors"
	"strings"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type createRoundParams struct {
	format          rounddomain.Format
	motionID        *uuid.UUID
	maxAdjudicators int
}

func validateCreateRound(input CreateRoundInput) (createRoundParams, error) {
	params := createRoundParams{
		format:          rounddomain.Format(strings.ToUpper(strings.TrimSpace(input.Format))),
		maxAdjudicators: 1,
	}
	if !params.format.Valid() {
		return params, invalid("format", "must be ABP or PDA")
	}
	if input.MotionID != nil && strings.TrimSpace(*input.MotionID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*input.MotionID))
		if err != nil {
			return params, invalid("motion_id", "must be a uuid")
		}
		params.motionID = &id
	}
	if input.MaxAdjudicators != nil {
		if *input.MaxAdjudicators < 1 {
			return params, invalid("max_adjudicators", "must be at least 1")
		}
		params.maxAdjudicators = *input.MaxAdjudicators
	}
	return params, nil
}

// CreateRound creates a round in SETUP with a fresh join code. A code that
// loses the insert race to another round is regenerated in a new transaction.
func (s *RoundService) CreateRound(ctx context.Context, caller Caller, input CreateRoundInput) (*rounddomain.Round, error) {
	if !caller.Staff() {
		return nil, forbidden("staff role required to create rounds")
	}
	params, err := validateCreateRound(input)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		code, err := s.codes.GenerateUnique(ctx, func(ctx context.Context, c rounddomain.Code) (bool, error) {
			return s.repo.CodeExists(ctx, s.conn(), c.String())
		})
		if err != nil {
			return nil, err
		}

		round, err := execute(s, ctx, "CreateRound", code.String(), func(ctx context.Context, db bun.IDB) (resultOf[*rounddomain.Round], error) {
			return s.createRoundLogic(ctx, db, caller, params, code)
		})
		if errors.Is(err, rounddb.ErrCodeTaken) {
			s.logger.WarnContext(ctx, "Round code collided on insert, regenerating",
				attr.ExtractCorrelationID(ctx),
				attr.String("round_code", code.String()),
			)
			continue
		}
		return round, err
	}
}

func (s *RoundService) createRoundLogic(ctx context.Context, db bun.IDB, caller Caller, params createRoundParams, code rounddomain.Code) (resultOf[*rounddomain.Round], error) {
	row := &rounddb.Round{
		ID:              uuid.New(),
		Format:          string(params.format),
		MotionID:        params.motionID,
		MaxAdjudicators: params.maxAdjudicators,
		Status:          string(rounddomain.StatusSetup),
		RoundCode:       code.String(),
		IsActive:        false,
		CreatedBy:       caller.ID,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateRound(ctx, db, row); err != nil {
		if errors.Is(err, rounddb.ErrCodeTaken) {
			return failure[*rounddomain.Round](err)
		}
		return internal[*rounddomain.Round]("failed to create round: %w", err)
	}
	round := toRound(row)
	return success(&round, nil)
}
