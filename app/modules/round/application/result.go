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
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

var maxScore = decimal.NewFromInt(100)

func validateSubmitResult(input SubmitResultInput) (rounddomain.WinningSide, string, error) {
	side := rounddomain.WinningSide(strings.ToUpper(strings.TrimSpace(input.WinningSide)))
	if !side.Valid() {
		return "", "", invalid("winning_side", "must be GOVERNMENT or OPPOSITION")
	}
	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		return "", "", invalid("summary", "summary is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.SpeakerScores))
	for i, sc := range input.SpeakerScores {
		field := fmt.Sprintf("speaker_scores[%d]", i)
		if sc.UserID == uuid.Nil {
			return "", "", invalid(field+".user_id", "user id is required")
		}
		if _, dup := seen[sc.UserID]; dup {
			return "", "", invalid(field+".user_id", "speaker scored more than once")
		}
		seen[sc.UserID] = struct{}{}
		if sc.Score.IsNegative() || sc.Score.GreaterThan(maxScore) {
			return "", "", invalid(field+".score", "must be between 0 and 100")
		}
		if !sc.Score.Equal(sc.Score.Round(1)) {
			return "", "", invalid(field+".score", "at most one decimal place")
		}
	}
	return side, summary, nil
}

// SubmitResult records the chair's result for an ACTIVE round and completes
// it. Scores for users without an allocation are skipped and reported.
// Guards run in order: round status, chair, then the submitted fields.
func (s *RoundService) SubmitResult(ctx context.Context, caller Caller, roundID uuid.UUID, input SubmitResultInput) (*SubmitResultOutput, error) {
	return execute(s, ctx, "SubmitResult", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*SubmitResultOutput], error) {
		return s.submitResultLogic(ctx, db, caller, roundID, input)
	})
}

func (s *RoundService) submitResultLogic(ctx context.Context, db bun.IDB, caller Caller, roundID uuid.UUID, input SubmitResultInput) (resultOf[*SubmitResultOutput], error) {
	row, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockUpdate)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[*SubmitResultOutput](notFound("round " + roundID.String()))
		}
		return internal[*SubmitResultOutput]("failed to get round: %w", err)
	}
	next, err := rounddomain.Transition(rounddomain.Status(row.Status), rounddomain.ActionSubmitResult)
	if err != nil {
		return failure[*SubmitResultOutput](err)
	}

	allocs, err := s.repo.ListAllocations(ctx, db, roundID)
	if err != nil {
		return internal[*SubmitResultOutput]("failed to list allocations: %w", err)
	}
	byUser := make(map[uuid.UUID]*rounddb.Allocation, len(allocs))
	for _, a := range allocs {
		byUser[a.UserID] = a
	}

	chair, ok := byUser[caller.ID]
	if !ok || rounddomain.Role(chair.Role) != rounddomain.RoleChairAdjudicator {
		return failure[*SubmitResultOutput](forbidden("only the chair adjudicator of this round may submit its result"))
	}

	side, summary, err := validateSubmitResult(input)
	if err != nil {
		return failure[*SubmitResultOutput](err)
	}
	scores := input.SpeakerScores

	submitter := caller.ID
	resultRow := &rounddb.Result{
		ID:          uuid.New(),
		RoundID:     roundID,
		WinningSide: string(side),
		Summary:     summary,
		SubmittedBy: &submitter,
		SubmittedAt: s.now(),
	}
	if err := s.repo.InsertResult(ctx, db, resultRow); err != nil {
		if errors.Is(err, rounddb.ErrResultExists) {
			return failure[*SubmitResultOutput](conflict("round already has a result"))
		}
		return internal[*SubmitResultOutput]("failed to insert result: %w", err)
	}

	out := &SubmitResultOutput{SkippedScores: []SkippedScore{}}
	scoreRows := make([]*rounddb.SpeakerScore, 0, len(scores))
	resolved := make([]rounddomain.SpeakerScore, 0, len(scores))
	for _, sc := range scores {
		alloc, ok := byUser[sc.UserID]
		if !ok {
			s.logger.WarnContext(ctx, "Skipping score for user without allocation",
				attr.ExtractCorrelationID(ctx),
				attr.RoundID(roundID),
				attr.UserID(sc.UserID),
			)
			out.SkippedScores = append(out.SkippedScores, SkippedScore{
				UserID: sc.UserID,
				Reason: "user has no allocation in this round",
			})
			continue
		}
		allocID := alloc.ID
		resultID := resultRow.ID
		scoreRows = append(scoreRows, &rounddb.SpeakerScore{
			ID:           uuid.New(),
			RoundID:      roundID,
			ResultID:     &resultID,
			AllocationID: &allocID,
			Score:        sc.Score,
			Comments:     strings.TrimSpace(sc.Comments),
		})
		resolved = append(resolved, rounddomain.SpeakerScore{
			UserID:   alloc.UserID,
			Username: alloc.Username,
			Role:     rounddomain.Role(alloc.Role),
			Score:    sc.Score,
			Comments: strings.TrimSpace(sc.Comments),
		})
	}
	if err := s.repo.InsertSpeakerScores(ctx, db, scoreRows); err != nil {
		return internal[*SubmitResultOutput]("failed to insert speaker scores: %w", err)
	}

	s.applyTransition(row, next)
	if err := s.repo.UpdateRoundState(ctx, db, row); err != nil {
		return internal[*SubmitResultOutput]("failed to complete round: %w", err)
	}

	out.Result = rounddomain.Result{
		ID:          resultRow.ID,
		RoundID:     roundID,
		WinningSide: side,
		Summary:     summary,
		SubmittedBy: &rounddomain.UserRef{ID: caller.ID, Username: caller.Username},
		SubmittedAt: resultRow.SubmittedAt,
		Scores:      resolved,
	}
	event := &rounddomain.RoundEvent{
		Kind:        rounddomain.EventCompleted,
		Round:       toRound(row),
		ActorID:     caller.ID,
		Allocations: toAllocations(allocs),
	}
	return success(out, event)
}

// GetResult returns the round's result with scores resolved to speakers.
func (s *RoundService) GetResult(ctx context.Context, roundID uuid.UUID) (*rounddomain.Result, error) {
	return execute(s, ctx, "GetResult", roundID.String(), func(ctx context.Context, db bun.IDB) (resultOf[*rounddomain.Result], error) {
		return s.getResultLogic(ctx, db, roundID)
	})
}

func (s *RoundService) getResultLogic(ctx context.Context, db bun.IDB, roundID uuid.UUID) (resultOf[*rounddomain.Result], error) {
	if _, err := s.repo.GetRound(ctx, db, roundID, rounddb.LockNone); err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[*rounddomain.Result](notFound("round " + roundID.String()))
		}
		return internal[*rounddomain.Result]("failed to get round: %w", err)
	}
	row, err := s.repo.GetResult(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return failure[*rounddomain.Result](notFound("result for round " + roundID.String()))
		}
		return internal[*rounddomain.Result]("failed to get result: %w", err)
	}
	details, err := s.repo.ListScoreDetails(ctx, db, row.ID)
	if err != nil {
		return internal[*rounddomain.Result]("failed to list speaker scores: %w", err)
	}

	result := &rounddomain.Result{
		ID:          row.ID,
		RoundID:     row.RoundID,
		WinningSide: rounddomain.WinningSide(row.WinningSide),
		Summary:     row.Summary,
		SubmittedAt: row.SubmittedAt,
		Scores:      make([]rounddomain.SpeakerScore, 0, len(details)),
	}
	if row.SubmittedBy != nil {
		result.SubmittedBy = &rounddomain.UserRef{ID: *row.SubmittedBy, Username: row.SubmitterUsername}
	}
	for _, d := range details {
		result.Scores = append(result.Scores, rounddomain.SpeakerScore{
			UserID:   d.UserID,
			Username: d.Username,
			Role:     rounddomain.Role(d.Role),
			Score:    d.Score,
			Comments: d.Comments,
		})
	}
	return success(result, nil)
}
