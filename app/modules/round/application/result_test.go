package roundservice

import (
	"context"
	"testing"
	"time"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var (
	chairID     = uuid.MustParse("00000000-0000-0000-0000-00000000d001")
	pmID        = uuid.MustParse("00000000-0000-0000-0000-00000000d002")
	loID        = uuid.MustParse("00000000-0000-0000-0000-00000000d003")
	spectatorID = uuid.MustParse("00000000-0000-0000-0000-00000000d004")
	ghostID     = uuid.MustParse("00000000-0000-0000-0000-00000000d0ff")

	chairCaller = Caller{ID: chairID, Username: "chair"}
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func resultAllocations() []*rounddb.Allocation {
	return []*rounddb.Allocation{
		{ID: uuid.MustParse("00000000-0000-0000-0000-0000000a0001"), UserID: chairID, Username: "chair", Role: string(rounddomain.RoleChairAdjudicator)},
		{ID: uuid.MustParse("00000000-0000-0000-0000-0000000a0002"), UserID: pmID, Username: "pm", Role: string(rounddomain.RolePrimeMinister)},
		{ID: uuid.MustParse("00000000-0000-0000-0000-0000000a0003"), UserID: loID, Username: "lo", Role: string(rounddomain.RoleLeaderOfOpposition)},
		{ID: uuid.MustParse("00000000-0000-0000-0000-0000000a0004"), UserID: spectatorID, Username: "spectator"},
	}
}

func validResultInput() SubmitResultInput {
	return SubmitResultInput{
		WinningSide: "government",
		Summary:     "  Closing government carried the clash on harms.  ",
		SpeakerScores: []ScoreInput{
			{UserID: pmID, Score: decimal.RequireFromString("78.5"), Comments: "clear extension"},
			{UserID: loID, Score: decimal.NewFromInt(75)},
		},
	}
}

func TestValidateSubmitResult(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *SubmitResultInput)
		wantField string
	}{
		{name: "valid", mutate: func(*SubmitResultInput) {}},
		{name: "unknown side", mutate: func(in *SubmitResultInput) { in.WinningSide = "DRAW" }, wantField: "winning_side"},
		{name: "blank summary", mutate: func(in *SubmitResultInput) { in.Summary = "\t " }, wantField: "summary"},
		{name: "score above 100", mutate: func(in *SubmitResultInput) { in.SpeakerScores[0].Score = decimal.RequireFromString("100.5") }, wantField: "speaker_scores[0].score"},
		{name: "negative score", mutate: func(in *SubmitResultInput) { in.SpeakerScores[1].Score = decimal.NewFromInt(-1) }, wantField: "speaker_scores[1].score"},
		{name: "two decimal places", mutate: func(in *SubmitResultInput) { in.SpeakerScores[0].Score = decimal.RequireFromString("77.25") }, wantField: "speaker_scores[0].score"},
		{name: "trailing zero is one place", mutate: func(in *SubmitResultInput) { in.SpeakerScores[0].Score = decimal.RequireFromString("77.50") }},
		{name: "bounds inclusive", mutate: func(in *SubmitResultInput) {
			in.SpeakerScores[0].Score = decimal.Zero
			in.SpeakerScores[1].Score = decimal.NewFromInt(100)
		}},
		{name: "speaker scored twice", mutate: func(in *SubmitResultInput) { in.SpeakerScores[1].UserID = pmID }, wantField: "speaker_scores[1].user_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validResultInput()
			tt.mutate(&in)

			_, _, err := validateSubmitResult(in)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestSubmitResult(t *testing.T) {
	tests := []struct {
		name        string
		caller      Caller
		status      rounddomain.Status
		input       func() SubmitResultInput
		resultErr   error
		wantErr     error
		wantSkipped []uuid.UUID
		wantScores  int
		wantTrace   []string
	}{
		{
			name:   "chair with blank summary is invalid",
			caller: chairCaller,
			status: rounddomain.StatusActive,
			input: func() SubmitResultInput {
				in := validResultInput()
				in.Summary = ""
				return in
			},
			wantErr:   ErrValidation,
			wantTrace: []string{"GetRound", "ListAllocations"},
		},
		{
			name:   "non chair with blank summary is forbidden",
			caller: Caller{ID: pmID, Username: "pm"},
			status: rounddomain.StatusActive,
			input: func() SubmitResultInput {
				in := validResultInput()
				in.WinningSide = "DRAW"
				in.Summary = ""
				return in
			},
			wantErr:   ErrForbidden,
			wantTrace: []string{"GetRound", "ListAllocations"},
		},
		{
			name:   "invalid fields on an inactive round report the status",
			caller: chairCaller,
			status: rounddomain.StatusCompleted,
			input: func() SubmitResultInput {
				return SubmitResultInput{}
			},
			wantErr:   ErrInvalidStateTransition,
			wantTrace: []string{"GetRound"},
		},
		{
			name:      "round not active",
			caller:    chairCaller,
			status:    rounddomain.StatusAllocation,
			input:     validResultInput,
			wantErr:   ErrInvalidStateTransition,
			wantTrace: []string{"GetRound"},
		},
		{
			name:      "panelist is not chair",
			caller:    Caller{ID: pmID, Username: "pm"},
			status:    rounddomain.StatusActive,
			input:     validResultInput,
			wantErr:   ErrForbidden,
			wantTrace: []string{"GetRound", "ListAllocations"},
		},
		{
			name:      "spectator is not chair",
			caller:    Caller{ID: spectatorID, Username: "spectator"},
			status:    rounddomain.StatusActive,
			input:     validResultInput,
			wantErr:   ErrForbidden,
			wantTrace: []string{"GetRound", "ListAllocations"},
		},
		{
			name:      "staff outside the round is not chair",
			caller:    staffCaller,
			status:    rounddomain.StatusActive,
			input:     validResultInput,
			wantErr:   ErrForbidden,
			wantTrace: []string{"GetRound", "ListAllocations"},
		},
		{
			name:      "result already stored",
			caller:    chairCaller,
			status:    rounddomain.StatusActive,
			input:     validResultInput,
			resultErr: rounddb.ErrResultExists,
			wantErr:   ErrConflict,
			wantTrace: []string{"GetRound", "ListAllocations", "InsertResult"},
		},
		{
			name:       "chair submits",
			caller:     chairCaller,
			status:     rounddomain.StatusActive,
			input:      validResultInput,
			wantScores: 2,
			wantTrace:  []string{"GetRound", "ListAllocations", "InsertResult", "InsertSpeakerScores", "UpdateRoundState"},
		},
		{
			name:   "score for unknown user is skipped",
			caller: chairCaller,
			status: rounddomain.StatusActive,
			input: func() SubmitResultInput {
				in := validResultInput()
				in.SpeakerScores = append(in.SpeakerScores, ScoreInput{UserID: ghostID, Score: decimal.NewFromInt(70)})
				return in
			},
			wantSkipped: []uuid.UUID{ghostID},
			wantScores:  2,
			wantTrace:   []string{"GetRound", "ListAllocations", "InsertResult", "InsertSpeakerScores", "UpdateRoundState"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			round := roundRow(tt.status)
			repo.GetRoundFunc = func(_ context.Context, _ bun.IDB, _ uuid.UUID, lock rounddb.LockMode) (*rounddb.Round, error) {
				assert.Equal(t, rounddb.LockUpdate, lock)
				return round, nil
			}
			repo.ListAllocationsFunc = func(context.Context, bun.IDB, uuid.UUID) ([]*rounddb.Allocation, error) {
				return resultAllocations(), nil
			}
			var stored *rounddb.Result
			repo.InsertResultFunc = func(_ context.Context, _ bun.IDB, r *rounddb.Result) error {
				stored = r
				return tt.resultErr
			}
			var scores []*rounddb.SpeakerScore
			repo.InsertSpeakerScoresFunc = func(_ context.Context, _ bun.IDB, s []*rounddb.SpeakerScore) error {
				scores = s
				return nil
			}
			emitter := &FakeEmitter{}
			svc := newTestService(repo, emitter, Options{})

			got, err := svc.SubmitResult(context.Background(), tt.caller, round.ID, tt.input())

			assert.Equal(t, tt.wantTrace, repo.Trace())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, emitter.Events())
				return
			}
			require.NoError(t, err)

			assert.Equal(t, rounddomain.SideGovernment, got.Result.WinningSide)
			assert.Equal(t, "Closing government carried the clash on harms.", got.Result.Summary)
			require.NotNil(t, got.Result.SubmittedBy)
			assert.Equal(t, chairID, got.Result.SubmittedBy.ID)
			require.NotNil(t, stored.SubmittedBy)
			assert.Equal(t, chairID, *stored.SubmittedBy)

			require.Len(t, scores, tt.wantScores)
			for _, s := range scores {
				assert.Equal(t, stored.ID, *s.ResultID)
				assert.Equal(t, round.ID, s.RoundID)
				assert.NotNil(t, s.AllocationID)
			}
			assert.Equal(t, rounddomain.RolePrimeMinister, got.Result.Scores[0].Role)

			var skipped []uuid.UUID
			for _, s := range got.SkippedScores {
				skipped = append(skipped, s.UserID)
			}
			assert.Equal(t, tt.wantSkipped, skipped)

			assert.Equal(t, string(rounddomain.StatusCompleted), round.Status)
			assert.False(t, round.IsActive)
			require.NotNil(t, round.CompletedAt)

			events := emitter.Events()
			require.Len(t, events, 1)
			assert.Equal(t, rounddomain.EventCompleted, events[0].Kind)
			assert.Len(t, events[0].Allocations, 4, "spectators are included")
		})
	}
}

func TestGetResult(t *testing.T) {
	resultID := uuid.New()
	submitted := fixedNow.Add(-10 * time.Minute)

	tests := []struct {
		name        string
		noRound     bool
		noResult    bool
		submittedBy *uuid.UUID
		wantErr     error
		want        *rounddomain.Result
	}{
		{name: "unknown round", noRound: true, wantErr: ErrNotFound},
		{name: "no result yet", noResult: true, wantErr: ErrNotFound},
		{
			name:        "resolved result",
			submittedBy: &chairID,
			want: &rounddomain.Result{
				ID:          resultID,
				RoundID:     roundRow(rounddomain.StatusCompleted).ID,
				WinningSide: rounddomain.SideOpposition,
				Summary:     "Opening opposition won on framing.",
				SubmittedBy: &rounddomain.UserRef{ID: chairID, Username: "chair"},
				SubmittedAt: submitted,
				Scores: []rounddomain.SpeakerScore{
					{UserID: loID, Username: "lo", Role: rounddomain.RoleLeaderOfOpposition, Score: decimal.RequireFromString("81.5"), Comments: "strong"},
				},
			},
		},
		{
			name: "submitter deleted",
			want: &rounddomain.Result{
				ID:          resultID,
				RoundID:     roundRow(rounddomain.StatusCompleted).ID,
				WinningSide: rounddomain.SideOpposition,
				Summary:     "Opening opposition won on framing.",
				SubmittedAt: submitted,
				Scores: []rounddomain.SpeakerScore{
					{UserID: loID, Username: "lo", Role: rounddomain.RoleLeaderOfOpposition, Score: decimal.RequireFromString("81.5"), Comments: "strong"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			if !tt.noRound {
				repo.GetRoundFunc = func(context.Context, bun.IDB, uuid.UUID, rounddb.LockMode) (*rounddb.Round, error) {
					return roundRow(rounddomain.StatusCompleted), nil
				}
			}
			if !tt.noResult {
				repo.GetResultFunc = func(_ context.Context, _ bun.IDB, roundID uuid.UUID) (*rounddb.Result, error) {
					r := &rounddb.Result{
						ID:          resultID,
						RoundID:     roundID,
						WinningSide: string(rounddomain.SideOpposition),
						Summary:     "Opening opposition won on framing.",
						SubmittedBy: tt.submittedBy,
						SubmittedAt: submitted,
					}
					if tt.submittedBy != nil {
						r.SubmitterUsername = "chair"
					}
					return r, nil
				}
			}
			repo.ListScoreDetailsFunc = func(_ context.Context, _ bun.IDB, id uuid.UUID) ([]*rounddb.ScoreDetail, error) {
				assert.Equal(t, resultID, id)
				return []*rounddb.ScoreDetail{
					{UserID: loID, Username: "lo", Role: string(rounddomain.RoleLeaderOfOpposition), Score: decimal.RequireFromString("81.5"), Comments: "strong"},
				}, nil
			}
			svc := newTestService(repo, nil, Options{})

			got, err := svc.GetResult(context.Background(), roundRow(rounddomain.StatusCompleted).ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, decimalEqual); diff != "" {
				t.Errorf("GetResult mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
