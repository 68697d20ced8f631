package roundservice

import (
	"context"
	"testing"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestListRounds(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		input      ListRoundsInput
		wantErr    error
		wantFilter rounddb.ListFilter
	}{
		{name: "speaker forbidden", caller: speakerCaller, wantErr: ErrForbidden},
		{name: "unknown status", caller: staffCaller, input: ListRoundsInput{Status: "PAUSED"}, wantErr: ErrValidation},
		{name: "defaults", caller: staffCaller, wantFilter: rounddb.ListFilter{Limit: defaultListLimit}},
		{
			name:       "status normalised and limit capped",
			caller:     staffCaller,
			input:      ListRoundsInput{Status: " active ", Limit: 10_000, Offset: -3},
			wantFilter: rounddb.ListFilter{Status: "ACTIVE", Limit: maxListLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			var gotFilter rounddb.ListFilter
			repo.ListRoundsFunc = func(_ context.Context, _ bun.IDB, f rounddb.ListFilter) ([]*rounddb.Round, error) {
				gotFilter = f
				return []*rounddb.Round{roundRow(rounddomain.StatusActive)}, nil
			}
			svc := newTestService(repo, nil, Options{})

			got, err := svc.ListRounds(context.Background(), tt.caller, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.Trace())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFilter, gotFilter)
			require.Len(t, got, 1)
			assert.Equal(t, rounddomain.Code("ABC123"), got[0].Code)
		})
	}
}

func TestGetRoundDetail(t *testing.T) {
	repo := NewFakeRoundRepo()
	repo.GetRoundFunc = func(context.Context, bun.IDB, uuid.UUID, rounddb.LockMode) (*rounddb.Round, error) {
		r := roundRow(rounddomain.StatusAllocation)
		r.Format = string(rounddomain.FormatAsianParliamentary)
		return r, nil
	}
	repo.ListAllocationsFunc = func(context.Context, bun.IDB, uuid.UUID) ([]*rounddb.Allocation, error) {
		return []*rounddb.Allocation{{UserID: speakerCaller.ID, Username: "speaker", Role: string(rounddomain.RolePrimeMinister)}}, nil
	}
	svc := newTestService(repo, nil, Options{})

	got, err := svc.GetRoundDetail(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, "Asian Parliamentary", got.FormatDisplay)
	assert.Equal(t, 6, got.RequiredDebaters)
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "speaker", got.Allocations[0].Username)
}

func TestDeleteRound(t *testing.T) {
	tests := []struct {
		name      string
		caller    Caller
		repoErr   error
		wantErr   error
		wantTrace []string
	}{
		{name: "speaker forbidden", caller: speakerCaller, wantErr: ErrForbidden, wantTrace: []string{}},
		{name: "unknown round", caller: staffCaller, repoErr: rounddb.ErrNotFound, wantErr: ErrNotFound, wantTrace: []string{"DeleteRound"}},
		{name: "deleted", caller: staffCaller, wantTrace: []string{"DeleteRound"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			repo.DeleteRoundFunc = func(context.Context, bun.IDB, uuid.UUID) error { return tt.repoErr }
			svc := newTestService(repo, nil, Options{})

			err := svc.DeleteRound(context.Background(), tt.caller, uuid.New())

			assert.Equal(t, tt.wantTrace, repo.Trace())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestActiveRoundsForUser(t *testing.T) {
	t.Run("none is an empty list", func(t *testing.T) {
		svc := newTestService(NewFakeRoundRepo(), nil, Options{})

		got, err := svc.ActiveRoundsForUser(context.Background(), speakerCaller.ID)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("maps role and format", func(t *testing.T) {
		repo := NewFakeRoundRepo()
		repo.ListRoundsForUserFunc = func(_ context.Context, _ bun.IDB, userID uuid.UUID, status string) ([]*rounddb.UserRound, error) {
			assert.Equal(t, speakerCaller.ID, userID)
			assert.Equal(t, "ACTIVE", status)
			return []*rounddb.UserRound{{
				RoundID:   uuid.New(),
				Format:    "ABP",
				Status:    "ACTIVE",
				StartedAt: &fixedNow,
				Role:      string(rounddomain.RoleMemberOfOpposition),
			}}, nil
		}
		svc := newTestService(repo, nil, Options{})

		got, err := svc.ActiveRoundsForUser(context.Background(), speakerCaller.ID)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "British Parliamentary", got[0].FormatDisplay)
		assert.Equal(t, rounddomain.RoleMemberOfOpposition, got[0].YourRole)
	})
}
