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

type transitionCall func(svc *RoundService, caller Caller, id uuid.UUID) (*rounddomain.Round, error)

func TestStartAndTerminateRound(t *testing.T) {
	start := func(svc *RoundService, c Caller, id uuid.UUID) (*rounddomain.Round, error) {
		return svc.StartRound(context.Background(), c, id)
	}
	terminate := func(svc *RoundService, c Caller, id uuid.UUID) (*rounddomain.Round, error) {
		return svc.TerminateRound(context.Background(), c, id)
	}

	tests := []struct {
		name       string
		call       transitionCall
		caller     Caller
		status     rounddomain.Status
		missing    bool
		wantErr    error
		wantStatus rounddomain.Status
		wantKind   rounddomain.EventKind
		wantTrace  []string
	}{
		{name: "speaker cannot start", call: start, caller: speakerCaller, status: rounddomain.StatusAllocation, wantErr: ErrForbidden, wantTrace: []string{}},
		{name: "start unknown round", call: start, caller: staffCaller, missing: true, wantErr: ErrNotFound, wantTrace: []string{"GetRound"}},
		{name: "start from setup", call: start, caller: staffCaller, status: rounddomain.StatusSetup, wantErr: ErrInvalidStateTransition, wantTrace: []string{"GetRound"}},
		{name: "start twice", call: start, caller: staffCaller, status: rounddomain.StatusActive, wantErr: ErrInvalidStateTransition, wantTrace: []string{"GetRound"}},
		{
			name: "start allocated round", call: start, caller: staffCaller, status: rounddomain.StatusAllocation,
			wantStatus: rounddomain.StatusActive, wantKind: rounddomain.EventStarted,
			wantTrace: []string{"GetRound", "UpdateRoundState", "ListAllocations"},
		},
		{name: "staff cannot terminate", call: terminate, caller: staffCaller, status: rounddomain.StatusActive, wantErr: ErrForbidden, wantTrace: []string{}},
		{name: "terminate allocation round", call: terminate, caller: adminCaller, status: rounddomain.StatusAllocation, wantErr: ErrInvalidStateTransition, wantTrace: []string{"GetRound"}},
		{name: "terminate completed round", call: terminate, caller: adminCaller, status: rounddomain.StatusCompleted, wantErr: ErrInvalidStateTransition, wantTrace: []string{"GetRound"}},
		{
			name: "admin terminates active round", call: terminate, caller: adminCaller, status: rounddomain.StatusActive,
			wantStatus: rounddomain.StatusTerminated, wantKind: rounddomain.EventTerminated,
			wantTrace: []string{"GetRound", "UpdateRoundState", "ListAllocations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			repo.GetRoundFunc = func(_ context.Context, _ bun.IDB, _ uuid.UUID, lock rounddb.LockMode) (*rounddb.Round, error) {
				if tt.missing {
					return nil, rounddb.ErrNotFound
				}
				assert.Equal(t, rounddb.LockUpdate, lock)
				return roundRow(tt.status), nil
			}
			var updated *rounddb.Round
			repo.UpdateRoundStateFunc = func(_ context.Context, _ bun.IDB, r *rounddb.Round) error {
				updated = r
				return nil
			}
			repo.ListAllocationsFunc = func(context.Context, bun.IDB, uuid.UUID) ([]*rounddb.Allocation, error) {
				return []*rounddb.Allocation{
					{ID: uuid.New(), UserID: speakerCaller.ID, Role: string(rounddomain.RolePrimeMinister)},
					{ID: uuid.New(), UserID: adminCaller.ID, Role: string(rounddomain.RoleChairAdjudicator)},
				}, nil
			}
			emitter := &FakeEmitter{}
			svc := newTestService(repo, emitter, Options{})

			got, err := tt.call(svc, tt.caller, roundRow(rounddomain.StatusSetup).ID)

			assert.Equal(t, tt.wantTrace, repo.Trace())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, updated)
				assert.Empty(t, emitter.Events())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantStatus == rounddomain.StatusActive, got.IsActive)
			require.NotNil(t, updated)
			assert.Equal(t, got.IsActive, updated.IsActive)

			if tt.wantStatus == rounddomain.StatusActive {
				require.NotNil(t, got.StartedAt)
				assert.Equal(t, fixedNow, *got.StartedAt)
				assert.Nil(t, got.CompletedAt)
			} else {
				require.NotNil(t, got.CompletedAt)
				assert.Equal(t, fixedNow, *got.CompletedAt)
			}

			events := emitter.Events()
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantKind, events[0].Kind)
			assert.Len(t, events[0].Participants(), 2)
		})
	}
}

func TestStartRound_InvalidTransitionNamesAction(t *testing.T) {
	repo := NewFakeRoundRepo()
	repo.GetRoundFunc = func(context.Context, bun.IDB, uuid.UUID, rounddb.LockMode) (*rounddb.Round, error) {
		return roundRow(rounddomain.StatusSetup), nil
	}
	svc := newTestService(repo, nil, Options{})

	_, err := svc.StartRound(context.Background(), staffCaller, uuid.New())

	require.Error(t, err)
	assert.Equal(t, "cannot start a round with status 'SETUP'", err.Error())
}
