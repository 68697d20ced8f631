package activityservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	activitydb "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/infrastructure/repositories"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type FakeActivityRepo struct {
	trace []string

	AppendFunc func(ctx context.Context, db bun.IDB, entries []*activitydb.ActivityLog) error
	ListFunc   func(ctx context.Context, db bun.IDB, filter activitydb.ListFilter) ([]*activitydb.ActivityLog, error)
}

func (f *FakeActivityRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeActivityRepo) Append(ctx context.Context, db bun.IDB, entries []*activitydb.ActivityLog) error {
	f.record("Append")
	if f.AppendFunc != nil {
		return f.AppendFunc(ctx, db, entries)
	}
	return nil
}

func (f *FakeActivityRepo) List(ctx context.Context, db bun.IDB, filter activitydb.ListFilter) ([]*activitydb.ActivityLog, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db, filter)
	}
	return nil, nil
}

var _ activitydb.Repository = (*FakeActivityRepo)(nil)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestEntriesFor(t *testing.T) {
	roundID := uuid.New()
	u1, u2 := uuid.New(), uuid.New()
	at := time.Date(2026, 10, 2, 19, 0, 0, 0, time.UTC)
	allocs := []rounddomain.Allocation{
		{UserID: u1, Role: rounddomain.RoleChairAdjudicator},
		{UserID: u2},
	}

	tests := []struct {
		name       string
		kind       rounddomain.EventKind
		allocs     []rounddomain.Allocation
		wantRoles  []string
		wantAction string
	}{
		{name: "join is logged as spectator", kind: rounddomain.EventJoined, allocs: allocs[1:], wantRoles: []string{"Spectator"}, wantAction: "joined"},
		{name: "allocation keeps roles", kind: rounddomain.EventAllocated, allocs: allocs[:1], wantRoles: []string{"Chair Adjudicator"}, wantAction: "allocated"},
		{name: "completion covers spectators", kind: rounddomain.EventCompleted, allocs: allocs, wantRoles: []string{"Chair Adjudicator", "Spectator"}, wantAction: "completed"},
		{name: "start writes nothing", kind: rounddomain.EventStarted, allocs: allocs},
		{name: "terminate writes nothing", kind: rounddomain.EventTerminated, allocs: allocs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := EntriesFor(rounddomain.RoundEvent{
				Kind:        tt.kind,
				Round:       rounddomain.Round{ID: roundID},
				Allocations: tt.allocs,
				OccurredAt:  at,
			})

			var roles []string
			for _, e := range entries {
				roles = append(roles, e.Role)
				assert.Equal(t, tt.wantAction, e.Action)
				assert.Equal(t, roundID, e.RoundID)
				assert.Equal(t, at, e.Timestamp)
			}
			assert.Equal(t, tt.wantRoles, roles)
		})
	}
}

func TestRecordRoundEvent(t *testing.T) {
	event := rounddomain.RoundEvent{
		Kind:        rounddomain.EventJoined,
		Round:       rounddomain.Round{ID: uuid.New()},
		Allocations: []rounddomain.Allocation{{UserID: uuid.New()}},
	}

	t.Run("appends entries", func(t *testing.T) {
		repo := &FakeActivityRepo{}
		var got []*activitydb.ActivityLog
		repo.AppendFunc = func(_ context.Context, _ bun.IDB, e []*activitydb.ActivityLog) error {
			got = e
			return nil
		}
		svc := NewActivityService(repo, quietLogger(), nil, nil)

		require.NoError(t, svc.RecordRoundEvent(context.Background(), event))
		assert.Len(t, got, 1)
	})

	t.Run("surfaces repository errors", func(t *testing.T) {
		repo := &FakeActivityRepo{AppendFunc: func(context.Context, bun.IDB, []*activitydb.ActivityLog) error {
			return errors.New("disk full")
		}}
		svc := NewActivityService(repo, quietLogger(), nil, nil)

		assert.Error(t, svc.RecordRoundEvent(context.Background(), event))
	})

	t.Run("events without entries skip the repository", func(t *testing.T) {
		repo := &FakeActivityRepo{}
		svc := NewActivityService(repo, quietLogger(), nil, nil)

		event := event
		event.Kind = rounddomain.EventStarted
		require.NoError(t, svc.RecordRoundEvent(context.Background(), event))
		assert.Empty(t, repo.trace)
	})
}

func TestList_ClampsPaging(t *testing.T) {
	repo := &FakeActivityRepo{}
	var got activitydb.ListFilter
	repo.ListFunc = func(_ context.Context, _ bun.IDB, f activitydb.ListFilter) ([]*activitydb.ActivityLog, error) {
		got = f
		return []*activitydb.ActivityLog{{ID: 7, Action: "joined", Role: "Spectator", Username: "sam"}}, nil
	}
	svc := NewActivityService(repo, quietLogger(), nil, nil)
	roundID := uuid.New()

	entries, err := svc.List(context.Background(), ListInput{RoundID: roundID, Limit: 9999, Offset: -1})

	require.NoError(t, err)
	assert.Equal(t, activitydb.ListFilter{RoundID: roundID, Limit: 100}, got)
	require.Len(t, entries, 1)
	assert.Equal(t, rounddomain.ActionJoined, entries[0].Action)
	assert.Equal(t, "sam", entries[0].Username)
}
