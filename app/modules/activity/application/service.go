package activityservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	activitydb "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/infrastructure/repositories"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const serviceName = "ActivityService"

// Entry is one attendance record.
type Entry struct {
	ID        int64                      `json:"id"`
	UserID    uuid.UUID                  `json:"user_id"`
	Username  string                     `json:"username"`
	RoundID   uuid.UUID                  `json:"round_id"`
	Role      string                     `json:"role"`
	Action    rounddomain.ActivityAction `json:"action"`
	Timestamp time.Time                  `json:"timestamp"`
}

// ListInput narrows List.
type ListInput struct {
	RoundID uuid.UUID
	UserID  uuid.UUID
	Limit   int
	Offset  int
}

// Service records and lists attendance.
type Service interface {
	RecordRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error
	List(ctx context.Context, input ListInput) ([]Entry, error)
}

// ActivityService implements Service.
type ActivityService struct {
	repo    activitydb.Repository
	logger  *slog.Logger
	metrics observability.OperationMetrics
	db      bun.IDB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo activitydb.Repository, logger *slog.Logger, metrics observability.OperationMetrics, db bun.IDB) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &ActivityService{repo: repo, logger: logger, metrics: metrics, db: db}
}

// EntriesFor maps a round event to the log entries it produces. Joins are
// logged as spectators; unallocated participants complete as spectators.
// Start and terminate produce nothing.
func EntriesFor(event rounddomain.RoundEvent) []*activitydb.ActivityLog {
	var action rounddomain.ActivityAction
	switch event.Kind {
	case rounddomain.EventJoined:
		action = rounddomain.ActionJoined
	case rounddomain.EventAllocated:
		action = rounddomain.ActionAllocated
	case rounddomain.EventCompleted:
		action = rounddomain.ActionCompleted
	default:
		return nil
	}

	entries := make([]*activitydb.ActivityLog, 0, len(event.Allocations))
	for _, a := range event.Allocations {
		role := a.Role
		if action == rounddomain.ActionJoined || role == rounddomain.RoleUnassigned {
			role = rounddomain.RoleSpectator
		}
		entries = append(entries, &activitydb.ActivityLog{
			UserID:    a.UserID,
			RoundID:   event.Round.ID,
			Role:      string(role),
			Action:    string(action),
			Timestamp: event.OccurredAt,
		})
	}
	return entries
}

// RecordRoundEvent appends the event's entries.
func (s *ActivityService) RecordRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error {
	entries := EntriesFor(event)
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "RecordRoundEvent", serviceName)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, "RecordRoundEvent", serviceName, time.Since(start))
	}()

	if err := s.repo.Append(ctx, s.db, entries); err != nil {
		s.metrics.RecordOperationFailure(ctx, "RecordRoundEvent", serviceName)
		s.logger.ErrorContext(ctx, "Failed to record activity",
			attr.ExtractCorrelationID(ctx),
			attr.RoundID(event.Round.ID),
			attr.String("event", string(event.Kind)),
			attr.Error(err),
		)
		return fmt.Errorf("record activity: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "RecordRoundEvent", serviceName)
	s.logger.InfoContext(ctx, "Activity recorded",
		attr.ExtractCorrelationID(ctx),
		attr.RoundID(event.Round.ID),
		attr.String("event", string(event.Kind)),
		attr.Int("entries", len(entries)),
	)
	return nil
}

// List returns entries newest first.
func (s *ActivityService) List(ctx context.Context, input ListInput) ([]Entry, error) {
	limit := input.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.repo.List(ctx, s.db, activitydb.ListFilter{
		RoundID: input.RoundID,
		UserID:  input.UserID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{
			ID:        r.ID,
			UserID:    r.UserID,
			Username:  r.Username,
			RoundID:   r.RoundID,
			Role:      r.Role,
			Action:    rounddomain.ActivityAction(r.Action),
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}
