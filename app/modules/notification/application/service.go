package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	notificationdb "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/repositories"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const serviceName = "NotificationService"

var (
	ErrNotFound = errors.New("notification not found")
	ErrInvalid  = errors.New("invalid notification")
)

// Delivery schedules pushing stored notifications to their recipients.
type Delivery interface {
	Enqueue(ctx context.Context, ids []uuid.UUID) error
}

// Sink pushes one notification to its recipient.
type Sink interface {
	Publish(ctx context.Context, n Notification) error
}

// Service stores notifications and hands them to delivery.
type Service interface {
	Notify(ctx context.Context, recipients []uuid.UUID, typ Type, message, link string) ([]Notification, error)
	HandleRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error
	Deliver(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, recipientID uuid.UUID, input ListInput) ([]Notification, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// NotificationService implements Service.
type NotificationService struct {
	repo     notificationdb.Repository
	delivery Delivery
	sink     Sink
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	db       bun.IDB
}

// NewNotificationService creates a new NotificationService. With a nil
// delivery, notifications are published to sink right after they are stored.
func NewNotificationService(
	repo notificationdb.Repository,
	delivery Delivery,
	sink Sink,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	db bun.IDB,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &NotificationService{
		repo:     repo,
		delivery: delivery,
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
		db:       db,
	}
}

// SetDelivery swaps the delivery used for newly stored notifications.
func (s *NotificationService) SetDelivery(d Delivery) { s.delivery = d }

func toNotification(n *notificationdb.Notification) Notification {
	out := Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        Type(n.Type),
		Message:     n.Message,
		CreatedAt:   n.CreatedAt,
		Read:        n.Read,
	}
	if n.Link != nil {
		out.Link = *n.Link
	}
	return out
}

func newRow(recipient uuid.UUID, typ Type, message, link string) *notificationdb.Notification {
	row := &notificationdb.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Type:        string(typ),
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	if link != "" {
		row.Link = &link
	}
	return row
}

// Notify stores one notification per distinct recipient and schedules
// delivery. Delivery failures are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, recipients []uuid.UUID, typ Type, message, link string) ([]Notification, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, typ)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	seen := make(map[uuid.UUID]struct{}, len(recipients))
	rows := make([]*notificationdb.Notification, 0, len(recipients))
	for _, r := range recipients {
		if _, dup := seen[r]; dup || r == uuid.Nil {
			continue
		}
		seen[r] = struct{}{}
		rows = append(rows, newRow(r, typ, message, link))
	}
	return s.store(ctx, "Notify", rows)
}

func (s *NotificationService) store(ctx context.Context, operation string, rows []*notificationdb.Notification) ([]Notification, error) {
	if len(rows) == 0 {
		return []Notification{}, nil
	}

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, serviceName)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start))
	}()

	stored, err := s.repo.InsertMany(ctx, s.db, rows)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, serviceName)
		s.logger.ErrorContext(ctx, "Failed to store notifications",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operation),
			attr.Error(err),
		)
		return nil, fmt.Errorf("store notifications: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, operation, serviceName)
	if skipped := len(rows) - len(stored); skipped > 0 {
		s.logger.InfoContext(ctx, "Skipped notifications already stored for event",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operation),
			attr.Int("skipped", skipped),
		)
	}

	out := make([]Notification, 0, len(stored))
	ids := make([]uuid.UUID, 0, len(stored))
	for _, r := range stored {
		out = append(out, toNotification(r))
		ids = append(ids, r.ID)
	}
	s.dispatch(ctx, out, ids)
	return out, nil
}

func (s *NotificationService) dispatch(ctx context.Context, stored []Notification, ids []uuid.UUID) {
	if s.delivery != nil {
		if err := s.delivery.Enqueue(ctx, ids); err != nil {
			s.logger.WarnContext(ctx, "Failed to enqueue notification delivery",
				attr.ExtractCorrelationID(ctx),
				attr.Int("count", len(ids)),
				attr.Error(err),
			)
		}
		return
	}
	if s.sink == nil {
		return
	}
	for _, n := range stored {
		if err := s.sink.Publish(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish notification",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("notification_id", n.ID),
				attr.Error(err),
			)
			continue
		}
		if err := s.repo.MarkDelivered(ctx, s.db, n.ID); err != nil {
			s.logger.WarnContext(ctx, "Failed to mark notification delivered",
				attr.UUID("notification_id", n.ID),
				attr.Error(err),
			)
		}
	}
}

// HandleRoundEvent turns a committed round event into notifications. Handling
// the same event again stores and delivers nothing new.
func (s *NotificationService) HandleRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error {
	vars := RoundVars(event.Round)
	var rows []*notificationdb.Notification

	switch event.Kind {
	case rounddomain.EventJoined:
		if len(event.Allocations) == 0 {
			return nil
		}
		vars["username"] = event.Allocations[0].Username
		msg, link := joinTemplate.render(vars)
		rows = append(rows, newRow(event.Round.CreatedBy, TypeRoundJoin, msg, link))

	case rounddomain.EventAllocated:
		for _, a := range event.Allocations {
			if a.Role == rounddomain.RoleUnassigned {
				continue
			}
			vars["role"] = string(a.Role)
			msg, link := roleAssignedTemplate.render(vars)
			rows = append(rows, newRow(a.UserID, TypeRoleAssigned, msg, link))
		}

	case rounddomain.EventStarted:
		rows = s.broadcast(event, TypeRoundStart, roundStartTemplate, vars)
	case rounddomain.EventTerminated:
		rows = s.broadcast(event, TypeRoundEnd, roundEndTemplate, vars)
	case rounddomain.EventCompleted:
		rows = s.broadcast(event, TypeResultsAvailable, resultsTemplate, vars)

	default:
		s.logger.WarnContext(ctx, "Ignoring unknown round event",
			attr.ExtractCorrelationID(ctx),
			attr.String("event", string(event.Kind)),
		)
		return nil
	}

	if event.ID != uuid.Nil {
		eventID := event.ID
		for _, r := range rows {
			r.EventID = &eventID
		}
	}
	_, err := s.store(ctx, "HandleRoundEvent", rows)
	return err
}

func (s *NotificationService) broadcast(event rounddomain.RoundEvent, typ Type, tmpl Template, vars map[string]string) []*notificationdb.Notification {
	msg, link := tmpl.render(vars)
	participants := event.Participants()
	rows := make([]*notificationdb.Notification, 0, len(participants))
	for _, id := range participants {
		rows = append(rows, newRow(id, typ, msg, link))
	}
	return rows
}

// Deliver publishes a stored notification to the sink and stamps it. A
// notification that no longer exists is dropped.
func (s *NotificationService) Deliver(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, notificationdb.ErrNotFound) {
			s.logger.InfoContext(ctx, "Notification gone before delivery", attr.UUID("notification_id", id))
			return nil
		}
		return fmt.Errorf("load notification: %w", err)
	}
	if row.DeliveredAt != nil {
		return nil
	}
	if s.sink != nil {
		if err := s.sink.Publish(ctx, toNotification(row)); err != nil {
			return fmt.Errorf("publish notification: %w", err)
		}
	}
	if err := s.repo.MarkDelivered(ctx, s.db, id); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

// List returns the recipient's notifications newest first.
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, input ListInput) ([]Notification, error) {
	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.repo.ListForRecipient(ctx, s.db, recipientID, notificationdb.ListFilter{
		UnreadOnly: input.UnreadOnly,
		Limit:      limit,
		Offset:     max(input.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, toNotification(r))
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, s.db, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead returns ErrNotFound when id is not one of the recipient's.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, s.db, recipientID, id); err != nil {
		if errors.Is(err, notificationdb.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	n, err := s.repo.MarkAllRead(ctx, s.db, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}
