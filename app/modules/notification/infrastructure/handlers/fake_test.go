package notificationhandlers

import (
	"context"

	notificationservice "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/application"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Notification Service
// ------------------------

type FakeNotificationService struct {
	trace []string

	HandleRoundEventFunc func(ctx context.Context, event rounddomain.RoundEvent) error
	ListFunc             func(ctx context.Context, recipientID uuid.UUID, input notificationservice.ListInput) ([]notificationservice.Notification, error)
	UnreadCountFunc      func(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkReadFunc         func(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllReadFunc      func(ctx context.Context, recipientID uuid.UUID) (int, error)
}

func NewFakeNotificationService() *FakeNotificationService {
	return &FakeNotificationService{trace: []string{}}
}

func (f *FakeNotificationService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeNotificationService) Notify(context.Context, []uuid.UUID, notificationservice.Type, string, string) ([]notificationservice.Notification, error) {
	f.record("Notify")
	return nil, nil
}

func (f *FakeNotificationService) HandleRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error {
	f.record("HandleRoundEvent")
	if f.HandleRoundEventFunc != nil {
		return f.HandleRoundEventFunc(ctx, event)
	}
	return nil
}

func (f *FakeNotificationService) Deliver(context.Context, uuid.UUID) error {
	f.record("Deliver")
	return nil
}

func (f *FakeNotificationService) List(ctx context.Context, recipientID uuid.UUID, input notificationservice.ListInput) ([]notificationservice.Notification, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, recipientID, input)
	}
	return nil, nil
}

func (f *FakeNotificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	f.record("UnreadCount")
	if f.UnreadCountFunc != nil {
		return f.UnreadCountFunc(ctx, recipientID)
	}
	return 0, nil
}

func (f *FakeNotificationService) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	f.record("MarkRead")
	if f.MarkReadFunc != nil {
		return f.MarkReadFunc(ctx, recipientID, id)
	}
	return nil
}

func (f *FakeNotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	f.record("MarkAllRead")
	if f.MarkAllReadFunc != nil {
		return f.MarkAllReadFunc(ctx, recipientID)
	}
	return 0, nil
}

// --- Accessors for assertions ---

func (f *FakeNotificationService) Trace() []string {
	return f.trace
}

var _ notificationservice.Service = (*FakeNotificationService)(nil)
