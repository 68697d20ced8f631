package notificationdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for notification persistence.
type Repository interface {
	// InsertMany stores notifications in one statement and returns the ones
	// written. A row whose (event id, recipient) is already stored is skipped.
	InsertMany(ctx context.Context, db bun.IDB, notifications []*Notification) ([]*Notification, error)

	// GetByID returns ErrNotFound when the notification does not exist.
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Notification, error)

	// ListForRecipient returns the recipient's notifications newest first.
	ListForRecipient(ctx context.Context, db bun.IDB, recipientID uuid.UUID, filter ListFilter) ([]*Notification, error)

	// CountUnread counts the recipient's unread notifications.
	CountUnread(ctx context.Context, db bun.IDB, recipientID uuid.UUID) (int, error)

	// MarkRead returns ErrNotFound unless id belongs to recipientID.
	MarkRead(ctx context.Context, db bun.IDB, recipientID, id uuid.UUID) error

	// MarkAllRead reports how many notifications changed.
	MarkAllRead(ctx context.Context, db bun.IDB, recipientID uuid.UUID) (int, error)

	// MarkDelivered stamps delivered_at on a notification that has none.
	MarkDelivered(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
