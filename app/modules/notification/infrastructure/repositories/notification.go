package notificationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a notification is not found.
var ErrNotFound = errors.New("notification not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new notification repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertMany(ctx context.Context, db bun.IDB, notifications []*Notification) ([]*Notification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
	}
	var ids []uuid.UUID
	_, err := db.NewInsert().
		Model(&notifications).
		On("CONFLICT (event_id, recipient_id) DO NOTHING").
		Returning("id").
		Exec(ctx, &ids)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}

	written := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		written[id] = struct{}{}
	}
	out := make([]*Notification, 0, len(ids))
	for _, n := range notifications {
		if _, ok := written[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Notification, error) {
	db = r.resolveDB(db)
	n := new(Notification)
	if err := db.NewSelect().Model(n).Where("n.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (r *Impl) ListForRecipient(ctx context.Context, db bun.IDB, recipientID uuid.UUID, filter ListFilter) ([]*Notification, error) {
	db = r.resolveDB(db)
	var out []*Notification
	q := db.NewSelect().
		Model(&out).
		Where("n.recipient_id = ?", recipientID).
		OrderExpr("n.created_at DESC, n.id")
	if filter.UnreadOnly {
		q = q.Where("n.read = FALSE")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

func (r *Impl) CountUnread(ctx context.Context, db bun.IDB, recipientID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Notification)(nil)).
		Where("n.recipient_id = ?", recipientID).
		Where("n.read = FALSE").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *Impl) MarkRead(ctx context.Context, db bun.IDB, recipientID, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read = TRUE").
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) MarkAllRead(ctx context.Context, db bun.IDB, recipientID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read = TRUE").
		Where("recipient_id = ?", recipientID).
		Where("read = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *Impl) MarkDelivered(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewUpdate().
		Model((*Notification)(nil)).
		Set("delivered_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("delivered_at IS NULL").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return nil
}
