package activitydb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new activity repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Append(ctx context.Context, db bun.IDB, entries []*ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().
		Model(&entries).
		Returning("id, timestamp").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to append activity logs: %w", err)
	}
	return nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB, filter ListFilter) ([]*ActivityLog, error) {
	db = r.resolveDB(db)
	var entries []*ActivityLog
	q := db.NewSelect().
		Model(&entries).
		ColumnExpr("al.*").
		ColumnExpr("COALESCE(u.username, '') AS username").
		Join("LEFT JOIN users AS u ON u.id = al.user_id").
		OrderExpr("al.timestamp DESC, al.id DESC")
	if filter.RoundID != uuid.Nil {
		q = q.Where("al.round_id = ?", filter.RoundID)
	}
	if filter.UserID != uuid.Nil {
		q = q.Where("al.user_id = ?", filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return entries, nil
}
