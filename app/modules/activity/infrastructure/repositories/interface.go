package activitydb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for activity log persistence.
type Repository interface {
	// Append inserts entries in one statement.
	Append(ctx context.Context, db bun.IDB, entries []*ActivityLog) error

	// List returns entries newest first.
	List(ctx context.Context, db bun.IDB, filter ListFilter) ([]*ActivityLog, error)
}
