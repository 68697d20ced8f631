package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for user persistence.
type Repository interface {
	// Upsert creates the user or refreshes username and flags.
	Upsert(ctx context.Context, db bun.IDB, user *User) error

	// GetByID returns ErrNotFound when no user has id.
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)

	// GetByIDs returns the users that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]*User, error)
}
