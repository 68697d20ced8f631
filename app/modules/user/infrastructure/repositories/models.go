package userdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the local projection of an identity-provider user. Rows are
// upserted from authenticated principals so rounds can reference them.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username      string    `bun:"username,notnull" json:"username"`
	IsStaff       bool      `bun:"is_staff,notnull" json:"is_staff"`
	IsAdmin       bool      `bun:"is_admin,notnull" json:"is_admin"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
