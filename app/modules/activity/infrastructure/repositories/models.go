package activitydb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityLog is one append-only attendance entry. round_id has no foreign
// key so entries outlive deleted rounds.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al"`
	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull"`
	RoundID       uuid.UUID `bun:"round_id,type:uuid,notnull"`
	Role          string    `bun:"role,notnull"`
	Action        string    `bun:"action,notnull"`
	Timestamp     time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`

	Username string `bun:"username,scanonly"`
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	RoundID uuid.UUID
	UserID  uuid.UUID
	Limit   int
	Offset  int
}
