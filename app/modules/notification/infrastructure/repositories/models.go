package notificationdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notification is one message addressed to one user.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	RecipientID   uuid.UUID  `bun:"recipient_id,type:uuid,notnull"`
	EventID       *uuid.UUID `bun:"event_id,type:uuid"`
	Type          string     `bun:"type,notnull"`
	Message       string     `bun:"message,notnull"`
	Link          *string    `bun:"link"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	Read          bool       `bun:"read,notnull"`
	DeliveredAt   *time.Time `bun:"delivered_at"`
}

// ListFilter narrows ListForRecipient.
type ListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
