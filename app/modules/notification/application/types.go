package notificationservice

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification.
type Type string

const (
	TypeRoundStart       Type = "ROUND_START"
	TypeRoundEnd         Type = "ROUND_END"
	TypeRoleAssigned     Type = "ROLE_ASSIGNED"
	TypeResultsAvailable Type = "RESULTS_AVAILABLE"
	TypeSystem           Type = "SYSTEM"
	TypeRoundJoin        Type = "ROUND_JOIN"
)

func (t Type) Valid() bool {
	switch t {
	case TypeRoundStart, TypeRoundEnd, TypeRoleAssigned, TypeResultsAvailable, TypeSystem, TypeRoundJoin:
		return true
	}
	return false
}

// Notification is a message delivered to one user.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Type        Type      `json:"type"`
	Message     string    `json:"message"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Read        bool      `json:"read"`
}

// ListInput narrows List.
type ListInput struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
