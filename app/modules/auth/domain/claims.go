package authdomain

import (
	"time"

	"github.com/google/uuid"
)

// Claims is what a validated bearer token asserts about the caller.
type Claims struct {
	UserID    uuid.UUID
	Username  string
	IsStaff   bool
	IsAdmin   bool
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Staff reports staff privileges. Admin implies staff.
func (c *Claims) Staff() bool {
	return c.IsStaff || c.IsAdmin
}
