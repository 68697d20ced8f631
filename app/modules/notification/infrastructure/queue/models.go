package notificationqueue

import (
	"github.com/google/uuid"
)

// DeliveryJob pushes one stored notification to its recipient.
type DeliveryJob struct {
	NotificationID uuid.UUID `json:"notification_id"`
}

// Kind returns the job type identifier for River
func (DeliveryJob) Kind() string { return "notification_delivery" }

// JobInfo describes a delivery job still waiting in the queue.
type JobInfo struct {
	ID             int64  `json:"id"`
	NotificationID string `json:"notification_id"`
	State          string `json:"state"`
	CreatedAt      string `json:"created_at"`
	Attempt        int    `json:"attempt"`
	MaxAttempts    int    `json:"max_attempts"`
}
