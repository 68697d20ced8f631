// Package notificationsink pushes delivered notifications to recipients.
package notificationsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	notificationservice "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/application"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is followed by the recipient's user id.
const SubjectPrefix = "debate.notifications."

// Subject is the per-user subject a client subscribes to.
func Subject(recipientID uuid.UUID) string {
	return SubjectPrefix + recipientID.String()
}

// Publisher is the slice of *nats.Conn the sink uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSSink publishes each notification as JSON on the recipient's subject.
type NATSSink struct {
	conn   Publisher
	logger *slog.Logger
}

func NewNATSSink(conn Publisher, logger *slog.Logger) *NATSSink {
	return &NATSSink{conn: conn, logger: logger}
}

func (s *NATSSink) Publish(ctx context.Context, n notificationservice.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	subject := Subject(n.RecipientID)
	if err := s.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	s.logger.DebugContext(ctx, "Notification published",
		attr.String("subject", subject),
		attr.UUID("notification_id", n.ID),
	)
	return nil
}

// LogSink writes notifications to the log. Used when NATS is not configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, n notificationservice.Notification) error {
	s.logger.InfoContext(ctx, "Notification",
		attr.UserID(n.RecipientID),
		attr.String("type", string(n.Type)),
		attr.String("message", n.Message),
		attr.String("link", n.Link),
	)
	return nil
}
