package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// RoundEventsStream holds every round lifecycle event.
const RoundEventsStream = "ROUND_EVENTS"

// InitializeStreams creates the JetStream streams the service publishes into.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	streamConfigs := []jetstream.StreamConfig{
		{
			Name:     RoundEventsStream,
			Subjects: []string{"round.>"},
		},
	}

	for _, streamConfig := range streamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.Error("Failed to create JetStream stream", slog.String("stream", streamConfig.Name), slog.Any("error", err))
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Created JetStream stream", slog.String("stream", streamConfig.Name))
		} else if err != nil {
			return fmt.Errorf("failed to check stream: %w", err)
		}
	}
	return nil
}
