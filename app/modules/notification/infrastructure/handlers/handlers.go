package notificationhandlers

import (
	"context"
	"log/slog"

	notificationservice "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/application"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NotificationHandlers implements the Handlers interface.
type NotificationHandlers struct {
	service notificationservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(
	service notificationservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &NotificationHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleRoundEvent handles every round.*.v1 topic. Nothing is published back.
func (h *NotificationHandlers) HandleRoundEvent(ctx context.Context, payload *rounddomain.RoundEvent) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "NotificationHandlers.HandleRoundEvent", trace.WithAttributes(
		attribute.String("round.event", string(payload.Kind)),
		attribute.String("round.id", payload.Round.ID.String()),
	))
	defer span.End()

	h.logger.InfoContext(ctx, "Round event received",
		attr.ExtractCorrelationID(ctx),
		attr.String("event", string(payload.Kind)),
		attr.RoundID(payload.Round.ID),
	)

	if err := h.service.HandleRoundEvent(ctx, *payload); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return nil, nil
}
