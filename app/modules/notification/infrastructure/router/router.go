package notificationrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/debate-rounds/app/eventbus"
	notificationhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/handlers"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// NotificationRouter handles Watermill handler registration for round events.
type NotificationRouter struct {
	logger         *slog.Logger
	router         *message.Router
	subscriber     eventbus.EventBus
	publisher      eventbus.EventBus
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewNotificationRouter creates a new NotificationRouter. A nil registry
// leaves router metrics off.
func NewNotificationRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	registry prometheus.Registerer,
) *NotificationRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "debate", "notifications")
		metricsBuilder = &builder
	}
	return &NotificationRouter{
		logger:         logger,
		router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds middleware and registers one handler per round topic.
func (r *NotificationRouter) Configure(_ context.Context, handlers notificationhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.router)
	}

	r.router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

// registerHandlers wires round topics to the handler.
func (r *NotificationRouter) registerHandlers(handlers notificationhandlers.Handlers) {
	for _, kind := range rounddomain.EventKinds {
		topic := string(kind)
		handlerName := "notification." + topic

		r.router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			r.publisher,
			handlerwrapper.WrapTransformingTyped(
				handlerName,
				r.logger,
				r.tracer,
				handlers.HandleRoundEvent,
			),
		)
	}

	r.logger.Info("Notification module handlers registered successfully",
		slog.Int("topics", len(rounddomain.EventKinds)),
	)
}

// Close shuts down the router.
func (r *NotificationRouter) Close() error {
	return r.router.Close()
}
