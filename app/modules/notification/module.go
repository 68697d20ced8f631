package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/debate-rounds/app/eventbus"
	notificationservice "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/application"
	notificationhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/handlers"
	notificationqueue "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/queue"
	notificationdb "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/repositories"
	notificationrouter "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/router"
	notificationsink "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/sink"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/Black-And-White-Club/debate-rounds/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Module represents the notification module.
type Module struct {
	Service            *notificationservice.NotificationService
	NotificationRouter *notificationrouter.NotificationRouter
	Queue              *notificationqueue.Service
	inbox              *notificationhandlers.InboxHandlers
	cancelFunc         context.CancelFunc
	logger             *slog.Logger
}

// NewNotificationModule creates the notification module. A nil natsConn logs
// notifications instead of publishing them. With the queue enabled, delivery
// runs as River jobs.
func NewNotificationModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	metrics observability.OperationMetrics,
	db *bun.DB,
	natsConn *nats.Conn,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "notification.NewNotificationModule initializing")

	var sink notificationservice.Sink
	if natsConn != nil {
		sink = notificationsink.NewNATSSink(natsConn, logger)
	} else {
		sink = notificationsink.NewLogSink(logger)
	}

	repo := notificationdb.NewRepository(db)
	service := notificationservice.NewNotificationService(repo, nil, sink, logger, metrics, db)

	var queue *notificationqueue.Service
	if cfg.Queue.Enabled {
		var err error
		queue, err = notificationqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, service, notificationqueue.Options{
			MaxWorkers:  cfg.Queue.MaxWorkers,
			MaxAttempts: cfg.Queue.MaxAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create notification queue: %w", err)
		}
		service.SetDelivery(queue)
	}

	var registry prometheus.Registerer
	if cfg.Observability.MetricsEnabled {
		registry = obs.Registry
	}

	handlers := notificationhandlers.NewNotificationHandlers(service, logger, obs.Tracer)
	notificationRouter := notificationrouter.NewNotificationRouter(logger, router, eventBus, eventBus, obs.Tracer, registry)
	if err := notificationRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure notification router: %w", err)
	}

	var inspector notificationhandlers.QueueInspector
	if queue != nil {
		inspector = queue
	}

	return &Module{
		Service:            service,
		NotificationRouter: notificationRouter,
		Queue:              queue,
		inbox:              notificationhandlers.NewInboxHandlers(service, inspector, logger),
		logger:             logger,
	}, nil
}

// Mount registers /api/notifications on r.
func (m *Module) Mount(r chi.Router) {
	r.Route("/api/notifications", m.inbox.Routes)
}

// Run starts the delivery queue, if any, and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting notification module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start notification queue", attr.Error(err))
			return
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Notification module goroutine stopped")
}

// Close stops the queue and the router.
func (m *Module) Close() error {
	m.logger.Info("Stopping notification module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.Queue.Stop(stopCtx); err != nil {
			m.logger.Error("Error stopping notification queue", attr.Error(err))
			return fmt.Errorf("error stopping notification queue: %w", err)
		}
	}

	if m.NotificationRouter != nil {
		if err := m.NotificationRouter.Close(); err != nil {
			m.logger.Error("Error closing NotificationRouter from module", attr.Error(err))
			return fmt.Errorf("error closing NotificationRouter: %w", err)
		}
	}

	m.logger.Info("Notification module stopped")
	return nil
}
