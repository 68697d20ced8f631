package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/debate-rounds/app/eventbus"
	"github.com/Black-And-White-Club/debate-rounds/app/modules/activity"
	"github.com/Black-And-White-Club/debate-rounds/app/modules/auth"
	"github.com/Black-And-White-Club/debate-rounds/app/modules/notification"
	"github.com/Black-And-White-Club/debate-rounds/app/modules/round"
	userservice "github.com/Black-And-White-Club/debate-rounds/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/debate-rounds/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/Black-And-White-Club/debate-rounds/config"
	"github.com/Black-And-White-Club/debate-rounds/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/uptrace/bun"
)

// App holds the wired modules and the infrastructure they share.
type App struct {
	Config             *config.Config
	Observability      *observability.Observability
	DB                 *bun.DB
	EventBus           eventbus.EventBus
	Router             *message.Router
	AuthModule         *auth.Module
	RoundModule        *round.Module
	ActivityModule     *activity.Module
	NotificationModule *notification.Module

	natsConn *nats.Conn
	server   *http.Server
	logger   *slog.Logger
}

// NewApp connects to Postgres and, when configured, NATS, then builds every
// module.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	db, err := bundb.NewBunDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		logger:        logger,
	}

	if cfg.NATS.Enabled() {
		bus, conn, err := eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus, app.natsConn = bus, conn
		logger.InfoContext(ctx, "Event bus connected to NATS", slog.String("url", cfg.NATS.URL))
	} else {
		app.EventBus = eventbus.NewInMemoryEventBus(logger)
		logger.InfoContext(ctx, "NATS not configured, using in-process event bus")
	}

	app.Router, err = message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	if err := app.initModules(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.server = &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: app.Handler(),
	}
	return app, nil
}

func (app *App) initModules(ctx context.Context) error {
	cfg, obs := app.Config, app.Observability

	users := userservice.NewUserService(userdb.NewRepository(app.DB), app.logger, app.DB)
	app.AuthModule = auth.NewModule(ctx, cfg, obs, users)

	app.ActivityModule = activity.NewActivityModule(ctx, obs, app.metrics("activity"), app.DB)

	app.RoundModule = round.NewRoundModule(ctx, cfg, obs, app.metrics("round"), app.DB,
		app.ActivityModule.Service, app.EventBus)

	notificationModule, err := notification.NewNotificationModule(ctx, cfg, obs, app.metrics("notification"),
		app.DB, app.natsConn, app.EventBus, app.Router)
	if err != nil {
		return fmt.Errorf("failed to initialize notification module: %w", err)
	}
	app.NotificationModule = notificationModule
	return nil
}

// metrics returns prometheus operation metrics for subsystem, or no-ops when
// metrics are off or the collectors cannot be registered.
func (app *App) metrics(subsystem string) observability.OperationMetrics {
	if !app.Config.Observability.MetricsEnabled {
		return observability.NewNoop()
	}
	m, err := observability.NewPrometheusMetrics(app.Observability.Registry, subsystem)
	if err != nil {
		app.logger.Warn("Falling back to no-op metrics",
			slog.String("subsystem", subsystem),
			slog.Any("error", err),
		)
		return observability.NewNoop()
	}
	return m
}
