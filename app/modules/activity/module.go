package activity

import (
	"context"
	"log/slog"

	activityservice "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/application"
	activityhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/infrastructure/handlers"
	activitydb "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the activity log module.
type Module struct {
	Service  *activityservice.ActivityService
	handlers *activityhandlers.ActivityHandlers
	logger   *slog.Logger
}

// NewActivityModule creates the activity module.
func NewActivityModule(ctx context.Context, obs *observability.Observability, metrics observability.OperationMetrics, db *bun.DB) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "activity.NewActivityModule initializing")

	repo := activitydb.NewRepository(db)
	service := activityservice.NewActivityService(repo, logger, metrics, db)

	return &Module{
		Service:  service,
		handlers: activityhandlers.NewActivityHandlers(service, logger),
		logger:   logger,
	}
}

// Mount registers /api/activity on r.
func (m *Module) Mount(r chi.Router) {
	r.Route("/api/activity", m.handlers.Routes)
}
