package round

import (
	"context"
	"log/slog"

	roundservice "github.com/Black-And-White-Club/debate-rounds/app/modules/round/application"
	rounddispatch "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/dispatch"
	roundhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/handlers"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/Black-And-White-Club/debate-rounds/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the round module.
type Module struct {
	RoundService roundservice.Service
	Dispatcher   *rounddispatch.Dispatcher
	handlers     *roundhandlers.RoundHandlers
	logger       *slog.Logger
}

// NewRoundModule creates a new instance of the Round module. Committed round
// changes are recorded through activity and published on publisher.
func NewRoundModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	metrics observability.OperationMetrics,
	db *bun.DB,
	activity rounddispatch.ActivityRecorder,
	publisher message.Publisher,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "round.NewRoundModule initializing",
		slog.Bool("enforce_unique_seat_roles", cfg.Round.EnforceUniqueSeatRoles),
	)

	repo := rounddb.NewRepository(db)
	dispatcher := rounddispatch.NewDispatcher(activity, publisher, logger, metrics)
	service := roundservice.NewRoundService(repo, dispatcher, logger, metrics, obs.Tracer, db, roundservice.Options{
		EnforceUniqueSeatRoles: cfg.Round.EnforceUniqueSeatRoles,
	})

	return &Module{
		RoundService: service,
		Dispatcher:   dispatcher,
		handlers:     roundhandlers.NewRoundHandlers(service, logger, obs.Tracer),
		logger:       logger,
	}
}

// Mount registers /api/rounds on r.
func (m *Module) Mount(r chi.Router) {
	r.Route("/api/rounds", m.handlers.Routes)
}
