package auth

import (
	"context"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/jwt"
	userservice "github.com/Black-And-White-Club/debate-rounds/app/modules/user/application"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/Black-And-White-Club/debate-rounds/config"
	"golang.org/x/time/rate"
)

// Module represents the auth module.
type Module struct {
	Service authservice.Service
	config  *config.Config
	limiter *authhandlers.IPRateLimiter
	logger  *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	users userservice.Service,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret)
	service := authservice.NewService(jwtProvider, users, logger, obs.Tracer)

	return &Module{
		Service: service,
		config:  cfg,
		limiter: authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
		logger:  logger,
	}
}

// Middleware returns the chain every /api route runs behind: CORS, per-IP
// rate limiting, then bearer authentication.
func (m *Module) Middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		authhandlers.CORSMiddleware(m.config.HTTP.AllowedOrigins),
		authhandlers.RateLimitMiddleware(m.limiter),
		authhandlers.AuthMiddleware(m.Service, m.logger),
	}
}
