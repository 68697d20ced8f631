package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	authdomain "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/jwt"
	userservice "github.com/Black-And-White-Club/debate-rounds/app/modules/user/application"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"go.opentelemetry.io/otel/trace"
)

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	users       userservice.Service
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	users userservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	return &service{
		jwtProvider: jwtProvider,
		users:       users,
		logger:      logger,
		tracer:      tracer,
	}
}

// Authenticate validates the token and upserts the caller into users.
func (s *service) Authenticate(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.DebugContext(ctx, "Token validation failed", attr.Error(err))
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if _, err := s.users.EnsureUser(ctx, userservice.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
		IsAdmin:  claims.IsAdmin,
	}); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return claims, nil
}
