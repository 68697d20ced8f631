package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/jwt"
	userservice "github.com/Black-And-White-Club/debate-rounds/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/debate-rounds/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
)

// ------------------------
// Fake JWT Provider
// ------------------------

type FakeJWTProvider struct {
	GenerateTokenFunc func(claims *authdomain.Claims, ttl time.Duration) (string, error)
	ValidateTokenFunc func(tokenString string) (*authdomain.Claims, error)
}

func (f *FakeJWTProvider) GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error) {
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(claims, ttl)
	}
	return "token", nil
}

func (f *FakeJWTProvider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(tokenString)
	}
	return nil, authjwt.ErrInvalidToken
}

var _ authjwt.Provider = (*FakeJWTProvider)(nil)

// ------------------------
// Fake User Service
// ------------------------

type FakeUserService struct {
	trace []string

	EnsureUserFunc func(ctx context.Context, identity userservice.Identity) (*userdb.User, error)
}

func (f *FakeUserService) EnsureUser(ctx context.Context, identity userservice.Identity) (*userdb.User, error) {
	f.trace = append(f.trace, "EnsureUser")
	if f.EnsureUserFunc != nil {
		return f.EnsureUserFunc(ctx, identity)
	}
	return &userdb.User{ID: identity.ID, Username: identity.Username}, nil
}

func (f *FakeUserService) GetUser(context.Context, uuid.UUID) (*userdb.User, error) {
	f.trace = append(f.trace, "GetUser")
	return nil, userdb.ErrNotFound
}

var _ userservice.Service = (*FakeUserService)(nil)
