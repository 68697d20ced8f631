package authservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/domain"
)

// Service defines the authentication service interface.
type Service interface {
	// Authenticate validates a bearer token and makes sure the caller exists
	// as a local user.
	Authenticate(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}
