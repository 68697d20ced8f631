package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	userdb "github.com/Black-And-White-Club/debate-rounds/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrInvalidUser is returned for identities without an id or username.
var ErrInvalidUser = errors.New("user id and username are required")

// Identity is what the identity provider asserts about a caller.
type Identity struct {
	ID       uuid.UUID
	Username string
	IsStaff  bool
	IsAdmin  bool
}

// Service keeps the local users table in step with the identity provider.
type Service interface {
	EnsureUser(ctx context.Context, identity Identity) (*userdb.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*userdb.User, error)
}

// UserService implements Service.
type UserService struct {
	repo   userdb.Repository
	logger *slog.Logger
	db     bun.IDB
}

// NewUserService creates a new UserService.
func NewUserService(repo userdb.Repository, logger *slog.Logger, db bun.IDB) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, logger: logger, db: db}
}

// EnsureUser upserts the identity. Admins are always staff.
func (s *UserService) EnsureUser(ctx context.Context, identity Identity) (*userdb.User, error) {
	username := strings.TrimSpace(identity.Username)
	if identity.ID == uuid.Nil || username == "" {
		return nil, ErrInvalidUser
	}

	user := &userdb.User{
		ID:       identity.ID,
		Username: username,
		IsStaff:  identity.IsStaff || identity.IsAdmin,
		IsAdmin:  identity.IsAdmin,
	}
	if err := s.repo.Upsert(ctx, s.db, user); err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert user",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(identity.ID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return user, nil
}

// GetUser returns userdb.ErrNotFound for unknown ids.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*userdb.User, error) {
	return s.repo.GetByID(ctx, s.db, id)
}
