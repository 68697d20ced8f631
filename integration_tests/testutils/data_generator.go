//go:build integration

package testutils

import (
	"context"
	"testing"
	"time"

	roundservice "github.com/Black-And-White-Club/debate-rounds/app/modules/round/application"
	userservice "github.com/Black-And-White-Club/debate-rounds/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/debate-rounds/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// TestDataGenerator creates users for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	users userservice.Service
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(env *TestEnvironment, seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		users: userservice.NewUserService(userdb.NewRepository(env.DB), env.Logger, env.DB),
	}
}

// Caller stores a user with a fake username and returns it as a round caller.
func (g *TestDataGenerator) Caller(t *testing.T, staff, admin bool) roundservice.Caller {
	t.Helper()
	identity := userservice.Identity{
		ID:       uuid.New(),
		Username: g.faker.Username() + "_" + g.faker.Numerify("####"),
		IsStaff:  staff,
		IsAdmin:  admin,
	}
	if _, err := g.users.EnsureUser(context.Background(), identity); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return roundservice.Caller{ID: identity.ID, Username: identity.Username, IsStaff: staff, IsAdmin: admin}
}

// Callers creates n plain participants.
func (g *TestDataGenerator) Callers(t *testing.T, n int) []roundservice.Caller {
	t.Helper()
	out := make([]roundservice.Caller, n)
	for i := range out {
		out[i] = g.Caller(t, false, false)
	}
	return out
}

// Summary returns a plausible adjudication summary.
func (g *TestDataGenerator) Summary() string {
	return g.faker.Sentence(12)
}
