//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/debate-rounds/app/eventbus"
	"github.com/Black-And-White-Club/debate-rounds/config"
	"github.com/Black-And-White-Club/debate-rounds/db/bundb"
	"github.com/Black-And-White-Club/debate-rounds/integration_tests/containers"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	NatsConn      *nats.Conn
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvOnce sync.Once
	sharedEnvErr  error
)

// GetTestEnv returns the package-wide environment, starting the containers on
// first use. Call Teardown from TestMain.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = NewTestEnvironment()
	})
	if sharedEnvErr != nil {
		t.Fatalf("failed to set up test environment: %v", sharedEnvErr)
	}
	if err := sharedEnv.Reset(sharedEnv.Ctx); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	return sharedEnv
}

// Teardown stops the shared environment if one was started.
func Teardown() {
	if sharedEnv != nil {
		sharedEnv.Close()
	}
}

// NewTestEnvironment creates a new test environment with Postgres and NATS containers
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setupContainers(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bundb.BunDB(sqlDB)

	if err := bundb.MigrateAll(ctx, env.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	env.NatsConn, err = nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	bus, _, err := eventbus.NewNATSEventBus(ctx, natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = bus

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		JWT:      config.JWTConfig{Secret: "integration-secret"},
	}
	return nil
}

// Reset empties every table the modules own.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	_, err := env.DB.ExecContext(ctx, `TRUNCATE TABLE
		speaker_scores, round_results, round_allocations, rounds,
		activity_logs, notifications, users
		RESTART IDENTITY CASCADE`)
	return err
}

// Close releases connections and terminates the containers.
func (env *TestEnvironment) Close() {
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}

	ctx := context.Background()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Postgres container: %v", err)
		}
	}
	if env.CancelContext != nil {
		env.CancelContext()
	}
}
