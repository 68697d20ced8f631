package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// QueueName is the dedicated River queue for notification delivery.
const QueueName = "notifications"

// Metrics is the slice of observability.OperationMetrics the queue records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService defines the contract for notification delivery jobs.
type QueueService interface {
	// Enqueue inserts one delivery job per notification id.
	Enqueue(ctx context.Context, ids []uuid.UUID) error
	// PendingJobs lists delivery jobs that have not finished (for debugging).
	PendingJobs(ctx context.Context) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Options tune the River client.
type Options struct {
	MaxWorkers  int
	MaxAttempts int
}

// Service delivers notifications through River.
type Service struct {
	client      *river.Client[pgx.Tx]
	pool        *pgxpool.Pool
	logger      *slog.Logger
	db          *bun.DB
	metrics     Metrics
	maxAttempts int
}

// NewService creates a River-backed delivery queue. Jobs call deliverer.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, deliverer Deliverer, opts Options) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_notification_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing notification queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 25
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewDeliveryWorker(ctxLogger, deliverer))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: opts.MaxWorkers},
		},
		Workers:      workers,
		MaxAttempts:  opts.MaxAttempts,
		ErrorHandler: &errorHandler{logger: ctxLogger, metrics: metrics},
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:      riverClient,
		pool:        pool,
		logger:      ctxLogger,
		db:          bunDB,
		metrics:     metrics,
		maxAttempts: opts.MaxAttempts,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Notification queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting notification queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	s.logger.Info("Notification queue service started successfully")
	return nil
}

// Stop waits for running jobs and closes the pgx pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping notification queue service")

	err := s.client.Stop(ctx)
	s.pool.Close()
	if err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Notification queue service stopped successfully")
	return nil
}

// Enqueue inserts one delivery job per id in a single round trip.
func (s *Service) Enqueue(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_delivery", "river")

	params := make([]river.InsertManyParams, 0, len(ids))
	for _, id := range ids {
		params = append(params, river.InsertManyParams{
			Args: DeliveryJob{NotificationID: id},
			InsertOpts: &river.InsertOpts{
				Queue:       QueueName,
				MaxAttempts: s.maxAttempts,
			},
		})
	}

	inserted, err := s.client.InsertMany(ctx, params)
	if err != nil {
		s.logger.Error("Failed to enqueue notification delivery",
			attr.ExtractCorrelationID(ctx),
			attr.Int("count", len(ids)),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, "enqueue_delivery", "river")
		return fmt.Errorf("failed to enqueue notification delivery: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_delivery", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_delivery", "river", time.Since(start))

	s.logger.Debug("Notification delivery enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.Int("jobs", len(inserted)),
	)
	return nil
}

// PendingJobs returns delivery jobs that are queued or being retried.
func (s *Service) PendingJobs(ctx context.Context) ([]JobInfo, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "pending_jobs", "river")

	type riverJobRow struct {
		ID          int64          `bun:"id"`
		State       string         `bun:"state"`
		Args        map[string]any `bun:"args,type:jsonb"`
		CreatedAt   time.Time      `bun:"created_at"`
		Attempt     int16          `bun:"attempt"`
		MaxAttempts int16          `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "state", "args", "created_at", "attempt", "max_attempts").
		Where("kind = ?", DeliveryJob{}.Kind()).
		Where("state IN (?, ?, ?, ?)", "available", "scheduled", "retryable", "running").
		Order("created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		s.logger.Error("Failed to query pending jobs", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "pending_jobs", "river")
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		id, _ := job.Args["notification_id"].(string)
		result[i] = JobInfo{
			ID:             job.ID,
			NotificationID: id,
			State:          job.State,
			CreatedAt:      job.CreatedAt.Format(time.RFC3339),
			Attempt:        int(job.Attempt),
			MaxAttempts:    int(job.MaxAttempts),
		}
	}

	s.metrics.RecordOperationSuccess(ctx, "pending_jobs", "river")
	s.metrics.RecordOperationDuration(ctx, "pending_jobs", "river", time.Since(start))
	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "health_check", "river")

	if s.client == nil {
		s.metrics.RecordOperationFailure(ctx, "health_check", "river")
		return fmt.Errorf("river client is nil")
	}

	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "health_check", "river")
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "health_check", "river")
	s.metrics.RecordOperationDuration(ctx, "health_check", "river", time.Since(start))

	s.logger.Debug("Queue service health check passed", attr.Int("total_jobs", count))
	return nil
}
