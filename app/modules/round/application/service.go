package roundservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RoundService"

// Service is the round lifecycle and allocation engine.
type Service interface {
	CreateRound(ctx context.Context, caller Caller, input CreateRoundInput) (*rounddomain.Round, error)
	JoinRound(ctx context.Context, caller Caller, code string) (*JoinResult, error)
	SetAllocations(ctx context.Context, caller Caller, roundID uuid.UUID, entries []AllocationInput) ([]rounddomain.Allocation, error)
	GetParticipants(ctx context.Context, roundID uuid.UUID) ([]Participant, error)
	StartRound(ctx context.Context, caller Caller, roundID uuid.UUID) (*rounddomain.Round, error)
	TerminateRound(ctx context.Context, caller Caller, roundID uuid.UUID) (*rounddomain.Round, error)
	GetRoundStatus(ctx context.Context, roundID uuid.UUID) (*RoundStatus, error)
	SubmitResult(ctx context.Context, caller Caller, roundID uuid.UUID, input SubmitResultInput) (*SubmitResultOutput, error)
	GetResult(ctx context.Context, roundID uuid.UUID) (*rounddomain.Result, error)
	ListRounds(ctx context.Context, caller Caller, input ListRoundsInput) ([]rounddomain.Round, error)
	GetRoundDetail(ctx context.Context, roundID uuid.UUID) (*RoundDetail, error)
	DeleteRound(ctx context.Context, caller Caller, roundID uuid.UUID) error
	ActiveRoundsForUser(ctx context.Context, userID uuid.UUID) ([]ActiveRound, error)
}

// Emitter receives committed round events. Emit must not fail the caller.
type Emitter interface {
	Emit(ctx context.Context, event rounddomain.RoundEvent)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, rounddomain.RoundEvent) {}

// Options tunes round rules.
type Options struct {
	// EnforceUniqueSeatRoles rejects allocations that give a debater seat or
	// the chair to more than one participant.
	EnforceUniqueSeatRoles bool
}

// RoundService implements the Service interface.
type RoundService struct {
	repo    rounddb.Repository
	emitter Emitter
	codes   *rounddomain.CodeGenerator
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
	opts    Options
	now     func() time.Time
}

// NewRoundService creates a new RoundService.
func NewRoundService(
	repo rounddb.Repository,
	emitter Emitter,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *RoundService {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &RoundService{
		repo:    repo,
		emitter: emitter,
		codes:   rounddomain.NewCodeGenerator(),
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// conn is the connection used outside a transaction.
func (s *RoundService) conn() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// outcome carries an operation's value and the event to emit after commit.
type outcome[T any] struct {
	value T
	event *rounddomain.RoundEvent
}

// resultOf is the result every operation's logic returns.
type resultOf[T any] = results.OperationResult[outcome[T], error]

func (s *RoundService) emit(ctx context.Context, event *rounddomain.RoundEvent) {
	if event == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.emitter.Emit(ctx, *event)
}

// execute runs logic in a transaction under telemetry, emits the outcome's
// event after commit, and turns failure results into errors.
func execute[T any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	identifier string,
	logic func(ctx context.Context, db bun.IDB) (resultOf[T], error),
) (T, error) {
	var zero T
	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (resultOf[T], error) {
		return runInTx(s, ctx, logic)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	s.emit(ctx, result.Success.event)
	return result.Success.value, nil
}

func success[T any](value T, event *rounddomain.RoundEvent) (resultOf[T], error) {
	return results.SuccessResult[outcome[T], error](outcome[T]{value: value, event: event}), nil
}

func failure[T any](err error) (resultOf[T], error) {
	return results.FailureResult[outcome[T], error](err), nil
}

func internal[T any](format string, args ...any) (resultOf[T], error) {
	return resultOf[T]{}, fmt.Errorf(format, args...)
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction. A failure result
// rolls the transaction back so a refused operation never leaves writes behind.
func runInTx[S any, F any](
	s *RoundService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr == nil && result.IsFailure() {
			return errRollback
		}
		return txErr
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}

	return result, err
}

var errRollback = errors.New("rollback")

// --- mapping ---

func toRound(r *rounddb.Round) rounddomain.Round {
	return rounddomain.Round{
		ID:              r.ID,
		Format:          rounddomain.Format(r.Format),
		MotionID:        r.MotionID,
		MaxAdjudicators: r.MaxAdjudicators,
		Status:          rounddomain.Status(r.Status),
		Code:            rounddomain.Code(r.RoundCode),
		IsActive:        r.IsActive,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
	}
}

func toAllocation(a *rounddb.Allocation) rounddomain.Allocation {
	return rounddomain.Allocation{
		ID:        a.ID,
		RoundID:   a.RoundID,
		UserID:    a.UserID,
		Username:  a.Username,
		Role:      rounddomain.Role(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

func toAllocations(in []*rounddb.Allocation) []rounddomain.Allocation {
	out := make([]rounddomain.Allocation, 0, len(in))
	for _, a := range in {
		out = append(out, toAllocation(a))
	}
	return out
}

// applyTransition moves round to next and keeps is_active and the lifecycle
// timestamps consistent with it.
func (s *RoundService) applyTransition(round *rounddb.Round, next rounddomain.Status) {
	round.Status = string(next)
	round.IsActive = rounddomain.IsActiveStatus(next)
	switch next {
	case rounddomain.StatusActive:
		now := s.now()
		round.StartedAt = &now
	case rounddomain.StatusCompleted, rounddomain.StatusTerminated:
		now := s.now()
		round.CompletedAt = &now
	}
}
