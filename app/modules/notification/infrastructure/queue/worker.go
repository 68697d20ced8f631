package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// Deliverer pushes a stored notification out. Returning an error makes River
// retry the job.
type Deliverer interface {
	Deliver(ctx context.Context, id uuid.UUID) error
}

// DeliveryWorker runs DeliveryJob.
type DeliveryWorker struct {
	river.WorkerDefaults[DeliveryJob]
	logger    *slog.Logger
	deliverer Deliverer
}

func NewDeliveryWorker(logger *slog.Logger, deliverer Deliverer) *DeliveryWorker {
	return &DeliveryWorker{logger: logger, deliverer: deliverer}
}

func (w *DeliveryWorker) Work(ctx context.Context, job *river.Job[DeliveryJob]) error {
	ctxLogger := w.logger.With(
		attr.UUID("notification_id", job.Args.NotificationID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	if err := w.deliverer.Deliver(ctx, job.Args.NotificationID); err != nil {
		ctxLogger.Warn("Notification delivery failed", attr.Error(err))
		return fmt.Errorf("deliver notification %s: %w", job.Args.NotificationID, err)
	}

	ctxLogger.Debug("Notification delivered")
	return nil
}

// errorHandler logs jobs that failed or panicked. River's retry policy is left
// in charge.
type errorHandler struct {
	logger  *slog.Logger
	metrics Metrics
}

func (h *errorHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	h.metrics.RecordOperationFailure(ctx, "work_"+job.Kind, "river")
	attrs := []any{
		attr.Int64("job_id", job.ID),
		attr.String("job_kind", job.Kind),
		attr.Int("attempt", job.Attempt),
		attr.Int("max_attempts", job.MaxAttempts),
		attr.Error(err),
	}
	if job.Attempt >= job.MaxAttempts {
		h.logger.Error("Job exhausted its attempts", attrs...)
	} else {
		h.logger.Warn("Job failed, will retry", attrs...)
	}
	return nil
}

func (h *errorHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	h.metrics.RecordOperationFailure(ctx, "work_"+job.Kind, "river")
	h.logger.Error("Job panicked",
		attr.Int64("job_id", job.ID),
		attr.String("job_kind", job.Kind),
		attr.Any("panic", panicVal),
		attr.String("stack_trace", trace),
	)
	return nil
}
