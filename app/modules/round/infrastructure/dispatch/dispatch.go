// Package rounddispatch fans committed round events out to the activity log
// and the event bus.
package rounddispatch

import (
	"context"
	"log/slog"
	"time"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

const serviceName = "RoundDispatcher"

// ActivityRecorder appends attendance for a round event.
type ActivityRecorder interface {
	RecordRoundEvent(ctx context.Context, event rounddomain.RoundEvent) error
}

// Dispatcher implements roundservice.Emitter. Failures are logged and
// counted; the round operation that produced the event has already committed.
type Dispatcher struct {
	activity  ActivityRecorder
	publisher message.Publisher
	logger    *slog.Logger
	metrics   observability.OperationMetrics
}

// NewDispatcher creates a Dispatcher. Either sink may be nil.
func NewDispatcher(activity ActivityRecorder, publisher message.Publisher, logger *slog.Logger, metrics observability.OperationMetrics) *Dispatcher {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Dispatcher{activity: activity, publisher: publisher, logger: logger, metrics: metrics}
}

func (d *Dispatcher) Emit(ctx context.Context, event rounddomain.RoundEvent) {
	if d.activity != nil {
		d.run(ctx, "record_activity", event, func() error {
			return d.activity.RecordRoundEvent(ctx, event)
		})
	}
	if d.publisher != nil {
		d.run(ctx, "publish_event", event, func() error {
			msg, err := handlerwrapper.NewMessage(ctx, string(event.Kind), event)
			if err != nil {
				return err
			}
			return d.publisher.Publish(string(event.Kind), msg)
		})
	}
}

func (d *Dispatcher) run(ctx context.Context, operation string, event rounddomain.RoundEvent, fn func() error) {
	start := time.Now()
	d.metrics.RecordOperationAttempt(ctx, operation, serviceName)
	defer func() {
		d.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start))
	}()

	if err := fn(); err != nil {
		d.metrics.RecordOperationFailure(ctx, operation, serviceName)
		d.logger.ErrorContext(ctx, "Round event dispatch failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operation),
			attr.String("event", string(event.Kind)),
			attr.RoundID(event.Round.ID),
			attr.Error(err),
		)
		return
	}
	d.metrics.RecordOperationSuccess(ctx, operation, serviceName)
}
