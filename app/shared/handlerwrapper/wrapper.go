// Package handlerwrapper adapts typed event handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CorrelationIDKey is the metadata key carrying the correlation id.
const CorrelationIDKey = "correlation_id"

// Result is an outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// NewMessage marshals payload to JSON and wraps it in a watermill message
// carrying the topic and correlation id in its metadata.
func NewMessage(ctx context.Context, topic string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("topic", topic)
	if id := attr.CorrelationIDFrom(ctx); id != "" {
		msg.Metadata.Set(CorrelationIDKey, id)
	}
	msg.SetContext(ctx)
	return msg, nil
}

// WrapTransformingTyped decodes the incoming JSON payload into T, runs handler
// inside a span, and turns the returned Results into outgoing messages.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if id := msg.Metadata.Get(CorrelationIDKey); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// A payload that cannot be decoded will never succeed; ack and drop it.
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			logger.ErrorContext(ctx, "Handler returned error",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(ctx, r.Topic, r.Payload)
			if err != nil {
				return nil, err
			}
			for k, v := range r.Metadata {
				m.Metadata.Set(k, v)
			}
			out = append(out, m)
		}
		return out, nil
	}
}
