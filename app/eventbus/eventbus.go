package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// TopicMetadataKey names the metadata entry used when Publish is called
// without an explicit topic.
const TopicMetadataKey = "topic"

// EventBus is a watermill publisher and subscriber pair. It is handed to
// watermill routers on both sides of AddHandler.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// natsEventBus publishes and subscribes through NATS JetStream.
type natsEventBus struct {
	publisher  *nats.Publisher
	subscriber *nats.Subscriber
	conn       *nc.Conn
	js         jetstream.JetStream
	logger     *slog.Logger
}

// NewNATSEventBus connects to NATS, provisions the round event stream and
// builds the watermill publisher and subscriber on top of it.
func NewNATSEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, *nc.Conn, error) {
	natsConn, err := nc.Connect(natsURL,
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2*time.Second),
	)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	if err := InitializeStreams(ctx, js, logger); err != nil {
		natsConn.Close()
		return nil, nil, err
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:            natsURL,
			CloseTimeout:   30 * time.Second,
			AckWaitTimeout: 30 * time.Second,
			Unmarshaler:    marshaler,
			NatsOptions:    natsOptions,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverNew(),
					nc.AckExplicit(),
				},
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       natsConn,
		js:         js,
		logger:     logger,
	}, natsConn, nil
}

func (eb *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	return publishByTopic(eb.publisher, eb.logger, topic, messages)
}

func (eb *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to subject", slog.String("subject", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// Close closes the publisher, subscriber and the NATS connection.
func (eb *natsEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
	}
	if err := eb.subscriber.Close(); err != nil {
		eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
	}
	eb.conn.Close()
	return nil
}

// memoryEventBus routes messages in-process. Used when NATS is disabled and in tests.
type memoryEventBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

// NewInMemoryEventBus returns an EventBus backed by a watermill gochannel.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (eb *memoryEventBus) Publish(topic string, messages ...*message.Message) error {
	return publishByTopic(eb.pubsub, eb.logger, topic, messages)
}

func (eb *memoryEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return eb.pubsub.Subscribe(ctx, topic)
}

func (eb *memoryEventBus) Close() error {
	return eb.pubsub.Close()
}

// publishByTopic publishes to topic, or to each message's metadata topic when
// topic is empty.
func publishByTopic(pub message.Publisher, logger *slog.Logger, topic string, messages []*message.Message) error {
	if topic != "" {
		return pub.Publish(topic, messages...)
	}
	for _, msg := range messages {
		t := msg.Metadata.Get(TopicMetadataKey)
		if t == "" {
			return fmt.Errorf("message %s has no topic set in metadata", msg.UUID)
		}
		if err := pub.Publish(t, msg); err != nil {
			logger.Error("Failed to publish message",
				slog.String("topic", t),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish message to %s: %w", t, err)
		}
	}
	return nil
}
