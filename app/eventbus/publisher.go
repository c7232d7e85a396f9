package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/typer-master/app/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ResultRecordedV1 is published after a game result commits.
const ResultRecordedV1 = "game_result.recorded.v1"

// ResultRecordedPayloadV1 is the body of a ResultRecordedV1 message.
type ResultRecordedPayloadV1 struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	WPM          float64   `json:"wpm"`
	Accuracy     float64   `json:"accuracy"`
	RealAccuracy float64   `json:"real_accuracy"`
	CreatedAt    time.Time `json:"created_at"`
}

// Publisher publishes domain events over a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	metrics   metrics.EventMetrics
}

// New wraps an existing watermill publisher.
func New(pub message.Publisher, logger *slog.Logger, m metrics.EventMetrics) *Publisher {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Publisher{publisher: pub, logger: logger, metrics: m}
}

// NewNATSPublisher provisions the result stream and creates a JetStream
// publisher for natsURL.
func NewNATSPublisher(ctx context.Context, natsURL string, logger *slog.Logger) (message.Publisher, error) {
	conn, err := nc.Connect(natsURL, nc.Timeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if err := InitializeStreams(ctx, js, logger); err != nil {
		return nil, err
	}

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return publisher, nil
}

// NewInProcessPubSub returns a gochannel pubsub for deployments without NATS.
func NewInProcessPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
}

// PublishResultRecorded announces a committed result.
func (p *Publisher) PublishResultRecorded(ctx context.Context, result *resultdb.GameResult) error {
	payload, err := json.Marshal(ResultRecordedPayloadV1{
		ID:           result.ID,
		Username:     result.Username,
		WPM:          result.WPM,
		Accuracy:     result.Accuracy,
		RealAccuracy: result.RealAccuracy,
		CreatedAt:    result.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", ResultRecordedV1, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("content_type", "application/json")

	if err := p.publisher.Publish(ResultRecordedV1, msg); err != nil {
		p.metrics.RecordPublishFailure(ctx, ResultRecordedV1)
		return fmt.Errorf("failed to publish %s: %w", ResultRecordedV1, err)
	}

	p.logger.DebugContext(ctx, "Published event",
		slog.String("topic", ResultRecordedV1),
		slog.String("message_id", msg.UUID),
	)
	return nil
}

// Close releases the underlying publisher.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
