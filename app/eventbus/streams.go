package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// ResultsStream holds every game result event.
const ResultsStream = "GAME_RESULTS"

// streamConfigs lists the JetStream streams the publisher writes into.
var streamConfigs = []jetstream.StreamConfig{
	{
		Name:     ResultsStream,
		Subjects: []string{"game_result.>"},
		Storage:  jetstream.FileStorage,
	},
}

// streamManager is the part of jetstream.JetStream used to provision streams.
type streamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// InitializeStreams creates the result streams in JetStream if they are missing.
func InitializeStreams(ctx context.Context, js streamManager, logger *slog.Logger) error {
	for _, streamConfig := range streamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		switch {
		case errors.Is(err, jetstream.ErrStreamNotFound):
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.ErrorContext(ctx, "Failed to create JetStream stream",
					slog.String("stream", streamConfig.Name),
					slog.Any("error", err),
				)
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.InfoContext(ctx, "Created JetStream stream", slog.String("stream", streamConfig.Name))
		case err != nil:
			return fmt.Errorf("failed to check stream %s: %w", streamConfig.Name, err)
		}
	}
	return nil
}
