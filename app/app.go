package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/typer-master/app/eventbus"
	"github.com/Black-And-White-Club/typer-master/app/modules/result"
	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	"github.com/Black-And-White-Club/typer-master/app/modules/text"
	"github.com/Black-And-White-Club/typer-master/app/observability"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/Black-And-White-Club/typer-master/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// App holds the process-wide dependencies and the HTTP router.
type App struct {
	Config        *config.Config
	Observability observability.Observability

	db        *bundb.DBService
	publisher *eventbus.Publisher
	router    chi.Router

	ResultModule *result.Module
	TextModule   *text.Module
}

// NewApp connects to Postgres, runs migrations when enabled, chooses the
// event transport and wires every module onto one router.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	if cfg.AutoMigrateEnabled() {
		if err := bundb.Migrate(ctx, dbService.GetDB(), logger); err != nil {
			logger.ErrorContext(ctx, "Auto-migration failed, continuing startup", slog.String("error", err.Error()))
		}
	}

	publisher := eventbus.New(newMessagePublisher(ctx, cfg, logger), logger, obs.Metrics)

	origins, err := cfg.AllowedOrigins()
	if err != nil {
		dbService.Close()
		publisher.Close()
		return nil, err
	}

	router := newRouter(obs, origins)

	app := &App{
		Config:        cfg,
		Observability: obs,
		db:            dbService,
		publisher:     publisher,
		router:        router,
	}
	app.ResultModule = result.NewModule(ctx, cfg, obs, dbService.GetDB(), dbService.ResultDB, resultservice.EventPublisher(publisher), router)
	app.TextModule = text.NewModule(ctx, cfg, obs, nil, router)

	attrs := []any{
		slog.Any("allowed_origins", origins),
		slog.String("text_provider", app.TextModule.Status().String()),
	}
	if page, err := app.ResultModule.GetService().GetPage(ctx, 1, 1); err != nil {
		logger.WarnContext(ctx, "Failed to count stored results", slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.Int("stored_results", page.Total))
	}
	logger.InfoContext(ctx, "Application initialized", attrs...)
	return app, nil
}

// newMessagePublisher uses JetStream when NATS is configured and reachable,
// the in-process pubsub otherwise.
func newMessagePublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) message.Publisher {
	if cfg.NATS.URL != "" {
		pub, err := eventbus.NewNATSPublisher(ctx, cfg.NATS.URL, logger)
		if err == nil {
			logger.InfoContext(ctx, "Publishing events to NATS JetStream", slog.String("url", cfg.NATS.URL))
			return pub
		}
		logger.ErrorContext(ctx, "Failed to connect event publisher, using in-process events",
			slog.String("error", err.Error()),
		)
	}
	return eventbus.NewInProcessPubSub(watermill.NewSlogLogger(logger))
}

// Router returns the HTTP handler for the whole API.
func (app *App) Router() chi.Router {
	return app.router
}
