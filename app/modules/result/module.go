package result

import (
	"context"

	"github.com/Black-And-White-Club/typer-master/app/middleware"
	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	resulthandlers "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/handlers"
	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/typer-master/app/observability"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the game result module.
type Module struct {
	service resultservice.Service
}

// NewModule wires the result store, service and HTTP routes. A nil db
// disables transactions and is only meant for tests with a fake repository.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	repo resultdb.Repository,
	publisher resultservice.EventPublisher,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing result module")

	if repo == nil {
		repo = resultdb.NewRepository(db)
	}

	service := resultservice.NewResultService(repo, publisher, logger, obs.Metrics, tracer, db)
	handlers := resulthandlers.NewResultHandlers(service, logger, tracer)

	if httpRouter != nil {
		limiter := middleware.NewIPRateLimiter(cfg.HTTP)
		httpRouter.Route("/results", func(r chi.Router) {
			r.With(middleware.RateLimit(limiter)).Post("/", handlers.HandleCreateResult)
			r.Get("/", handlers.HandleListResults)
			r.Get("/export", handlers.HandleExportResults)
		})
	}

	return &Module{service: service}
}

// GetService returns the result service for use by other modules.
func (m *Module) GetService() resultservice.Service {
	return m.service
}
