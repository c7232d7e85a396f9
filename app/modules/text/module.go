package text

import (
	"context"
	"log/slog"

	textservice "github.com/Black-And-White-Club/typer-master/app/modules/text/application"
	"github.com/Black-And-White-Club/typer-master/app/modules/text/infrastructure/gemini"
	texthandlers "github.com/Black-And-White-Club/typer-master/app/modules/text/infrastructure/handlers"
	"github.com/Black-And-White-Club/typer-master/app/observability"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/go-chi/chi/v5"
)

// Module represents the text generation module.
type Module struct {
	provider *textservice.Provider
}

// NewModule wires the text provider and its HTTP route. gen overrides the
// Gemini generator; when nil one is built from config. A generator that
// cannot be built leaves the provider serving the fallback text only.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	gen textservice.Generator,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing text module", slog.String("model", cfg.Gemini.Model))

	if gen == nil {
		g, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize text generator", slog.String("error", err.Error()))
		} else {
			gen = g
		}
	}

	provider := textservice.NewProvider(gen, textservice.ProviderConfig{
		Timeout: cfg.Gemini.Timeout,
	}, logger, obs.Metrics, tracer)
	handlers := texthandlers.NewTextHandlers(provider, logger, tracer)

	if httpRouter != nil {
		httpRouter.Get("/texts", handlers.HandleGetText)
	}

	return &Module{provider: provider}
}

// Status reports the provider status for health reporting.
func (m *Module) Status() textservice.Status {
	return m.provider.Status()
}
