package texthandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	textservice "github.com/Black-And-White-Club/typer-master/app/modules/text/application"
	"go.opentelemetry.io/otel/trace"
)

// Handlers is the HTTP surface of the text module.
type Handlers interface {
	HandleGetText(w http.ResponseWriter, r *http.Request)
}

// TextResponse is the body of GET /texts.
type TextResponse struct {
	Text string `json:"text"`
}

// TextHandlers implements Handlers.
type TextHandlers struct {
	service textservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTextHandlers creates a new TextHandlers instance.
func NewTextHandlers(service textservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &TextHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleGetText always answers 200 with text to type; the provider falls back
// on its own when generation is unavailable.
func (h *TextHandlers) HandleGetText(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TextHandlers.HandleGetText")
	defer span.End()

	class := textservice.DefaultLengthClass
	if raw := r.URL.Query().Get("length"); raw != "" {
		parsed, ok := textservice.ParseLengthClass(raw)
		if ok {
			class = parsed
		} else {
			h.logger.DebugContext(ctx, "Unknown length class, using default",
				slog.String("length", raw),
			)
		}
	}

	text := h.service.Generate(ctx, class)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TextResponse{Text: text}); err != nil {
		h.logger.WarnContext(ctx, "Failed to write text response", slog.String("error", err.Error()))
	}
}
