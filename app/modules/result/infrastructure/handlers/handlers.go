package resulthandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	"go.opentelemetry.io/otel/trace"
)

// Handlers is the HTTP surface of the result module.
type Handlers interface {
	HandleCreateResult(w http.ResponseWriter, r *http.Request)
	HandleListResults(w http.ResponseWriter, r *http.Request)
	HandleExportResults(w http.ResponseWriter, r *http.Request)
}

// ResultHandlers implements Handlers.
type ResultHandlers struct {
	service resultservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewResultHandlers creates a new ResultHandlers instance.
func NewResultHandlers(service resultservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ResultHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string                       `json:"detail"`
	Errors []resultservice.FieldProblem `json:"errors,omitempty"`
}

func (h *ResultHandlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write response", slog.String("error", err.Error()))
	}
}

// writeError maps service errors onto status codes: validation problems are
// 422, everything else is 500 without internal detail.
func (h *ResultHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *resultservice.ValidationError
	if errors.As(err, &verr) {
		h.writeJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{
			Detail: "Validation failed",
			Errors: verr.Problems,
		})
		return
	}

	var serr *resultservice.StorageError
	if errors.As(err, &serr) {
		h.writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Detail: "Failed to access game results"})
		return
	}
	h.writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
}
