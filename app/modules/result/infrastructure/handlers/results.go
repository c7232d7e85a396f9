package resulthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"go.opentelemetry.io/otel/attribute"
)

// maxBodyBytes bounds a submitted result; the typed text dominates its size.
const maxBodyBytes = 1 << 20

// CreateResultRequest is the body of POST /results. Pointer fields let
// missing values be told apart from zero values.
type CreateResultRequest struct {
	Username     *string  `json:"username"`
	WPM          *float64 `json:"wpm"`
	Accuracy     *float64 `json:"accuracy"`
	RealAccuracy *float64 `json:"real_accuracy"`
	Text         *string  `json:"text"`
}

// ResultResponse is the wire form of a stored result.
type ResultResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	WPM          float64 `json:"wpm"`
	Accuracy     float64 `json:"accuracy"`
	RealAccuracy float64 `json:"real_accuracy"`
	Text         string  `json:"text"`
	CreatedAt    *string `json:"created_at"`
}

// PageResponse is the body of GET /results.
type PageResponse struct {
	Results    []ResultResponse `json:"results"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

func toResponse(r resultdb.GameResult) ResultResponse {
	resp := ResultResponse{
		ID:           r.ID,
		Username:     r.Username,
		WPM:          r.WPM,
		Accuracy:     r.Accuracy,
		RealAccuracy: r.RealAccuracy,
		Text:         r.Text,
	}
	if !r.CreatedAt.IsZero() {
		ts := r.CreatedAt.UTC().Format(time.RFC3339Nano)
		resp.CreatedAt = &ts
	}
	return resp
}

// HandleCreateResult stores one game result.
func (h *ResultHandlers) HandleCreateResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResultHandlers.HandleCreateResult")
	defer span.End()
	r = r.WithContext(ctx)

	input, verr := decodeCreateRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if verr != nil {
		h.writeError(w, r, verr)
		return
	}
	span.SetAttributes(attribute.String("username", input.Username))

	stored, err := h.service.Submit(ctx, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toResponse(*stored))
}

func decodeCreateRequest(body io.Reader) (resultservice.SubmitInput, error) {
	var req CreateResultRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return resultservice.SubmitInput{}, resultservice.NewValidationError(typeErr.Field, "has the wrong type, expected "+typeErr.Type.String())
		case errors.As(err, &maxErr):
			return resultservice.SubmitInput{}, resultservice.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return resultservice.SubmitInput{}, resultservice.NewValidationError("body", "is required")
		default:
			return resultservice.SubmitInput{}, resultservice.NewValidationError("body", "is not valid JSON")
		}
	}
	// exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return resultservice.SubmitInput{}, resultservice.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
		}
		return resultservice.SubmitInput{}, resultservice.NewValidationError("body", "is not valid JSON")
	}

	verr := &resultservice.ValidationError{}
	missing := func(field string) {
		verr.Problems = append(verr.Problems, resultservice.FieldProblem{Field: field, Message: "is required"})
	}
	if req.Username == nil {
		missing("username")
	}
	if req.WPM == nil {
		missing("wpm")
	}
	if req.Accuracy == nil {
		missing("accuracy")
	}
	if req.RealAccuracy == nil {
		missing("real_accuracy")
	}
	if req.Text == nil {
		missing("text")
	}
	if len(verr.Problems) > 0 {
		return resultservice.SubmitInput{}, verr
	}

	return resultservice.SubmitInput{
		Username:     *req.Username,
		WPM:          *req.WPM,
		Accuracy:     *req.Accuracy,
		RealAccuracy: *req.RealAccuracy,
		Text:         *req.Text,
	}, nil
}

// HandleListResults returns one page of results, newest first.
func (h *ResultHandlers) HandleListResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResultHandlers.HandleListResults")
	defer span.End()
	r = r.WithContext(ctx)

	verr := &resultservice.ValidationError{}
	page := intQuery(r, "page", resultservice.DefaultPage, verr)
	perPage := intQuery(r, "per_page", resultservice.DefaultPerPage, verr)
	if len(verr.Problems) > 0 {
		h.writeError(w, r, verr)
		return
	}
	span.SetAttributes(attribute.Int("page", page), attribute.Int("per_page", perPage))

	res, err := h.service.GetPage(ctx, page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body := PageResponse{
		Results:    make([]ResultResponse, 0, len(res.Results)),
		Page:       res.Page,
		PerPage:    res.PerPage,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	}
	for _, row := range res.Results {
		body.Results = append(body.Results, toResponse(row))
	}
	h.writeJSON(w, r, http.StatusOK, body)
}

// intQuery reads an integer query parameter. An absent or empty value gives def.
func intQuery(r *http.Request, name string, def int, verr *resultservice.ValidationError) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Problems = append(verr.Problems, resultservice.FieldProblem{Field: name, Message: "must be an integer"})
		return def
	}
	return v
}
