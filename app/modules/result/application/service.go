package resultservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/typer-master/app/observability/metrics"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "ResultService"

// ResultService implements the Service interface.
type ResultService struct {
	repo      resultdb.Repository
	publisher EventPublisher
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewResultService creates a new ResultService. A nil db runs repository
// calls without a transaction; a nil publisher disables result events.
func NewResultService(
	repo resultdb.Repository,
	publisher EventPublisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ResultService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(serviceName)
	}
	return &ResultService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		db:        db,
	}
}

// Submit validates the input, stores it and announces the stored row.
func (s *ResultService) Submit(ctx context.Context, input SubmitInput) (*resultdb.GameResult, error) {
	return withTelemetry(s, ctx, "Submit", input.Username, func(ctx context.Context) (*resultdb.GameResult, error) {
		if err := validateSubmit(input); err != nil {
			return nil, err
		}

		var stored *resultdb.GameResult
		err := runInTx(s, ctx, nil, func(ctx context.Context, db bun.IDB) error {
			var err error
			stored, err = s.repo.Insert(ctx, db, resultdb.GameResultInput{
				Username:     input.Username,
				WPM:          input.WPM,
				Accuracy:     input.Accuracy,
				RealAccuracy: input.RealAccuracy,
				Text:         input.Text,
			})
			return err
		})
		if err != nil {
			return nil, &StorageError{Op: "insert", Err: err}
		}

		s.publishRecorded(ctx, stored)
		return stored, nil
	})
}

// GetPage returns results newest first together with page metadata.
// Pages past the end are empty but still report the real totals.
func (s *ResultService) GetPage(ctx context.Context, page, perPage int) (*PaginatedResult, error) {
	identifier := "page=" + strconv.Itoa(page) + ",per_page=" + strconv.Itoa(perPage)
	return withTelemetry(s, ctx, "GetPage", identifier, func(ctx context.Context) (*PaginatedResult, error) {
		offset, err := pageOffset(page, perPage)
		if err != nil {
			return nil, err
		}

		var (
			total int
			rows  []resultdb.GameResult
		)
		snapshot := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
		err = runInTx(s, ctx, snapshot, func(ctx context.Context, db bun.IDB) error {
			var err error
			if total, err = s.repo.Count(ctx, db); err != nil {
				return err
			}
			rows, err = s.repo.ListPage(ctx, db, offset, perPage)
			return err
		})
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}

		return &PaginatedResult{
			Results:    rows,
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages(total, perPage),
		}, nil
	})
}

// ExportRecent returns up to limit of the newest results.
func (s *ResultService) ExportRecent(ctx context.Context, limit int) ([]resultdb.GameResult, error) {
	return withTelemetry(s, ctx, "ExportRecent", strconv.Itoa(limit), func(ctx context.Context) ([]resultdb.GameResult, error) {
		if limit < 1 || limit > MaxExportLimit {
			return nil, NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxExportLimit))
		}

		var rows []resultdb.GameResult
		err := runInTx(s, ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, db bun.IDB) error {
			var err error
			rows, err = s.repo.ListRecent(ctx, db, limit)
			return err
		})
		if err != nil {
			return nil, &StorageError{Op: "export", Err: err}
		}
		return rows, nil
	})
}

func (s *ResultService) publishRecorded(ctx context.Context, stored *resultdb.GameResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishResultRecorded(ctx, stored); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish result recorded event",
			slog.Int64("result_id", stored.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validateSubmit(input SubmitInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Username) == "" {
		verr.add("username", "must not be empty")
	}
	if strings.TrimSpace(input.Text) == "" {
		verr.add("text", "must not be empty")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"wpm", input.WPM},
		{"accuracy", input.Accuracy},
		{"real_accuracy", input.RealAccuracy},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			verr.add(f.name, "must be a finite number")
		}
	}
	return verr.orNil()
}

// pageOffset validates the page window and returns its row offset.
func pageOffset(page, perPage int) (int, error) {
	verr := &ValidationError{}
	if page < 1 {
		verr.add("page", "must be greater than or equal to 1")
	}
	if perPage < MinPerPage || perPage > MaxPerPage {
		verr.add("per_page", fmt.Sprintf("must be between %d and %d", MinPerPage, MaxPerPage))
	}
	if err := verr.orNil(); err != nil {
		return 0, err
	}
	if page-1 > math.MaxInt/perPage {
		return 0, NewValidationError("page", "is too large")
	}
	return (page - 1) * perPage, nil
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
// Validation errors are client failures: logged as warnings, not counted as failures.
func withTelemetry[T any](
	s *ResultService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, serviceName+"."+operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("identifier", identifier),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("error", err.Error()),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.WarnContext(ctx, "Operation rejected invalid input",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("error", verr.Error()),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
		return result, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx runs fn inside a transaction that is always committed or rolled back
// before returning, so no connection outlives the call.
func runInTx(
	s *ResultService,
	ctx context.Context,
	opts *sql.TxOptions,
	fn func(ctx context.Context, db bun.IDB) error,
) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	if opts == nil {
		opts = &sql.TxOptions{}
	}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
