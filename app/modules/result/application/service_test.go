package resultservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/typer-master/app/observability/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo resultdb.Repository, pub EventPublisher) *ResultService {
	return NewResultService(
		repo,
		pub,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func validInput() SubmitInput {
	return SubmitInput{Username: "a", WPM: 60.0, Accuracy: 95.0, RealAccuracy: 90.0, Text: "t"}
}

func TestSubmit(t *testing.T) {
	createdAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	dbErr := errors.New("connection refused")

	tests := []struct {
		name       string
		input      SubmitInput
		setupRepo  func(*FakeResultRepo)
		wantTrace  []string
		wantFields []string
		wantErrIs  error
		wantStored *resultdb.GameResult
	}{
		{
			name:  "happy path",
			input: validInput(),
			setupRepo: func(f *FakeResultRepo) {
				f.InsertFunc = func(ctx context.Context, db bun.IDB, in resultdb.GameResultInput) (*resultdb.GameResult, error) {
					return &resultdb.GameResult{
						ID: 7, Username: in.Username, WPM: in.WPM, Accuracy: in.Accuracy,
						RealAccuracy: in.RealAccuracy, Text: in.Text, CreatedAt: createdAt,
					}, nil
				}
			},
			wantTrace: []string{"Insert"},
			wantStored: &resultdb.GameResult{
				ID: 7, Username: "a", WPM: 60, Accuracy: 95, RealAccuracy: 90, Text: "t", CreatedAt: createdAt,
			},
		},
		{
			name: "accuracy above 100 is accepted",
			input: SubmitInput{
				Username: "a", WPM: 0, Accuracy: 140, RealAccuracy: 150, Text: "t",
			},
			wantTrace: []string{"Insert"},
		},
		{
			name:       "blank username",
			input:      SubmitInput{Username: "   ", WPM: 1, Accuracy: 1, RealAccuracy: 1, Text: "t"},
			wantTrace:  []string{},
			wantFields: []string{"username"},
		},
		{
			name:       "every field invalid",
			input:      SubmitInput{Username: "", WPM: math.NaN(), Accuracy: math.Inf(1), RealAccuracy: math.Inf(-1), Text: ""},
			wantTrace:  []string{},
			wantFields: []string{"username", "text", "wpm", "accuracy", "real_accuracy"},
		},
		{
			name:  "storage failure",
			input: validInput(),
			setupRepo: func(f *FakeResultRepo) {
				f.InsertFunc = func(ctx context.Context, db bun.IDB, in resultdb.GameResultInput) (*resultdb.GameResult, error) {
					return nil, dbErr
				}
			},
			wantTrace: []string{"Insert"},
			wantErrIs: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeResultRepo()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			pub := &FakePublisher{}
			svc := newTestService(repo, pub)

			got, err := svc.Submit(context.Background(), tt.input)

			assert.Equal(t, tt.wantTrace, repo.Trace())

			switch {
			case tt.wantFields != nil:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				fields := make([]string, 0, len(verr.Problems))
				for _, p := range verr.Problems {
					fields = append(fields, p.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
				assert.Nil(t, got)
				assert.Empty(t, pub.Published())
			case tt.wantErrIs != nil:
				var serr *StorageError
				require.ErrorAs(t, err, &serr)
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Equal(t, "insert", serr.Op)
				assert.Empty(t, pub.Published())
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				if tt.wantStored != nil {
					if diff := cmp.Diff(*tt.wantStored, *got); diff != "" {
						t.Errorf("stored result mismatch (-want +got):\n%s", diff)
					}
				}
				require.Len(t, pub.Published(), 1)
				assert.Equal(t, got.ID, pub.Published()[0].ID)
			}
		})
	}
}

func TestSubmit_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo := NewFakeResultRepo()
	pub := &FakePublisher{
		PublishFunc: func(ctx context.Context, result *resultdb.GameResult) error {
			return errors.New("nats unavailable")
		},
	}
	svc := newTestService(repo, pub)

	got, err := svc.Submit(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, pub.Published(), 1)
}

func TestGetPage(t *testing.T) {
	countErr := errors.New("database connection failed")

	tests := []struct {
		name           string
		page, perPage  int
		count          int
		countErr       error
		wantOffset     int
		wantTotalPages int
		wantFields     []string
		wantTrace      []string
	}{
		{name: "empty store", page: 1, perPage: 10, count: 0, wantOffset: 0, wantTotalPages: 0, wantTrace: []string{"Count", "ListPage"}},
		{name: "exact multiple", page: 2, perPage: 10, count: 20, wantOffset: 10, wantTotalPages: 2, wantTrace: []string{"Count", "ListPage"}},
		{name: "partial last page", page: 3, perPage: 10, count: 25, wantOffset: 20, wantTotalPages: 3, wantTrace: []string{"Count", "ListPage"}},
		{name: "beyond last page", page: 9, perPage: 10, count: 25, wantOffset: 80, wantTotalPages: 3, wantTrace: []string{"Count", "ListPage"}},
		{name: "max per page", page: 1, perPage: 100, count: 1, wantOffset: 0, wantTotalPages: 1, wantTrace: []string{"Count", "ListPage"}},
		{name: "page zero", page: 0, perPage: 10, wantFields: []string{"page"}, wantTrace: []string{}},
		{name: "per page zero", page: 1, perPage: 0, wantFields: []string{"per_page"}, wantTrace: []string{}},
		{name: "per page 101", page: 1, perPage: 101, wantFields: []string{"per_page"}, wantTrace: []string{}},
		{name: "both invalid", page: -1, perPage: 500, wantFields: []string{"page", "per_page"}, wantTrace: []string{}},
		{name: "offset overflow", page: math.MaxInt, perPage: 100, wantFields: []string{"page"}, wantTrace: []string{}},
		{name: "count failure", page: 1, perPage: 10, countErr: countErr, wantTrace: []string{"Count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeResultRepo()
			var gotOffset, gotLimit int
			repo.CountFunc = func(ctx context.Context, db bun.IDB) (int, error) {
				return tt.count, tt.countErr
			}
			repo.ListPageFunc = func(ctx context.Context, db bun.IDB, offset, limit int) ([]resultdb.GameResult, error) {
				gotOffset, gotLimit = offset, limit
				return []resultdb.GameResult{}, nil
			}
			svc := newTestService(repo, nil)

			got, err := svc.GetPage(context.Background(), tt.page, tt.perPage)
			assert.Equal(t, tt.wantTrace, repo.Trace())

			if tt.wantFields != nil {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				var fields []string
				for _, p := range verr.Problems {
					fields = append(fields, p.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
				return
			}
			if tt.countErr != nil {
				var serr *StorageError
				require.ErrorAs(t, err, &serr)
				assert.ErrorIs(t, err, tt.countErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, gotOffset)
			assert.Equal(t, tt.perPage, gotLimit)
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.perPage, got.PerPage)
			assert.Equal(t, tt.count, got.Total)
			assert.Equal(t, tt.wantTotalPages, got.TotalPages)
			assert.NotNil(t, got.Results)
		})
	}
}

func TestTotalPages(t *testing.T) {
	for total := 0; total <= 250; total++ {
		for perPage := MinPerPage; perPage <= MaxPerPage; perPage++ {
			want := int(math.Ceil(float64(total) / float64(perPage)))
			got := totalPages(total, perPage)
			if got != want {
				t.Fatalf("totalPages(%d, %d) = %d, want %d", total, perPage, got, want)
			}
			if (got == 0) != (total == 0) {
				t.Fatalf("totalPages(%d, %d) = %d: zero pages must mean zero results", total, perPage, got)
			}
		}
	}
}

func TestSubmitThenGetPage_NewestFirst(t *testing.T) {
	repo := NewFakeResultRepo()
	repo.backWithMemory()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "a"} {
		in := validInput()
		in.Username = name
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.GetPage(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "a", page.Results[0].Username)
	assert.Equal(t, "first", page.Results[2].Username)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)

	beyond, err := svc.GetPage(ctx, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, beyond.Results)
	assert.Equal(t, 3, beyond.Total)
	assert.Equal(t, 3, beyond.TotalPages)
}

func TestSubmit_ConcurrentCallsGetDistinctIDs(t *testing.T) {
	repo := NewFakeResultRepo()
	repo.backWithMemory()
	svc := newTestService(repo, nil)

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Submit(context.Background(), validInput())
			if assert.NoError(t, err) {
				ids <- got.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestExportRecent(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantErr   bool
		wantTrace []string
	}{
		{name: "default limit", limit: DefaultExportLimit, wantTrace: []string{"ListRecent"}},
		{name: "max limit", limit: MaxExportLimit, wantTrace: []string{"ListRecent"}},
		{name: "zero", limit: 0, wantErr: true, wantTrace: []string{}},
		{name: "too many", limit: MaxExportLimit + 1, wantErr: true, wantTrace: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeResultRepo()
			svc := newTestService(repo, nil)

			rows, err := svc.ExportRecent(context.Background(), tt.limit)
			assert.Equal(t, tt.wantTrace, repo.Trace())
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rows)
		})
	}
}

func TestWithTelemetry_RecoversPanicAndCountsFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)
	repo := NewFakeResultRepo()
	repo.InsertFunc = func(ctx context.Context, db bun.IDB, in resultdb.GameResultInput) (*resultdb.GameResult, error) {
		panic("boom")
	}
	svc := NewResultService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), m, nil, nil)

	got, err := svc.Submit(context.Background(), validInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in Submit")
	assert.Nil(t, got)

	failures, err := testutil.GatherAndCount(reg, "typermaster_operation_total")
	require.NoError(t, err)
	assert.Equal(t, 2, failures) // attempt and failure series
}
