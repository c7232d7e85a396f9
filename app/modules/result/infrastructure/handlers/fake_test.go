package resulthandlers

import (
	"context"
	"sync"
	"time"

	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	SubmitFunc       func(ctx context.Context, input resultservice.SubmitInput) (*resultdb.GameResult, error)
	GetPageFunc      func(ctx context.Context, page, perPage int) (*resultservice.PaginatedResult, error)
	ExportRecentFunc func(ctx context.Context, limit int) ([]resultdb.GameResult, error)

	mu    sync.Mutex
	trace []string
}

func (f *FakeService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeService) Submit(ctx context.Context, input resultservice.SubmitInput) (*resultdb.GameResult, error) {
	f.record("Submit")
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, input)
	}
	return &resultdb.GameResult{ID: 1, Username: input.Username}, nil
}

func (f *FakeService) GetPage(ctx context.Context, page, perPage int) (*resultservice.PaginatedResult, error) {
	f.record("GetPage")
	if f.GetPageFunc != nil {
		return f.GetPageFunc(ctx, page, perPage)
	}
	return &resultservice.PaginatedResult{Results: []resultdb.GameResult{}, Page: page, PerPage: perPage}, nil
}

func (f *FakeService) ExportRecent(ctx context.Context, limit int) ([]resultdb.GameResult, error) {
	f.record("ExportRecent")
	if f.ExportRecentFunc != nil {
		return f.ExportRecentFunc(ctx, limit)
	}
	return []resultdb.GameResult{}, nil
}

// memoryService is an append-only service used for request flow tests.
type memoryService struct {
	mu   sync.Mutex
	rows []resultdb.GameResult
	now  time.Time
}

func (m *memoryService) Submit(_ context.Context, input resultservice.SubmitInput) (*resultdb.GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := resultdb.GameResult{
		ID:           int64(len(m.rows) + 1),
		Username:     input.Username,
		WPM:          input.WPM,
		Accuracy:     input.Accuracy,
		RealAccuracy: input.RealAccuracy,
		Text:         input.Text,
		CreatedAt:    m.now.Add(time.Duration(len(m.rows)) * time.Second),
	}
	m.rows = append(m.rows, row)
	return &row, nil
}

func (m *memoryService) GetPage(_ context.Context, page, perPage int) (*resultservice.PaginatedResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	newest := make([]resultdb.GameResult, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		newest = append(newest, m.rows[i])
	}
	start := min((page-1)*perPage, len(newest))
	end := min(start+perPage, len(newest))
	return &resultservice.PaginatedResult{
		Results:    newest[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      len(newest),
		TotalPages: (len(newest) + perPage - 1) / perPage,
	}, nil
}

func (m *memoryService) ExportRecent(ctx context.Context, limit int) ([]resultdb.GameResult, error) {
	res, err := m.GetPage(ctx, 1, limit)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}
