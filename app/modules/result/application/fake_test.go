package resultservice

import (
	"context"
	"sort"
	"sync"
	"time"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Result Repo
// ------------------------

type FakeResultRepo struct {
	mu    sync.Mutex
	trace []string

	InsertFunc     func(ctx context.Context, db bun.IDB, input resultdb.GameResultInput) (*resultdb.GameResult, error)
	CountFunc      func(ctx context.Context, db bun.IDB) (int, error)
	ListPageFunc   func(ctx context.Context, db bun.IDB, offset, limit int) ([]resultdb.GameResult, error)
	ListRecentFunc func(ctx context.Context, db bun.IDB, limit int) ([]resultdb.GameResult, error)
}

func NewFakeResultRepo() *FakeResultRepo {
	return &FakeResultRepo{
		trace: []string{},
	}
}

func (f *FakeResultRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeResultRepo) Insert(ctx context.Context, db bun.IDB, input resultdb.GameResultInput) (*resultdb.GameResult, error) {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, input)
	}
	return &resultdb.GameResult{ID: 1, Username: input.Username}, nil
}

func (f *FakeResultRepo) Count(ctx context.Context, db bun.IDB) (int, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakeResultRepo) ListPage(ctx context.Context, db bun.IDB, offset, limit int) ([]resultdb.GameResult, error) {
	f.record("ListPage")
	if f.ListPageFunc != nil {
		return f.ListPageFunc(ctx, db, offset, limit)
	}
	return []resultdb.GameResult{}, nil
}

func (f *FakeResultRepo) ListRecent(ctx context.Context, db bun.IDB, limit int) ([]resultdb.GameResult, error) {
	f.record("ListRecent")
	if f.ListRecentFunc != nil {
		return f.ListRecentFunc(ctx, db, limit)
	}
	return []resultdb.GameResult{}, nil
}

// --- Accessors for assertions ---

func (f *FakeResultRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ resultdb.Repository = (*FakeResultRepo)(nil)

// backWithMemory makes the fake behave like an append-only table whose rows
// all share one timestamp, so ordering falls back to id.
func (f *FakeResultRepo) backWithMemory() {
	var (
		mu     sync.Mutex
		rows   []resultdb.GameResult
		nextID int64
	)
	stamp := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	sorted := func() []resultdb.GameResult {
		out := append([]resultdb.GameResult(nil), rows...)
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return out
	}

	f.InsertFunc = func(ctx context.Context, db bun.IDB, in resultdb.GameResultInput) (*resultdb.GameResult, error) {
		mu.Lock()
		defer mu.Unlock()
		nextID++
		row := resultdb.GameResult{
			ID:           nextID,
			Username:     in.Username,
			WPM:          in.WPM,
			Accuracy:     in.Accuracy,
			RealAccuracy: in.RealAccuracy,
			Text:         in.Text,
			CreatedAt:    stamp,
		}
		rows = append(rows, row)
		return &row, nil
	}
	f.CountFunc = func(ctx context.Context, db bun.IDB) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return len(rows), nil
	}
	f.ListPageFunc = func(ctx context.Context, db bun.IDB, offset, limit int) ([]resultdb.GameResult, error) {
		mu.Lock()
		defer mu.Unlock()
		all := sorted()
		if offset >= len(all) {
			return []resultdb.GameResult{}, nil
		}
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}
	f.ListRecentFunc = func(ctx context.Context, db bun.IDB, limit int) ([]resultdb.GameResult, error) {
		return f.ListPageFunc(ctx, db, 0, limit)
	}
}

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	published []resultdb.GameResult

	PublishFunc func(ctx context.Context, result *resultdb.GameResult) error
}

func (p *FakePublisher) PublishResultRecorded(ctx context.Context, result *resultdb.GameResult) error {
	p.mu.Lock()
	p.published = append(p.published, *result)
	p.mu.Unlock()
	if p.PublishFunc != nil {
		return p.PublishFunc(ctx, result)
	}
	return nil
}

func (p *FakePublisher) Published() []resultdb.GameResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]resultdb.GameResult(nil), p.published...)
}

var _ EventPublisher = (*FakePublisher)(nil)
