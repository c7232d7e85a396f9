package resultservice

import (
	"context"

	resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"
)

// Service defines the game result operations exposed to the API layer.
type Service interface {
	// Submit validates and stores a new result.
	Submit(ctx context.Context, input SubmitInput) (*resultdb.GameResult, error)

	// GetPage returns one page of results, newest first.
	GetPage(ctx context.Context, page, perPage int) (*PaginatedResult, error)

	// ExportRecent returns up to limit of the newest results.
	ExportRecent(ctx context.Context, limit int) ([]resultdb.GameResult, error)
}

// EventPublisher announces committed results.
type EventPublisher interface {
	PublishResultRecorded(ctx context.Context, result *resultdb.GameResult) error
}
