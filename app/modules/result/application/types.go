package resultservice

import resultdb "github.com/Black-And-White-Club/typer-master/app/modules/result/infrastructure/repositories"

const (
	DefaultPage        = 1
	DefaultPerPage     = 10
	MinPerPage         = 1
	MaxPerPage         = 100
	DefaultExportLimit = 100
	MaxExportLimit     = 1000
)

// SubmitInput is the payload of a save request.
type SubmitInput struct {
	Username     string
	WPM          float64
	Accuracy     float64
	RealAccuracy float64
	Text         string
}

// PaginatedResult is one page of results plus the metadata to navigate the rest.
type PaginatedResult struct {
	Results    []resultdb.GameResult
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}
