package resultdb

import (
	"time"

	"github.com/uptrace/bun"
)

// GameResult is a single completed typing-test attempt. Rows are append-only.
type GameResult struct {
	bun.BaseModel `bun:"table:game_results,alias:gr"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Username      string    `bun:"username,notnull" json:"username"`
	WPM           float64   `bun:"wpm,notnull" json:"wpm"`
	Accuracy      float64   `bun:"accuracy,notnull" json:"accuracy"`
	RealAccuracy  float64   `bun:"real_accuracy,notnull" json:"real_accuracy"`
	Text          string    `bun:"text,notnull" json:"text"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// GameResultInput carries the caller-supplied fields of a new result.
type GameResultInput struct {
	Username     string
	WPM          float64
	Accuracy     float64
	RealAccuracy float64
	Text         string
}
