// Package store persists the estimation request log: every API estimation
// is appended with its input, output, and caller address. SQLite is the
// default backend; Postgres is available for shared deployments.
package store

import (
	"context"
	"time"
)

// EstimationLog is one logged estimation request/response pair.
type EstimationLog struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ClientIP  string    `json:"client_ip"`

	Surface float64 `json:"surface"`
	Rooms   float64 `json:"rooms"`
	Year    int     `json:"year"`
	Address string  `json:"address"`

	PricePerM2 float64 `json:"price_m2"`
	TotalPrice float64 `json:"total_price"`
	Class      string  `json:"class"`
	// Response is the full JSON payload returned to the caller.
	Response string `json:"response"`
}

// Filter restricts ListEstimations.
type Filter struct {
	Limit  int
	Offset int
}

// Store is the persistence interface for the estimation log.
type Store interface {
	LogEstimation(ctx context.Context, log *EstimationLog) error
	ListEstimations(ctx context.Context, filter Filter) ([]EstimationLog, error)

	Migrate(ctx context.Context) error
	Close() error
}
