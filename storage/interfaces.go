package storage

import (
	"context"

	"zonaprop-watcher/models"
)

// SeenStore remembers which listing URLs have already been processed.
type SeenStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Record(ctx context.Context, url string, listing *models.Listing) error
	Close() error
}

// EvaluationWriter persists one row per evaluated listing.
type EvaluationWriter interface {
	Write(e models.Evaluation) error
	Close() error
}
