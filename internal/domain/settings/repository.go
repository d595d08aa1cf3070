package settings

import "context"

type Repository interface {
	// Get returns the singleton row, creating it from Defaults() if absent.
	Get(ctx context.Context) (*Settings, error)
	// GetForUpdate locks the row for the duration of the transaction.
	GetForUpdate(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
