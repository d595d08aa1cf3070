package lock

import "context"

type Repository interface {
	IsLocked(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, loanID uint64) error
	Clear(ctx context.Context, key string) error
}
