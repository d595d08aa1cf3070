package nonce

import "context"

type Repository interface {
	IsUsed(ctx context.Context, user string, n uint64) (bool, error)
	// Consume marks the pair used; returns *UsedError if it already was.
	Consume(ctx context.Context, user string, n uint64) error
}
