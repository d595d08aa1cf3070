package approval

import "context"

type Repository interface {
	Set(ctx context.Context, owner, delegate string, allowed bool) error
	IsApproved(ctx context.Context, owner, delegate string) (bool, error)
}
