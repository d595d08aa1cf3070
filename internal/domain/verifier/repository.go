package verifier

import "context"

type Repository interface {
	SetAllowed(ctx context.Context, ref string, allowed bool) error
	IsAllowed(ctx context.Context, ref string) (bool, error)
}
