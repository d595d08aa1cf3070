package mysql

import (
	"context"
	"errors"
	"testing"

	nonceDomain "loanvault-backend/internal/domain/nonce"
	"loanvault-backend/pkg/id"
)

func TestNonce_ConsumeOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewNonceRepository(db)
	ctx := context.Background()
	user := id.NewID32()

	used, err := repo.IsUsed(ctx, user, 1)
	if err != nil || used {
		t.Fatalf("IsUsed before = %v, %v, want false", used, err)
	}

	if err := repo.Consume(ctx, user, 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	used, err = repo.IsUsed(ctx, user, 1)
	if err != nil || !used {
		t.Fatalf("IsUsed after = %v, %v, want true", used, err)
	}

	err = repo.Consume(ctx, user, 1)
	var usedErr *nonceDomain.UsedError
	if !errors.As(err, &usedErr) {
		t.Fatalf("replay err = %v, want *nonce.UsedError", err)
	}
	if usedErr.User != user || usedErr.Nonce != 1 {
		t.Fatalf("error carries wrong pair: %+v", usedErr)
	}
}

func TestNonce_ScopedPerUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewNonceRepository(db)
	ctx := context.Background()
	alice, bob := id.NewID32(), id.NewID32()

	if err := repo.Consume(ctx, alice, 7); err != nil {
		t.Fatalf("Consume alice: %v", err)
	}
	// same numeric nonce, different user: independent
	if err := repo.Consume(ctx, bob, 7); err != nil {
		t.Fatalf("Consume bob: %v", err)
	}
}
