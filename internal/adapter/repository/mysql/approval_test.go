package mysql

import (
	"context"
	"testing"

	"loanvault-backend/pkg/id"
)

func TestApproval_SetAndUpsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewApprovalRepository(db)
	ctx := context.Background()
	owner, delegate := id.NewID32(), id.NewID32()

	ok, err := repo.IsApproved(ctx, owner, delegate)
	if err != nil || ok {
		t.Fatalf("IsApproved before = %v, %v, want false", ok, err)
	}

	if err := repo.Set(ctx, owner, delegate, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err = repo.IsApproved(ctx, owner, delegate)
	if err != nil || !ok {
		t.Fatalf("IsApproved = %v, %v, want true", ok, err)
	}

	// revoke via upsert on the same pair
	if err := repo.Set(ctx, owner, delegate, false); err != nil {
		t.Fatalf("Set revoke: %v", err)
	}
	ok, err = repo.IsApproved(ctx, owner, delegate)
	if err != nil || ok {
		t.Fatalf("IsApproved after revoke = %v, %v, want false", ok, err)
	}
}

func TestApproval_Directional(t *testing.T) {
	db := openTestDB(t)
	repo := NewApprovalRepository(db)
	ctx := context.Background()
	owner, delegate := id.NewID32(), id.NewID32()

	if err := repo.Set(ctx, owner, delegate, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// approval does not flow backwards
	ok, err := repo.IsApproved(ctx, delegate, owner)
	if err != nil || ok {
		t.Fatalf("reverse IsApproved = %v, %v, want false", ok, err)
	}
}
