package mysql

import (
	"context"
	"errors"
	"testing"

	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/pkg/id"
)

func TestToken_MintTransferBalance(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	cur, alice, bob := id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.Mint(ctx, cur, alice, 1_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := repo.Transfer(ctx, cur, alice, bob, 400); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	for _, tc := range []struct {
		owner string
		want  uint64
	}{{alice, 600}, {bob, 400}} {
		got, err := repo.BalanceOf(ctx, cur, tc.owner)
		if err != nil || got != tc.want {
			t.Fatalf("BalanceOf(%s) = %d, %v, want %d", tc.owner, got, err, tc.want)
		}
	}
}

func TestToken_TransferInsufficient(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	cur, alice, bob := id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.Mint(ctx, cur, alice, 100); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := repo.Transfer(ctx, cur, alice, bob, 101); !errors.Is(err, collab.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	// a stranger with no row at all
	if err := repo.Transfer(ctx, cur, bob, alice, 1); !errors.Is(err, collab.ErrInsufficientBalance) {
		t.Fatalf("no-row err = %v, want ErrInsufficientBalance", err)
	}
}

func TestToken_TransferFromSpendsAllowance(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	cur, owner, spender, dest := id.NewID32(), id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.Mint(ctx, cur, owner, 1_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// no allowance yet
	if err := repo.TransferFrom(ctx, cur, spender, owner, dest, 100); !errors.Is(err, collab.ErrInsufficientAllowance) {
		t.Fatalf("err = %v, want ErrInsufficientAllowance", err)
	}

	if err := repo.Approve(ctx, cur, owner, spender, 150); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := repo.TransferFrom(ctx, cur, spender, owner, dest, 100); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	// 50 left: another 100 must fail
	if err := repo.TransferFrom(ctx, cur, spender, owner, dest, 100); !errors.Is(err, collab.ErrInsufficientAllowance) {
		t.Fatalf("err = %v, want ErrInsufficientAllowance", err)
	}

	// moving your own funds never touches allowances
	if err := repo.TransferFrom(ctx, cur, owner, owner, dest, 100); err != nil {
		t.Fatalf("self TransferFrom: %v", err)
	}
}

func TestToken_ApproveOverwrites(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	cur, owner, spender, dest := id.NewID32(), id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.Mint(ctx, cur, owner, 1_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := repo.Approve(ctx, cur, owner, spender, 10); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	// approvals set, not add
	if err := repo.Approve(ctx, cur, owner, spender, 500); err != nil {
		t.Fatalf("re-Approve: %v", err)
	}
	if err := repo.TransferFrom(ctx, cur, spender, owner, dest, 400); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
}
