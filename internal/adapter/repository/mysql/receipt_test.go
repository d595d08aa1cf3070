package mysql

import (
	"context"
	"errors"
	"testing"

	receiptDomain "loanvault-backend/internal/domain/receipt"
	"loanvault-backend/pkg/id"
)

func TestReceipt_MintPairOwnerTransferBurn(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()
	borrower, lender, buyer := id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.MintPair(ctx, 1, borrower, lender); err != nil {
		t.Fatalf("MintPair: %v", err)
	}

	owner, err := repo.Owner(ctx, 1, receiptDomain.SideLender)
	if err != nil || owner != lender {
		t.Fatalf("Owner(lender) = %s, %v, want %s", owner, err, lender)
	}

	if err := repo.Transfer(ctx, 1, receiptDomain.SideLender, buyer); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	owner, err = repo.Owner(ctx, 1, receiptDomain.SideLender)
	if err != nil || owner != buyer {
		t.Fatalf("Owner after transfer = %s, %v, want %s", owner, err, buyer)
	}
	// the other side is untouched
	owner, err = repo.Owner(ctx, 1, receiptDomain.SideBorrower)
	if err != nil || owner != borrower {
		t.Fatalf("Owner(borrower) = %s, %v, want %s", owner, err, borrower)
	}

	if err := repo.BurnPair(ctx, 1); err != nil {
		t.Fatalf("BurnPair: %v", err)
	}
	if _, err := repo.Owner(ctx, 1, receiptDomain.SideBorrower); !errors.Is(err, receiptDomain.ErrNotFound) {
		t.Fatalf("Owner after burn err = %v, want ErrNotFound", err)
	}
}

func TestReceipt_TransferUnknownLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db)

	err := repo.Transfer(context.Background(), 404, receiptDomain.SideLender, id.NewID32())
	if !errors.Is(err, receiptDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReceipt_DoubleMintRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	if err := repo.MintPair(ctx, 2, id.NewID32(), id.NewID32()); err != nil {
		t.Fatalf("MintPair: %v", err)
	}
	if err := repo.MintPair(ctx, 2, id.NewID32(), id.NewID32()); err == nil {
		t.Fatal("second MintPair for the same loan must fail")
	}
}
