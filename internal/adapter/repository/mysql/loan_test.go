package mysql

import (
	"context"
	"errors"
	"testing"

	loanDomain "loanvault-backend/internal/domain/loan"
	"loanvault-backend/pkg/id"
)

func TestLoan_CreateAndGetByID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32(), id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatal("Create did not set auto-increment ID")
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Borrower != l.Borrower || got.Balance != 1_000_000 || got.State != loanDomain.StateActive {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestLoan_SequentialIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	first := makeLoan(id.NewID32(), id.NewID32())
	second := makeLoan(id.NewID32(), id.NewID32())
	second.CollateralID = 2
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("ids not sequential: %d then %d", first.ID, second.ID)
	}
}

func TestLoan_GetByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	if _, err := repo.GetByID(context.Background(), 9999); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByIDForUpdate(context.Background(), 9999); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("for-update err = %v, want ErrNotFound", err)
	}
}

func TestLoan_SavePersistsStateTransition(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32(), id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l.State = loanDomain.StateRepaid
	l.Balance = 0
	l.BalancePaid = 1_100_000
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State != loanDomain.StateRepaid || got.Balance != 0 || got.BalancePaid != 1_100_000 {
		t.Fatalf("state not persisted: %+v", got)
	}
}
