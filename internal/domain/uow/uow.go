package uow

import (
	"context"

	"loanvault-backend/internal/domain/approval"
	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/lock"
	"loanvault-backend/internal/domain/nonce"
	"loanvault-backend/internal/domain/receipt"
	"loanvault-backend/internal/domain/settings"
	"loanvault-backend/internal/domain/verifier"
)

// Repos bundles every store a ledger operation may touch, all bound to the
// same transaction. Values and Assets are the collaborator reference
// implementations; binding them here makes escrow movement commit atomically
// with ledger bookkeeping.
type Repos struct {
	Loans     loan.Repository
	Receipts  receipt.Repository
	Locks     lock.Repository
	Nonces    nonce.Repository
	Approvals approval.Repository
	Verifiers verifier.Repository
	Settings  settings.Repository
	Values    collab.ValueMover
	Assets    collab.CollateralRegistry
}

// UnitOfWork runs fn atomically: either every effect commits or none do.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it in.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
