package receipt

import "context"

type Repository interface {
	// MintPair creates the borrower and lender receipts for a new loan.
	MintPair(ctx context.Context, loanID uint64, borrower, lender string) error
	// Owner returns the current holder of the live receipt for one side.
	Owner(ctx context.Context, loanID uint64, side Side) (string, error)
	// Transfer reassigns a live receipt to a new owner.
	Transfer(ctx context.Context, loanID uint64, side Side, newOwner string) error
	// BurnPair soft-deletes both receipts at loan closure.
	BurnPair(ctx context.Context, loanID uint64) error
}
