package loan

import (
	"errors"
	"fmt"
)

// Closed fault taxonomy. Every fault aborts the enclosing transaction with no
// partial effects; callers assert exact cause with errors.Is / errors.As.
var (
	ErrNotFound     = errors.New("loan not found")
	ErrZeroInterest = errors.New("computed interest due is zero")
	ErrPaused       = errors.New("ledger is paused")
	ErrEmptyRef     = errors.New("empty collaborator reference")
)

// StateError is returned when an operation requires a lifecycle state the
// loan is not in.
type StateError struct {
	LoanID uint64
	State  State
	Want   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("loan %d is %s, want %s", e.LoanID, e.State, e.Want)
}

// InvalidRateError marks an interest rate outside the sane multiplier range.
type InvalidRateError struct {
	RateBps uint64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("interest rate %d bps outside [%d, %d]", e.RateBps, MinRateBps, MaxRateBps)
}

// CollateralLockedError marks collateral already pledged to an active loan.
type CollateralLockedError struct {
	Asset  string
	ItemID uint64
}

func (e *CollateralLockedError) Error() string {
	return fmt.Sprintf("collateral %s/%d already pledged", e.Asset, e.ItemID)
}

// ClaimTooEarlyError marks a default claim attempted before the loan
// qualifies, by due date (legacy) or by the dual missed/elapsed check.
type ClaimTooEarlyError struct {
	LoanID uint64
	Reason string
}

func (e *ClaimTooEarlyError) Error() string {
	return fmt.Sprintf("loan %d cannot be claimed yet: %s", e.LoanID, e.Reason)
}
