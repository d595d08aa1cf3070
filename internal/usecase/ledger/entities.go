package ledger

import (
	"loanvault-backend/internal/domain/loan"
)

// OpenInput carries a validated origination request from the admission
// controller. The nonce is consumed in the same transaction that opens the
// loan, so a replayed signature can never open twice.
type OpenInput struct {
	Lender    string
	Borrower  string
	Terms     loan.Terms
	NonceUser string
	Nonce     uint64
}

// RepayPartInput carries one installment payment. The breakdown across
// principal/interest/late fees is computed and pre-validated by the external
// repayment layer; the ledger only bounds the principal component.
type RepayPartInput struct {
	LoanID             uint64
	MissedPayments     uint32
	PaymentToPrincipal uint64
	PaymentToInterest  uint64
	PaymentToLateFees  uint64
}

// RepayPartResult reports what the ledger actually applied.
type RepayPartResult struct {
	LoanID            uint64     `json:"loan_id"`
	State             loan.State `json:"state"`
	PrincipalApplied  uint64     `json:"principal_applied"`
	OverpaymentRefund uint64     `json:"overpayment_refund"`
	Balance           uint64     `json:"balance"`
}
