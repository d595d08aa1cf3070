package loan

import (
	"time"
)

type State string

const (
	StateActive    State = "active"
	StateRepaid    State = "repaid"
	StateDefaulted State = "defaulted"
)

// Terminal reports whether the state is absorbing.
func (s State) Terminal() bool { return s == StateRepaid || s == StateDefaulted }

// BasisPointsDenominator is the fixed-point denominator for all bps rates.
const BasisPointsDenominator uint64 = 10_000

// Interest rates outside [MinRateBps, MaxRateBps] fail repayment with
// InvalidRateError instead of silently miscalculating the amount due.
const (
	MinRateBps uint64 = 1
	MaxRateBps uint64 = 1_000_000
)

// Terms is the immutable half of a loan record: the conditions both parties
// signed. NumInstallments == 0 marks a legacy lump-sum loan.
type Terms struct {
	DurationSecs    uint64 `gorm:"column:duration_secs" json:"duration_secs"`
	NumInstallments uint32 `gorm:"column:num_installments" json:"num_installments"`
	RateBps         uint64 `gorm:"column:rate_bps" json:"rate_bps"`
	Principal       uint64 `gorm:"column:principal" json:"principal"`
	CollateralAsset string `gorm:"size:32;column:collateral_asset" json:"collateral_asset"`
	CollateralID    uint64 `gorm:"column:collateral_id" json:"collateral_id"`
	Currency        string `gorm:"size:32;column:currency" json:"currency"`
}

// Loan is the canonical ledger record. IDs are assigned sequentially from 1
// and never reused; terminal records stay queryable forever. Borrower/Lender
// are the counterparties at origination only; the live parties are whoever
// currently holds the paired receipts.
type Loan struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement;column:id" json:"loan_id"`
	Terms `gorm:"embedded"`

	Borrower string `gorm:"size:32;column:borrower" json:"borrower"`
	Lender   string `gorm:"size:32;column:lender" json:"lender"`

	State               State     `gorm:"size:16;column:state" json:"state"`
	StartDate           time.Time `gorm:"column:start_date" json:"start_date"`
	Balance             uint64    `gorm:"column:balance" json:"balance"`
	BalancePaid         uint64    `gorm:"column:balance_paid" json:"balance_paid"`
	LateFeesAccrued     uint64    `gorm:"column:late_fees_accrued" json:"late_fees_accrued"`
	NumInstallmentsPaid uint32    `gorm:"column:num_installments_paid" json:"num_installments_paid"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Legacy reports whether the loan repays as a single lump sum.
func (l *Loan) Legacy() bool { return l.NumInstallments == 0 }

// DueDate is the fixed maturity used by the legacy claim path.
func (l *Loan) DueDate() time.Time {
	return l.StartDate.Add(time.Duration(l.DurationSecs) * time.Second)
}

// FullAmountDue returns principal plus full-term interest for the legacy
// repay path. The rate must already have been range-checked.
func (l *Loan) FullAmountDue() uint64 {
	return l.Principal + l.Principal*l.RateBps/BasisPointsDenominator
}
