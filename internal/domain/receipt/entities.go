package receipt

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Side names which half of the loan a receipt represents.
type Side string

const (
	SideBorrower Side = "borrower"
	SideLender   Side = "lender"
)

func (s Side) Valid() bool { return s == SideBorrower || s == SideLender }

var (
	ErrNotFound  = errors.New("receipt not found")
	ErrNotOwner  = errors.New("caller does not own the receipt")
	ErrBadSide   = errors.New("receipt side must be borrower or lender")
	ErrEmptyDest = errors.New("receipt transfer needs a destination")
)

// Receipt is a transferable ownership token for one side of a loan. Owning it
// confers that side's claim/repayment rights; the ledger always re-reads the
// current owner before moving funds or collateral. Minted in pairs at loan
// creation, burned (soft-deleted) in pairs at closure.
type Receipt struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement;column:id"`
	LoanID    uint64         `gorm:"column:loan_id;not null;index;uniqueIndex:ux_receipts_loan_side,priority:1"`
	Side      Side           `gorm:"size:8;column:side;not null;uniqueIndex:ux_receipts_loan_side,priority:2"`
	Owner     string         `gorm:"size:32;column:owner;not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Receipt) TableName() string { return "receipts" }
