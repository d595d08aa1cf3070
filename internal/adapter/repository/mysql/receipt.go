package mysql

import (
	"context"
	"errors"

	receiptDomain "loanvault-backend/internal/domain/receipt"

	"gorm.io/gorm"
)

type ReceiptRepository struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository { return &ReceiptRepository{db: db} }

func (r *ReceiptRepository) MintPair(ctx context.Context, loanID uint64, borrower, lender string) error {
	pair := []receiptDomain.Receipt{
		{LoanID: loanID, Side: receiptDomain.SideBorrower, Owner: borrower},
		{LoanID: loanID, Side: receiptDomain.SideLender, Owner: lender},
	}
	return r.db.WithContext(ctx).Create(&pair).Error
}

func (r *ReceiptRepository) Owner(ctx context.Context, loanID uint64, side receiptDomain.Side) (string, error) {
	var out receiptDomain.Receipt
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND side = ?", loanID, side).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", receiptDomain.ErrNotFound
	}
	return out.Owner, res.Error
}

func (r *ReceiptRepository) Transfer(ctx context.Context, loanID uint64, side receiptDomain.Side, newOwner string) error {
	res := r.db.WithContext(ctx).
		Model(&receiptDomain.Receipt{}).
		Where("loan_id = ? AND side = ?", loanID, side).
		Update("owner", newOwner)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return receiptDomain.ErrNotFound
	}
	return nil
}

func (r *ReceiptRepository) BurnPair(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Delete(&receiptDomain.Receipt{}).Error
}
