package mysql

import (
	"context"

	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func bind(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:     &LoanRepository{db: tx},
		Receipts:  &ReceiptRepository{db: tx},
		Locks:     &LockRepository{db: tx},
		Nonces:    &NonceRepository{db: tx},
		Approvals: &ApprovalRepository{db: tx},
		Verifiers: &VerifierRepository{db: tx},
		Settings:  &SettingsRepository{db: tx},
		Values:    &TokenRepository{db: tx},
		Assets:    &AssetRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := bind(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
