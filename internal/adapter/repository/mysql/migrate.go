package mysql

import (
	"loanvault-backend/internal/domain/approval"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/lock"
	"loanvault-backend/internal/domain/nonce"
	"loanvault-backend/internal/domain/receipt"
	"loanvault-backend/internal/domain/settings"
	"loanvault-backend/internal/domain/verifier"

	"gorm.io/gorm"
)

// AutoMigrate creates every table the service owns, including the
// collaborator reference tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&loan.Loan{},
		&receipt.Receipt{},
		&lock.Lock{},
		&nonce.Nonce{},
		&approval.Approval{},
		&verifier.Verifier{},
		&settings.Settings{},
		&Balance{},
		&Allowance{},
		&Asset{},
		&AssetApproval{},
		&Container{},
	)
}
