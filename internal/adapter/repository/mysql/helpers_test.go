package mysql

import (
	"testing"
	"time"

	loanDomain "loanvault-backend/internal/domain/loan"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the full schema. The schema
// is sqlite-safe (no enums), so the domain models migrate as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// in-memory sqlite is per-connection
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLoan(borrower, lender string) *loanDomain.Loan {
	return &loanDomain.Loan{
		Terms: loanDomain.Terms{
			DurationSecs:    86_400,
			NumInstallments: 10,
			RateBps:         1_000,
			Principal:       1_000_000,
			CollateralAsset: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			CollateralID:    1,
			Currency:        "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		},
		Borrower:  borrower,
		Lender:    lender,
		State:     loanDomain.StateActive,
		StartDate: time.Now().UTC(),
		Balance:   1_000_000,
	}
}
