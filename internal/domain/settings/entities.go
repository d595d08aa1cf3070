package settings

import (
	"errors"
	"fmt"
	"time"
)

// SingletonID pins the single settings row.
const SingletonID uint64 = 1

var ErrNotFound = errors.New("protocol settings row missing")

// PrincipalTooLowError rejects origination below the protocol minimum.
type PrincipalTooLowError struct {
	Principal uint64
	Min       uint64
}

func (e *PrincipalTooLowError) Error() string {
	return fmt.Sprintf("principal %d below protocol minimum %d", e.Principal, e.Min)
}

// Settings is the protocol configuration row. The fee rate is read inside
// the opening transaction, never cached, so admin updates take effect on the
// very next origination.
type Settings struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	FeeRateBps    uint64    `gorm:"column:fee_rate_bps;not null"`
	AccruedFees   uint64    `gorm:"column:accrued_fees;not null"`
	Paused        bool      `gorm:"column:paused;not null"`
	MinPrincipal  uint64    `gorm:"column:min_principal;not null"`
	FeeController string    `gorm:"size:32;column:fee_controller"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string { return "protocol_settings" }

// Defaults used when bootstrapping an empty database.
func Defaults() *Settings {
	return &Settings{
		ID:           SingletonID,
		FeeRateBps:   300,
		MinPrincipal: 10_000,
	}
}
