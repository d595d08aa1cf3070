package approval

import (
	"errors"
	"time"
)

var (
	ErrSelfApproval = errors.New("cannot approve yourself as delegate")
	ErrNotFound     = errors.New("approval not found")
)

// Approval lets an owner authorize a delegate to sign or call on their
// behalf during loan origination.
type Approval struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Owner     string    `gorm:"size:32;column:owner;not null;uniqueIndex:ux_approvals_owner_delegate,priority:1"`
	Delegate  string    `gorm:"size:32;column:delegate;not null;uniqueIndex:ux_approvals_owner_delegate,priority:2"`
	Allowed   bool      `gorm:"column:allowed;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Approval) TableName() string { return "approvals" }
