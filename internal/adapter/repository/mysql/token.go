package mysql

import (
	"context"
	"errors"
	"time"

	"loanvault-backend/internal/domain/collab"

	"gorm.io/gorm"
)

// Reference implementation of collab.ValueMover backed by the same database,
// so escrow movement commits atomically with ledger bookkeeping. Production
// deployments can swap a real transfer collaborator behind the interface.

type Balance struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Currency  string    `gorm:"size:32;column:currency;not null;uniqueIndex:ux_balances_cur_owner,priority:1"`
	Owner     string    `gorm:"size:32;column:owner;not null;uniqueIndex:ux_balances_cur_owner,priority:2"`
	Amount    uint64    `gorm:"column:amount;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Balance) TableName() string { return "token_balances" }

type Allowance struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Currency  string    `gorm:"size:32;column:currency;not null;uniqueIndex:ux_allowances_key,priority:1"`
	Owner     string    `gorm:"size:32;column:owner;not null;uniqueIndex:ux_allowances_key,priority:2"`
	Spender   string    `gorm:"size:32;column:spender;not null;uniqueIndex:ux_allowances_key,priority:3"`
	Amount    uint64    `gorm:"column:amount;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Allowance) TableName() string { return "token_allowances" }

type TokenRepository struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) *TokenRepository { return &TokenRepository{db: db} }

var _ collab.ValueMover = (*TokenRepository)(nil)

func (r *TokenRepository) Transfer(ctx context.Context, currency, from, to string, amount uint64) error {
	return r.move(ctx, currency, from, to, amount)
}

func (r *TokenRepository) TransferFrom(ctx context.Context, currency, spender, from, to string, amount uint64) error {
	if spender != from {
		if err := r.spendAllowance(ctx, currency, from, spender, amount); err != nil {
			return err
		}
	}
	return r.move(ctx, currency, from, to, amount)
}

func (r *TokenRepository) Approve(ctx context.Context, currency, owner, spender string, amount uint64) error {
	var a Allowance
	res := r.db.WithContext(ctx).
		Where("currency = ? AND owner = ? AND spender = ?", currency, owner, spender).
		First(&a)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		a = Allowance{Currency: currency, Owner: owner, Spender: spender, Amount: amount}
		return r.db.WithContext(ctx).Create(&a).Error
	}
	if res.Error != nil {
		return res.Error
	}
	a.Amount = amount
	return r.db.WithContext(ctx).Save(&a).Error
}

func (r *TokenRepository) BalanceOf(ctx context.Context, currency, owner string) (uint64, error) {
	var b Balance
	res := r.db.WithContext(ctx).
		Where("currency = ? AND owner = ?", currency, owner).
		First(&b)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return b.Amount, res.Error
}

// Mint credits an account out of thin air. Test/bootstrap helper only.
func (r *TokenRepository) Mint(ctx context.Context, currency, owner string, amount uint64) error {
	return r.credit(ctx, currency, owner, amount)
}

func (r *TokenRepository) move(ctx context.Context, currency, from, to string, amount uint64) error {
	var src Balance
	res := r.db.WithContext(ctx).
		Where("currency = ? AND owner = ?", currency, from).
		First(&src)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) || (res.Error == nil && src.Amount < amount) {
		return collab.ErrInsufficientBalance
	}
	if res.Error != nil {
		return res.Error
	}
	src.Amount -= amount
	if err := r.db.WithContext(ctx).Save(&src).Error; err != nil {
		return err
	}
	return r.credit(ctx, currency, to, amount)
}

func (r *TokenRepository) credit(ctx context.Context, currency, owner string, amount uint64) error {
	var dst Balance
	res := r.db.WithContext(ctx).
		Where("currency = ? AND owner = ?", currency, owner).
		First(&dst)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		dst = Balance{Currency: currency, Owner: owner, Amount: amount}
		return r.db.WithContext(ctx).Create(&dst).Error
	}
	if res.Error != nil {
		return res.Error
	}
	dst.Amount += amount
	return r.db.WithContext(ctx).Save(&dst).Error
}

func (r *TokenRepository) spendAllowance(ctx context.Context, currency, owner, spender string, amount uint64) error {
	var a Allowance
	res := r.db.WithContext(ctx).
		Where("currency = ? AND owner = ? AND spender = ?", currency, owner, spender).
		First(&a)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) || (res.Error == nil && a.Amount < amount) {
		return collab.ErrInsufficientAllowance
	}
	if res.Error != nil {
		return res.Error
	}
	a.Amount -= amount
	return r.db.WithContext(ctx).Save(&a).Error
}
