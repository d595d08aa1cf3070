package mysql

import (
	"context"
	"errors"

	lockDomain "loanvault-backend/internal/domain/lock"

	"gorm.io/gorm"
)

type LockRepository struct{ db *gorm.DB }

func NewLockRepository(db *gorm.DB) *LockRepository { return &LockRepository{db: db} }

func (r *LockRepository) IsLocked(ctx context.Context, key string) (bool, error) {
	var out lockDomain.Lock
	res := r.db.WithContext(ctx).Where("lock_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return res.Error == nil, res.Error
}

func (r *LockRepository) Set(ctx context.Context, key string, loanID uint64) error {
	return r.db.WithContext(ctx).Create(&lockDomain.Lock{Key: key, LoanID: loanID}).Error
}

func (r *LockRepository) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("lock_key = ?", key).Delete(&lockDomain.Lock{}).Error
}
