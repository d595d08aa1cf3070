package mysql

import (
	"context"
	"errors"

	nonceDomain "loanvault-backend/internal/domain/nonce"

	"gorm.io/gorm"
)

type NonceRepository struct{ db *gorm.DB }

func NewNonceRepository(db *gorm.DB) *NonceRepository { return &NonceRepository{db: db} }

func (r *NonceRepository) IsUsed(ctx context.Context, user string, n uint64) (bool, error) {
	var out nonceDomain.Nonce
	res := r.db.WithContext(ctx).Where("user = ? AND nonce = ?", user, n).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return res.Error == nil, res.Error
}

func (r *NonceRepository) Consume(ctx context.Context, user string, n uint64) error {
	used, err := r.IsUsed(ctx, user, n)
	if err != nil {
		return err
	}
	if used {
		return &nonceDomain.UsedError{User: user, Nonce: n}
	}
	err = r.db.WithContext(ctx).Create(&nonceDomain.Nonce{User: user, Nonce: n}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return &nonceDomain.UsedError{User: user, Nonce: n}
	}
	return err
}
