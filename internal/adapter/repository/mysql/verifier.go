package mysql

import (
	"context"
	"errors"

	verifierDomain "loanvault-backend/internal/domain/verifier"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerifierRepository struct{ db *gorm.DB }

func NewVerifierRepository(db *gorm.DB) *VerifierRepository { return &VerifierRepository{db: db} }

func (r *VerifierRepository) SetAllowed(ctx context.Context, ref string, allowed bool) error {
	v := verifierDomain.Verifier{Ref: ref, Allowed: allowed}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ref"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed"}),
		}).
		Create(&v).Error
}

func (r *VerifierRepository) IsAllowed(ctx context.Context, ref string) (bool, error) {
	var out verifierDomain.Verifier
	res := r.db.WithContext(ctx).Where("ref = ?", ref).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return out.Allowed, nil
}
