package mysql

import (
	"context"
	"errors"

	approvalDomain "loanvault-backend/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Set(ctx context.Context, owner, delegate string, allowed bool) error {
	a := approvalDomain.Approval{Owner: owner, Delegate: delegate, Allowed: allowed}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "delegate"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed"}),
		}).
		Create(&a).Error
}

func (r *ApprovalRepository) IsApproved(ctx context.Context, owner, delegate string) (bool, error) {
	var out approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("owner = ? AND delegate = ?", owner, delegate).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return out.Allowed, nil
}
