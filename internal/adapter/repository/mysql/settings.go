package mysql

import (
	"context"
	"errors"

	settingsDomain "loanvault-backend/internal/domain/settings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) *SettingsRepository { return &SettingsRepository{db: db} }

func (r *SettingsRepository) Get(ctx context.Context) (*settingsDomain.Settings, error) {
	return r.get(ctx, r.db.WithContext(ctx))
}

func (r *SettingsRepository) GetForUpdate(ctx context.Context) (*settingsDomain.Settings, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(ctx, q)
}

func (r *SettingsRepository) get(ctx context.Context, q *gorm.DB) (*settingsDomain.Settings, error) {
	var out settingsDomain.Settings
	res := q.Where("id = ?", settingsDomain.SingletonID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		def := settingsDomain.Defaults()
		if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
			return nil, err
		}
		return def, nil
	}
	return &out, res.Error
}

func (r *SettingsRepository) Save(ctx context.Context, s *settingsDomain.Settings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
