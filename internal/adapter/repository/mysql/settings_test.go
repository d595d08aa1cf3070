package mysql

import (
	"context"
	"testing"

	settingsDomain "loanvault-backend/internal/domain/settings"
)

func TestSettings_GetBootstrapsDefaults(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	s, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	def := settingsDomain.Defaults()
	if s.ID != settingsDomain.SingletonID || s.FeeRateBps != def.FeeRateBps || s.MinPrincipal != def.MinPrincipal {
		t.Fatalf("defaults mismatch: %+v", s)
	}
	if s.Paused || s.AccruedFees != 0 {
		t.Fatalf("fresh settings not clean: %+v", s)
	}
}

func TestSettings_SaveRoundtrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	s, err := repo.GetForUpdate(ctx)
	if err != nil {
		t.Fatalf("GetForUpdate: %v", err)
	}
	s.FeeRateBps = 500
	s.AccruedFees = 12_345
	s.Paused = true
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FeeRateBps != 500 || got.AccruedFees != 12_345 || !got.Paused {
		t.Fatalf("not persisted: %+v", got)
	}
}
