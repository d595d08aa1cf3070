package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/pkg/consent"

	"gorm.io/gorm"
)

// Reference implementation of collab.CollateralRegistry. Items live in one
// table keyed (asset, item_id); container references resolve through a
// separate instance mapping. Transfer approvals are one-shot, cleared on use
// and on every transfer, mirroring how permits grant a single move.

type Asset struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Asset     string    `gorm:"size:32;column:asset;not null;uniqueIndex:ux_assets_asset_item,priority:1"`
	ItemID    uint64    `gorm:"column:item_id;not null;uniqueIndex:ux_assets_asset_item,priority:2"`
	Owner     string    `gorm:"size:32;column:owner;not null;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Asset) TableName() string { return "collateral_assets" }

type AssetApproval struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement;column:id"`
	Asset   string `gorm:"size:32;column:asset;not null;uniqueIndex:ux_asset_approvals,priority:1"`
	ItemID  uint64 `gorm:"column:item_id;not null;uniqueIndex:ux_asset_approvals,priority:2"`
	Spender string `gorm:"size:32;column:spender;not null;uniqueIndex:ux_asset_approvals,priority:3"`
}

func (AssetApproval) TableName() string { return "collateral_asset_approvals" }

type Container struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement;column:id"`
	Asset       string `gorm:"size:32;column:asset;not null;uniqueIndex:ux_containers,priority:1"`
	ContainerID uint64 `gorm:"column:container_id;not null;uniqueIndex:ux_containers,priority:2"`
	Instance    string `gorm:"size:32;column:instance;not null"`
}

func (Container) TableName() string { return "collateral_containers" }

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

var _ collab.CollateralRegistry = (*AssetRepository)(nil)

func (r *AssetRepository) OwnerOf(ctx context.Context, asset string, itemID uint64) (string, error) {
	var out Asset
	res := r.db.WithContext(ctx).
		Where("asset = ? AND item_id = ?", asset, itemID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", collab.ErrUnknownAsset
	}
	return out.Owner, res.Error
}

func (r *AssetRepository) TransferFrom(ctx context.Context, spender, from, to, asset string, itemID uint64) error {
	var item Asset
	res := r.db.WithContext(ctx).
		Where("asset = ? AND item_id = ?", asset, itemID).
		First(&item)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return collab.ErrUnknownAsset
	}
	if res.Error != nil {
		return res.Error
	}
	if item.Owner != from {
		return collab.ErrNotAssetOwner
	}
	if spender != from {
		ok, err := r.hasApproval(ctx, asset, itemID, spender)
		if err != nil {
			return err
		}
		if !ok {
			return collab.ErrNotAssetOwner
		}
	}
	// approvals do not survive a transfer
	if err := r.db.WithContext(ctx).
		Where("asset = ? AND item_id = ?", asset, itemID).
		Delete(&AssetApproval{}).Error; err != nil {
		return err
	}
	item.Owner = to
	return r.db.WithContext(ctx).Save(&item).Error
}

func (r *AssetRepository) Approve(ctx context.Context, owner, spender, asset string, itemID uint64) error {
	cur, err := r.OwnerOf(ctx, asset, itemID)
	if err != nil {
		return err
	}
	if cur != owner {
		return collab.ErrNotAssetOwner
	}
	a := AssetApproval{Asset: asset, ItemID: itemID, Spender: spender}
	err = r.db.WithContext(ctx).Create(&a).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *AssetRepository) InstanceAt(ctx context.Context, asset string, containerID uint64) (string, error) {
	var out Container
	res := r.db.WithContext(ctx).
		Where("asset = ? AND container_id = ?", asset, containerID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", collab.ErrUnknownAsset
	}
	return out.Instance, res.Error
}

// BindContainer registers a container → instance mapping. Bootstrap helper.
func (r *AssetRepository) BindContainer(ctx context.Context, asset string, containerID uint64, instance string) error {
	return r.db.WithContext(ctx).
		Create(&Container{Asset: asset, ContainerID: containerID, Instance: instance}).Error
}

// permitPayload is the digest layout a permit signature covers.
type permitPayload struct {
	Owner    string `json:"owner"`
	Spender  string `json:"spender"`
	Asset    string `json:"asset"`
	ItemID   uint64 `json:"item_id"`
	Deadline int64  `json:"deadline"`
}

// Permit grants spender a one-shot transfer right from an offline consent
// envelope, removing the need for a prior Approve call. The signer identity
// derived from the envelope must be the item's current owner.
func (r *AssetRepository) Permit(ctx context.Context, owner, spender, asset string, itemID uint64, deadline time.Time, sig []byte) error {
	if time.Now().UTC().After(deadline) {
		return collab.ErrPermitRejected
	}
	var env consent.Envelope
	if err := json.Unmarshal(sig, &env); err != nil {
		return collab.ErrPermitRejected
	}
	digest, err := consent.Digest(permitPayload{
		Owner: owner, Spender: spender, Asset: asset, ItemID: itemID, Deadline: deadline.Unix(),
	})
	if err != nil {
		return collab.ErrPermitRejected
	}
	signer, err := env.Verify(digest)
	if err != nil || signer != owner {
		return collab.ErrPermitRejected
	}
	cur, err := r.OwnerOf(ctx, asset, itemID)
	if err != nil {
		return err
	}
	if cur != owner {
		return collab.ErrNotAssetOwner
	}
	return r.Approve(ctx, owner, spender, asset, itemID)
}

// MintAsset registers a collateral item. Test/bootstrap helper only.
func (r *AssetRepository) MintAsset(ctx context.Context, asset string, itemID uint64, owner string) error {
	return r.db.WithContext(ctx).Create(&Asset{Asset: asset, ItemID: itemID, Owner: owner}).Error
}

func (r *AssetRepository) hasApproval(ctx context.Context, asset string, itemID uint64, spender string) (bool, error) {
	var out AssetApproval
	res := r.db.WithContext(ctx).
		Where("asset = ? AND item_id = ? AND spender = ?", asset, itemID, spender).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return res.Error == nil, res.Error
}
