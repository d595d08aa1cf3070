package mysql

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/pkg/consent"
	"loanvault-backend/pkg/id"
)

func TestAssets_MintOwnerTransfer(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, alice, bob := id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.MintAsset(ctx, asset, 1, alice); err != nil {
		t.Fatalf("MintAsset: %v", err)
	}
	owner, err := repo.OwnerOf(ctx, asset, 1)
	if err != nil || owner != alice {
		t.Fatalf("OwnerOf = %s, %v, want %s", owner, err, alice)
	}

	// owner moves their own item
	if err := repo.TransferFrom(ctx, alice, alice, bob, asset, 1); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	owner, _ = repo.OwnerOf(ctx, asset, 1)
	if owner != bob {
		t.Fatalf("owner after transfer = %s, want %s", owner, bob)
	}

	if _, err := repo.OwnerOf(ctx, asset, 404); !errors.Is(err, collab.ErrUnknownAsset) {
		t.Fatalf("unknown item err = %v, want ErrUnknownAsset", err)
	}
}

func TestAssets_ApprovalIsOneShot(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, alice, spender, bob := id.NewID32(), id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.MintAsset(ctx, asset, 1, alice); err != nil {
		t.Fatalf("MintAsset: %v", err)
	}

	// spender cannot move without approval
	if err := repo.TransferFrom(ctx, spender, alice, bob, asset, 1); !errors.Is(err, collab.ErrNotAssetOwner) {
		t.Fatalf("err = %v, want ErrNotAssetOwner", err)
	}

	if err := repo.Approve(ctx, alice, spender, asset, 1); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := repo.TransferFrom(ctx, spender, alice, bob, asset, 1); err != nil {
		t.Fatalf("approved TransferFrom: %v", err)
	}

	// the approval died with the transfer: spender cannot move it back
	if err := repo.TransferFrom(ctx, spender, bob, alice, asset, 1); !errors.Is(err, collab.ErrNotAssetOwner) {
		t.Fatalf("stale approval err = %v, want ErrNotAssetOwner", err)
	}
}

func TestAssets_ApproveRequiresOwnership(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, alice, mallory := id.NewID32(), id.NewID32(), id.NewID32()

	if err := repo.MintAsset(ctx, asset, 1, alice); err != nil {
		t.Fatalf("MintAsset: %v", err)
	}
	if err := repo.Approve(ctx, mallory, mallory, asset, 1); !errors.Is(err, collab.ErrNotAssetOwner) {
		t.Fatalf("err = %v, want ErrNotAssetOwner", err)
	}
}

func TestAssets_ContainerInstance(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, instance := id.NewID32(), id.NewID32()

	if _, err := repo.InstanceAt(ctx, asset, 9); !errors.Is(err, collab.ErrUnknownAsset) {
		t.Fatalf("unbound err = %v, want ErrUnknownAsset", err)
	}
	if err := repo.BindContainer(ctx, asset, 9, instance); err != nil {
		t.Fatalf("BindContainer: %v", err)
	}
	got, err := repo.InstanceAt(ctx, asset, 9)
	if err != nil || got != instance {
		t.Fatalf("InstanceAt = %s, %v, want %s", got, err, instance)
	}
}

func permitSig(t *testing.T, priv ed25519.PrivateKey, owner, spender, asset string, itemID uint64, deadline time.Time) []byte {
	t.Helper()
	digest, err := consent.Digest(struct {
		Owner    string `json:"owner"`
		Spender  string `json:"spender"`
		Asset    string `json:"asset"`
		ItemID   uint64 `json:"item_id"`
		Deadline int64  `json:"deadline"`
	}{owner, spender, asset, itemID, deadline.Unix()})
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	env, err := consent.Sign(priv, digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	raw, _ := json.Marshal(env)
	return raw
}

func TestAssets_Permit(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, spender, dest := id.NewID32(), id.NewID32(), id.NewID32()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := consent.SignerID(pub)
	if err := repo.MintAsset(ctx, asset, 1, owner); err != nil {
		t.Fatalf("MintAsset: %v", err)
	}

	deadline := time.Now().UTC().Add(time.Hour)
	sig := permitSig(t, priv, owner, spender, asset, 1, deadline)

	if err := repo.Permit(ctx, owner, spender, asset, 1, deadline, sig); err != nil {
		t.Fatalf("Permit: %v", err)
	}
	if err := repo.TransferFrom(ctx, spender, owner, dest, asset, 1); err != nil {
		t.Fatalf("TransferFrom after permit: %v", err)
	}
}

func TestAssets_PermitRejections(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset, spender := id.NewID32(), id.NewID32()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := consent.SignerID(pub)
	if err := repo.MintAsset(ctx, asset, 1, owner); err != nil {
		t.Fatalf("MintAsset: %v", err)
	}

	// expired deadline
	past := time.Now().UTC().Add(-time.Minute)
	sig := permitSig(t, priv, owner, spender, asset, 1, past)
	if err := repo.Permit(ctx, owner, spender, asset, 1, past, sig); !errors.Is(err, collab.ErrPermitRejected) {
		t.Fatalf("expired err = %v, want ErrPermitRejected", err)
	}

	// signer is not the owner
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	deadline := time.Now().UTC().Add(time.Hour)
	sig = permitSig(t, otherPriv, owner, spender, asset, 1, deadline)
	if err := repo.Permit(ctx, owner, spender, asset, 1, deadline, sig); !errors.Is(err, collab.ErrPermitRejected) {
		t.Fatalf("foreign signer err = %v, want ErrPermitRejected", err)
	}

	// garbage signature blob
	if err := repo.Permit(ctx, owner, spender, asset, 1, deadline, []byte("junk")); !errors.Is(err, collab.ErrPermitRejected) {
		t.Fatalf("junk err = %v, want ErrPermitRejected", err)
	}
}
