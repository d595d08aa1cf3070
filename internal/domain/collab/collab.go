// Package collab declares the external collaborators the core consumes at
// its boundary: fungible value movement, the collateral-asset registry,
// predicate verification for container collateral, and contract-based
// signature acceptance. The core treats any collaborator error as fatal to
// the enclosing transaction.
package collab

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnknownAsset          = errors.New("unknown collateral asset")
	ErrNotAssetOwner         = errors.New("not the collateral owner")
	ErrPermitRejected        = errors.New("permit signature rejected")
)

// ValueMover moves fungible value between accounts in a given currency.
type ValueMover interface {
	// Transfer moves value out of from's own account.
	Transfer(ctx context.Context, currency, from, to string, amount uint64) error
	// TransferFrom moves value on behalf of from, consuming spender's allowance.
	TransferFrom(ctx context.Context, currency, spender, from, to string, amount uint64) error
	Approve(ctx context.Context, currency, owner, spender string, amount uint64) error
	BalanceOf(ctx context.Context, currency, owner string) (uint64, error)
}

// CollateralRegistry tracks non-fungible collateral items and containers.
type CollateralRegistry interface {
	TransferFrom(ctx context.Context, spender, from, to, asset string, itemID uint64) error
	Approve(ctx context.Context, owner, spender, asset string, itemID uint64) error
	OwnerOf(ctx context.Context, asset string, itemID uint64) (string, error)
	// InstanceAt resolves a container reference to its concrete instance.
	InstanceAt(ctx context.Context, asset string, containerID uint64) (string, error)
	// Permit grants spender a one-time transfer right via an offline signature.
	Permit(ctx context.Context, owner, spender, asset string, itemID uint64, deadline time.Time, sig []byte) error
}

// PredicateVerifier confirms a container instance currently satisfies an
// encoded rule. verifierRef selects which whitelisted verifier to consult.
type PredicateVerifier interface {
	VerifyPredicate(ctx context.Context, verifierRef string, rule []byte, instance string) (bool, error)
}

// SignatureChecker asks a non-individual signer's own logic whether it
// accepts a signature over a digest.
type SignatureChecker interface {
	IsValidSignature(ctx context.Context, target string, digest []byte, signature []byte) (bool, error)
}
