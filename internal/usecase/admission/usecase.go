package admission

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"loanvault-backend/internal/domain/approval"
	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/internal/domain/event"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/settings"
	"loanvault-backend/internal/domain/uow"
	"loanvault-backend/internal/domain/verifier"
	"loanvault-backend/internal/usecase/ledger"
	"loanvault-backend/pkg/auth"
	"loanvault-backend/pkg/consent"

	"github.com/google/uuid"
)

func hexDigest(d []byte) string { return hex.EncodeToString(d) }

func nowUTC() time.Time { return time.Now().UTC() }

// Usecase is the admission controller: it verifies bilateral consent over
// proposed terms, checks collateral predicates for container loans, and
// forwards validated requests to the loan ledger. It never mutates ledger
// state directly.
type Usecase struct {
	ledger     *ledger.Usecase
	uow        uow.UnitOfWork
	reads      uow.Repos
	predicates collab.PredicateVerifier
	sigCheck   collab.SignatureChecker
	custodyID  string
	system     auth.Actor
	events     event.Publisher
}

func NewUsecase(
	l *ledger.Usecase,
	u uow.UnitOfWork,
	reads uow.Repos,
	predicates collab.PredicateVerifier,
	sigCheck collab.SignatureChecker,
	custodyID string,
	events event.Publisher,
) *Usecase {
	if events == nil {
		events = event.Noop{}
	}
	return &Usecase{
		ledger:     l,
		uow:        u,
		reads:      reads,
		predicates: predicates,
		sigCheck:   sigCheck,
		custodyID:  custodyID,
		system:     auth.System(custodyID, auth.RoleOriginator),
		events:     events,
	}
}

// InitializeLoan validates two-sided consent over signed terms and opens the
// loan. The caller acts for one side; the envelope must prove the other side
// signed the exact same terms and nonce.
func (u *Usecase) InitializeLoan(ctx context.Context, actor auth.Actor, in InitializeInput) (uint64, error) {
	if err := u.validateRefs(in); err != nil {
		return 0, err
	}
	if err := u.checkMinPrincipal(ctx, in.Terms.Principal); err != nil {
		return 0, err
	}
	digest, err := TermsDigest(in.Terms, in.Nonce)
	if err != nil {
		return 0, err
	}
	nonceUser, err := u.checkConsent(ctx, actor.ID, in.Borrower, in.Lender, digest, in.Envelope)
	if err != nil {
		return 0, err
	}
	return u.ledger.Open(ctx, u.system, ledger.OpenInput{
		Lender:    in.Lender,
		Borrower:  in.Borrower,
		Terms:     in.Terms,
		NonceUser: nonceUser,
		Nonce:     in.Nonce,
	})
}

// InitializeLoanWithItems admits a loan whose collateral is a container:
// every predicate must pass against the resolved container instance before
// the consent rule even runs.
func (u *Usecase) InitializeLoanWithItems(ctx context.Context, actor auth.Actor, in InitializeInput, predicates []Predicate) (uint64, error) {
	if err := u.validateRefs(in); err != nil {
		return 0, err
	}
	if err := u.checkMinPrincipal(ctx, in.Terms.Principal); err != nil {
		return 0, err
	}

	instance, err := u.reads.Assets.InstanceAt(ctx, in.Terms.CollateralAsset, in.Terms.CollateralID)
	if err != nil {
		return 0, err
	}
	for _, p := range predicates {
		allowed, err := u.reads.Verifiers.IsAllowed(ctx, p.VerifierRef)
		if err != nil {
			return 0, err
		}
		if !allowed {
			return 0, &verifier.UnknownError{VerifierID: p.VerifierRef}
		}
		ok, err := u.predicates.VerifyPredicate(ctx, p.VerifierRef, p.Rule, instance)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &PredicateError{VerifierRef: p.VerifierRef}
		}
	}

	digest, err := TermsWithItemsDigest(in.Terms, predicates, in.Nonce)
	if err != nil {
		return 0, err
	}
	nonceUser, err := u.checkConsent(ctx, actor.ID, in.Borrower, in.Lender, digest, in.Envelope)
	if err != nil {
		return 0, err
	}
	return u.ledger.Open(ctx, u.system, ledger.OpenInput{
		Lender:    in.Lender,
		Borrower:  in.Borrower,
		Terms:     in.Terms,
		NonceUser: nonceUser,
		Nonce:     in.Nonce,
	})
}

// InitializeLoanWithPermit exercises the collateral permit first, removing
// the need for a prior on-ledger approval, then admits as usual.
func (u *Usecase) InitializeLoanWithPermit(ctx context.Context, actor auth.Actor, in InitializeInput, permit PermitInput) (uint64, error) {
	if err := u.applyPermit(ctx, in, permit); err != nil {
		return 0, err
	}
	return u.InitializeLoan(ctx, actor, in)
}

// InitializeLoanWithItemsPermit combines the permit and container paths.
func (u *Usecase) InitializeLoanWithItemsPermit(ctx context.Context, actor auth.Actor, in InitializeInput, predicates []Predicate, permit PermitInput) (uint64, error) {
	if err := u.applyPermit(ctx, in, permit); err != nil {
		return 0, err
	}
	return u.InitializeLoanWithItems(ctx, actor, in, predicates)
}

func (u *Usecase) applyPermit(ctx context.Context, in InitializeInput, permit PermitInput) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Assets.Permit(ctx, in.Borrower, u.custodyID, in.Terms.CollateralAsset,
			in.Terms.CollateralID, permit.Deadline, permit.Signature)
	})
}

// Approve grants or revokes a delegate's right to sign or call on the
// actor's behalf. Approving yourself is rejected.
func (u *Usecase) Approve(ctx context.Context, actor auth.Actor, delegate string, allowed bool) error {
	if delegate == "" {
		return loan.ErrEmptyRef
	}
	if delegate == actor.ID {
		return approval.ErrSelfApproval
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Approvals.Set(ctx, actor.ID, delegate, allowed)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.ApprovalChanged, map[string]any{
		"owner": actor.ID, "delegate": delegate, "allowed": allowed,
	})
	return nil
}

func (u *Usecase) IsApproved(ctx context.Context, owner, delegate string) (bool, error) {
	return u.reads.Approvals.IsApproved(ctx, owner, delegate)
}

// IsSelfOrApproved reports whether party may act for owner.
func (u *Usecase) IsSelfOrApproved(ctx context.Context, owner, party string) (bool, error) {
	if owner == party {
		return true, nil
	}
	return u.reads.Approvals.IsApproved(ctx, owner, party)
}

// SetVerifier whitelists or delists a single predicate verifier. Owner-gated.
func (u *Usecase) SetVerifier(ctx context.Context, actor auth.Actor, ref string, allowed bool) error {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if ref == "" {
		return loan.ErrEmptyRef
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Verifiers.SetAllowed(ctx, ref, allowed)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.VerifierAllowed, map[string]any{"ref": ref, "allowed": allowed})
	return nil
}

// SetVerifiersBatch updates the whitelist atomically; a length mismatch
// fails the whole batch.
func (u *Usecase) SetVerifiersBatch(ctx context.Context, actor auth.Actor, refs []string, flags []bool) error {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if len(refs) != len(flags) {
		return verifier.ErrBatchLength
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		for i, ref := range refs {
			if ref == "" {
				return loan.ErrEmptyRef
			}
			if err := r.Verifiers.SetAllowed(ctx, ref, flags[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i, ref := range refs {
		u.emit(ctx, event.VerifierAllowed, map[string]any{"ref": ref, "allowed": flags[i]})
	}
	return nil
}

func (u *Usecase) validateRefs(in InitializeInput) error {
	if in.Borrower == "" || in.Lender == "" || in.Terms.Currency == "" || in.Terms.CollateralAsset == "" {
		return loan.ErrEmptyRef
	}
	return nil
}

func (u *Usecase) checkMinPrincipal(ctx context.Context, principal uint64) error {
	s, err := u.reads.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if principal < s.MinPrincipal {
		return &settings.PrincipalTooLowError{Principal: principal, Min: s.MinPrincipal}
	}
	return nil
}

// checkConsent enforces the two-sided rule: the caller must be (or act for)
// one party, and the envelope must prove the other party signed. Returns the
// identity the nonce is consumed against.
func (u *Usecase) checkConsent(ctx context.Context, caller, borrower, lender string, digest []byte, env consent.Envelope) (string, error) {
	// a failed ed25519 verification leaves signer empty; the contract-based
	// check below is then the only remaining consent path
	signer, sigErr := env.Verify(digest)
	if sigErr != nil {
		signer = ""
	}
	if signer != "" && signer == caller {
		return "", ErrCallerIsSigner
	}

	onLenderSide, err := u.IsSelfOrApproved(ctx, lender, caller)
	if err != nil {
		return "", err
	}
	var counterparty string
	if onLenderSide {
		counterparty = borrower
	} else {
		onBorrowerSide, err := u.IsSelfOrApproved(ctx, borrower, caller)
		if err != nil {
			return "", err
		}
		if !onBorrowerSide {
			return "", ErrCallerNotParticipant
		}
		counterparty = lender
	}

	if signer == counterparty {
		return signer, nil
	}
	if signer != "" {
		delegated, err := u.reads.Approvals.IsApproved(ctx, counterparty, signer)
		if err != nil {
			return "", err
		}
		if delegated {
			return signer, nil
		}
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	accepted, err := u.sigCheck.IsValidSignature(ctx, counterparty, digest, raw)
	if err != nil {
		return "", err
	}
	if accepted {
		return counterparty, nil
	}
	return "", ErrSignerMismatch
}

func (u *Usecase) emit(ctx context.Context, kind event.Kind, fields map[string]any) {
	u.events.Publish(ctx, event.Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		At:     nowUTC(),
		Fields: fields,
	})
}
