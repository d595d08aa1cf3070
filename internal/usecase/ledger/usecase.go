package ledger

import (
	"context"
	"time"

	"loanvault-backend/internal/domain/event"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/lock"
	"loanvault-backend/internal/domain/receipt"
	"loanvault-backend/internal/domain/uow"
	"loanvault-backend/pkg/auth"

	"github.com/google/uuid"
)

// claimScale is the fixed-point factor for the default-threshold arithmetic.
// The division order below is load-bearing: truncation must happen exactly
// where it does, downstream consumers assert on it.
const (
	claimScale         uint64 = 1000
	defaultThresholdPc uint64 = 40
)

// Usecase is the loan ledger: it owns loan records, escrow custody, the
// collateral lock table and the nonce registry, and is the only component
// that mutates them. Every entrypoint checks the injected actor's role, runs
// inside one transaction, and applies its own bookkeeping before any value
// or collateral movement.
type Usecase struct {
	uow       uow.UnitOfWork
	reads     uow.Repos
	custodyID string
	events    event.Publisher
	now       func() time.Time
}

func NewUsecase(u uow.UnitOfWork, reads uow.Repos, custodyID string, events event.Publisher) *Usecase {
	if events == nil {
		events = event.Noop{}
	}
	return &Usecase{uow: u, reads: reads, custodyID: custodyID, events: events, now: time.Now}
}

// WithClock overrides the ledger clock. Test hook.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

func (u *Usecase) emit(ctx context.Context, kind event.Kind, fields map[string]any) {
	u.events.Publish(ctx, event.Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		At:     u.now().UTC(),
		Fields: fields,
	})
}

// Open originates a loan: consumes the signer's nonce, writes the record,
// sets the collateral lock, mints both receipts, then moves collateral and
// principal through custody. Restricted to the admission controller role.
func (u *Usecase) Open(ctx context.Context, actor auth.Actor, in OpenInput) (uint64, error) {
	if err := auth.Require(actor, auth.RoleOriginator); err != nil {
		return 0, err
	}
	if in.Lender == "" || in.Borrower == "" || in.Terms.Currency == "" || in.Terms.CollateralAsset == "" {
		return 0, loan.ErrEmptyRef
	}

	var loanID uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		if s.Paused {
			return loan.ErrPaused
		}

		if err := r.Nonces.Consume(ctx, in.NonceUser, in.Nonce); err != nil {
			return err
		}

		key := lock.Key(in.Terms.CollateralAsset, in.Terms.CollateralID)
		locked, err := r.Locks.IsLocked(ctx, key)
		if err != nil {
			return err
		}
		if locked {
			return &loan.CollateralLockedError{Asset: in.Terms.CollateralAsset, ItemID: in.Terms.CollateralID}
		}

		l := &loan.Loan{
			Terms:     in.Terms,
			Borrower:  in.Borrower,
			Lender:    in.Lender,
			State:     loan.StateActive,
			StartDate: u.now().UTC(),
			Balance:   in.Terms.Principal,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		loanID = l.ID

		if err := r.Locks.Set(ctx, key, l.ID); err != nil {
			return err
		}
		if err := r.Receipts.MintPair(ctx, l.ID, in.Borrower, in.Lender); err != nil {
			return err
		}

		// fee rate is read here, at open time, never cached
		fee := in.Terms.Principal * s.FeeRateBps / loan.BasisPointsDenominator
		s.AccruedFees += fee
		if err := r.Settings.Save(ctx, s); err != nil {
			return err
		}

		// bookkeeping is done; external movement only from here on
		if err := r.Assets.TransferFrom(ctx, u.custodyID, in.Borrower, u.custodyID, in.Terms.CollateralAsset, in.Terms.CollateralID); err != nil {
			return err
		}
		if err := r.Values.TransferFrom(ctx, in.Terms.Currency, u.custodyID, in.Lender, u.custodyID, in.Terms.Principal); err != nil {
			return err
		}
		return r.Values.Transfer(ctx, in.Terms.Currency, u.custodyID, in.Borrower, in.Terms.Principal-fee)
	})
	if err != nil {
		return 0, err
	}

	u.emit(ctx, event.NonceUsed, map[string]any{"user": in.NonceUser, "nonce": in.Nonce})
	u.emit(ctx, event.LoanStarted, map[string]any{
		"loan_id": loanID, "lender": in.Lender, "borrower": in.Borrower,
	})
	return loanID, nil
}

// Repay settles a legacy (non-installment) loan in one lump sum of principal
// plus full-term interest, pulled from the caller. Restricted to the
// repayment role; available even while paused so borrowers are never trapped.
func (u *Usecase) Repay(ctx context.Context, actor auth.Actor, loanID uint64) error {
	if err := auth.Require(actor, auth.RoleRepayer); err != nil {
		return err
	}

	var lender, borrower string
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.State != loan.StateActive {
			return &loan.StateError{LoanID: l.ID, State: l.State, Want: loan.StateActive}
		}
		if l.RateBps < loan.MinRateBps || l.RateBps > loan.MaxRateBps {
			return &loan.InvalidRateError{RateBps: l.RateBps}
		}
		due := l.FullAmountDue()
		if due == 0 {
			return loan.ErrZeroInterest
		}

		if err := r.Values.TransferFrom(ctx, l.Currency, u.custodyID, actor.ID, u.custodyID, due); err != nil {
			return err
		}

		var err error
		if lender, err = r.Receipts.Owner(ctx, l.ID, receipt.SideLender); err != nil {
			return err
		}
		if borrower, err = r.Receipts.Owner(ctx, l.ID, receipt.SideBorrower); err != nil {
			return err
		}

		l.State = loan.StateRepaid
		l.BalancePaid += due
		l.Balance = 0
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Locks.Clear(ctx, lock.Key(l.CollateralAsset, l.CollateralID)); err != nil {
			return err
		}
		if err := r.Receipts.BurnPair(ctx, l.ID); err != nil {
			return err
		}

		if err := r.Values.Transfer(ctx, l.Currency, u.custodyID, lender, due); err != nil {
			return err
		}
		return r.Assets.TransferFrom(ctx, u.custodyID, u.custodyID, borrower, l.CollateralAsset, l.CollateralID)
	})
	if err != nil {
		return err
	}

	u.emit(ctx, event.LoanRepaid, map[string]any{"loan_id": loanID, "lender": lender, "borrower": borrower})
	return nil
}

// RepayPart applies one installment payment. The principal component is
// capped at the remaining balance; any excess is refunded to the borrower if
// the payment closes the loan. The installment-received event intentionally
// reports the raw, uncapped principal figure for off-ledger audit.
func (u *Usecase) RepayPart(ctx context.Context, actor auth.Actor, in RepayPartInput) (*RepayPartResult, error) {
	if err := auth.Require(actor, auth.RoleRepayer); err != nil {
		return nil, err
	}

	var (
		out    RepayPartResult
		closed bool
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.State != loan.StateActive {
			return &loan.StateError{LoanID: l.ID, State: l.State, Want: loan.StateActive}
		}

		total := in.PaymentToPrincipal + in.PaymentToInterest + in.PaymentToLateFees
		if err := r.Values.TransferFrom(ctx, l.Currency, u.custodyID, actor.ID, u.custodyID, total); err != nil {
			return err
		}

		lender, err := r.Receipts.Owner(ctx, l.ID, receipt.SideLender)
		if err != nil {
			return err
		}
		borrower, err := r.Receipts.Owner(ctx, l.ID, receipt.SideBorrower)
		if err != nil {
			return err
		}

		principalApplied := in.PaymentToPrincipal
		if principalApplied > l.Balance {
			principalApplied = l.Balance
		}
		overpayment := in.PaymentToPrincipal - principalApplied
		bounded := principalApplied + in.PaymentToInterest + in.PaymentToLateFees

		l.LateFeesAccrued += in.PaymentToLateFees
		l.NumInstallmentsPaid += in.MissedPayments + 1
		l.Balance -= principalApplied
		l.BalancePaid += bounded

		closed = l.Balance == 0
		if closed {
			l.State = loan.StateRepaid
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		if closed {
			if err := r.Locks.Clear(ctx, lock.Key(l.CollateralAsset, l.CollateralID)); err != nil {
				return err
			}
			if err := r.Receipts.BurnPair(ctx, l.ID); err != nil {
				return err
			}
		}

		if err := r.Values.Transfer(ctx, l.Currency, u.custodyID, lender, bounded); err != nil {
			return err
		}
		if closed {
			if err := r.Assets.TransferFrom(ctx, u.custodyID, u.custodyID, borrower, l.CollateralAsset, l.CollateralID); err != nil {
				return err
			}
			if overpayment > 0 {
				if err := r.Values.Transfer(ctx, l.Currency, u.custodyID, borrower, overpayment); err != nil {
					return err
				}
			}
		}

		out = RepayPartResult{
			LoanID:            l.ID,
			State:             l.State,
			PrincipalApplied:  principalApplied,
			OverpaymentRefund: overpayment,
			Balance:           l.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if closed {
		u.emit(ctx, event.LoanRepaid, map[string]any{"loan_id": in.LoanID})
	} else {
		u.emit(ctx, event.InstallmentReceived, map[string]any{
			"loan_id":              in.LoanID,
			"payment_to_principal": in.PaymentToPrincipal,
			"balance":              out.Balance,
		})
	}
	return &out, nil
}

// Claim marks a qualified loan defaulted and moves the collateral to the
// current lender-receipt holder. No principal ever moves on this path.
func (u *Usecase) Claim(ctx context.Context, actor auth.Actor, loanID uint64, currentPeriod uint32) error {
	if err := auth.Require(actor, auth.RoleRepayer); err != nil {
		return err
	}

	var lender string
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		s, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		if s.Paused {
			return loan.ErrPaused
		}
		if l.State != loan.StateActive {
			return &loan.StateError{LoanID: l.ID, State: l.State, Want: loan.StateActive}
		}

		if l.Legacy() {
			if !u.now().UTC().After(l.DueDate()) {
				return &loan.ClaimTooEarlyError{LoanID: l.ID, Reason: "loan has not reached its due date"}
			}
		} else if err := u.verifyDefault(l); err != nil {
			return err
		}

		if lender, err = r.Receipts.Owner(ctx, l.ID, receipt.SideLender); err != nil {
			return err
		}

		l.State = loan.StateDefaulted
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Locks.Clear(ctx, lock.Key(l.CollateralAsset, l.CollateralID)); err != nil {
			return err
		}
		if err := r.Receipts.BurnPair(ctx, l.ID); err != nil {
			return err
		}

		return r.Assets.TransferFrom(ctx, u.custodyID, u.custodyID, lender, l.CollateralAsset, l.CollateralID)
	})
	if err != nil {
		return err
	}

	u.emit(ctx, event.LoanClaimed, map[string]any{
		"loan_id": loanID, "lender": lender, "period": currentPeriod,
	})
	return nil
}

// verifyDefault holds when the borrower is behind by more than 40% of the
// installment schedule AND enough wall-clock time for that many installments
// has actually elapsed. Either condition failing aborts the claim.
func (u *Usecase) verifyDefault(l *loan.Loan) error {
	missedScaled := uint64(l.NumInstallments) * claimScale * defaultThresholdPc / 100

	if uint64(l.NumInstallmentsPaid)*claimScale >= missedScaled {
		return &loan.ClaimTooEarlyError{LoanID: l.ID, Reason: "installments paid are above the default threshold"}
	}

	now := u.now().UTC()
	var elapsed uint64
	if now.After(l.StartDate) {
		elapsed = uint64(now.Unix() - l.StartDate.Unix())
	}
	if elapsed*claimScale <= missedScaled*l.DurationSecs/uint64(l.NumInstallments) {
		return &loan.ClaimTooEarlyError{LoanID: l.ID, Reason: "default time window has not elapsed"}
	}
	return nil
}

// ConsumeNonce marks a (user, nonce) pair used. Restricted to the admission
// controller role; Open also consumes in-transaction for origination.
func (u *Usecase) ConsumeNonce(ctx context.Context, actor auth.Actor, user string, n uint64) error {
	if err := auth.Require(actor, auth.RoleOriginator); err != nil {
		return err
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		if s.Paused {
			return loan.ErrPaused
		}
		return r.Nonces.Consume(ctx, user, n)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.NonceUsed, map[string]any{"user": user, "nonce": n})
	return nil
}

// CancelNonce lets a user burn their own nonce, invalidating any signature
// that references it. Deliberately not blocked by pause.
func (u *Usecase) CancelNonce(ctx context.Context, actor auth.Actor, n uint64) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Nonces.Consume(ctx, actor.ID, n)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.NonceUsed, map[string]any{"user": actor.ID, "nonce": n})
	return nil
}

// TransferReceipt reassigns one side's receipt to a new holder. Only the
// current holder may transfer it.
func (u *Usecase) TransferReceipt(ctx context.Context, actor auth.Actor, loanID uint64, side receipt.Side, to string) error {
	if !side.Valid() {
		return receipt.ErrBadSide
	}
	if to == "" {
		return receipt.ErrEmptyDest
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		owner, err := r.Receipts.Owner(ctx, loanID, side)
		if err != nil {
			return err
		}
		if owner != actor.ID {
			return receipt.ErrNotOwner
		}
		return r.Receipts.Transfer(ctx, loanID, side, to)
	})
}

// ClaimFees sweeps accrued origination fees to the caller.
func (u *Usecase) ClaimFees(ctx context.Context, actor auth.Actor, currency string) (uint64, error) {
	if err := auth.Require(actor, auth.RoleFeeClaimer); err != nil {
		return 0, err
	}
	var amount uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		amount = s.AccruedFees
		s.AccruedFees = 0
		if err := r.Settings.Save(ctx, s); err != nil {
			return err
		}
		if amount == 0 {
			return nil
		}
		return r.Values.Transfer(ctx, currency, u.custodyID, actor.ID, amount)
	})
	if err != nil {
		return 0, err
	}
	u.emit(ctx, event.FeesClaimed, map[string]any{"to": actor.ID, "amount": amount})
	return amount, nil
}

// SetFeeRate updates the origination fee rate; takes effect on the next open.
func (u *Usecase) SetFeeRate(ctx context.Context, actor auth.Actor, bps uint64) error {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return err
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		s.FeeRateBps = bps
		return r.Settings.Save(ctx, s)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.FeeRateChanged, map[string]any{"fee_rate_bps": bps})
	return nil
}

// SetFeeController records the fee-oracle reference.
func (u *Usecase) SetFeeController(ctx context.Context, actor auth.Actor, ref string) error {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if ref == "" {
		return loan.ErrEmptyRef
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		s.FeeController = ref
		return r.Settings.Save(ctx, s)
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.FeeControllerChanged, map[string]any{"fee_controller": ref})
	return nil
}

// SetPaused flips the emergency pause. Pausing blocks Open, ConsumeNonce and
// Claim; Repay and RepayPart stay available throughout.
func (u *Usecase) SetPaused(ctx context.Context, actor auth.Actor, paused bool) error {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return err
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		s.Paused = paused
		return r.Settings.Save(ctx, s)
	})
}

// GetLoan returns the ledger record; terminal records stay queryable.
func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*loan.Loan, error) {
	return u.reads.Loans.GetByID(ctx, loanID)
}

// IsNonceUsed reports whether a (user, nonce) pair has been consumed.
func (u *Usecase) IsNonceUsed(ctx context.Context, user string, n uint64) (bool, error) {
	return u.reads.Nonces.IsUsed(ctx, user, n)
}

// ReceiptOwner returns the current holder of one side's receipt.
func (u *Usecase) ReceiptOwner(ctx context.Context, loanID uint64, side receipt.Side) (string, error) {
	return u.reads.Receipts.Owner(ctx, loanID, side)
}
