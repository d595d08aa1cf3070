package http

import (
	"errors"
	"net/http"

	"loanvault-backend/internal/domain/approval"
	"loanvault-backend/internal/domain/collab"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/nonce"
	"loanvault-backend/internal/domain/receipt"
	"loanvault-backend/internal/domain/settings"
	"loanvault-backend/internal/domain/verifier"
	"loanvault-backend/internal/usecase/admission"
	"loanvault-backend/pkg/auth"
	"loanvault-backend/pkg/consent"

	"github.com/labstack/echo/v4"
)

// statusFor maps the domain fault taxonomy onto HTTP codes. Anything outside
// the taxonomy is a 500.
func statusFor(err error) int {
	var (
		stateErr     *loan.StateError
		lockedErr    *loan.CollateralLockedError
		tooEarlyErr  *loan.ClaimTooEarlyError
		rateErr      *loan.InvalidRateError
		usedErr      *nonce.UsedError
		lowErr       *settings.PrincipalTooLowError
		unknownErr   *verifier.UnknownError
		predicateErr *admission.PredicateError
	)
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, receipt.ErrNotFound),
		errors.Is(err, approval.ErrNotFound),
		errors.Is(err, collab.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrPaused):
		return http.StatusLocked
	case errors.As(err, &usedErr),
		errors.As(err, &stateErr),
		errors.As(err, &lockedErr),
		errors.As(err, &tooEarlyErr):
		return http.StatusConflict
	case errors.Is(err, receipt.ErrNotOwner),
		errors.Is(err, collab.ErrNotAssetOwner),
		errors.Is(err, collab.ErrPermitRejected),
		errors.Is(err, admission.ErrCallerNotParticipant),
		errors.Is(err, admission.ErrSignerMismatch):
		return http.StatusForbidden
	case errors.Is(err, collab.ErrInsufficientBalance),
		errors.Is(err, collab.ErrInsufficientAllowance),
		errors.As(err, &lowErr),
		errors.As(err, &rateErr),
		errors.As(err, &unknownErr),
		errors.As(err, &predicateErr),
		errors.Is(err, loan.ErrZeroInterest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrEmptyRef),
		errors.Is(err, receipt.ErrBadSide),
		errors.Is(err, receipt.ErrEmptyDest),
		errors.Is(err, approval.ErrSelfApproval),
		errors.Is(err, verifier.ErrBatchLength),
		errors.Is(err, admission.ErrCallerIsSigner),
		errors.Is(err, consent.ErrBadEnvelope),
		errors.Is(err, consent.ErrBadSignature):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
