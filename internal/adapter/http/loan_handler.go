package http

import (
	"net/http"
	"strconv"
	"time"

	"loanvault-backend/internal/adapter/middleware"
	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/internal/domain/receipt"
	"loanvault-backend/internal/usecase/admission"
	"loanvault-backend/internal/usecase/ledger"
	"loanvault-backend/pkg/consent"
	"loanvault-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	adm *admission.Usecase
	led *ledger.Usecase
}

func NewLoanHandler(adm *admission.Usecase, led *ledger.Usecase) *LoanHandler {
	return &LoanHandler{adm: adm, led: led}
}

type termsReq struct {
	DurationSecs    uint64 `json:"duration_secs"    validate:"required"`
	NumInstallments uint32 `json:"num_installments"`
	RateBps         uint64 `json:"rate_bps"         validate:"required"`
	Principal       uint64 `json:"principal"        validate:"required"`
	CollateralAsset string `json:"collateral_asset" validate:"required,hex32"`
	CollateralID    uint64 `json:"collateral_id"`
	Currency        string `json:"currency"         validate:"required,hex32"`
}

func (r termsReq) toTerms() loan.Terms {
	return loan.Terms{
		DurationSecs:    r.DurationSecs,
		NumInstallments: r.NumInstallments,
		RateBps:         r.RateBps,
		Principal:       r.Principal,
		CollateralAsset: r.CollateralAsset,
		CollateralID:    r.CollateralID,
		Currency:        r.Currency,
	}
}

type initializeLoanReq struct {
	Terms    termsReq         `json:"terms"    validate:"required"`
	Borrower string           `json:"borrower" validate:"required,hex32"`
	Lender   string           `json:"lender"   validate:"required,hex32"`
	Envelope consent.Envelope `json:"envelope" validate:"required"`
	Nonce    uint64           `json:"nonce"    validate:"required"`

	// optional extensions of the plain path
	Predicates []admission.Predicate `json:"predicates,omitempty" validate:"omitempty,dive"`
	Permit     *permitReq            `json:"permit,omitempty"`
}

type permitReq struct {
	Deadline  time.Time `json:"deadline"  validate:"required"`
	Signature []byte    `json:"signature" validate:"required"`
}

func (h *LoanHandler) bindInitialize(c echo.Context) (*initializeLoanReq, admission.InitializeInput, error) {
	var req initializeLoanReq
	if err := c.Bind(&req); err != nil {
		return nil, admission.InitializeInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return nil, admission.InitializeInput{}, err
	}
	in := admission.InitializeInput{
		Terms:    req.Terms.toTerms(),
		Borrower: req.Borrower,
		Lender:   req.Lender,
		Envelope: req.Envelope,
		Nonce:    req.Nonce,
	}
	return &req, in, nil
}

func (h *LoanHandler) respondValidation(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, ErrorResponse{Error: he.Message.(string)})
	}
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

// InitializeLoan admits a plain two-party loan.
func (h *LoanHandler) InitializeLoan(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	req, in, err := h.bindInitialize(c)
	if err != nil {
		return h.respondValidation(c, err)
	}

	var loanID uint64
	switch {
	case req.Permit != nil && len(req.Predicates) > 0:
		loanID, err = h.adm.InitializeLoanWithItemsPermit(c.Request().Context(), actor, in, req.Predicates,
			admission.PermitInput{Deadline: req.Permit.Deadline, Signature: req.Permit.Signature})
	case req.Permit != nil:
		loanID, err = h.adm.InitializeLoanWithPermit(c.Request().Context(), actor, in,
			admission.PermitInput{Deadline: req.Permit.Deadline, Signature: req.Permit.Signature})
	case len(req.Predicates) > 0:
		loanID, err = h.adm.InitializeLoanWithItems(c.Request().Context(), actor, in, req.Predicates)
	default:
		loanID, err = h.adm.InitializeLoan(c.Request().Context(), actor, in)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"loan_id": loanID})
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	l, err := h.led.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Repay settles a legacy loan in full.
func (h *LoanHandler) Repay(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	if err := h.led.Repay(c.Request().Context(), actor, loanID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "state": loan.StateRepaid})
}

type repayPartReq struct {
	MissedPayments     uint32 `json:"missed_payments"`
	PaymentToPrincipal uint64 `json:"payment_to_principal"`
	PaymentToInterest  uint64 `json:"payment_to_interest"`
	PaymentToLateFees  uint64 `json:"payment_to_late_fees"`
}

// RepayPart applies one installment payment.
func (h *LoanHandler) RepayPart(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	var req repayPartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.led.RepayPart(c.Request().Context(), actor, ledger.RepayPartInput{
		LoanID:             loanID,
		MissedPayments:     req.MissedPayments,
		PaymentToPrincipal: req.PaymentToPrincipal,
		PaymentToInterest:  req.PaymentToInterest,
		PaymentToLateFees:  req.PaymentToLateFees,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type claimReq struct {
	CurrentPeriod uint32 `json:"current_period"`
}

// Claim marks a qualified loan defaulted.
func (h *LoanHandler) Claim(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.led.Claim(c.Request().Context(), actor, loanID, req.CurrentPeriod); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "state": loan.StateDefaulted})
}

type transferReceiptReq struct {
	Side string `json:"side" validate:"required,side"`
	To   string `json:"to"   validate:"required,hex32"`
}

// TransferReceipt reassigns one side's receipt to a new holder.
func (h *LoanHandler) TransferReceipt(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	var req transferReceiptReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.respondValidation(c, err)
	}
	if err := h.led.TransferReceipt(c.Request().Context(), actor, loanID, receipt.Side(req.Side), req.To); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "side": req.Side, "owner": req.To})
}

// ReceiptOwner returns the current holder of one side's receipt.
func (h *LoanHandler) ReceiptOwner(c echo.Context) error {
	loanID, err := parseID(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	side := receipt.Side(c.Param("side"))
	if !side.Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: receipt.ErrBadSide.Error()})
	}
	owner, err := h.led.ReceiptOwner(c.Request().Context(), loanID, side)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "side": side, "owner": owner})
}

type cancelNonceReq struct {
	Nonce uint64 `json:"nonce" validate:"required"`
}

// CancelNonce burns one of the caller's own nonces.
func (h *LoanHandler) CancelNonce(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req cancelNonceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.respondValidation(c, err)
	}
	if err := h.led.CancelNonce(c.Request().Context(), actor, req.Nonce); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": actor.ID, "nonce": req.Nonce, "used": true})
}

// IsNonceUsed reports whether a (user, nonce) pair has been consumed.
func (h *LoanHandler) IsNonceUsed(c echo.Context) error {
	user := c.Param("user")
	if !id.IsID32(user) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user"})
	}
	n, err := parseID(c.Param("nonce"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid nonce"})
	}
	used, err := h.led.IsNonceUsed(c.Request().Context(), user, n)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user, "nonce": n, "used": used})
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}
