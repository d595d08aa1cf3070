package http

import (
	"net/http"

	"loanvault-backend/internal/adapter/middleware"
	"loanvault-backend/internal/usecase/admission"
	"loanvault-backend/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
)

// AdminHandler exposes the operator surface: verifier whitelist, fee knobs
// and the emergency pause. Role checks live in the usecases; handlers only
// shape the HTTP conversation.
type AdminHandler struct {
	adm *admission.Usecase
	led *ledger.Usecase
}

func NewAdminHandler(adm *admission.Usecase, led *ledger.Usecase) *AdminHandler {
	return &AdminHandler{adm: adm, led: led}
}

type setVerifierReq struct {
	Ref     string `json:"ref" validate:"required,hex32"`
	Allowed bool   `json:"allowed"`
}

func (h *AdminHandler) SetVerifier(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setVerifierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "validation failed", Details: ToFieldErrors(err),
		})
	}
	if err := h.adm.SetVerifier(c.Request().Context(), actor, req.Ref, req.Allowed); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ref": req.Ref, "allowed": req.Allowed})
}

type setVerifiersBatchReq struct {
	Refs  []string `json:"refs"  validate:"required,dive,hex32"`
	Flags []bool   `json:"flags" validate:"required"`
}

func (h *AdminHandler) SetVerifiersBatch(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setVerifiersBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "validation failed", Details: ToFieldErrors(err),
		})
	}
	if err := h.adm.SetVerifiersBatch(c.Request().Context(), actor, req.Refs, req.Flags); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"updated": len(req.Refs)})
}

type setFeeRateReq struct {
	FeeRateBps uint64 `json:"fee_rate_bps"`
}

func (h *AdminHandler) SetFeeRate(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setFeeRateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.led.SetFeeRate(c.Request().Context(), actor, req.FeeRateBps); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fee_rate_bps": req.FeeRateBps})
}

type setFeeControllerReq struct {
	Ref string `json:"ref" validate:"required,hex32"`
}

func (h *AdminHandler) SetFeeController(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setFeeControllerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "validation failed", Details: ToFieldErrors(err),
		})
	}
	if err := h.led.SetFeeController(c.Request().Context(), actor, req.Ref); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fee_controller": req.Ref})
}

type claimFeesReq struct {
	Currency string `json:"currency" validate:"required,hex32"`
}

func (h *AdminHandler) ClaimFees(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req claimFeesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "validation failed", Details: ToFieldErrors(err),
		})
	}
	amount, err := h.led.ClaimFees(c.Request().Context(), actor, req.Currency)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"to": actor.ID, "amount": amount})
}

type setPausedReq struct {
	Paused bool `json:"paused"`
}

func (h *AdminHandler) SetPaused(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setPausedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.led.SetPaused(c.Request().Context(), actor, req.Paused); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"paused": req.Paused})
}
