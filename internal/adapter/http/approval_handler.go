package http

import (
	"net/http"

	"loanvault-backend/internal/adapter/middleware"
	"loanvault-backend/internal/usecase/admission"
	"loanvault-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ adm *admission.Usecase }

func NewApprovalHandler(adm *admission.Usecase) *ApprovalHandler {
	return &ApprovalHandler{adm: adm}
}

type setApprovalReq struct {
	Delegate string `json:"delegate" validate:"required,hex32"`
	Allowed  bool   `json:"allowed"`
}

// SetApproval grants or revokes a delegate's right to act for the caller.
func (h *ApprovalHandler) SetApproval(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	var req setApprovalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.adm.Approve(c.Request().Context(), actor, req.Delegate, req.Allowed); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"owner": actor.ID, "delegate": req.Delegate, "allowed": req.Allowed,
	})
}

// GetApproval reports whether a delegate may act for an owner.
func (h *ApprovalHandler) GetApproval(c echo.Context) error {
	owner, delegate := c.Param("owner"), c.Param("delegate")
	if !id.IsID32(owner) || !id.IsID32(delegate) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner and delegate must be 32-char hex"})
	}
	allowed, err := h.adm.IsApproved(c.Request().Context(), owner, delegate)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"owner": owner, "delegate": delegate, "allowed": allowed,
	})
}
