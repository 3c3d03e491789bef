package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/services"
)

type TokenHandler struct {
	svc *services.TokenService
}

func NewTokenHandler(svc *services.TokenService) *TokenHandler {
	return &TokenHandler{svc: svc}
}

// Issue handles POST /v1/tokens. The caller receives a token id and its
// position in the waiting order, then polls Status until admitted.
func (h *TokenHandler) Issue(c echo.Context) error {
	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	resp, err := h.svc.Issue(c.Request().Context(), body.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}

	return c.JSON(http.StatusCreated, resp)
}

// Status handles GET /v1/tokens/:id.
func (h *TokenHandler) Status(c echo.Context) error {
	tokenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || tokenID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}

	resp, err := h.svc.Status(c.Request().Context(), tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "token not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read token status"})
	}

	return c.JSON(http.StatusOK, resp)
}

// Activate handles POST /v1/tokens/:id/activate. This is the operational
// entry point for whatever promotion policy decides a token's turn has come.
func (h *TokenHandler) Activate(c echo.Context) error {
	tokenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || tokenID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}

	expiry, err := h.svc.Activate(c.Request().Context(), tokenID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to activate token"})
	}

	return c.JSON(http.StatusOK, echo.Map{"token_id": tokenID, "expires_at": expiry})
}

// Abandon handles DELETE /v1/tokens/:id, letting a caller leave the queue and
// free their slot without completing a purchase.
func (h *TokenHandler) Abandon(c echo.Context) error {
	tokenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || tokenID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}

	if err := h.svc.Consume(c.Request().Context(), tokenID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove token"})
	}

	return c.NoContent(http.StatusNoContent)
}

// Extend handles POST /v1/tokens/:id/extend, sliding an active token's expiry.
func (h *TokenHandler) Extend(c echo.Context) error {
	tokenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || tokenID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}

	extended, err := h.svc.Extend(c.Request().Context(), tokenID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to extend token"})
	}
	if !extended {
		return c.JSON(http.StatusConflict, echo.Map{"error": "token is not active"})
	}

	return c.JSON(http.StatusOK, echo.Map{"extended": true})
}
