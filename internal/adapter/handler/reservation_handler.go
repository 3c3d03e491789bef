package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/services"
)

const queueTokenHeader = "X-Queue-Token"

type ReservationHandler struct {
	svc    *services.ReservationService
	tokens *services.TokenService
}

func NewReservationHandler(svc *services.ReservationService, tokens *services.TokenService) *ReservationHandler {
	return &ReservationHandler{svc: svc, tokens: tokens}
}

// Reserve handles POST /v1/reservations. Only callers holding a live
// admission token get through.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	if ok, err := h.gate(c); !ok {
		return err
	}

	var req services.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	resp, err := h.svc.Reserve(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

// Pay handles POST /v1/reservations/:id/pay.
func (h *ReservationHandler) Pay(c echo.Context) error {
	if ok, err := h.gate(c); !ok {
		return err
	}

	var req services.PayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.ReservationID = c.Param("id")

	resp, err := h.svc.Pay(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// gate reports whether the caller holds a live admission token. When it
// returns false the response has already been written.
func (h *ReservationHandler) gate(c echo.Context) (bool, error) {
	tokenID, err := strconv.ParseInt(c.Request().Header.Get(queueTokenHeader), 10, 64)
	if err != nil || tokenID <= 0 {
		return false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "queue token required"})
	}

	if err := h.tokens.Validate(c.Request().Context(), tokenID); err != nil {
		if errors.Is(err, domain.ErrTokenNotActive) {
			return false, c.JSON(http.StatusForbidden, echo.Map{"error": "queue token is not active"})
		}
		return false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate queue token"})
	}

	// Slide the admission window while the holder is actively using it.
	_, _ = h.tokens.Extend(c.Request().Context(), tokenID)

	return true, nil
}

func (h *ReservationHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSeatBusy), errors.Is(err, domain.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrReservationExpired),
		errors.Is(err, domain.ErrReservationNotPayable),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case strings.Contains(err.Error(), "invalid"):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
