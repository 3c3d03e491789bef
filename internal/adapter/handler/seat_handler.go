package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

type SeatHandler struct {
	seats ports.SeatRepository
}

func NewSeatHandler(seats ports.SeatRepository) *SeatHandler {
	return &SeatHandler{seats: seats}
}

// Available handles GET /v1/concerts/:id/seats?date=YYYY-MM-DD.
func (h *SeatHandler) Available(c echo.Context) error {
	concertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || concertID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}

	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	ctx := c.Request().Context()

	seats, err := h.seats.AvailableSeats(ctx, concertID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list seats"})
	}

	type seatItem struct {
		SeatID     int64 `json:"seat_id"`
		SeatNumber int   `json:"seat_number"`
		Price      int64 `json:"price"`
	}

	items := make([]seatItem, 0, len(seats))
	for _, seat := range seats {
		items = append(items, seatItem{
			SeatID:     seat.ID,
			SeatNumber: seat.SeatNumber,
			Price:      seat.Price,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"concert_id": concertID,
		"date":       c.QueryParam("date"),
		"count":      len(items),
		"seats":      items,
	})
}

// CountAvailable handles GET /v1/concerts/:id/seats/count, a cheap probe for
// clients polling remaining inventory.
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	concertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || concertID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}

	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	count, err := h.seats.CountAvailable(c.Request().Context(), concertID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count seats"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"concert_id": concertID,
		"date":       c.QueryParam("date"),
		"count":      count,
	})
}
