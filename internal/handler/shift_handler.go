package handler

import (
	"errors"
	"time"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ShiftHandler struct {
	service service.ShiftService
}

func NewShiftHandler(s service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: s}
}

func (h *ShiftHandler) OpenShift(c *fiber.Ctx) error {
	var req struct {
		OpeningBalance int64 `json:"opening_balance"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shift, err := h.service.Open(getUserID(c), req.OpeningBalance)
	if err != nil {
		if errors.Is(err, service.ErrShiftAlreadyOpen) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Shift opened", "data": shift.ToResponse()})
}

func (h *ShiftHandler) CloseShift(c *fiber.Ctx) error {
	var req struct {
		ActualClosingCash int64 `json:"actual_closing_cash"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shift, recon, err := h.service.Close(getUserID(c), req.ActualClosingCash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveShift):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrHeldOrdersPending):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{
		"message":        "Shift closed",
		"data":           shift.ToResponse(),
		"reconciliation": recon,
	})
}

func (h *ShiftHandler) GetCurrentShift(c *fiber.Ctx) error {
	shift, err := h.service.Current(getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNoActiveShift) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(shift.ToResponse())
}

func (h *ShiftHandler) GetShifts(c *fiber.Ctx) error {
	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	shifts, err := h.service.GetShifts(startDate, endDate)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(shifts)
}

// parseDateRange reads optional start_date/end_date query params
// (YYYY-MM-DD), defaulting to the last 30 days.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	startDate := now.AddDate(0, 0, -30)
	endDate := now

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start_date, use YYYY-MM-DD")
		}
		startDate = parsed
	}
	if e := c.Query("end_date"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end_date, use YYYY-MM-DD")
		}
		endDate = parsed.AddDate(0, 0, 1)
	}
	return startDate, endDate, nil
}
