package handler

import (
	"errors"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

func saleErrorStatus(err error) int {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrSaleNotFound), errors.Is(err, service.ErrCartNotFound):
		return 404
	case errors.Is(err, service.ErrCartNotOwned):
		return 403
	case errors.Is(err, service.ErrAlreadyVoided):
		return 409
	case errors.As(err, &insufficient),
		errors.Is(err, service.ErrNoActiveShift),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrWholesaleMinimumNotMet),
		errors.Is(err, service.ErrMissingVoidReason):
		return 400
	default:
		return 500
	}
}

func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.Create(&req, getUserID(c))
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

func (h *SaleHandler) HoldOrder(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	cart, err := h.service.Hold(&req, getUserID(c))
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order held", "data": cart})
}

func (h *SaleHandler) GetHeldOrders(c *fiber.Ctx) error {
	carts, err := h.service.HeldOrders(getUserID(c))
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(carts)
}

func (h *SaleHandler) CompleteHeldOrder(c *fiber.Ctx) error {
	cartID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart ID"})
	}

	var req service.CompleteHeldOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CompleteHeldOrder(cartID, &req, getUserID(c))
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

func (h *SaleHandler) VoidHeldOrder(c *fiber.Ctx) error {
	cartID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.VoidHeldOrder(cartID, req.Reason, getUserID(c)); err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Held order voided"})
}

func (h *SaleHandler) VoidSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.Void(saleID, req.Reason, getUserID(c))
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Sale voided", "data": sale})
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	sales, err := h.service.GetSales(startDate, endDate)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSale(saleID)
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sale)
}
