package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	models "github.com/zdziszkee/product-rates/internal/models"
	service "github.com/zdziszkee/product-rates/internal/services"
)

// RateHandler handles API requests for deposit rates and rate tiers
type RateHandler struct {
	service service.RateService
	logger  *zap.Logger
}

// NewRateHandler creates a new handler instance
func NewRateHandler(service service.RateService, logger *zap.Logger) *RateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateHandler{service: service, logger: logger}
}

// ListDepositRates handles GET /depositRates with an optional ?type= filter
func (h *RateHandler) ListDepositRates(c fiber.Ctx) error {
	rates, err := h.service.ListDepositRates(c.Context(), c.Query("type"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rates)
}

func (h *RateHandler) GetDepositRate(c fiber.Ctx) error {
	rate, err := h.service.GetDepositRate(c.Context(), c.Params("depositRateId"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rate)
}

func (h *RateHandler) CreateDepositRate(c fiber.Ctx) error {
	var rate models.DepositRate
	if err := c.Bind().Body(&rate); err != nil {
		return invalidBody(c)
	}

	if err := h.service.CreateDepositRate(c.Context(), &rate); err != nil {
		return h.handleError(c, err)
	}

	h.logger.Info("deposit rate created", zap.String("depositRateId", rate.ID))
	return c.Status(fiber.StatusCreated).JSON(rate)
}

// UpdateDepositRate replaces the scalar fields of a rate and returns the
// stored result
func (h *RateHandler) UpdateDepositRate(c fiber.Ctx) error {
	var rate models.DepositRate
	if err := c.Bind().Body(&rate); err != nil {
		return invalidBody(c)
	}

	id := c.Params("depositRateId")
	if rate.ID != "" && rate.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "depositRateId in the body does not match the path",
		})
	}
	rate.ID = id

	if err := h.service.UpdateDepositRate(c.Context(), &rate); err != nil {
		return h.handleError(c, err)
	}

	updated, err := h.service.GetDepositRate(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *RateHandler) DeleteDepositRate(c fiber.Ctx) error {
	if err := h.service.DeleteDepositRate(c.Context(), c.Params("depositRateId")); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Deposit rate deleted successfully",
	})
}

func (h *RateHandler) ListRateTiers(c fiber.Ctx) error {
	tiers, err := h.service.ListRateTiers(c.Context(), c.Params("depositRateId"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tiers)
}

func (h *RateHandler) AddRateTier(c fiber.Ctx) error {
	var tier models.RateTier
	if err := c.Bind().Body(&tier); err != nil {
		return invalidBody(c)
	}

	if err := h.service.AddRateTier(c.Context(), c.Params("depositRateId"), &tier); err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tier)
}

// ResolveTier handles GET /depositRates/:depositRateId/tiers/resolve?value=
func (h *RateHandler) ResolveTier(c fiber.Ctx) error {
	value, err := decimal.NewFromString(c.Query("value"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "value must be a decimal number",
		})
	}

	tier, err := h.service.ResolveTier(c.Context(), c.Params("depositRateId"), value)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tier)
}

func (h *RateHandler) GetRateTier(c fiber.Ctx) error {
	tier, err := h.service.GetRateTier(c.Context(), c.Params("rateTierId"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tier)
}

func (h *RateHandler) UpdateRateTier(c fiber.Ctx) error {
	var tier models.RateTier
	if err := c.Bind().Body(&tier); err != nil {
		return invalidBody(c)
	}

	id := c.Params("rateTierId")
	if tier.ID != "" && tier.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "rateTierId in the body does not match the path",
		})
	}
	tier.ID = id

	if err := h.service.UpdateRateTier(c.Context(), &tier); err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tier)
}

func (h *RateHandler) DeleteRateTier(c fiber.Ctx) error {
	if err := h.service.DeleteRateTier(c.Context(), c.Params("rateTierId")); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Rate tier deleted successfully",
	})
}

func invalidBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}

func (h *RateHandler) handleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrInvalidInput):
		body := fiber.Map{"message": "Invalid input provided"}
		var v *models.ValidationError
		if errors.As(err, &v) {
			body["fields"] = v.Fields
		} else {
			body["message"] = err.Error()
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrConstraintViolation):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
