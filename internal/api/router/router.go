package router

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	handler "github.com/zdziszkee/product-rates/internal/api/handlers"
	"github.com/zdziszkee/product-rates/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(rateHandler *handler.RateHandler, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"message": message,
			})
		},
	})

	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New())

	// API versioning
	v1 := app.Group("/v1")

	v1.Get("/depositRates", rateHandler.ListDepositRates)
	v1.Post("/depositRates", rateHandler.CreateDepositRate)
	v1.Get("/depositRates/:depositRateId", rateHandler.GetDepositRate)
	v1.Put("/depositRates/:depositRateId", rateHandler.UpdateDepositRate)
	v1.Delete("/depositRates/:depositRateId", rateHandler.DeleteDepositRate)

	v1.Get("/depositRates/:depositRateId/tiers", rateHandler.ListRateTiers)
	v1.Post("/depositRates/:depositRateId/tiers", rateHandler.AddRateTier)
	v1.Get("/depositRates/:depositRateId/tiers/resolve", rateHandler.ResolveTier)

	v1.Get("/rateTiers/:rateTierId", rateHandler.GetRateTier)
	v1.Put("/rateTiers/:rateTierId", rateHandler.UpdateRateTier)
	v1.Delete("/rateTiers/:rateTierId", rateHandler.DeleteRateTier)
	return app
}
