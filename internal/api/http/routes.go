package httpapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-summary/internal/logger"
	"github.com/i474232898/weather-summary/internal/weather"
	"github.com/i474232898/weather-summary/internal/worker"
)

const (
	msgMissingCity = "Required request parameter 'city' is missing"
	msgUnexpected  = "An unexpected error occurred. Please try again later."
)

// SummaryService is the part of weather.Service the routes depend on.
type SummaryService interface {
	GetSummary(ctx context.Context, city string) (weather.Summary, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service SummaryService, pool *worker.Pool) {
	app.Get("/weather", func(c *fiber.Ctx) error {
		if !c.Context().QueryArgs().Has("city") {
			return fiber.NewError(fiber.StatusBadRequest, msgMissingCity)
		}
		// Fiber reuses request buffers; the city outlives the handler as a cache key.
		city := utils.CopyString(c.Query("city"))
		ctx := c.UserContext()

		summary, err := worker.Submit(ctx, pool, func() (weather.Summary, error) {
			return service.GetSummary(ctx, city)
		})
		if err != nil {
			return err
		}

		return c.JSON(summary)
	})
}

// ErrorHandler is the Fiber error handler mapping failures to status codes
// and {"error": message} bodies.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := classify(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				slog.String("path", c.Path()),
				slog.Int("status", code),
				logger.Err(err),
				slog.Any("cause", errors.Unwrap(err)),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var werr *weather.Error
	if !errors.As(err, &werr) {
		return fiber.StatusInternalServerError, msgUnexpected
	}

	switch werr.Kind {
	case weather.KindNotFound:
		return fiber.StatusNotFound, werr.Error()
	case weather.KindExternalFailure:
		// The message names the city only; the cause stays in the logs.
		return fiber.StatusInternalServerError, werr.Error()
	case weather.KindOther:
		return fiber.StatusInternalServerError, msgUnexpected
	default:
		return fiber.StatusInternalServerError, msgUnexpected
	}
}
