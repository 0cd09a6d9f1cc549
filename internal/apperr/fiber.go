package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// statusCarrier: geçiş hataları terminalin kendini düzeltmesi için güncel durumu taşır
type statusCarrier interface {
	CurrentStatus() string
}

// ErrorHandler: fiber.Config.ErrorHandler. Gövde her zaman {"error": msg}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var ae *Error
	if !errors.As(err, &ae) {
		log.Println("Unexpected error:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Beklenmeyen sunucu hatası",
		})
	}

	body := fiber.Map{"error": err.Error()}
	if ae.Kind == KindBackend {
		log.Printf("[WARN] backend hatası: %v", err)
	}
	if ae.Alternative != "" {
		body["alternative"] = ae.Alternative
	}
	var sc statusCarrier
	if errors.As(err, &sc) {
		body["current_status"] = sc.CurrentStatus()
	}
	return c.Status(Status(err)).JSON(body)
}
