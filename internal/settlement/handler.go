package settlement

import (
	"adisyon-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type ReversalRequest struct {
	Reason string `json:"reason"`
}

func idParam(c *fiber.Ctx, what string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz "+what+" id")
	}
	return uint(id), nil
}

// POST /api/settlements/direct
func DirectSettleHandler(coord *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		var body DirectInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		res, err := coord.DirectSettle(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// POST /api/orders/:id/settle  {"method":"cash","amount":"60"}
// amount boşsa kalan tutarın tamamı tahsil edilir
func DeferredSettleHandler(coord *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "sipariş")
		if err != nil {
			return err
		}
		var body DeferredInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		body.OrderID = id
		res, err := coord.DeferredSettle(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/orders/:id/reversal
func DecideHandler(coord *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "sipariş")
		if err != nil {
			return err
		}
		d, err := coord.Decide(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// POST /api/payments/:id/void
func VoidHandler(coord *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "ödeme")
		if err != nil {
			return err
		}
		var body ReversalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		p, err := coord.Void(c.UserContext(), actor, id, body.Reason)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /api/payments/:id/refund
func RefundHandler(coord *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := idParam(c, "ödeme")
		if err != nil {
			return err
		}
		var body ReversalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		p, err := coord.Refund(c.UserContext(), actor, id, body.Reason)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}
