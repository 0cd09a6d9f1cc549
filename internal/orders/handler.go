package orders

import (
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AddItemsRequest struct {
	Items []ItemInput `json:"items"`
}

// AdvanceRequest: from, terminalin gördüğü durum. Boşsa kontrol edilmez.
type AdvanceRequest struct {
	From models.OrderStatus `json:"from"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func orderID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
	}
	return uint(id), nil
}

// POST /api/orders
func CreateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		o, err := svc.Create(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

// GET /api/orders/active
func ListActiveOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		list, err := svc.Active(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := orderID(c)
		if err != nil {
			return err
		}
		o, err := svc.Get(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// POST /api/orders/:id/items
func AddItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := orderID(c)
		if err != nil {
			return err
		}
		var body AddItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		o, err := svc.AddItems(c.UserContext(), actor, id, body.Items)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// POST /api/orders/:id/advance
func AdvanceOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := orderID(c)
		if err != nil {
			return err
		}
		var body AdvanceRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
			}
		}
		o, err := svc.Advance(c.UserContext(), actor, id, body.From)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// POST /api/orders/:id/cancel
func CancelOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := orderID(c)
		if err != nil {
			return err
		}
		var body CancelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		o, err := svc.Cancel(c.UserContext(), actor, id, body.Reason)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// GET /api/orders/:id/actions
func OrderActionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := orderID(c)
		if err != nil {
			return err
		}
		a, err := svc.Actions(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		return c.JSON(a)
	}
}
