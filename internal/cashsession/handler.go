package cashsession

import (
	"bytes"
	"context"
	"fmt"

	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

type ClosePreviewResponse struct {
	Snapshot *models.ReconciliationSnapshot `json:"snapshot"`
	Figures  *CloseFigures                  `json:"figures"`
}

// SessionLister: yönetici ekranındaki oturum listesi
type SessionLister interface {
	ListSessions(ctx context.Context, businessID uint, status *models.CashSessionStatus, limit int) ([]models.CashSession, error)
}

func sessionID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz oturum id")
	}
	return uint(id), nil
}

// POST /api/cash-sessions
func OpenSessionHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		var body OpenSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		s, err := engine.Open(c.UserContext(), actor, body.OpeningFloat)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// GET /api/cash-sessions/current
func CurrentSessionHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		s, err := engine.Current(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// GET /api/cash-sessions?status=closed&limit=50
func ListSessionsHandler(lister SessionLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		var status *models.CashSessionStatus
		if raw := c.Query("status"); raw != "" {
			st, err := models.ParseCashSessionStatus(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			status = &st
		}
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		list, err := lister.ListSessions(c.UserContext(), actor.BusinessID, status, limit)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// POST /api/cash-sessions/:id/movements
func AddMovementHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		var body MovementInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		m, err := engine.AddMovement(c.UserContext(), actor, id, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// GET /api/cash-sessions/:id/snapshot
func SnapshotHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		snap, err := engine.Snapshot(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		return c.JSON(snap)
	}
}

func closeInput(c *fiber.Ctx) (CloseInput, error) {
	id, err := sessionID(c)
	if err != nil {
		return CloseInput{}, err
	}
	var in CloseInput
	if err := c.BodyParser(&in); err != nil {
		return CloseInput{}, fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
	}
	in.SessionID = id
	return in, nil
}

// POST /api/cash-sessions/:id/close/preview
// Sayım ve bırakılacak fon için farkı, çekimi ve not şartını gösterir, hiçbir şey yazmaz.
func ClosePreviewHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		in, err := closeInput(c)
		if err != nil {
			return err
		}
		fig, snap, err := engine.Preview(c.UserContext(), actor, in)
		if err != nil {
			return err
		}
		return c.JSON(ClosePreviewResponse{Snapshot: snap, Figures: fig})
	}
}

// POST /api/cash-sessions/:id/close
func CloseSessionHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		in, err := closeInput(c)
		if err != nil {
			return err
		}
		s, err := engine.Close(c.UserContext(), actor, in)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// GET /api/cash-sessions/:id/report.xlsx
func ReportHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := engine.Report(c.UserContext(), actor, id, &buf); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="kasa-%d.xlsx"`, id))
		return c.Send(buf.Bytes())
	}
}
