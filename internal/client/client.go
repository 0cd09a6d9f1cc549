// Package client, terminal süreçlerinin sunucu REST API'sine eriştiği ince istemci.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"adisyon-backend/internal/config"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Client struct {
	BaseURL    string
	Token      string
	BusinessID uint // super_admin için X-Business-ID
	Timeout    time.Duration
}

func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: 10 * time.Second}
}

// APIError: sunucunun {"error": ...} gövdesi
type APIError struct {
	Status        int    `json:"-"`
	Message       string `json:"error"`
	Alternative   string `json:"alternative,omitempty"`
	CurrentStatus string `json:"current_status,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type LoginUser struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	BusinessID *uint           `json:"business_id"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

func (c *Client) prepare(ctx context.Context, a *fiber.Agent) *fiber.Agent {
	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}
	a.Timeout(timeout)
	if c.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.Token)
	}
	if c.BusinessID != 0 {
		a.Set("X-Business-ID", strconv.FormatUint(uint64(c.BusinessID), 10))
	}
	return a
}

func (c *Client) do(ctx context.Context, a *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}
	if err := c.prepare(ctx, a).Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("geçersiz adres: %w", err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("istek başarısız: %w", errs[0])
	}
	if code >= 400 {
		apiErr := &APIError{Status: code}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Login: token'ı istemciye kaydeder
func (c *Client) Login(ctx context.Context, email, password string) (*LoginUser, error) {
	a := fiber.Post(c.BaseURL + "/api/auth/login").JSON(fiber.Map{"email": email, "password": password})
	var res loginResponse
	if err := c.do(ctx, a, &res); err != nil {
		return nil, err
	}
	c.Token = res.Token
	return &res.User, nil
}

// ActiveOrders: terminalsync.Loader. İşletme token'dan veya BusinessID'den gelir.
func (c *Client) ActiveOrders(ctx context.Context, businessID uint) ([]models.Order, error) {
	if c.BusinessID == 0 {
		c.BusinessID = businessID
	}
	var list []models.Order
	if err := c.do(ctx, fiber.Get(c.BaseURL+"/api/orders/active"), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CurrentSession(ctx context.Context) (*models.CashSession, error) {
	var s models.CashSession
	if err := c.do(ctx, fiber.Get(c.BaseURL+"/api/cash-sessions/current"), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Snapshot(ctx context.Context, sessionID uint) (*models.ReconciliationSnapshot, error) {
	var snap models.ReconciliationSnapshot
	url := fmt.Sprintf("%s/api/cash-sessions/%d/snapshot", c.BaseURL, sessionID)
	if err := c.do(ctx, fiber.Get(url), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Advance: from, terminalin son gördüğü durum
func (c *Client) Advance(ctx context.Context, orderID uint, from models.OrderStatus) (*models.Order, error) {
	url := fmt.Sprintf("%s/api/orders/%d/advance", c.BaseURL, orderID)
	var o models.Order
	if err := c.do(ctx, fiber.Post(url).JSON(fiber.Map{"from": from}), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// TerminalDefaults: sunucunun önerdiği senkron süreleri ve açılış fonu
func (c *Client) TerminalDefaults(ctx context.Context) (*config.TerminalDefaults, error) {
	var d config.TerminalDefaults
	if err := c.do(ctx, fiber.Get(c.BaseURL+"/api/terminal/defaults"), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) OpenSession(ctx context.Context, openingFloat decimal.Decimal) (*models.CashSession, error) {
	var s models.CashSession
	a := fiber.Post(c.BaseURL + "/api/cash-sessions").JSON(fiber.Map{"opening_float": openingFloat})
	if err := c.do(ctx, a, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
