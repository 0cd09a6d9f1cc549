package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// NewApp: JWT yerine locals'ı doğrudan actor ile dolduran test uygulaması
func NewApp(actor models.Actor) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	businessID := actor.BusinessID
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, actor.OperatorID)
		c.Locals(auth.CtxUserNameKey, actor.OperatorName)
		c.Locals(auth.CtxUserRoleKey, actor.Role)
		c.Locals(auth.CtxBusinessIDKey, &businessID)
		return c.Next()
	})
	return app
}

func Do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
