package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/config"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginThenProtectedRoutes(t *testing.T) {
	db := testutil.OpenDB(t)
	cfg := &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

	b := testutil.SeedBusiness(t, db, models.OperationModeRestaurant)
	hash, err := auth.HashPassword("kasa123")
	require.NoError(t, err)
	u := models.User{BusinessID: &b.ID, Name: "Kasiyer", Email: "kasiyer@example.com", PasswordHash: hash, Role: models.RoleCashier}
	require.NoError(t, db.Create(&u).Error)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Post("/api/auth/login", auth.LoginHandler(cfg, db))
	protected := app.Group("/api", auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Get("/admin/ping", auth.RequireRole(models.RoleSuperAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp := testutil.Do(t, app, http.MethodPost, "/api/auth/login", `{"email":"kasiyer@example.com","password":"yanlis"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodPost, "/api/auth/login", `{"email":" KASIYER@example.com ","password":"kasa123"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, resp, &login)
	require.NotEmpty(t, login.Token)

	get := func(path, token string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	assert.Equal(t, fiber.StatusUnauthorized, get("/api/auth/me", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get("/api/auth/me", "bozuk").StatusCode)

	resp = get("/api/auth/me", login.Token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me map[string]any
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "cashier", me["role"])
	business, ok := me["business"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "restaurant", business["operation_mode"])
	assert.True(t, strings.HasPrefix(business["name"].(string), "İşletme"))

	assert.Equal(t, fiber.StatusForbidden, get("/api/admin/ping", login.Token).StatusCode)
}
