package apperr

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staleErr struct{ status string }

func (e *staleErr) Error() string         { return "eski durum" }
func (e *staleErr) CurrentStatus() string { return e.status }
func (e *staleErr) Unwrap() error         { return Validation("eski durum") }

func call(t *testing.T, err error) (int, map[string]string) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })

	resp, rerr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, rerr)
	defer resp.Body.Close()

	body := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	code, body := call(t, Conflict("refund", "oturum kapanmış"))
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "oturum kapanmış", body["error"])
	assert.Equal(t, "refund", body["alternative"])

	code, body = call(t, &staleErr{status: "ready"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, "ready", body["current_status"])

	code, body = call(t, fiber.NewError(fiber.StatusForbidden, "yetki yok"))
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "yetki yok", body["error"])

	code, body = call(t, errors.New("disk dolu"))
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Beklenmeyen sunucu hatası", body["error"])
}
