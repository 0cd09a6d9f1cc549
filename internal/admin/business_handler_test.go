package admin_test

import (
	"fmt"
	"net/http"
	"testing"

	"adisyon-backend/internal/admin"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAdminApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testutil.OpenDB(t)
	app := testutil.NewApp(models.Actor{OperatorID: 1, OperatorName: "Kök", Role: models.RoleSuperAdmin})
	app.Post("/api/admin/businesses", admin.CreateBusinessHandler(db))
	app.Get("/api/admin/businesses", admin.ListBusinessesHandler(db))
	app.Get("/api/admin/businesses/:id", admin.GetBusinessHandler(db))
	app.Put("/api/admin/businesses/:id", admin.UpdateBusinessHandler(db))
	app.Post("/api/admin/businesses/:id/operators", admin.CreateOperatorHandler(db))
	app.Get("/api/admin/businesses/:id/operators", admin.ListOperatorsHandler(db))
	return app, db
}

func TestBusinessHandlers_CreateWithDefaultsAndUpdatePolicy(t *testing.T) {
	app, db := newAdminApp(t)

	resp := testutil.Do(t, app, http.MethodPost, "/api/admin/businesses", `{"name":"  Köşe Büfe ","operation_mode":"counter"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var biz admin.BusinessResponse
	testutil.DecodeJSON(t, resp, &biz)
	assert.Equal(t, "Köşe Büfe", biz.Name)
	assert.Equal(t, models.OperationModeCounter, biz.OperationMode)
	assert.Equal(t, "20", biz.CashTolerance.String())
	assert.Equal(t, "150", biz.DefaultFloat.String())
	assert.Equal(t, 5, biz.ReversalAlertThreshold)

	resp = testutil.Do(t, app, http.MethodPost, "/api/admin/businesses", `{"name":"Köşe Büfe"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodPost, "/api/admin/businesses", `{"name":"Başka","operation_mode":"drive_thru"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	path := fmt.Sprintf("/api/admin/businesses/%d", biz.ID)
	resp = testutil.Do(t, app, http.MethodPut, path, `{"cash_tolerance":"-1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodPut, path, `{"cash_tolerance":"5","reversal_alert_threshold":3}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &biz)
	assert.Equal(t, "5", biz.CashTolerance.String())
	assert.Equal(t, 3, biz.ReversalAlertThreshold)

	var stored models.Business
	require.NoError(t, db.First(&stored, biz.ID).Error)
	assert.Equal(t, "5", stored.CashTolerance.String())
	assert.Equal(t, models.OperationModeCounter, stored.OperationMode)

	resp = testutil.Do(t, app, http.MethodGet, "/api/admin/businesses/999", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var logs int64
	db.Model(&models.AuditLog{}).Where("entity_type = ?", "business").Count(&logs)
	assert.EqualValues(t, 2, logs)
}

func TestOperatorHandlers(t *testing.T) {
	app, db := newAdminApp(t)
	b := testutil.SeedBusiness(t, db, models.OperationModeRestaurant)
	path := fmt.Sprintf("/api/admin/businesses/%d/operators", b.ID)

	resp := testutil.Do(t, app, http.MethodPost, path, `{"name":"Mutfak","email":"Mutfak@Example.com","password":"s3cret","role":"kitchen"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var op admin.OperatorResponse
	testutil.DecodeJSON(t, resp, &op)
	assert.Equal(t, "mutfak@example.com", op.Email)
	assert.Equal(t, models.RoleKitchen, op.Role)
	require.NotNil(t, op.BusinessID)
	assert.Equal(t, b.ID, *op.BusinessID)

	var u models.User
	require.NoError(t, db.First(&u, op.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	// rol verilmezse kasiyer
	resp = testutil.Do(t, app, http.MethodPost, path, `{"name":"Kasa","email":"kasa@example.com","password":"x"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &op)
	assert.Equal(t, models.RoleCashier, op.Role)

	resp = testutil.Do(t, app, http.MethodPost, path, `{"name":"Kök2","email":"kok2@example.com","password":"x","role":"super_admin"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodPost, path, `{"name":"Tekrar","email":"kasa@example.com","password":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodGet, path, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []admin.OperatorResponse
	testutil.DecodeJSON(t, resp, &list)
	assert.Len(t, list, 2)
}
