package catalog

import (
	"fmt"
	"testing"

	"adisyon-backend/internal/models"
	"adisyon-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandlers(t *testing.T) {
	db := testutil.OpenDB(t)
	biz := testutil.SeedBusiness(t, db, models.OperationModeRestaurant)
	other := testutil.SeedBusiness(t, db, models.OperationModeCounter)
	foreign := testutil.SeedProduct(t, db, other, "Simit", "10")
	manager := testutil.SeedUser(t, db, biz, "müdür", models.RoleManager)

	app := testutil.NewApp(manager)
	app.Get("/products", ListProductsHandler(db))
	app.Post("/products", CreateProductHandler(db))
	app.Put("/products/:id", UpdateProductHandler(db))
	app.Delete("/products/:id", DeactivateProductHandler(db))

	resp := testutil.Do(t, app, "POST", "/products", `{"name":"  Mercimek Çorbası ","price":"85.5"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var p ProductResponse
	testutil.DecodeJSON(t, resp, &p)
	assert.Equal(t, "Mercimek Çorbası", p.Name)
	assert.True(t, p.Price.Equal(testutil.Dec("85.50")))

	resp = testutil.Do(t, app, "POST", "/products", `{"name":"Su","price":"-1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Do(t, app, "PUT", fmt.Sprintf("/products/%d", p.ID), `{"price":"90"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &p)
	assert.True(t, p.Price.Equal(testutil.Dec("90")))

	// Başka işletmenin ürünü görünmez
	resp = testutil.Do(t, app, "PUT", fmt.Sprintf("/products/%d", foreign.ID), `{"price":"1"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Do(t, app, "DELETE", fmt.Sprintf("/products/%d", p.ID), "")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = testutil.Do(t, app, "GET", "/products", "")
	var list []ProductResponse
	testutil.DecodeJSON(t, resp, &list)
	assert.Empty(t, list)

	resp = testutil.Do(t, app, "GET", "/products?all=true", "")
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("entity_type = ?", "product").Count(&logs).Error)
	assert.Equal(t, int64(3), logs)
}
