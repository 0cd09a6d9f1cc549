package orders_test

import (
	"fmt"
	"testing"
	"time"

	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"
	"adisyon-backend/internal/store"
	"adisyon-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderJSON struct {
	ID     uint   `json:"ID"`
	Folio  string `json:"Folio"`
	Status string `json:"Status"`
	Total  string `json:"Total"`
}

func newOrdersApp(t *testing.T) (*fiber.App, *models.Product) {
	db := testutil.OpenDB(t)
	clk := testutil.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	st := store.New(db, clk, feed.NewHub())
	biz := testutil.SeedBusiness(t, db, models.OperationModeRestaurant)
	waiter := testutil.SeedUser(t, db, biz, "garson", models.RoleCashier)
	tea := testutil.SeedProduct(t, db, biz, "Çay", "15.50")

	svc := orders.NewService(st)
	app := testutil.NewApp(waiter)
	app.Post("/orders", orders.CreateOrderHandler(svc))
	app.Get("/orders/active", orders.ListActiveOrdersHandler(svc))
	app.Get("/orders/:id", orders.GetOrderHandler(svc))
	app.Post("/orders/:id/items", orders.AddItemsHandler(svc))
	app.Post("/orders/:id/advance", orders.AdvanceOrderHandler(svc))
	app.Post("/orders/:id/cancel", orders.CancelOrderHandler(svc))
	app.Get("/orders/:id/actions", orders.OrderActionsHandler(svc))
	return app, tea
}

func TestHandlers_OrderLifecycle(t *testing.T) {
	app, tea := newOrdersApp(t)

	resp := testutil.Do(t, app, "POST", "/orders", fmt.Sprintf(`{"service_type":"dine_in","table_label":"Masa 2","items":[{"product_id":%d,"quantity":2}]}`, tea.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var o orderJSON
	testutil.DecodeJSON(t, resp, &o)
	assert.Equal(t, "open", o.Status)
	assert.True(t, testutil.Dec(o.Total).Equal(testutil.Dec("31")))
	assert.NotEmpty(t, o.Folio)

	resp = testutil.Do(t, app, "POST", fmt.Sprintf("/orders/%d/advance", o.ID), `{"from":"open"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &o)
	assert.Equal(t, "in_prep", o.Status)

	// Başka terminalin eski görüntüsü
	resp = testutil.Do(t, app, "POST", fmt.Sprintf("/orders/%d/advance", o.ID), `{"from":"open"}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var stale map[string]string
	testutil.DecodeJSON(t, resp, &stale)
	assert.Equal(t, "in_prep", stale["current_status"])

	resp = testutil.Do(t, app, "GET", fmt.Sprintf("/orders/%d/actions", o.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var actions orders.Actions
	testutil.DecodeJSON(t, resp, &actions)
	require.NotNil(t, actions.Advance)
	assert.Equal(t, models.OrderStatusReady, *actions.Advance)
	assert.True(t, actions.Cancel)
	assert.True(t, actions.Settle)

	resp = testutil.Do(t, app, "POST", fmt.Sprintf("/orders/%d/cancel", o.ID), `{"reason":"  "}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = testutil.Do(t, app, "POST", fmt.Sprintf("/orders/%d/cancel", o.ID), `{"reason":"müşteri gitti"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = testutil.Do(t, app, "GET", "/orders/active", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var active []orderJSON
	testutil.DecodeJSON(t, resp, &active)
	assert.Empty(t, active)
}

func TestHandlers_UnknownOrder(t *testing.T) {
	app, _ := newOrdersApp(t)

	resp := testutil.Do(t, app, "GET", "/orders/999", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Do(t, app, "GET", "/orders/x", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
