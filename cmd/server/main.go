package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"adisyon-backend/internal/admin"
	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/cashsession"
	"adisyon-backend/internal/catalog"
	"adisyon-backend/internal/clock"
	"adisyon-backend/internal/config"
	"adisyon-backend/internal/database"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"
	"adisyon-backend/internal/settlement"
	"adisyon-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const eventsHeartbeat = 15 * time.Second

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	hub := feed.NewHub()
	st := store.New(db, clock.Real{}, hub)

	orderSvc := orders.NewService(st)
	cashEngine := cashsession.NewEngine(st)
	coord := settlement.NewCoordinator(st)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		// SSE bağlantıları uzun sürer, süre alanı yanıltıcı olur
		Next: func(c *fiber.Ctx) bool { return c.Path() == "/api/events" },
	}))

	// 🔥 CORS MIDDLEWARE
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + auth.BusinessHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Get("/terminal/defaults", config.TerminalDefaultsHandler(cfg))

	// Super admin: işletme ve operatör yönetimi
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	adminRoutes.Post("/businesses", admin.CreateBusinessHandler(db))
	adminRoutes.Get("/businesses", admin.ListBusinessesHandler(db))
	adminRoutes.Get("/businesses/:id", admin.GetBusinessHandler(db))
	adminRoutes.Put("/businesses/:id", admin.UpdateBusinessHandler(db))
	adminRoutes.Post("/businesses/:id/operators", admin.CreateOperatorHandler(db))
	adminRoutes.Get("/businesses/:id/operators", admin.ListOperatorsHandler(db))

	// Ürün kataloğu
	catalogWrite := auth.RequireRole(models.RoleSuperAdmin, models.RoleManager)
	protected.Get("/products", catalog.ListProductsHandler(db))
	protected.Post("/products", catalogWrite, catalog.CreateProductHandler(db))
	protected.Put("/products/:id", catalogWrite, catalog.UpdateProductHandler(db))
	protected.Delete("/products/:id", catalogWrite, catalog.DeactivateProductHandler(db))

	// Siparişler
	protected.Post("/orders", orders.CreateOrderHandler(orderSvc))
	protected.Get("/orders/active", orders.ListActiveOrdersHandler(orderSvc))
	protected.Get("/orders/:id", orders.GetOrderHandler(orderSvc))
	protected.Post("/orders/:id/items", orders.AddItemsHandler(orderSvc))
	protected.Post("/orders/:id/advance", orders.AdvanceOrderHandler(orderSvc))
	protected.Post("/orders/:id/cancel", orders.CancelOrderHandler(orderSvc))
	protected.Get("/orders/:id/actions", orders.OrderActionsHandler(orderSvc))

	// Tahsilat ve iadeler
	protected.Post("/settlements/direct", settlement.DirectSettleHandler(coord))
	protected.Post("/orders/:id/settle", settlement.DeferredSettleHandler(coord))
	protected.Get("/orders/:id/reversal", settlement.DecideHandler(coord))
	protected.Post("/payments/:id/void", settlement.VoidHandler(coord))
	protected.Post("/payments/:id/refund", settlement.RefundHandler(coord))

	// Kasa oturumları (current, :id'den önce kayıtlı olmalı)
	protected.Post("/cash-sessions", cashsession.OpenSessionHandler(cashEngine))
	protected.Get("/cash-sessions/current", cashsession.CurrentSessionHandler(cashEngine))
	protected.Get("/cash-sessions", cashsession.ListSessionsHandler(st))
	protected.Post("/cash-sessions/:id/movements", cashsession.AddMovementHandler(cashEngine))
	protected.Get("/cash-sessions/:id/snapshot", cashsession.SnapshotHandler(cashEngine))
	protected.Post("/cash-sessions/:id/close/preview", cashsession.ClosePreviewHandler(cashEngine))
	protected.Post("/cash-sessions/:id/close", cashsession.CloseSessionHandler(cashEngine))
	protected.Get("/cash-sessions/:id/report.xlsx", cashsession.ReportHandler(cashEngine))

	// Değişiklik akışı (SSE)
	protected.Get("/events", feed.EventsHandler(hub, eventsHeartbeat))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Kapatılıyor...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[WARN] Kapatma hatası: %v", err)
		}
	}()

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
