package catalog

import (
	"log"

	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

func toResponse(p models.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, Price: p.Price, IsActive: p.IsActive}
}

func findProduct(c *fiber.Ctx, db *gorm.DB, businessID uint) (*models.Product, error) {
	var p models.Product
	if err := db.WithContext(c.UserContext()).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		First(&p).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
	}
	return &p, nil
}

func writeAudit(c *fiber.Ctx, db *gorm.DB, opts audit.LogOptions) {
	if err := audit.WriteLog(c.UserContext(), db, opts); err != nil {
		log.Printf("[WARN] %v", err)
	}
}

// GET /api/products?all=true
// Varsayılan olarak sadece satıştaki ürünler
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		dbq := db.WithContext(c.UserContext()).Model(&models.Product{}).
			Where("business_id = ?", actor.BusinessID)
		if c.Query("all") != "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toResponse(p))
		}
		return c.JSON(res)
	}
}

// POST /api/products (manager, super_admin)
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		body.Name = models.CleanText(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		p := models.Product{
			BusinessID: actor.BusinessID,
			Name:       body.Name,
			Price:      body.Price.Round(2),
			IsActive:   true,
		}
		if err := db.WithContext(c.UserContext()).Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		opts := audit.FromActor(actor, "product", p.ID, models.AuditActionCreate)
		opts.Description = "Ürün eklendi: " + p.Name + " " + p.Price.StringFixed(2)
		opts.After = toResponse(p)
		writeAudit(c, db, opts)

		return c.Status(fiber.StatusCreated).JSON(toResponse(p))
	}
}

// PUT /api/products/:id
// Fiyat değişikliği eklenmiş sipariş kalemlerini etkilemez, kalemler fiyatın kopyasını tutar.
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, db, actor.BusinessID)
		if err != nil {
			return err
		}
		before := toResponse(*p)

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := models.CleanText(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			p.Name = name
		}
		if body.Price != nil {
			if body.Price.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			p.Price = body.Price.Round(2)
		}
		if body.IsActive != nil {
			p.IsActive = *body.IsActive
		}

		if err := db.WithContext(c.UserContext()).Save(p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		opts := audit.FromActor(actor, "product", p.ID, models.AuditActionUpdate)
		opts.Description = "Ürün güncellendi: " + p.Name
		opts.Before = before
		opts.After = toResponse(*p)
		writeAudit(c, db, opts)

		return c.JSON(toResponse(*p))
	}
}

// DELETE /api/products/:id
// Siparişlerde referansı olduğu için silinmez, satıştan kaldırılır.
func DeactivateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, db, actor.BusinessID)
		if err != nil {
			return err
		}
		if err := db.WithContext(c.UserContext()).Model(p).Update("is_active", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün kaldırılamadı")
		}

		opts := audit.FromActor(actor, "product", p.ID, models.AuditActionUpdate)
		opts.Description = "Ürün satıştan kaldırıldı: " + p.Name
		writeAudit(c, db, opts)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
