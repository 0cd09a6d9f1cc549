package admin

import (
	"errors"
	"log"
	"strings"

	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/auth"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BusinessResponse struct {
	ID                     uint                 `json:"id"`
	Name                   string               `json:"name"`
	Address                string               `json:"address"`
	Phone                  string               `json:"phone"`
	OperationMode          models.OperationMode `json:"operation_mode"`
	CashTolerance          decimal.Decimal      `json:"cash_tolerance"`
	DefaultFloat           decimal.Decimal      `json:"default_float"`
	ReversalAlertThreshold int                  `json:"reversal_alert_threshold"`
	CreatedAt              string               `json:"created_at"`
}

type CreateBusinessRequest struct {
	Name                   string               `json:"name"`
	Address                string               `json:"address"`
	Phone                  *string              `json:"phone"` // Opsiyonel
	OperationMode          models.OperationMode `json:"operation_mode"`
	CashTolerance          *decimal.Decimal     `json:"cash_tolerance"`
	DefaultFloat           *decimal.Decimal     `json:"default_float"`
	ReversalAlertThreshold *int                 `json:"reversal_alert_threshold"`
}

type UpdateBusinessRequest struct {
	Name                   *string               `json:"name"`
	Address                *string               `json:"address"`
	Phone                  *string               `json:"phone"`
	OperationMode          *models.OperationMode `json:"operation_mode"`
	CashTolerance          *decimal.Decimal      `json:"cash_tolerance"`
	DefaultFloat           *decimal.Decimal      `json:"default_float"`
	ReversalAlertThreshold *int                  `json:"reversal_alert_threshold"`
}

type CreateOperatorRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type OperatorResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	BusinessID *uint           `json:"business_id"`
	CreatedAt  string          `json:"created_at"`
}

func toBusinessResponse(b models.Business) BusinessResponse {
	return BusinessResponse{
		ID:                     b.ID,
		Name:                   b.Name,
		Address:                b.Address,
		Phone:                  b.Phone,
		OperationMode:          b.OperationMode,
		CashTolerance:          b.CashTolerance,
		DefaultFloat:           b.DefaultFloat,
		ReversalAlertThreshold: b.ReversalAlertThreshold,
		CreatedAt:              b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// applyPolicy: kasa politikası alanları negatif olamaz
func applyPolicy(b *models.Business, tolerance, float *decimal.Decimal, threshold *int) error {
	if tolerance != nil {
		if tolerance.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Tolerans negatif olamaz")
		}
		b.CashTolerance = *tolerance
	}
	if float != nil {
		if float.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Açılış fonu negatif olamaz")
		}
		b.DefaultFloat = *float
	}
	if threshold != nil {
		if *threshold <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İptal/iade eşiği 0'dan büyük olmalı")
		}
		b.ReversalAlertThreshold = *threshold
	}
	return nil
}

func writeAudit(c *fiber.Ctx, db *gorm.DB, opts audit.LogOptions) {
	if err := audit.WriteLog(c.UserContext(), db, opts); err != nil {
		log.Printf("[WARN] %v", err)
	}
}

func actorOf(c *fiber.Ctx, businessID uint) models.Actor {
	uid, _ := c.Locals(auth.CtxUserIDKey).(uint)
	name, _ := c.Locals(auth.CtxUserNameKey).(string)
	role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
	return models.Actor{BusinessID: businessID, OperatorID: uid, OperatorName: name, Role: role}
}

// ----------------------------------------
// İŞLETME CRUD (super_admin)
// ----------------------------------------

// POST /api/admin/businesses
func CreateBusinessHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBusinessRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = models.CleanText(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İşletme adı boş olamaz")
		}
		if body.OperationMode == "" {
			body.OperationMode = models.OperationModeRestaurant
		}

		biz := models.Business{
			Name:                   body.Name,
			Address:                models.CleanText(body.Address),
			OperationMode:          body.OperationMode,
			CashTolerance:          decimal.NewFromInt(20),
			DefaultFloat:           decimal.NewFromInt(150),
			ReversalAlertThreshold: 5,
		}
		if body.Phone != nil {
			biz.Phone = strings.TrimSpace(*body.Phone)
		}
		if err := applyPolicy(&biz, body.CashTolerance, body.DefaultFloat, body.ReversalAlertThreshold); err != nil {
			return err
		}

		if err := db.WithContext(c.UserContext()).Create(&biz).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir işletme zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İşletme oluşturulamadı")
		}

		opts := audit.FromActor(actorOf(c, biz.ID), "business", biz.ID, models.AuditActionCreate)
		opts.Description = "İşletme oluşturuldu: " + biz.Name
		opts.After = toBusinessResponse(biz)
		writeAudit(c, db, opts)

		return c.Status(fiber.StatusCreated).JSON(toBusinessResponse(biz))
	}
}

// GET /api/admin/businesses
func ListBusinessesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.Business
		if err := db.WithContext(c.UserContext()).Order("name asc").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşletmeler listelenemedi")
		}

		res := make([]BusinessResponse, 0, len(list))
		for _, b := range list {
			res = append(res, toBusinessResponse(b))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/businesses/:id
func GetBusinessHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var biz models.Business
		if err := db.WithContext(c.UserContext()).First(&biz, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşletme bulunamadı")
		}
		return c.JSON(toBusinessResponse(biz))
	}
}

// PUT /api/admin/businesses/:id
// Tolerans ve eşik değişikliği açık oturumların sonraki mutabakatında geçerli olur.
func UpdateBusinessHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var biz models.Business
		if err := db.WithContext(c.UserContext()).First(&biz, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşletme bulunamadı")
		}
		before := toBusinessResponse(biz)

		var body UpdateBusinessRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := models.CleanText(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "İşletme adı boş olamaz")
			}
			biz.Name = name
		}
		if body.Address != nil {
			biz.Address = models.CleanText(*body.Address)
		}
		if body.Phone != nil {
			biz.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.OperationMode != nil {
			biz.OperationMode = *body.OperationMode
		}
		if err := applyPolicy(&biz, body.CashTolerance, body.DefaultFloat, body.ReversalAlertThreshold); err != nil {
			return err
		}

		// NextFolio'ya dokunma: folyo sayacı sipariş transaction'larında kilitli artar
		if err := db.WithContext(c.UserContext()).Model(&biz).
			Select("Name", "Address", "Phone", "OperationMode", "CashTolerance", "DefaultFloat", "ReversalAlertThreshold").
			Updates(&biz).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşletme güncellenemedi")
		}

		opts := audit.FromActor(actorOf(c, biz.ID), "business", biz.ID, models.AuditActionUpdate)
		opts.Description = "İşletme güncellendi: " + biz.Name
		opts.Before = before
		opts.After = toBusinessResponse(biz)
		writeAudit(c, db, opts)

		return c.JSON(toBusinessResponse(biz))
	}
}

// ----------------------------------------
// OPERATÖRLER
// ----------------------------------------

// POST /api/admin/businesses/:id/operators
func CreateOperatorHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var biz models.Business
		if err := db.WithContext(c.UserContext()).First(&biz, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşletme bulunamadı")
		}

		var body CreateOperatorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = models.CleanText(body.Name)
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}
		if body.Role == "" {
			body.Role = models.RoleCashier
		}
		role, err := models.ParseUserRole(string(body.Role))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		body.Role = role
		if body.Role == models.RoleSuperAdmin {
			return fiber.NewError(fiber.StatusBadRequest, "İşletmeye super_admin atanamaz")
		}

		var exist models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         body.Role,
			BusinessID:   &biz.ID,
		}
		if err := db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Operatör oluşturulamadı")
		}

		opts := audit.FromActor(actorOf(c, biz.ID), "user", user.ID, models.AuditActionCreate)
		opts.Description = "Operatör oluşturuldu: " + user.Name + " (" + string(user.Role) + ")"
		writeAudit(c, db, opts)

		return c.Status(fiber.StatusCreated).JSON(OperatorResponse{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
			BusinessID: user.BusinessID,
			CreatedAt:  user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/businesses/:id/operators
func ListOperatorsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.WithContext(c.UserContext()).
			Where("business_id = ?", c.Params("id")).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Operatörler listelenemedi")
		}

		res := make([]OperatorResponse, 0, len(users))
		for _, u := range users {
			res = append(res, OperatorResponse{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				Role:       u.Role,
				BusinessID: u.BusinessID,
				CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
