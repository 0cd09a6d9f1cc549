package auth

import (
	"strconv"
	"strings"

	"adisyon-backend/internal/config"
	"adisyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey     = "user_id"
	CtxUserNameKey   = "user_name"
	CtxUserRoleKey   = "user_role"
	CtxBusinessIDKey = "business_id"

	// super_admin'in işletme seçmesi için
	BusinessHeader = "X-Business-ID"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserNameKey, claims.Name)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxBusinessIDKey, claims.BusinessID)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}

// ActorFrom: isteği yapan operatörü locals'tan kurar.
// İşletmeye bağlı kullanıcılar token'daki işletmeyi kullanır, super_admin X-Business-ID gönderir.
func ActorFrom(c *fiber.Ctx) (models.Actor, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || userID == 0 {
		return models.Actor{}, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	name, _ := c.Locals(CtxUserNameKey).(string)

	actor := models.Actor{OperatorID: userID, OperatorName: name, Role: role}

	if bPtr, ok := c.Locals(CtxBusinessIDKey).(*uint); ok && bPtr != nil {
		actor.BusinessID = *bPtr
		return actor, nil
	}

	if role != models.RoleSuperAdmin {
		return models.Actor{}, fiber.NewError(fiber.StatusForbidden, "İşletme bilgisi bulunamadı")
	}
	raw := c.Get(BusinessHeader)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return models.Actor{}, fiber.NewError(fiber.StatusBadRequest, BusinessHeader+" zorunlu")
	}
	actor.BusinessID = uint(id)
	return actor, nil
}
