package models

import (
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleManager    UserRole = "manager"
	RoleCashier    UserRole = "cashier"
	RoleKitchen    UserRole = "kitchen"
)

func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleSuperAdmin, RoleManager, RoleCashier, RoleKitchen:
		return r, nil
	}
	return "", fmt.Errorf("geçersiz rol: %q", s)
}

type User struct {
	ID           uint `gorm:"primaryKey"`
	BusinessID   *uint
	Business     *Business
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor: isteği yapan operatör. JWT'den bir kez çözülür ve servislere açıkça geçirilir.
type Actor struct {
	BusinessID   uint
	OperatorID   uint
	OperatorName string
	Role         UserRole
}
