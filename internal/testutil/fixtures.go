package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var seq atomic.Int64

// SeedBusiness: tolerans 20, açılış fonu 150, iptal/iade eşiği 5
func SeedBusiness(t *testing.T, db *gorm.DB, mode models.OperationMode) *models.Business {
	t.Helper()
	b := &models.Business{
		Name:                   fmt.Sprintf("İşletme %s #%d", t.Name(), seq.Add(1)),
		OperationMode:          mode,
		CashTolerance:          Dec("20"),
		DefaultFloat:           Dec("150"),
		ReversalAlertThreshold: 5,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func SeedUser(t *testing.T, db *gorm.DB, b *models.Business, name string, role models.UserRole) models.Actor {
	t.Helper()
	u := &models.User{
		BusinessID:   &b.ID,
		Name:         name,
		Email:        fmt.Sprintf("%s-%d@example.com", name, b.ID),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return models.Actor{BusinessID: b.ID, OperatorID: u.ID, OperatorName: u.Name, Role: role}
}

func SeedProduct(t *testing.T, db *gorm.DB, b *models.Business, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{BusinessID: b.ID, Name: name, Price: Dec(price), IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}
