package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product: menü ürünü. Sipariş kalemleri eklenirken isim ve fiyatın kopyası alınır.
type Product struct {
	ID         uint            `gorm:"primaryKey"`
	BusinessID uint            `gorm:"index;not null"`
	Name       string          `gorm:"size:100;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsActive   bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
