package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusInPrep    OrderStatus = "in_prep"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusPaid      OrderStatus = "paid"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusOpen, OrderStatusInPrep, OrderStatusReady, OrderStatusDelivered,
		OrderStatusClosed, OrderStatusCancelled, OrderStatusPaid:
		return st, nil
	}
	return "", fmt.Errorf("geçersiz sipariş durumu: %q", s)
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Active: kapanmamış ve iptal edilmemiş siparişler terminallerde listelenir
func (s OrderStatus) Active() bool {
	return s != OrderStatusClosed && s != OrderStatusCancelled
}

// ActiveOrderStatuses: aktif sipariş sorgularında kullanılan durumlar
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusOpen,
	OrderStatusPaid,
	OrderStatusInPrep,
	OrderStatusReady,
	OrderStatusDelivered,
}

type ServiceType string

const (
	ServiceTypeDineIn   ServiceType = "dine_in"
	ServiceTypeTakeaway ServiceType = "takeaway"
	ServiceTypeDelivery ServiceType = "delivery"
)

func ParseServiceType(s string) (ServiceType, error) {
	switch st := ServiceType(strings.ToLower(strings.TrimSpace(s))); st {
	case ServiceTypeDineIn, ServiceTypeTakeaway, ServiceTypeDelivery:
		return st, nil
	}
	return "", fmt.Errorf("geçersiz servis tipi: %q (dine_in|takeaway|delivery)", s)
}

func (s *ServiceType) UnmarshalText(b []byte) error {
	v, err := ParseServiceType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Order: adisyon. Silinmez, sadece soft delete.
type Order struct {
	ID          uint        `gorm:"primaryKey"`
	BusinessID  uint        `gorm:"index;not null"`
	Folio       string      `gorm:"size:20;not null"`
	Status      OrderStatus `gorm:"size:20;not null;index"`
	ServiceType ServiceType `gorm:"size:20;not null"`
	TableLabel  string      `gorm:"size:50"` // masa / koltuk (opsiyonel)

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	// Kalemlerden hesaplanan anlık toplamlar, elle değiştirilmez
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountReason string          `gorm:"size:255"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Notes        string `gorm:"size:500"`
	CancelReason string `gorm:"size:255"`
	CreatedBy    uint   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// OrderItem: ürün adı ve fiyatı ekleme anındaki kopyadır, katalog değişse de değişmez
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:100;not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes     string          `gorm:"size:255"`
	CreatedAt time.Time
}

// RecomputeTotals: toplamları kalem listesinden baştan hesaplar.
// total = max(0, subtotal - discount)
func (o *Order) RecomputeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.LineTotal)
	}
	o.Subtotal = subtotal
	total := subtotal.Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}
