package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"     // nakit
	PaymentMethodCard     PaymentMethod = "card"     // kart / pos
	PaymentMethodTransfer PaymentMethod = "transfer" // havale
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return m, nil
	}
	return "", fmt.Errorf("geçersiz ödeme yöntemi: %q (cash|card|transfer)", s)
}

func (m *PaymentMethod) UnmarshalText(b []byte) error {
	v, err := ParsePaymentMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusVoid     PaymentStatus = "void"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusVoid:
		return st, nil
	}
	return "", fmt.Errorf("geçersiz ödeme durumu: %q", s)
}

func (s *PaymentStatus) UnmarshalText(b []byte) error {
	v, err := ParsePaymentStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Payment: bir siparişe ve tam olarak bir kasa oturumuna bağlı ödeme.
// CashSessionID sadece oluştururken yazılır.
type Payment struct {
	ID            uint            `gorm:"primaryKey"`
	BusinessID    uint            `gorm:"index;not null"`
	OrderID       uint            `gorm:"index;not null"`
	CashSessionID uint            `gorm:"<-:create;index;not null"`
	OperatorID    uint            `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method        PaymentMethod   `gorm:"size:20;not null"`
	Status        PaymentStatus   `gorm:"size:20;not null;index"`
	PaidAt        *time.Time

	// İptal / iade bilgisi
	ReversedAt        *time.Time
	ReversedBy        *uint
	ReversalSessionID *uint  `gorm:"index"` // iadenin kasadan çıktığı oturum
	ReversalReason    string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaidTotal: "paid" durumundaki ödemelerin toplamı
func PaidTotal(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusPaid {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// HasPaid: en az bir "paid" ödeme var mı?
func HasPaid(payments []Payment) bool {
	for _, p := range payments {
		if p.Status == PaymentStatusPaid {
			return true
		}
	}
	return false
}
