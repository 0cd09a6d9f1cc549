package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationMode: siparişlerin mutfak aşamasından geçip geçmeyeceğini belirler
type OperationMode string

const (
	OperationModeRestaurant OperationMode = "restaurant" // mutfak ekranı var
	OperationModeCounter    OperationMode = "counter"    // tezgah satışı, mutfak yok
)

func ParseOperationMode(s string) (OperationMode, error) {
	switch m := OperationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case OperationModeRestaurant, OperationModeCounter:
		return m, nil
	}
	return "", fmt.Errorf("geçersiz çalışma modu: %q (restaurant|counter)", s)
}

func (m *OperationMode) UnmarshalText(b []byte) error {
	v, err := ParseOperationMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Business: işletme kaydı. Kasa politikası (tolerans, açılış fonu) buradan okunur.
type Business struct {
	ID            uint          `gorm:"primaryKey"`
	Name          string        `gorm:"size:100;not null;unique"`
	Address       string        `gorm:"size:255"`
	Phone         string        `gorm:"size:50"`
	OperationMode OperationMode `gorm:"size:20;not null;default:'restaurant'"`

	// Kapanışta fark bu tutarı aşarsa kapanış notu zorunlu
	CashTolerance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Yeni vardiya için önerilen açılış fonu
	DefaultFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Bir oturumda bu sayıya ulaşan iptal+iade uyarı üretir
	ReversalAlertThreshold int `gorm:"not null;default:5"`

	NextFolio int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
