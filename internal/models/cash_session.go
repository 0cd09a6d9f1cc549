package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CashSessionStatus string

const (
	CashSessionOpen   CashSessionStatus = "open"
	CashSessionClosed CashSessionStatus = "closed"
)

func ParseCashSessionStatus(s string) (CashSessionStatus, error) {
	switch st := CashSessionStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case CashSessionOpen, CashSessionClosed:
		return st, nil
	}
	return "", fmt.Errorf("geçersiz kasa oturumu durumu: %q", s)
}

func (s *CashSessionStatus) UnmarshalText(b []byte) error {
	v, err := ParseCashSessionStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CashSession: bir operatörün kasa vardiyası. Operatör başına aynı anda tek "open" oturum.
type CashSession struct {
	ID           uint              `gorm:"primaryKey"`
	BusinessID   uint              `gorm:"index;not null"`
	OperatorID   uint              `gorm:"index;not null"`
	Status       CashSessionStatus `gorm:"size:20;not null;index"`
	OpeningFloat decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	OpenedAt     time.Time         `gorm:"not null"`
	ClosedAt     *time.Time

	Movements []CashMovement `gorm:"foreignKey:CashSessionID"`

	// Kapanışta yazılır
	CountedCash *decimal.Decimal `gorm:"type:decimal(12,2)"`
	KeptFloat   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Withdrawal  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClosingNote string           `gorm:"size:500"`
	// Kapanış anındaki mutabakat, denetim için değişmez
	Snapshot *ReconciliationSnapshot `gorm:"type:text;serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

type WarningCode string

const (
	WarningHighReversalCount     WarningCode = "high_reversal_count"
	WarningNegativeBalance       WarningCode = "negative_balance"
	WarningMissingMovementReason WarningCode = "missing_movement_reason"
	WarningNoSales               WarningCode = "no_sales"
)

type Warning struct {
	Code     WarningCode `json:"code"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

type SalesByMethod struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
}

// ReconciliationSnapshot: beklenen nakit ve uyarıların hesaplanmış görünümü.
// Oturum boyunca saklanmaz, sadece kapanışta dondurulur.
type ReconciliationSnapshot struct {
	SessionID     uint            `json:"session_id"`
	OpeningFloat  decimal.Decimal `json:"opening_float"`
	SalesByMethod SalesByMethod   `json:"sales_by_method"`
	ManualCashIn  decimal.Decimal `json:"manual_cash_in"`
	ManualCashOut decimal.Decimal `json:"manual_cash_out"`
	CashRefunds   decimal.Decimal `json:"cash_refunds"`
	CashVoids     decimal.Decimal `json:"cash_voids"`
	VoidCount     int             `json:"void_count"`
	RefundCount   int             `json:"refund_count"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	Warnings      []Warning       `json:"warnings"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// HasCritical: kritik seviyede uyarı var mı?
func (s *ReconciliationSnapshot) HasCritical() bool {
	for _, w := range s.Warnings {
		if w.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
