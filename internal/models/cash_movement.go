package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type MovementDirection string

const (
	MovementIn  MovementDirection = "in"  // kasaya para girişi
	MovementOut MovementDirection = "out" // kasadan para çıkışı
)

func ParseMovementDirection(s string) (MovementDirection, error) {
	switch d := MovementDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case MovementIn, MovementOut:
		return d, nil
	}
	return "", fmt.Errorf("geçersiz hareket yönü: %q (in|out)", s)
}

func (d *MovementDirection) UnmarshalText(b []byte) error {
	v, err := ParseMovementDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type MovementKind string

const (
	MovementKindManual     MovementKind = "manual"     // operatörün girdiği hareket
	MovementKindWithdrawal MovementKind = "withdrawal" // kapanışta otomatik kasadan çekim
)

// CashMovement: oturum içindeki elle girilen nakit giriş/çıkışı
type CashMovement struct {
	ID            uint              `gorm:"primaryKey"`
	BusinessID    uint              `gorm:"index;not null"`
	CashSessionID uint              `gorm:"index;not null"`
	OperatorID    uint              `gorm:"not null"`
	Direction     MovementDirection `gorm:"size:10;not null"`
	Kind          MovementKind      `gorm:"size:20;not null;default:'manual'"`
	Amount        decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Reason        string            `gorm:"size:255"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
