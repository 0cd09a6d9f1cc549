package models

import "time"

type AuditAction string

const (
	AuditActionCreate     AuditAction = "create"
	AuditActionUpdate     AuditAction = "update"
	AuditActionTransition AuditAction = "transition"
	AuditActionCancel     AuditAction = "cancel"
	AuditActionSettle     AuditAction = "settle"
	AuditActionVoid       AuditAction = "void"
	AuditActionRefund     AuditAction = "refund"
	AuditActionOpen       AuditAction = "open"
	AuditActionClose      AuditAction = "close"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Hangi işletme?
	BusinessID *uint `gorm:"index" json:"business_id"`

	// Hangi kullanıcı?
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // denormalize

	// Hangi entity? (ör: "order", "payment", "cash_session", "cash_movement")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action AuditAction `gorm:"size:20" json:"action"`

	// Kısa özet
	Description string `gorm:"size:255" json:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
