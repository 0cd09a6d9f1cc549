package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"adisyon-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	BusinessID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// FromActor: işlemi yapan operatörle doldurulmuş seçenekler
func FromActor(actor models.Actor, entityType string, entityID uint, action models.AuditAction) LogOptions {
	bid := actor.BusinessID
	return LogOptions{
		BusinessID: &bid,
		UserID:     actor.OperatorID,
		UserName:   actor.OperatorName,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	}
}

func WriteLog(ctx context.Context, db *gorm.DB, opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		BusinessID:  opts.BusinessID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}
