package store

import (
	"context"
	"fmt"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"

	"gorm.io/gorm"
)

const entityOrder = "order"

// nextFolio: işletme satırını kilitleyip sayacı artırır
func nextFolio(tx *gorm.DB, businessID uint) (string, *models.Business, error) {
	var b models.Business
	if err := forUpdate(tx).First(&b, businessID).Error; err != nil {
		return "", nil, notFound(err, "işletme")
	}
	b.NextFolio++
	if err := tx.Model(&models.Business{}).Where("id = ?", b.ID).Update("next_folio", b.NextFolio).Error; err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("A-%06d", b.NextFolio), &b, nil
}

// snapshotItems: ürün adı ve fiyatını katalogdan kopyalar. Pasif veya başka işletmenin ürünü reddedilir.
func snapshotItems(tx *gorm.DB, businessID uint, in []orders.ItemInput) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := tx.Where("business_id = ? AND id IN ? AND is_active = ?", businessID, ids, true).
		Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, apperr.Validation("ürün bulunamadı veya satışta değil: %d", it.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			Notes:     models.CleanText(it.Notes),
		})
	}
	return items, nil
}

func lockOrder(tx *gorm.DB, businessID, orderID uint) (*models.Order, error) {
	var o models.Order
	if err := forUpdate(tx).Where("business_id = ? AND id = ?", businessID, orderID).First(&o).Error; err != nil {
		return nil, notFound(err, "sipariş")
	}
	if err := tx.Where("order_id = ?", o.ID).Order("id").Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func orderPayments(tx *gorm.DB, businessID, orderID uint) ([]models.Payment, error) {
	var ps []models.Payment
	err := tx.Where("business_id = ? AND order_id = ?", businessID, orderID).Order("id").Find(&ps).Error
	return ps, err
}

func setOrderStatus(tx *gorm.DB, o *models.Order, status models.OrderStatus) error {
	o.Status = status
	return tx.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", status).Error
}

// insertOrder: yeni sipariş. Kalemler ilişkiyle birlikte yazılır.
func (s *Store) insertOrder(tx *gorm.DB, actor models.Actor, in orders.CreateInput, status models.OrderStatus, mutate func(*models.Order, *models.Business)) (*models.Order, error) {
	folio, biz, err := nextFolio(tx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	items, err := snapshotItems(tx, actor.BusinessID, in.Items)
	if err != nil {
		return nil, err
	}
	o := &models.Order{
		BusinessID:  actor.BusinessID,
		Folio:       folio,
		Status:      status,
		ServiceType: in.ServiceType,
		TableLabel:  in.TableLabel,
		Notes:       in.Notes,
		Items:       items,
		CreatedBy:   actor.OperatorID,
		CreatedAt:   s.clock.Now(),
	}
	if mutate != nil {
		mutate(o, biz)
	}
	o.RecomputeTotals()
	if err := tx.Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, actor models.Actor, in orders.CreateInput) (*models.Order, error) {
	var out *models.Order
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		o, err := s.insertOrder(tx, actor, in, models.OrderStatusOpen, nil)
		if err != nil {
			return err
		}
		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpInsert, o.ID, s)
		a := audit.FromActor(actor, entityOrder, o.ID, models.AuditActionCreate)
		a.Description = fmt.Sprintf("Sipariş açıldı: %s (%s)", o.Folio, o.Total.StringFixed(2))
		a.After = o
		fx.audit(a)
		out = o
		return nil
	})
	return out, err
}

func (s *Store) GetOrder(ctx context.Context, businessID, orderID uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("business_id = ? AND id = ?", businessID, orderID).
		First(&o).Error
	if err != nil {
		return nil, dbErr(notFound(err, "sipariş"), "sipariş okunamadı")
	}
	return &o, nil
}

// ActiveOrders: kapanmamış ve iptal edilmemiş siparişler, en eskiden yeniye
func (s *Store) ActiveOrders(ctx context.Context, businessID uint) ([]models.Order, error) {
	var list []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("business_id = ? AND status IN ?", businessID, models.ActiveOrderStatuses).
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, "siparişler listelenemedi")
	}
	return list, nil
}

func (s *Store) OrderPayments(ctx context.Context, businessID, orderID uint) ([]models.Payment, error) {
	ps, err := orderPayments(s.db.WithContext(ctx), businessID, orderID)
	if err != nil {
		return nil, dbErr(err, "ödemeler okunamadı")
	}
	return ps, nil
}

func (s *Store) AddItems(ctx context.Context, actor models.Actor, orderID uint, in []orders.ItemInput) (*models.Order, error) {
	var out *models.Order
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		o, err := lockOrder(tx, actor.BusinessID, orderID)
		if err != nil {
			return err
		}
		before := o.Status
		beforeTotal := o.Total

		items, err := snapshotItems(tx, actor.BusinessID, in)
		if err != nil {
			return err
		}
		if err := orders.ApplyItems(o, items); err != nil {
			return err
		}

		for i := range o.Items {
			it := &o.Items[i]
			if it.ID != 0 {
				continue
			}
			it.OrderID = o.ID
			it.CreatedAt = s.clock.Now()
			if err := tx.Create(it).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
			"status":   o.Status,
			"subtotal": o.Subtotal,
			"total":    o.Total,
		}).Error; err != nil {
			return err
		}

		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpUpdate, o.ID, s)
		a := audit.FromActor(actor, entityOrder, o.ID, models.AuditActionUpdate)
		a.Description = fmt.Sprintf("%s: %d kalem eklendi, toplam %s -> %s", o.Folio, len(items), beforeTotal.StringFixed(2), o.Total.StringFixed(2))
		if before != o.Status {
			a.Description += fmt.Sprintf(" (%s -> %s)", before, o.Status)
		}
		a.After = o
		fx.audit(a)
		out = o
		return nil
	})
	return out, err
}

func (s *Store) AdvanceOrder(ctx context.Context, actor models.Actor, orderID uint, from models.OrderStatus) (*models.Order, error) {
	var out *models.Order
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		o, err := lockOrder(tx, actor.BusinessID, orderID)
		if err != nil {
			return err
		}
		var b models.Business
		if err := tx.First(&b, actor.BusinessID).Error; err != nil {
			return notFound(err, "işletme")
		}
		payments, err := orderPayments(tx, actor.BusinessID, o.ID)
		if err != nil {
			return err
		}
		next, err := orders.CheckAdvance(o, b.OperationMode, from, payments)
		if err != nil {
			return err
		}
		prev := o.Status
		if err := setOrderStatus(tx, o, next); err != nil {
			return err
		}

		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpUpdate, o.ID, s)
		a := audit.FromActor(actor, entityOrder, o.ID, models.AuditActionTransition)
		a.Description = fmt.Sprintf("%s: %s -> %s", o.Folio, prev, next)
		a.Before = map[string]any{"status": prev}
		a.After = map[string]any{"status": next}
		fx.audit(a)
		out = o
		return nil
	})
	return out, err
}

func (s *Store) CancelOrder(ctx context.Context, actor models.Actor, orderID uint, reason string) (*models.Order, error) {
	var out *models.Order
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		o, err := lockOrder(tx, actor.BusinessID, orderID)
		if err != nil {
			return err
		}
		payments, err := orderPayments(tx, actor.BusinessID, o.ID)
		if err != nil {
			return err
		}
		if err := orders.CheckCancel(o, payments); err != nil {
			return err
		}
		prev := o.Status
		o.Status = models.OrderStatusCancelled
		o.CancelReason = reason
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
			"status":        o.Status,
			"cancel_reason": reason,
		}).Error; err != nil {
			return err
		}

		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpUpdate, o.ID, s)
		a := audit.FromActor(actor, entityOrder, o.ID, models.AuditActionCancel)
		a.Description = fmt.Sprintf("%s iptal edildi: %s", o.Folio, reason)
		a.Before = map[string]any{"status": prev}
		a.After = map[string]any{"status": o.Status, "reason": reason}
		fx.audit(a)
		out = o
		return nil
	})
	return out, err
}
