package store

import (
	"context"
	"fmt"

	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"
	"adisyon-backend/internal/settlement"

	"gorm.io/gorm"
)

const entityPayment = "payment"

func (s *Store) GetPayment(ctx context.Context, businessID, paymentID uint) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).Where("business_id = ? AND id = ?", businessID, paymentID).First(&p).Error; err != nil {
		return nil, dbErr(notFound(err, "ödeme"), "ödeme okunamadı")
	}
	return &p, nil
}

// SessionPayments: bir oturumda alınan ödemeler
func (s *Store) SessionPayments(ctx context.Context, businessID, sessionID uint) ([]models.Payment, error) {
	var ps []models.Payment
	if err := s.db.WithContext(ctx).Where("business_id = ? AND cash_session_id = ?", businessID, sessionID).
		Order("id").Find(&ps).Error; err != nil {
		return nil, dbErr(err, "ödemeler okunamadı")
	}
	return ps, nil
}

func lockOpenSession(tx *gorm.DB, actor models.Actor) (*models.CashSession, error) {
	var sess models.CashSession
	err := forUpdate(tx).
		Where("business_id = ? AND operator_id = ? AND status = ?", actor.BusinessID, actor.OperatorID, models.CashSessionOpen).
		Limit(1).Find(&sess).Error
	if err != nil {
		return nil, err
	}
	if sess.ID == 0 {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) newPayment(tx *gorm.DB, actor models.Actor, o *models.Order, sess *models.CashSession, in models.Payment) (*models.Payment, error) {
	now := s.clock.Now()
	p := &models.Payment{
		BusinessID:    actor.BusinessID,
		OrderID:       o.ID,
		CashSessionID: sess.ID,
		OperatorID:    actor.OperatorID,
		Amount:        in.Amount,
		Method:        in.Method,
		Status:        models.PaymentStatusPaid,
		PaidAt:        &now,
		CreatedAt:     now,
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) SettleDirect(ctx context.Context, actor models.Actor, in settlement.DirectInput) (*settlement.Result, error) {
	var out *settlement.Result
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		sess, err := lockOpenSession(tx, actor)
		if err != nil {
			return err
		}
		if sess == nil {
			return settlement.ErrNoOpenSession
		}
		o, err := s.insertOrder(tx, actor, in.Order, models.OrderStatusOpen, func(o *models.Order, b *models.Business) {
			o.Status = orders.DirectStatus(b.OperationMode)
			o.Discount = in.Discount
			o.DiscountReason = in.DiscountReason
		})
		if err != nil {
			return err
		}
		p, err := s.newPayment(tx, actor, o, sess, models.Payment{Amount: o.Total, Method: in.Method})
		if err != nil {
			return err
		}

		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpInsert, o.ID, s)
		fx.event(actor.BusinessID, feed.CollectionPayments, feed.OpInsert, p.ID, s)
		a := audit.FromActor(actor, entityPayment, p.ID, models.AuditActionSettle)
		a.Description = fmt.Sprintf("%s doğrudan tahsilat: %s (%s)", o.Folio, p.Amount.StringFixed(2), p.Method)
		if in.Discount.IsPositive() {
			a.Description += fmt.Sprintf(", indirim %s: %s", in.Discount.StringFixed(2), in.DiscountReason)
		}
		a.After = p
		fx.audit(a)
		out = &settlement.Result{Order: o, Payment: p}
		return nil
	})
	return out, err
}

func (s *Store) SettleDeferred(ctx context.Context, actor models.Actor, in settlement.DeferredInput) (*settlement.Result, error) {
	var out *settlement.Result
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		o, err := lockOrder(tx, actor.BusinessID, in.OrderID)
		if err != nil {
			return err
		}
		if !o.Status.Active() {
			return &orders.TransitionError{OrderID: o.ID, Current: o.Status, Attempted: models.OrderStatusPaid, Reason: "kapanmış/iptal edilmiş siparişe tahsilat yapılamaz"}
		}
		payments, err := orderPayments(tx, actor.BusinessID, o.ID)
		if err != nil {
			return err
		}
		amount, err := settlement.Charge(o, payments, in.Amount)
		if err != nil {
			return err
		}

		res := &settlement.Result{Order: o}
		if amount.IsPositive() {
			sess, err := lockOpenSession(tx, actor)
			if err != nil {
				return err
			}
			if sess == nil {
				return settlement.ErrNoOpenSession
			}
			p, err := s.newPayment(tx, actor, o, sess, models.Payment{Amount: amount, Method: in.Method})
			if err != nil {
				return err
			}
			payments = append(payments, *p)
			res.Payment = p
			fx.event(actor.BusinessID, feed.CollectionPayments, feed.OpInsert, p.ID, s)
		}

		prev := o.Status
		if orders.IsSettled(o, payments) {
			if next := orders.SettledStatus(o.Status); next != o.Status {
				if err := setOrderStatus(tx, o, next); err != nil {
					return err
				}
				fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpUpdate, o.ID, s)
			}
		}

		entityID := o.ID
		entity := entityOrder
		desc := fmt.Sprintf("%s tahsilat: yeni ödeme yok, sipariş zaten ödenmiş", o.Folio)
		if res.Payment != nil {
			entity, entityID = entityPayment, res.Payment.ID
			desc = fmt.Sprintf("%s tahsilat: %s (%s), kalan %s", o.Folio, amount.StringFixed(2), in.Method,
				orders.Remaining(o, payments).StringFixed(2))
		}
		if prev != o.Status {
			desc += fmt.Sprintf(" (%s -> %s)", prev, o.Status)
		}
		a := audit.FromActor(actor, entity, entityID, models.AuditActionSettle)
		a.Description = desc
		a.After = res
		fx.audit(a)
		out = res
		return nil
	})
	return out, err
}

func lockPayment(tx *gorm.DB, businessID, paymentID uint) (*models.Payment, error) {
	var p models.Payment
	if err := forUpdate(tx).Where("business_id = ? AND id = ?", businessID, paymentID).First(&p).Error; err != nil {
		return nil, notFound(err, "ödeme")
	}
	return &p, nil
}

// reverse: void ve refund ortak akışı. check kuralı kilit altında yeniden uygular.
func (s *Store) reverse(ctx context.Context, actor models.Actor, paymentID uint, reason string,
	status models.PaymentStatus, action models.AuditAction,
	check func(models.Payment, *models.CashSession) error,
) (*models.Payment, error) {
	var out *models.Payment
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		p, err := lockPayment(tx, actor.BusinessID, paymentID)
		if err != nil {
			return err
		}
		open, err := lockOpenSession(tx, actor)
		if err != nil {
			return err
		}
		if err := check(*p, open); err != nil {
			return err
		}

		now := s.clock.Now()
		updates := map[string]any{
			"status":          status,
			"reversed_at":     now,
			"reversed_by":     actor.OperatorID,
			"reversal_reason": reason,
		}
		p.Status = status
		p.ReversedAt = &now
		p.ReversedBy = &actor.OperatorID
		p.ReversalReason = reason
		if status == models.PaymentStatusRefunded && open != nil {
			updates["reversal_session_id"] = open.ID
			p.ReversalSessionID = &open.ID
		}
		if err := tx.Model(&models.Payment{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}
		fx.event(actor.BusinessID, feed.CollectionPayments, feed.OpUpdate, p.ID, s)

		o, err := lockOrder(tx, actor.BusinessID, p.OrderID)
		if err != nil {
			return err
		}
		payments, err := orderPayments(tx, actor.BusinessID, o.ID)
		if err != nil {
			return err
		}
		if next := settlement.AfterReversal(o, payments); next != o.Status {
			if err := setOrderStatus(tx, o, next); err != nil {
				return err
			}
		}
		fx.event(actor.BusinessID, feed.CollectionOrders, feed.OpUpdate, o.ID, s)

		a := audit.FromActor(actor, entityPayment, p.ID, action)
		a.Description = fmt.Sprintf("%s ödemesi %s (%s): %s", o.Folio, status, p.Amount.StringFixed(2), reason)
		a.After = p
		fx.audit(a)
		out = p
		return nil
	})
	return out, err
}

func (s *Store) VoidPayment(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error) {
	return s.reverse(ctx, actor, paymentID, reason, models.PaymentStatusVoid, models.AuditActionVoid, settlement.CheckVoid)
}

func (s *Store) RefundPayment(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error) {
	return s.reverse(ctx, actor, paymentID, reason, models.PaymentStatusRefunded, models.AuditActionRefund, settlement.CheckRefund)
}
