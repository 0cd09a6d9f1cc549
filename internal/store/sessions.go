package store

import (
	"context"
	"errors"
	"fmt"

	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/cashsession"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	entityCashSession  = "cash_session"
	entityCashMovement = "cash_movement"
)

func openSession(tx *gorm.DB, businessID, operatorID uint) (*models.CashSession, error) {
	var sess models.CashSession
	err := tx.Where("business_id = ? AND operator_id = ? AND status = ?", businessID, operatorID, models.CashSessionOpen).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// OpenSession: operatörün açık oturumu, yoksa nil
func (s *Store) OpenSession(ctx context.Context, businessID, operatorID uint) (*models.CashSession, error) {
	sess, err := openSession(s.db.WithContext(ctx), businessID, operatorID)
	if err != nil {
		return nil, dbErr(err, "kasa oturumu okunamadı")
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, businessID, sessionID uint) (*models.CashSession, error) {
	var sess models.CashSession
	err := s.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("business_id = ? AND id = ?", businessID, sessionID).
		First(&sess).Error
	if err != nil {
		return nil, dbErr(notFound(err, "kasa oturumu"), "kasa oturumu okunamadı")
	}
	return &sess, nil
}

// ListSessions: işletmenin oturumları, en yeniden eskiye
func (s *Store) ListSessions(ctx context.Context, businessID uint, status *models.CashSessionStatus, limit int) ([]models.CashSession, error) {
	q := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var list []models.CashSession
	if err := q.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, dbErr(err, "kasa oturumları listelenemedi")
	}
	return list, nil
}

func (s *Store) CreateSession(ctx context.Context, actor models.Actor, openingFloat decimal.Decimal) (*models.CashSession, error) {
	var out *models.CashSession
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		existing, err := openSession(tx, actor.BusinessID, actor.OperatorID)
		if err != nil {
			return err
		}
		if existing != nil {
			return cashsession.ErrSessionAlreadyOpen
		}
		now := s.clock.Now()
		sess := &models.CashSession{
			BusinessID:   actor.BusinessID,
			OperatorID:   actor.OperatorID,
			Status:       models.CashSessionOpen,
			OpeningFloat: openingFloat,
			OpenedAt:     now,
			CreatedAt:    now,
		}
		if err := tx.Create(sess).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return cashsession.ErrSessionAlreadyOpen
			}
			return err
		}
		a := audit.FromActor(actor, entityCashSession, sess.ID, models.AuditActionOpen)
		a.Description = fmt.Sprintf("Kasa açıldı, açılış fonu %s", openingFloat.StringFixed(2))
		a.After = sess
		fx.audit(a)
		out = sess
		return nil
	})
	return out, err
}

// lockOwnedSession: oturumu kilitler; sahibi ve açık olması transaction içinde yeniden doğrulanır
func lockOwnedSession(tx *gorm.DB, actor models.Actor, sessionID uint) (*models.CashSession, error) {
	var sess models.CashSession
	if err := forUpdate(tx).Where("business_id = ? AND id = ?", actor.BusinessID, sessionID).First(&sess).Error; err != nil {
		return nil, notFound(err, "kasa oturumu")
	}
	if sess.OperatorID != actor.OperatorID {
		return nil, cashsession.ErrNotOwner
	}
	if sess.Status != models.CashSessionOpen {
		return nil, cashsession.ErrSessionClosed
	}
	return &sess, nil
}

func (s *Store) AddMovement(ctx context.Context, actor models.Actor, sessionID uint, in cashsession.MovementInput) (*models.CashMovement, error) {
	var out *models.CashMovement
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		if _, err := lockOwnedSession(tx, actor, sessionID); err != nil {
			return err
		}
		m := &models.CashMovement{
			BusinessID:    actor.BusinessID,
			CashSessionID: sessionID,
			OperatorID:    actor.OperatorID,
			Direction:     in.Direction,
			Kind:          models.MovementKindManual,
			Amount:        in.Amount,
			Reason:        in.Reason,
			CreatedAt:     s.clock.Now(),
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		a := audit.FromActor(actor, entityCashMovement, m.ID, models.AuditActionCreate)
		a.Description = fmt.Sprintf("Kasa hareketi (%s) %s: %s", m.Direction, m.Amount.StringFixed(2), m.Reason)
		a.After = m
		fx.audit(a)
		out = m
		return nil
	})
	return out, err
}

// loadLedger: mutabakata giren ham kayıtlar
func loadLedger(tx *gorm.DB, sess *models.CashSession) (cashsession.Ledger, error) {
	l := cashsession.Ledger{Session: *sess}
	if err := tx.Where("cash_session_id = ?", sess.ID).Order("id").Find(&l.Session.Movements).Error; err != nil {
		return l, err
	}
	if err := tx.Where("cash_session_id = ?", sess.ID).Order("id").Find(&l.Payments).Error; err != nil {
		return l, err
	}
	if err := tx.Where("reversal_session_id = ? AND status = ?", sess.ID, models.PaymentStatusRefunded).
		Order("id").Find(&l.Refunds).Error; err != nil {
		return l, err
	}
	return l, nil
}

// Reconcile: salt okunur mutabakat, hiçbir şey yazmaz
func (s *Store) Reconcile(ctx context.Context, businessID, sessionID uint) (*models.ReconciliationSnapshot, error) {
	var snap models.ReconciliationSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Business
		if err := tx.First(&b, businessID).Error; err != nil {
			return notFound(err, "işletme")
		}
		var sess models.CashSession
		if err := tx.Where("business_id = ? AND id = ?", businessID, sessionID).First(&sess).Error; err != nil {
			return notFound(err, "kasa oturumu")
		}
		l, err := loadLedger(tx, &sess)
		if err != nil {
			return err
		}
		snap = cashsession.Compute(l, cashsession.PolicyFor(&b), s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "mutabakat hesaplanamadı")
	}
	return &snap, nil
}

// CloseSession: mutabakatı kilit altında yeniden hesaplar, not şartını yeniden uygular,
// anlık görüntüyü dondurur ve çekimi otomatik hareket olarak yazar.
func (s *Store) CloseSession(ctx context.Context, actor models.Actor, in cashsession.CloseInput) (*models.CashSession, error) {
	var out *models.CashSession
	err := s.atomic(ctx, func(tx *gorm.DB, fx *txEffects) error {
		sess, err := lockOwnedSession(tx, actor, in.SessionID)
		if err != nil {
			return err
		}
		var b models.Business
		if err := tx.First(&b, actor.BusinessID).Error; err != nil {
			return notFound(err, "işletme")
		}
		l, err := loadLedger(tx, sess)
		if err != nil {
			return err
		}
		policy := cashsession.PolicyFor(&b)
		now := s.clock.Now()
		snap := cashsession.Compute(l, policy, now)
		fig := cashsession.ComputeClose(snap, policy, in.CountedCash, in.KeepFloat)
		if err := cashsession.ValidateClose(fig, in.Note); err != nil {
			return err
		}

		sess.Status = models.CashSessionClosed
		sess.ClosedAt = &now
		sess.CountedCash = &fig.Counted
		sess.KeptFloat = &fig.KeepFloat
		sess.Withdrawal = &fig.Withdrawal
		sess.Difference = &fig.Difference
		sess.ClosingNote = models.CleanText(in.Note)
		sess.Snapshot = &snap
		if err := tx.Model(sess).
			Select("status", "closed_at", "counted_cash", "kept_float", "withdrawal", "difference", "closing_note", "snapshot").
			Updates(sess).Error; err != nil {
			return err
		}

		if fig.Withdrawal.IsPositive() {
			w := &models.CashMovement{
				BusinessID:    actor.BusinessID,
				CashSessionID: sess.ID,
				OperatorID:    actor.OperatorID,
				Direction:     models.MovementOut,
				Kind:          models.MovementKindWithdrawal,
				Amount:        fig.Withdrawal,
				Reason:        "Kapanış çekimi",
				CreatedAt:     now,
			}
			if err := tx.Create(w).Error; err != nil {
				return err
			}
			sess.Movements = append(l.Session.Movements, *w)
		} else {
			sess.Movements = l.Session.Movements
		}

		a := audit.FromActor(actor, entityCashSession, sess.ID, models.AuditActionClose)
		a.Description = fmt.Sprintf("Kasa kapandı: beklenen %s, sayılan %s, fark %s",
			fig.Expected.StringFixed(2), fig.Counted.StringFixed(2), fig.Difference.StringFixed(2))
		a.After = fig
		fx.audit(a)
		out = sess
		return nil
	})
	return out, err
}
